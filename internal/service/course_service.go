package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"
	"plataforma_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	catalogCachePrefix = "catalog:featured:"
	catalogCacheTTL    = 5 * time.Minute
)

// CourseService orquestra o catálogo, a política de acesso e a
// contabilidade de progresso. O Redis é apenas cache de leitura do
// catálogo; pode ser nil (testes, modo memória sem cache).
type CourseService struct {
	CourseRepo repository.CourseRepository
	UserRepo   repository.UserRepository
	Access     *AccessService
	Redis      *redis.Client
}

func NewCourseService(courseRepo repository.CourseRepository, userRepo repository.UserRepository, access *AccessService, rdb *redis.Client) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		UserRepo:   userRepo,
		Access:     access,
		Redis:      rdb,
	}
}

func (s *CourseService) GetCourses(filter model.CourseFilter) CourseListResult {
	courses, total, err := s.CourseRepo.FindAll(filter)
	if err != nil {
		return CourseListResult{Envelope: failFrom(err)}
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return CourseListResult{Envelope: ok(), Courses: courses, Total: total, Page: page, Limit: limit}
}

func (s *CourseService) GetFeatured(ctx context.Context, limit int) CourseListResult {
	if limit <= 0 {
		limit = repository.DefaultFeaturedLimit
	}

	key := fmt.Sprintf("%s%d", catalogCachePrefix, limit)
	if s.Redis != nil {
		if raw, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var cached []model.Course
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return CourseListResult{Envelope: ok(), Courses: cached, Total: int64(len(cached)), Page: 1, Limit: limit}
			}
		}
	}

	courses, err := s.CourseRepo.FindFeatured(limit)
	if err != nil {
		return CourseListResult{Envelope: failFrom(err)}
	}

	if s.Redis != nil {
		if raw, err := json.Marshal(courses); err == nil {
			if err := s.Redis.Set(ctx, key, raw, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("falha ao gravar cache do catálogo", zap.Error(err))
			}
		}
	}
	return CourseListResult{Envelope: ok(), Courses: courses, Total: int64(len(courses)), Page: 1, Limit: limit}
}

func (s *CourseService) GetByCategory(category string, limit int) CourseListResult {
	courses, err := s.CourseRepo.FindByCategory(category, limit)
	if err != nil {
		return CourseListResult{Envelope: failFrom(err)}
	}
	return CourseListResult{Envelope: ok(), Courses: courses, Total: int64(len(courses)), Page: 1, Limit: limit}
}

func (s *CourseService) GetBySlug(slug string) CourseResult {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}
	return CourseResult{Envelope: ok(), Course: course}
}

func (s *CourseService) GetByID(id string) CourseResult {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}
	return CourseResult{Envelope: ok(), Course: course}
}

// GetAccess computa a decisão de acesso para um curso contra um usuário
// logado ou anônimo (userID vazio). A decisão nunca é cacheada.
func (s *CourseService) GetAccess(slug, userID string) AccessResult {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		course = nil
	}

	var decision model.AccessDecision
	if userID == "" {
		decision = s.Access.CheckAnonymousAccess(course)
	} else {
		user, err := s.UserRepo.FindByID(userID)
		if err != nil {
			user = nil
		}
		decision = s.Access.CheckAccess(course, user)
	}
	return AccessResult{Envelope: ok(), Decision: decision}
}

// StartCourse exige acesso e é idempotente: curso com progresso > 0 volta
// sem mutação alguma.
func (s *CourseService) StartCourse(courseID, userID string) CourseResult {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		course = nil
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		user = nil
	}

	decision := s.Access.CheckAccess(course, user)
	if !decision.HasAccess {
		return CourseResult{Envelope: fail(CodeAccessDenied, "Acesso negado: "+decision.Reason)}
	}

	if course.Progress > 0 {
		return CourseResult{Envelope: Envelope{Success: true, Message: "curso já iniciado"}, Course: course}
	}

	one := uint(1)
	zero := uint(0)
	updated, err := s.CourseRepo.UpdateProgress(courseID, model.CourseProgressPatch{
		Progress:         &one,
		CompletedLessons: &zero,
	})
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}

	if err := s.CourseRepo.SaveEnrollment(&model.Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		Progress:  1,
		StartedAt: time.Now(),
	}); err != nil {
		logger.Log.Warn("falha ao registrar matrícula", zap.String("courseId", courseID), zap.Error(err))
	}

	s.invalidateCatalogCache()
	return CourseResult{Envelope: ok(), Course: updated}
}

// CompleteLesson conclui o capítulo e aplica a contabilidade de progresso:
// tempo assistido sempre soma; curso em 100% incrementa cursos concluídos;
// certificado só para curso premium completo, nunca para gratuito. O usuário
// é resolvido antes de qualquer mutação no curso: falha aqui não deixa
// estado parcial.
func (s *CourseService) CompleteLesson(courseID, chapterID, userID string, watchTimeDelta uint) CourseResult {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}

	course, err := s.CourseRepo.CompleteLesson(courseID, chapterID)
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}

	watch := user.Progress.TotalWatchTime + watchTimeDelta
	patch := model.ProgressPatch{TotalWatchTime: &watch}
	if course.Progress == 100 {
		completed := user.Progress.CoursesCompleted + 1
		patch.CoursesCompleted = &completed
		if course.IsPremium {
			certs := user.Progress.CertificatesEarned + 1
			patch.CertificatesEarned = &certs
		}
	}
	if _, err := s.UserRepo.UpdateProgress(userID, patch); err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}

	enrollment := &model.Enrollment{
		UserID:           userID,
		CourseID:         courseID,
		Progress:         course.Progress,
		CompletedLessons: course.CompletedLessons,
		StartedAt:        time.Now(),
	}
	if course.Progress == 100 {
		now := time.Now()
		enrollment.CompletedAt = &now
	}
	if err := s.CourseRepo.SaveEnrollment(enrollment); err != nil {
		logger.Log.Warn("falha ao registrar matrícula", zap.String("courseId", courseID), zap.Error(err))
	}

	s.invalidateCatalogCache()
	return CourseResult{Envelope: ok(), Course: course}
}

func (s *CourseService) CreateCourse(course *model.Course) CourseResult {
	if len(course.Title) < 3 {
		return CourseResult{Envelope: fail(CodeValidation, "Título deve ter pelo menos 3 caracteres")}
	}
	if course.Slug == "" {
		return CourseResult{Envelope: fail(CodeValidation, "Slug é obrigatório")}
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}
	s.invalidateCatalogCache()
	return CourseResult{Envelope: ok(), Course: course}
}

func (s *CourseService) UpdateCourse(id string, patch model.CoursePatch) CourseResult {
	course, err := s.CourseRepo.Update(id, patch)
	if err != nil {
		return CourseResult{Envelope: failFrom(err)}
	}
	s.invalidateCatalogCache()
	return CourseResult{Envelope: ok(), Course: course}
}

func (s *CourseService) DeleteCourse(id string) Envelope {
	if err := s.CourseRepo.Delete(id); err != nil {
		return failFrom(err)
	}
	s.invalidateCatalogCache()
	return ok()
}

func (s *CourseService) GetStats() StatsResult {
	stats, err := s.CourseRepo.Stats()
	if err != nil {
		return StatsResult{Envelope: failFrom(err)}
	}
	return StatsResult{Envelope: ok(), Stats: stats}
}

func (s *CourseService) invalidateCatalogCache() {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	keys, err := s.Redis.Keys(ctx, catalogCachePrefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("falha ao invalidar cache do catálogo", zap.Error(err))
	}
}
