package repository

import (
	"errors"
	"fmt"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"

	"gorm.io/gorm"
)

type GormCourseRepository struct {
	DB *gorm.DB
}

func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{DB: db}
}

func (r *GormCourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("erro ao buscar curso por ID: %w", util.ErrCourseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar curso por ID: %w", err)
	}
	return &course, nil
}

func (r *GormCourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("slug = ?", slug).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("erro ao buscar curso por slug: %w", util.ErrCourseNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar curso por slug: %w", err)
	}
	return &course, nil
}

func (r *GormCourseRepository) FindAll(filter model.CourseFilter) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := r.DB.Model(&model.Course{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.IsPremium != nil {
		query = query.Where("is_premium = ?", *filter.IsPremium)
	}
	if filter.IsFeatured != nil {
		query = query.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.IsPublished != nil {
		query = query.Where("is_published = ?", *filter.IsPublished)
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", term, term, term)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("erro ao listar cursos: %w", err)
	}

	switch filter.Sort {
	case "title":
		query = query.Order("title ASC")
	case "rating":
		query = query.Order("rating DESC")
	case "students":
		query = query.Order("students DESC")
	case "price":
		query = query.Order("price ASC")
	default:
		query = query.Order("created_at DESC")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Find(&courses).Error; err != nil {
		return nil, 0, fmt.Errorf("erro ao listar cursos: %w", err)
	}
	return courses, total, nil
}

func (r *GormCourseRepository) FindFeatured(limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	featured := true
	published := true
	out, _, err := r.FindAll(model.CourseFilter{
		IsFeatured:  &featured,
		IsPublished: &published,
		Sort:        "newest",
		Page:        1,
		Limit:       limit,
	})
	return out, err
}

func (r *GormCourseRepository) FindByCategory(category string, limit int) ([]model.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	published := true
	out, _, err := r.FindAll(model.CourseFilter{
		Category:    category,
		IsPublished: &published,
		Sort:        "newest",
		Page:        1,
		Limit:       limit,
	})
	return out, err
}

func (r *GormCourseRepository) Create(course *model.Course) error {
	var count int64
	if err := r.DB.Model(&model.Course{}).Where("slug = ?", course.Slug).Count(&count).Error; err != nil {
		return fmt.Errorf("erro ao criar curso: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("erro ao criar curso: %w", util.ErrSlugRegistered)
	}
	course.RecountProgress()
	if err := r.DB.Create(course).Error; err != nil {
		return fmt.Errorf("erro ao criar curso: %w", err)
	}
	return nil
}

func (r *GormCourseRepository) Update(id string, patch model.CoursePatch) (*model.Course, error) {
	var updated *model.Course
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if patch.Slug != nil && *patch.Slug != course.Slug {
			var count int64
			if err := tx.Model(&model.Course{}).Where("slug = ?", *patch.Slug).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return util.ErrSlugRegistered
			}
		}
		course.Apply(patch)
		course.UpdatedAt = time.Now()
		if err := tx.Save(&course).Error; err != nil {
			return err
		}
		updated = &course
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar curso: %w", err)
	}
	return updated, nil
}

func (r *GormCourseRepository) UpdateProgress(id string, patch model.CourseProgressPatch) (*model.Course, error) {
	var updated *model.Course
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if patch.CompletedLessons != nil {
			course.CompletedLessons = *patch.CompletedLessons
		}
		if patch.Progress != nil {
			p := *patch.Progress
			if p > 100 {
				p = 100
			}
			course.Progress = p
		}
		course.UpdatedAt = time.Now()
		if err := tx.Save(&course).Error; err != nil {
			return err
		}
		updated = &course
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao atualizar progresso do curso: %w", err)
	}
	return updated, nil
}

func (r *GormCourseRepository) CompleteLesson(courseID, chapterID string) (*model.Course, error) {
	var updated *model.Course
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var course model.Course
		if err := tx.First(&course, "id = ?", courseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return err
		}
		if !course.CompleteChapter(chapterID) {
			return util.ErrChapterNotFound
		}
		course.UpdatedAt = time.Now()
		if err := tx.Save(&course).Error; err != nil {
			return err
		}
		updated = &course
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao concluir aula: %w", err)
	}
	return updated, nil
}

func (r *GormCourseRepository) Delete(id string) error {
	res := r.DB.Delete(&model.Course{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("erro ao excluir curso: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("erro ao excluir curso: %w", util.ErrCourseNotFound)
	}
	return nil
}

func (r *GormCourseRepository) Stats() (*model.CourseStats, error) {
	stats := &model.CourseStats{ByCategory: make(map[string]int64)}

	if err := r.DB.Model(&model.Course{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("erro ao calcular estatísticas: %w", err)
	}
	r.DB.Model(&model.Course{}).Where("is_published = ?", true).Count(&stats.Published)
	r.DB.Model(&model.Course{}).Where("is_premium = ?", true).Count(&stats.Premium)
	r.DB.Model(&model.Course{}).Where("is_premium = ?", false).Count(&stats.Free)
	r.DB.Model(&model.Course{}).Where("is_featured = ?", true).Count(&stats.Featured)

	var avg *float64
	r.DB.Model(&model.Course{}).Select("AVG(rating)").Scan(&avg)
	if avg != nil {
		stats.AverageRating = *avg
	}
	var students *uint64
	r.DB.Model(&model.Course{}).Select("SUM(students)").Scan(&students)
	if students != nil {
		stats.TotalStudents = *students
	}

	type catCount struct {
		Category string
		N        int64
	}
	var rows []catCount
	r.DB.Model(&model.Course{}).Select("category, COUNT(*) AS n").
		Where("category <> ''").Group("category").Scan(&rows)
	for _, row := range rows {
		stats.ByCategory[row.Category] = row.N
	}
	return stats, nil
}

func (r *GormCourseRepository) SaveEnrollment(e *model.Enrollment) error {
	var existing model.Enrollment
	err := r.DB.Where("course_id = ? AND user_id = ?", e.CourseID, e.UserID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := r.DB.Create(e).Error; err != nil {
			return fmt.Errorf("erro ao salvar matrícula: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("erro ao salvar matrícula: %w", err)
	}
	existing.Progress = e.Progress
	existing.CompletedLessons = e.CompletedLessons
	existing.CompletedAt = e.CompletedAt
	if err := r.DB.Save(&existing).Error; err != nil {
		return fmt.Errorf("erro ao salvar matrícula: %w", err)
	}
	return nil
}

func (r *GormCourseRepository) FindEnrollment(courseID, userID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("course_id = ? AND user_id = ?", courseID, userID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar matrícula: %w", err)
	}
	return &e, nil
}
