package repository

import (
	"time"

	"plataforma_backend/internal/model"
)

// UserRepository e CourseRepository são os contratos das coleções; a
// implementação em memória é a referência de semântica, a implementação
// GORM existe para persistência real atrás do mesmo contrato. Toda leitura
// devolve cópias, nunca referências internas.
type UserRepository interface {
	FindByID(id string) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	Create(user *model.User) error
	Update(id string, patch model.UserPatch) (*model.User, error)
	UpdateLastLogin(id string, at time.Time) error
	UpdateProgress(id string, patch model.ProgressPatch) (*model.User, error)
	FindAll(filter model.UserFilter) ([]model.User, int64, error)
	Delete(id string) error
	ExpireLapsed(now time.Time) (int64, error)
}

type CourseRepository interface {
	FindByID(id string) (*model.Course, error)
	FindBySlug(slug string) (*model.Course, error)
	FindAll(filter model.CourseFilter) ([]model.Course, int64, error)
	FindFeatured(limit int) ([]model.Course, error)
	FindByCategory(category string, limit int) ([]model.Course, error)
	Create(course *model.Course) error
	Update(id string, patch model.CoursePatch) (*model.Course, error)
	UpdateProgress(id string, patch model.CourseProgressPatch) (*model.Course, error)
	CompleteLesson(courseID, chapterID string) (*model.Course, error)
	Delete(id string) error
	Stats() (*model.CourseStats, error)
	SaveEnrollment(e *model.Enrollment) error
	FindEnrollment(courseID, userID string) (*model.Enrollment, error)
}
