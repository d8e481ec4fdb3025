package service

import (
	"errors"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/util"
)

// Códigos tipados do envelope, para que o chamador não precise distinguir
// falhas pelo texto da mensagem.
const (
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeAccessDenied = "access_denied"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInternal     = "internal"
)

// Envelope é o resultado discriminado de toda operação pública de serviço;
// nenhum erro cru de repositório escapa para o chamador.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok() Envelope {
	return Envelope{Success: true}
}

func fail(code, message string) Envelope {
	return Envelope{Success: false, Code: code, Message: message}
}

// failFrom normaliza um erro de repositório no envelope, mapeando as
// sentinelas de domínio nos códigos correspondentes.
func failFrom(err error) Envelope {
	switch {
	case errors.Is(err, util.ErrUserNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrChapterNotFound):
		return fail(CodeNotFound, err.Error())
	case errors.Is(err, util.ErrEmailRegistered),
		errors.Is(err, util.ErrSlugRegistered):
		return fail(CodeConflict, err.Error())
	default:
		return fail(CodeInternal, "erro interno, tente novamente")
	}
}

type AuthResult struct {
	Envelope
	User  *model.User `json:"user,omitempty"`
	Token string      `json:"token,omitempty"`
}

type TokenValidation struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"userId,omitempty"`
}

type UserResult struct {
	Envelope
	User *model.User `json:"user,omitempty"`
}

type UserListResult struct {
	Envelope
	Users []model.User `json:"users,omitempty"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type CourseResult struct {
	Envelope
	Course *model.Course `json:"course,omitempty"`
}

type CourseListResult struct {
	Envelope
	Courses []model.Course `json:"courses,omitempty"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

type AccessResult struct {
	Envelope
	Decision model.AccessDecision `json:"decision"`
}

type StatsResult struct {
	Envelope
	Stats *model.CourseStats `json:"stats,omitempty"`
}
