package util

import "errors"

var (
	ErrUserNotFound    = errors.New("usuário não encontrado")
	ErrEmailRegistered = errors.New("este email já está em uso")
	ErrCourseNotFound  = errors.New("curso não encontrado")
	ErrSlugRegistered  = errors.New("este slug já está em uso")
	ErrChapterNotFound = errors.New("capítulo não encontrado")
	ErrInvalidIconExt  = errors.New("formato de imagem inválido")
)
