package util

import (
	"regexp"
	"strings"
)

// O padrão de email faz parte do contrato do cadastro; não usar validadores
// RFC completos no lugar dele.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
