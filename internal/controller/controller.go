package controller

import (
	"net/http"

	"plataforma_backend/internal/service"
	"plataforma_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// statusFor traduz o código tipado do envelope em status HTTP.
func statusFor(env service.Envelope) int {
	if env.Success {
		return http.StatusOK
	}
	switch env.Code {
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	case service.CodeAccessDenied:
		return http.StatusForbidden
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respond envia o envelope completo; o chamador da API discrimina por
// success e code, não pela forma da resposta.
func respond(c *gin.Context, env service.Envelope, payload interface{}) {
	c.JSON(statusFor(env), payload)
}

func currentUserID(c *gin.Context) string {
	claims := util.GetUserFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
