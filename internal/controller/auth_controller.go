package controller

import (
	"plataforma_backend/internal/service"
	"plataforma_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

func (ctrl *AuthController) Register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.AuthService.Register(in)
	respond(c, result.Envelope, result)
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.AuthService.Authenticate(in.Email, in.Password)
	respond(c, result.Envelope, result)
}

func (ctrl *AuthController) GetProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	result := ctrl.UserService.GetUserByID(userID)
	respond(c, result.Envelope, result)
}

type changePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	var in changePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	env := ctrl.AuthService.ChangePassword(userID, in.CurrentPassword, in.NewPassword)
	respond(c, env, env)
}

type validateTokenInput struct {
	Token string `json:"token"`
}

func (ctrl *AuthController) ValidateToken(c *gin.Context) {
	var in validateTokenInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}
	util.Success(c, ctrl.AuthService.ValidateToken(in.Token))
}
