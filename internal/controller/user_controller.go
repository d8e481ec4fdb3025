package controller

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/service"
	"plataforma_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		UserService:    userService,
		StorageService: storageService,
	}
}

func (ctrl *UserController) GetUser(c *gin.Context) {
	result := ctrl.UserService.GetUserByID(c.Param("id"))
	respond(c, result.Envelope, result)
}

func (ctrl *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result := ctrl.UserService.ListUsers(model.UserFilter{
		Role:               c.Query("role"),
		SubscriptionStatus: c.Query("subscriptionStatus"),
		Page:               page,
		Limit:              limit,
	})
	respond(c, result.Envelope, result)
}

type profileUpdateInput struct {
	Name    *string             `json:"name,omitempty"`
	Profile *model.ProfilePatch `json:"profile,omitempty"`
}

func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	var in profileUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	// Perfil próprio: nome e preferências apenas; papel, status e
	// assinatura só mudam por rota administrativa.
	result := ctrl.UserService.UpdateUser(userID, model.UserPatch{
		Name:    in.Name,
		Profile: in.Profile,
	})
	respond(c, result.Envelope, result)
}

func (ctrl *UserController) UpdateProgress(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.UserService.UpdateProgress(userID, raw)
	respond(c, result.Envelope, result)
}

func (ctrl *UserController) UpdateUserAdmin(c *gin.Context) {
	var patch model.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.UserService.UpdateUser(c.Param("id"), patch)
	respond(c, result.Envelope, result)
}

func (ctrl *UserController) DeleteUser(c *gin.Context) {
	env := ctrl.UserService.DeleteUser(c.Param("id"))
	respond(c, env, env)
}

func (ctrl *UserController) UploadAvatar(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		util.BadRequest(c, "arquivo de avatar ausente")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		util.BadRequest(c, util.ErrInvalidIconExt.Error())
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(c, err)
		return
	}
	defer src.Close()

	filename := "avatars/" + userID + "_" + time.Now().Format("20060102150405") + ext
	url, err := ctrl.StorageService.Upload(c.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(c, err)
		return
	}

	result := ctrl.UserService.UpdateUser(userID, model.UserPatch{
		Profile: &model.ProfilePatch{Avatar: &url},
	})
	respond(c, result.Envelope, result)
}
