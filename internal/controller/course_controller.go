package controller

import (
	"strconv"

	"plataforma_backend/internal/model"
	"plataforma_backend/internal/service"
	"plataforma_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func boolQuery(c *gin.Context, name string) *bool {
	raw, exists := c.GetQuery(name)
	if !exists {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func (ctrl *CourseController) ListCourses(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := model.CourseFilter{
		Category:    c.Query("category"),
		Level:       c.Query("level"),
		IsPremium:   boolQuery(c, "isPremium"),
		IsFeatured:  boolQuery(c, "isFeatured"),
		IsPublished: boolQuery(c, "isPublished"),
		Search:      c.Query("search"),
		Sort:        c.Query("sort"),
		Page:        page,
		Limit:       limit,
	}

	// Visitantes e membros só enxergam catálogo publicado.
	claims := util.GetUserFromContext(c)
	if claims == nil || claims.Role != model.RoleAdmin {
		published := true
		filter.IsPublished = &published
	}

	result := ctrl.CourseService.GetCourses(filter)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) GetFeatured(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))
	result := ctrl.CourseService.GetFeatured(c.Request.Context(), limit)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) GetByCategory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	result := ctrl.CourseService.GetByCategory(c.Param("category"), limit)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) GetBySlug(c *gin.Context) {
	result := ctrl.CourseService.GetBySlug(c.Param("slug"))
	respond(c, result.Envelope, result)
}

// GetAccess computa a decisão para o usuário logado ou para o visitante
// anônimo quando não há token.
func (ctrl *CourseController) GetAccess(c *gin.Context) {
	result := ctrl.CourseService.GetAccess(c.Param("slug"), currentUserID(c))
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) StartCourse(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	result := ctrl.CourseService.StartCourse(c.Param("id"), userID)
	respond(c, result.Envelope, result)
}

type completeLessonInput struct {
	WatchTime uint `json:"watchTime"` // minutos assistidos nesta aula
}

func (ctrl *CourseController) CompleteLesson(c *gin.Context) {
	userID := currentUserID(c)
	if userID == "" {
		util.Unauthorized(c)
		return
	}

	var in completeLessonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.CourseService.CompleteLesson(c.Param("id"), c.Param("chapterId"), userID, in.WatchTime)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) CreateCourse(c *gin.Context) {
	var course model.Course
	if err := c.ShouldBindJSON(&course); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.CourseService.CreateCourse(&course)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) UpdateCourse(c *gin.Context) {
	var patch model.CoursePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		util.BadRequest(c, "payload inválido")
		return
	}

	result := ctrl.CourseService.UpdateCourse(c.Param("id"), patch)
	respond(c, result.Envelope, result)
}

func (ctrl *CourseController) DeleteCourse(c *gin.Context) {
	env := ctrl.CourseService.DeleteCourse(c.Param("id"))
	respond(c, env, env)
}

func (ctrl *CourseController) GetStats(c *gin.Context) {
	result := ctrl.CourseService.GetStats()
	respond(c, result.Envelope, result)
}
