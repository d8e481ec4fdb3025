package app

import (
	"plataforma_backend/internal/config"
	"plataforma_backend/internal/middleware"
	"plataforma_backend/internal/model"
	"plataforma_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. Rotas públicas (sem login)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/auth/validate", c.auth.ValidateToken)

		// Catálogo aberto; a decisão de acesso cuida do que cada um vê.
		public.GET("/courses", middleware.TryAuthMiddleware(cfg), c.course.ListCourses)
		public.GET("/courses/featured", c.course.GetFeatured)
		public.GET("/courses/category/:category", c.course.GetByCategory)
		public.GET("/courses/:slug", c.course.GetBySlug)
		public.GET("/courses/:slug/access", middleware.TryAuthMiddleware(cfg), c.course.GetAccess)
	}

	// 2. Rotas autenticadas
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.POST("/auth/change-password", c.auth.ChangePassword)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.PUT("/user/progress", c.user.UpdateProgress)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		authGroup.POST("/learn/:id/start", c.course.StartCourse)
		authGroup.POST("/learn/:id/chapters/:chapterId/complete", c.course.CompleteLesson)
	}

	// 3. Rotas administrativas
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		adminGroup.GET("/users", c.user.ListUsers)
		adminGroup.GET("/users/:id", c.user.GetUser)
		adminGroup.PUT("/users/:id", c.user.UpdateUserAdmin)
		adminGroup.DELETE("/users/:id", c.user.DeleteUser)

		adminGroup.POST("/courses", c.course.CreateCourse)
		adminGroup.PUT("/courses/:id", c.course.UpdateCourse)
		adminGroup.DELETE("/courses/:id", c.course.DeleteCourse)
		adminGroup.GET("/courses/stats", c.course.GetStats)
	}
}
