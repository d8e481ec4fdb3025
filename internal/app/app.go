package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"plataforma_backend/internal/config"
	"plataforma_backend/internal/controller"
	"plataforma_backend/internal/model"
	"plataforma_backend/internal/repository"
	"plataforma_backend/internal/service"
	"plataforma_backend/internal/util"
	"plataforma_backend/pkg/database"
	"plataforma_backend/pkg/logger"
	"plataforma_backend/pkg/monitoring"
	"plataforma_backend/pkg/security"
	"plataforma_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user   repository.UserRepository
	course repository.CourseRepository
}

type services struct {
	access  *service.AccessService
	auth    *service.AuthService
	user    *service.UserService
	course  *service.CourseService
	storage *service.StorageService
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	course *controller.CourseController
	health *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	if db != nil {
		return &repositories{
			user:   repository.NewGormUserRepository(db),
			course: repository.NewGormCourseRepository(db),
		}
	}
	return &repositories{
		user:   repository.NewMemoryUserRepository(),
		course: repository.NewMemoryCourseRepository(),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	s.storage = storage

	hasher := util.NewBcryptHasher()
	s.access = service.NewAccessService()
	s.auth = service.NewAuthService(repos.user, hasher, cfg)
	s.user = service.NewUserService(repos.user)
	s.course = service.NewCourseService(repos.course, repos.user, s.access, rdb)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth, s.user),
		user:   controller.NewUserController(s.user, s.storage),
		course: controller.NewCourseController(s.course),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// seedAdmin garante um administrador inicial quando o cadastro está vazio.
func (a *App) seedAdmin(s *services, cfg *config.Config) {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		return
	}
	if s.user.GetUserByEmail(cfg.Seed.AdminEmail).Success {
		return
	}

	result := s.auth.Register(service.RegisterInput{
		Name:     "Administrador",
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
	})
	if !result.Success {
		logger.Log.Warn("falha ao criar admin inicial", zap.String("message", result.Message))
		return
	}

	admin := model.RoleAdmin
	s.user.UpdateUser(result.User.ID, model.UserPatch{Role: &admin})
	logger.Log.Info("admin inicial criado", zap.String("email", cfg.Seed.AdminEmail))
}

func (a *App) startBackgroundTasks(s *services) {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			s.user.ExpireLapsedSubscriptions()
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	var db *gorm.DB
	if cfg.Database.Driver == "mysql" {
		var err error
		db, err = database.InitDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		var err error
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	app.services = services
	controllers := app.initControllers(services, db)

	app.seedAdmin(services, cfg)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("plataforma-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
