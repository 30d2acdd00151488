package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/uni-scheduler/timetable-api/api/swagger"
	"github.com/uni-scheduler/timetable-api/internal/handler"
	"github.com/uni-scheduler/timetable-api/internal/middleware"
	"github.com/uni-scheduler/timetable-api/internal/models"
	"github.com/uni-scheduler/timetable-api/internal/repository"
	"github.com/uni-scheduler/timetable-api/internal/service"
	"github.com/uni-scheduler/timetable-api/pkg/cache"
	"github.com/uni-scheduler/timetable-api/pkg/config"
	"github.com/uni-scheduler/timetable-api/pkg/database"
	"github.com/uni-scheduler/timetable-api/pkg/logger"
	corsmiddleware "github.com/uni-scheduler/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/uni-scheduler/timetable-api/pkg/middleware/requestid"
	"github.com/uni-scheduler/timetable-api/pkg/storage"
)

// @title University Timetable API
// @version 1.0.0
// @description Genetic timetable generation and catalog management
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	cacheRepo := repository.NewCacheRepository(nil, logr)
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			defer client.Close()
			cacheRepo = repository.NewCacheRepository(client, logr)
		}
	}

	fileStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Fatal("export storage init failed", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Export.URLTTL)

	instructorRepo := repository.NewInstructorRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	meetingTimeRepo := repository.NewMeetingTimeRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	userRepo := repository.NewUserRepository(db)

	validate := validator.New()

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
	})
	catalogService := service.NewCatalogService(
		instructorRepo, roomRepo, departmentRepo, courseRepo, sectionRepo, meetingTimeRepo,
		validate, logr,
	)
	timetableService := service.NewTimetableService(
		sectionRepo, courseRepo, instructorRepo, roomRepo, meetingTimeRepo,
		timetableRepo, cacheRepo,
		cfg.Scheduler, cfg.Redis.CacheTTL, logr,
	)
	timetableService.SetRunRecorder(metricsService)
	exportService := service.NewExportService(timetableRepo, fileStore, signer, service.ExportConfig{
		APIPrefix:       cfg.APIPrefix,
		InstitutionName: cfg.Export.InstitutionName,
		ResultTTL:       cfg.Export.URLTTL,
	}, logr, nil, nil)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timetableService.StartWorkers(rootCtx)
	defer timetableService.StopWorkers()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if removed, err := exportService.Cleanup(cfg.Export.URLTTL); err != nil {
					logr.Warn("export cleanup failed", zap.Error(err))
				} else if len(removed) > 0 {
					logr.Info("expired exports removed", zap.Int("count", len(removed)))
				}
			}
		}
	}()

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	timetableHandler := handler.NewTimetableHandler(timetableService, exportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	registerRoutes(api, authService, authHandler, catalogHandler, timetableHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(
	api *gin.RouterGroup,
	authService *service.AuthService,
	auth *handler.AuthHandler,
	catalog *handler.CatalogHandler,
	timetables *handler.TimetableHandler,
) {
	api.POST("/auth/login", auth.Login)

	// Download links are authorised by their signed token, not a JWT, so
	// exported files can be shared.
	api.GET("/export/:token", timetables.Download)

	authed := api.Group("", middleware.JWT(authService))
	{
		authed.POST("/auth/register", middleware.RequireRoles(models.RoleAdmin), auth.Register)
		authed.GET("/auth/me", auth.Me)
		authed.PUT("/auth/password", auth.ChangePassword)
	}

	scheduler := middleware.RequireRoles(models.RoleScheduler)

	catalogGroup := api.Group("", middleware.JWT(authService))
	{
		catalogGroup.GET("/instructors", catalog.ListInstructors)
		catalogGroup.GET("/instructors/:id", catalog.GetInstructor)
		catalogGroup.POST("/instructors", scheduler, catalog.CreateInstructor)
		catalogGroup.PUT("/instructors/:id", scheduler, catalog.UpdateInstructor)
		catalogGroup.DELETE("/instructors/:id", scheduler, catalog.DeleteInstructor)
		catalogGroup.POST("/instructors/import", scheduler, catalog.ImportInstructors)

		catalogGroup.GET("/rooms", catalog.ListRooms)
		catalogGroup.GET("/rooms/:id", catalog.GetRoom)
		catalogGroup.POST("/rooms", scheduler, catalog.CreateRoom)
		catalogGroup.PUT("/rooms/:id", scheduler, catalog.UpdateRoom)
		catalogGroup.DELETE("/rooms/:id", scheduler, catalog.DeleteRoom)
		catalogGroup.POST("/rooms/import", scheduler, catalog.ImportRooms)

		catalogGroup.GET("/departments", catalog.ListDepartments)
		catalogGroup.POST("/departments", scheduler, catalog.CreateDepartment)
		catalogGroup.PUT("/departments/:id", scheduler, catalog.UpdateDepartment)
		catalogGroup.DELETE("/departments/:id", scheduler, catalog.DeleteDepartment)

		catalogGroup.GET("/courses", catalog.ListCourses)
		catalogGroup.GET("/courses/:id", catalog.GetCourse)
		catalogGroup.POST("/courses", scheduler, catalog.CreateCourse)
		catalogGroup.PUT("/courses/:id", scheduler, catalog.UpdateCourse)
		catalogGroup.DELETE("/courses/:id", scheduler, catalog.DeleteCourse)
		catalogGroup.POST("/courses/import", scheduler, catalog.ImportCourses)

		catalogGroup.GET("/sections", catalog.ListSections)
		catalogGroup.GET("/sections/:id", catalog.GetSection)
		catalogGroup.POST("/sections", scheduler, catalog.CreateSection)
		catalogGroup.PUT("/sections/:id", scheduler, catalog.UpdateSection)
		catalogGroup.DELETE("/sections/:id", scheduler, catalog.DeleteSection)

		catalogGroup.GET("/meeting-times", catalog.ListMeetingTimes)
		catalogGroup.POST("/meeting-times", scheduler, catalog.CreateMeetingTime)
		catalogGroup.DELETE("/meeting-times/:id", scheduler, catalog.DeleteMeetingTime)
		catalogGroup.POST("/meeting-times/seed", scheduler, catalog.SeedMeetingTimes)
	}

	timetableGroup := api.Group("/timetables", middleware.JWT(authService))
	{
		timetableGroup.GET("", timetables.List)
		timetableGroup.GET("/:id", timetables.Get)
		timetableGroup.GET("/:id/progression", timetables.Progression)
		timetableGroup.POST("/generate", scheduler, timetables.Generate)
		timetableGroup.POST("/:id/check-conflicts", scheduler, timetables.CheckMove)
		timetableGroup.POST("/:id/activate", scheduler, timetables.Activate)
		timetableGroup.POST("/:id/export", scheduler, timetables.Export)
		timetableGroup.DELETE("/:id", scheduler, timetables.Delete)
	}
}
