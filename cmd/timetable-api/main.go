package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schoolcore/timetable-api/api/swagger"
	"github.com/schoolcore/timetable-api/internal/handler"
	"github.com/schoolcore/timetable-api/internal/middleware"
	"github.com/schoolcore/timetable-api/internal/repository"
	"github.com/schoolcore/timetable-api/internal/service"
	"github.com/schoolcore/timetable-api/pkg/cache"
	"github.com/schoolcore/timetable-api/pkg/config"
	"github.com/schoolcore/timetable-api/pkg/database"
	"github.com/schoolcore/timetable-api/pkg/logger"
	corsmiddleware "github.com/schoolcore/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolcore/timetable-api/pkg/middleware/requestid"
	"github.com/schoolcore/timetable-api/pkg/storage"
)

// @title School Timetable API
// @version 1.0.0
// @description Timetable validation, assembly and batch generation for the school scheduling subsystem
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Timetable.CacheTTL, logr, redisClient != nil)

	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	holidayRepo := repository.NewHolidayRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	calendar := service.NewDefaultCalendarService()
	slotValidator := service.NewSlotValidator(calendar)
	holidaySvc := service.NewHolidayService(holidayRepo, logr)
	rosterSvc := service.NewRosterService(classRepo, subjectRepo, teacherRepo, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	timetableSvc := service.NewTimetableService(
		timetableRepo, classRepo, holidaySvc, slotValidator,
		db, cacheSvc, metrics, nil, logr,
	)

	var generatorSvc *service.BatchGeneratorService
	if cfg.Scheduler.Enabled {
		generatorSvc = service.NewBatchGeneratorService(
			classRepo, subjectRepo, timetableRepo, holidaySvc, calendar,
			timetableSvc, metrics, nil, logr,
			service.BatchGeneratorConfig{MaxClasses: cfg.Scheduler.MaxBatchClasses},
		)
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(
			timetableSvc, subjectRepo, teacherRepo, exportStore, signer, metrics, logr,
			service.ExportServiceConfig{
				WorkerConcurrency: cfg.Exports.WorkerConcurrency,
				WorkerRetries:     cfg.Exports.WorkerRetries,
				JobTTL:            cfg.Exports.SignedURLTTL,
			},
		)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	calendarHandler := handler.NewCalendarHandler(calendar, holidaySvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	{
		api.GET("/metrics/snapshot", metricsHandler.Snapshot)

		api.GET("/classes", rosterHandler.ListClasses)
		api.GET("/classes/:classId", rosterHandler.GetClass)
		api.GET("/classes/:classId/timetable", timetableHandler.GetActive)
		api.GET("/subjects", rosterHandler.ListSubjects)
		api.GET("/teachers", rosterHandler.ListTeachers)
		api.GET("/teachers/:id", rosterHandler.GetTeacher)
		api.GET("/teachers/:id/schedule", timetableHandler.TeacherWeek)
		api.GET("/teachers/:id/availability", timetableHandler.TeacherAvailability)
		api.GET("/teachers/:id/conflicts", timetableHandler.TeacherConflicts)

		api.GET("/calendar/structure", calendarHandler.Structure)
		api.GET("/calendar/holidays", calendarHandler.Holidays)

		api.POST("/timetables/validate-slot", timetableHandler.ValidateSlot)
		api.POST("/timetables/validate-week", timetableHandler.ValidateWeek)
		api.POST("/timetables/commit", timetableHandler.CommitWeek)
		api.GET("/timetables/:id", timetableHandler.GetByID)

		if generatorSvc != nil {
			generatorHandler := handler.NewGeneratorHandler(generatorSvc)
			api.POST("/timetables/generate", generatorHandler.Generate)
		}

		if exportSvc != nil {
			exportHandler := handler.NewExportHandler(exportSvc)
			api.POST("/exports/timetables/:id", exportHandler.Enqueue)
			api.GET("/exports/jobs/:jobId", exportHandler.Status)
			api.GET("/exports/download", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := server.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
