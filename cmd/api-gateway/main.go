package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/srbenoit/mathops-db-sub013/api/swagger"
	"github.com/srbenoit/mathops-db-sub013/internal/handler"
	internalmiddleware "github.com/srbenoit/mathops-db-sub013/internal/middleware"
	"github.com/srbenoit/mathops-db-sub013/internal/models"
	"github.com/srbenoit/mathops-db-sub013/internal/repository"
	"github.com/srbenoit/mathops-db-sub013/internal/service"
	"github.com/srbenoit/mathops-db-sub013/pkg/cache"
	"github.com/srbenoit/mathops-db-sub013/pkg/config"
	"github.com/srbenoit/mathops-db-sub013/pkg/database"
	"github.com/srbenoit/mathops-db-sub013/pkg/jobs"
	"github.com/srbenoit/mathops-db-sub013/pkg/logger"
	corsmiddleware "github.com/srbenoit/mathops-db-sub013/pkg/middleware/cors"
	reqidmiddleware "github.com/srbenoit/mathops-db-sub013/pkg/middleware/requestid"
)

// @title MathOps Deadline API
// @version 1.0.0
// @description Course milestones, deadline extensions and pace tracking for self-paced math courses
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	validate := validator.New()

	termRepo := repository.NewTermRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	sectionRepo := repository.NewCourseSectionRepository(db)
	studentTermRepo := repository.NewStudentTermRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	overrideRepo := repository.NewStudentMilestoneRepository(db)
	appealRepo := repository.NewMilestoneAppealRepository(db)
	paceAppealRepo := repository.NewPaceAppealRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	examRepo := repository.NewExamRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	termSvc := service.NewTermService(termRepo, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		Expiry:   cfg.JWT.Expiration,
	})
	source := service.NewStudentDataSource(studentRepo, registrationRepo, overrideRepo, appealRepo, paceAppealRepo)
	calendarSvc := service.NewCalendarService(calendarRepo, termSvc, cacheSvc, logr)
	milestoneSvc := service.NewMilestoneService(milestoneRepo, cacheSvc, validate, logr)
	paceSvc := service.NewPaceTrackService(sectionRepo, studentRepo, studentTermRepo, logr)
	extensionSvc := service.NewExtensionService(milestoneSvc, calendarSvc, sectionRepo, overrideRepo, appealRepo, metrics, service.ExtensionSettings{
		Circumstances:      cfg.Extensions.Circumstances,
		Interviewer:        cfg.Extensions.Interviewer,
		FinalRetryAttempts: cfg.Extensions.FinalRetryAttempts,
	}, logr)
	courseStatusSvc := service.NewCourseStatusService(examRepo, registrationRepo, studentTermRepo, sectionRepo, milestoneSvc, logr)
	recomputeSvc := service.NewRecomputeService(source, paceSvc, courseStatusSvc, nil, metrics, logr)

	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()
	recomputeQueue := jobs.NewQueue(service.RecomputeJobType, recomputeSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})
	recomputeSvc.SetQueue(recomputeQueue)
	metrics.RegisterQueueDepth(service.RecomputeJobType, recomputeQueue.Depth)
	recomputeQueue.Start(queueCtx)
	defer recomputeQueue.Stop()

	metricsHandler := handler.NewMetricsHandler(metrics, db)
	termHandler := handler.NewTermHandler(termSvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	studentHandler := handler.NewStudentHandler(source, termSvc, paceSvc, recomputeSvc, courseStatusSvc)
	deadlineHandler := handler.NewDeadlineHandler(source, termSvc, milestoneSvc, extensionSvc)
	adminHandler := handler.NewAdminHandler(cacheSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokenSvc))

	staff := internalmiddleware.Roles(models.RoleAdmin, models.RoleAdviser)

	terms := api.Group("/terms")
	terms.GET("", termHandler.List)
	terms.GET("/active", termHandler.GetActive)
	terms.GET("/:termId", termHandler.Get)

	calendar := api.Group("/calendar")
	calendar.GET("/open-days", calendarHandler.OpenDays)
	calendar.GET("/next-open-day", calendarHandler.NextOpenDay)

	students := api.Group("/students/:studentId")
	students.Use(internalmiddleware.Authorize(staff, internalmiddleware.Self()))
	students.GET("/pace", studentHandler.Pace)
	students.POST("/recompute", internalmiddleware.Audit(auditRepo, logr, models.AuditActionRecompute, "student"), studentHandler.Recompute)
	students.GET("/courses/:course/status", studentHandler.CourseStatus)
	students.GET("/milestones/:model", deadlineHandler.Milestones)
	students.GET("/appeals", deadlineHandler.Appeals)
	students.GET("/extensions/:model", deadlineHandler.DaysAvailable)
	students.POST("/extensions/:model", internalmiddleware.Audit(auditRepo, logr, models.AuditActionFreeExtension, "milestone"), deadlineHandler.Apply)

	admin := api.Group("/admin")
	admin.Use(internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.GET("/metrics", metricsHandler.Summary)
	admin.POST("/cache/invalidate", internalmiddleware.Audit(auditRepo, logr, models.AuditActionCacheInvalidate, "cache"), adminHandler.InvalidateCache)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
	logr.Info("server stopped")
}
