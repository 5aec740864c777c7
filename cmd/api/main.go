package main

import (
	"context"
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

	_ "github.com/hostelhub/mess-api/api/swagger"
	"github.com/hostelhub/mess-api/internal/handler"
	"github.com/hostelhub/mess-api/internal/middleware"
	"github.com/hostelhub/mess-api/internal/models"
	"github.com/hostelhub/mess-api/internal/repository"
	"github.com/hostelhub/mess-api/internal/service"
	"github.com/hostelhub/mess-api/pkg/cache"
	"github.com/hostelhub/mess-api/pkg/config"
	"github.com/hostelhub/mess-api/pkg/database"
	"github.com/hostelhub/mess-api/pkg/jobs"
	"github.com/hostelhub/mess-api/pkg/logger"
	"github.com/hostelhub/mess-api/pkg/mailer"
	corsmiddleware "github.com/hostelhub/mess-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hostelhub/mess-api/pkg/middleware/requestid"
	"github.com/hostelhub/mess-api/pkg/storage"
)

// @title HostelHub Mess API
// @version 1.0.0
// @description Hostel mess ordering, issue tracking and dashboard reporting
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

	loc, err := time.LoadLocation(cfg.Mess.Timezone)
	if err != nil {
		logr.Sugar().Fatalw("invalid mess timezone", "timezone", cfg.Mess.Timezone, "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	// Services.
	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	mailDispatcher := service.NewMailDispatcher(mailer.New(cfg.SMTP), jobs.QueueConfig{
		Workers:    cfg.Mailer.Workers,
		MaxRetries: cfg.Mailer.MaxRetries,
		RetryDelay: cfg.Mailer.RetryDelay,
		Logger:     logr,
	})
	mailDispatcher.Start(ctx)
	defer mailDispatcher.Stop()

	authSvc := service.NewAuthService(userRepo, mailDispatcher, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		VerifyTokenTTL:     cfg.Mailer.TokenTTL,
		Issuer:             "mess-api",
	})

	statsSvc := service.NewStatsService(statsRepo, metricsSvc, loc, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Stats:  statsSvc,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})
	analyticsSvc := service.NewAnalyticsService(service.AnalyticsServiceParams{
		Repo:     statsRepo,
		Cache:    cacheSvc,
		Metrics:  metricsSvc,
		Logger:   logr,
		Location: loc,
		CacheTTL: cfg.Dashboard.CacheTTL,
	})

	menuSvc := service.NewMenuService(menuRepo, cacheSvc, validate, logr)
	orderSvc := service.NewOrderService(service.OrderServiceParams{
		Repo:      orderRepo,
		Menus:     menuRepo,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
	})
	issueSvc := service.NewIssueService(issueRepo, cacheSvc, validate, logr)
	noticeSvc := service.NewNoticeService(noticeRepo, validate, logr)
	userSvc := service.NewUserService(userRepo, validate, logr)
	exportSvc := service.NewExportService(service.ExportServiceParams{
		Orders:   orderRepo,
		Menus:    menuRepo,
		Logger:   logr,
		Location: loc,
	})

	imageStore, err := storage.NewLocalStorage(cfg.Images.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init image storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Images.SignedURLSecret, cfg.Images.SignedURLTTL)
	imageSvc := service.NewImageService(imageStore, signer, cfg.APIPrefix, cfg.Images.MaxFileSizeBytes, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	menuHandler := handler.NewMenuHandler(menuSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	noticeHandler := handler.NewNoticeHandler(noticeSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, logr)
	exportHandler := handler.NewExportHandler(exportSvc)
	imageHandler := handler.NewImageHandler(imageSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.GET("/verify-email", authHandler.VerifyEmail)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Image downloads carry their own HMAC token.
	api.GET("/images/:token", imageHandler.Serve)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/change-password", authHandler.ChangePassword)

		authed.GET("/users/me", userHandler.Me)
		authed.GET("/users/:id", middleware.RBAC("ADMIN", "SELF"), userHandler.Get)

		authed.GET("/menus", menuHandler.List)
		authed.GET("/menus/:id", menuHandler.Get)

		authed.GET("/orders", orderHandler.List)
		authed.POST("/orders", orderHandler.Place)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.DELETE("/orders/:id", orderHandler.Cancel)

		authed.GET("/issues", issueHandler.List)
		authed.POST("/issues", issueHandler.Report)
		authed.GET("/issues/:id", issueHandler.Get)

		authed.GET("/notices", noticeHandler.List)

		authed.GET("/dashboard/student", dashboardHandler.Student)
		authed.GET("/analytics/orders", analyticsHandler.StudentSeries)

		authed.POST("/images/:category", imageHandler.Upload)
	}

	admin := api.Group("")
	admin.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard/admin", dashboardHandler.Admin)
		admin.GET("/analytics/orders/all", analyticsHandler.AdminSeries)

		admin.POST("/menus", menuHandler.Create)
		admin.PUT("/menus/:id", menuHandler.Update)
		admin.DELETE("/menus/:id", menuHandler.Delete)

		admin.PATCH("/orders/:id/status",
			middleware.Audit(userRepo, models.AuditActionOrderUpdate, "orders"),
			orderHandler.UpdateStatus)
		admin.PATCH("/issues/:id/status",
			middleware.Audit(userRepo, models.AuditActionIssueUpdate, "issues"),
			issueHandler.UpdateStatus)
		admin.DELETE("/issues/:id", issueHandler.Delete)

		admin.POST("/notices", noticeHandler.Post)
		admin.DELETE("/notices/:id", noticeHandler.Delete)

		admin.GET("/users", userHandler.List)
		admin.PUT("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Deactivate)

		if cfg.Exports.Enabled {
			admin.GET("/exports/orders.csv", exportHandler.OrdersCSV)
			admin.GET("/exports/menu.pdf", exportHandler.WeeklyMenuPDF)
		}

		admin.GET("/ops/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "timezone", cfg.Mess.Timezone)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("forced shutdown", "error", err)
	}
}
