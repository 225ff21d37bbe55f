package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/giron-dev/giron-api/api/swagger"
	"github.com/giron-dev/giron-api/internal/handler"
	"github.com/giron-dev/giron-api/internal/middleware"
	"github.com/giron-dev/giron-api/internal/repository"
	"github.com/giron-dev/giron-api/internal/service"
	"github.com/giron-dev/giron-api/pkg/cache"
	"github.com/giron-dev/giron-api/pkg/config"
	"github.com/giron-dev/giron-api/pkg/database"
	"github.com/giron-dev/giron-api/pkg/logger"
	corsmiddleware "github.com/giron-dev/giron-api/pkg/middleware/cors"
	reqidmiddleware "github.com/giron-dev/giron-api/pkg/middleware/requestid"
	"github.com/giron-dev/giron-api/pkg/token"
)

// @title Giron API
// @version 1.0.0
// @description Discussion board backend with token-based sessions
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	keys, err := token.NewKeyring(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)
	if err != nil {
		logr.Sugar().Fatalw("failed to build signing keys", "error", err)
	}
	codec := token.NewCodec(cfg.JWT.Issuer, cfg.JWT.Audience)

	var revoked repository.RevocationLog
	if cfg.Revocation.UseRedis {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		revoked = repository.NewRedisRevocationLog(redisClient)
	} else {
		memLog := repository.NewMemoryRevocationLog()
		memLog.StartSweeper(ctx, cfg.Revocation.SweepInterval, logr)
		revoked = memLog
	}

	userRepo := repository.NewUserRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	validate := validator.New()
	metrics := service.NewMetricsService()

	sessionSvc := service.NewSessionService(
		service.NewCredentialValidator(userRepo, logr),
		userRepo,
		revoked,
		codec,
		keys,
		validate,
		logr,
		metrics,
		service.SessionConfig{
			AccessTokenExpiry:  cfg.JWT.AccessExpiry,
			RefreshTokenExpiry: cfg.JWT.RefreshExpiry,
		},
	)
	userSvc := service.NewUserService(userRepo, validate, logr, service.UserConfig{
		UserRegistrationEnabled:  cfg.Registration.UserEnabled,
		AdminRegistrationEnabled: cfg.Registration.AdminEnabled,
	})
	domainSvc := service.NewDomainService(domainRepo, validate, logr)
	postSvc := service.NewPostService(postRepo, domainRepo, userRepo, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, postRepo, userRepo, validate, logr)

	sessionHandler := handler.NewSessionHandler(sessionSvc)
	userHandler := handler.NewUserHandler(userSvc)
	domainHandler := handler.NewDomainHandler(domainSvc)
	postHandler := handler.NewPostHandler(postSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.PATCH("", sessionHandler.Refresh)
		sessions.DELETE("", sessionHandler.End)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.Register)
		users.HEAD("/:username", userHandler.Exists)
		users.HEAD("/:username/2fa", userHandler.TwoFactorEnabled)

		authed := users.Group("", middleware.JWT(sessionSvc))
		authed.PATCH("/:username/password", middleware.RequireSelfOrAdmin(), userHandler.ChangePassword)
		authed.GET("/:username/2fa/key", middleware.RBAC(middleware.SelfRole), userHandler.GenerateTwoFactorKey)
		authed.POST("/:username/2fa", middleware.RBAC(middleware.SelfRole), userHandler.EnableTwoFactor)
		authed.DELETE("/:username/2fa", middleware.RBAC(middleware.SelfRole), userHandler.DisableTwoFactor)
		authed.DELETE("/:username", middleware.RequireSelfOrAdmin(), userHandler.Delete)
	}

	domains := api.Group("/domains")
	{
		domains.GET("", domainHandler.List)
		domains.GET("/:name", domainHandler.Get)
		domains.POST("", middleware.JWT(sessionSvc), middleware.RequireAdmin(), domainHandler.Create)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.GET("/:id", postHandler.Get)

		authed := posts.Group("", middleware.JWT(sessionSvc))
		authed.POST("", postHandler.Create)
		authed.PATCH("/:id", postHandler.Update)
		authed.DELETE("/:id", postHandler.Delete)
		authed.POST("/:id/likes", postHandler.Like)
		authed.DELETE("/:id/likes", postHandler.Unlike)
	}

	comments := api.Group("/comments")
	{
		comments.GET("", commentHandler.List)
		comments.GET("/:id", commentHandler.Get)

		authed := comments.Group("", middleware.JWT(sessionSvc))
		authed.POST("", commentHandler.Create)
		authed.PATCH("/:id", commentHandler.Update)
		authed.DELETE("/:id", commentHandler.Delete)
		authed.POST("/:id/likes", commentHandler.Like)
		authed.DELETE("/:id/likes", commentHandler.Unlike)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
