package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/simpleconf/simpleconf-api/internal/handler"
	"github.com/simpleconf/simpleconf-api/internal/middleware"
	"github.com/simpleconf/simpleconf-api/internal/repository"
	"github.com/simpleconf/simpleconf-api/internal/service"
	"github.com/simpleconf/simpleconf-api/pkg/cache"
	"github.com/simpleconf/simpleconf-api/pkg/config"
	"github.com/simpleconf/simpleconf-api/pkg/database"
	"github.com/simpleconf/simpleconf-api/pkg/logger"
	corsmiddleware "github.com/simpleconf/simpleconf-api/pkg/middleware/cors"
	reqidmiddleware "github.com/simpleconf/simpleconf-api/pkg/middleware/requestid"
)

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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	// Redis is only needed for the optional popular-documents cache; the
	// server runs without it.
	var redisClient *redis.Client
	if cfg.Popular.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, popular cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
		}
	}

	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Popular.CacheTTL, logr,
		cfg.Popular.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	folderSvc := service.NewFolderService(folderRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, folderRepo, cacheSvc, metricsSvc, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	folderHandler := handler.NewFolderHandler(folderSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	r.GET("/departments", authHandler.Departments)

	authed := r.Group("/", middleware.JWT(authSvc))
	{
		authed.GET("/folders", folderHandler.List)
		authed.POST("/folders", folderHandler.Create)
		authed.GET("/folders/:id", folderHandler.Get)
		authed.DELETE("/folders/:id", folderHandler.Delete)
		authed.GET("/folders/:id/documents", documentHandler.ListByFolder)
		authed.GET("/folders/:id/document-count", folderHandler.DocumentCount)

		authed.POST("/documents", documentHandler.Create)
		authed.GET("/documents/popular", documentHandler.Popular)
		authed.GET("/documents/:id", documentHandler.Get)
		authed.PUT("/documents/:id", documentHandler.Update)
		authed.DELETE("/documents/:id", documentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
