package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipekeeper/backend/config"
	"github.com/pageza/recipekeeper/backend/internal/database"
	"github.com/pageza/recipekeeper/backend/internal/logger"
	"github.com/pageza/recipekeeper/backend/internal/metrics"
	"github.com/pageza/recipekeeper/backend/internal/router"
	"github.com/pageza/recipekeeper/backend/internal/server"
	"github.com/pageza/recipekeeper/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.Env.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
	zl.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	zl.Info("starting recipekeeper", zap.String("env", string(cfg.Env)), zap.String("addr", cfg.Addr()))

	db, err := database.New(ctx, cfg, logger.Component(zl, "database"))
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.Migrate(ctx, db, logger.Component(zl, "migrate")); err != nil {
		return err
	}

	rdb, err := database.NewRedisClient(ctx, cfg, logger.Component(zl, "redis"))
	if err != nil {
		zl.Warn("redis unavailable, continuing without it", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	m := metrics.New()

	var cache *service.RecipeCache
	var queue *service.IngestQueue
	if rdb != nil {
		if cfg.CacheTTL > 0 {
			cache = service.NewRecipeCache(rdb, cfg.CacheTTL)
		}
		queue = service.NewIngestQueue(rdb, cfg.IngestQueueKey)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, zl)
	userService := service.NewUserService(db, cache, zl)
	recipeService := service.NewRecipeService(db, cache, queue, m, zl)

	var store service.ObjectStore
	if cfg.StorageEnabled() {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return err
		}
		store = service.NewS3Store(s3cfg)
	} else {
		zl.Info("S3_BUCKET_NAME not set, image uploads disabled")
	}
	imageService := service.NewImageService(store, recipeService, m, zl)

	deps := router.Dependencies{
		DB:      db,
		Redis:   rdb,
		Metrics: m,
		Log:     zl,
		Auth:    authService,
		Users:   userService,
		Recipes: recipeService,
		Images:  imageService,
	}

	return server.New(cfg, router.SetupRouter(cfg, deps), zl).Run(ctx)
}
