package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/cloud-media-platform/internal/auth"
	"github.com/fathima-sithara/cloud-media-platform/internal/cache"
	"github.com/fathima-sithara/cloud-media-platform/internal/config"
	"github.com/fathima-sithara/cloud-media-platform/internal/handlers"
	"github.com/fathima-sithara/cloud-media-platform/internal/logging"
	"github.com/fathima-sithara/cloud-media-platform/internal/metrics"
	"github.com/fathima-sithara/cloud-media-platform/internal/repository"
	service "github.com/fathima-sithara/cloud-media-platform/internal/services"
	"github.com/fathima-sithara/cloud-media-platform/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		panic(err)
	}
	dev := cfg.App.Env == "development"

	logger, err := logging.New(dev)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mc, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	db := mc.Database(cfg.Mongo.Database)
	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.UsersCollection, logger)
	mediaRepo := repository.NewMongoMediaRepo(db, cfg.Mongo.MediaCollection, logger)

	// S3
	store, err := storage.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket, cfg.S3.Endpoint, cfg.S3.PublicRead)
	if err != nil {
		logger.Fatalf("s3 init: %v", err)
	}

	// Redis cache for presigned URLs; optional
	var urlCache service.Cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		redisCache = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		urlCache = redisCache
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL)
	authSvc := service.NewAuthService(userRepo, tokens)
	mediaSvc := service.NewMediaService(mediaRepo, store, urlCache, logger, service.MediaOptions{
		MaxUploadBytes:  cfg.MaxUploadBytes,
		ImageTypes:      cfg.AllowedImageTypes(),
		VideoTypes:      cfg.AllowedVideoTypes(),
		DefaultPageSize: cfg.Upload.DefaultPageSize,
		MaxPageSize:     cfg.Upload.MaxPageSize,
		PresignTTL:      cfg.PresignTTL,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.MaxUploadBytes) + 1024*1024,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOriginList(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())

	h := handlers.NewHandler(authSvc, mediaSvc, logger)
	handlers.RegisterRoutes(app, h, tokens)

	if cfg.App.MetricsPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
			logger.Infof("metrics listening on %s", addr)
			if err := metrics.Serve(addr); err != nil {
				logger.Errorf("metrics listener: %v", err)
			}
		}()
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("cloud media platform listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown requested")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()
	_ = app.Shutdown()
	if redisCache != nil {
		_ = redisCache.Close()
	}
	_ = mc.Disconnect(shutdownCtx)
	logger.Info("shutdown completed")
}
