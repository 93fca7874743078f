package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"instaclone/internal/config"
	"instaclone/internal/db"
	apihttp "instaclone/internal/http"
	"instaclone/internal/media"
	"instaclone/internal/repository"
	"instaclone/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	userRepo := repository.NewPgUserRepository(pool)
	followRepo := repository.NewPgFollowRepository(pool)
	postRepo := repository.NewPgPostRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	uploader := media.NewDisabledUploader("image uploads not configured")
	if cfg.UploadsEnabled() {
		s3Uploader, err := media.NewS3Uploader(ctx, media.S3Options{
			Bucket:        cfg.S3Bucket,
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
		if err != nil {
			logger.Warn("s3 uploader init failed", zap.Error(err))
		} else {
			uploader = s3Uploader
		}
	}

	loginLimiter := service.NewMemoryLoginLimiter(cfg.LoginWindow(), cfg.LoginMaxAttempts)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			loginLimiter = service.NewRedisLoginLimiter(redisClient, logger, cfg.LoginWindow(), cfg.LoginMaxAttempts)
		}
		cancel()
	}

	sessionSvc := service.NewSessionService(cfg.JWTSecret, cfg.SessionTTL())
	userSvc := service.NewUserService(logger, userRepo, postRepo, uploader, loginLimiter, cfg.MaxUploadBytes())
	relationSvc := service.NewRelationshipService(logger, userRepo, followRepo)
	postSvc := service.NewPostService(logger, postRepo, uploader, cfg.MaxUploadBytes())
	messageSvc := service.NewMessageService(userRepo, messageRepo)

	router := apihttp.NewRouter(logger, apihttp.SessionAuthMiddleware(sessionSvc, cfg.CookieName), apihttp.Handlers{
		Health:   apihttp.NewHealthHandler(logger, pool),
		Users:    apihttp.NewUserHandler(logger, userSvc, relationSvc, sessionSvc, apihttp.CookieConfig{Name: cfg.CookieName, Secure: cfg.CookieSecure}),
		Posts:    apihttp.NewPostHandler(logger, postSvc),
		Messages: apihttp.NewMessageHandler(logger, messageSvc),
	})
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
}
