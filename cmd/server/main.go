package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	_ "taskmanager/docs" // swagger docs

	"taskmanager/internal/auth"
	"taskmanager/internal/cache"
	"taskmanager/internal/config"
	"taskmanager/internal/db"
	"taskmanager/internal/handler"
	"taskmanager/internal/logging"
	"taskmanager/internal/repository"
	"taskmanager/internal/router"
	"taskmanager/internal/service"
)

// @title Task Manager API
// @version 1.0
// @description Task management API with JWT authentication, ownership-based authorization and categories.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is not set, using the development default")
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		log.WithError(err).Fatal("database init")
	}
	policy := retryPolicy(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB, policy)
	roleRepo := repository.NewRoleRepository(gormDB, policy)
	taskRepo := repository.NewTaskRepository(gormDB, policy)
	categoryRepo := repository.NewCategoryRepository(gormDB, policy)

	// An unreachable database is logged, not fatal; requests fail until it is back.
	ctx := context.Background()
	if db.Startup(ctx, gormDB, policy, cfg.ResetDB, log) {
		seed(ctx, cfg, service.NewSeeder(userRepo, roleRepo, log), log)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient != nil {
		if err := cacheClient.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, user lookups will bypass the cache")
		}
		defer cacheClient.Close()
	}

	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Expiry:   cfg.JWTExpiry,
	})

	log.WithField("token_ttl", tokens.Expiry().String()).Info("token service configured")

	// Initialize services
	authService := service.NewAuthService(userRepo, roleRepo, tokens)
	taskService := service.NewTaskService(taskRepo, userRepo, categoryRepo)
	userService := service.NewUserService(userRepo, cacheClient)
	categoryService := service.NewCategoryService(categoryRepo)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, log, tokens, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Task:     handler.NewTaskHandler(taskService),
		User:     handler.NewUserHandler(userService),
		Category: handler.NewCategoryHandler(categoryService),
	})

	addr := ":" + cfg.ServerPort
	go func() {
		log.WithField("addr", addr).Info("server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server start")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("shutdown")
	}
	log.Info("server stopped")
}

func retryPolicy(cfg *config.Config) db.RetryPolicy {
	policy := db.DefaultRetryPolicy()
	policy.MaxRetries = cfg.DBMaxRetries
	policy.MaxDelay = cfg.DBMaxRetryDelay
	policy.CommandTimeout = cfg.DBCommandTimeout
	return policy
}

// seed ensures the built-in roles and users exist. Failures are logged; the server still starts.
func seed(ctx context.Context, cfg *config.Config, seeder *service.Seeder, log logrus.FieldLogger) {
	var extra []service.SeedUser
	if cfg.SeedUsersPath != "" {
		users, err := service.LoadSeedFile(cfg.SeedUsersPath)
		if err != nil {
			log.WithError(err).WithField("path", cfg.SeedUsersPath).Warn("seed file ignored")
		}
		extra = users
	}
	if err := seeder.Run(ctx, extra); err != nil {
		log.WithError(err).Error("seeding failed")
	}
}
