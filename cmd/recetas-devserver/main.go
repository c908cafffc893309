package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/houzhh15/recetas/internal/devserver"
	"github.com/houzhh15/recetas/pkg/logger"
)

func main() {
	// .env 可选，不覆盖已有环境变量
	_ = godotenv.Load()

	cfg, err := devserver.LoadConfig()
	if err != nil {
		panic(err)
	}

	logInstance, err := logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})
	if err != nil {
		panic(err)
	}
	appLogger := logInstance.With("component", "recetas-devserver")

	if err := devserver.ValidateConfig(cfg); err != nil {
		appLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	store := devserver.NewStore()
	if cfg.Seed {
		if err := store.Seed(); err != nil {
			appLogger.Error("seed failed", "error", err)
			os.Exit(1)
		}
		appLogger.Info("seed data loaded")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           devserver.NewRouter(cfg, store, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("server starting", "addr", cfg.Addr, "env", cfg.Env, "require_auth", cfg.RequireAuth)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号后优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	appLogger.Info("server shutdown complete")
}
