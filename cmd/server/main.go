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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sitecontent/internal/auth"
	"github.com/sitecontent/internal/config"
	"github.com/sitecontent/internal/db"
	"github.com/sitecontent/internal/handler"
	"github.com/sitecontent/internal/logging"
	"github.com/sitecontent/internal/media"
	"github.com/sitecontent/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env 只用于本地开发，缺失时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabaseURL, cfg.Debug)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		logger.Warn("ADMIN_USERNAME or ADMIN_PASSWORD is not set, admin login is disabled")
	}

	api := handler.NewAPI(handler.Options{
		DB:             gdb,
		Credentials:    auth.NewEnvCredentialStore(gdb, cfg.AdminUsername, cfg.AdminPassword),
		Tokens:         auth.NewTokenManager(cfg.SecretKey),
		Media:          media.NewLocalStore(cfg.MediaRoot, cfg.MediaURL),
		Logger:         logger,
		SiteBaseURL:    cfg.SiteBaseURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
		TrustedProxies: cfg.TrustedProxies,
	})

	gin.SetMode(cfg.GinMode)
	r := router.SetupRouter(api, router.Config{
		Debug:          cfg.Debug,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies: cfg.TrustedProxies,
		MediaRoot:      cfg.MediaRoot,
		MediaURL:       cfg.MediaURL,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", cfg.ListenAddr, "debug", cfg.Debug)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to run server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
}
