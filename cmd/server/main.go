package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"safebox/docs"
	"safebox/internal/app"
	"safebox/internal/cache"
	"safebox/internal/config"
	"safebox/internal/db"
	"safebox/internal/logger"
)

// @title SafeBox API
// @version 1.0
// @description Personal cloud storage: users, file upload and download, favorites and activity.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
// @securityDefinitions.apikey UserIDHeader
// @in header
// @name x-user-id
// @description Numeric user id, accepted when header identity is enabled.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Install(zl)()
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		zl.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		zl.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			zl.Warn("drop tables", zap.Error(err))
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("auto-migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if cacheClient != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			zl.Warn("redis unreachable, continuing without cache", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		cancel()
		defer cacheClient.Close()
	}

	e, err := app.New(cfg, gormDB, cacheClient)
	if err != nil {
		zl.Fatal("server init", zap.Error(err))
	}

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	zl.Info("swagger documentation available",
		zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		zl.Info("listening", zap.String("addr", addr), zap.String("uploads_dir", cfg.UploadsDir))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
