// Package app assembles the HTTP server from its parts.
package app

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"safebox/internal/auth"
	"safebox/internal/cache"
	"safebox/internal/config"
	"safebox/internal/handler"
	"safebox/internal/middleware"
	"safebox/internal/repository"
	"safebox/internal/router"
	"safebox/internal/scan"
	"safebox/internal/service"
	"safebox/internal/storage"
)

// New builds the echo server with every route registered. cacheClient may
// be nil.
func New(cfg *config.Config, gormDB *gorm.DB, cacheClient *cache.Client) (*echo.Echo, error) {
	blobs, err := storage.NewLocal(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	var scanner scan.Scanner
	if cfg.ClamAVAddress != "" {
		clam := scan.NewClamAV(cfg.ClamAVAddress)
		if err := clam.Ping(); err != nil {
			return nil, fmt.Errorf("antivirus: %w", err)
		}
		scanner = clam
		zap.L().Info("antivirus scanning enabled", zap.String("address", cfg.ClamAVAddress))
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	fileRepo := repository.NewFileRepository(gormDB)
	activityRepo := repository.NewActivityRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userService := service.NewUserService(userRepo, cacheClient)
	authService := service.NewAuthService(jwtService, tokenStore)
	activityService := service.NewActivityService(activityRepo)
	fileService := service.NewFileService(
		fileRepo,
		activityService,
		blobs,
		scanner,
		service.NewUploadPolicy(cfg.UploadTypePolicy, cfg.MaxUploadBytes()),
		cfg.PublicBaseURL,
	)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userService, authService)
	fileHandler := handler.NewFileHandler(fileService)
	activityHandler := handler.NewActivityHandler(activityService)

	e := echo.New()
	e.HideBanner = true

	router.Register(
		e,
		cfg,
		middleware.ResolveUser(userService, authService, cfg.AllowUserIDHeader),
		userHandler,
		fileHandler,
		activityHandler,
	)
	return e, nil
}
