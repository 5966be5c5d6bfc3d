package router

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"safebox/internal/config"
	"safebox/internal/handler"
	appmw "safebox/internal/middleware"
	"safebox/internal/storage"
)

// Register wires routes and middleware. resolveUser guards every route that
// acts on behalf of a user.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	resolveUser echo.MiddlewareFunc,
	userHandler *handler.UserHandler,
	fileHandler *handler.FileHandler,
	activityHandler *handler.ActivityHandler,
) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(appmw.RequestLogger(zap.L()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			appmw.HeaderUserID,
		},
		ExposeHeaders: []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	if cfg.RateLimitRPS > 0 {
		e.Use(rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	if cfg.ServeUploads {
		e.GET(storage.PublicPrefix+"/*",
			echo.StaticDirectoryHandler(echo.MustSubFS(e.Filesystem, cfg.UploadsDir), false),
			userBlobsOnly)
	}

	api := e.Group("/api")

	// Public routes
	api.POST("/users/get-or-create", userHandler.GetOrCreate)

	// Routes acting for a user (bearer token or x-user-id)
	secured := api.Group("", appmw.BearerToken([]byte(cfg.JWTSecret)), resolveUser)

	secured.POST("/users/logout", userHandler.Logout)

	secured.GET("/files", fileHandler.ListFiles)
	secured.GET("/files/stats", fileHandler.Stats)
	secured.POST("/files/upload", fileHandler.Upload,
		middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB+1)))
	secured.GET("/files/:id", fileHandler.GetFile)
	secured.GET("/files/:id/download", fileHandler.Download)
	secured.PATCH("/files/:id/favorite", fileHandler.ToggleFavorite)
	secured.DELETE("/files/:id", fileHandler.Delete)

	secured.GET("/activity", activityHandler.Recent)
}

// userBlobsOnly limits the static route to <user id>/<filename>, keeping
// in-progress uploads and anything else under the root private.
func userBlobsOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := c.Param("*")
		if unescaped, err := url.PathUnescape(p); err == nil {
			p = unescaped
		}
		userID, name, ok := strings.Cut(strings.TrimPrefix(p, "/"), "/")
		if !ok || userID == "" || strings.Trim(userID, "0123456789") != "" ||
			name == "" || strings.ContainsAny(name, `/\`) {
			return echo.ErrNotFound
		}
		return next(c)
	}
}

func rateLimiter(rps float64, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(rps),
			Burst:     burst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "cannot identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, slow down")
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
