package handler

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"safebox/internal/errors"
)

// MessageResponse is the success envelope for operations without a payload.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// fail converts a domain error into an echo error carrying the failure envelope.
func fail(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// HTTPErrorHandler renders every error as {success: false, message}. Framework
// errors (unknown route, body limit, rate limit) get the same envelope.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !stderrors.As(err, &he) {
		he = fail(err)
	}

	body, ok := he.Message.(errors.ErrorResponse)
	if !ok {
		body = errors.ErrorResponse{Message: fmt.Sprint(he.Message)}
		switch he.Code {
		case http.StatusRequestEntityTooLarge:
			body = fail(errors.ErrFileTooLarge).Message.(errors.ErrorResponse)
		case http.StatusTooManyRequests:
			body.Code = "RATE_LIMITED"
		}
	}

	if he.Code >= http.StatusInternalServerError {
		cause := he.Internal
		if cause == nil {
			cause = err
		}
		zap.L().Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			zap.Error(cause))
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(he.Code)
	} else {
		writeErr = c.JSON(he.Code, body)
	}
	if writeErr != nil {
		zap.L().Warn("write error response", zap.Error(writeErr))
	}
}
