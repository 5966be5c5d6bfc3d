package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"safebox/internal/middleware"
	"safebox/internal/model"
	"safebox/internal/service"
)

// ActivityHandler serves the activity feed.
type ActivityHandler struct {
	svc service.ActivityService
}

// NewActivityHandler creates a handler layer.
func NewActivityHandler(svc service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// ActivityResponse wraps the recent entries.
type ActivityResponse struct {
	Success bool                `json:"success"`
	Data    []model.ActivityLog `json:"data"`
}

// Recent godoc
// @Summary Recent activity
// @Description The 10 newest entries, newest first.
// @Tags activity
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Success 200 {object} ActivityResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /activity [get]
func (h *ActivityHandler) Recent(c echo.Context) error {
	entries, err := h.svc.Recent(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, ActivityResponse{Success: true, Data: entries})
}
