package handler

import (
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"safebox/internal/errors"
	"safebox/internal/middleware"
	"safebox/internal/model"
	"safebox/internal/service"
)

// FileHandler serves the file API. Every operation acts on the caller's files.
type FileHandler struct {
	svc service.FileService
}

// NewFileHandler creates a handler layer.
func NewFileHandler(svc service.FileService) *FileHandler {
	return &FileHandler{svc: svc}
}

// FileListResponse wraps a file listing.
type FileListResponse struct {
	Success bool         `json:"success"`
	Data    []model.File `json:"data"`
}

// FileResponse wraps a single file.
type FileResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    *model.File `json:"data"`
}

// FavoriteResponse reports the favorite flag after a toggle.
type FavoriteResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Favorite bool   `json:"favorite"`
}

// StatsResponse wraps storage totals.
type StatsResponse struct {
	Success bool                `json:"success"`
	Data    *model.StorageStats `json:"data"`
}

func fileID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %q", errors.ErrInvalidFileID, c.Param("id"))
	}
	return uint(id), nil
}

// ListFiles godoc
// @Summary List files
// @Description Newest first. Only the literal favorite=true filters to favorites.
// @Tags files
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Param favorite query bool false "Only favorites"
// @Success 200 {object} FileListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /files [get]
func (h *FileHandler) ListFiles(c echo.Context) error {
	favoritesOnly := c.QueryParam("favorite") == "true"
	files, err := h.svc.List(c.Request().Context(), middleware.CurrentUser(c).ID, favoritesOnly)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, FileListResponse{Success: true, Data: files})
}

// GetFile godoc
// @Summary Get file metadata
// @Tags files
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Param id path int true "File ID"
// @Success 200 {object} FileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /files/{id} [get]
func (h *FileHandler) GetFile(c echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return fail(err)
	}
	file, err := h.svc.Get(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, FileResponse{Success: true, Data: file})
}

// Upload godoc
// @Summary Upload a file
// @Description Multipart upload. Images, documents, videos and archives only.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Param file formData file true "File to store"
// @Success 201 {object} FileResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 413 {object} errors.ErrorResponse
// @Failure 415 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /files/upload [post]
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			return fail(errors.ErrNoFile)
		}
		var maxErr *http.MaxBytesError
		var he *echo.HTTPError
		if stderrors.As(err, &maxErr) || (stderrors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge) {
			return fail(errors.ErrFileTooLarge)
		}
		return fail(fmt.Errorf("%w: %v", errors.ErrNoFile, err))
	}

	file, err := h.svc.Upload(c.Request().Context(), middleware.CurrentUser(c).ID, service.UploadInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, FileResponse{
		Success: true,
		Message: "File uploaded successfully",
		Data:    file,
	})
}

// ToggleFavorite godoc
// @Summary Toggle favorite flag
// @Tags files
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Param id path int true "File ID"
// @Success 200 {object} FavoriteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /files/{id}/favorite [patch]
func (h *FileHandler) ToggleFavorite(c echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return fail(err)
	}
	file, err := h.svc.ToggleFavorite(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(err)
	}

	msg := "Removed from favorites"
	if file.Favorite {
		msg = "Added to favorites"
	}
	return c.JSON(http.StatusOK, FavoriteResponse{Success: true, Message: msg, Favorite: file.Favorite})
}

// Delete godoc
// @Summary Delete a file
// @Tags files
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Param id path int true "File ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /files/{id} [delete]
func (h *FileHandler) Delete(c echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return fail(err)
	}
	if err := h.svc.Delete(c.Request().Context(), middleware.CurrentUser(c).ID, id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "File deleted successfully"})
}

// Download godoc
// @Summary Download file content
// @Tags files
// @Produce octet-stream
// @Security BearerAuth
// @Security UserIDHeader
// @Param id path int true "File ID"
// @Success 200 {file} binary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /files/{id}/download [get]
func (h *FileHandler) Download(c echo.Context) error {
	id, err := fileID(c)
	if err != nil {
		return fail(err)
	}
	file, path, err := h.svc.Download(c.Request().Context(), middleware.CurrentUser(c).ID, id)
	if err != nil {
		return fail(err)
	}
	return c.Attachment(path, file.Filename)
}

// Stats godoc
// @Summary Storage totals
// @Tags files
// @Produce json
// @Security BearerAuth
// @Security UserIDHeader
// @Success 200 {object} StatsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /files/stats [get]
func (h *FileHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, StatsResponse{Success: true, Data: stats})
}
