package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "missing identity",
			err:            ErrUserIDRequired,
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "USER_ID_REQUIRED",
			expectedMsg:    "user id required",
		},
		{
			name:           "wrapped unsupported type keeps detail",
			err:            fmt.Errorf("%w: .exe (application/x-msdownload)", ErrUnsupportedMediaType),
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedCode:   "UNSUPPORTED_FILE_TYPE",
			expectedMsg:    "unsupported file type: .exe (application/x-msdownload)",
		},
		{
			name:           "duplicate",
			err:            fmt.Errorf("upload: %w", ErrDuplicateFilename),
			expectedStatus: http.StatusConflict,
			expectedCode:   "DUPLICATE_FILENAME",
		},
		{
			name:           "too large",
			err:            ErrFileTooLarge,
			expectedStatus: http.StatusRequestEntityTooLarge,
			expectedCode:   "FILE_TOO_LARGE",
		},
		{
			name:           "infected",
			err:            ErrInfectedFile,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INFECTED_FILE",
		},
		{
			name:           "explicit http error passes through",
			err:            NewHTTPError(http.StatusTeapot, "short and stout", "TEAPOT"),
			expectedStatus: http.StatusTeapot,
			expectedCode:   "TEAPOT",
			expectedMsg:    "short and stout",
		},
		{
			name:           "unknown error hides detail",
			err:            errors.New("dial tcp 10.0.0.1:3306: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
			expectedMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.expectedStatus, httpErr.StatusCode)
			assert.Equal(t, tt.expectedCode, httpErr.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, httpErr.Message)
			}

			resp := httpErr.ToErrorResponse()
			assert.False(t, resp.Success)
			assert.Equal(t, httpErr.Message, resp.Message)
		})
	}
}
