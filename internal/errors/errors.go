package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserIDRequired is returned when a request carries no user identity.
	ErrUserIDRequired = errors.New("user id required")
	// ErrUserNotFound is returned when the identified user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidToken is returned for a bad, expired or revoked session token.
	ErrInvalidToken = errors.New("invalid or expired session token")
	// ErrInvalidEmail is returned when get-or-create receives no usable email.
	ErrInvalidEmail = errors.New("a valid email is required")
	// ErrInvalidRequest is returned for malformed request bodies.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrFileNotFound is returned when a file is missing or owned by someone else.
	ErrFileNotFound = errors.New("file not found")
	// ErrBlobMissing is returned when the metadata row exists but the blob does not.
	ErrBlobMissing = errors.New("file not found on server")
	// ErrInvalidFileID is returned when the path id is not a positive integer.
	ErrInvalidFileID = errors.New("invalid file id")
	// ErrNoFile is returned when an upload request has no file part.
	ErrNoFile = errors.New("no file uploaded")
	// ErrInvalidFilename is returned when the client filename cannot be stored.
	ErrInvalidFilename = errors.New("invalid file name")
	// ErrUnsupportedMediaType is returned when the upload type filter rejects a file.
	ErrUnsupportedMediaType = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
	// ErrDuplicateFilename is returned when the user already stores a file with that name.
	ErrDuplicateFilename = errors.New("a file with this name already exists")
	// ErrInfectedFile is returned when the antivirus scan flags an upload.
	ErrInfectedFile = errors.New("file rejected by antivirus scan")
)

// ErrorResponse is the failure envelope every endpoint returns.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Message: e.Message,
		Code:    e.Code,
	}
}

var mappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUserIDRequired, http.StatusUnauthorized, "USER_ID_REQUIRED"},
	{ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrInvalidEmail, http.StatusBadRequest, "INVALID_EMAIL"},
	{ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
	{ErrFileNotFound, http.StatusNotFound, "FILE_NOT_FOUND"},
	{ErrBlobMissing, http.StatusNotFound, "BLOB_MISSING"},
	{ErrInvalidFileID, http.StatusBadRequest, "INVALID_FILE_ID"},
	{ErrNoFile, http.StatusBadRequest, "NO_FILE"},
	{ErrInvalidFilename, http.StatusBadRequest, "INVALID_FILENAME"},
	{ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE_TYPE"},
	{ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
	{ErrDuplicateFilename, http.StatusConflict, "DUPLICATE_FILENAME"},
	{ErrInfectedFile, http.StatusUnprocessableEntity, "INFECTED_FILE"},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped domain errors keep
// their full message so the client sees the detail; anything unknown becomes
// a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range mappings {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, err.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
