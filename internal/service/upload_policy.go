package service

import (
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"safebox/internal/config"
	apperrors "safebox/internal/errors"
)

const maxFilenameLength = 255

var uploadCategories = []struct {
	name       string
	mimeTypes  []string
	extensions []string
}{
	{
		name:       "image",
		mimeTypes:  []string{"image/jpeg", "image/png", "image/gif"},
		extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
	},
	{
		name: "document",
		mimeTypes: []string{
			"application/pdf",
			"application/msword",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"text/plain",
		},
		extensions: []string{".pdf", ".doc", ".docx", ".txt"},
	},
	{
		name:       "video",
		mimeTypes:  []string{"video/mp4", "video/quicktime"},
		extensions: []string{".mp4", ".mov"},
	},
	{
		name:       "archive",
		mimeTypes:  []string{"application/zip", "application/x-rar-compressed", "application/x-7z-compressed"},
		extensions: []string{".zip", ".rar", ".7z"},
	},
}

// UploadPolicy decides which uploads are accepted.
type UploadPolicy struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
	// RequireBoth selects the strict mode: MIME type and extension must both
	// be allowed. Otherwise either one is enough.
	RequireBoth bool
}

// NewUploadPolicy builds the policy for a configured mode and size limit.
func NewUploadPolicy(mode string, maxSize int64) UploadPolicy {
	p := UploadPolicy{
		AllowedMimeTypes:  map[string]bool{},
		AllowedExtensions: map[string]bool{},
		MaxSize:           maxSize,
		RequireBoth:       mode != config.UploadPolicyPermissive,
	}
	for _, c := range uploadCategories {
		for _, m := range c.mimeTypes {
			p.AllowedMimeTypes[m] = true
		}
		for _, e := range c.extensions {
			p.AllowedExtensions[e] = true
		}
	}
	return p
}

// Check validates a sanitized filename, its declared content type and size.
func (p UploadPolicy) Check(filename, contentType string, size int64) error {
	if p.MaxSize > 0 && size > p.MaxSize {
		return fmt.Errorf("%w: limit is %d MB", apperrors.ErrFileTooLarge, p.MaxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	mimeType := normalizeMediaType(contentType)
	extOK := p.AllowedExtensions[ext]
	mimeOK := p.AllowedMimeTypes[mimeType]

	accepted := extOK || mimeOK
	if p.RequireBoth {
		accepted = extOK && mimeOK
	}
	if !accepted {
		if ext == "" {
			ext = "(no extension)"
		}
		return fmt.Errorf("%w: %s (%s). Allowed: images, documents, videos and archives",
			apperrors.ErrUnsupportedMediaType, ext, contentType)
	}
	return nil
}

func normalizeMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// SanitizeFilename reduces a client supplied name to a safe base name.
// Directory parts are dropped, names that cannot be stored are rejected.
func SanitizeFilename(raw string) (string, error) {
	name := strings.ReplaceAll(raw, `\`, "/")
	name = strings.TrimSpace(path.Base(name))
	switch {
	case name == "", name == ".", name == "..", name == "/":
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidFilename, raw)
	case !utf8.ValidString(name), strings.ContainsRune(name, 0):
		return "", fmt.Errorf("%w: not valid text", apperrors.ErrInvalidFilename)
	case len(name) > maxFilenameLength:
		return "", fmt.Errorf("%w: longer than %d bytes", apperrors.ErrInvalidFilename, maxFilenameLength)
	}
	return name, nil
}
