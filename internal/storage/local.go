package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

// PublicPrefix is the URL path under which blobs are served.
const PublicPrefix = "/uploads"

const (
	// incomingDir holds in-progress uploads. It is not a user id, so the
	// public route never serves it.
	incomingDir = ".incoming"
	tempPattern = "upload-*"
)

// ErrExists is returned by Save when the blob is already present.
var ErrExists = errors.New("blob already exists")

// Local stores blobs on the local filesystem as <root>/<userID>/<filename>.
type Local struct {
	root string
}

// NewLocal prepares root and returns a store rooted there.
func NewLocal(root string) (*Local, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, incomingDir), 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Local{root: abs}, nil
}

// Root is the absolute storage directory.
func (l *Local) Root() string {
	return l.root
}

// PublicPath is the path recorded in file_path, relative to the server root.
func (l *Local) PublicPath(userID uint, filename string) string {
	return path.Join(PublicPrefix, strconv.FormatUint(uint64(userID), 10), filename)
}

// Path resolves the on-disk location of a blob.
func (l *Local) Path(userID uint, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid blob name %q", filename)
	}
	p := filepath.Join(l.root, strconv.FormatUint(uint64(userID), 10), filename)
	if !strings.HasPrefix(p, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("blob path escapes storage root")
	}
	return p, nil
}

// Save streams r into the blob for (userID, filename). The content is written
// to a temp file under the incoming directory and linked into place, so
// readers never see a partial blob and an existing blob is never replaced
// (ErrExists). It returns the number of bytes written.
func (l *Local) Save(userID uint, filename string, r io.Reader) (int64, error) {
	dst, err := l.Path(userID, filename)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("create user dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Join(l.root, incomingDir), tempPattern)
	if err != nil {
		return 0, fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, fmt.Errorf("write blob: %w", err)
	}
	if err := os.Link(tmp.Name(), dst); err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrExists, filename)
		}
		return 0, fmt.Errorf("commit blob: %w", err)
	}
	return written, nil
}

// Exists reports whether the blob is present.
func (l *Local) Exists(userID uint, filename string) bool {
	p, err := l.Path(userID, filename)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Remove deletes the blob. A missing blob is not an error.
func (l *Local) Remove(userID uint, filename string) error {
	p, err := l.Path(userID, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
