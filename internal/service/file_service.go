package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "safebox/internal/errors"
	"safebox/internal/model"
	"safebox/internal/repository"
	"safebox/internal/scan"
	"safebox/internal/storage"
)

var bytesPerMB = decimal.NewFromInt(1 << 20)

// BlobStore holds file content keyed by owner and filename. Save must not
// replace an existing blob; it fails with storage.ErrExists instead.
type BlobStore interface {
	Save(userID uint, filename string, r io.Reader) (int64, error)
	Path(userID uint, filename string) (string, error)
	PublicPath(userID uint, filename string) string
	Exists(userID uint, filename string) bool
	Remove(userID uint, filename string) error
}

// UploadInput describes one incoming file. Open may be called more than once.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// FileService exposes file operations, always scoped to the owning user.
type FileService interface {
	List(ctx context.Context, userID uint, favoritesOnly bool) ([]model.File, error)
	Get(ctx context.Context, userID, fileID uint) (*model.File, error)
	Upload(ctx context.Context, userID uint, in UploadInput) (*model.File, error)
	ToggleFavorite(ctx context.Context, userID, fileID uint) (*model.File, error)
	Delete(ctx context.Context, userID, fileID uint) error
	// Download resolves the on-disk location of a file's content.
	Download(ctx context.Context, userID, fileID uint) (*model.File, string, error)
	Stats(ctx context.Context, userID uint) (*model.StorageStats, error)
}

type fileService struct {
	files    repository.FileRepository
	activity ActivityService
	blobs    BlobStore
	scanner  scan.Scanner
	policy   UploadPolicy
	baseURL  string
}

// NewFileService builds a FileService. scanner may be nil.
func NewFileService(
	files repository.FileRepository,
	activity ActivityService,
	blobs BlobStore,
	scanner scan.Scanner,
	policy UploadPolicy,
	baseURL string,
) FileService {
	if scanner == nil {
		scanner = scan.Nop{}
	}
	return &fileService{
		files:    files,
		activity: activity,
		blobs:    blobs,
		scanner:  scanner,
		policy:   policy,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

func (s *fileService) withURL(f *model.File) {
	f.URL = s.baseURL + s.blobs.PublicPath(f.UserID, url.PathEscape(f.Filename))
}

func (s *fileService) find(ctx context.Context, userID, fileID uint) (*model.File, error) {
	f, err := s.files.FindByIDForUser(ctx, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

func (s *fileService) List(ctx context.Context, userID uint, favoritesOnly bool) ([]model.File, error) {
	files, err := s.files.ListByUser(ctx, userID, favoritesOnly)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	for i := range files {
		s.withURL(&files[i])
	}
	return files, nil
}

func (s *fileService) Get(ctx context.Context, userID, fileID uint) (*model.File, error) {
	f, err := s.find(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}
	s.withURL(f)
	return f, nil
}

func (s *fileService) Upload(ctx context.Context, userID uint, in UploadInput) (*model.File, error) {
	name, err := SanitizeFilename(in.Filename)
	if err != nil {
		return nil, err
	}

	contentType := strings.TrimSpace(in.ContentType)
	if contentType == "" {
		if contentType, err = sniffContentType(in.Open); err != nil {
			return nil, err
		}
	}
	if err := s.policy.Check(name, contentType, in.Size); err != nil {
		return nil, err
	}

	exists, err := s.files.ExistsForUser(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateFilename, name)
	}

	if err := s.scan(in.Open); err != nil {
		return nil, err
	}

	written, err := s.store(userID, name, in.Open)
	if err != nil {
		return nil, err
	}

	file := &model.File{
		UserID:   userID,
		Filename: name,
		FilePath: s.blobs.PublicPath(userID, name),
		FileType: contentType,
		FileSize: written,
	}
	err = s.files.WithTransaction(ctx, func(ctx context.Context, files repository.FileRepository, activity repository.ActivityRepository) error {
		if err := files.Create(ctx, file); err != nil {
			return err
		}
		entry := &model.ActivityLog{UserID: userID, Action: model.ActionUploaded + name}
		if err := activity.Append(ctx, entry); err != nil {
			zap.L().Warn("record upload activity failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		// the blob was created by this upload, so it goes with the row
		if rmErr := s.blobs.Remove(userID, name); rmErr != nil {
			zap.L().Error("remove blob after failed insert", zap.Uint("user_id", userID), zap.String("filename", name), zap.Error(rmErr))
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrDuplicateFilename, name)
		}
		return nil, fmt.Errorf("save file metadata: %w", err)
	}

	s.withURL(file)
	return file, nil
}

func (s *fileService) scan(open func() (io.ReadCloser, error)) error {
	r, err := open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()
	return s.scanner.Scan(r)
}

// store copies the upload into the blob store, refusing content that turns
// out larger than declared.
func (s *fileService) store(userID uint, name string, open func() (io.ReadCloser, error)) (int64, error) {
	r, err := open()
	if err != nil {
		return 0, fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()

	var src io.Reader = r
	if s.policy.MaxSize > 0 {
		src = io.LimitReader(r, s.policy.MaxSize+1)
	}
	written, err := s.blobs.Save(userID, name, src)
	if err != nil {
		if errors.Is(err, storage.ErrExists) {
			// a concurrent upload of the same name committed its blob first
			return 0, fmt.Errorf("%w: %s", apperrors.ErrDuplicateFilename, name)
		}
		return 0, fmt.Errorf("store blob: %w", err)
	}
	if s.policy.MaxSize > 0 && written > s.policy.MaxSize {
		_ = s.blobs.Remove(userID, name)
		return 0, fmt.Errorf("%w: limit is %d MB", apperrors.ErrFileTooLarge, s.policy.MaxSize>>20)
	}
	return written, nil
}

func sniffContentType(open func() (io.ReadCloser, error)) (string, error) {
	r, err := open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer r.Close()

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return detected.String(), nil
	}
	return mediaType, nil
}

func (s *fileService) ToggleFavorite(ctx context.Context, userID, fileID uint) (*model.File, error) {
	f, err := s.find(ctx, userID, fileID)
	if err != nil {
		return nil, err
	}

	f.Favorite = !f.Favorite
	if err := s.files.UpdateFavorite(ctx, f.ID, userID, f.Favorite); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrFileNotFound
		}
		return nil, fmt.Errorf("update favorite: %w", err)
	}

	action := model.ActionFavoriteRemoved + f.Filename
	if f.Favorite {
		action = model.ActionFavoriteAdded + f.Filename
	}
	s.activity.Record(ctx, userID, action)

	s.withURL(f)
	return f, nil
}

// Delete records the activity, removes the blob, then the row. A blob that
// cannot be removed is logged and left behind as an orphan.
func (s *fileService) Delete(ctx context.Context, userID, fileID uint) error {
	f, err := s.find(ctx, userID, fileID)
	if err != nil {
		return err
	}

	s.activity.Record(ctx, userID, model.ActionDeleted+f.Filename)

	if err := s.blobs.Remove(userID, f.Filename); err != nil {
		zap.L().Warn("remove blob failed", zap.Uint("user_id", userID), zap.Uint("file_id", f.ID), zap.Error(err))
	}

	if err := s.files.Delete(ctx, f.ID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrFileNotFound
		}
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (s *fileService) Download(ctx context.Context, userID, fileID uint) (*model.File, string, error) {
	f, err := s.find(ctx, userID, fileID)
	if err != nil {
		return nil, "", err
	}
	if !s.blobs.Exists(userID, f.Filename) {
		return nil, "", apperrors.ErrBlobMissing
	}
	p, err := s.blobs.Path(userID, f.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("resolve blob: %w", err)
	}
	return f, p, nil
}

func (s *fileService) Stats(ctx context.Context, userID uint) (*model.StorageStats, error) {
	stats, err := s.files.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("file stats: %w", err)
	}
	stats.TotalMB = decimal.NewFromInt(stats.TotalBytes).Div(bytesPerMB).StringFixed(2)
	return stats, nil
}
