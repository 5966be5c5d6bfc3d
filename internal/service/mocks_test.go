package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"safebox/internal/model"
	"safebox/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockActivityRepository is a mock implementation of ActivityRepository.
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) Append(ctx context.Context, entry *model.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockActivityRepository) Recent(ctx context.Context, userID uint, limit int) ([]model.ActivityLog, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityLog), args.Error(1)
}

// MockFileRepository is a mock implementation of FileRepository.
// WithTransaction runs fn against the mock itself and Activity.
type MockFileRepository struct {
	mock.Mock
	Activity repository.ActivityRepository
}

func (m *MockFileRepository) Create(ctx context.Context, file *model.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileRepository) FindByIDForUser(ctx context.Context, id, userID uint) (*model.File, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) ExistsForUser(ctx context.Context, userID uint, filename string) (bool, error) {
	args := m.Called(ctx, userID, filename)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileRepository) ListByUser(ctx context.Context, userID uint, favoritesOnly bool) ([]model.File, error) {
	args := m.Called(ctx, userID, favoritesOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileRepository) UpdateFavorite(ctx context.Context, id, userID uint, favorite bool) error {
	args := m.Called(ctx, id, userID, favorite)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id, userID uint) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockFileRepository) Stats(ctx context.Context, userID uint) (*model.StorageStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageStats), args.Error(1)
}

func (m *MockFileRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, files repository.FileRepository, activity repository.ActivityRepository) error) error {
	return fn(ctx, m, m.Activity)
}

// MockActivityService is a mock implementation of ActivityService.
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, userID uint, action string) {
	m.Called(ctx, userID, action)
}

func (m *MockActivityService) Recent(ctx context.Context, userID uint) ([]model.ActivityLog, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityLog), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}
