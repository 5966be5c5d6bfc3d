package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"safebox/internal/cache"
	apperrors "safebox/internal/errors"
	"safebox/internal/model"
	"safebox/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// UserService exposes domain operations.
type UserService interface {
	// GetOrCreate returns the user with email, creating it when absent. The
	// bool reports whether a row was created.
	GetOrCreate(ctx context.Context, email, name string) (*model.User, bool, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// NormalizeEmail is the canonical form used for lookups and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetOrCreate(ctx context.Context, email, name string) (*model.User, bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, false, apperrors.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("find user by email: %w", err)
	}

	user := &model.User{Email: email}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = &name
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent request for the same email
			existing, findErr := s.repo.FindByEmail(ctx, email)
			if findErr != nil {
				return nil, false, fmt.Errorf("find user after conflict: %w", findErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(user.ID))
	return user, true, nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}
