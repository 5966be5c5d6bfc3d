package service

import (
	"context"
	"fmt"
	"time"

	"safebox/internal/auth"
	apperrors "safebox/internal/errors"
	"safebox/internal/model"
)

// Session is a signed bearer token handed out by get-or-create.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService issues and revokes session tokens.
type AuthService interface {
	IssueSession(user *model.User) (*Session, error)
	// CheckSession rejects tokens that were revoked by logout.
	CheckSession(ctx context.Context, claims *auth.Claims) error
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new session service.
func NewAuthService(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

func (s *authService) IssueSession(user *model.User) (*Session, error) {
	token, expiresAt, err := s.jwtService.GenerateSessionToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) CheckSession(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return fmt.Errorf("%w: token was revoked", apperrors.ErrInvalidToken)
	}
	return nil
}

// Logout revokes the token until its natural expiry.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokenStore.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}
