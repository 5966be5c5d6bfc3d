package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"safebox/internal/auth"
	apperrors "safebox/internal/errors"
	"safebox/internal/model"
)

func TestAuthService_IssueSession(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour)
	svc := NewAuthService(jwtService, new(MockTokenStore))

	session, err := svc.IssueSession(&model.User{ID: 5, Email: "alice@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	claims, err := jwtService.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.UserID)
}

func TestAuthService_CheckSession(t *testing.T) {
	claims := &auth.Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ID: "tok-1"}}

	tests := []struct {
		name          string
		setupMock     func(*MockTokenStore)
		expectedError error
	}{
		{
			name: "active token",
			setupMock: func(m *MockTokenStore) {
				m.On("IsRevoked", mock.Anything, "tok-1").Return(false, nil)
			},
		},
		{
			name: "revoked token",
			setupMock: func(m *MockTokenStore) {
				m.On("IsRevoked", mock.Anything, "tok-1").Return(true, nil)
			},
			expectedError: apperrors.ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockTokenStore)
			tt.setupMock(store)
			svc := NewAuthService(auth.NewJWTService("s", time.Hour), store)

			err := svc.CheckSession(context.Background(), claims)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	t.Run("revokes until expiry", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("Revoke", mock.Anything, "tok-2", mock.MatchedBy(func(ttl time.Duration) bool {
			return ttl > 50*time.Minute && ttl <= time.Hour
		})).Return(nil)

		claims := &auth.Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ID:        "tok-2",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		err := NewAuthService(auth.NewJWTService("s", time.Hour), store).Logout(context.Background(), claims)
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("store failure is reported", func(t *testing.T) {
		store := new(MockTokenStore)
		store.On("Revoke", mock.Anything, "tok-3", mock.Anything).Return(errors.New("redis down"))

		claims := &auth.Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{
			ID:        "tok-3",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		err := NewAuthService(auth.NewJWTService("s", time.Hour), store).Logout(context.Background(), claims)
		assert.EqualError(t, err, "revoke token: redis down")
	})

	t.Run("header sessions have nothing to revoke", func(t *testing.T) {
		store := new(MockTokenStore)
		err := NewAuthService(auth.NewJWTService("s", time.Hour), store).Logout(context.Background(), nil)
		assert.NoError(t, err)
		store.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}
