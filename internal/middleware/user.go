package middleware

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"safebox/internal/auth"
	apperrors "safebox/internal/errors"
	"safebox/internal/model"
	"safebox/internal/service"
)

// HeaderUserID carries the caller's user id when no bearer token is sent.
const HeaderUserID = "X-User-Id"

const (
	tokenContextKey = "session_token"
	userContextKey  = "current_user"
)

// BearerToken parses an optional "Authorization: Bearer" session token.
// Requests without the header pass through untouched so the header-based
// identity still works.
func BearerToken(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		ContextKey: tokenContextKey,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
		},
	})
}

// ResolveUser loads the calling user and stores it on the context. A token
// parsed by BearerToken wins over the X-User-Id header; the header is only
// honored when allowHeader is set.
func ResolveUser(users service.UserService, sessions service.AuthService, allowHeader bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var userID uint
			if claims := SessionClaims(c); claims != nil {
				if err := sessions.CheckSession(ctx, claims); err != nil {
					return err
				}
				userID = claims.UserID
			} else {
				raw := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
				if raw == "" || !allowHeader {
					return apperrors.ErrUserIDRequired
				}
				id, err := strconv.ParseUint(raw, 10, 64)
				if err != nil || id == 0 {
					// not an id any user could have
					return apperrors.ErrUserNotFound
				}
				userID = uint(id)
			}

			user, err := users.GetUser(ctx, userID)
			if err != nil {
				return err
			}
			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// SessionClaims returns the claims of a validated bearer token, if any.
func SessionClaims(c echo.Context) *auth.Claims {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// CurrentUser returns the user set by ResolveUser.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}
