package middleware

import (
	"context"
	"strings"

	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals

	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// TokenValidator validates access tokens. service.AuthService satisfies it.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected requires a valid access token, taken from the Authorization header or,
// failing that, from the access_token cookie. The user id is stored under UserIDKey.
func Protected(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractAccessToken(c)
		if err != nil {
			return err
		}

		claims, err := validator.ValidateJWT(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("JWT validation failed", zap.String("path", c.Path()), zap.Error(err))
			return domain.NewUnauthorizedError("Invalid or expired token.")
		}
		if claims.TokenType != dto.TokenTypeAccess {
			return domain.NewUnauthorizedError("Invalid token type: expected access token.")
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

func extractAccessToken(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(AuthorizationHeader); authHeader != "" {
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return "", domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return "", domain.NewUnauthorizedError("Token is empty")
		}
		return tokenString, nil
	}

	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie, nil
	}
	return "", domain.NewUnauthorizedError("Authentication credentials were not provided.")
}

// UserID returns the id stored by Protected, or "" outside a protected route.
func UserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(UserIDKey).(string)
	return userID
}
