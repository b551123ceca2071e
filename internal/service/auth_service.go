package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizly/internal/cache"
	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"
	"quizly/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Ungültige Anmeldedaten."
	msgPasswordMismatch   = "Passwords do not match"
	msgEmailExists        = "Email already exists"
	msgUsernameExists     = "Username already exists"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService defines the interface for authentication operations.
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error)
	// Logout blacklists the refresh token on a best-effort basis and never fails.
	Logout(ctx context.Context, refreshToken string)
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error)
}

type authServiceImpl struct {
	userRepo domain.UserRepository
	cache    domain.Cache
	jwtCfg   config.JWTConfig
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService. cache may be nil, in which case
// refresh tokens cannot be revoked before they expire.
func NewAuthService(userRepo domain.UserRepository, cache domain.Cache, jwtCfg config.JWTConfig) (AuthService, error) {
	if jwtCfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	return &authServiceImpl{
		userRepo: userRepo,
		cache:    cache,
		jwtCfg:   jwtCfg,
		now:      time.Now,
	}, nil
}

func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	if req == nil {
		return nil, domain.NewValidationError("request body is required")
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	switch {
	case username == "":
		return nil, domain.NewValidationError("username is required")
	case email == "":
		return nil, domain.NewValidationError("email is required")
	case req.Password == "":
		return nil, domain.NewValidationError("password is required")
	case req.RepeatedPassword == "":
		return nil, domain.NewValidationError("repeated_password is required")
	}
	if req.Password != req.RepeatedPassword {
		return nil, domain.NewValidationError(msgPasswordMismatch)
	}

	existing, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up email", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(msgEmailExists)
	}
	existing, err = s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up username", err)
	}
	if existing != nil {
		return nil, domain.NewConflictError(msgUsernameExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("Failed to hash password", err)
	}

	user := domain.NewUser(username, email, string(hash))
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if domain.HasCode(err, domain.CodeConflict) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to create user", err)
	}

	logger.Get().Info("User registered", zap.String("userID", user.ID), zap.String("username", user.Username))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return nil, nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Get().Info("Login rejected", zap.String("username", user.Username))
		return nil, nil, domain.NewUnauthorizedError(msgInvalidCredentials)
	}

	accessToken, err := s.CreateJWT(ctx, user, s.jwtCfg.AccessTokenTTL, dto.TokenTypeAccess)
	if err != nil {
		return nil, nil, domain.NewInternalError("Failed to create access token", err)
	}
	refreshToken, err := s.CreateJWT(ctx, user, s.jwtCfg.RefreshTokenTTL, dto.TokenTypeRefresh)
	if err != nil {
		return nil, nil, domain.NewInternalError("Failed to create refresh token", err)
	}

	logger.Get().Info("User logged in", zap.String("userID", user.ID))
	return &dto.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, user, nil
}

// Logout ignores every error: the client drops its cookies either way.
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	claims, err := s.ValidateJWT(ctx, refreshToken)
	if err != nil || claims.TokenType != dto.TokenTypeRefresh || claims.ID == "" {
		logger.Get().Debug("Logout with unusable refresh token, nothing to revoke", zap.Error(err))
		return
	}
	if s.cache == nil {
		logger.Get().Warn("Cache not configured, refresh token stays valid until expiry", zap.String("userID", claims.UserID))
		return
	}

	if claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, cache.RevokedTokenKey(claims.ID), claims.UserID, ttl); err != nil {
		logger.Get().Warn("Failed to blacklist refresh token, logging out anyway",
			zap.String("userID", claims.UserID), zap.Error(err))
		return
	}
	logger.Get().Info("Refresh token revoked", zap.String("userID", claims.UserID))
}

func (s *authServiceImpl) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.NewUnauthorizedError("Refresh token not found.")
	}
	claims, err := s.ValidateJWT(ctx, refreshToken)
	if err != nil || claims.TokenType != dto.TokenTypeRefresh {
		return "", domain.NewUnauthorizedError("Invalid refresh token.")
	}

	if s.cache != nil && claims.ID != "" {
		_, err := s.cache.Get(ctx, cache.RevokedTokenKey(claims.ID))
		switch {
		case err == nil:
			return "", domain.NewUnauthorizedError("Invalid refresh token.")
		case !errors.Is(err, domain.ErrCacheMiss):
			// A broken blacklist must not lock everyone out.
			logger.Get().Warn("Failed to check refresh token blacklist", zap.Error(err))
		}
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return "", domain.NewInternalError("Failed to look up user", err)
	}
	if user == nil {
		return "", domain.NewUnauthorizedError("Invalid refresh token.")
	}

	accessToken, err := s.CreateJWT(ctx, user, s.jwtCfg.AccessTokenTTL, dto.TokenTypeAccess)
	if err != nil {
		return "", domain.NewInternalError("Failed to create access token", err)
	}
	return accessToken, nil
}

func (s *authServiceImpl) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	now := s.now()
	claims := dto.AuthClaims{
		UserID:    user.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        util.NewULID(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	claims := &dto.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.SecretKey), nil
	})
	if err != nil {
		logger.Get().Debug("JWT validation failed", zap.String("token_snippet", tokenString[:min(len(tokenString), 10)]), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}
