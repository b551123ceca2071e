package dto

import (
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// RegisterRequest is the body of POST /register.
// @Description Request body for account registration
type RegisterRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
}

// LoginRequest is the body of POST /login.
// @Description Request body for username/password login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is returned on successful login; the tokens travel as cookies.
// @Description Login confirmation
type LoginResponse struct {
	Detail string       `json:"detail"`
	User   UserResponse `json:"user"`
}

// RefreshResponse carries the newly issued access token.
// @Description Access token refresh result
type RefreshResponse struct {
	Detail string `json:"detail"`
	Access string `json:"access"`
}

// DetailResponse represents a generic message response.
// @Description Generic message response
type DetailResponse struct {
	Detail string `json:"detail"`
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
