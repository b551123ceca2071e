package handler

import (
	"time"

	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/middleware"
	"quizly/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	detailRegistered = "User created successfully!"
	detailLoggedIn   = "Login successfully!"
	detailLoggedOut  = "Log-Out successfully! All Tokens will be deleted. Refresh token is now invalid."
	detailRefreshed  = "Token refreshed"
)

// AuthHandler handles registration, login and token lifecycle requests.
type AuthHandler struct {
	authService  service.AuthService
	jwtCfg       config.JWTConfig
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		jwtCfg:       cfg.JWT,
		cookieSecure: cfg.Server.CookieSecure,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Account data"
// @Success 201 {object} dto.DetailResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid JSON")
	}
	if _, err := h.authService.Register(c.Context(), &req); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DetailResponse{Detail: detailRegistered})
}

// Login godoc
// @Summary Log in with username and password
// @Description Sets the access_token and refresh_token http-only cookies
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid JSON")
	}

	tokens, user, err := h.authService.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, middleware.AccessTokenCookie, tokens.AccessToken, h.jwtCfg.AccessTokenTTL)
	h.setTokenCookie(c, middleware.RefreshTokenCookie, tokens.RefreshToken, h.jwtCfg.RefreshTokenTTL)

	return c.JSON(dto.LoginResponse{
		Detail: detailLoggedIn,
		User: dto.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the refresh token when possible and always clears both token cookies
// @Tags auth
// @Produce json
// @Success 200 {object} dto.DetailResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.authService.Logout(c.Context(), c.Cookies(middleware.RefreshTokenCookie))

	h.clearCookie(c, middleware.AccessTokenCookie)
	h.clearCookie(c, middleware.RefreshTokenCookie)
	return c.JSON(dto.DetailResponse{Detail: detailLoggedOut})
}

// RefreshToken godoc
// @Summary Issue a new access token
// @Description Reads the refresh_token cookie and resets the access_token cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.RefreshResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /token/refresh [post]
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	access, err := h.authService.RefreshAccessToken(c.Context(), c.Cookies(middleware.RefreshTokenCookie))
	if err != nil {
		return err
	}

	h.setTokenCookie(c, middleware.AccessTokenCookie, access, h.jwtCfg.AccessTokenTTL)
	return c.JSON(dto.RefreshResponse{Detail: detailRefreshed, Access: access})
}

func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, name, value string, ttl time.Duration) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
