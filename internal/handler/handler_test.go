package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizly/internal/config"
	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/handler"
	"quizly/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testConfig = &config.Config{
	JWT: config.JWTConfig{
		SecretKey:       "test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	},
}

func setupApp(auth *MockAuthService, gen *MockQuizGenerationService, quizzes *MockQuizService) *fiber.App {
	if auth == nil {
		auth = &MockAuthService{}
	}
	if gen == nil {
		gen = &MockQuizGenerationService{}
	}
	if quizzes == nil {
		quizzes = &MockQuizService{}
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(true)})
	authHandler := handler.NewAuthHandler(auth, testConfig)
	quizHandler := handler.NewQuizHandler(gen, quizzes)
	protected := middleware.Protected(auth)
	handler.RegisterRoutes(app, authHandler, quizHandler, protected)
	handler.RegisterRoutes(app.Group("/api"), authHandler, quizHandler, protected)
	return app
}

func newRequest(method, path string, body string, userID string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerSchema+"token-"+userID)
	}
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func cookiesByName(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func sampleQuiz() *dto.QuizResponse {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return &dto.QuizResponse{
		ID:          "quiz-1",
		Title:       "Go Basics",
		Description: "desc",
		CreatedAt:   now,
		UpdatedAt:   now,
		VideoURL:    "https://www.youtube.com/watch?v=abcdefghijk",
		Questions: []dto.QuestionResponse{
			{ID: "q1", QuestionTitle: "What is Go?", QuestionOptions: []string{"A language", "A game", "A car", "A river"}, Answer: "A language"},
		},
	}
}

// --- auth ---

func TestRegister(t *testing.T) {
	auth := &MockAuthService{
		RegisterFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
			assert.Equal(t, "alice", req.Username)
			assert.Equal(t, "pw", req.RepeatedPassword)
			return &domain.User{ID: "user-1"}, nil
		},
	}
	app := setupApp(auth, nil, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/register",
		`{"username":"alice","email":"a@example.com","password":"pw","repeated_password":"pw"}`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User created successfully!", decode[dto.DetailResponse](t, resp).Detail)
}

func TestRegister_ValidationFailure(t *testing.T) {
	auth := &MockAuthService{
		RegisterFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
			return nil, domain.NewConflictError("Email already exists")
		},
	}
	app := setupApp(auth, nil, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/api/register", `{"username":"alice"}`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already exists", decode[dto.ErrorResponse](t, resp).Error)
}

func TestLogin_SetsTwoHTTPOnlyCookies(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error) {
			assert.Equal(t, "alice", username)
			assert.Equal(t, "s3cret", password)
			return &dto.TokenPair{AccessToken: "access-jwt", RefreshToken: "refresh-jwt"},
				&domain.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}, nil
		},
	}
	app := setupApp(auth, nil, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/login", `{"username":"alice","password":"s3cret"}`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cookies := cookiesByName(resp)
	require.Len(t, cookies, 2)
	require.Contains(t, cookies, "access_token")
	require.Contains(t, cookies, "refresh_token")
	assert.Equal(t, "access-jwt", cookies["access_token"].Value)
	assert.Equal(t, "refresh-jwt", cookies["refresh_token"].Value)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	}

	body := decode[dto.LoginResponse](t, resp)
	assert.Equal(t, "Login successfully!", body.Detail)
	assert.Equal(t, dto.UserResponse{ID: "user-1", Username: "alice", Email: "alice@example.com"}, body.User)
}

func TestLogin_Failures(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error) {
			return nil, nil, domain.NewUnauthorizedError("Ungültige Anmeldedaten.")
		},
	}
	app := setupApp(auth, nil, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/login", `{"username":"alice","password":"nope"}`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Ungültige Anmeldedaten.", decode[dto.ErrorResponse](t, resp).Error)
	assert.Empty(t, resp.Cookies())

	resp, err = app.Test(newRequest(http.MethodPost, "/login", `{"username":`, ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON", decode[dto.ErrorResponse](t, resp).Error)
}

func TestLogout_AlwaysClearsBothCookies(t *testing.T) {
	var revoked string
	auth := &MockAuthService{
		LogoutFunc: func(ctx context.Context, refreshToken string) { revoked = refreshToken },
	}
	app := setupApp(auth, nil, nil)

	for _, refresh := range []string{"expired-or-garbage", ""} {
		req := newRequest(http.MethodPost, "/logout", "", "")
		if refresh != "" {
			req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, refresh, revoked)

		cookies := cookiesByName(resp)
		require.Len(t, cookies, 2)
		for _, name := range []string{"access_token", "refresh_token"} {
			require.Contains(t, cookies, name)
			assert.Empty(t, cookies[name].Value)
			assert.True(t, cookies[name].Expires.Before(time.Now()))
		}
		assert.Equal(t, "Log-Out successfully! All Tokens will be deleted. Refresh token is now invalid.",
			decode[dto.DetailResponse](t, resp).Detail)
	}
}

func TestRefreshToken(t *testing.T) {
	auth := &MockAuthService{
		RefreshAccessTokenFunc: func(ctx context.Context, refreshToken string) (string, error) {
			if refreshToken != "refresh-jwt" {
				return "", domain.NewUnauthorizedError("Invalid refresh token.")
			}
			return "new-access", nil
		},
	}
	app := setupApp(auth, nil, nil)

	req := newRequest(http.MethodPost, "/token/refresh", "", "")
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "refresh-jwt"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new-access", cookiesByName(resp)["access_token"].Value)
	assert.Equal(t, dto.RefreshResponse{Detail: "Token refreshed", Access: "new-access"}, decode[dto.RefreshResponse](t, resp))

	resp, err = app.Test(newRequest(http.MethodPost, "/token/refresh", "", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// --- quizzes ---

func TestCreateQuiz(t *testing.T) {
	gen := &MockQuizGenerationService{
		CreateQuizFunc: func(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error) {
			assert.Equal(t, "user-1", ownerID)
			assert.Equal(t, "https://www.youtube.com/watch?v=abcdefghijk", rawURL)
			return sampleQuiz(), nil
		},
	}
	app := setupApp(nil, gen, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/createQuiz",
		`{"url":"https://www.youtube.com/watch?v=abcdefghijk"}`, "user-1"), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	for _, key := range []string{"id", "title", "description", "created_at", "updated_at", "video_url", "questions"} {
		assert.Contains(t, raw, key)
	}
	questions := raw["questions"].([]any)
	require.Len(t, questions, 1)
	question := questions[0].(map[string]any)
	for _, key := range []string{"id", "question_title", "question_options", "answer"} {
		assert.Contains(t, question, key)
	}
}

func TestCreateQuiz_BadRequests(t *testing.T) {
	gen := &MockQuizGenerationService{
		CreateQuizFunc: func(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error) {
			return nil, domain.NewValidationError("Invalid YouTube URL").WithPhase(domain.PhaseValidateURL)
		},
	}
	app := setupApp(nil, gen, nil)

	tests := []struct {
		name string
		body string
	}{
		{"not a url", `{"url":"not-a-url"}`},
		{"missing url", `{}`},
		{"malformed json", `{"url":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(newRequest(http.MethodPost, "/createQuiz", tt.body, "user-1"))
			require.NoError(t, err)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, decode[dto.ErrorResponse](t, resp).Error)
		})
	}
}

func TestCreateQuiz_PipelineFailure(t *testing.T) {
	gen := &MockQuizGenerationService{
		CreateQuizFunc: func(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error) {
			return nil, domain.NewGenerationError("Generative AI credential is not configured", errors.New("missing api key"))
		},
	}
	app := setupApp(nil, gen, nil)

	resp, err := app.Test(newRequest(http.MethodPost, "/api/createQuiz", `{"url":"https://youtu.be/abcdefghijk"}`, "user-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "Generative AI credential is not configured", body.Error)
	assert.Equal(t, "GENERATE_CONTENT", body.Phase)
	assert.Equal(t, "missing api key", body.Details)
}

func TestQuizRoutes_RequireAuthentication(t *testing.T) {
	app := setupApp(nil, nil, nil)
	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/createQuiz"},
		{http.MethodGet, "/quizzes"},
		{http.MethodGet, "/api/quizzes/quiz-1"},
		{http.MethodPatch, "/quizzes/quiz-1"},
		{http.MethodDelete, "/quizzes/quiz-1"},
	} {
		resp, err := app.Test(newRequest(route.method, route.path, `{}`, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestListQuizzes(t *testing.T) {
	quizzes := &MockQuizService{
		ListQuizzesFunc: func(ctx context.Context, ownerID string) ([]dto.QuizResponse, error) {
			assert.Equal(t, "user-1", ownerID)
			return []dto.QuizResponse{*sampleQuiz()}, nil
		},
	}
	app := setupApp(nil, nil, quizzes)

	resp, err := app.Test(newRequest(http.MethodGet, "/quizzes", "", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[[]dto.QuizResponse](t, resp)
	require.Len(t, body, 1)
	assert.Equal(t, "quiz-1", body[0].ID)
}

func TestListQuizzes_StoreFault(t *testing.T) {
	quizzes := &MockQuizService{
		ListQuizzesFunc: func(ctx context.Context, ownerID string) ([]dto.QuizResponse, error) {
			return nil, domain.NewInternalError("Internal server error fetching quizzes.", errors.New("db down"))
		},
	}
	app := setupApp(nil, nil, quizzes)

	resp, err := app.Test(newRequest(http.MethodGet, "/quizzes", "", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestQuizDetail_OwnershipIsolation(t *testing.T) {
	notFound := domain.NewQuizNotFoundError()
	quizzes := &MockQuizService{
		GetQuizFunc: func(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error) {
			if ownerID == "owner" {
				return sampleQuiz(), nil
			}
			return nil, notFound
		},
		UpdateQuizFunc: func(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
			if ownerID != "owner" {
				return nil, notFound
			}
			q := sampleQuiz()
			q.Title = *req.Title
			return q, nil
		},
		DeleteQuizFunc: func(ctx context.Context, ownerID, quizID string) error {
			if ownerID != "owner" {
				return notFound
			}
			return nil
		},
	}
	app := setupApp(nil, nil, quizzes)

	resp, err := app.Test(newRequest(http.MethodGet, "/quizzes/quiz-1", "", "owner"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(newRequest(http.MethodPatch, "/quizzes/quiz-1", `{"title":"Renamed"}`, "owner"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Renamed", decode[dto.QuizResponse](t, resp).Title)

	resp, err = app.Test(newRequest(http.MethodDelete, "/quizzes/quiz-1", "", "owner"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
		resp, err := app.Test(newRequest(method, "/quizzes/quiz-1", `{"title":"Mine"}`, "intruder"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
		assert.Equal(t, "Quiz not found or not authorized.", decode[dto.ErrorResponse](t, resp).Error)
	}
}

func TestQuizDetail_RepeatedReadsAreIdentical(t *testing.T) {
	calls := 0
	quizzes := &MockQuizService{
		GetQuizFunc: func(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error) {
			calls++
			assert.Equal(t, "owner", ownerID)
			assert.Equal(t, "quiz-1", quizID)
			return sampleQuiz(), nil
		},
	}
	app := setupApp(nil, nil, quizzes)

	read := func(path string) []byte {
		resp, err := app.Test(newRequest(http.MethodGet, path, "", "owner"))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return body
	}

	first := read("/quizzes/quiz-1")
	second := read("/quizzes/quiz-1")
	viaAPI := read("/api/quizzes/quiz-1")

	assert.NotEmpty(t, first)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(first), string(viaAPI))
	assert.Equal(t, 3, calls)
}

func TestUpdateQuiz_InvalidJSON(t *testing.T) {
	app := setupApp(nil, nil, &MockQuizService{})

	resp, err := app.Test(newRequest(http.MethodPatch, "/quizzes/quiz-1", `{"title":`, "owner"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON", decode[dto.ErrorResponse](t, resp).Error)

	req := newRequest(http.MethodPatch, "/quizzes/quiz-1", `{"title":"Renamed"}`, "owner")
	req.Header.Set("Content-Type", "text/plain")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid JSON", decode[dto.ErrorResponse](t, resp).Error)
}

// --- health ---

func TestHealth(t *testing.T) {
	ok := handler.PingFunc(func(ctx context.Context) error { return nil })
	down := handler.PingFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	app := fiber.New()
	app.Get("/health", handler.NewHealthHandler(map[string]handler.Pinger{"database": ok, "redis": ok}).Health)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]string{"status": "ok", "database": "ok", "redis": "ok"}, decode[map[string]string](t, resp))

	app = fiber.New()
	app.Get("/health", handler.NewHealthHandler(map[string]handler.Pinger{"database": ok, "redis": down}).Health)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unavailable", decode[map[string]string](t, resp)["redis"])
}
