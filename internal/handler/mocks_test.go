package handler_test

import (
	"context"
	"errors"
	"time"

	"quizly/internal/domain"
	"quizly/internal/dto"
)

// --- Manual Mocks ---

// MockAuthService
type MockAuthService struct {
	RegisterFunc           func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	LoginFunc              func(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error)
	LogoutFunc             func(ctx context.Context, refreshToken string)
	RefreshAccessTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	panic("MockAuthService.RegisterFunc not implemented")
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*dto.TokenPair, *domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	panic("MockAuthService.LoginFunc not implemented")
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, refreshToken)
	}
}

func (m *MockAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if m.RefreshAccessTokenFunc != nil {
		return m.RefreshAccessTokenFunc(ctx, refreshToken)
	}
	panic("MockAuthService.RefreshAccessTokenFunc not implemented")
}

// ValidateJWT accepts tokens of the form "token-<userID>".
func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if len(tokenString) > len("token-") && tokenString[:len("token-")] == "token-" {
		return &dto.AuthClaims{UserID: tokenString[len("token-"):], TokenType: dto.TokenTypeAccess}, nil
	}
	return nil, errors.New("invalid jwt token")
}

func (m *MockAuthService) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	return "token-" + user.ID, nil
}

// MockQuizGenerationService
type MockQuizGenerationService struct {
	CreateQuizFunc func(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error)
}

func (m *MockQuizGenerationService) CreateQuiz(ctx context.Context, ownerID, rawURL string) (*dto.QuizResponse, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, ownerID, rawURL)
	}
	panic("MockQuizGenerationService.CreateQuizFunc not implemented")
}

// MockQuizService
type MockQuizService struct {
	ListQuizzesFunc func(ctx context.Context, ownerID string) ([]dto.QuizResponse, error)
	GetQuizFunc     func(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error)
	UpdateQuizFunc  func(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuizFunc  func(ctx context.Context, ownerID, quizID string) error
}

func (m *MockQuizService) ListQuizzes(ctx context.Context, ownerID string) ([]dto.QuizResponse, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx, ownerID)
	}
	panic("MockQuizService.ListQuizzesFunc not implemented")
}

func (m *MockQuizService) GetQuiz(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, ownerID, quizID)
	}
	panic("MockQuizService.GetQuizFunc not implemented")
}

func (m *MockQuizService) UpdateQuiz(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	if m.UpdateQuizFunc != nil {
		return m.UpdateQuizFunc(ctx, ownerID, quizID, req)
	}
	panic("MockQuizService.UpdateQuizFunc not implemented")
}

func (m *MockQuizService) DeleteQuiz(ctx context.Context, ownerID, quizID string) error {
	if m.DeleteQuizFunc != nil {
		return m.DeleteQuizFunc(ctx, ownerID, quizID)
	}
	panic("MockQuizService.DeleteQuizFunc not implemented")
}
