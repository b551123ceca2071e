package service

import (
	"context"
	"strings"

	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"

	"go.uber.org/zap"
)

// QuizService manages the quizzes a user owns.
type QuizService interface {
	ListQuizzes(ctx context.Context, ownerID string) ([]dto.QuizResponse, error)
	GetQuiz(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error)
	UpdateQuiz(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error)
	DeleteQuiz(ctx context.Context, ownerID, quizID string) error
}

type quizService struct {
	repo domain.QuizRepository
}

// NewQuizService creates a new instance of quizService
func NewQuizService(repo domain.QuizRepository) QuizService {
	return &quizService{repo: repo}
}

func (s *quizService) ListQuizzes(ctx context.Context, ownerID string) ([]dto.QuizResponse, error) {
	quizzes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.Get().Error("Failed to list quizzes", zap.String("ownerID", ownerID), zap.Error(err))
		return nil, domain.NewInternalError("Internal server error fetching quizzes.", err)
	}

	resp := make([]dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		resp = append(resp, *toQuizResponse(q))
	}
	return resp, nil
}

func (s *quizService) GetQuiz(ctx context.Context, ownerID, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.load(ctx, ownerID, quizID)
	if err != nil {
		return nil, err
	}
	return toQuizResponse(quiz), nil
}

// UpdateQuiz applies a partial update. Questions and ownership are never changed.
func (s *quizService) UpdateQuiz(ctx context.Context, ownerID, quizID string, req *dto.UpdateQuizRequest) (*dto.QuizResponse, error) {
	quiz, err := s.load(ctx, ownerID, quizID)
	if err != nil {
		return nil, err
	}

	patch := domain.QuizPatch{}
	if req != nil {
		patch = domain.QuizPatch{Title: req.Title, Description: req.Description, VideoURL: req.VideoURL}
	}
	if patch.IsEmpty() {
		return toQuizResponse(quiz), nil
	}
	if err := patch.Apply(quiz); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, quiz)
	if err != nil {
		return nil, domain.NewInternalError("Failed to update quiz", err)
	}
	if !updated {
		return nil, domain.NewQuizNotFoundError()
	}
	logger.Get().Info("Quiz updated", zap.String("quizID", quiz.ID), zap.String("ownerID", ownerID))
	return toQuizResponse(quiz), nil
}

func (s *quizService) DeleteQuiz(ctx context.Context, ownerID, quizID string) error {
	if strings.TrimSpace(quizID) == "" {
		return domain.NewQuizNotFoundError()
	}
	deleted, err := s.repo.DeleteForOwner(ctx, quizID, ownerID)
	if err != nil {
		return domain.NewInternalError("Failed to delete quiz", err)
	}
	if !deleted {
		return domain.NewQuizNotFoundError()
	}
	logger.Get().Info("Quiz deleted", zap.String("quizID", quizID), zap.String("ownerID", ownerID))
	return nil
}

func (s *quizService) load(ctx context.Context, ownerID, quizID string) (*domain.Quiz, error) {
	if strings.TrimSpace(quizID) == "" {
		return nil, domain.NewQuizNotFoundError()
	}
	quiz, err := s.repo.GetByIDForOwner(ctx, quizID, ownerID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError()
	}
	return quiz, nil
}

func toQuizResponse(q *domain.Quiz) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Description: q.Description,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
		VideoURL:    q.VideoURL,
		Questions:   make([]dto.QuestionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		options := question.Options
		if options == nil {
			options = []string{}
		}
		resp.Questions = append(resp.Questions, dto.QuestionResponse{
			ID:              question.ID,
			QuestionTitle:   question.Text,
			QuestionOptions: options,
			Answer:          question.Answer,
		})
	}
	return resp
}
