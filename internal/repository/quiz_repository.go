package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizly/internal/domain"
	"quizly/internal/repository/models"
	"quizly/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	quizColumns = `id "ID", owner_id "OWNER_ID", title "TITLE", description "DESCRIPTION",
		video_url "VIDEO_URL", created_at "CREATED_AT", updated_at "UPDATED_AT"`
	questionColumns = `qs.id "ID", qs.quiz_id "QUIZ_ID", qs.question_text "QUESTION_TEXT", qs.options "OPTIONS",
		qs.answer "ANSWER", qs.sort_order "SORT_ORDER", qs.created_at "CREATED_AT", qs.updated_at "UPDATED_AT"`

	insertQuizQuery = `INSERT INTO quizzes (
		id, owner_id, title, description, video_url, created_at, updated_at
	) VALUES (:1, :2, :3, :4, :5, :6, :7)`
	insertQuestionQuery = `INSERT INTO questions (
		id, quiz_id, question_text, options, answer, sort_order, created_at, updated_at
	) VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	listQuizzesQuery = `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE owner_id = :1
	ORDER BY created_at DESC, id DESC`
	listQuestionsByOwnerQuery = `SELECT ` + questionColumns + `
	FROM questions qs
	JOIN quizzes q ON q.id = qs.quiz_id
	WHERE q.owner_id = :1
	ORDER BY qs.quiz_id, qs.sort_order`
	getQuizQuery = `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE id = :1 AND owner_id = :2`
	listQuestionsByQuizQuery = `SELECT ` + questionColumns + `
	FROM questions qs
	WHERE qs.quiz_id = :1
	ORDER BY qs.sort_order`
	updateQuizQuery = `UPDATE quizzes SET
		title = :1,
		description = :2,
		video_url = :3,
		updated_at = :4
	WHERE id = :5 AND owner_id = :6`
	deleteQuestionsQuery = `DELETE FROM questions WHERE quiz_id IN (SELECT id FROM quizzes WHERE id = :1 AND owner_id = :2)`
	deleteQuizQuery      = `DELETE FROM quizzes WHERE id = :1 AND owner_id = :2`
)

// QuizDatabaseAdapter implements domain.QuizRepository on Oracle via sqlx.
type QuizDatabaseAdapter struct {
	db *sqlx.DB
	tm domain.TransactionManager
}

func NewQuizDatabaseAdapter(db *sqlx.DB, tm domain.TransactionManager) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db, tm: tm}
}

// CreateWithQuestions writes the quiz row and every question row in one transaction,
// so a quiz is never visible with only part of its questions.
func (a *QuizDatabaseAdapter) CreateWithQuestions(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}

	now := time.Now()
	quizModel := toModelQuiz(quiz)
	quizModel.ID = util.NewULID()
	quizModel.CreatedAt = now
	quizModel.UpdatedAt = now

	questionModels := make([]*models.Question, len(quiz.Questions))
	for i, q := range quiz.Questions {
		m := toModelQuestion(q)
		m.ID = util.NewULID()
		m.QuizID = quizModel.ID
		m.SortOrder = i
		m.CreatedAt = now
		m.UpdatedAt = now
		questionModels[i] = m
	}

	err := a.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, a.db)
		if _, err := exec.ExecContext(txCtx, insertQuizQuery,
			quizModel.ID,
			quizModel.OwnerID,
			quizModel.Title,
			quizModel.Description,
			quizModel.VideoURL,
			quizModel.CreatedAt,
			quizModel.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert quiz: %w", err)
		}

		for _, m := range questionModels {
			if _, err := exec.ExecContext(txCtx, insertQuestionQuery,
				m.ID,
				m.QuizID,
				m.QuestionText,
				m.Options,
				m.Answer,
				m.SortOrder,
				m.CreatedAt,
				m.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert question %d: %w", m.SortOrder+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	quiz.ID = quizModel.ID
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	for i, q := range quiz.Questions {
		q.ID = questionModels[i].ID
		q.QuizID = quizModel.ID
		q.Position = i
		q.CreatedAt = now
		q.UpdatedAt = now
	}
	return nil
}

// ListByOwner returns the owner's quizzes newest first, each with its ordered questions.
func (a *QuizDatabaseAdapter) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var quizRows []models.Quiz
	if err := exec.SelectContext(ctx, &quizRows, listQuizzesQuery, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	if len(quizRows) == 0 {
		return []*domain.Quiz{}, nil
	}

	var questionRows []models.Question
	if err := exec.SelectContext(ctx, &questionRows, listQuestionsByOwnerQuery, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	byQuiz := make(map[string][]models.Question, len(quizRows))
	for _, q := range questionRows {
		byQuiz[q.QuizID] = append(byQuiz[q.QuizID], q)
	}

	quizzes := make([]*domain.Quiz, 0, len(quizRows))
	for i := range quizRows {
		quizzes = append(quizzes, toDomainQuiz(&quizRows[i], byQuiz[quizRows[i].ID]))
	}
	return quizzes, nil
}

func (a *QuizDatabaseAdapter) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var quizRow models.Quiz
	if err := exec.GetContext(ctx, &quizRow, getQuizQuery, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", id, err)
	}

	var questionRows []models.Question
	if err := exec.SelectContext(ctx, &questionRows, listQuestionsByQuizQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get questions of quiz %s: %w", id, err)
	}
	return toDomainQuiz(&quizRow, questionRows), nil
}

func (a *QuizDatabaseAdapter) Update(ctx context.Context, quiz *domain.Quiz) (bool, error) {
	if quiz == nil || quiz.ID == "" {
		return false, fmt.Errorf("cannot update quiz without id")
	}
	exec := GetExecutor(ctx, a.db)
	m := toModelQuiz(quiz)

	result, err := exec.ExecContext(ctx, updateQuizQuery,
		m.Title,
		m.Description,
		m.VideoURL,
		m.UpdatedAt,
		m.ID,
		m.OwnerID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update quiz: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// DeleteForOwner removes the questions explicitly before the quiz so the result does
// not depend on the foreign key cascade being present.
func (a *QuizDatabaseAdapter) DeleteForOwner(ctx context.Context, id, ownerID string) (bool, error) {
	var deleted bool
	err := a.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, a.db)
		if _, err := exec.ExecContext(txCtx, deleteQuestionsQuery, id, ownerID); err != nil {
			return fmt.Errorf("failed to delete questions of quiz %s: %w", id, err)
		}
		result, err := exec.ExecContext(txCtx, deleteQuizQuery, id, ownerID)
		if err != nil {
			return fmt.Errorf("failed to delete quiz %s: %w", id, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted = rowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func toModelQuiz(q *domain.Quiz) *models.Quiz {
	return &models.Quiz{
		ID:          q.ID,
		OwnerID:     q.OwnerID,
		Title:       q.Title,
		Description: util.StringToNullString(q.Description),
		VideoURL:    q.VideoURL,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.Text,
		Options:      models.StringSlice(q.Options),
		Answer:       q.Answer,
		SortOrder:    q.Position,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

func toDomainQuiz(m *models.Quiz, questions []models.Question) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:          m.ID,
		OwnerID:     m.OwnerID,
		Title:       m.Title,
		Description: util.NullStringToString(m.Description),
		VideoURL:    m.VideoURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Questions:   make([]*domain.Question, 0, len(questions)),
	}
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, &domain.Question{
			ID:        q.ID,
			QuizID:    q.QuizID,
			Text:      q.QuestionText,
			Options:   []string(q.Options),
			Answer:    q.Answer,
			Position:  q.SortOrder,
			CreatedAt: q.CreatedAt,
			UpdatedAt: q.UpdatedAt,
		})
	}
	return quiz
}
