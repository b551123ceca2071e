package handler

import (
	"strings"

	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"
	"quizly/internal/middleware"
	"quizly/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	generator service.QuizGenerationService
	service   service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(generator service.QuizGenerationService, service service.QuizService) *QuizHandler {
	return &QuizHandler{
		generator: generator,
		service:   service,
	}
}

// CreateQuiz godoc
// @Summary Generate a quiz from a YouTube video
// @Description Downloads the audio, transcribes it and generates a multiple-choice quiz
// @Tags quizzes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Video URL"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /createQuiz [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid JSON")
	}
	if strings.TrimSpace(req.URL) == "" {
		return domain.NewValidationError("url is required").WithPhase(domain.PhaseValidateURL)
	}

	userID := middleware.UserID(c)
	logger.Get().Info("Quiz generation requested", zap.String("userID", userID), zap.String("url", req.URL))

	quiz, err := h.generator.CreateQuiz(c.UserContext(), userID, req.URL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// ListQuizzes godoc
// @Summary List the caller's quizzes
// @Description Newest first, questions in generation order
// @Tags quizzes
// @Produce json
// @Success 200 {array} dto.QuizResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz godoc
// @Summary Get one of the caller's quizzes
// @Tags quizzes
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// UpdateQuiz godoc
// @Summary Partially update a quiz
// @Description Only title, description and video_url can change
// @Tags quizzes
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Fields to change"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [patch]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid JSON")
	}

	quiz, err := h.service.UpdateQuiz(c.UserContext(), middleware.UserID(c), c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz and its questions
// @Tags quizzes
// @Param id path string true "Quiz ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security ApiKeyAuth
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.service.DeleteQuiz(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
