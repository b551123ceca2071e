package middleware

import (
	"errors"
	"net/http"

	"quizly/internal/domain"
	"quizly/internal/dto"
	"quizly/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler is the centralized error handler. Causes are only exposed in
// "details" when exposeDetails is set.
func ErrorHandler(exposeDetails bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get()

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)
			fields := []zap.Field{
				zap.String("path", c.Path()),
				zap.String("code", string(domainErr.Code)),
				zap.String("phase", string(domainErr.Phase)),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Err),
			}
			if statusCode >= http.StatusInternalServerError {
				log.Error(domainErr.Message, fields...)
			} else {
				log.Warn(domainErr.Message, fields...)
			}

			response := dto.ErrorResponse{
				Error: domainErr.Message,
				Code:  string(domainErr.Code),
				Phase: string(domainErr.Phase),
			}
			if exposeDetails && domainErr.Err != nil {
				response.Details = domainErr.Err.Error()
			}
			return c.Status(statusCode).JSON(response)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Error: fiberErr.Message,
				Code:  "HTTP_ERROR",
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		response := dto.ErrorResponse{
			Error: "Internal server error",
			Code:  string(domain.CodeInternal),
		}
		if exposeDetails {
			response.Details = err.Error()
		}
		return c.Status(http.StatusInternalServerError).JSON(response)
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.CodeNotFound, domain.CodeQuizNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidInput, domain.CodeValidation, domain.CodeConflict:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
