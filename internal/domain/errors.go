package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeConflict     ErrorCode = "CONFLICT"

	// Quiz specific errors
	CodeQuizNotFound ErrorCode = "QUIZ_NOT_FOUND"

	// Generation pipeline errors
	CodeAcquisition   ErrorCode = "ACQUISITION_ERROR"
	CodeTranscription ErrorCode = "TRANSCRIPTION_ERROR"
	CodeGeneration    ErrorCode = "GENERATION_ERROR"
	CodePersistence   ErrorCode = "PERSISTENCE_ERROR"
)

// Phase names a stage of the quiz generation pipeline.
type Phase string

const (
	PhaseValidateURL     Phase = "VALIDATE_URL"
	PhaseAcquireAudio    Phase = "ACQUIRE_AUDIO"
	PhaseTranscribe      Phase = "TRANSCRIBE"
	PhaseGenerateContent Phase = "GENERATE_CONTENT"
	PhasePersist         Phase = "PERSIST"
	PhaseCleanup         Phase = "CLEANUP"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Phase   Phase     `json:"phase,omitempty"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	prefix := e.Message
	if e.Phase != "" {
		prefix = fmt.Sprintf("[%s] %s", e.Phase, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Phase   string `json:"phase,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Phase:   string(e.Phase),
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithPhase tags the error with the pipeline phase that produced it.
// An existing tag is kept so the innermost phase wins.
func (e *DomainError) WithPhase(phase Phase) *DomainError {
	if e.Phase == "" {
		e.Phase = phase
	}
	return e
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewConflictError(message string) *DomainError {
	return NewError(CodeConflict, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// NewQuizNotFoundError does not distinguish a missing quiz from one owned by someone else.
func NewQuizNotFoundError() *DomainError {
	return NewError(CodeQuizNotFound, "Quiz not found or not authorized.", nil)
}

func NewAcquisitionError(message string, err error) *DomainError {
	return &DomainError{Code: CodeAcquisition, Message: message, Phase: PhaseAcquireAudio, Err: err}
}

func NewTranscriptionError(message string, err error) *DomainError {
	return &DomainError{Code: CodeTranscription, Message: message, Phase: PhaseTranscribe, Err: err}
}

func NewGenerationError(message string, err error) *DomainError {
	return &DomainError{Code: CodeGeneration, Message: message, Phase: PhaseGenerateContent, Err: err}
}

func NewPersistenceError(message string, err error) *DomainError {
	return &DomainError{Code: CodePersistence, Message: message, Phase: PhasePersist, Err: err}
}

// ErrFileNotFound is wrapped by transcription errors raised for a missing audio file.
var ErrFileNotFound = errors.New("file not found")

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
