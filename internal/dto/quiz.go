package dto

import "time"

// CreateQuizRequest is the body of POST /createQuiz.
// @Description Request body for generating a quiz from a video URL
type CreateQuizRequest struct {
	URL string `json:"url" example:"https://www.youtube.com/watch?v=dQw4w9WgXcQ"`
}

// QuestionResponse represents a generated question.
// @Description A multiple-choice question of a quiz
type QuestionResponse struct {
	ID              string   `json:"id"`
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// QuizResponse represents a persisted quiz with its questions.
// @Description Quiz with its questions in generation order
type QuizResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	VideoURL    string             `json:"video_url"`
	Questions   []QuestionResponse `json:"questions"`
}

// UpdateQuizRequest carries the fields a PATCH may change. Absent fields are left untouched.
// @Description Partial quiz update
type UpdateQuizRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
}

// ErrorResponse is the body of every failed request.
// @Description Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Details string `json:"details,omitempty"`
}
