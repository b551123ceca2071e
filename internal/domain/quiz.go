package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultQuizTitle is used when the generated draft carries no title.
	DefaultQuizTitle = "Generated Quiz"
	// OptionsPerQuestion is the exact number of answer options a generated question must carry.
	OptionsPerQuestion = 4
)

// Quiz represents a stored quiz owned by a single user
type Quiz struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	VideoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Questions   []*Question
}

// Question belongs to exactly one quiz and is deleted with it
type Question struct {
	ID        string
	QuizID    string
	Text      string
	Options   []string
	Answer    string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// QuizDraft is the transient quiz content produced by the generator.
// It is validated before it is mapped into Quiz and Question entities.
type QuizDraft struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionDraft `json:"questions"`
}

// QuestionDraft is one generated question inside a QuizDraft
type QuestionDraft struct {
	QuestionTitle string   `json:"question_title"`
	Options       []string `json:"options"`
	Answer        string   `json:"answer"`
}

// Normalize trims whitespace and applies the title fallback.
func (d *QuizDraft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		d.Title = DefaultQuizTitle
	}
	d.Description = strings.TrimSpace(d.Description)
	for i := range d.Questions {
		q := &d.Questions[i]
		q.QuestionTitle = strings.TrimSpace(q.QuestionTitle)
		q.Answer = strings.TrimSpace(q.Answer)
		for j := range q.Options {
			q.Options[j] = strings.TrimSpace(q.Options[j])
		}
	}
}

// Validate checks the draft against the quiz schema: every question needs text,
// exactly four distinct non-empty options and an answer that is one of them.
func (d *QuizDraft) Validate() error {
	if d.Questions == nil {
		return NewValidationError("questions are required")
	}
	for i, q := range d.Questions {
		n := i + 1
		if q.QuestionTitle == "" {
			return NewValidationError(fmt.Sprintf("question %d: question_title is required", n))
		}
		if len(q.Options) != OptionsPerQuestion {
			return NewValidationError(fmt.Sprintf("question %d: expected %d options, got %d", n, OptionsPerQuestion, len(q.Options)))
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if opt == "" {
				return NewValidationError(fmt.Sprintf("question %d: options must not be empty", n))
			}
			if _, dup := seen[opt]; dup {
				return NewValidationError(fmt.Sprintf("question %d: duplicate option %q", n, opt))
			}
			seen[opt] = struct{}{}
		}
		if _, ok := seen[q.Answer]; !ok {
			return NewValidationError(fmt.Sprintf("question %d: answer %q is not one of the options", n, q.Answer))
		}
	}
	return nil
}

// NewQuizFromDraft maps an accepted draft into a quiz owned by ownerID.
// Question order and option order are preserved.
func NewQuizFromDraft(ownerID, videoURL string, d *QuizDraft) *Quiz {
	now := time.Now()
	title := d.Title
	if title == "" {
		title = DefaultQuizTitle
	}
	quiz := &Quiz{
		OwnerID:     ownerID,
		Title:       title,
		Description: d.Description,
		VideoURL:    videoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
		Questions:   make([]*Question, 0, len(d.Questions)),
	}
	for i, qd := range d.Questions {
		options := make([]string, len(qd.Options))
		copy(options, qd.Options)
		quiz.Questions = append(quiz.Questions, &Question{
			Text:      qd.QuestionTitle,
			Options:   options,
			Answer:    qd.Answer,
			Position:  i,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return quiz
}

// QuizPatch carries a partial update. Nil fields are left untouched.
type QuizPatch struct {
	Title       *string
	Description *string
	VideoURL    *string
}

// IsEmpty reports whether the patch changes nothing.
func (p QuizPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.VideoURL == nil
}

// Apply validates the patch and writes its fields onto q.
func (p QuizPatch) Apply(q *Quiz) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return NewValidationError("title must not be empty")
		}
		q.Title = title
	}
	if p.Description != nil {
		q.Description = *p.Description
	}
	if p.VideoURL != nil {
		q.VideoURL = strings.TrimSpace(*p.VideoURL)
	}
	q.UpdatedAt = time.Now()
	return nil
}
