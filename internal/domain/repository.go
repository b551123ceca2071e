package domain

import "context"

// TransactionManager runs fn inside a single store transaction.
// Repositories pick the transaction up from the context passed to fn.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// QuizRepository persists quizzes and their questions.
// Every read and write except CreateWithQuestions is scoped to an owner;
// a quiz that exists but belongs to someone else is reported as not found.
type QuizRepository interface {
	// CreateWithQuestions stores the quiz and all of its questions atomically and
	// fills in the generated ids.
	CreateWithQuestions(ctx context.Context, quiz *Quiz) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Quiz, error)
	// GetByIDForOwner returns nil, nil when no matching quiz exists.
	GetByIDForOwner(ctx context.Context, id, ownerID string) (*Quiz, error)
	// Update writes title, description and video url. It returns false when no row matched.
	Update(ctx context.Context, quiz *Quiz) (bool, error)
	// DeleteForOwner removes the quiz and its questions. It returns false when no row matched.
	DeleteForOwner(ctx context.Context, id, ownerID string) (bool, error)
}

// UserRepository persists user accounts. Lookups return nil, nil when nothing matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}
