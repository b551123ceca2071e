package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quizly/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) CreateWithQuestions(ctx context.Context, quiz *domain.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Quiz, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDForOwner(ctx context.Context, id, ownerID string) (*domain.Quiz, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *domain.Quiz) (bool, error) {
	args := m.Called(ctx, quiz)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) DeleteForOwner(ctx context.Context, id, ownerID string) (bool, error) {
	args := m.Called(ctx, id, ownerID)
	return args.Bool(0), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeAcquirer writes a small audio file into the destination directory.
type fakeAcquirer struct {
	mu    sync.Mutex
	calls int
	dirs  []string
	err   error
	// block, when set, is waited on before returning unless ctx ends first.
	block chan struct{}
}

func (f *fakeAcquirer) Acquire(ctx context.Context, id domain.VideoID, destDir string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.dirs = append(f.dirs, destDir)
	f.mu.Unlock()

	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	path := filepath.Join(destDir, "audio_"+id.String()+".mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o600); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	return path, nil
}

func (f *fakeAcquirer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeTranscriber struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
	block chan struct{}
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", domain.NewTranscriptionError("audio file not found", domain.ErrFileNotFound)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeGenerator struct {
	mu         sync.Mutex
	calls      int
	transcript string
	sourceURL  string
	draft      *domain.QuizDraft
	err        error
}

func (f *fakeGenerator) Generate(ctx context.Context, transcript, sourceURL string) (*domain.QuizDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.transcript = transcript
	f.sourceURL = sourceURL
	if f.err != nil {
		return nil, f.err
	}
	return f.draft, nil
}
