package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"quizly/internal/domain"
	"quizly/internal/repository/models"
	"quizly/internal/util"

	"github.com/jmoiron/sqlx"
)

const (
	userColumns = `id "ID", username "USERNAME", email "EMAIL", password_hash "PASSWORD_HASH",
		created_at "CREATED_AT", updated_at "UPDATED_AT"`

	insertUserQuery = `INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
	VALUES (:1, :2, :3, :4, :5, :6)`
	getUserByIDQuery       = `SELECT ` + userColumns + ` FROM users WHERE id = :1`
	getUserByUsernameQuery = `SELECT ` + userColumns + ` FROM users WHERE username = :1`
	getUserByEmailQuery    = `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = :1`
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user and assigns its id. A unique constraint violation on
// username or email is reported as a conflict.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	m := fromDomainUser(user)
	m.ID = util.NewULID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, insertUserQuery,
		m.ID, m.Username, m.Email, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("username or email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, getUserByIDQuery, id)
}

func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, getUserByUsernameQuery, username)
}

func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, getUserByEmailQuery, strings.ToLower(strings.TrimSpace(email)))
}

func (r *sqlxUserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var m models.User
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return toDomainUser(&m), nil
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
