package models

import "time"

// User is a row of the users table.
type User struct {
	ID           string    `db:"ID"` // ULID
	Username     string    `db:"USERNAME"`
	Email        string    `db:"EMAIL"`
	PasswordHash string    `db:"PASSWORD_HASH"`
	CreatedAt    time.Time `db:"CREATED_AT"`
	UpdatedAt    time.Time `db:"UPDATED_AT"`
}
