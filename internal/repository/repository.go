package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sijms/go-ora/v2/network"
)

// DBTX abstracts *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// oraUniqueViolation is ORA-00001: unique constraint violated.
const oraUniqueViolation = 1

func isUniqueViolation(err error) bool {
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode == oraUniqueViolation
	}
	return strings.Contains(err.Error(), "ORA-00001")
}
