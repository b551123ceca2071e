package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"quizly/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.up.sql
var migrationFS embed.FS

// Migration is one embedded *.up.sql file.
type Migration struct {
	Version    string
	Statements []string
}

// LoadMigrations returns the embedded migrations ordered by file name.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFS, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", name, err)
		}
		migrations = append(migrations, Migration{
			Version:    strings.TrimSuffix(name, ".up.sql"),
			Statements: splitStatements(string(content)),
		})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// splitStatements breaks a script into single statements. Oracle rejects a trailing
// semicolon and multiple statements per Exec, so both are stripped here.
func splitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
			statements = append(statements, strings.TrimSpace(stmt))
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

const (
	schemaTableExistsQuery = `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`
	createSchemaTable      = `CREATE TABLE schema_migrations (version VARCHAR2(255) PRIMARY KEY, applied_at TIMESTAMP WITH TIME ZONE NOT NULL)`
	migrationAppliedQuery  = `SELECT COUNT(*) FROM schema_migrations WHERE version = :1`
	recordMigration        = `INSERT INTO schema_migrations (version, applied_at) VALUES (:1, :2)`
)

// RunMigrations applies every embedded migration that is not yet recorded in
// schema_migrations. Oracle DDL commits implicitly, so each statement runs on its own.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	migrations, err := LoadMigrations()
	if err != nil {
		return err
	}
	return applyMigrations(ctx, db, migrations)
}

func applyMigrations(ctx context.Context, db *sqlx.DB, migrations []Migration) error {
	log := logger.Get()

	var tableCount int
	if err := db.GetContext(ctx, &tableCount, schemaTableExistsQuery); err != nil {
		return fmt.Errorf("could not check schema_migrations table: %w", err)
	}
	if tableCount == 0 {
		if _, err := db.ExecContext(ctx, createSchemaTable); err != nil {
			return fmt.Errorf("could not create schema_migrations table: %w", err)
		}
	}

	for _, m := range migrations {
		var applied int
		if err := db.GetContext(ctx, &applied, migrationAppliedQuery, m.Version); err != nil {
			return fmt.Errorf("could not check migration %s: %w", m.Version, err)
		}
		if applied > 0 {
			log.Debug("Skipping applied migration", zap.String("version", m.Version))
			continue
		}

		for i, stmt := range m.Statements {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s statement %d: %w", m.Version, i+1, err)
			}
		}
		if _, err := db.ExecContext(ctx, recordMigration, m.Version, time.Now()); err != nil {
			return fmt.Errorf("could not record migration %s: %w", m.Version, err)
		}
		log.Info("Executed migration", zap.String("version", m.Version), zap.Int("statements", len(m.Statements)))
	}

	log.Info("Migrations completed successfully", zap.Int("total", len(migrations)))
	return nil
}
