// Package sqlite persists the client's bearer credential across restarts.
//
// A single-row table stands in for the browser's durable token key: the row
// is present while a session exists and absent otherwise. Nothing else the
// client holds is durable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skilldeck/skilldeck-go/platform/storage/sqlitemigrate"
	"github.com/skilldeck/skilldeck-go/platform/timeouts"
	"github.com/skilldeck/skilldeck-go/storage/sqlite/migrations"
)

// Store implements credential persistence over SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens the credential store at path and applies bundled migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cleanPath, timeouts.TokenStore.Milliseconds())
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveToken durably replaces the stored bearer token.
func (s *Store) SaveToken(ctx context.Context, token string, now time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO credential (id, token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at`,
		token, now.UTC().UnixMilli(),
	)
	return err
}

// LoadToken returns the stored bearer token, or "" when no session was
// persisted.
func (s *Store) LoadToken(ctx context.Context) (string, error) {
	if err := s.ensureDB(); err != nil {
		return "", err
	}
	var token string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT token FROM credential WHERE id = 1").Scan(&token)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// DeleteToken removes the stored bearer token. Deleting an absent token is
// not an error.
func (s *Store) DeleteToken(ctx context.Context) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, "DELETE FROM credential WHERE id = 1")
	return err
}

func (s *Store) ensureDB() error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("credential store is not configured")
	}
	return nil
}
