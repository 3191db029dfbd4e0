package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"thread_broadcast_bot/internal/domain/session"

	"github.com/jmoiron/sqlx"
)

const createSessionsTable = `CREATE TABLE IF NOT EXISTS platform_sessions (
               session_key TEXT PRIMARY KEY,
               blob        BYTEA NOT NULL,
               created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
               updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
           )`

type sessionRow struct {
	Key  string `db:"session_key"`
	Blob []byte `db:"blob"`
}

// PostgresSessionRepository stores the session blob in a single row keyed by session key.
type PostgresSessionRepository struct {
	db  *sqlx.DB
	key string
}

func NewPostgresSessionRepository(db *sqlx.DB, key string) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db, key: key}
}

// EnsureSchema creates the sessions table if it does not exist yet.
func (r *PostgresSessionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("error creating platform_sessions table: %w", err)
	}
	return nil
}

func (r *PostgresSessionRepository) Load(ctx context.Context) ([]byte, error) {
	query := `SELECT blob FROM platform_sessions WHERE session_key = $1`
	var blob []byte
	if err := r.db.GetContext(ctx, &blob, query, r.key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("error loading session %q: %w", r.key, err)
	}
	return blob, nil
}

func (r *PostgresSessionRepository) Save(ctx context.Context, blob []byte) error {
	query := `INSERT INTO platform_sessions (session_key, blob)
               VALUES (:session_key, :blob)
               ON CONFLICT (session_key) DO UPDATE
               SET blob = EXCLUDED.blob, updated_at = NOW()`

	if _, err := r.db.NamedExecContext(ctx, query, sessionRow{Key: r.key, Blob: blob}); err != nil {
		return fmt.Errorf("error saving session %q: %w", r.key, err)
	}
	return nil
}
