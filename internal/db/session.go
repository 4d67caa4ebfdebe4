package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// DBTX is the read surface shared by *sql.DB, *sql.Conn and *sql.Tx.
// Repositories take it so they never care where a query runs.
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SessionProvider hands out scoped sessions against the store.
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(q DBTX) error) error
}

// Sessions pins one pooled connection per call to WithSession.
type Sessions struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSessions(db *sql.DB, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{db: db, logger: logger}
}

// WithSession runs fn on a dedicated connection and returns it to the pool
// when fn returns, errors, or panics.
func (s *Sessions) WithSession(ctx context.Context, fn func(q DBTX) error) (err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		closeErr := conn.Close()
		if closeErr == nil || errors.Is(closeErr, sql.ErrConnDone) {
			return
		}
		s.logger.Error("release session", "error", closeErr)
		if err == nil {
			err = fmt.Errorf("release session: %w", closeErr)
		}
	}()

	return fn(conn)
}
