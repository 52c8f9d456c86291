// Package sqlite implements the repository on relational SQLite tables, the same
// layout the Postgres backend uses. Every transaction runs on its own connection
// under BEGIN IMMEDIATE, so writers queue on the database lock instead of failing
// at commit.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/repository"
)

var _ repository.Repository = (*Store)(nil)

const (
	defaultPath = "herdbook.db"
	pragmas     = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
)

// Store is the SQLite-backed repository.
type Store struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	logger *zap.Logger
}

// NewStore opens (or creates) the database at path and applies the schema.
func NewStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer, and the pragmas are per connection.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute ddl: %w", err)
		}
	}
	logger.Info("sqlite store ready", zap.String("path", path))
	return &Store{db: db, path: path, now: time.Now, logger: logger}, nil
}

// RunInTx runs fn inside BEGIN IMMEDIATE and commits when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, scope int64, fn func(tx repository.Tx) error) error {
	return s.within(ctx, scope, "BEGIN IMMEDIATE", true, func(h *handle) error { return fn(h) })
}

// View runs fn inside a deferred read transaction that is always rolled back.
func (s *Store) View(ctx context.Context, scope int64, fn func(r repository.Reader) error) error {
	return s.within(ctx, scope, "BEGIN", false, func(h *handle) error { return fn(h) })
}

func (s *Store) within(ctx context.Context, scope int64, begin string, commit bool, fn func(*handle) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return models.NewStorageError("acquire connection", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, begin); err != nil {
		return models.NewStorageError("begin", err)
	}
	done := false
	defer func() {
		if done {
			return
		}
		// The caller's context may already be canceled; the transaction must still end.
		if _, err := conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK"); err != nil {
			s.logger.Warn("rollback failed", zap.Int64("scope", scope), zap.Error(err))
		}
	}()

	if err := fn(&handle{q: conn, scope: scope, now: s.now}); err != nil {
		return err
	}
	if !commit {
		return nil
	}
	if _, err := conn.ExecContext(context.WithoutCancel(ctx), "COMMIT"); err != nil {
		return models.NewStorageError("commit", err)
	}
	done = true
	return nil
}

// ListOwners returns every user id that owns at least one record.
func (s *Store) ListOwners(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM animals
		UNION SELECT user_id FROM feed
		UNION SELECT user_id FROM vaccinations
		UNION SELECT user_id FROM sales
		UNION SELECT user_id FROM finance_records
		ORDER BY 1`)
	if err != nil {
		return nil, models.NewStorageError("list owners", err)
	}
	return collect(rows, func(row scanner) (int64, error) {
		var id int64
		err := row.Scan(&id)
		return id, err
	}, "list owners")
}

// Close closes the database handle.
func (s *Store) Close(context.Context) error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }
