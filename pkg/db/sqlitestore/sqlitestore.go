// Package sqlitestore provides a SQLite-backed implementation of db.Backend.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/jakechorley/club-duties/pkg/db"
)

const defaultPollInterval = time.Second

var (
	_ db.Backend = (*Store)(nil)
	_ db.Watcher = (*Store)(nil)
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    revision INTEGER NOT NULL,
    writer TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// Store implements db.Backend using a single SQLite table
type Store struct {
	db           *sql.DB
	instanceID   string
	pollInterval time.Duration
	logger       *zap.Logger
}

// New opens (or creates) the database at dbPath and ensures the schema exists.
// pollInterval controls how often Watch checks for new revisions.
func New(dbPath string, pollInterval time.Duration, logger *zap.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	return &Store{
		db:           sqlDB,
		instanceID:   uuid.New().String(),
		pollInterval: pollInterval,
		logger:       logger,
	}, nil
}

// dsn sets the pragmas on every connection the pool opens. Several CLI
// processes may share the file, so each connection waits for locks.
func dsn(dbPath string) string {
	pragmas := url.Values{"_pragma": {"busy_timeout(5000)", "journal_mode(WAL)"}}
	return "file:" + dbPath + "?" + pragmas.Encode()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or nil if there is none
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value under key and bumps its revision
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (key, value, revision, writer, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			revision = documents.revision + 1,
			writer = excluded.writer,
			updated_at = excluded.updated_at
	`, key, value, s.instanceID, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// revision returns the current revision and last writer of key; zero when missing
func (s *Store) revision(ctx context.Context, key string) (int64, string, error) {
	var rev int64
	var writer string
	err := s.db.QueryRowContext(ctx, `SELECT revision, writer FROM documents WHERE key = ?`, key).Scan(&rev, &writer)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	return rev, writer, nil
}

// Watch polls the revision of key and reports increases made by other instances
func (s *Store) Watch(ctx context.Context, key string) (<-chan db.Change, error) {
	last, _, err := s.revision(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read revision of %s: %w", key, err)
	}

	changes := make(chan db.Change, 1)
	go func() {
		defer close(changes)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rev, writer, err := s.revision(ctx, key)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("Failed to poll document revision", zap.String("key", key), zap.Error(err))
				continue
			}
			if rev == last {
				continue
			}
			last = rev
			if writer == s.instanceID {
				continue
			}

			select {
			case changes <- db.Change{Key: key, At: time.Now()}:
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	return changes, nil
}
