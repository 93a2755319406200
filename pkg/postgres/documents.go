package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/db"
)

// notifyChannel is the LISTEN/NOTIFY channel announcing document writes
const notifyChannel = "club_duties_documents"

type notification struct {
	Key    string `json:"key"`
	Writer string `json:"writer"`
}

// Get retrieves the document stored under key
func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := d.pool.QueryRow(ctx, `
		SELECT value FROM documents WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	return value, nil
}

// Set replaces the document under key, archives the previous version and
// notifies listeners, all in one transaction
func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO document_history (key, revision, value, writer)
		SELECT key, revision, value, writer FROM documents WHERE key = $1
		ON CONFLICT DO NOTHING
	`, key)
	if err != nil {
		return fmt.Errorf("failed to archive document %s: %w", key, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO documents (key, value, writer)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			revision = documents.revision + 1,
			writer = EXCLUDED.writer,
			updated_at = NOW()
	`, key, string(value), d.instanceID)
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}

	payload, err := json.Marshal(notification{Key: key, Writer: d.instanceID})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify listeners: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit document %s: %w", key, err)
	}
	return nil
}

// Watch holds a dedicated connection that LISTENs for writes to key made by
// other instances
func (d *DB) Watch(ctx context.Context, key string) (<-chan db.Change, error) {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	changes := make(chan db.Change, 1)
	go func() {
		defer close(changes)
		// The session is still subscribed, so it is closed instead of going back to the pool
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := conn.Hijack().Close(closeCtx); err != nil {
				d.logger.Debug("Failed to close listen connection", zap.Error(err))
			}
		}()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					d.logger.Warn("Stopped listening for document changes", zap.Error(err))
				}
				return
			}

			var msg notification
			if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
				d.logger.Debug("Ignoring malformed notification", zap.String("payload", n.Payload))
				continue
			}
			if msg.Key != key || msg.Writer == d.instanceID {
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
