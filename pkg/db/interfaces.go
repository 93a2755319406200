package db

import (
	"context"
	"errors"
	"time"
)

// DocumentKey is the key under which the club document is stored.
// Both front-ends read and write this key, so it must not change.
const DocumentKey = "club-duties-data"

// ErrWatchUnsupported is returned when a backend cannot deliver change notifications
var ErrWatchUnsupported = errors.New("backend does not support change notification")

// Backend defines the key/value operations a storage substrate must provide.
// The filestore, sqlitestore and postgres packages implement this interface.
type Backend interface {
	// Get returns the stored value, or nil and no error when the key is missing
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Change is delivered when another store instance writes a key
type Change struct {
	Key string
	At  time.Time
}

// Watcher is implemented by backends that can notify about writes made by
// other instances. Writes made through the same instance are not reported.
// The returned channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan Change, error)
}
