// Package filestore stores each key as a JSON file in a directory. Several
// processes may share the directory; writes are atomic renames and other
// processes' writes are reported through fsnotify.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/db"
)

const defaultDebounce = 200 * time.Millisecond

var (
	_ db.Backend = (*Store)(nil)
	_ db.Watcher = (*Store)(nil)
)

// Config configures a file store
type Config struct {
	Dir string
	// Debounce is how long to collect file events before checking for a change
	Debounce time.Duration
}

// Store implements db.Backend on top of a directory
type Store struct {
	dir      string
	debounce time.Duration
	logger   *zap.Logger

	// Content hash per key of the last version this instance wrote or reported
	hashMu sync.Mutex
	hashes map[string]string
}

// New creates the directory if needed and returns a store for it
func New(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("file store directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Store{
		dir:      cfg.Dir,
		debounce: debounce,
		logger:   logger,
		hashes:   make(map[string]string),
	}, nil
}

// Path returns the file that holds key
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get reads the value of key, or nil if the file does not exist
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the value of key
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, "."+key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Record before the rename so our own event is recognised
	s.setHash(key, contentHash(value))

	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", key, err)
	}
	return nil
}

// Close is a no-op; watchers stop when their context is done
func (s *Store) Close() error {
	return nil
}

// Watch reports changes to key made by other processes. File events are
// debounced and only delivered when the content hash differs from the last
// version this store wrote or reported.
func (s *Store) Watch(ctx context.Context, key string) (<-chan db.Change, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: atomic renames replace the file's inode
	if err := fsw.Add(s.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	if data, err := s.Get(ctx, key); err == nil && data != nil {
		s.hashMu.Lock()
		if _, ok := s.hashes[key]; !ok {
			s.hashes[key] = contentHash(data)
		}
		s.hashMu.Unlock()
	}

	changes := make(chan db.Change, 1)
	go s.processEvents(ctx, fsw, key, changes)

	s.logger.Debug("Watching file store",
		zap.String("dir", s.dir),
		zap.String("key", key),
		zap.Duration("debounce", s.debounce))

	return changes, nil
}

func (s *Store) processEvents(ctx context.Context, fsw *fsnotify.Watcher, key string, changes chan<- db.Change) {
	defer close(changes)
	defer fsw.Close()

	target := s.Path(key)
	ticker := time.NewTicker(s.debounce)
	defer ticker.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending = true
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			s.logger.Warn("File watcher error", zap.Error(err))

		case <-ticker.C:
			if !pending {
				continue
			}
			pending = false
			if !s.changedOnDisk(key) {
				continue
			}
			select {
			case changes <- db.Change{Key: key, At: time.Now()}:
			case <-ctx.Done():
				return
			default:
				// A change is already queued; the reader reloads the latest anyway
			}
		}
	}
}

// changedOnDisk compares the file content with the last known hash and records the new one
func (s *Store) changedOnDisk(key string) bool {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		s.logger.Debug("Failed to read changed file", zap.String("key", key), zap.Error(err))
		return false
	}
	hash := contentHash(data)

	s.hashMu.Lock()
	defer s.hashMu.Unlock()
	if s.hashes[key] == hash {
		return false
	}
	s.hashes[key] = hash
	return true
}

func (s *Store) setHash(key, hash string) {
	s.hashMu.Lock()
	s.hashes[key] = hash
	s.hashMu.Unlock()
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
