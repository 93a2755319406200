package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// Repository loads and saves the whole club document through a Backend.
//
// There is no locking across instances: every mutation is a read-modify-write
// of the complete document and the last write wins.
type Repository struct {
	backend Backend
	key     string
	logger  *zap.Logger

	mu sync.Mutex
	// unsaved holds the document of a failed save. It stays authoritative for
	// this session until a later save succeeds.
	unsaved *model.Document
}

// Option configures a Repository
type Option func(*Repository)

// WithKey stores the document under key instead of DocumentKey
func WithKey(key string) Option {
	return func(r *Repository) {
		if key != "" {
			r.key = key
		}
	}
}

// NewRepository creates a repository for the club document
func NewRepository(backend Backend, logger *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		backend: backend,
		key:     DocumentKey,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load returns the current document. Missing or unparsable data yields an empty
// document; an error is only returned when the backend cannot be read at all.
func (r *Repository) Load(ctx context.Context) (*model.Document, error) {
	r.mu.Lock()
	unsaved := r.unsaved
	r.mu.Unlock()
	if unsaved != nil {
		r.logger.Debug("Serving unsaved document from session")
		return unsaved.Clone(), nil
	}

	data, err := r.backend.Get(ctx, r.key)
	if err != nil {
		return nil, &StorageError{Op: "load", Key: r.key, Err: err}
	}

	return r.decode(data), nil
}

func (r *Repository) decode(data []byte) *model.Document {
	if len(data) == 0 {
		r.logger.Debug("No stored document, starting empty", zap.String("key", r.key))
		return model.NewDocument()
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		r.logger.Warn("Stored document is unreadable, starting empty",
			zap.String("key", r.key),
			zap.Error(err))
		return model.NewDocument()
	}
	doc.Normalize()
	return &doc
}

// Save writes the document. On failure it returns a *StorageError and keeps
// the document so subsequent loads in this session still see the change.
func (r *Repository) Save(ctx context.Context, doc *model.Document) error {
	doc.Normalize()
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	if err := r.backend.Set(ctx, r.key, data); err != nil {
		r.mu.Lock()
		r.unsaved = doc.Clone()
		r.mu.Unlock()
		r.logger.Warn("Failed to save document, keeping changes for this session",
			zap.String("key", r.key),
			zap.Error(err))
		return &StorageError{Op: "save", Key: r.key, Err: err}
	}

	r.mu.Lock()
	r.unsaved = nil
	r.mu.Unlock()

	r.logger.Debug("Saved document",
		zap.Int("members", len(doc.Members)),
		zap.Int("tasks", len(doc.Tasks)),
		zap.Int("bytes", len(data)))
	return nil
}

// HasUnsavedChanges reports whether the last save failed
func (r *Repository) HasUnsavedChanges() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsaved != nil
}

// Subscribe calls fn with a freshly loaded document every time another
// instance writes the document. It blocks until ctx is done.
func (r *Repository) Subscribe(ctx context.Context, fn func(*model.Document)) error {
	watcher, ok := r.backend.(Watcher)
	if !ok {
		return ErrWatchUnsupported
	}

	changes, err := watcher.Watch(ctx, r.key)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.key, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case change, ok := <-changes:
			if !ok {
				return nil
			}
			r.logger.Debug("Document changed by another instance",
				zap.String("key", change.Key),
				zap.Time("at", change.At))

			doc, err := r.Load(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				r.logger.Warn("Failed to reload changed document", zap.Error(err))
				continue
			}
			fn(doc)
		}
	}
}

// Close closes the underlying backend
func (r *Repository) Close() error {
	return r.backend.Close()
}
