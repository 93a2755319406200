package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// DocumentStore defines the persistence operations the services need.
// db.Repository implements this interface.
type DocumentStore interface {
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
}

var (
	ErrMemberNotFound  = errors.New("member not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrAlreadySignedUp = errors.New("member is already signed up")
	ErrTaskFull        = errors.New("task is full")
)

// SignupError is returned when a signup is refused. It wraps ErrAlreadySignedUp
// or ErrTaskFull so callers can tell the two apart with errors.Is.
type SignupError struct {
	TaskID   string
	MemberID string
	Capacity int
	Err      error
}

func (e *SignupError) Error() string {
	if errors.Is(e.Err, ErrTaskFull) {
		return fmt.Sprintf("cannot sign up for task %s: %v (capacity %d)", e.TaskID, e.Err, e.Capacity)
	}
	return fmt.Sprintf("cannot sign up for task %s: %v", e.TaskID, e.Err)
}

func (e *SignupError) Unwrap() error {
	return e.Err
}

// load fetches the document, wrapping failures consistently
func load(ctx context.Context, store DocumentStore) (*model.Document, error) {
	doc, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	return doc, nil
}

// save persists the document, wrapping failures consistently
func save(ctx context.Context, store DocumentStore, doc *model.Document) error {
	if err := store.Save(ctx, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}
