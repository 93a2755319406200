package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// mockBackend is an in-memory Backend with injectable failures
type mockBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	getErr  error
	setErr  error
	sets    int
	changes chan Change
}

func newMockBackend() *mockBackend {
	return &mockBackend{data: make(map[string][]byte)}
}

func (m *mockBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.data[key], nil
}

func (m *mockBackend) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockBackend) Close() error {
	return nil
}

// watchingBackend adds Watcher support to mockBackend
type watchingBackend struct {
	*mockBackend
}

func (w *watchingBackend) Watch(ctx context.Context, key string) (<-chan Change, error) {
	return w.changes, nil
}

func TestRepository_LoadMissingReturnsEmptyDocument(t *testing.T) {
	repo := NewRepository(newMockBackend(), zap.NewNop())

	doc, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, doc.Members)
	assert.Empty(t, doc.Tasks)
	assert.NotNil(t, doc.Members)
}

func TestRepository_LoadCorruptReturnsEmptyDocument(t *testing.T) {
	backend := newMockBackend()
	backend.data[DocumentKey] = []byte(`{"members": [`)
	repo := NewRepository(backend, zap.NewNop())

	doc, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, doc.Members)
}

func TestRepository_LoadUnreachableBackend(t *testing.T) {
	backend := newMockBackend()
	backend.getErr = errors.New("connection refused")
	repo := NewRepository(backend, zap.NewNop())

	_, err := repo.Load(context.Background())

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "load", storageErr.Op)
}

func TestRepository_SaveAndLoad(t *testing.T) {
	backend := newMockBackend()
	repo := NewRepository(backend, zap.NewNop())
	ctx := context.Background()

	doc := model.NewDocument()
	doc.Members = append(doc.Members, model.Member{ID: "m1", Name: "Anna"})
	doc.Tasks = append(doc.Tasks, model.Task{ID: "t1", Type: model.TaskTypeMusic})
	require.NoError(t, repo.Save(ctx, doc))

	assert.Contains(t, string(backend.data[DocumentKey]), `"taken"`)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anna", loaded.Members[0].Name)
	assert.NotNil(t, loaded.Tasks[0].Participants)
}

func TestRepository_FailedSaveKeepsSessionState(t *testing.T) {
	backend := newMockBackend()
	repo := NewRepository(backend, zap.NewNop())
	ctx := context.Background()

	backend.setErr = errors.New("quota exceeded")
	doc := model.NewDocument()
	doc.Members = append(doc.Members, model.Member{ID: "m1", Name: "Anna"})

	err := repo.Save(ctx, doc)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "save", storageErr.Op)
	assert.True(t, repo.HasUnsavedChanges())

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Members, 1, "unsaved change stays visible in this session")

	// A later successful save clears the session overlay
	backend.setErr = nil
	require.NoError(t, repo.Save(ctx, loaded))
	assert.False(t, repo.HasUnsavedChanges())
	assert.Contains(t, string(backend.data[DocumentKey]), "Anna")
}

func TestRepository_SubscribeUnsupported(t *testing.T) {
	repo := NewRepository(newMockBackend(), zap.NewNop())

	err := repo.Subscribe(context.Background(), func(*model.Document) {})

	assert.ErrorIs(t, err, ErrWatchUnsupported)
}

func TestRepository_SubscribeReloadsOnChange(t *testing.T) {
	backend := &watchingBackend{mockBackend: newMockBackend()}
	backend.changes = make(chan Change, 1)
	backend.data[DocumentKey] = []byte(`{"members":[{"id":"m1","name":"Anna"}],"taken":[]}`)
	repo := NewRepository(backend, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *model.Document, 1)
	done := make(chan error, 1)
	go func() {
		done <- repo.Subscribe(ctx, func(doc *model.Document) {
			got <- doc
		})
	}()

	backend.changes <- Change{Key: DocumentKey, At: time.Now()}

	select {
	case doc := <-got:
		require.Len(t, doc.Members, 1)
		assert.Equal(t, "Anna", doc.Members[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("callback not invoked")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Subscribe did not return after cancel")
	}
}

func TestRepository_WithKey(t *testing.T) {
	backend := newMockBackend()
	repo := NewRepository(backend, zap.NewNop(), WithKey("season-2025"))

	require.NoError(t, repo.Save(context.Background(), model.NewDocument()))

	assert.Contains(t, backend.data, "season-2025")
	assert.NotContains(t, backend.data, DocumentKey)
}
