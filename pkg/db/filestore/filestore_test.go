package filestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := New(Config{Dir: dir, Debounce: 20 * time.Millisecond}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestStore_GetMissingKey(t *testing.T) {
	s := newTestStore(t, t.TempDir())

	data, err := s.Get(context.Background(), "nothing")

	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SetThenGet(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "doc", []byte(`{"a":1}`)))
	require.NoError(t, s.Set(ctx, "doc", []byte(`{"a":2}`)))

	data, err := s.Get(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(data))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_RequiresDir(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}

func TestStore_WatchReportsOtherInstanceWrites(t *testing.T) {
	dir := t.TempDir()
	watcher := newTestStore(t, dir)
	writer := newTestStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := watcher.Watch(ctx, "doc")
	require.NoError(t, err)

	require.NoError(t, writer.Set(context.Background(), "doc", []byte(`{"members":[]}`)))

	select {
	case change := <-changes:
		assert.Equal(t, "doc", change.Key)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	drain(t, changes)
}

func TestStore_WatchIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	s := newTestStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := s.Watch(ctx, "doc")
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "doc", []byte(`{"members":[1]}`)))

	select {
	case change := <-changes:
		t.Fatalf("unexpected notification for own write: %+v", change)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	drain(t, changes)
}

func TestStore_WatchIgnoresOtherKeys(t *testing.T) {
	dir := t.TempDir()
	watcher := newTestStore(t, dir)
	writer := newTestStore(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	changes, err := watcher.Watch(ctx, "doc")
	require.NoError(t, err)

	require.NoError(t, writer.Set(context.Background(), "other", []byte(`{}`)))

	select {
	case change := <-changes:
		t.Fatalf("unexpected notification: %+v", change)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	drain(t, changes)
}

func TestStore_SatisfiesRepository(t *testing.T) {
	dir := t.TempDir()
	repo := db.NewRepository(newTestStore(t, dir), zap.NewNop())

	doc, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc.Members)
}

// drain waits for the watcher goroutine to close the channel
func drain(t *testing.T, changes <-chan db.Change) {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("watch channel was not closed")
		}
	}
}
