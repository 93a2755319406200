package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
	"github.com/jakechorley/club-duties/pkg/db"
)

func TestObserveSignup(t *testing.T) {
	m := New()

	m.ObserveSignup(nil)
	m.ObserveSignup(nil)
	m.ObserveSignup(&services.SignupError{Err: services.ErrTaskFull})
	m.ObserveSignup(&services.SignupError{Err: services.ErrAlreadySignedUp})
	m.ObserveSignup(fmt.Errorf("failed to save document: %w", &db.StorageError{Op: "save", Err: errors.New("disk full")}))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.signups.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues(ResultFull)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues(ResultAlreadySignedUp)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signups.WithLabelValues(ResultError)))
}

func TestObserveError(t *testing.T) {
	m := New()

	m.ObserveError(fmt.Errorf("failed to save document: %w", &db.StorageError{Op: "save", Err: errors.New("disk full")}))
	m.ObserveError(errors.New("member not found"))
	m.ObserveError(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageErrors.WithLabelValues("save")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.storageErrors))
}

func TestObservePayoutAndImport(t *testing.T) {
	m := New()

	m.ObservePayout(&services.PayoutResult{Paid: true, Amount: 60})
	m.ObservePayout(&services.PayoutResult{Paid: false})
	m.ObserveImport(&services.ImportResult{
		Added:   []model.Member{{ID: "a"}, {ID: "b"}},
		Skipped: nil,
	})
	m.ObserveReminders(&services.ReminderResult{DryRun: true, Sent: []services.ReminderSent{{}, {}}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.payouts))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.payoutAmount))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.imports.WithLabelValues("added")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reminders.WithLabelValues("dry_run")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.reminders.WithLabelValues("sent")))
}

func TestUpdateDocument(t *testing.T) {
	m := New()
	doc := &model.Document{
		Members: []model.Member{
			{ID: "a", Name: "Anna"},
			{ID: "b", Name: "Bas", HasPaid: true},
			{ID: "c", Name: "Carla"},
		},
		Tasks: []model.Task{
			{ID: "t1", Type: model.TaskTypeBarDuty, Completed: true, Participants: []string{"a"}},
			{ID: "t2", Type: model.TaskTypeBarDuty, Completed: true, Participants: []string{"a"}},
			{ID: "t3", Type: model.TaskTypeCleanup, Participants: []string{"c"}},
		},
	}

	m.UpdateDocument(doc, duties.DefaultRates())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.members.WithLabelValues("task-done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.members.WithLabelValues("paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.members.WithLabelValues("nothing-done")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.revenue))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.owed))
	assert.Equal(t, 19.0, testutil.ToFloat64(m.openSlots))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tasks.WithLabelValues("bar-duty", "completed")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveSignup(nil)
	path := filepath.Join(t.TempDir(), "club_duties.prom")

	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `club_duties_signups_total{result="ok"} 1`)
}
