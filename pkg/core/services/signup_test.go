package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
)

func TestAddParticipant_Success(t *testing.T) {
	store := newMockStore(testDocument())

	err := AddParticipant(context.Background(), store, zap.NewNop(), "t-bar", "carla")

	require.NoError(t, err)
	assert.Equal(t, []string{"anna", "carla"}, store.doc.FindTask("t-bar").Participants)
	assert.Equal(t, 1, store.saves)
}

func TestAddParticipant_AlreadySignedUp(t *testing.T) {
	store := newMockStore(testDocument())

	err := AddParticipant(context.Background(), store, zap.NewNop(), "t-bar", "anna")

	var signupErr *SignupError
	require.ErrorAs(t, err, &signupErr)
	assert.ErrorIs(t, err, ErrAlreadySignedUp)
	assert.NotErrorIs(t, err, ErrTaskFull)
	assert.Equal(t, 0, store.saves)
}

func TestAddParticipant_TaskFull(t *testing.T) {
	store := newMockStore(testDocument())

	err := AddParticipant(context.Background(), store, zap.NewNop(), "t-full", "carla")

	var signupErr *SignupError
	require.ErrorAs(t, err, &signupErr)
	assert.ErrorIs(t, err, ErrTaskFull)
	assert.Equal(t, 2, signupErr.Capacity)
	assert.Len(t, store.doc.FindTask("t-full").Participants, 2)
}

func TestAddParticipant_CapacityOverride(t *testing.T) {
	doc := testDocument()
	doc.FindTask("t-full").MaxParticipants = model.IntPtr(3)
	store := newMockStore(doc)

	require.NoError(t, AddParticipant(context.Background(), store, zap.NewNop(), "t-full", "carla"))
	assert.Len(t, store.doc.FindTask("t-full").Participants, 3)
}

func TestAddParticipant_UnrecognisedTaskTypeIsNotCappedAtTwo(t *testing.T) {
	doc := testDocument()
	doc.Tasks = append(doc.Tasks, model.Task{ID: "t-new", Type: model.TaskType("juggling"), Participants: []string{"anna", "bas"}})
	store := newMockStore(doc)

	require.NoError(t, AddParticipant(context.Background(), store, zap.NewNop(), "t-new", "carla"))
	assert.Equal(t, []string{"anna", "bas", "carla"}, store.doc.FindTask("t-new").Participants)
}

func TestAddParticipant_UnknownTaskOrMember(t *testing.T) {
	store := newMockStore(testDocument())
	ctx := context.Background()

	assert.ErrorIs(t, AddParticipant(ctx, store, zap.NewNop(), "nope", "anna"), ErrTaskNotFound)
	assert.ErrorIs(t, AddParticipant(ctx, store, zap.NewNop(), "t-bar", "nobody"), ErrMemberNotFound)
}

func TestAddParticipant_NeverExceedsCapacitySequentially(t *testing.T) {
	doc := model.NewDocument()
	for i := 0; i < 8; i++ {
		doc.Members = append(doc.Members, model.Member{ID: string(rune('a' + i)), Name: string(rune('A' + i))})
	}
	doc.Tasks = append(doc.Tasks, model.Task{ID: "t", Type: model.TaskTypeMedalCeremony, Participants: []string{}})
	store := newMockStore(doc)

	for _, m := range doc.Members {
		err := AddParticipant(context.Background(), store, zap.NewNop(), "t", m.ID)
		if err != nil {
			assert.ErrorIs(t, err, ErrTaskFull)
		}
		task := store.doc.FindTask("t")
		assert.LessOrEqual(t, len(task.Participants), duties.EffectiveCapacity(*task))
	}
	assert.Len(t, store.doc.FindTask("t").Participants, 5)
}

func TestAddParticipant_StorageErrorSurfaces(t *testing.T) {
	store := newMockStore(testDocument())
	store.saveErr = errQuota

	err := AddParticipant(context.Background(), store, zap.NewNop(), "t-bar", "carla")

	assert.ErrorIs(t, err, errQuota)
}

func TestAddParticipant_LoadError(t *testing.T) {
	store := newMockStore(nil)
	store.loadErr = errors.New("unreachable")

	err := AddParticipant(context.Background(), store, zap.NewNop(), "t-bar", "carla")

	assert.Error(t, err)
}

func TestRemoveParticipant(t *testing.T) {
	store := newMockStore(testDocument())

	require.NoError(t, RemoveParticipant(context.Background(), store, zap.NewNop(), "t-full", "anna"))

	assert.Equal(t, []string{"bas"}, store.doc.FindTask("t-full").Participants)
}

func TestRemoveParticipant_IdempotentAndAlwaysSaves(t *testing.T) {
	store := newMockStore(testDocument())
	ctx := context.Background()

	require.NoError(t, RemoveParticipant(ctx, store, zap.NewNop(), "t-bar", "carla"))
	require.NoError(t, RemoveParticipant(ctx, store, zap.NewNop(), "missing-task", "anna"))

	assert.Equal(t, []string{"anna"}, store.doc.FindTask("t-bar").Participants)
	assert.Equal(t, 2, store.saves)
}
