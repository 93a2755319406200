package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

func TestCreateTask(t *testing.T) {
	store := newMockStore(testDocument())

	task, err := CreateTask(context.Background(), store, zap.NewNop(), TaskInput{
		Type:            model.TaskTypeCleanup,
		Name:            " Spring clean ",
		Date:            "2025-04-12",
		MaxParticipants: model.IntPtr(12),
		Coordinator:     "bas",
	})

	require.NoError(t, err)
	assert.Equal(t, "Spring clean", task.Name)
	assert.NotNil(t, task.Participants)
	assert.False(t, task.Completed)
	assert.NotNil(t, store.doc.FindTask(task.ID))
}

func TestCreateTask_Validation(t *testing.T) {
	cases := map[string]TaskInput{
		"missing type":      {Name: "x"},
		"unknown type":      {Type: "juggling"},
		"bad date":          {Type: model.TaskTypeMusic, Date: "12-04-2025"},
		"zero capacity":     {Type: model.TaskTypeMusic, MaxParticipants: model.IntPtr(0)},
		"unknown organiser": {Type: model.TaskTypeMusic, Coordinator: "nobody"},
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			store := newMockStore(testDocument())

			_, err := CreateTask(context.Background(), store, zap.NewNop(), input)

			assert.Error(t, err)
			assert.Equal(t, 0, store.saves)
		})
	}
}

func TestUpdateTask_MergeAndClear(t *testing.T) {
	store := newMockStore(testDocument())
	ctx := context.Background()

	_, err := UpdateTask(ctx, store, zap.NewNop(), "t-bar", TaskUpdate{MaxParticipants: intPtr(4), Name: strPtr("Friday bar")})
	require.NoError(t, err)
	task := store.doc.FindTask("t-bar")
	assert.Equal(t, 4, *task.MaxParticipants)
	assert.Equal(t, "Friday bar", task.Name)
	assert.Equal(t, "2025-05-02", task.Date)

	_, err = UpdateTask(ctx, store, zap.NewNop(), "t-bar", TaskUpdate{
		MaxParticipants: intPtr(0),
		Coordinator:     strPtr(""),
		Date:            strPtr(""),
	})
	require.NoError(t, err)
	task = store.doc.FindTask("t-bar")
	assert.Nil(t, task.MaxParticipants)
	assert.Empty(t, task.Coordinator)
	assert.Empty(t, task.Date)
	assert.Equal(t, []string{"anna"}, task.Participants)
}

func TestUpdateTask_NotFound(t *testing.T) {
	store := newMockStore(testDocument())

	_, err := UpdateTask(context.Background(), store, zap.NewNop(), "nope", TaskUpdate{})

	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDeleteTask(t *testing.T) {
	store := newMockStore(testDocument())
	ctx := context.Background()

	require.NoError(t, DeleteTask(ctx, store, zap.NewNop(), "t-full"))
	assert.Nil(t, store.doc.FindTask("t-full"))
	assert.Len(t, store.doc.Tasks, 2)

	assert.ErrorIs(t, DeleteTask(ctx, store, zap.NewNop(), "t-full"), ErrTaskNotFound)
}

func TestSetTaskCompleted(t *testing.T) {
	store := newMockStore(testDocument())
	ctx := context.Background()

	require.NoError(t, SetTaskCompleted(ctx, store, zap.NewNop(), "t-bar", true))
	assert.True(t, store.doc.FindTask("t-bar").Completed)

	require.NoError(t, SetTaskCompleted(ctx, store, zap.NewNop(), "t-bar", false))
	assert.False(t, store.doc.FindTask("t-bar").Completed)

	assert.ErrorIs(t, SetTaskCompleted(ctx, store, zap.NewNop(), "nope", true), ErrTaskNotFound)
}

func TestFilterTasks(t *testing.T) {
	doc := testDocument()
	doc.Tasks = append(doc.Tasks, model.Task{ID: "t-undated", Type: model.TaskTypeScoring})

	all := FilterTasks(doc, TaskStatusAll, "")
	require.Len(t, all, 4)
	assert.Equal(t, "t-done", all[0].ID)
	assert.Equal(t, "t-undated", all[3].ID)

	open := FilterTasks(doc, TaskStatusOpen, "")
	assert.Len(t, open, 3)

	completedBar := FilterTasks(doc, TaskStatusCompleted, model.TaskTypeBarDuty)
	require.Len(t, completedBar, 1)
	assert.Equal(t, "t-done", completedBar[0].ID)

	music := FilterTasks(doc, TaskStatusAll, model.TaskTypeMusic)
	require.Len(t, music, 1)
}
