package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

func TestBuildPlanning(t *testing.T) {
	doc := testDocument()
	doc.Tasks = append(doc.Tasks,
		model.Task{ID: "t-later", Type: model.TaskTypeCleanup, Date: "2025-08-30", Participants: []string{"ghost"}},
		model.Task{ID: "t-open", Type: model.TaskTypeScoring},
	)
	today := time.Date(2025, 5, 2, 15, 30, 0, 0, time.UTC)

	planning := BuildPlanning(doc, today, false)

	require.Len(t, planning.Groups, 4)

	first := planning.Groups[0]
	assert.Equal(t, "2025-05-02", first.Date)
	assert.True(t, first.Today)
	assert.False(t, first.Soon)
	require.Len(t, first.Tasks, 1)
	bar := first.Tasks[0]
	assert.Equal(t, 2, bar.Capacity)
	assert.Equal(t, 1, bar.OpenSlots)
	require.NotNil(t, bar.Coordinator)
	assert.Equal(t, "anna", bar.Coordinator.ID)

	assert.True(t, planning.Groups[1].Soon)
	assert.True(t, planning.Groups[1].Tasks[0].Full)

	later := planning.Groups[2]
	assert.False(t, later.Soon)
	assert.Empty(t, later.Tasks[0].Participants)

	undated := planning.Groups[3]
	assert.False(t, undated.Dated)
	assert.Equal(t, "t-open", undated.Tasks[0].Task.ID)

	// bar 1 + cleanup 20 + scoring 5
	assert.Equal(t, 26, planning.TotalOpenSlots)
	assert.Equal(t, 3, planning.TasksWithSpace)
}

func TestBuildPlanning_DanglingParticipantFreesPlace(t *testing.T) {
	doc := testDocument()
	doc.Tasks = []model.Task{{
		ID:           "t-bar2",
		Type:         model.TaskTypeBarDuty,
		Date:         "2025-06-01",
		Participants: []string{"anna", "deleted-member"},
	}}
	today := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	planning := BuildPlanning(doc, today, false)

	require.Len(t, planning.Groups, 1)
	pt := planning.Groups[0].Tasks[0]
	require.Len(t, pt.Participants, 1)
	assert.Equal(t, 2, pt.Capacity)
	assert.Equal(t, 1, pt.OpenSlots)
	assert.False(t, pt.Full)
	assert.Equal(t, 1, planning.TotalOpenSlots)
	assert.Equal(t, 1, planning.TasksWithSpace)
}

func TestBuildPlanning_IncludePast(t *testing.T) {
	today := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)

	planning := BuildPlanning(testDocument(), today, true)

	require.Len(t, planning.Groups, 3)
	assert.Equal(t, "2025-01-10", planning.Groups[0].Date)
}

func TestSuggestMembers(t *testing.T) {
	doc := testDocument()
	doc.Members = append(doc.Members,
		model.Member{ID: "d", Name: "Daan Carlsen"},
		model.Member{ID: "e", Name: "Carlo Peeters"},
	)

	got := SuggestMembers(doc, "t-done", "carl", 0)

	// carla is already on t-done; prefix matches before substring matches
	require.Len(t, got, 2)
	assert.Equal(t, "e", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestSuggestMembers_EmptyQueryAndLimit(t *testing.T) {
	doc := testDocument()

	assert.Nil(t, SuggestMembers(doc, "t-bar", "  ", 5))

	got := SuggestMembers(doc, "t-bar", "a", 1)
	require.Len(t, got, 1)
	assert.NotEqual(t, "anna", got[0].ID)
}
