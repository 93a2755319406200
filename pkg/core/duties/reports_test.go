package duties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

func seasonDocument() *model.Document {
	return &model.Document{
		Members: []model.Member{
			{ID: "anna", Name: "Anna de Vries"},
			{ID: "bas", Name: "Bas Janssen", HasPaid: true},
			{ID: "carla", Name: "Carla Smits"},
			{ID: "daan", Name: "Daan Bakker", PaidOutBarDuties: 1},
			{ID: "eva", Name: "Eva Mulder", HasPaid: true},
			{ID: "frank", Name: "Frank Peters"},
		},
		Tasks: []model.Task{
			{ID: "t1", Type: model.TaskTypeBarDuty, Date: "2025-01-15", Completed: true, Participants: []string{"anna", "carla"}},
			{ID: "t2", Type: model.TaskTypeBarDuty, Date: "2025-02-12", Completed: true, Participants: []string{"daan", "anna"}},
			{ID: "t3", Type: model.TaskTypeBarDuty, Date: "2025-03-12", Participants: []string{"frank"}},
			{ID: "t4", Type: model.TaskTypeSetup, Date: "2025-03-22", Completed: true, Participants: []string{"eva"}},
		},
	}
}

func TestComputeDashboardStats(t *testing.T) {
	stats := ComputeDashboardStats(seasonDocument(), DefaultRates())

	assert.Equal(t, 6, stats.Total)
	// anna, carla, daan, eva
	assert.Equal(t, 4, stats.TaskDone)
	// bas
	assert.Equal(t, 1, stats.Paid)
	// frank
	assert.Equal(t, 1, stats.Nothing)
	assert.Equal(t, 30, stats.Revenue)
	// anna has two bar duties
	assert.Equal(t, 1, stats.TotalExtraDuties)
	assert.Equal(t, 30, stats.TotalOwed)
}

func TestComputeDashboardStats_Empty(t *testing.T) {
	stats := ComputeDashboardStats(model.NewDocument(), DefaultRates())
	assert.Equal(t, DashboardStats{}, stats)
}

func TestDashboardAgreesWithMemberStatus(t *testing.T) {
	doc := seasonDocument()
	rates := Rates{FlatFee: 25, BonusRate: 15}

	stats := ComputeDashboardStats(doc, rates)

	var owed, extra, nothing int
	for _, m := range doc.Members {
		s := MemberStatus(m, doc.Tasks, rates)
		owed += s.AmountOwed
		extra += s.ExtraBarDuties
		if s.Status == StatusNothingDone {
			nothing++
		}
	}
	assert.Equal(t, owed, stats.TotalOwed)
	assert.Equal(t, extra, stats.TotalExtraDuties)
	assert.Equal(t, nothing, stats.Nothing)
	assert.Len(t, MailingList(doc, rates), nothing)
}

func TestMailingList_SortedByName(t *testing.T) {
	doc := &model.Document{
		Members: []model.Member{
			{ID: "3", Name: "zoe"},
			{ID: "1", Name: "Bram"},
			{ID: "2", Name: "anouk"},
			{ID: "4", Name: "Paid", HasPaid: true},
		},
	}

	list := MailingList(doc, DefaultRates())

	require.Len(t, list, 3)
	assert.Equal(t, "anouk", list[0].Name)
	assert.Equal(t, "Bram", list[1].Name)
	assert.Equal(t, "zoe", list[2].Name)
}

func TestBarDutyLedger(t *testing.T) {
	doc := seasonDocument()

	ledger := BarDutyLedger(doc, DefaultRates())

	// anna (2 bars), carla (1), daan (1, paid out 1); frank's duty is not completed
	require.Len(t, ledger, 3)
	assert.Equal(t, "anna", ledger[0].Member.ID)
	assert.Equal(t, 1, ledger[0].Status.ExtraBarDuties)
	assert.Equal(t, "carla", ledger[1].Member.ID)
	assert.Equal(t, "daan", ledger[2].Member.ID)
	assert.Equal(t, 0, ledger[2].Status.AmountOwed)
}

func TestBarDutyLedger_IncludesPaidOutWithoutDuties(t *testing.T) {
	doc := &model.Document{
		Members: []model.Member{{ID: "x", Name: "X", PaidOutBarDuties: 2}},
	}

	ledger := BarDutyLedger(doc, DefaultRates())

	require.Len(t, ledger, 1)
	assert.Equal(t, 0, ledger[0].Status.BarDutyCount)
}

func TestBuildBarDutyRoster(t *testing.T) {
	roster := BuildBarDutyRoster(seasonDocument())

	assert.Equal(t, 1, roster.Planned)
	assert.Equal(t, 2, roster.Completed)
	require.Len(t, roster.Tasks, 3)
	assert.Equal(t, "t1", roster.Tasks[0].ID)
	assert.Equal(t, "t3", roster.Tasks[2].ID)
}
