package duties

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

func barDuty(id string, completed bool, participants ...string) model.Task {
	return model.Task{ID: id, Type: model.TaskTypeBarDuty, Completed: completed, Participants: participants}
}

func TestMemberStatus_OneCompletedBarDuty(t *testing.T) {
	member := model.Member{ID: "alice", Name: "Alice"}
	tasks := []model.Task{barDuty("t1", true, "alice")}

	s := MemberStatus(member, tasks, DefaultRates())

	assert.Equal(t, StatusTaskDone, s.Status)
	assert.True(t, s.HasCompletedTask)
	assert.Equal(t, 1, s.BarDutyCount)
	assert.Equal(t, 0, s.ExtraBarDuties)
	assert.Equal(t, 0, s.AmountOwed)
}

func TestMemberStatus_TwoCompletedBarDuties(t *testing.T) {
	member := model.Member{ID: "alice"}
	tasks := []model.Task{
		barDuty("t1", true, "alice"),
		barDuty("t2", true, "bob", "alice"),
	}

	s := MemberStatus(member, tasks, Rates{FlatFee: 30, BonusRate: 30})

	assert.Equal(t, 2, s.BarDutyCount)
	assert.Equal(t, 1, s.ExtraBarDuties)
	assert.Equal(t, 30, s.AmountOwed)
}

func TestMemberStatus_PaidWithoutTask(t *testing.T) {
	member := model.Member{ID: "bob", HasPaid: true}

	s := MemberStatus(member, nil, DefaultRates())

	assert.Equal(t, StatusPaid, s.Status)
	assert.False(t, s.HasCompletedTask)
}

func TestMemberStatus_NothingDone(t *testing.T) {
	member := model.Member{ID: "carla"}
	tasks := []model.Task{
		// Signed up but not completed
		barDuty("t1", false, "carla"),
		// Completed but someone else's
		barDuty("t2", true, "dave"),
	}

	s := MemberStatus(member, tasks, DefaultRates())

	assert.Equal(t, StatusNothingDone, s.Status)
	assert.Equal(t, 0, s.BarDutyCount)
}

func TestMemberStatus_TaskOverridesPaidFlag(t *testing.T) {
	member := model.Member{ID: "eva", HasPaid: true}
	tasks := []model.Task{
		{ID: "t1", Type: model.TaskTypeCleanup, Completed: true, Participants: []string{"eva"}},
	}

	s := MemberStatus(member, tasks, DefaultRates())

	assert.Equal(t, StatusTaskDone, s.Status)
	assert.Equal(t, 0, s.BarDutyCount, "non bar-duty tasks do not count as bar duties")
}

func TestMemberStatus_PaidOutBeyondExtraNeverNegative(t *testing.T) {
	// A hand-edited value larger than the true extra count is kept as is,
	// the amount owed is clamped at zero
	member := model.Member{ID: "frank", PaidOutBarDuties: 5}
	tasks := []model.Task{
		barDuty("t1", true, "frank"),
		barDuty("t2", true, "frank"),
	}

	s := MemberStatus(member, tasks, DefaultRates())

	assert.Equal(t, 1, s.ExtraBarDuties)
	assert.Equal(t, 0, s.AmountOwed)
}

func TestMemberStatus_PartiallyPaidOut(t *testing.T) {
	member := model.Member{ID: "greet", PaidOutBarDuties: 1}
	tasks := []model.Task{
		barDuty("t1", true, "greet"),
		barDuty("t2", true, "greet"),
		barDuty("t3", true, "greet"),
		barDuty("t4", true, "greet"),
	}

	s := MemberStatus(member, tasks, Rates{BonusRate: 25})

	assert.Equal(t, 3, s.ExtraBarDuties)
	assert.Equal(t, 50, s.AmountOwed)
}

func TestMemberStatus_ExtraDutiesProperty(t *testing.T) {
	for bars := 0; bars <= 6; bars++ {
		for paidOut := 0; paidOut <= 7; paidOut++ {
			member := model.Member{ID: "m", PaidOutBarDuties: paidOut}
			var tasks []model.Task
			for i := 0; i < bars; i++ {
				tasks = append(tasks, barDuty(string(rune('a'+i)), true, "m"))
			}

			s := MemberStatus(member, tasks, DefaultRates())

			assert.Equal(t, max(0, bars-1), s.ExtraBarDuties)
			assert.GreaterOrEqual(t, s.ExtraBarDuties, 0)
			assert.GreaterOrEqual(t, s.AmountOwed, 0)
		}
	}
}

func TestEffectiveCapacity(t *testing.T) {
	assert.Equal(t, 2, EffectiveCapacity(model.Task{Type: model.TaskTypeBarDuty}))
	assert.Equal(t, 20, EffectiveCapacity(model.Task{Type: model.TaskTypeCleanup}))
	assert.Equal(t, 4, EffectiveCapacity(model.Task{Type: model.TaskTypeBarDuty, MaxParticipants: model.IntPtr(4)}))
	assert.Equal(t, 2, EffectiveCapacity(model.Task{Type: model.TaskTypeBarDuty, MaxParticipants: model.IntPtr(0)}))
	assert.Equal(t, 2, EffectiveCapacity(model.Task{Type: "unknown"}))
}

func TestOpenSlotsAndIsFull(t *testing.T) {
	task := model.Task{Type: model.TaskTypeMusic, Participants: []string{"a"}}
	assert.Equal(t, 1, OpenSlots(task))
	assert.False(t, IsFull(task))

	task.Participants = append(task.Participants, "b")
	assert.Equal(t, 0, OpenSlots(task))
	assert.True(t, IsFull(task))

	// Over capacity after a concurrent signup race
	task.Participants = append(task.Participants, "c")
	assert.Equal(t, 0, OpenSlots(task))
	assert.True(t, IsFull(task))
}

func TestStatusKind_OrderAndLabel(t *testing.T) {
	assert.Less(t, StatusTaskDone.Order(), StatusPaid.Order())
	assert.Less(t, StatusPaid.Order(), StatusNothingDone.Order())
	assert.Equal(t, "Nothing yet", StatusNothingDone.Label())
}
