// Package duties derives participation status, bar-duty counts and payouts from
// the member and task collections. Every report, export and view reads member
// status through MemberStatus so they cannot disagree.
package duties

import (
	"github.com/jakechorley/club-duties/pkg/core/model"
)

// StatusKind classifies a member's contribution for the season
type StatusKind string

const (
	StatusTaskDone    StatusKind = "task-done"
	StatusPaid        StatusKind = "paid"
	StatusNothingDone StatusKind = "nothing-done"
)

// Default amounts, in whole euros
const (
	DefaultFlatFee   = 30
	DefaultBonusRate = 30
)

// Rates holds the monetary amounts used by the calculations
type Rates struct {
	// FlatFee is owed by a member who performs no task
	FlatFee int
	// BonusRate is paid out per extra bar duty
	BonusRate int
}

// DefaultRates returns the standard club rates
func DefaultRates() Rates {
	return Rates{FlatFee: DefaultFlatFee, BonusRate: DefaultBonusRate}
}

// Status is the derived state of a single member
type Status struct {
	HasCompletedTask bool
	BarDutyCount     int
	ExtraBarDuties   int
	AmountOwed       int
	Status           StatusKind
}

// MemberStatus computes the derived state of a member from all tasks.
// Only completed tasks that list the member count. The first bar duty is the
// mandatory one; each further bar duty earns the bonus rate. Completing any
// task classifies the member as task-done even when the fee was also paid.
func MemberStatus(member model.Member, tasks []model.Task, rates Rates) Status {
	done := 0
	bars := 0
	for i := range tasks {
		task := &tasks[i]
		if !task.Completed || !task.HasParticipant(member.ID) {
			continue
		}
		done++
		if task.Type == model.TaskTypeBarDuty {
			bars++
		}
	}

	extra := max(0, bars-1)
	owed := max(0, extra*rates.BonusRate-member.PaidOutBarDuties*rates.BonusRate)

	status := StatusNothingDone
	switch {
	case done > 0:
		status = StatusTaskDone
	case member.HasPaid:
		status = StatusPaid
	}

	return Status{
		HasCompletedTask: done > 0,
		BarDutyCount:     bars,
		ExtraBarDuties:   extra,
		AmountOwed:       owed,
		Status:           status,
	}
}

// Label returns the human readable label of the status
func (s StatusKind) Label() string {
	switch s {
	case StatusTaskDone:
		return "Task done"
	case StatusPaid:
		return "Paid"
	case StatusNothingDone:
		return "Nothing yet"
	}
	return string(s)
}

// Order returns the sort position of the status: task-done, paid, nothing-done
func (s StatusKind) Order() int {
	switch s {
	case StatusTaskDone:
		return 0
	case StatusPaid:
		return 1
	case StatusNothingDone:
		return 2
	}
	return 9
}
