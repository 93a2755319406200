package duties

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// DashboardStats summarises the whole member list
type DashboardStats struct {
	Total            int
	TaskDone         int
	Paid             int
	Nothing          int
	Revenue          int // Paid * FlatFee
	TotalExtraDuties int
	TotalOwed        int
}

// LedgerEntry is a member with their derived status
type LedgerEntry struct {
	Member model.Member
	Status Status
}

// BarDutyRoster summarises the bar-duty tasks of the season
type BarDutyRoster struct {
	Planned   int
	Completed int
	// Tasks are all bar-duty tasks sorted by date, undated first
	Tasks []model.Task
}

// NameSorter compares member names the way people expect: case-insensitive and
// accent-aware. A NameSorter must not be shared between goroutines.
type NameSorter struct {
	collator *collate.Collator
}

// NewNameSorter creates a sorter for member names
func NewNameSorter() *NameSorter {
	return &NameSorter{collator: collate.New(language.Dutch, collate.IgnoreCase)}
}

// Compare returns -1, 0 or 1 comparing a and b
func (s *NameSorter) Compare(a, b string) int {
	return s.collator.CompareString(a, b)
}

// SortMembersByName sorts members by name in place
func SortMembersByName(members []model.Member) {
	sorter := NewNameSorter()
	slices.SortStableFunc(members, func(a, b model.Member) int {
		return sorter.Compare(a.Name, b.Name)
	})
}

// ComputeDashboardStats folds MemberStatus over every member
func ComputeDashboardStats(doc *model.Document, rates Rates) DashboardStats {
	stats := DashboardStats{Total: len(doc.Members)}
	for _, m := range doc.Members {
		s := MemberStatus(m, doc.Tasks, rates)
		switch s.Status {
		case StatusTaskDone:
			stats.TaskDone++
		case StatusPaid:
			stats.Paid++
		default:
			stats.Nothing++
		}
		stats.TotalExtraDuties += s.ExtraBarDuties
		stats.TotalOwed += s.AmountOwed
	}
	stats.Revenue = stats.Paid * rates.FlatFee
	return stats
}

// MailingList returns the members who neither completed a task nor paid, sorted by name
func MailingList(doc *model.Document, rates Rates) []model.Member {
	var result []model.Member
	for _, m := range doc.Members {
		if MemberStatus(m, doc.Tasks, rates).Status == StatusNothingDone {
			result = append(result, m)
		}
	}
	SortMembersByName(result)
	return result
}

// BarDutyLedger returns every member with completed or compensated bar duties,
// most extra duties first, then by name
func BarDutyLedger(doc *model.Document, rates Rates) []LedgerEntry {
	var entries []LedgerEntry
	for _, m := range doc.Members {
		s := MemberStatus(m, doc.Tasks, rates)
		if s.BarDutyCount > 0 || m.PaidOutBarDuties > 0 {
			entries = append(entries, LedgerEntry{Member: m, Status: s})
		}
	}

	sorter := NewNameSorter()
	slices.SortStableFunc(entries, func(a, b LedgerEntry) int {
		if a.Status.ExtraBarDuties != b.Status.ExtraBarDuties {
			return b.Status.ExtraBarDuties - a.Status.ExtraBarDuties
		}
		return sorter.Compare(a.Member.Name, b.Member.Name)
	})
	return entries
}

// BuildBarDutyRoster collects the bar-duty tasks with planned and completed counts
func BuildBarDutyRoster(doc *model.Document) BarDutyRoster {
	var roster BarDutyRoster
	for _, t := range doc.Tasks {
		if t.Type != model.TaskTypeBarDuty {
			continue
		}
		if t.Completed {
			roster.Completed++
		} else {
			roster.Planned++
		}
		roster.Tasks = append(roster.Tasks, t)
	}
	slices.SortStableFunc(roster.Tasks, func(a, b model.Task) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return roster
}
