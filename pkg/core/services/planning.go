package services

import (
	"slices"
	"strings"
	"time"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
)

// soonDays is how far ahead a date group counts as coming up soon
const soonDays = 14

// DefaultSuggestionLimit caps the number of SuggestMembers results
const DefaultSuggestionLimit = 10

// PlanningTask is a task as shown in the signup view
type PlanningTask struct {
	Task         model.Task
	Participants []model.Member
	Coordinator  *model.Member
	Capacity     int
	OpenSlots    int
	Full         bool
}

// PlanningGroup holds the tasks of one date; the undated group has Dated false
type PlanningGroup struct {
	Date  string
	Day   time.Time
	Dated bool
	Today bool
	Soon  bool
	Tasks []PlanningTask
}

// Planning is the signup view of the document
type Planning struct {
	Groups         []PlanningGroup
	TotalOpenSlots int
	TasksWithSpace int
}

// BuildPlanning groups tasks by date for the signup view. Tasks dated before
// today are left out unless includePast is set. Undated tasks come last.
func BuildPlanning(doc *model.Document, today time.Time, includePast bool) Planning {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	todayKey := today.Format(model.DateLayout)

	var tasks []model.Task
	for _, t := range doc.Tasks {
		if !includePast && t.Date != "" && t.Date < todayKey {
			continue
		}
		tasks = append(tasks, t)
	}
	sortTasksByDate(tasks)

	members := make(map[string]model.Member, len(doc.Members))
	for _, m := range doc.Members {
		members[m.ID] = m
	}

	var planning Planning
	for _, t := range tasks {
		pt := PlanningTask{
			Task:     t,
			Capacity: duties.EffectiveCapacity(t),
		}
		for _, id := range t.Participants {
			// Dangling references are dropped from the view
			if m, ok := members[id]; ok {
				pt.Participants = append(pt.Participants, m)
			}
		}
		// Places are counted from the members shown, so a deleted member frees a place
		pt.OpenSlots = max(0, pt.Capacity-len(pt.Participants))
		pt.Full = pt.OpenSlots == 0
		if m, ok := members[t.Coordinator]; ok {
			pt.Coordinator = &m
		}

		planning.TotalOpenSlots += pt.OpenSlots
		if !pt.Full {
			planning.TasksWithSpace++
		}

		n := len(planning.Groups)
		if n == 0 || planning.Groups[n-1].Date != t.Date {
			planning.Groups = append(planning.Groups, newPlanningGroup(t, today))
			n++
		}
		planning.Groups[n-1].Tasks = append(planning.Groups[n-1].Tasks, pt)
	}
	return planning
}

func newPlanningGroup(t model.Task, today time.Time) PlanningGroup {
	group := PlanningGroup{Date: t.Date}
	day, ok := t.ParsedDate()
	if !ok {
		return group
	}
	group.Dated = true
	group.Day = day
	group.Today = day.Equal(today)
	group.Soon = !group.Today && !day.Before(today) && day.Sub(today) <= soonDays*24*time.Hour
	return group
}

// SuggestMembers returns members not yet on the task whose name contains query
// (case-insensitive). Names starting with the query come first. An empty
// query suggests nobody.
func SuggestMembers(doc *model.Document, taskID, query string, limit int) []model.Member {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	var taken []string
	if task := doc.FindTask(taskID); task != nil {
		taken = task.Participants
	}

	var matches []model.Member
	for _, m := range doc.Members {
		if slices.Contains(taken, m.ID) {
			continue
		}
		if strings.Contains(strings.ToLower(m.Name), q) {
			matches = append(matches, m)
		}
	}

	sorter := duties.NewNameSorter()
	slices.SortStableFunc(matches, func(a, b model.Member) int {
		aPrefix := strings.HasPrefix(strings.ToLower(a.Name), q)
		bPrefix := strings.HasPrefix(strings.ToLower(b.Name), q)
		switch {
		case aPrefix && !bPrefix:
			return -1
		case !aPrefix && bPrefix:
			return 1
		}
		return sorter.Compare(a.Name, b.Name)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
