package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// TaskSchedule describes a recurring task, e.g. the Friday bar duty
type TaskSchedule struct {
	Name            string
	RRule           string
	Type            model.TaskType
	TaskName        string
	MaxParticipants *int
	Description     string
}

// PlanRecurringTasks creates a task for every occurrence of the schedule in
// [from, until]. Occurrences that already have a task of the same type and
// name on that date are skipped, so planning the same period twice is safe.
func PlanRecurringTasks(ctx context.Context, store DocumentStore, logger *zap.Logger, schedule TaskSchedule, from, until time.Time) ([]model.Task, error) {
	if !schedule.Type.IsValid() {
		return nil, fmt.Errorf("schedule %s has invalid task type %q", schedule.Name, schedule.Type)
	}

	from = startOfDay(from)
	until = startOfDay(until)
	if until.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", until.Format(model.DateLayout), from.Format(model.DateLayout))
	}

	rule, err := rrule.StrToRRule(schedule.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rrule for schedule %s: %w", schedule.Name, err)
	}
	// Without an explicit DTSTART the rule starts at the beginning of the period
	if !strings.Contains(strings.ToUpper(schedule.RRule), "DTSTART") {
		rule.DTStart(from)
	}

	occurrences := rule.Between(from, until.Add(24*time.Hour-time.Second), true)
	logger.Debug("Expanded schedule",
		zap.String("schedule", schedule.Name),
		zap.String("rrule", schedule.RRule),
		zap.Int("occurrences", len(occurrences)))

	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool)
	for _, t := range doc.Tasks {
		if t.Type == schedule.Type && t.Name == schedule.TaskName {
			existing[t.Date] = true
		}
	}

	var created []model.Task
	for _, occurrence := range occurrences {
		date := occurrence.Format(model.DateLayout)
		if existing[date] {
			logger.Debug("Task already planned", zap.String("date", date))
			continue
		}
		existing[date] = true

		task := model.Task{
			ID:           doc.NewID(),
			Type:         schedule.Type,
			Name:         schedule.TaskName,
			Date:         date,
			Participants: []string{},
			Description:  schedule.Description,
		}
		if schedule.MaxParticipants != nil {
			task.MaxParticipants = model.IntPtr(*schedule.MaxParticipants)
		}
		doc.Tasks = append(doc.Tasks, task)
		created = append(created, task)
	}

	if len(created) == 0 {
		logger.Info("No new tasks to plan", zap.String("schedule", schedule.Name))
		return created, nil
	}

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Info("Planned recurring tasks",
		zap.String("schedule", schedule.Name),
		zap.Int("created", len(created)))
	return created, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
