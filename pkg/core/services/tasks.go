package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// TaskInput holds the editable fields of a task
type TaskInput struct {
	Type            model.TaskType `validate:"required,tasktype"`
	Name            string         `validate:"max=200"`
	Date            string         `validate:"omitempty,datetime=2006-01-02"`
	MaxParticipants *int           `validate:"omitnil,min=1"`
	Coordinator     string
	Description     string
}

// TaskUpdate holds the fields to change; nil fields keep their current value.
// An empty Date or Coordinator, or a MaxParticipants of 0, clears the field.
type TaskUpdate struct {
	Type            *model.TaskType
	Name            *string
	Date            *string
	MaxParticipants *int
	Coordinator     *string
	Description     *string
}

func (in *TaskInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Date = strings.TrimSpace(in.Date)
	in.Coordinator = strings.TrimSpace(in.Coordinator)
	in.Description = strings.TrimSpace(in.Description)
}

func validateTask(doc *model.Document, input TaskInput) error {
	if err := validate.Struct(input); err != nil {
		return fmt.Errorf("invalid task: %w", err)
	}
	if input.Coordinator != "" && doc.FindMember(input.Coordinator) == nil {
		return fmt.Errorf("invalid coordinator: %w: %s", ErrMemberNotFound, input.Coordinator)
	}
	return nil
}

// CreateTask validates the input and adds a new task with no participants
func CreateTask(ctx context.Context, store DocumentStore, logger *zap.Logger, input TaskInput) (*model.Task, error) {
	input.trim()

	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}
	if err := validateTask(doc, input); err != nil {
		return nil, err
	}

	task := model.Task{
		ID:              doc.NewID(),
		Type:            input.Type,
		Name:            input.Name,
		Date:            input.Date,
		MaxParticipants: input.MaxParticipants,
		Coordinator:     input.Coordinator,
		Participants:    []string{},
		Description:     input.Description,
	}
	doc.Tasks = append(doc.Tasks, task)

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Debug("Task created",
		zap.String("id", task.ID),
		zap.String("type", string(task.Type)),
		zap.String("date", task.Date))
	return &task, nil
}

// UpdateTask merges the update into an existing task. Participants are kept,
// even when a lowered capacity leaves the task over full.
func UpdateTask(ctx context.Context, store DocumentStore, logger *zap.Logger, id string, update TaskUpdate) (*model.Task, error) {
	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	task := doc.FindTask(id)
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	input := TaskInput{
		Type:            task.Type,
		Name:            task.Name,
		Date:            task.Date,
		MaxParticipants: task.MaxParticipants,
		Coordinator:     task.Coordinator,
		Description:     task.Description,
	}
	if update.Type != nil {
		input.Type = *update.Type
	}
	if update.Name != nil {
		input.Name = *update.Name
	}
	if update.Date != nil {
		input.Date = *update.Date
	}
	if update.MaxParticipants != nil {
		if *update.MaxParticipants == 0 {
			input.MaxParticipants = nil
		} else {
			input.MaxParticipants = model.IntPtr(*update.MaxParticipants)
		}
	}
	if update.Coordinator != nil {
		input.Coordinator = *update.Coordinator
	}
	if update.Description != nil {
		input.Description = *update.Description
	}

	input.trim()
	if err := validateTask(doc, input); err != nil {
		return nil, err
	}

	task.Type = input.Type
	task.Name = input.Name
	task.Date = input.Date
	task.MaxParticipants = input.MaxParticipants
	task.Coordinator = input.Coordinator
	task.Description = input.Description
	updated := *task

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Debug("Task updated", zap.String("id", id))
	return &updated, nil
}

// DeleteTask removes a task
func DeleteTask(ctx context.Context, store DocumentStore, logger *zap.Logger, id string) error {
	doc, err := load(ctx, store)
	if err != nil {
		return err
	}

	if doc.FindTask(id) == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	doc.Tasks = slices.DeleteFunc(doc.Tasks, func(t model.Task) bool {
		return t.ID == id
	})

	if err := save(ctx, store, doc); err != nil {
		return err
	}

	logger.Debug("Task deleted", zap.String("id", id))
	return nil
}

// SetTaskCompleted marks a task as done or reopens it
func SetTaskCompleted(ctx context.Context, store DocumentStore, logger *zap.Logger, id string, completed bool) error {
	doc, err := load(ctx, store)
	if err != nil {
		return err
	}

	task := doc.FindTask(id)
	if task == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	task.Completed = completed

	if err := save(ctx, store, doc); err != nil {
		return err
	}

	logger.Debug("Task completion changed", zap.String("id", id), zap.Bool("completed", completed))
	return nil
}

// TaskStatusFilter selects tasks by completion
type TaskStatusFilter string

const (
	TaskStatusAll       TaskStatusFilter = "all"
	TaskStatusOpen      TaskStatusFilter = "open"
	TaskStatusCompleted TaskStatusFilter = "completed"
)

// FilterTasks returns the tasks matching the filters sorted by date, undated
// tasks last. An empty taskType matches every type.
func FilterTasks(doc *model.Document, status TaskStatusFilter, taskType model.TaskType) []model.Task {
	var result []model.Task
	for _, t := range doc.Tasks {
		if status == TaskStatusOpen && t.Completed {
			continue
		}
		if status == TaskStatusCompleted && !t.Completed {
			continue
		}
		if taskType != "" && t.Type != taskType {
			continue
		}
		result = append(result, t)
	}
	sortTasksByDate(result)
	return result
}

// sortTasksByDate orders tasks by date with undated tasks last
func sortTasksByDate(tasks []model.Task) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		switch {
		case a.Date == b.Date:
			return 0
		case a.Date == "":
			return 1
		case b.Date == "":
			return -1
		}
		return strings.Compare(a.Date, b.Date)
	})
}
