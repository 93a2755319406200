package model

import (
	"slices"
	"time"
)

// DateLayout is the calendar date format used for task dates
const DateLayout = "2006-01-02"

// Member represents a club member who can sign up for duty tasks
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	// HasPaid means the flat participation fee was paid. Only meaningful
	// while the member has no completed task.
	HasPaid bool `json:"hasPaid"`

	// PaidOutBarDuties is the number of extra bar duties already compensated
	PaidOutBarDuties int `json:"paidOutBarDuties"`
}

// Task represents an assignable duty
type Task struct {
	ID              string   `json:"id"`
	Type            TaskType `json:"type"`
	Name            string   `json:"name,omitempty"`
	Date            string   `json:"date,omitempty"` // Date format, empty when unscheduled
	MaxParticipants *int     `json:"maxParticipants,omitempty"`
	Coordinator     string   `json:"coordinator,omitempty"` // Member ID, empty if none
	Participants    []string `json:"participants"`
	Description     string   `json:"description,omitempty"`
	Completed       bool     `json:"completed"`
}

// DisplayName returns the task name, falling back to the type label
func (t *Task) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Type.Info().Label
}

// ParsedDate returns the task date and whether the task has a valid one
func (t *Task) ParsedDate() (time.Time, bool) {
	if t.Date == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// HasParticipant reports whether the member is signed up for the task
func (t *Task) HasParticipant(memberID string) bool {
	return slices.Contains(t.Participants, memberID)
}

// IntPtr returns a pointer to the given value
func IntPtr(v int) *int {
	return &v
}
