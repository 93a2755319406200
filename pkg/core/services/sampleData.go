package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// SampleDocument builds a demo season with twelve members and eight tasks
func SampleDocument() *model.Document {
	doc := model.NewDocument()

	people := []model.Member{
		{Name: "Anna de Vries", Email: "anna@example.org", Phone: "06-11111111"},
		{Name: "Bas Janssen", Email: "bas@example.org", Phone: "06-22222222", HasPaid: true},
		{Name: "Carla Smits", Email: "carla@example.org", Phone: "06-33333333"},
		{Name: "Daan Bakker", Email: "daan@example.org", Phone: "06-44444444", PaidOutBarDuties: 1},
		{Name: "Eva Mulder", Email: "eva@example.org", HasPaid: true},
		{Name: "Frank Peters", Phone: "06-55555555"},
		{Name: "Greet van Dam", Email: "greet@example.org", Phone: "06-66666666"},
		{Name: "Hans de Groot", Email: "hans@example.org", Phone: "06-77777777"},
		{Name: "Irene Visser", Email: "irene@example.org", Phone: "06-88888888", HasPaid: true},
		{Name: "Jan Willems", Email: "jan@example.org"},
		{Name: "Karin Bosman", Email: "karin@example.org", Phone: "06-99999999"},
		{Name: "Lars Hendriks", Email: "lars@example.org", Phone: "06-10101010"},
	}
	ids := make([]string, len(people))
	for i, p := range people {
		p.ID = doc.NewID()
		ids[i] = p.ID
		doc.Members = append(doc.Members, p)
	}

	tasks := []model.Task{
		{Type: model.TaskTypeBarDuty, Name: "Bar duty week 3", Date: "2025-01-15", MaxParticipants: model.IntPtr(2),
			Coordinator: ids[0], Completed: true, Participants: []string{ids[0], ids[2]}},
		{Type: model.TaskTypeBarDuty, Name: "Bar duty week 7", Date: "2025-02-12", MaxParticipants: model.IntPtr(2),
			Completed: true, Participants: []string{ids[3], ids[0]}},
		{Type: model.TaskTypeBarDuty, Name: "Bar duty week 11", Date: "2025-03-12", MaxParticipants: model.IntPtr(2),
			Participants: []string{ids[6]}},
		{Type: model.TaskTypeCleanup, Name: "Big cleanup 2025", Date: "2025-06-07", MaxParticipants: model.IntPtr(20),
			Coordinator: ids[1], Description: "Full clean of the hall and changing rooms",
			Participants: []string{ids[1], ids[7], ids[8]}},
		{Type: model.TaskTypeSetup, Name: "Setup regional competition", Date: "2025-03-22", MaxParticipants: model.IntPtr(10),
			Coordinator: ids[4], Completed: true, Participants: []string{ids[4], ids[5], ids[9], ids[10]}},
		{Type: model.TaskTypeMedalCeremony, Name: "Medals regional competition", Date: "2025-03-22", MaxParticipants: model.IntPtr(5),
			Coordinator: ids[11], Completed: true, Participants: []string{ids[11]}},
		{Type: model.TaskTypeSignupDesk, Name: "Signup desk district championship", Date: "2025-04-19", MaxParticipants: model.IntPtr(5),
			Participants: []string{}},
		{Type: model.TaskTypeMusic, Name: "Music district championship", Date: "2025-04-19", MaxParticipants: model.IntPtr(2),
			Participants: []string{}},
	}
	for _, t := range tasks {
		t.ID = doc.NewID()
		doc.Tasks = append(doc.Tasks, t)
	}

	return doc
}

// LoadSampleData replaces the stored document with the demo season. Callers
// should confirm first when the store already holds members.
func LoadSampleData(ctx context.Context, store DocumentStore, logger *zap.Logger) (*model.Document, error) {
	doc := SampleDocument()
	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Info("Sample data loaded",
		zap.Int("members", len(doc.Members)),
		zap.Int("tasks", len(doc.Tasks)))
	return doc, nil
}
