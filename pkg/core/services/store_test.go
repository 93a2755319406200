package services

import (
	"context"
	"errors"

	"github.com/jakechorley/club-duties/pkg/core/model"
)

// mockDocumentStore keeps the document in memory and clones on every access,
// like a real store that serialises the document
type mockDocumentStore struct {
	doc     *model.Document
	loadErr error
	saveErr error
	saves   int
}

func newMockStore(doc *model.Document) *mockDocumentStore {
	if doc == nil {
		doc = model.NewDocument()
	}
	doc.Normalize()
	return &mockDocumentStore{doc: doc}
}

func (m *mockDocumentStore) Load(ctx context.Context) (*model.Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.doc.Clone(), nil
}

func (m *mockDocumentStore) Save(ctx context.Context, doc *model.Document) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = doc.Clone()
	return nil
}

var errQuota = errors.New("quota exceeded")

// testDocument has three members and three tasks:
// t-bar (bar duty, capacity 2, one participant), t-full (music, full) and t-done
func testDocument() *model.Document {
	return &model.Document{
		Members: []model.Member{
			{ID: "anna", Name: "Anna de Vries", Email: "anna@example.org"},
			{ID: "bas", Name: "Bas Janssen", Email: "bas@example.org", HasPaid: true},
			{ID: "carla", Name: "Carla Smits"},
		},
		Tasks: []model.Task{
			{ID: "t-bar", Type: model.TaskTypeBarDuty, Date: "2025-05-02", Coordinator: "anna", Participants: []string{"anna"}},
			{ID: "t-full", Type: model.TaskTypeMusic, Date: "2025-05-03", Participants: []string{"anna", "bas"}},
			{ID: "t-done", Type: model.TaskTypeBarDuty, Date: "2025-01-10", Completed: true, Participants: []string{"anna", "carla"}},
		},
	}
}
