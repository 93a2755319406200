package model

import (
	"github.com/google/uuid"
)

// Document is the unit of persistence: every mutation loads the whole document,
// changes it in memory and writes it back
type Document struct {
	Members []Member `json:"members"`
	// Stored under "taken" for compatibility with documents written by the web front-ends
	Tasks []Task `json:"taken"`
}

// NewDocument returns an empty document
func NewDocument() *Document {
	return &Document{
		Members: []Member{},
		Tasks:   []Task{},
	}
}

// Normalize replaces nil collections with empty ones so callers never need nil checks
func (d *Document) Normalize() {
	if d.Members == nil {
		d.Members = []Member{}
	}
	if d.Tasks == nil {
		d.Tasks = []Task{}
	}
	for i := range d.Tasks {
		if d.Tasks[i].Participants == nil {
			d.Tasks[i].Participants = []string{}
		}
	}
}

// Clone returns a deep copy of the document
func (d *Document) Clone() *Document {
	clone := &Document{
		Members: make([]Member, len(d.Members)),
		Tasks:   make([]Task, len(d.Tasks)),
	}
	copy(clone.Members, d.Members)
	for i, t := range d.Tasks {
		t.Participants = append([]string{}, t.Participants...)
		if t.MaxParticipants != nil {
			t.MaxParticipants = IntPtr(*t.MaxParticipants)
		}
		clone.Tasks[i] = t
	}
	return clone
}

// FindMember returns a pointer into the document for the member with the given ID
func (d *Document) FindMember(id string) *Member {
	for i := range d.Members {
		if d.Members[i].ID == id {
			return &d.Members[i]
		}
	}
	return nil
}

// FindTask returns a pointer into the document for the task with the given ID
func (d *Document) FindTask(id string) *Task {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return &d.Tasks[i]
		}
	}
	return nil
}

// MemberNames maps member IDs to names
func (d *Document) MemberNames() map[string]string {
	names := make(map[string]string, len(d.Members))
	for _, m := range d.Members {
		names[m.ID] = m.Name
	}
	return names
}

// NewID generates an ID that is not used by any member or task in the document.
// IDs are UUIDv7: a millisecond timestamp followed by random bits.
func (d *Document) NewID() string {
	for {
		id := newUUID()
		if d.FindMember(id) == nil && d.FindTask(id) == nil {
			return id
		}
	}
}

func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source fails
		return uuid.New().String()
	}
	return id.String()
}
