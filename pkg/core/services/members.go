package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/duties"
	"github.com/jakechorley/club-duties/pkg/core/model"
)

// MemberInput holds the editable fields of a member
type MemberInput struct {
	Name             string `validate:"required,max=200"`
	Email            string `validate:"max=254"`
	Phone            string `validate:"max=50"`
	HasPaid          bool
	PaidOutBarDuties int `validate:"gte=0"`
}

// MemberUpdate holds the fields to change; nil fields keep their current value
type MemberUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	HasPaid *bool
	// PaidOutBarDuties is stored as given, even when it exceeds the member's
	// actual extra bar duties
	PaidOutBarDuties *int
}

func (in *MemberInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
}

// CreateMember validates the input and adds a new member
func CreateMember(ctx context.Context, store DocumentStore, logger *zap.Logger, input MemberInput) (*model.Member, error) {
	input.trim()
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}

	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	member := model.Member{
		ID:               doc.NewID(),
		Name:             input.Name,
		Email:            input.Email,
		Phone:            input.Phone,
		HasPaid:          input.HasPaid,
		PaidOutBarDuties: input.PaidOutBarDuties,
	}
	doc.Members = append(doc.Members, member)

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Debug("Member created", zap.String("id", member.ID), zap.String("name", member.Name))
	return &member, nil
}

// UpdateMember merges the update into an existing member
func UpdateMember(ctx context.Context, store DocumentStore, logger *zap.Logger, id string, update MemberUpdate) (*model.Member, error) {
	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	member := doc.FindMember(id)
	if member == nil {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}

	input := MemberInput{
		Name:             member.Name,
		Email:            member.Email,
		Phone:            member.Phone,
		HasPaid:          member.HasPaid,
		PaidOutBarDuties: member.PaidOutBarDuties,
	}
	if update.Name != nil {
		input.Name = *update.Name
	}
	if update.Email != nil {
		input.Email = *update.Email
	}
	if update.Phone != nil {
		input.Phone = *update.Phone
	}
	if update.HasPaid != nil {
		input.HasPaid = *update.HasPaid
	}
	if update.PaidOutBarDuties != nil {
		input.PaidOutBarDuties = *update.PaidOutBarDuties
	}

	input.trim()
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("invalid member: %w", err)
	}

	member.Name = input.Name
	member.Email = input.Email
	member.Phone = input.Phone
	member.HasPaid = input.HasPaid
	member.PaidOutBarDuties = input.PaidOutBarDuties
	updated := *member

	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	logger.Debug("Member updated", zap.String("id", id))
	return &updated, nil
}

// DeleteMember removes a member and every reference to them: the member is
// taken off all participant lists and cleared as coordinator, in the same write
func DeleteMember(ctx context.Context, store DocumentStore, logger *zap.Logger, id string) error {
	doc, err := load(ctx, store)
	if err != nil {
		return err
	}

	if doc.FindMember(id) == nil {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}

	doc.Members = slices.DeleteFunc(doc.Members, func(m model.Member) bool {
		return m.ID == id
	})

	unassigned := 0
	for i := range doc.Tasks {
		task := &doc.Tasks[i]
		before := len(task.Participants)
		task.Participants = slices.DeleteFunc(task.Participants, func(p string) bool {
			return p == id
		})
		unassigned += before - len(task.Participants)
		if task.Coordinator == id {
			task.Coordinator = ""
		}
	}

	if err := save(ctx, store, doc); err != nil {
		return err
	}

	logger.Debug("Member deleted", zap.String("id", id), zap.Int("unassigned_tasks", unassigned))
	return nil
}

// MemberSort selects the ordering of SearchMembers
type MemberSort string

const (
	SortByName   MemberSort = "name"
	SortByStatus MemberSort = "status"
)

// SearchMembers returns members whose name or email contains query
// (case-insensitive) with their derived status
func SearchMembers(doc *model.Document, rates duties.Rates, query string, sortBy MemberSort) []duties.LedgerEntry {
	q := strings.ToLower(strings.TrimSpace(query))

	var result []duties.LedgerEntry
	for _, m := range doc.Members {
		if q != "" &&
			!strings.Contains(strings.ToLower(m.Name), q) &&
			!strings.Contains(strings.ToLower(m.Email), q) {
			continue
		}
		result = append(result, duties.LedgerEntry{
			Member: m,
			Status: duties.MemberStatus(m, doc.Tasks, rates),
		})
	}

	sorter := duties.NewNameSorter()
	slices.SortStableFunc(result, func(a, b duties.LedgerEntry) int {
		if sortBy == SortByStatus {
			if d := a.Status.Status.Order() - b.Status.Status.Order(); d != 0 {
				return d
			}
		}
		return sorter.Compare(a.Member.Name, b.Member.Name)
	})
	return result
}
