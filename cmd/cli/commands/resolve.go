package commands

import (
	"fmt"
	"strings"

	"github.com/jakechorley/club-duties/pkg/core/model"
	"github.com/jakechorley/club-duties/pkg/core/services"
)

// minPrefix is the shortest id prefix accepted in place of a full id
const minPrefix = 4

// resolveMember finds a member by id, unique full name (case-insensitive) or unique id prefix
func resolveMember(doc *model.Document, ref string) (*model.Member, error) {
	ref = strings.TrimSpace(ref)
	if m := doc.FindMember(ref); m != nil {
		return m, nil
	}

	var byName []*model.Member
	for i := range doc.Members {
		if strings.EqualFold(doc.Members[i].Name, ref) {
			byName = append(byName, &doc.Members[i])
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return nil, fmt.Errorf("%d members are called %q, use the member id", len(byName), ref)
	}

	if len(ref) >= minPrefix {
		var byPrefix []*model.Member
		for i := range doc.Members {
			if strings.HasPrefix(doc.Members[i].ID, ref) {
				byPrefix = append(byPrefix, &doc.Members[i])
			}
		}
		if len(byPrefix) == 1 {
			return byPrefix[0], nil
		}
		if len(byPrefix) > 1 {
			return nil, fmt.Errorf("member id prefix %q is ambiguous", ref)
		}
	}

	return nil, fmt.Errorf("%w: %s", services.ErrMemberNotFound, ref)
}

// resolveTask finds a task by id or unique id prefix
func resolveTask(doc *model.Document, ref string) (*model.Task, error) {
	ref = strings.TrimSpace(ref)
	if t := doc.FindTask(ref); t != nil {
		return t, nil
	}

	if len(ref) >= minPrefix {
		var byPrefix []*model.Task
		for i := range doc.Tasks {
			if strings.HasPrefix(doc.Tasks[i].ID, ref) {
				byPrefix = append(byPrefix, &doc.Tasks[i])
			}
		}
		if len(byPrefix) == 1 {
			return byPrefix[0], nil
		}
		if len(byPrefix) > 1 {
			return nil, fmt.Errorf("task id prefix %q is ambiguous", ref)
		}
	}

	return nil, fmt.Errorf("%w: %s", services.ErrTaskNotFound, ref)
}

// parseTaskType accepts a task type or its label, case-insensitively
func parseTaskType(s string) (model.TaskType, error) {
	s = strings.TrimSpace(s)
	for _, t := range model.AllTaskTypes() {
		if strings.EqualFold(string(t), s) || strings.EqualFold(t.Info().Label, s) {
			return t, nil
		}
	}
	names := make([]string, 0, len(model.AllTaskTypes()))
	for _, t := range model.AllTaskTypes() {
		names = append(names, string(t))
	}
	return "", fmt.Errorf("unknown task type %q (one of %s)", s, strings.Join(names, ", "))
}
