package duties

import "github.com/jakechorley/club-duties/pkg/core/model"

// EffectiveCapacity returns the task's capacity override or its type's default
func EffectiveCapacity(task model.Task) int {
	if task.MaxParticipants != nil && *task.MaxParticipants > 0 {
		return *task.MaxParticipants
	}
	return task.Type.Info().DefaultCapacity
}

// OpenSlots returns how many more participants the task can take
func OpenSlots(task model.Task) int {
	return max(0, EffectiveCapacity(task)-len(task.Participants))
}

// IsFull reports whether the task has reached its capacity
func IsFull(task model.Task) bool {
	return len(task.Participants) >= EffectiveCapacity(task)
}
