package services

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/duties"
)

// AddParticipant signs a member up for a task.
//
// Capacity is checked against a freshly loaded document, but nothing locks the
// document between load and save: two instances racing for the last slot can
// both succeed and leave the task over capacity. That race is accepted.
func AddParticipant(ctx context.Context, store DocumentStore, logger *zap.Logger, taskID, memberID string) error {
	logger.Debug("Adding participant", zap.String("task_id", taskID), zap.String("member_id", memberID))

	doc, err := load(ctx, store)
	if err != nil {
		return err
	}

	task := doc.FindTask(taskID)
	if task == nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if doc.FindMember(memberID) == nil {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}

	capacity := duties.EffectiveCapacity(*task)
	if task.HasParticipant(memberID) {
		return &SignupError{TaskID: taskID, MemberID: memberID, Capacity: capacity, Err: ErrAlreadySignedUp}
	}
	if duties.IsFull(*task) {
		return &SignupError{TaskID: taskID, MemberID: memberID, Capacity: capacity, Err: ErrTaskFull}
	}

	task.Participants = append(task.Participants, memberID)
	if err := save(ctx, store, doc); err != nil {
		return err
	}

	logger.Debug("Participant added",
		zap.String("task_id", taskID),
		zap.Int("participants", len(task.Participants)),
		zap.Int("capacity", capacity))
	return nil
}

// RemoveParticipant removes a member from a task. Removing someone who is not
// signed up, or from a task that no longer exists, is not an error; the
// document is saved either way.
func RemoveParticipant(ctx context.Context, store DocumentStore, logger *zap.Logger, taskID, memberID string) error {
	logger.Debug("Removing participant", zap.String("task_id", taskID), zap.String("member_id", memberID))

	doc, err := load(ctx, store)
	if err != nil {
		return err
	}

	if task := doc.FindTask(taskID); task != nil {
		task.Participants = slices.DeleteFunc(task.Participants, func(id string) bool {
			return id == memberID
		})
	}

	return save(ctx, store, doc)
}
