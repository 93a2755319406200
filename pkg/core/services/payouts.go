package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jakechorley/club-duties/pkg/core/duties"
)

// PayoutResult describes the outcome of a payout confirmation
type PayoutResult struct {
	MemberID string
	// Paid is false when nothing was owed and the document was left untouched
	Paid bool
	// Amount is what was owed before the confirmation
	Amount int
	// Duties is the new PaidOutBarDuties value
	Duties int
}

// ConfirmPayout records that everything currently owed to the member has been
// paid by setting PaidOutBarDuties to the member's extra bar duties. It does
// nothing when no amount is owed, so calling it twice is harmless.
func ConfirmPayout(ctx context.Context, store DocumentStore, logger *zap.Logger, rates duties.Rates, memberID string) (*PayoutResult, error) {
	doc, err := load(ctx, store)
	if err != nil {
		return nil, err
	}

	member := doc.FindMember(memberID)
	if member == nil {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}

	status := duties.MemberStatus(*member, doc.Tasks, rates)
	result := &PayoutResult{
		MemberID: memberID,
		Amount:   status.AmountOwed,
		Duties:   member.PaidOutBarDuties,
	}
	if status.AmountOwed <= 0 {
		logger.Debug("Nothing owed, payout skipped", zap.String("member_id", memberID))
		return result, nil
	}

	member.PaidOutBarDuties = status.ExtraBarDuties
	if err := save(ctx, store, doc); err != nil {
		return nil, err
	}

	result.Paid = true
	result.Duties = member.PaidOutBarDuties
	logger.Info("Payout confirmed",
		zap.String("member_id", memberID),
		zap.Int("amount", status.AmountOwed),
		zap.Int("paid_out_bar_duties", member.PaidOutBarDuties))
	return result, nil
}
