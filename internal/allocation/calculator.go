// Package allocation computes the ideal per-pay allocation for envelopes
// and manages allocation locking.
package allocation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/billcycle"
	"github.com/stashbudget/backend/internal/events"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/types"
)

// Suggest computes the per-pay suggestion for the envelope and stores it on
// the allocation row:
//
//	max(0, (target + max(gap, 0) - balance) / payPeriodsUntilTarget)
//
// rounded to two decimal places, half up. Locked rows are left untouched,
// the call is then a no-op. The computed amount is returned either way, all
// arithmetic stays in fixed-point decimals.
func Suggest(alloc *models.IncomeAllocation, envelope models.Envelope, frequency models.PayFrequency, currentBalance decimal.Decimal, gap billcycle.Gap, asOf time.Time) (decimal.Decimal, error) {
	need := envelope.TargetAmount.Sub(currentBalance)
	if gap.Known && gap.Amount.IsPositive() {
		need = need.Add(gap.Amount)
	}

	periods := 1
	if envelope.TargetDate != nil && !envelope.TargetDate.IsZero() {
		periods = frequency.PeriodsUntil(asOf, *envelope.TargetDate)
	} else if gap.Known {
		periods = frequency.PeriodsUntil(asOf, gap.DueDate)
	}

	perPay := need.DivRound(decimal.NewFromInt(int64(periods)), 2)
	if perPay.IsNegative() {
		perPay = decimal.Zero
	}

	_, err := alloc.SetSuggestedAmount(perPay)
	return perPay, err
}

// Recalculate loads everything the calculator needs for the allocation's
// envelope and recomputes the suggestion. Allocations the owner locked stay
// untouched.
func Recalculate(alloc *models.IncomeAllocation, asOf time.Time) error {
	var envelope models.Envelope
	err := models.DB.First(&envelope, "id = ?", alloc.EnvelopeID).Error
	if err != nil {
		return err
	}

	var owner models.User
	err = models.DB.First(&owner, "id = ?", alloc.OwnerID).Error
	if err != nil {
		return err
	}

	balance, err := envelope.Balance(types.DateOf(asOf))
	if err != nil {
		return err
	}

	history, err := envelope.BillDates()
	if err != nil {
		return err
	}

	// An envelope has at most one allocation and it is the row being
	// recomputed, so there is no scheduled coverage from other sources to
	// subtract. The previous suggestion must never feed back into the gap.
	gap := billcycle.ComputeGap(envelope, history, balance, decimal.Zero, asOf)

	_, err = Suggest(alloc, envelope, owner.PayFrequency, balance, gap, asOf)
	return err
}

// Lock freezes the allocation against recomputation and notifies the owner.
// Locking an already locked allocation returns models.ErrAllocationLocked.
func Lock(ctx context.Context, publisher events.Publisher, alloc *models.IncomeAllocation, now time.Time) error {
	err := alloc.Lock(now)
	if err != nil {
		return err
	}

	return publisher.Publish(ctx, events.New(events.KindAllocationLocked, alloc.OwnerID, map[string]interface{}{
		"allocationId": alloc.ID.String(),
		"envelopeId":   alloc.EnvelopeID.String(),
	}))
}

// Unlock clears the lock. Recomputes resume overwriting the suggestion.
func Unlock(alloc *models.IncomeAllocation) error {
	return alloc.Unlock()
}
