// Package billcycle projects bill due dates and detects funding shortfalls
// before a bill is due.
package billcycle

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/types"
)

// DefaultCycleDays is used when the bill history is too thin to infer a
// cycle length.
const DefaultCycleDays = 30

// Gap is the funding shortfall of an envelope at its next bill due date.
// A positive amount signals under-funding risk.
type Gap struct {
	Known   bool
	DueDate types.Date
	Amount  decimal.Decimal
}

// GapUnknown is returned when an envelope has no bill cycle data. It is not
// an error: callers treat it as "no gap adjustment".
var GapUnknown = Gap{}

// InferCycleDays derives the bill cycle length in days from historical bill
// dates. It uses the median of the gaps between successive dates and falls
// back to DefaultCycleDays with fewer than two observations.
func InferCycleDays(history []types.Date) int {
	if len(history) < 2 {
		return DefaultCycleDays
	}

	dates := slices.Clone(history)
	slices.SortFunc(dates, func(a, b types.Date) int {
		return b.DaysUntil(a)
	})

	gaps := make([]int, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		gap := dates[i-1].DaysUntil(dates[i])
		if gap > 0 {
			gaps = append(gaps, gap)
		}
	}

	if len(gaps) == 0 {
		return DefaultCycleDays
	}

	slices.Sort(gaps)
	return gaps[len(gaps)/2]
}

// NextDueDate projects the first due date on or after asOf: the smallest
// date that is a whole number of cycles after the cycle start date.
func NextDueDate(start types.Date, cycleDays int, asOf time.Time) types.Date {
	if cycleDays <= 0 {
		cycleDays = DefaultCycleDays
	}

	today := types.DateOf(asOf)

	days := start.DaysUntil(today)
	if days <= 0 {
		return start
	}

	cycles := days / cycleDays
	if days%cycleDays != 0 {
		cycles++
	}

	return start.AddDays(cycles * cycleDays)
}

// ComputeGap calculates the funding gap of the envelope at its next due
// date. The cycle length is inferred from the bill history. scheduled is
// the amount of allocations that will still arrive before the due date.
//
// Envelopes without a bill cycle start date return GapUnknown.
func ComputeGap(envelope models.Envelope, history []types.Date, currentBalance, scheduled decimal.Decimal, asOf time.Time) Gap {
	if envelope.BillCycleStartDate == nil || envelope.BillCycleStartDate.IsZero() {
		return GapUnknown
	}

	cycleDays := InferCycleDays(history)
	due := NextDueDate(*envelope.BillCycleStartDate, cycleDays, asOf)

	return Gap{
		Known:   true,
		DueDate: due,
		Amount:  envelope.TargetAmount.Sub(currentBalance).Sub(scheduled),
	}
}
