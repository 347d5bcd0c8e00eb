package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/models"
)

type AllocationEditable struct {
	EnvelopeID uuid.UUID `json:"envelopeId" example:"d5adb408-5a1b-4b8c-95b0-13d1ea6bb6b7"` // ID of the envelope this allocation is for
}

// model returns the database resource for the API representation of the editable fields
func (editable AllocationEditable) model(ownerID uuid.UUID) models.IncomeAllocation {
	return models.IncomeAllocation{
		OwnerID:    ownerID,
		EnvelopeID: editable.EnvelopeID,
	}
}

type Allocation struct {
	models.DefaultModel
	AllocationEditable
	OwnerID          uuid.UUID           `json:"ownerId"`
	SuggestedAmount  decimal.NullDecimal `json:"suggestedAmount"`
	AllocationLocked bool                `json:"allocationLocked"`
	LockedAt         *time.Time          `json:"lockedAt"`
}

// newAllocation returns the API representation of the resource
func newAllocation(model models.IncomeAllocation) Allocation {
	return Allocation{
		DefaultModel: model.DefaultModel,
		AllocationEditable: AllocationEditable{
			EnvelopeID: model.EnvelopeID,
		},
		OwnerID:          model.OwnerID,
		SuggestedAmount:  model.SuggestedAmount,
		AllocationLocked: model.AllocationLocked,
		LockedAt:         model.LockedAt,
	}
}

type AllocationResponse struct {
	Error *string     `json:"error"` // The error, if any occurred
	Data  *Allocation `json:"data"`  // The resource
}

type AllocationListResponse struct {
	Data  []Allocation `json:"data"`  // List of resources
	Error *string      `json:"error"` // The error, if any occurred
}

type RecalculateResponse struct {
	Error      *string `json:"error"`      // The error, if any occurred
	Recomputed int     `json:"recomputed"` // Number of allocations that were recomputed
	Skipped    int     `json:"skipped"`    // Number of allocations that were skipped because they are locked
}
