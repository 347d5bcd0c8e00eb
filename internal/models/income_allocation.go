package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IncomeAllocation holds the suggested per-pay contribution to an envelope.
//
// SuggestedAmount is recomputed by the allocation calculator whenever its
// inputs change, unless the owner locked the row. All writes that touch the
// lock state are single conditional updates so that a recompute that read
// "unlocked" can never overwrite a value that was locked a moment later.
type IncomeAllocation struct {
	DefaultModel
	OwnerID          uuid.UUID `gorm:"uniqueIndex:allocation_owner_envelope"`
	Owner            User      `json:"-" gorm:"foreignKey:OwnerID"`
	EnvelopeID       uuid.UUID `gorm:"uniqueIndex:allocation_owner_envelope"`
	Envelope         Envelope  `json:"-"`
	SuggestedAmount  decimal.NullDecimal `gorm:"type:DECIMAL(20,8)"`
	AllocationLocked bool
	LockedAt         *time.Time
}

func (a *IncomeAllocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	err := tx.First(&User{}, "id = ?", a.OwnerID).Error
	if err != nil {
		return err
	}

	return tx.First(&Envelope{}, "id = ?", a.EnvelopeID).Error
}

// AfterSave upholds the lock invariant: the lock flag is set exactly when
// the lock timestamp is.
func (a *IncomeAllocation) AfterSave(_ *gorm.DB) error {
	if a.AllocationLocked != (a.LockedAt != nil) {
		return ErrLockStateInvalid
	}

	return nil
}

// SetSuggestedAmount stores a recomputed suggestion. The lock check happens
// in the same statement as the write, locked rows are skipped. Skipping is
// not an error, the call reports whether the write happened.
func (a *IncomeAllocation) SetSuggestedAmount(amount decimal.Decimal) (bool, error) {
	res := DB.Model(&IncomeAllocation{}).
		Where("id = ? AND allocation_locked = ?", a.ID, false).
		Update("suggested_amount", amount)
	if res.Error != nil {
		return false, res.Error
	}

	if res.RowsAffected == 0 {
		// The row is locked or gone. Reload to tell the two apart and to
		// keep the struct in sync with the database.
		return false, DB.First(a, "id = ?", a.ID).Error
	}

	a.SuggestedAmount = decimal.NullDecimal{Decimal: amount, Valid: true}
	return true, nil
}

// Lock freezes the suggested amount against recomputation.
func (a *IncomeAllocation) Lock(now time.Time) error {
	now = now.In(time.UTC)

	res := DB.Model(&IncomeAllocation{}).
		Where("id = ? AND allocation_locked = ?", a.ID, false).
		Updates(map[string]interface{}{"allocation_locked": true, "locked_at": now})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		err := DB.First(&IncomeAllocation{}, "id = ?", a.ID).Error
		if err != nil {
			return err
		}

		return ErrAllocationLocked
	}

	a.AllocationLocked = true
	a.LockedAt = &now
	return nil
}

// Unlock clears the lock fields. Subsequent recomputes overwrite the
// suggested amount again.
func (a *IncomeAllocation) Unlock() error {
	res := DB.Model(&IncomeAllocation{}).
		Where("id = ? AND allocation_locked = ?", a.ID, true).
		Updates(map[string]interface{}{"allocation_locked": false, "locked_at": nil})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		err := DB.First(&IncomeAllocation{}, "id = ?", a.ID).Error
		if err != nil {
			return err
		}

		return ErrAllocationNotLocked
	}

	a.AllocationLocked = false
	a.LockedAt = nil
	return nil
}

// Returns all income allocations on this instance for export
func (IncomeAllocation) Export() (json.RawMessage, error) {
	var allocations []IncomeAllocation
	err := DB.Unscoped().Where(&IncomeAllocation{}).Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&allocations)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
