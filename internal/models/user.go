package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stashbudget/backend/internal/types"
	"gorm.io/gorm"
)

// PayFrequency is how often a user receives income.
type PayFrequency string

const (
	PayWeekly      PayFrequency = "weekly"
	PayFortnightly PayFrequency = "fortnightly"
	PayMonthly     PayFrequency = "monthly"
)

// Days returns the length of one pay period in days.
func (f PayFrequency) Days() int {
	switch f {
	case PayWeekly:
		return 7
	case PayFortnightly:
		return 14
	default:
		return 30
	}
}

// Valid reports whether the frequency is one of the known values.
func (f PayFrequency) Valid() bool {
	return f == PayWeekly || f == PayFortnightly || f == PayMonthly
}

// PeriodsUntil returns the number of pay periods between asOf and the
// deadline. There is always at least one period so that callers can divide
// by the result.
func (f PayFrequency) PeriodsUntil(asOf time.Time, deadline types.Date) int {
	periods := types.DateOf(asOf).DaysUntil(deadline) / f.Days()
	if periods < 1 {
		return 1
	}

	return periods
}

// User owns envelopes, allocations and transactions. Authentication happens
// outside of the backend, this is only the data the engine needs.
type User struct {
	DefaultModel
	Name         string
	PayFrequency PayFrequency
}

func (u *User) BeforeSave(_ *gorm.DB) error {
	u.Name = strings.TrimSpace(u.Name)

	if u.PayFrequency == "" {
		u.PayFrequency = PayMonthly
	}

	if !u.PayFrequency.Valid() {
		return ErrPayFrequencyInvalid
	}

	return nil
}

// Returns all users on this instance for export
func (User) Export() (json.RawMessage, error) {
	var users []User
	err := DB.Unscoped().Where(&User{}).Find(&users).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&users)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}

// LinkedAccount connects a child or teen account to a parent account.
//
// ShowInParentBudget grants the parent read-only visibility of the child's
// budget. It is never a write capability.
type LinkedAccount struct {
	DefaultModel
	ParentID           uuid.UUID `gorm:"uniqueIndex:linked_account_parent_child"`
	Parent             User      `json:"-" gorm:"foreignKey:ParentID"`
	ChildID            uuid.UUID `gorm:"uniqueIndex:linked_account_parent_child"`
	Child              User      `json:"-" gorm:"foreignKey:ChildID"`
	ShowInParentBudget bool
}

func (l *LinkedAccount) BeforeCreate(tx *gorm.DB) error {
	_ = l.DefaultModel.BeforeCreate(tx)

	err := tx.First(&User{}, "id = ?", l.ParentID).Error
	if err != nil {
		return err
	}

	return tx.First(&User{}, "id = ?", l.ChildID).Error
}

// Returns all linked accounts on this instance for export
func (LinkedAccount) Export() (json.RawMessage, error) {
	var linkedAccounts []LinkedAccount
	err := DB.Unscoped().Where(&LinkedAccount{}).Find(&linkedAccounts).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&linkedAccounts)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
