package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/types"
	"gorm.io/gorm"
)

// EnvelopeType separates income envelopes from expense envelopes.
type EnvelopeType string

const (
	EnvelopeTypeIncome  EnvelopeType = "income"
	EnvelopeTypeExpense EnvelopeType = "expense"
)

func (t EnvelopeType) Valid() bool {
	return t == EnvelopeTypeIncome || t == EnvelopeTypeExpense
}

// EnvelopeSubtype is the functional classification of an envelope.
type EnvelopeSubtype string

const (
	SubtypeBill     EnvelopeSubtype = "bill"
	SubtypeSpending EnvelopeSubtype = "spending"
	SubtypeSavings  EnvelopeSubtype = "savings"
	SubtypeGoal     EnvelopeSubtype = "goal"
	SubtypeTracking EnvelopeSubtype = "tracking"
	SubtypeDebt     EnvelopeSubtype = "debt"
)

func (s EnvelopeSubtype) Valid() bool {
	switch s {
	case SubtypeBill, SubtypeSpending, SubtypeSavings, SubtypeGoal, SubtypeTracking, SubtypeDebt:
		return true
	}

	return false
}

// SuggestionType identifies the system generated envelopes.
type SuggestionType string

const (
	SuggestionStarterStash SuggestionType = "starter-stash"
	SuggestionCCHolding    SuggestionType = "cc-holding"
	SuggestionSafetyNet    SuggestionType = "safety-net"
)

func (s SuggestionType) Valid() bool {
	return s == SuggestionStarterStash || s == SuggestionCCHolding || s == SuggestionSafetyNet
}

// IconMaxLength is the maximum number of characters for the envelope icon.
const IconMaxLength = 50

// Envelope represents a budget bucket with a target balance and
// classification.
//
// The partial unique index on (OwnerID, SuggestionType) guards against
// concurrent creation of duplicate suggestions. Dismissed suggestions are
// excluded so that a dismissed suggestion can be offered again.
type Envelope struct {
	DefaultModel
	OwnerID     uuid.UUID `gorm:"index:envelope_owner_suggestion,unique,priority:1,where:is_dismissed = 0"`
	Owner       User      `json:"-" gorm:"foreignKey:OwnerID"`
	Name        string
	Description string
	Icon        string
	Type        EnvelopeType    `gorm:"column:envelope_type"`
	Subtype     EnvelopeSubtype
	// SubtypeExplicit marks subtypes assigned by the user or by a
	// non-heuristic path. The classification backfill never overwrites them.
	SubtypeExplicit     bool
	TargetAmount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	TargetDate          *types.Date
	IsSuggested         bool
	SuggestionType      *SuggestionType `gorm:"index:envelope_owner_suggestion,unique,priority:2,where:is_dismissed = 0"`
	IsDismissed         bool
	AutoCalculateTarget bool
	SnoozedUntil        *time.Time
	BillCycleStartDate  *types.Date
}

func (e *Envelope) BeforeCreate(tx *gorm.DB) error {
	_ = e.DefaultModel.BeforeCreate(tx)

	return tx.First(&User{}, "id = ?", e.OwnerID).Error
}

func (e *Envelope) BeforeSave(_ *gorm.DB) error {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = strings.TrimSpace(e.Description)
	e.Icon = strings.TrimSpace(e.Icon)

	if utf8.RuneCountInString(e.Icon) > IconMaxLength {
		return ErrIconTooLong
	}

	if e.Type == "" {
		e.Type = EnvelopeTypeExpense
	}

	if !e.Type.Valid() {
		return ErrEnvelopeTypeInvalid
	}

	if e.Subtype != "" && !e.Subtype.Valid() {
		return ErrSubtypeInvalid
	}

	if e.SuggestionType != nil {
		if !e.SuggestionType.Valid() {
			return ErrSuggestionTypeInvalid
		}

		if !e.IsSuggested {
			return ErrSuggestionTypeWithoutFlag
		}
	}

	if e.TargetAmount.IsNegative() {
		return ErrTargetAmountNegative
	}

	return nil
}

// Balance returns the envelope balance up to and including the given day.
func (e Envelope) Balance(asOf types.Date) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := DB.Model(&Transaction{}).
		Where("envelope_id = ? AND date <= ?", e.ID, asOf).
		Select("SUM(amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// BillDates returns the dates of the envelope's outgoing transactions,
// oldest first. They are the raw material for bill cycle inference.
func (e Envelope) BillDates() ([]types.Date, error) {
	var transactions []Transaction

	err := DB.
		Where("envelope_id = ? AND amount < 0", e.ID).
		Order("date ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	dates := make([]types.Date, 0, len(transactions))
	for _, transaction := range transactions {
		dates = append(dates, transaction.Date)
	}

	return dates, nil
}

// ActiveSuggestions returns the suggested envelopes of the owner that await
// a decision: not dismissed and not currently snoozed. Snoozing is a
// time-gated visibility filter, a snoozed envelope reappears here once its
// expiry has passed.
func ActiveSuggestions(ownerID uuid.UUID, now time.Time) ([]Envelope, error) {
	var envelopes []Envelope

	err := DB.
		Where("owner_id = ? AND is_suggested = ? AND is_dismissed = ?", ownerID, true, false).
		Where("snoozed_until IS NULL OR snoozed_until <= ?", now).
		Order("created_at ASC").
		Find(&envelopes).Error

	return envelopes, err
}

// Returns all envelopes on this instance for export
func (Envelope) Export() (json.RawMessage, error) {
	var envelopes []Envelope
	err := DB.Unscoped().Where(&Envelope{}).Find(&envelopes).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&envelopes)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
