package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/types"
	"gorm.io/gorm"
)

// Transaction is money moving in or out of an envelope. Negative amounts
// are outflows.
type Transaction struct {
	DefaultModel
	OwnerID    uuid.UUID `gorm:"index"`
	Owner      User      `json:"-" gorm:"foreignKey:OwnerID"`
	EnvelopeID uuid.UUID `gorm:"index"`
	Envelope   Envelope  `json:"-"`
	Date       types.Date
	Amount     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Note       string
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	err := tx.First(&User{}, "id = ?", t.OwnerID).Error
	if err != nil {
		return err
	}

	return tx.First(&Envelope{}, "id = ?", t.EnvelopeID).Error
}

func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Note = strings.TrimSpace(t.Note)

	if t.Date.IsZero() {
		t.Date = types.DateOf(time.Now())
	}

	return nil
}

// EssentialMonthlySpend returns the average monthly outflow across the
// owner's bill and spending envelopes over the trailing three months. It is
// the input for the safety net target.
func EssentialMonthlySpend(ownerID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	from := types.DateOf(asOf.AddDate(0, -3, 0))

	var sum decimal.NullDecimal
	err := DB.Model(&Transaction{}).
		Joins("JOIN envelopes ON envelopes.id = transactions.envelope_id").
		Where("transactions.owner_id = ?", ownerID).
		Where("envelopes.subtype IN ?", []EnvelopeSubtype{SubtypeBill, SubtypeSpending}).
		Where("transactions.amount < 0").
		Where("transactions.date >= ?", from).
		Select("SUM(transactions.amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal.Neg().Div(decimal.NewFromInt(3)).Round(2), nil
}

// DebtBalance returns the combined amount owed across the owner's debt
// envelopes. Debt balances are stored as negative numbers, owing nothing
// returns zero.
func DebtBalance(ownerID uuid.UUID, asOf types.Date) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := DB.Model(&Transaction{}).
		Joins("JOIN envelopes ON envelopes.id = transactions.envelope_id").
		Where("transactions.owner_id = ?", ownerID).
		Where("envelopes.subtype = ?", SubtypeDebt).
		Where("transactions.date <= ?", asOf).
		Select("SUM(transactions.amount)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	owed := sum.Decimal.Neg()
	if owed.IsNegative() {
		return decimal.Zero, nil
	}

	return owed, nil
}

// Returns all transactions on this instance for export
func (Transaction) Export() (json.RawMessage, error) {
	var transactions []Transaction
	err := DB.Unscoped().Where(&Transaction{}).Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	j, err := json.Marshal(&transactions)
	if err != nil {
		return json.RawMessage{}, err
	}
	return json.RawMessage(j), nil
}
