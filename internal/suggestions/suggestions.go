// Package suggestions manages the lifecycle of system generated envelopes:
// starter stash, credit card holding and safety net.
package suggestions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/allocation"
	"github.com/stashbudget/backend/internal/events"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/types"
)

// StarterStashTarget is the fixed target for the starter stash suggestion.
var StarterStashTarget = decimal.NewFromInt(1000)

// SafetyNetMonths is the number of months of essential spending the safety
// net covers.
const SafetyNetMonths = 3

// Manager drives suggested envelopes through their lifecycle.
type Manager struct {
	publisher events.Publisher
}

func NewManager(publisher events.Publisher) *Manager {
	return &Manager{publisher: publisher}
}

// Register creates a suggested envelope of the given type for the owner.
// An active suggestion of the same type makes the create fail with
// models.ErrSuggestionExists; a dismissed one does not count.
func (m *Manager) Register(ctx context.Context, ownerID uuid.UUID, suggestionType models.SuggestionType, asOf time.Time) (models.Envelope, error) {
	envelope, err := m.build(ownerID, suggestionType, asOf)
	if err != nil {
		return models.Envelope{}, err
	}

	err = models.DB.Create(&envelope).Error
	if err != nil {
		return models.Envelope{}, err
	}

	err = m.publisher.Publish(ctx, events.New(events.KindSuggestionCreated, ownerID, map[string]interface{}{
		"envelopeId":     envelope.ID.String(),
		"suggestionType": string(suggestionType),
	}))
	if err != nil {
		// The suggestion exists, a lost notification is not worth failing
		// the request over
		log.Error().Err(err).Msg("publishing suggestion-created event failed")
	}

	return envelope, nil
}

func (m *Manager) build(ownerID uuid.UUID, suggestionType models.SuggestionType, asOf time.Time) (models.Envelope, error) {
	sType := suggestionType
	envelope := models.Envelope{
		OwnerID:         ownerID,
		Type:            models.EnvelopeTypeExpense,
		IsSuggested:     true,
		SuggestionType:  &sType,
		SubtypeExplicit: true,
	}

	switch suggestionType {
	case models.SuggestionStarterStash:
		envelope.Name = "Starter Stash"
		envelope.Description = "A first cushion for unexpected expenses"
		envelope.Subtype = models.SubtypeSavings
		envelope.TargetAmount = StarterStashTarget

	case models.SuggestionCCHolding:
		envelope.Name = "Credit Card Holding"
		envelope.Description = "Money set aside to pay your credit card in full"
		envelope.Subtype = models.SubtypeTracking
		envelope.AutoCalculateTarget = true

		target, err := models.DebtBalance(ownerID, types.DateOf(asOf))
		if err != nil {
			return models.Envelope{}, err
		}
		envelope.TargetAmount = target

	case models.SuggestionSafetyNet:
		envelope.Name = "Safety Net"
		envelope.Description = fmt.Sprintf("%d months of essential spending", SafetyNetMonths)
		envelope.Subtype = models.SubtypeSavings
		envelope.AutoCalculateTarget = true

		target, err := safetyNetTarget(ownerID, asOf)
		if err != nil {
			return models.Envelope{}, err
		}
		envelope.TargetAmount = target

	default:
		return models.Envelope{}, models.ErrSuggestionTypeInvalid
	}

	return envelope, nil
}

func safetyNetTarget(ownerID uuid.UUID, asOf time.Time) (decimal.Decimal, error) {
	essential, err := models.EssentialMonthlySpend(ownerID, asOf)
	if err != nil {
		return decimal.Zero, err
	}

	return essential.Mul(decimal.NewFromInt(SafetyNetMonths)).Round(2), nil
}

// Dismiss rejects a suggestion. Dismissing twice is not an error.
func (m *Manager) Dismiss(envelope *models.Envelope) error {
	if envelope.IsDismissed {
		return nil
	}

	return models.DB.Model(envelope).Update("is_dismissed", true).Error
}

// Snooze hides a suggestion until the given time. The expiry must be in the
// future. Reappearing is handled by the visibility filter, no unsnooze
// action exists.
func (m *Manager) Snooze(envelope *models.Envelope, until, now time.Time) error {
	if !until.After(now) {
		return models.ErrSnoozeNotFuture
	}

	return models.DB.Model(envelope).Updates(map[string]interface{}{"snoozed_until": until.In(time.UTC)}).Error
}

// Accept converts a suggestion into a normally tracked envelope. The
// envelope keeps IsSuggested for provenance and gets an allocation row so
// that it takes part in per-pay allocation like any other envelope.
func (m *Manager) Accept(envelope *models.Envelope) (models.IncomeAllocation, error) {
	err := models.DB.Model(envelope).Updates(map[string]interface{}{"snoozed_until": nil}).Error
	if err != nil {
		return models.IncomeAllocation{}, err
	}
	envelope.SnoozedUntil = nil

	var alloc models.IncomeAllocation
	err = models.DB.First(&alloc, "owner_id = ? AND envelope_id = ?", envelope.OwnerID, envelope.ID).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		alloc = models.IncomeAllocation{OwnerID: envelope.OwnerID, EnvelopeID: envelope.ID}
		err = models.DB.Create(&alloc).Error
	}

	return alloc, err
}

// RecalculateIfAuto recomputes the target of an auto calculating envelope
// and forwards it to the allocation calculator. Dismissed envelopes and
// envelopes with a fixed target are skipped.
func (m *Manager) RecalculateIfAuto(envelope *models.Envelope, asOf time.Time) error {
	if envelope.IsDismissed || !envelope.AutoCalculateTarget {
		return nil
	}

	var target decimal.Decimal
	var err error

	switch {
	case envelope.SuggestionType != nil && *envelope.SuggestionType == models.SuggestionSafetyNet:
		target, err = safetyNetTarget(envelope.OwnerID, asOf)
	case envelope.SuggestionType != nil && *envelope.SuggestionType == models.SuggestionCCHolding:
		target, err = models.DebtBalance(envelope.OwnerID, types.DateOf(asOf))
	default:
		// No auto rule for this envelope
		return nil
	}
	if err != nil {
		return err
	}

	if !target.Equal(envelope.TargetAmount) {
		err = models.DB.Model(envelope).Update("target_amount", target).Error
		if err != nil {
			return err
		}
	}

	var alloc models.IncomeAllocation
	err = models.DB.First(&alloc, "owner_id = ? AND envelope_id = ?", envelope.OwnerID, envelope.ID).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		// Not accepted yet, there is nothing to allocate to
		return nil
	}
	if err != nil {
		return err
	}

	return allocation.Recalculate(&alloc, asOf)
}

// RecalculateAllAuto runs RecalculateIfAuto over every auto calculating
// envelope on the instance. The worker calls this periodically.
func (m *Manager) RecalculateAllAuto(asOf time.Time) (int, error) {
	var envelopes []models.Envelope

	err := models.DB.
		Where("auto_calculate_target = ? AND is_dismissed = ?", true, false).
		Find(&envelopes).Error
	if err != nil {
		return 0, err
	}

	for i := range envelopes {
		err := m.RecalculateIfAuto(&envelopes[i], asOf)
		if err != nil {
			return i, err
		}
	}

	return len(envelopes), nil
}

// Active returns the suggestions that should currently be shown to the
// owner.
func (m *Manager) Active(ownerID uuid.UUID, now time.Time) ([]models.Envelope, error) {
	return models.ActiveSuggestions(ownerID, now)
}

// WakeExpired clears elapsed snoozes and notifies the owners that their
// suggestions are visible again. The visibility filter alone would
// resurface them, clearing the field keeps the rows tidy and gives the
// notification collaborator a precise trigger.
func (m *Manager) WakeExpired(ctx context.Context, now time.Time) (int, error) {
	var expired []models.Envelope

	err := models.DB.
		Where("is_suggested = ? AND is_dismissed = ?", true, false).
		Where("snoozed_until IS NOT NULL AND snoozed_until <= ?", now).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}

	for i := range expired {
		envelope := &expired[i]

		err := models.DB.Model(envelope).Updates(map[string]interface{}{"snoozed_until": nil}).Error
		if err != nil {
			return i, err
		}

		err = m.publisher.Publish(ctx, events.New(events.KindSuggestionResurfaced, envelope.OwnerID, map[string]interface{}{
			"envelopeId": envelope.ID.String(),
		}))
		if err != nil {
			log.Error().Err(err).Msg("publishing suggestion-resurfaced event failed")
		}
	}

	return len(expired), nil
}
