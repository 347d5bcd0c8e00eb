// Package classification assigns functional subtypes to envelopes.
//
// The keyword lexicons are a product decision and intentionally coarse.
// Ambiguous names ("Property Savings" vs "Property Maintenance") resolve by
// match order, refining the lexicons is a product concern, not handled here.
package classification

import (
	"strings"

	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"github.com/stashbudget/backend/internal/models"
)

// LexiconVersion identifies the lexicons below. Bump it when they change so
// that backfills for existing envelopes can be re-run.
const LexiconVersion = 1

// Keyword lexicons, checked in order: savings first, then spending. The
// first match wins, everything else defaults to bill.
var (
	savingsLexicon  = []string{"surplus", "emergency", "savings", "investment", "property", "giving", "goal"}
	spendingLexicon = []string{"groceries", "takeaway", "entertainment", "fun", "dining", "miscellaneous", "lifestyle"}
)

// Subtype classifies an envelope name. Matching is case-insensitive and
// matches the keyword anywhere in the name.
//
// This is a creation-time heuristic. Explicitly assigned subtypes, such as
// tracking and debt envelopes, are authoritative and must never be
// overwritten with the result of this function.
func Subtype(name string, _ models.EnvelopeType) models.EnvelopeSubtype {
	lowered := strings.ToLower(name)

	for _, keyword := range savingsLexicon {
		if glob.Glob("*"+keyword+"*", lowered) {
			return models.SubtypeSavings
		}
	}

	for _, keyword := range spendingLexicon {
		if glob.Glob("*"+keyword+"*", lowered) {
			return models.SubtypeSpending
		}
	}

	return models.SubtypeBill
}

// Backfill classifies all envelopes of the owner that do not have an
// explicitly assigned subtype. It is idempotent and returns the number of
// envelopes that changed.
func Backfill(ownerID uuid.UUID) (int, error) {
	var envelopes []models.Envelope

	err := models.DB.
		Where("owner_id = ? AND subtype_explicit = ?", ownerID, false).
		Find(&envelopes).Error
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range envelopes {
		envelope := &envelopes[i]

		subtype := Subtype(envelope.Name, envelope.Type)
		if subtype == envelope.Subtype {
			continue
		}

		err := models.DB.Model(envelope).Update("subtype", subtype).Error
		if err != nil {
			return updated, err
		}

		updated++
	}

	return updated, nil
}
