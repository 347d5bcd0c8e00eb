package models_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestEnvelopeTrimWhitespace() {
	user := suite.createTestUser(models.User{})

	name := "  There is whitespace here  \t"
	description := " Whitespace    "

	envelope := suite.createTestEnvelope(models.Envelope{
		OwnerID:     user.ID,
		Name:        name,
		Description: description,
		Subtype:     models.SubtypeBill,
	})

	assert.Equal(suite.T(), strings.TrimSpace(name), envelope.Name)
	assert.Equal(suite.T(), strings.TrimSpace(description), envelope.Description)
}

func (suite *TestSuiteStandard) TestEnvelopeIconTooLong() {
	user := suite.createTestUser(models.User{})

	envelope := models.Envelope{
		OwnerID: user.ID,
		Name:    "Icon test",
		Icon:    strings.Repeat("x", models.IconMaxLength+1),
	}

	err := models.DB.Create(&envelope).Error
	assert.ErrorIs(suite.T(), err, models.ErrIconTooLong)
}

func (suite *TestSuiteStandard) TestEnvelopeInvalidOwner() {
	envelope := models.Envelope{
		Name: "Orphan",
	}

	err := models.DB.Create(&envelope).Error
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopeValidation() {
	user := suite.createTestUser(models.User{})

	tests := []struct {
		name     string
		envelope models.Envelope
		err      error
	}{
		{
			"invalid type",
			models.Envelope{OwnerID: user.ID, Name: "A", Type: "wrong"},
			models.ErrEnvelopeTypeInvalid,
		},
		{
			"invalid subtype",
			models.Envelope{OwnerID: user.ID, Name: "B", Subtype: "wrong"},
			models.ErrSubtypeInvalid,
		},
		{
			"negative target",
			models.Envelope{OwnerID: user.ID, Name: "C", TargetAmount: decimal.NewFromInt(-1)},
			models.ErrTargetAmountNegative,
		},
		{
			"suggestion type without flag",
			models.Envelope{OwnerID: user.ID, Name: "D", SuggestionType: suggestionTypeP(models.SuggestionSafetyNet)},
			models.ErrSuggestionTypeWithoutFlag,
		},
		{
			"valid",
			models.Envelope{OwnerID: user.ID, Name: "E", Subtype: models.SubtypeSavings},
			nil,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			err := models.DB.Create(&tt.envelope).Error
			assert.ErrorIs(t, err, tt.err, "Error is: %s", err)
		})
	}
}

func (suite *TestSuiteStandard) TestEnvelopeDuplicateSuggestion() {
	user := suite.createTestUser(models.User{})

	first := suite.createTestEnvelope(models.Envelope{
		OwnerID:        user.ID,
		Name:           "Starter Stash",
		Subtype:        models.SubtypeSavings,
		IsSuggested:    true,
		SuggestionType: suggestionTypeP(models.SuggestionStarterStash),
	})

	duplicate := models.Envelope{
		OwnerID:        user.ID,
		Name:           "Starter Stash again",
		Subtype:        models.SubtypeSavings,
		IsSuggested:    true,
		SuggestionType: suggestionTypeP(models.SuggestionStarterStash),
	}
	err := models.DB.Create(&duplicate).Error
	assert.ErrorIs(suite.T(), err, models.ErrSuggestionExists)

	// A dismissed suggestion does not block a new one of the same type
	err = models.DB.Model(&first).Update("is_dismissed", true).Error
	assert.Nil(suite.T(), err)

	err = models.DB.Create(&duplicate).Error
	assert.Nil(suite.T(), err, "Error is: %s", err)
}

func (suite *TestSuiteStandard) TestActiveSuggestions() {
	user := suite.createTestUser(models.User{})
	now := time.Now()

	visible := suite.createTestEnvelope(models.Envelope{
		OwnerID:        user.ID,
		Name:           "Starter Stash",
		Subtype:        models.SubtypeSavings,
		IsSuggested:    true,
		SuggestionType: suggestionTypeP(models.SuggestionStarterStash),
	})

	snoozed := time.Now().Add(24 * time.Hour)
	suite.createTestEnvelope(models.Envelope{
		OwnerID:        user.ID,
		Name:           "Safety Net",
		Subtype:        models.SubtypeSavings,
		IsSuggested:    true,
		SuggestionType: suggestionTypeP(models.SuggestionSafetyNet),
		SnoozedUntil:   &snoozed,
	})

	dismissed := suite.createTestEnvelope(models.Envelope{
		OwnerID:        user.ID,
		Name:           "Credit Card Holding",
		Subtype:        models.SubtypeTracking,
		IsSuggested:    true,
		SuggestionType: suggestionTypeP(models.SuggestionCCHolding),
	})
	err := models.DB.Model(&dismissed).Update("is_dismissed", true).Error
	assert.Nil(suite.T(), err)

	active, err := models.ActiveSuggestions(user.ID, now)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), active, 1)
	assert.Equal(suite.T(), visible.ID, active[0].ID)

	// Once the snooze elapses the suggestion is visible again
	active, err = models.ActiveSuggestions(user.ID, now.Add(48*time.Hour))
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), active, 2)
}

func (suite *TestSuiteStandard) TestEnvelopeBalance() {
	user := suite.createTestUser(models.User{})
	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})

	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 1, 5),
		Amount:     decimal.NewFromInt(100),
	})
	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 1, 10),
		Amount:     decimal.NewFromInt(-30),
	})
	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 2, 1),
		Amount:     decimal.NewFromInt(50),
	})

	balance, err := envelope.Balance(dateOf(2024, 1, 31))
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), balance.Equal(decimal.NewFromInt(70)), "Balance is %s, expected 70", balance)

	balance, err = envelope.Balance(dateOf(2024, 2, 28))
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), balance.Equal(decimal.NewFromInt(120)), "Balance is %s, expected 120", balance)
}

func (suite *TestSuiteStandard) TestEnvelopeBillDates() {
	user := suite.createTestUser(models.User{})
	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})

	// Inflows do not count as bill payments
	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 1, 1),
		Amount:     decimal.NewFromInt(100),
	})
	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 2, 1),
		Amount:     decimal.NewFromInt(-90),
	})
	suite.createTestTransaction(models.Transaction{
		OwnerID:    user.ID,
		EnvelopeID: envelope.ID,
		Date:       dateOf(2024, 1, 2),
		Amount:     decimal.NewFromInt(-90),
	})

	dates, err := envelope.BillDates()
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), dates, 2)
	assert.True(suite.T(), dates[0].Equal(dateOf(2024, 1, 2)))
	assert.True(suite.T(), dates[1].Equal(dateOf(2024, 2, 1)))
}

func suggestionTypeP(s models.SuggestionType) *models.SuggestionType {
	return &s
}
