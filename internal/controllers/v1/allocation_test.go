package v1_test

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	v1 "github.com/stashbudget/backend/internal/controllers/v1"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/types"
	"github.com/stashbudget/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestAllocationCreate() {
	t := suite.T()
	user := suite.createTestUser(models.User{PayFrequency: models.PayFortnightly})

	targetDate := types.DateOf(time.Now().AddDate(0, 0, 28))
	envelope := suite.createTestEnvelope(models.Envelope{
		OwnerID:      user.ID,
		Name:         "Car Rego",
		Subtype:      models.SubtypeBill,
		TargetAmount: decimal.NewFromInt(600),
		TargetDate:   &targetDate,
	})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", v1.AllocationEditable{EnvelopeID: envelope.ID}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.AllocationResponse
	test.DecodeResponse(t, &recorder, &response)

	assert.Equal(t, envelope.ID, response.Data.EnvelopeID)
	assert.False(t, response.Data.AllocationLocked)

	// The first suggestion is computed on creation: 600 over 2 fortnights
	require.True(t, response.Data.SuggestedAmount.Valid)
	assert.True(t, response.Data.SuggestedAmount.Decimal.Equal(decimal.NewFromInt(300)), "Amount is %s, expected 300", response.Data.SuggestedAmount.Decimal)

	// One allocation per envelope
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/allocations", v1.AllocationEditable{EnvelopeID: envelope.ID}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestAllocationLockCycle() {
	t := suite.T()
	user := suite.createTestUser(models.User{})
	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})
	allocation := suite.createTestAllocation(models.IncomeAllocation{OwnerID: user.ID, EnvelopeID: envelope.ID})

	url := "http://example.com/v1/allocations/" + allocation.ID.String()

	recorder := test.Request(t, http.MethodPost, url+"/lock", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.AllocationResponse
	test.DecodeResponse(t, &recorder, &response)
	assert.True(t, response.Data.AllocationLocked)
	assert.NotNil(t, response.Data.LockedAt)

	// Locking twice is a conflict
	recorder = test.Request(t, http.MethodPost, url+"/lock", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusConflict)

	recorder = test.Request(t, http.MethodPost, url+"/unlock", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	// Unlocking twice is a conflict as well
	recorder = test.Request(t, http.MethodPost, url+"/unlock", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestAllocationRecalculate() {
	t := suite.T()
	user := suite.createTestUser(models.User{PayFrequency: models.PayWeekly})

	unlocked := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill, TargetAmount: decimal.NewFromInt(100)})
	suite.createTestAllocation(models.IncomeAllocation{OwnerID: user.ID, EnvelopeID: unlocked.ID})

	locked := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Car Rego", Subtype: models.SubtypeBill, TargetAmount: decimal.NewFromInt(600)})
	lockedAllocation := suite.createTestAllocation(models.IncomeAllocation{OwnerID: user.ID, EnvelopeID: locked.ID})
	require.Nil(t, lockedAllocation.Lock(time.Now()))

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/allocations/recalculate", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.RecalculateResponse
	test.DecodeResponse(t, &recorder, &response)
	assert.Equal(t, 1, response.Recomputed)
	assert.Equal(t, 1, response.Skipped)
}

func (suite *TestSuiteStandard) TestAllocationListScopedToOwner() {
	t := suite.T()
	user := suite.createTestUser(models.User{Name: "Owner"})
	other := suite.createTestUser(models.User{Name: "Other"})

	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})
	suite.createTestAllocation(models.IncomeAllocation{OwnerID: user.ID, EnvelopeID: envelope.ID})

	otherEnvelope := suite.createTestEnvelope(models.Envelope{OwnerID: other.ID, Name: "Groceries", Subtype: models.SubtypeSpending})
	suite.createTestAllocation(models.IncomeAllocation{OwnerID: other.ID, EnvelopeID: otherEnvelope.ID})

	recorder := test.Request(t, http.MethodGet, "http://example.com/v1/allocations", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.AllocationListResponse
	test.DecodeResponse(t, &recorder, &response)
	require.Len(t, response.Data, 1)
	assert.Equal(t, envelope.ID, response.Data[0].EnvelopeID)
}
