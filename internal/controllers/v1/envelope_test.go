package v1_test

import (
	"net/http"

	v1 "github.com/stashbudget/backend/internal/controllers/v1"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestEnvelopeCreateClassifies() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	tests := []struct {
		name    string
		subtype models.EnvelopeSubtype
	}{
		{"Emergency Fund", models.SubtypeSavings},
		{"Groceries", models.SubtypeSpending},
		{"Power Bill", models.SubtypeBill},
	}

	for _, tt := range tests {
		recorder := test.Request(t, http.MethodPost, "http://example.com/v1/envelopes", v1.EnvelopeEditable{Name: tt.name}, authHeaders(user))
		test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

		var response v1.EnvelopeResponse
		test.DecodeResponse(t, &recorder, &response)

		assert.Equal(t, tt.subtype, response.Data.Subtype, "Wrong subtype for %q", tt.name)
		assert.False(t, response.Data.SubtypeExplicit)
		assert.Equal(t, user.ID, response.Data.OwnerID)
	}
}

func (suite *TestSuiteStandard) TestEnvelopeCreateExplicitSubtype() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/envelopes", v1.EnvelopeEditable{
		Name:    "Emergency Fund",
		Subtype: models.SubtypeTracking,
	}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.EnvelopeResponse
	test.DecodeResponse(t, &recorder, &response)

	assert.Equal(t, models.SubtypeTracking, response.Data.Subtype)
	assert.True(t, response.Data.SubtypeExplicit)
}

func (suite *TestSuiteStandard) TestEnvelopeCreateUnauthenticated() {
	t := suite.T()

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/envelopes", v1.EnvelopeEditable{Name: "Power Bill"})
	test.AssertHTTPStatus(t, &recorder, http.StatusUnauthorized)
}

func (suite *TestSuiteStandard) TestEnvelopeListScopedToOwner() {
	t := suite.T()
	user := suite.createTestUser(models.User{Name: "Owner"})
	other := suite.createTestUser(models.User{Name: "Other"})

	suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})
	suite.createTestEnvelope(models.Envelope{OwnerID: other.ID, Name: "Groceries", Subtype: models.SubtypeSpending})

	recorder := test.Request(t, http.MethodGet, "http://example.com/v1/envelopes", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.EnvelopeListResponse
	test.DecodeResponse(t, &recorder, &response)

	require.Len(t, response.Data, 1)
	assert.Equal(t, "Power Bill", response.Data[0].Name)
	assert.Equal(t, int64(1), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestEnvelopeGetNotFound() {
	t := suite.T()
	user := suite.createTestUser(models.User{Name: "Owner"})
	other := suite.createTestUser(models.User{Name: "Other"})

	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: other.ID, Name: "Groceries", Subtype: models.SubtypeSpending})

	// Another owner's envelope is indistinguishable from a missing one
	recorder := test.Request(t, http.MethodGet, "http://example.com/v1/envelopes/"+envelope.ID.String(), nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopeUpdateSubtypeBecomesExplicit() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})

	recorder := test.Request(t, http.MethodPatch, "http://example.com/v1/envelopes/"+envelope.ID.String(), map[string]string{
		"subtype": "savings",
	}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var reloaded models.Envelope
	require.Nil(t, models.DB.First(&reloaded, "id = ?", envelope.ID).Error)
	assert.Equal(t, models.SubtypeSavings, reloaded.Subtype)
	assert.True(t, reloaded.SubtypeExplicit)
}

func (suite *TestSuiteStandard) TestEnvelopeDelete() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})

	recorder := test.Request(t, http.MethodDelete, "http://example.com/v1/envelopes/"+envelope.ID.String(), nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusNoContent)

	recorder = test.Request(t, http.MethodGet, "http://example.com/v1/envelopes/"+envelope.ID.String(), nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestEnvelopeBackfill() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Emergency Fund", Subtype: models.SubtypeBill})
	suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Groceries", Subtype: models.SubtypeDebt, SubtypeExplicit: true})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/envelopes/backfill", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.BackfillResponse
	test.DecodeResponse(t, &recorder, &response)
	assert.Equal(t, 1, response.Updated)
}
