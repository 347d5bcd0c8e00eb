package v1_test

import (
	"net/http"
	"time"

	v1 "github.com/stashbudget/backend/internal/controllers/v1"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestSuggestionLifecycle() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	// Create
	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionStarterStash}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.SuggestionResponse
	test.DecodeResponse(t, &recorder, &response)
	require.NotNil(t, response.Data)
	assert.Equal(t, "Starter Stash", response.Data.Name)
	assert.True(t, response.Data.IsSuggested)

	id := response.Data.ID.String()

	// A duplicate active suggestion is a conflict
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionStarterStash}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusConflict)

	// The suggestion is listed as active
	recorder = test.Request(t, http.MethodGet, "http://example.com/v1/suggestions", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var list v1.SuggestionListResponse
	test.DecodeResponse(t, &recorder, &list)
	require.Len(t, list.Data, 1)

	// Snooze hides it
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+id+"/snooze", v1.SnoozeEditable{Until: time.Now().Add(24 * time.Hour)}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	recorder = test.Request(t, http.MethodGet, "http://example.com/v1/suggestions", nil, authHeaders(user))
	test.DecodeResponse(t, &recorder, &list)
	assert.Len(t, list.Data, 0)

	// Accept clears the snooze and creates an allocation
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+id+"/accept", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var accepted v1.AcceptResponse
	test.DecodeResponse(t, &recorder, &accepted)
	require.NotNil(t, accepted.Allocation)
	assert.Equal(t, response.Data.ID, accepted.Allocation.EnvelopeID)
	assert.Nil(t, accepted.Data.SnoozedUntil)
}

func (suite *TestSuiteStandard) TestSuggestionSnoozeInPast() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionSafetyNet}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.SuggestionResponse
	test.DecodeResponse(t, &recorder, &response)

	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+response.Data.ID.String()+"/snooze", v1.SnoozeEditable{Until: time.Now().Add(-time.Hour)}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSuggestionDismissThenRecreate() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionStarterStash}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.SuggestionResponse
	test.DecodeResponse(t, &recorder, &response)
	id := response.Data.ID.String()

	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+id+"/dismiss", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	// Dismissing again succeeds without a change
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+id+"/dismiss", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	// After the dismissal a new suggestion of the same type can be created
	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionStarterStash}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)
}

func (suite *TestSuiteStandard) TestSuggestionInvalidType() {
	t := suite.T()
	user := suite.createTestUser(models.User{})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: "retirement"}, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestSuggestionNotOwned() {
	t := suite.T()
	user := suite.createTestUser(models.User{Name: "Owner"})
	other := suite.createTestUser(models.User{Name: "Other"})

	recorder := test.Request(t, http.MethodPost, "http://example.com/v1/suggestions", v1.SuggestionCreate{Type: models.SuggestionStarterStash}, authHeaders(other))
	test.AssertHTTPStatus(t, &recorder, http.StatusCreated)

	var response v1.SuggestionResponse
	test.DecodeResponse(t, &recorder, &response)

	recorder = test.Request(t, http.MethodPost, "http://example.com/v1/suggestions/"+response.Data.ID.String()+"/dismiss", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusNotFound)
}
