package v1_test

import (
	"encoding/json"
	"net/http"
	"time"

	v1 "github.com/stashbudget/backend/internal/controllers/v1"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExport verifies that the export works correctly
//
// Thorough checks are only executed for the non-data fields since
// the data fields are populated by the Export() methods of the models
func (suite *TestSuiteStandard) TestExport() {
	t := suite.T()

	user := suite.createTestUser(models.User{})
	envelope := suite.createTestEnvelope(models.Envelope{OwnerID: user.ID, Name: "Power Bill", Subtype: models.SubtypeBill})

	recorder := test.Request(t, http.MethodGet, "http://example.com/v1/export", nil, authHeaders(user))
	test.AssertHTTPStatus(t, &recorder, http.StatusOK)

	var response v1.ExportResponse
	test.DecodeResponse(t, &recorder, &response)

	assert.Equal(t, "0.0.0", response.Version)

	// Not sure if this is a good test, if it ever fails we'll re-evaluate
	now := time.Now()
	difference := response.CreationTime.Sub(now).Seconds()
	assert.Less(t, difference, float64(1))

	// Basic tests for the data fields. Full testing is done in the respective Export() methods
	// of the models
	assert.Len(t, response.Data, len(models.Registry), "Number of models in export does not match registry")

	var users []models.User
	require.Nil(t, json.Unmarshal(response.Data["User"], &users))
	require.Len(t, users, 1, "Number of users in export must be 1")

	var envelopes []models.Envelope
	require.Nil(t, json.Unmarshal(response.Data["Envelope"], &envelopes))
	require.Len(t, envelopes, 1, "Number of envelopes in export must be 1")
	assert.Equal(t, envelope.Name, envelopes[0].Name)
}
