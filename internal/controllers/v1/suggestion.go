package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stashbudget/backend/internal/httputil"
	"github.com/stashbudget/backend/internal/identity"
	"github.com/stashbudget/backend/internal/models"
)

func (co Controller) RegisterSuggestionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsSuggestions)
		r.GET("", co.GetSuggestions)
		r.POST("", co.CreateSuggestion)
	}
	{
		r.OPTIONS("/:id/dismiss", co.OptionsSuggestionAction)
		r.POST("/:id/dismiss", co.DismissSuggestion)
		r.OPTIONS("/:id/snooze", co.OptionsSuggestionAction)
		r.POST("/:id/snooze", co.SnoozeSuggestion)
		r.OPTIONS("/:id/accept", co.OptionsSuggestionAction)
		r.POST("/:id/accept", co.AcceptSuggestion)
	}
}

func (co Controller) OptionsSuggestions(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsSuggestionAction(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GetSuggestions returns the suggestions currently visible to the owner.
// Dismissed and snoozed suggestions are filtered out.
func (co Controller) GetSuggestions(c *gin.Context) {
	envelopes, err := co.Suggestions.Active(identity.FromContext(c).OwnerID, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionListResponse{Error: &e})
		return
	}

	data := make([]Envelope, 0, len(envelopes))
	for _, envelope := range envelopes {
		data = append(data, newEnvelope(envelope))
	}

	c.JSON(http.StatusOK, SuggestionListResponse{Data: data})
}

// CreateSuggestion creates a suggested envelope of the requested type. An
// active suggestion of the same type already existing is a conflict.
func (co Controller) CreateSuggestion(c *gin.Context) {
	var create SuggestionCreate

	err := httputil.BindData(c, &create)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, SuggestionResponse{Error: &e})
		return
	}

	envelope, err := co.Suggestions.Register(c.Request.Context(), identity.FromContext(c).OwnerID, create.Type, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusCreated, SuggestionResponse{Data: &apiResource})
}

// DismissSuggestion rejects a suggestion. Dismissing an already dismissed
// suggestion succeeds without a change.
func (co Controller) DismissSuggestion(c *gin.Context) {
	envelope, err := co.suggestionForRequest(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionResponse{Error: &e})
		return
	}

	err = co.Suggestions.Dismiss(&envelope)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, SuggestionResponse{Data: &apiResource})
}

// SnoozeSuggestion hides a suggestion until the given time.
func (co Controller) SnoozeSuggestion(c *gin.Context) {
	envelope, err := co.suggestionForRequest(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionResponse{Error: &e})
		return
	}

	var snooze SnoozeEditable
	err = httputil.BindData(c, &snooze)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, SuggestionResponse{Error: &e})
		return
	}

	err = co.Suggestions.Snooze(&envelope, snooze.Until, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SuggestionResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, SuggestionResponse{Data: &apiResource})
}

// AcceptSuggestion converts a suggestion into a tracked envelope with an
// allocation.
func (co Controller) AcceptSuggestion(c *gin.Context) {
	envelope, err := co.suggestionForRequest(c)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AcceptResponse{Error: &e})
		return
	}

	alloc, err := co.Suggestions.Accept(&envelope)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AcceptResponse{Error: &e})
		return
	}

	apiEnvelope := newEnvelope(envelope)
	apiAllocation := newAllocation(alloc)
	c.JSON(http.StatusOK, AcceptResponse{Data: &apiEnvelope, Allocation: &apiAllocation})
}

// suggestionForRequest loads the suggested envelope and enforces ownership.
func (co Controller) suggestionForRequest(c *gin.Context) (models.Envelope, error) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.Envelope{}, err
	}

	var envelope models.Envelope
	err := models.DB.
		First(&envelope, "id = ? AND owner_id = ? AND is_suggested = ?", uri.ID.UUID, identity.FromContext(c).OwnerID, true).Error
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}
