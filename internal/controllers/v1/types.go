package v1

import (
	"errors"
	"net/http"

	"github.com/stashbudget/backend/internal/events"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/suggestions"
	sb_uuid "github.com/stashbudget/backend/internal/uuid"
)

// Controller bundles the collaborators the handlers need.
type Controller struct {
	Publisher   events.Publisher
	Suggestions *suggestions.Manager
}

func NewController(publisher events.Publisher) Controller {
	return Controller{
		Publisher:   publisher,
		Suggestions: suggestions.NewManager(publisher),
	}
}

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate HTTP status for a domain error
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError

	case errors.Is(err, models.ErrResourceNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrSuggestionExists),
		errors.Is(err, models.ErrAllocationNotUnique),
		errors.Is(err, models.ErrAllocationLocked),
		errors.Is(err, models.ErrAllocationNotLocked):
		return http.StatusConflict

	default:
		return http.StatusBadRequest
	}
}

type URIID struct {
	ID sb_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type Pagination struct {
	Count  int   `json:"count"`  // The amount of records returned in this response
	Offset uint  `json:"offset"` // The offset for the first record returned
	Limit  int   `json:"limit"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total"`  // The total number of resources matching the query
}
