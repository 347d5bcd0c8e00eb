package v1

import (
	"time"

	"github.com/stashbudget/backend/internal/models"
)

type SuggestionCreate struct {
	Type models.SuggestionType `json:"type" example:"starter-stash"` // Type of the suggestion to create
}

type SnoozeEditable struct {
	Until time.Time `json:"until" example:"2027-01-01T00:00:00Z"` // When the suggestion should reappear. Must be in the future.
}

type SuggestionResponse struct {
	Error *string   `json:"error"` // The error, if any occurred
	Data  *Envelope `json:"data"`  // The suggested envelope
}

type SuggestionListResponse struct {
	Data  []Envelope `json:"data"`  // List of currently visible suggestions
	Error *string    `json:"error"` // The error, if any occurred
}

type AcceptResponse struct {
	Error      *string     `json:"error"`      // The error, if any occurred
	Data       *Envelope   `json:"data"`       // The accepted envelope
	Allocation *Allocation `json:"allocation"` // The allocation the envelope takes part in
}
