package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stashbudget/backend/internal/classification"
	"github.com/stashbudget/backend/internal/models"
	"github.com/stashbudget/backend/internal/types"
)

type EnvelopeEditable struct {
	Name        string              `json:"name" example:"Power Bill" default:""`
	Description string              `json:"description" example:"Monthly electricity bill" default:""`
	Icon        string              `json:"icon" example:"zap" default:""`
	Type        models.EnvelopeType `json:"type" example:"expense" default:"expense"`
	// Subtype is inferred from the name when left empty. A set subtype is
	// explicit and the classifier will never overwrite it.
	Subtype            models.EnvelopeSubtype `json:"subtype" example:"bill" default:""`
	TargetAmount       decimal.Decimal        `json:"targetAmount" example:"300" default:"0"`
	TargetDate         *types.Date            `json:"targetDate"`
	BillCycleStartDate *types.Date            `json:"billCycleStartDate"`
}

// model returns the database resource for the API representation of the editable fields
func (editable EnvelopeEditable) model(ownerID uuid.UUID) models.Envelope {
	subtype := editable.Subtype
	explicit := subtype != ""
	if !explicit {
		subtype = classification.Subtype(editable.Name, editable.Type)
	}

	return models.Envelope{
		OwnerID:            ownerID,
		Name:               editable.Name,
		Description:        editable.Description,
		Icon:               editable.Icon,
		Type:               editable.Type,
		Subtype:            subtype,
		SubtypeExplicit:    explicit,
		TargetAmount:       editable.TargetAmount,
		TargetDate:         editable.TargetDate,
		BillCycleStartDate: editable.BillCycleStartDate,
	}
}

type Envelope struct {
	models.DefaultModel
	EnvelopeEditable
	OwnerID             uuid.UUID              `json:"ownerId"`
	SubtypeExplicit     bool                   `json:"subtypeExplicit"`
	IsSuggested         bool                   `json:"isSuggested"`
	SuggestionType      *models.SuggestionType `json:"suggestionType"`
	IsDismissed         bool                   `json:"isDismissed"`
	AutoCalculateTarget bool                   `json:"autoCalculateTarget"`
	SnoozedUntil        *time.Time             `json:"snoozedUntil"`
}

// newEnvelope returns the API representation of the resource
func newEnvelope(model models.Envelope) Envelope {
	return Envelope{
		DefaultModel: model.DefaultModel,
		EnvelopeEditable: EnvelopeEditable{
			Name:               model.Name,
			Description:        model.Description,
			Icon:               model.Icon,
			Type:               model.Type,
			Subtype:            model.Subtype,
			TargetAmount:       model.TargetAmount,
			TargetDate:         model.TargetDate,
			BillCycleStartDate: model.BillCycleStartDate,
		},
		OwnerID:             model.OwnerID,
		SubtypeExplicit:     model.SubtypeExplicit,
		IsSuggested:         model.IsSuggested,
		SuggestionType:      model.SuggestionType,
		IsDismissed:         model.IsDismissed,
		AutoCalculateTarget: model.AutoCalculateTarget,
		SnoozedUntil:        model.SnoozedUntil,
	}
}

type EnvelopeResponse struct {
	Error *string   `json:"error"` // The error, if any occurred
	Data  *Envelope `json:"data"`  // The resource
}

type EnvelopeListResponse struct {
	Data       []Envelope  `json:"data"`       // List of resources
	Error      *string     `json:"error"`      // The error, if any occurred
	Pagination *Pagination `json:"pagination"` // Pagination information
}

type EnvelopeQueryFilter struct {
	Name      string `form:"name" filterField:"false"`      // By name
	Subtype   string `form:"subtype"`                       // By subtype
	Suggested *bool  `form:"suggested" filterField:"false"` // Only suggested or only regular envelopes
	Offset    uint   `form:"offset" filterField:"false"`    // The offset of the first envelope returned. Defaults to 0.
	Limit     int    `form:"limit" filterField:"false"`     // Maximum number of envelopes to return. Defaults to 50.
}

type BackfillResponse struct {
	Error   *string `json:"error"`   // The error, if any occurred
	Updated int     `json:"updated"` // Number of envelopes that were reclassified
}
