package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stashbudget/backend/internal/classification"
	"github.com/stashbudget/backend/internal/httputil"
	"github.com/stashbudget/backend/internal/identity"
	"github.com/stashbudget/backend/internal/models"
)

func (co Controller) RegisterEnvelopeRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsEnvelopes)
		r.GET("", co.GetEnvelopes)
		r.POST("", co.CreateEnvelope)
	}
	{
		r.OPTIONS("/backfill", co.OptionsBackfill)
		r.POST("/backfill", co.BackfillSubtypes)
	}
	{
		r.OPTIONS("/:id", co.OptionsEnvelopeDetail)
		r.GET("/:id", co.GetEnvelope)
		r.PATCH("/:id", co.UpdateEnvelope)
		r.DELETE("/:id", co.DeleteEnvelope)
	}
}

func (co Controller) OptionsEnvelopes(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsBackfill(c *gin.Context) {
	httputil.OptionsPost(c)
}

func (co Controller) OptionsEnvelopeDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	_, err = co.envelopeForRequest(c, uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// CreateEnvelope creates a new envelope for the authenticated owner. The
// subtype is classified from the name unless the request sets it.
func (co Controller) CreateEnvelope(c *gin.Context) {
	var editable EnvelopeEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeResponse{Error: &e})
		return
	}

	envelope := editable.model(identity.FromContext(c).OwnerID)

	err = models.DB.Create(&envelope).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusCreated, EnvelopeResponse{Data: &apiResource})
}

// GetEnvelopes returns a list of the owner's envelopes.
func (co Controller) GetEnvelopes(c *gin.Context) {
	var filter EnvelopeQueryFilter
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeListResponse{Error: &e})
		return
	}

	q := models.DB.
		Where("owner_id = ?", identity.FromContext(c).OwnerID).
		Order("envelopes.name ASC")

	if filter.Name != "" {
		q = q.Where("name LIKE ?", "%"+filter.Name+"%")
	}

	if filter.Subtype != "" {
		q = q.Where("subtype = ?", filter.Subtype)
	}

	if filter.Suggested != nil {
		q = q.Where("is_suggested = ?", *filter.Suggested)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 envelopes and set the limit
	limit := 50
	if filter.Limit != 0 {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var envelopes []models.Envelope
	err := q.Find(&envelopes).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeListResponse{Error: &e})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeListResponse{Error: &e})
		return
	}

	data := make([]Envelope, 0, len(envelopes))
	for _, envelope := range envelopes {
		data = append(data, newEnvelope(envelope))
	}

	c.JSON(http.StatusOK, EnvelopeListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// GetEnvelope returns a single envelope.
func (co Controller) GetEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	envelope, err := co.envelopeForRequest(c, uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &apiResource})
}

// UpdateEnvelope updates the editable fields of an envelope. Setting the
// subtype makes it explicit, the classification backfill will then skip
// this envelope.
func (co Controller) UpdateEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	envelope, err := co.envelopeForRequest(c, uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	// Initialize the editable with the current values so that omitted
	// fields stay unchanged
	editable := EnvelopeEditable{
		Name:               envelope.Name,
		Description:        envelope.Description,
		Icon:               envelope.Icon,
		Type:               envelope.Type,
		TargetAmount:       envelope.TargetAmount,
		TargetDate:         envelope.TargetDate,
		BillCycleStartDate: envelope.BillCycleStartDate,
	}

	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, EnvelopeResponse{Error: &e})
		return
	}

	envelope.Name = editable.Name
	envelope.Description = editable.Description
	envelope.Icon = editable.Icon
	envelope.Type = editable.Type
	envelope.TargetAmount = editable.TargetAmount
	envelope.TargetDate = editable.TargetDate
	envelope.BillCycleStartDate = editable.BillCycleStartDate

	if editable.Subtype != "" {
		envelope.Subtype = editable.Subtype
		envelope.SubtypeExplicit = true
	}

	// Save runs the full validation, partial updates would skip it
	err = models.DB.Save(&envelope).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), EnvelopeResponse{Error: &e})
		return
	}

	apiResource := newEnvelope(envelope)
	c.JSON(http.StatusOK, EnvelopeResponse{Data: &apiResource})
}

// DeleteEnvelope soft-deletes an envelope. Envelopes referenced by
// allocations are never removed from the database.
func (co Controller) DeleteEnvelope(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	envelope, err := co.envelopeForRequest(c, uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	err = models.DB.Delete(&envelope).Error
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// BackfillSubtypes re-runs the subtype classification over all envelopes of
// the owner that were not explicitly classified.
func (co Controller) BackfillSubtypes(c *gin.Context) {
	updated, err := classification.Backfill(identity.FromContext(c).OwnerID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BackfillResponse{Error: &e, Updated: updated})
		return
	}

	c.JSON(http.StatusOK, BackfillResponse{Updated: updated})
}

// envelopeForRequest loads the envelope and enforces ownership.
func (co Controller) envelopeForRequest(c *gin.Context, uri URIID) (models.Envelope, error) {
	var envelope models.Envelope

	err := models.DB.
		First(&envelope, "id = ? AND owner_id = ?", uri.ID.UUID, identity.FromContext(c).OwnerID).Error
	if err != nil {
		return models.Envelope{}, err
	}

	return envelope, nil
}
