package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stashbudget/backend/internal/allocation"
	"github.com/stashbudget/backend/internal/httputil"
	"github.com/stashbudget/backend/internal/identity"
	"github.com/stashbudget/backend/internal/models"
)

func (co Controller) RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsAllocations)
		r.GET("", co.GetAllocations)
		r.POST("", co.CreateAllocation)
	}
	{
		r.OPTIONS("/recalculate", co.OptionsRecalculate)
		r.POST("/recalculate", co.RecalculateAllocations)
	}
	{
		r.OPTIONS("/:id", co.OptionsAllocationDetail)
		r.GET("/:id", co.GetAllocation)
		r.POST("/:id/lock", co.LockAllocation)
		r.POST("/:id/unlock", co.UnlockAllocation)
	}
}

func (co Controller) OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func (co Controller) OptionsRecalculate(c *gin.Context) {
	httputil.OptionsPost(c)
}

func (co Controller) OptionsAllocationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	_, err = co.allocationForRequest(c, uri)
	if err != nil {
		c.JSON(status(err), httpError{Error: err.Error()})
		return
	}

	httputil.OptionsGet(c)
}

// CreateAllocation creates an allocation for one of the owner's envelopes
// and computes its first suggested amount. Each envelope carries at most one
// allocation per owner.
func (co Controller) CreateAllocation(c *gin.Context) {
	var editable AllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &e})
		return
	}

	ownerID := identity.FromContext(c).OwnerID

	// The envelope must belong to the authenticated owner
	err = models.DB.First(&models.Envelope{}, "id = ? AND owner_id = ?", editable.EnvelopeID, ownerID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	alloc := editable.model(ownerID)

	err = models.DB.Create(&alloc).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	err = allocation.Recalculate(&alloc, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	apiResource := newAllocation(alloc)
	c.JSON(http.StatusCreated, AllocationResponse{Data: &apiResource})
}

// GetAllocations returns all allocations of the owner.
func (co Controller) GetAllocations(c *gin.Context) {
	var allocations []models.IncomeAllocation
	err := models.DB.
		Where("owner_id = ?", identity.FromContext(c).OwnerID).
		Order("created_at ASC").
		Find(&allocations).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &e})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, alloc := range allocations {
		data = append(data, newAllocation(alloc))
	}

	c.JSON(http.StatusOK, AllocationListResponse{Data: data})
}

// GetAllocation returns a single allocation.
func (co Controller) GetAllocation(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	alloc, err := co.allocationForRequest(c, uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	apiResource := newAllocation(alloc)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// LockAllocation freezes the allocation's suggested amount. Locking an
// already locked allocation is a conflict.
func (co Controller) LockAllocation(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	alloc, err := co.allocationForRequest(c, uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	err = allocation.Lock(c.Request.Context(), co.Publisher, &alloc, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	apiResource := newAllocation(alloc)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// UnlockAllocation lifts the lock so that recomputes overwrite the suggested
// amount again. Unlocking an unlocked allocation is a conflict.
func (co Controller) UnlockAllocation(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	alloc, err := co.allocationForRequest(c, uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	err = allocation.Unlock(&alloc)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &e})
		return
	}

	apiResource := newAllocation(alloc)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// RecalculateAllocations recomputes the suggested amount for every
// allocation of the owner. Locked allocations are counted as skipped.
func (co Controller) RecalculateAllocations(c *gin.Context) {
	var allocations []models.IncomeAllocation
	err := models.DB.
		Where("owner_id = ?", identity.FromContext(c).OwnerID).
		Find(&allocations).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), RecalculateResponse{Error: &e})
		return
	}

	now := time.Now()

	var recomputed, skipped int
	for i := range allocations {
		if allocations[i].AllocationLocked {
			skipped++
			continue
		}

		err = allocation.Recalculate(&allocations[i], now)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), RecalculateResponse{Error: &e, Recomputed: recomputed, Skipped: skipped})
			return
		}
		recomputed++
	}

	c.JSON(http.StatusOK, RecalculateResponse{Recomputed: recomputed, Skipped: skipped})
}

// allocationForRequest loads the allocation and enforces ownership.
func (co Controller) allocationForRequest(c *gin.Context, uri URIID) (models.IncomeAllocation, error) {
	var alloc models.IncomeAllocation

	err := models.DB.
		First(&alloc, "id = ? AND owner_id = ?", uri.ID.UUID, identity.FromContext(c).OwnerID).Error
	if err != nil {
		return models.IncomeAllocation{}, err
	}

	return alloc, nil
}
