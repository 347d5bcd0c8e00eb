// Package identity resolves the authenticated owner for every request.
//
// Authentication itself happens in the fronting proxy, which passes the
// authenticated user in the x-user-id header. The engine never trusts a
// caller supplied owner id that differs from the authenticated one, with a
// single exception: read-only access to a linked account that opted in via
// show_in_parent_budget.
package identity

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stashbudget/backend/internal/models"
)

// HeaderUserID carries the authenticated user id, set by the auth proxy.
const HeaderUserID = "x-user-id"

const contextKey = "identity"

var (
	ErrUnauthenticated  = errors.New("the x-user-id header must be set to a valid user id")
	ErrViewNotPermitted = errors.New("you are not permitted to view this budget")
)

// Identity is the resolved context of a request.
type Identity struct {
	// OwnerID is the user whose data is being accessed.
	OwnerID uuid.UUID

	// ViewerID is the authenticated user. It differs from OwnerID only for
	// read-only parent views.
	ViewerID uuid.UUID

	// ReadOnly is set when the viewer is not the owner.
	ReadOnly bool
}

// Middleware resolves the identity for the request. Unauthenticated
// requests are rejected with 401, unauthorized cross-account views with
// 403.
//
// A parent views a linked child account by setting the "view" query
// parameter to the child's user id. The resulting identity is read-only,
// mutating methods are rejected.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, err := uuid.Parse(c.GetHeader(HeaderUserID))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
			return
		}

		err = models.DB.First(&models.User{}, "id = ?", viewerID).Error
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
			return
		}

		identity := Identity{OwnerID: viewerID, ViewerID: viewerID}

		if view := c.Query("view"); view != "" {
			ownerID, err := uuid.Parse(view)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "the view parameter must be a valid user id"})
				return
			}

			if ownerID != viewerID {
				var link models.LinkedAccount
				err := models.DB.First(&link, "parent_id = ? AND child_id = ? AND show_in_parent_budget = ?", viewerID, ownerID, true).Error
				if err != nil {
					c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrViewNotPermitted.Error()})
					return
				}

				identity = Identity{OwnerID: ownerID, ViewerID: viewerID, ReadOnly: true}
			}
		}

		// Visibility is never a write capability
		if identity.ReadOnly && c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead && c.Request.Method != http.MethodOptions {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrViewNotPermitted.Error()})
			return
		}

		c.Set(contextKey, identity)
		c.Next()
	}
}

// FromContext returns the identity stored by Middleware.
func FromContext(c *gin.Context) Identity {
	value, ok := c.Get(contextKey)
	if !ok {
		return Identity{}
	}

	identity, ok := value.(Identity)
	if !ok {
		return Identity{}
	}

	return identity
}
