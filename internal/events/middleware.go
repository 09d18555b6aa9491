package events

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/response"
)

// ContextEvent is the context key for the resolved event.
const ContextEvent = "event"

// RequirePermission resolves the event in the :id path param to its
// organization and requires the given permission there. Call after JWT.
func RequirePermission(repo *Repository, resolver middleware.RoleResolver, perm permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		event, err := repo.GetByID(c.Request.Context(), eventID)
		if err != nil {
			response.NotFound(c, "event not found")
			c.Abort()
			return
		}
		c.Set(ContextEvent, event)
		middleware.CheckOrgPermission(c, resolver, event.OrganizationID, perm)
	}
}

// EventFromContext returns the event resolved by RequirePermission.
func EventFromContext(c *gin.Context) *models.Event {
	return c.MustGet(ContextEvent).(*models.Event)
}
