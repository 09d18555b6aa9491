package templates

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/response"
)

// ContextTemplate is the context key for the resolved template.
const ContextTemplate = "template"

// RequirePermission resolves the template in the :id path param to its
// organization and requires the given permission there. Call after JWT.
func RequirePermission(repo *Repository, resolver middleware.RoleResolver, perm permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid template id")
			c.Abort()
			return
		}
		tmpl, err := repo.GetByID(c.Request.Context(), templateID)
		if err != nil {
			response.NotFound(c, "template not found")
			c.Abort()
			return
		}
		c.Set(ContextTemplate, tmpl)
		middleware.CheckOrgPermission(c, resolver, tmpl.OrganizationID, perm)
	}
}
