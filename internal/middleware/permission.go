package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/response"
)

// RoleResolver resolves a user's role within an organization. An empty
// role means the user is not a member.
type RoleResolver interface {
	GetMemberRole(ctx context.Context, orgID, userID uuid.UUID) (permissions.Role, error)
}

// RequireOrgPermission returns a middleware that resolves the caller's
// role for the organization in the :id path param and requires the given
// permission. Call after JWT. Sets ContextOrgID and ContextOrgRole.
func RequireOrgPermission(resolver RoleResolver, perm permissions.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid organization id")
			c.Abort()
			return
		}
		CheckOrgPermission(c, resolver, orgID, perm)
	}
}

// CheckOrgPermission enforces the permission for an already-resolved
// organization and aborts the request on denial. Domain packages that map
// a resource (event, template) to its organization call this after the
// lookup.
func CheckOrgPermission(c *gin.Context, resolver RoleResolver, orgID uuid.UUID, perm permissions.Permission) {
	userID := c.MustGet(ContextUserID).(uuid.UUID)
	role, err := resolver.GetMemberRole(c.Request.Context(), orgID, userID)
	if err != nil || role == "" {
		response.Forbidden(c, "not a member of this organization")
		c.Abort()
		return
	}
	if !permissions.Has(role, perm) {
		response.Forbidden(c, "not permitted")
		c.Abort()
		return
	}
	c.Set(ContextOrgID, orgID)
	c.Set(ContextOrgRole, role)
	c.Next()
}
