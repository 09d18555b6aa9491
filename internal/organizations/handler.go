package organizations

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2–64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// CreateOrganizationRequest is the body for POST /organizations.
type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

// UpdateOrganizationRequest is the body for PATCH /organizations/:id.
type UpdateOrganizationRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// ChangeRoleRequest is the body for PATCH /organizations/:id/members/:userId.
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// CreateOrganization handles POST /organizations. Creates the org and adds
// the current user as org_admin.
func (h *Handler) CreateOrganization(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var body CreateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be 2–64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1–255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, Slug: body.Slug, Description: strings.TrimSpace(body.Description)}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		if isDuplicate(err) {
			response.Conflict(c, "An organization with this slug already exists")
			return
		}
		response.Internal(c, "failed to create organization")
		return
	}
	if err := h.repo.AddMember(c.Request.Context(), org.ID, userID, permissions.RoleOrgAdmin); err != nil {
		response.Internal(c, "failed to add you as admin")
		return
	}
	response.Created(c, org)
}

// ListMyOrganizations handles GET /organizations.
func (h *Handler) ListMyOrganizations(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	orgs, err := h.repo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, orgs)
}

// GetOrganization handles GET /organizations/:id. Requires org:view.
func (h *Handler) GetOrganization(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "Organization not found")
		return
	}
	response.OK(c, org)
}

// UpdateOrganization handles PATCH /organizations/:id. Requires org:edit.
func (h *Handler) UpdateOrganization(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	var body UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "Organization not found")
		return
	}
	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if len(name) < 1 || len(name) > 255 {
			response.BadRequest(c, "name must be 1–255 characters")
			return
		}
		org.Name = name
	}
	if body.Description != nil {
		org.Description = strings.TrimSpace(*body.Description)
	}
	if err := h.repo.Update(c.Request.Context(), org); err != nil {
		response.Internal(c, "failed to update organization")
		return
	}
	response.OK(c, org)
}

// ArchiveOrganization handles DELETE /organizations/:id. Soft archive,
// requires org:archive.
func (h *Handler) ArchiveOrganization(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	if err := h.repo.Archive(c.Request.Context(), orgID); err != nil {
		response.Internal(c, "failed to archive organization")
		return
	}
	response.NoContent(c)
}

// ListMembers handles GET /organizations/:id/members. Requires team:view.
func (h *Handler) ListMembers(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	members, err := h.repo.ListMembers(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load members")
		return
	}
	response.OK(c, members)
}

// ListAssignableRoles handles GET /organizations/:id/assignable-roles.
// Returns the roles the caller may assign, for role pickers.
func (h *Handler) ListAssignableRoles(c *gin.Context) {
	role := c.MustGet(middleware.ContextOrgRole).(permissions.Role)
	roles := permissions.AssignableRoles(role)
	if roles == nil {
		roles = []permissions.Role{}
	}
	response.OK(c, roles)
}

// ChangeMemberRole handles PATCH /organizations/:id/members/:userId.
// Requires team:change_roles; the new role must be assignable by the
// caller's role, and a member may not change their own role.
func (h *Handler) ChangeMemberRole(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	callerRole := c.MustGet(middleware.ContextOrgRole).(permissions.Role)

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if targetID == callerID {
		response.BadRequest(c, "you cannot change your own role")
		return
	}

	var body ChangeRoleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	newRole, ok := permissions.Parse(body.Role)
	if !ok {
		response.BadRequest(c, "unknown role")
		return
	}
	if !roleAssignable(callerRole, newRole) {
		response.Forbidden(c, "you cannot assign this role")
		return
	}

	current, err := h.repo.GetMemberRole(c.Request.Context(), orgID, targetID)
	if err != nil || current == "" {
		response.NotFound(c, "member not found")
		return
	}
	if !roleAssignable(callerRole, current) {
		response.Forbidden(c, "you cannot change a member of equal or senior rank")
		return
	}

	if err := h.repo.UpdateMemberRole(c.Request.Context(), orgID, targetID, newRole); err != nil {
		response.Internal(c, "failed to change role")
		return
	}
	response.OK(c, gin.H{"user_id": targetID, "role": newRole})
}

// RemoveMember handles DELETE /organizations/:id/members/:userId. Requires
// team:remove; equal-or-senior members cannot be removed.
func (h *Handler) RemoveMember(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	callerRole := c.MustGet(middleware.ContextOrgRole).(permissions.Role)

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if targetID == callerID {
		response.BadRequest(c, "you cannot remove yourself")
		return
	}

	current, err := h.repo.GetMemberRole(c.Request.Context(), orgID, targetID)
	if err != nil || current == "" {
		response.NotFound(c, "member not found")
		return
	}
	if !roleAssignable(callerRole, current) {
		response.Forbidden(c, "you cannot remove a member of equal or senior rank")
		return
	}

	if err := h.repo.RemoveMember(c.Request.Context(), orgID, targetID); err != nil {
		response.Internal(c, "failed to remove member")
		return
	}
	response.NoContent(c)
}

// roleAssignable reports whether caller may assign (or act on) the target
// role, per the never-equal-or-senior rule.
func roleAssignable(caller, target permissions.Role) bool {
	for _, r := range permissions.AssignableRoles(caller) {
		if r == target {
			return true
		}
	}
	return false
}

// isDuplicate matches the storage collaborator's unique-violation errors.
func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique")
}
