package milestones

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/events"
	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/response"
)

const dateLayout = "2006-01-02"

// Handler handles milestone HTTP endpoints.
type Handler struct {
	repo     *Repository
	resolver middleware.RoleResolver
	logger   *zap.Logger
}

// NewHandler creates a milestones handler.
func NewHandler(repo *Repository, resolver middleware.RoleResolver, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, resolver: resolver, logger: logger}
}

// CreateMilestoneRequest is the body for POST /events/:id/milestones.
// IsAIGenerated is set when the milestone was taken from an assistant
// plan rather than typed in.
type CreateMilestoneRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	DueDate       string     `json:"due_date" binding:"required"` // YYYY-MM-DD
	AssigneeID    *uuid.UUID `json:"assignee_id"`
	IsAIGenerated bool       `json:"is_ai_generated"`
}

// UpdateMilestoneRequest is the body for PATCH /milestones/:id.
type UpdateMilestoneRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	DueDate     *string `json:"due_date"`
}

// ChangeStatusRequest is the body for PATCH /milestones/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignRequest is the body for PATCH /milestones/:id/assign. A null
// assignee_id unassigns.
type AssignRequest struct {
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

// CreateMilestone handles POST /events/:id/milestones. Mounted behind the
// events permission middleware with milestone:create.
func (h *Handler) CreateMilestone(c *gin.Context) {
	event := events.EventFromContext(c)

	var body CreateMilestoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title and due_date required")
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		response.UnprocessableEntity(c, "title cannot be empty")
		return
	}
	dueDate, err := time.Parse(dateLayout, body.DueDate)
	if err != nil {
		response.BadRequest(c, "due_date must be YYYY-MM-DD")
		return
	}
	if body.AssigneeID != nil {
		if !h.isMember(c, event.OrganizationID, *body.AssigneeID) {
			response.UnprocessableEntity(c, "assignee is not a member of this organization")
			return
		}
	}

	m := &models.Milestone{
		EventID:       event.ID,
		Title:         title,
		Description:   strings.TrimSpace(body.Description),
		Category:      models.ParseCategory(body.Category),
		DueDate:       dueDate,
		Status:        models.MilestoneNotStarted,
		AssigneeID:    body.AssigneeID,
		IsAIGenerated: body.IsAIGenerated,
	}
	if err := h.repo.Create(c.Request.Context(), m); err != nil {
		h.logger.Error("create milestone", zap.Error(err))
		response.Internal(c, "failed to create milestone")
		return
	}
	response.Created(c, m)
}

// UpdateMilestone handles PATCH /milestones/:id. Editors with
// milestone:edit can touch any milestone; milestone:edit_own covers only
// milestones assigned to the caller. Any edit marks the milestone modified.
func (h *Handler) UpdateMilestone(c *gin.Context) {
	m, role, userID, ok := h.resolve(c)
	if !ok {
		return
	}
	if !permissions.Has(role, permissions.PermMilestoneEdit) {
		if !permissions.Has(role, permissions.PermMilestoneEditOwn) || !assignedTo(m, userID) {
			response.Forbidden(c, "you cannot edit this milestone")
			return
		}
	}

	var body UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if body.Title != nil {
		title := strings.TrimSpace(*body.Title)
		if title == "" {
			response.UnprocessableEntity(c, "title cannot be empty")
			return
		}
		m.Title = title
	}
	if body.Description != nil {
		m.Description = strings.TrimSpace(*body.Description)
	}
	if body.Category != nil {
		m.Category = models.ParseCategory(*body.Category)
	}
	if body.DueDate != nil {
		d, err := time.Parse(dateLayout, *body.DueDate)
		if err != nil {
			response.BadRequest(c, "due_date must be YYYY-MM-DD")
			return
		}
		m.DueDate = d
	}

	if err := h.repo.Update(c.Request.Context(), m); err != nil {
		response.Internal(c, "failed to update milestone")
		return
	}
	response.OK(c, m)
}

// ChangeStatus handles PATCH /milestones/:id/status. milestone:edit covers
// any milestone; milestone:complete alone covers only the caller's own
// assignments, which is how vendors and volunteers check off their work.
func (h *Handler) ChangeStatus(c *gin.Context) {
	m, role, userID, ok := h.resolve(c)
	if !ok {
		return
	}

	var body ChangeStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status required")
		return
	}
	next := models.MilestoneStatus(body.Status)
	if !models.ValidMilestoneStatus(next) {
		response.UnprocessableEntity(c, "unknown milestone status")
		return
	}

	if !permissions.Has(role, permissions.PermMilestoneEdit) {
		if !permissions.Has(role, permissions.PermMilestoneComplete) || !assignedTo(m, userID) {
			response.Forbidden(c, "you cannot change the status of this milestone")
			return
		}
	}

	completedAt, err := h.repo.UpdateStatus(c.Request.Context(), m.ID, next)
	if err != nil {
		response.Internal(c, "failed to change status")
		return
	}
	m.Status = next
	m.CompletedAt = completedAt
	response.OK(c, m)
}

// AssignMilestone handles PATCH /milestones/:id/assign. Requires
// milestone:assign; the assignee must belong to the same organization.
func (h *Handler) AssignMilestone(c *gin.Context) {
	m, role, _, ok := h.resolve(c)
	if !ok {
		return
	}
	if !permissions.Has(role, permissions.PermMilestoneAssign) {
		response.Forbidden(c, "you cannot assign milestones")
		return
	}

	var body AssignRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if body.AssigneeID != nil {
		orgID := c.MustGet(contextMilestoneOrg).(uuid.UUID)
		if !h.isMember(c, orgID, *body.AssigneeID) {
			response.UnprocessableEntity(c, "assignee is not a member of this organization")
			return
		}
	}

	if err := h.repo.Assign(c.Request.Context(), m.ID, body.AssigneeID); err != nil {
		response.Internal(c, "failed to assign milestone")
		return
	}
	m.AssigneeID = body.AssigneeID
	response.OK(c, m)
}

// DeleteMilestone handles DELETE /milestones/:id. Requires
// milestone:delete.
func (h *Handler) DeleteMilestone(c *gin.Context) {
	m, role, _, ok := h.resolve(c)
	if !ok {
		return
	}
	if !permissions.Has(role, permissions.PermMilestoneDelete) {
		response.Forbidden(c, "you cannot delete milestones")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), m.ID); err != nil {
		response.Internal(c, "failed to delete milestone")
		return
	}
	response.NoContent(c)
}

const contextMilestoneOrg = "milestone_org_id"

// resolve loads the :id milestone, resolves the caller's role in the
// owning organization, and rejects non-members. Returns ok=false after it
// has already written the error response.
func (h *Handler) resolve(c *gin.Context) (*models.Milestone, permissions.Role, uuid.UUID, bool) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid milestone id")
		return nil, "", uuid.Nil, false
	}
	m, orgID, err := h.repo.GetWithOrg(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "milestone not found")
		return nil, "", uuid.Nil, false
	}
	role, err := h.resolver.GetMemberRole(c.Request.Context(), orgID, userID)
	if err != nil {
		response.Internal(c, "failed to resolve membership")
		return nil, "", uuid.Nil, false
	}
	if role == "" {
		response.Forbidden(c, "you are not a member of this organization")
		return nil, "", uuid.Nil, false
	}
	c.Set(contextMilestoneOrg, orgID)
	return m, role, userID, true
}

func (h *Handler) isMember(c *gin.Context, orgID, userID uuid.UUID) bool {
	role, err := h.resolver.GetMemberRole(c.Request.Context(), orgID, userID)
	return err == nil && role != ""
}

func assignedTo(m *models.Milestone, userID uuid.UUID) bool {
	return m.AssigneeID != nil && *m.AssigneeID == userID
}
