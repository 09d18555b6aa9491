package organizations

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/permissions"
	"github.com/causeplan/backend/pkg/queue"
	"github.com/causeplan/backend/pkg/response"
)

// InviteHandler handles team invite endpoints.
type InviteHandler struct {
	repo              *Repository
	queue             *queue.Queue
	appBaseURL        string
	inviteExpireHours int
	logger            *zap.Logger
}

// NewInviteHandler creates an invite handler.
func NewInviteHandler(repo *Repository, q *queue.Queue, appBaseURL string, inviteExpireHours int, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{
		repo:              repo,
		queue:             q,
		appBaseURL:        appBaseURL,
		inviteExpireHours: inviteExpireHours,
		logger:            logger,
	}
}

// CreateInviteRequest is the body for POST /organizations/:id/invites.
type CreateInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// CreateInvite handles POST /organizations/:id/invites. Requires
// team:invite; the invited role must be assignable by the caller.
func (h *InviteHandler) CreateInvite(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	callerID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	callerRole := c.MustGet(middleware.ContextOrgRole).(permissions.Role)

	var body CreateInviteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "email and role required")
		return
	}
	role, ok := permissions.Parse(body.Role)
	if !ok {
		response.BadRequest(c, "unknown role")
		return
	}
	if !roleAssignable(callerRole, role) {
		response.Forbidden(c, "you cannot invite at this role")
		return
	}

	inv := &models.Invite{
		OrganizationID: orgID,
		Email:          strings.ToLower(strings.TrimSpace(body.Email)),
		Role:           role,
		Token:          uuid.NewString(),
		InvitedBy:      callerID,
		ExpiresAt:      time.Now().Add(time.Duration(h.inviteExpireHours) * time.Hour),
	}
	if err := h.repo.CreateInvite(c.Request.Context(), inv); err != nil {
		response.Internal(c, "failed to create invite")
		return
	}

	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	payload := queue.InviteEmailPayload{
		OrganizationID: orgID,
		InviteID:       inv.ID,
		RecipientEmail: inv.Email,
		OrgName:        org.Name,
		Role:           string(role),
		AcceptURL:      fmt.Sprintf("%s/invites/%s", h.appBaseURL, inv.Token),
	}
	if err := h.queue.EnqueueInviteEmail(c.Request.Context(), payload); err != nil {
		// The invite row exists; the email can be resent later.
		h.logger.Warn("enqueue invite email", zap.Error(err), zap.String("invite_id", inv.ID.String()))
	}

	response.Created(c, inv)
}

// InvitePreview is the public validation view of an invite.
type InvitePreview struct {
	OrgName  string           `json:"org_name"`
	Email    string           `json:"email"`
	Role     permissions.Role `json:"role"`
	Expired  bool             `json:"expired"`
	Accepted bool             `json:"accepted"`
}

// ValidateInvite handles GET /invites/:token/validate (public).
func (h *InviteHandler) ValidateInvite(c *gin.Context) {
	inv, err := h.repo.GetInviteByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), inv.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	response.OK(c, InvitePreview{
		OrgName:  org.Name,
		Email:    inv.Email,
		Role:     inv.Role,
		Expired:  inv.Expired(time.Now()),
		Accepted: inv.AcceptedAt != nil,
	})
}

// AcceptInvite handles POST /invites/:token/accept. Requires JWT; creates
// the membership with the invited role.
func (h *InviteHandler) AcceptInvite(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	inv, err := h.repo.GetInviteByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.NotFound(c, "invite not found")
		return
	}
	if inv.AcceptedAt != nil {
		response.Conflict(c, "invite already accepted")
		return
	}
	if inv.Expired(time.Now()) {
		response.BadRequest(c, "invite has expired")
		return
	}

	if err := h.repo.AddMember(c.Request.Context(), inv.OrganizationID, userID, inv.Role); err != nil {
		response.Internal(c, "failed to join organization")
		return
	}
	if err := h.repo.MarkInviteAccepted(c.Request.Context(), inv.ID); err != nil {
		h.logger.Warn("mark invite accepted", zap.Error(err), zap.String("invite_id", inv.ID.String()))
	}

	org, err := h.repo.GetByID(c.Request.Context(), inv.OrganizationID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	response.OK(c, org)
}
