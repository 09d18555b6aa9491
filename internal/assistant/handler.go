package assistant

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/causeplan/backend/pkg/response"
)

// Handler serves the milestone generation endpoint.
type Handler struct {
	client *Client
	logger *zap.Logger
}

// NewHandler creates an assistant handler. client may be nil when no API
// key is configured; the endpoint then reports the feature as unavailable.
func NewHandler(client *Client, logger *zap.Logger) *Handler {
	return &Handler{client: client, logger: logger}
}

// GenerateRequest is the body for POST /organizations/:id/assistant/milestones.
type GenerateRequest struct {
	Description string `json:"description" binding:"required"`
}

// GenerateMilestones handles POST /organizations/:id/assistant/milestones.
// Gated by template:create since the output feeds template creation. The
// plan is returned for review only; nothing is persisted here.
func (h *Handler) GenerateMilestones(c *gin.Context) {
	if h.client == nil {
		response.UnprocessableEntity(c, "AI assistant is not configured")
		return
	}

	var body GenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "description required")
		return
	}
	description := strings.TrimSpace(body.Description)
	if description == "" {
		response.UnprocessableEntity(c, "description cannot be empty")
		return
	}

	plan, err := h.client.GeneratePlan(c.Request.Context(), description)
	if err != nil {
		if errors.Is(err, ErrUnparseable) {
			h.logger.Warn("assistant output unparseable", zap.Error(err))
			response.BadGateway(c, "could not parse milestones, try again")
			return
		}
		h.logger.Error("assistant generation failed", zap.Error(err))
		response.BadGateway(c, "milestone generation failed, try again")
		return
	}
	response.OK(c, plan)
}
