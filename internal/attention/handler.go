package attention

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/pkg/response"
)

// TriageSource provides the organization-wide milestone and event snapshot
// the engine runs over. Implemented by the events repository.
type TriageSource interface {
	ListByOrgForTriage(ctx context.Context, orgID uuid.UUID) ([]models.Milestone, []*models.Event, error)
}

// Handler serves the attention dashboard endpoint.
type Handler struct {
	source TriageSource
	logger *zap.Logger
}

// NewHandler creates an attention handler.
func NewHandler(source TriageSource, logger *zap.Logger) *Handler {
	return &Handler{source: source, logger: logger}
}

// GetAttention handles GET /organizations/:id/attention. Requires
// milestone:view, which every role holds.
func (h *Handler) GetAttention(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)

	milestones, events, err := h.source.ListByOrgForTriage(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("load triage snapshot", zap.Error(err), zap.String("org_id", orgID.String()))
		response.Internal(c, "failed to load attention items")
		return
	}

	response.OK(c, Build(milestones, events, time.Now()))
}
