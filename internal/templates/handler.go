package templates

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/pkg/response"
)

// EventSource provides the event-side reads the diff and reconcile
// endpoints need. Implemented by the events repository.
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListMilestones(ctx context.Context, eventID uuid.UUID) ([]models.Milestone, error)
}

// Handler handles template HTTP endpoints.
type Handler struct {
	repo   *Repository
	events EventSource
	logger *zap.Logger
}

// NewHandler creates a templates handler.
func NewHandler(repo *Repository, events EventSource, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, events: events, logger: logger}
}

// MilestoneTemplateInput is one milestone definition in a create request.
// IsAIGenerated is set by the client when the entry came from an assistant
// plan.
type MilestoneTemplateInput struct {
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	DaysBeforeEvent int      `json:"days_before_event"`
	EstimatedHours  *float64 `json:"estimated_hours"`
	IsAIGenerated   bool     `json:"is_ai_generated"`
}

// CreateTemplateRequest is the body for POST /organizations/:id/templates.
type CreateTemplateRequest struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Milestones  []MilestoneTemplateInput `json:"milestones" binding:"required"`
}

// TemplateDetail is a template with its current version's milestones.
type TemplateDetail struct {
	*models.Template
	Milestones []models.MilestoneTemplate `json:"milestones"`
}

// VersionDetail is a version with its milestone snapshot.
type VersionDetail struct {
	*models.TemplateVersion
	Milestones []models.MilestoneTemplate `json:"milestones"`
}

// CreateTemplate handles POST /organizations/:id/templates. Requires
// template:create.
func (h *Handler) CreateTemplate(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var body CreateTemplateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and milestones required")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		response.UnprocessableEntity(c, "template name is required")
		return
	}
	if len(body.Milestones) == 0 {
		response.UnprocessableEntity(c, "a template needs at least one milestone")
		return
	}

	milestones := make([]models.MilestoneTemplate, 0, len(body.Milestones))
	for _, in := range body.Milestones {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			response.UnprocessableEntity(c, "every milestone needs a title")
			return
		}
		if in.DaysBeforeEvent < 0 {
			response.UnprocessableEntity(c, "days_before_event must not be negative")
			return
		}
		milestones = append(milestones, models.MilestoneTemplate{
			Title:           title,
			Description:     strings.TrimSpace(in.Description),
			Category:        models.ParseCategory(in.Category),
			DaysBeforeEvent: in.DaysBeforeEvent,
			EstimatedHours:  in.EstimatedHours,
			IsAIGenerated:   in.IsAIGenerated,
		})
	}
	sort.SliceStable(milestones, func(i, j int) bool {
		return milestones[i].DaysBeforeEvent > milestones[j].DaysBeforeEvent
	})
	for i := range milestones {
		milestones[i].SortOrder = i
	}

	tmpl := &models.Template{
		OrganizationID: orgID,
		Name:           body.Name,
		Description:    strings.TrimSpace(body.Description),
		CreatedBy:      userID,
	}
	if err := h.repo.CreateWithInitialVersion(c.Request.Context(), tmpl, milestones); err != nil {
		if isDuplicate(err) {
			response.Conflict(c, "A template with this name already exists")
			return
		}
		h.logger.Error("create template", zap.Error(err))
		response.Internal(c, "failed to create template")
		return
	}
	response.Created(c, tmpl)
}

// ListTemplates handles GET /organizations/:id/templates. Requires
// template:view.
func (h *Handler) ListTemplates(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	list, err := h.repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load templates")
		return
	}
	response.OK(c, list)
}

// GetTemplate handles GET /templates/:id. Requires template:view.
func (h *Handler) GetTemplate(c *gin.Context) {
	tmpl := c.MustGet(ContextTemplate).(*models.Template)
	milestones, err := h.repo.CurrentMilestones(c.Request.Context(), tmpl.ID)
	if err != nil {
		response.Internal(c, "failed to load template milestones")
		return
	}
	response.OK(c, TemplateDetail{Template: tmpl, Milestones: milestones})
}

// ListVersions handles GET /templates/:id/versions. Requires template:view.
func (h *Handler) ListVersions(c *gin.Context) {
	tmpl := c.MustGet(ContextTemplate).(*models.Template)
	versions, err := h.repo.ListVersions(c.Request.Context(), tmpl.ID)
	if err != nil {
		response.Internal(c, "failed to load versions")
		return
	}
	response.OK(c, versions)
}

// DeactivateTemplate handles DELETE /templates/:id. Requires
// template:delete. Soft delete; events keep their pinned versions.
func (h *Handler) DeactivateTemplate(c *gin.Context) {
	tmpl := c.MustGet(ContextTemplate).(*models.Template)
	if err := h.repo.Deactivate(c.Request.Context(), tmpl.ID); err != nil {
		response.Internal(c, "failed to deactivate template")
		return
	}
	response.NoContent(c)
}

// EventTemplateDiff handles GET /events/:id/template-diff. Requires
// template:view on the event's organization (enforced by the events
// middleware). An event without a template cannot be diffed.
func (h *Handler) EventTemplateDiff(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if event.TemplateID == nil {
		response.UnprocessableEntity(c, "this event has no template")
		return
	}

	eventMilestones, err := h.events.ListMilestones(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load event milestones")
		return
	}
	templateMilestones, err := h.repo.CurrentMilestones(c.Request.Context(), *event.TemplateID)
	if err != nil {
		response.Internal(c, "failed to load template milestones")
		return
	}

	diffs := Diff(eventMilestones, templateMilestones)
	if diffs == nil {
		diffs = []MilestoneDiff{}
	}
	response.OK(c, gin.H{
		"template_id": *event.TemplateID,
		"event_id":    event.ID,
		"diffs":       diffs,
	})
}

// DiffSelection identifies one confirmed diff entry by type and title.
type DiffSelection struct {
	Type  DiffType `json:"type" binding:"required"`
	Title string   `json:"title" binding:"required"`
}

// CreateVersionRequest is the body for POST /templates/:id/versions.
type CreateVersionRequest struct {
	EventID    uuid.UUID       `json:"event_id" binding:"required"`
	Selections []DiffSelection `json:"selections"`
}

// CreateVersion handles POST /templates/:id/versions. Requires
// template:version. Recomputes the diff server-side and applies only the
// confirmed entries, so a stale client cannot smuggle in arbitrary rows.
func (h *Handler) CreateVersion(c *gin.Context) {
	tmpl := c.MustGet(ContextTemplate).(*models.Template)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var body CreateVersionRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "event_id and selections required")
		return
	}
	if len(body.Selections) == 0 {
		response.UnprocessableEntity(c, "no changes selected")
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), body.EventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	if event.OrganizationID != tmpl.OrganizationID {
		response.Forbidden(c, "event belongs to a different organization")
		return
	}
	if event.TemplateID == nil || *event.TemplateID != tmpl.ID {
		response.UnprocessableEntity(c, "event was not created from this template")
		return
	}

	eventMilestones, err := h.events.ListMilestones(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load event milestones")
		return
	}
	current, err := h.repo.CurrentMilestones(c.Request.Context(), tmpl.ID)
	if err != nil {
		response.Internal(c, "failed to load template milestones")
		return
	}

	diffs := Diff(eventMilestones, current)
	selected := matchSelections(diffs, body.Selections)
	if len(selected) == 0 {
		response.UnprocessableEntity(c, "no changes selected")
		return
	}

	milestones, changelog, err := ApplyDiffs(current, selected, event.EventDate)
	if err != nil {
		if errors.Is(err, ErrNoDiffsSelected) {
			response.UnprocessableEntity(c, "no changes selected")
			return
		}
		response.Internal(c, "failed to apply changes")
		return
	}

	version, err := h.repo.CreateVersion(c.Request.Context(), tmpl.ID, userID, milestones, changelog)
	if err != nil {
		if isDuplicate(err) {
			response.Conflict(c, "template was updated by someone else, reload and try again")
			return
		}
		h.logger.Error("create version", zap.Error(err), zap.String("template_id", tmpl.ID.String()))
		response.Internal(c, "failed to create version")
		return
	}

	response.Created(c, VersionDetail{TemplateVersion: version, Milestones: milestones})
}

// matchSelections filters the recomputed diff down to the entries the user
// confirmed, preserving selection order for the changelog. Repeated
// selections of the same entry collapse to one, so a doubled request
// cannot apply a diff twice.
func matchSelections(diffs []MilestoneDiff, selections []DiffSelection) []MilestoneDiff {
	type selKey struct {
		t     DiffType
		title string
	}
	seen := make(map[selKey]struct{}, len(selections))
	var out []MilestoneDiff
	for _, sel := range selections {
		key := selKey{t: sel.Type, title: strings.ToLower(sel.Title)}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		for _, d := range diffs {
			if d.Type == sel.Type && strings.EqualFold(d.Title, sel.Title) {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func isDuplicate(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique")
}
