package events

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/causeplan/backend/internal/middleware"
	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/templates"
	"github.com/causeplan/backend/pkg/response"
)

// dateLayout is the wire format for event and milestone dates.
const dateLayout = "2006-01-02"

// Handler handles event HTTP endpoints.
type Handler struct {
	repo      *Repository
	templates *templates.Repository
	logger    *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository, templateRepo *templates.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, templates: templateRepo, logger: logger}
}

// CreateEventRequest is the body for POST /organizations/:id/events.
type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	EventDate   string     `json:"event_date" binding:"required"` // YYYY-MM-DD
	TemplateID  *uuid.UUID `json:"template_id"`
}

// UpdateEventRequest is the body for PATCH /events/:id.
type UpdateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	EventDate   *string `json:"event_date"`
}

// ChangeStatusRequest is the body for PATCH /events/:id/status.
type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// EventDetail is an event with its milestones.
type EventDetail struct {
	*models.Event
	Milestones []models.Milestone `json:"milestones"`
}

// CreateEvent handles POST /organizations/:id/events. Requires
// event:create. When a template is given, the current version's milestones
// are copied onto the event with due dates computed from the event date,
// and the version is pinned on the event.
func (h *Handler) CreateEvent(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	var body CreateEventRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "title and event_date required")
		return
	}
	eventDate, err := time.Parse(dateLayout, body.EventDate)
	if err != nil {
		response.BadRequest(c, "event_date must be YYYY-MM-DD")
		return
	}

	event := &models.Event{
		OrganizationID: orgID,
		Title:          strings.TrimSpace(body.Title),
		Description:    strings.TrimSpace(body.Description),
		Location:       strings.TrimSpace(body.Location),
		EventDate:      eventDate,
		Status:         models.EventPlanning,
		CreatedBy:      userID,
	}

	var milestones []models.Milestone
	if body.TemplateID != nil {
		tmpl, err := h.templates.GetByID(c.Request.Context(), *body.TemplateID)
		if err != nil {
			response.NotFound(c, "template not found")
			return
		}
		if tmpl.OrganizationID != orgID {
			response.Forbidden(c, "template belongs to a different organization")
			return
		}
		if !tmpl.IsActive {
			response.UnprocessableEntity(c, "template is no longer active")
			return
		}
		version, err := h.templates.GetVersion(c.Request.Context(), tmpl.ID, tmpl.CurrentVersion)
		if err != nil {
			response.Internal(c, "failed to load template version")
			return
		}
		templateMilestones, err := h.templates.MilestonesForVersion(c.Request.Context(), version.ID)
		if err != nil {
			response.Internal(c, "failed to load template milestones")
			return
		}
		event.TemplateID = &tmpl.ID
		event.TemplateVersionID = &version.ID
		milestones = CopyFromTemplate(templateMilestones, eventDate)
	}

	if err := h.repo.Create(c.Request.Context(), event, milestones); err != nil {
		h.logger.Error("create event", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}

	created, err := h.repo.ListMilestones(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load event milestones")
		return
	}
	response.Created(c, EventDetail{Event: event, Milestones: created})
}

// ListEvents handles GET /organizations/:id/events. Requires event:view.
func (h *Handler) ListEvents(c *gin.Context) {
	orgID := c.MustGet(middleware.ContextOrgID).(uuid.UUID)
	list, err := h.repo.ListByOrg(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// GetEvent handles GET /events/:id. Requires event:view.
func (h *Handler) GetEvent(c *gin.Context) {
	event := EventFromContext(c)
	milestones, err := h.repo.ListMilestones(c.Request.Context(), event.ID)
	if err != nil {
		response.Internal(c, "failed to load event milestones")
		return
	}
	response.OK(c, EventDetail{Event: event, Milestones: milestones})
}

// UpdateEvent handles PATCH /events/:id. Requires event:edit. Changing the
// event date does not shift existing milestone due dates; those stay owned
// by the event.
func (h *Handler) UpdateEvent(c *gin.Context) {
	event := EventFromContext(c)

	var body UpdateEventRequest
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
		event.Title = title
	}
	if body.Description != nil {
		event.Description = strings.TrimSpace(*body.Description)
	}
	if body.Location != nil {
		event.Location = strings.TrimSpace(*body.Location)
	}
	if body.EventDate != nil {
		d, err := time.Parse(dateLayout, *body.EventDate)
		if err != nil {
			response.BadRequest(c, "event_date must be YYYY-MM-DD")
			return
		}
		event.EventDate = d
	}

	if err := h.repo.Update(c.Request.Context(), event); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, event)
}

// ChangeStatus handles PATCH /events/:id/status. Requires
// event:change_status and a legal transition.
func (h *Handler) ChangeStatus(c *gin.Context) {
	event := EventFromContext(c)

	var body ChangeStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "status required")
		return
	}
	next := models.EventStatus(body.Status)
	if !models.CanTransitionEvent(event.Status, next) {
		response.UnprocessableEntity(c, "cannot move event from "+string(event.Status)+" to "+body.Status)
		return
	}
	if err := h.repo.UpdateStatus(c.Request.Context(), event.ID, next); err != nil {
		response.Internal(c, "failed to change status")
		return
	}
	event.Status = next
	response.OK(c, event)
}

// DeleteEvent handles DELETE /events/:id. Requires event:delete.
func (h *Handler) DeleteEvent(c *gin.Context) {
	event := EventFromContext(c)
	if err := h.repo.Delete(c.Request.Context(), event.ID); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// CopyFromTemplate derives an event's initial milestones from a template
// version's milestone set. Due dates are fixed at copy time as the event
// date minus each entry's lead-time offset; after this the event owns its
// milestones independently of the template.
func CopyFromTemplate(templateMilestones []models.MilestoneTemplate, eventDate time.Time) []models.Milestone {
	out := make([]models.Milestone, 0, len(templateMilestones))
	for i, mt := range templateMilestones {
		out = append(out, models.Milestone{
			Title:         mt.Title,
			Description:   mt.Description,
			Category:      mt.Category,
			DueDate:       eventDate.AddDate(0, 0, -mt.DaysBeforeEvent),
			Status:        models.MilestoneNotStarted,
			IsAIGenerated: mt.IsAIGenerated,
			SortOrder:     i,
		})
	}
	return out
}
