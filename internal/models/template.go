package models

import (
	"time"

	"github.com/google/uuid"
)

// Template is a named, versioned, reusable milestone checklist scoped to
// an organization.
type Template struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	CurrentVersion int       `json:"current_version"`
	IsActive       bool      `json:"is_active"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TemplateVersion is an immutable snapshot of a template's milestone set.
// Once written, its milestone rows never change; corrections create a new
// version.
type TemplateVersion struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Version    int       `json:"version"`
	Changelog  string    `json:"changelog"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// MilestoneTemplate is one milestone definition within a template version.
// DaysBeforeEvent is the non-negative lead-time offset applied when an
// event copies the template. IsAIGenerated marks entries that came from an
// assistant plan and follows the milestone through every copy.
type MilestoneTemplate struct {
	ID              uuid.UUID         `json:"id"`
	VersionID       uuid.UUID         `json:"version_id"`
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	Category        MilestoneCategory `json:"category"`
	DaysBeforeEvent int               `json:"days_before_event"`
	EstimatedHours  *float64          `json:"estimated_hours,omitempty"`
	IsAIGenerated   bool              `json:"is_ai_generated"`
	SortOrder       int               `json:"sort_order"`
}
