package models

import (
	"time"

	"github.com/google/uuid"
)

// MilestoneCategory groups milestones by planning area.
type MilestoneCategory string

const (
	CategoryVenue      MilestoneCategory = "VENUE"
	CategoryCatering   MilestoneCategory = "CATERING"
	CategoryMarketing  MilestoneCategory = "MARKETING"
	CategoryLogistics  MilestoneCategory = "LOGISTICS"
	CategoryPermits    MilestoneCategory = "PERMITS"
	CategorySponsors   MilestoneCategory = "SPONSORS"
	CategoryVolunteers MilestoneCategory = "VOLUNTEERS"
	CategoryGeneral    MilestoneCategory = "GENERAL"
)

// ParseCategory maps a raw string to a category, falling back to GENERAL
// for anything unrecognized.
func ParseCategory(s string) MilestoneCategory {
	switch MilestoneCategory(s) {
	case CategoryVenue, CategoryCatering, CategoryMarketing, CategoryLogistics,
		CategoryPermits, CategorySponsors, CategoryVolunteers, CategoryGeneral:
		return MilestoneCategory(s)
	}
	return CategoryGeneral
}

// MilestoneStatus is the lifecycle state of a milestone.
type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "NOT_STARTED"
	MilestoneInProgress MilestoneStatus = "IN_PROGRESS"
	MilestoneBlocked    MilestoneStatus = "BLOCKED"
	MilestoneCompleted  MilestoneStatus = "COMPLETED"
	MilestoneSkipped    MilestoneStatus = "SKIPPED"
)

// ValidMilestoneStatus reports whether s is a defined milestone status.
func ValidMilestoneStatus(s MilestoneStatus) bool {
	switch s {
	case MilestoneNotStarted, MilestoneInProgress, MilestoneBlocked, MilestoneCompleted, MilestoneSkipped:
		return true
	}
	return false
}

// Milestone is a single dated task owned by one event. Due date is fixed
// at copy time as event_date minus the template's days_before_event.
type Milestone struct {
	ID            uuid.UUID         `json:"id"`
	EventID       uuid.UUID         `json:"event_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description,omitempty"`
	Category      MilestoneCategory `json:"category"`
	DueDate       time.Time         `json:"due_date"`
	Status        MilestoneStatus   `json:"status"`
	AssigneeID    *uuid.UUID        `json:"assignee_id,omitempty"`
	IsAIGenerated bool              `json:"is_ai_generated"`
	WasModified   bool              `json:"was_modified"`
	SortOrder     int               `json:"sort_order"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
