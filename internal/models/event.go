package models

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventPlanning  EventStatus = "PLANNING"
	EventActive    EventStatus = "ACTIVE"
	EventCompleted EventStatus = "COMPLETED"
	EventCancelled EventStatus = "CANCELLED"
	EventArchived  EventStatus = "ARCHIVED"
)

// eventTransitions maps each status to the statuses it may move to.
// ARCHIVED is terminal.
var eventTransitions = map[EventStatus][]EventStatus{
	EventPlanning:  {EventActive, EventCancelled},
	EventActive:    {EventCompleted, EventCancelled},
	EventCompleted: {EventArchived},
	EventCancelled: {EventArchived},
	EventArchived:  {},
}

// CanTransitionEvent reports whether an event may move from one status to
// another.
func CanTransitionEvent(from, to EventStatus) bool {
	for _, next := range eventTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Event belongs to an organization, optionally traces back to the template
// version in effect when it was created, and owns its milestone list.
type Event struct {
	ID                uuid.UUID   `json:"id"`
	OrganizationID    uuid.UUID   `json:"organization_id"`
	TemplateID        *uuid.UUID  `json:"template_id,omitempty"`
	TemplateVersionID *uuid.UUID  `json:"template_version_id,omitempty"`
	Title             string      `json:"title"`
	Description       string      `json:"description,omitempty"`
	Location          string      `json:"location,omitempty"`
	EventDate         time.Time   `json:"event_date"`
	Status            EventStatus `json:"status"`
	CreatedBy         uuid.UUID   `json:"created_by"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
