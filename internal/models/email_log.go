package models

import (
	"time"

	"github.com/google/uuid"
)

// Email log statuses.
const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)

// Email types.
const (
	EmailTypeInvite   = "invite"
	EmailTypeReminder = "reminder"
)

// EmailLog records one outbound email for audit and resend.
type EmailLog struct {
	ID             uuid.UUID  `json:"id"`
	OrganizationID uuid.UUID  `json:"organization_id"`
	EventID        *uuid.UUID `json:"event_id,omitempty"`
	MilestoneID    *uuid.UUID `json:"milestone_id,omitempty"`
	Recipient      string     `json:"recipient"`
	EmailType      string     `json:"email_type"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
