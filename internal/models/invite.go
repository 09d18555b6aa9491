package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/causeplan/backend/internal/permissions"
)

// Invite is a pending offer of organization membership, accepted by token.
type Invite struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	Email          string           `json:"email"`
	Role           permissions.Role `json:"role"`
	Token          string           `json:"token"`
	InvitedBy      uuid.UUID        `json:"invited_by"`
	AcceptedAt     *time.Time       `json:"accepted_at,omitempty"`
	ExpiresAt      time.Time        `json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Expired reports whether the invite is past its expiry.
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
