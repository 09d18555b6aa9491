package emaillogs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/causeplan/backend/internal/models"
)

// Repository handles email_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an email logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert records one outbound email attempt. Called by the worker after
// each send, success or failure.
func (r *Repository) Insert(ctx context.Context, log *models.EmailLog) error {
	const q = `INSERT INTO email_logs
		(organization_id, event_id, milestone_id, recipient, email_type, subject, status, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		log.OrganizationID, log.EventID, log.MilestoneID, log.Recipient,
		log.EmailType, log.Subject, log.Status, log.ErrorMessage).
		Scan(&log.ID, &log.CreatedAt)
}

// ListByEvent returns email logs for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, organization_id, event_id, milestone_id, recipient, email_type, subject, status, error_message, created_at
		FROM email_logs
		WHERE event_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogs(rows)
}

// ListByOrg returns the organization's email logs, newest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.EmailLog, error) {
	const q = `SELECT id, organization_id, event_id, milestone_id, recipient, email_type, subject, status, error_message, created_at
		FROM email_logs
		WHERE organization_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLogs(rows)
}

// ReminderSentSince reports whether a reminder for the milestone was
// already logged after the given time. Used to cap reminders at one per
// day per milestone.
func (r *Repository) ReminderSentSince(ctx context.Context, milestoneID uuid.UUID, since time.Time) (bool, error) {
	const q = `SELECT EXISTS (
		SELECT 1 FROM email_logs
		WHERE milestone_id = $1 AND email_type = $2 AND created_at > $3)`
	var exists bool
	err := r.pool.QueryRow(ctx, q, milestoneID, models.EmailTypeReminder, since).Scan(&exists)
	return exists, err
}

func scanLogs(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*models.EmailLog, error) {
	var list []*models.EmailLog
	for rows.Next() {
		var el models.EmailLog
		if err := rows.Scan(&el.ID, &el.OrganizationID, &el.EventID, &el.MilestoneID, &el.Recipient,
			&el.EmailType, &el.Subject, &el.Status, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &el)
	}
	return list, rows.Err()
}
