package milestones

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/causeplan/backend/internal/models"
)

// Repository handles milestone persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a milestones repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetWithOrg returns a milestone together with the organization that owns
// its event, so callers can run the permission check in one round trip.
func (r *Repository) GetWithOrg(ctx context.Context, id uuid.UUID) (*models.Milestone, uuid.UUID, error) {
	const q = `SELECT m.id, m.event_id, m.title, m.description, m.category, m.due_date, m.status, m.assignee_id,
		m.is_ai_generated, m.was_modified, m.sort_order, m.completed_at, m.created_at, m.updated_at,
		e.organization_id
		FROM milestones m
		INNER JOIN events e ON e.id = m.event_id
		WHERE m.id = $1`
	var m models.Milestone
	var category, status string
	var orgID uuid.UUID
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&m.ID, &m.EventID, &m.Title, &m.Description, &category, &m.DueDate, &status,
			&m.AssigneeID, &m.IsAIGenerated, &m.WasModified, &m.SortOrder, &m.CompletedAt,
			&m.CreatedAt, &m.UpdatedAt, &orgID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	m.Category = models.MilestoneCategory(category)
	m.Status = models.MilestoneStatus(status)
	return &m, orgID, nil
}

// Create inserts a milestone onto an event.
func (r *Repository) Create(ctx context.Context, m *models.Milestone) error {
	const q = `INSERT INTO milestones
		(event_id, title, description, category, due_date, status, assignee_id, is_ai_generated, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		m.EventID, m.Title, m.Description, string(m.Category), m.DueDate,
		string(m.Status), m.AssigneeID, m.IsAIGenerated, m.SortOrder).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// Update persists a milestone's editable fields and flags it as modified,
// which keeps it out of future template reconciliation as an exact copy.
func (r *Repository) Update(ctx context.Context, m *models.Milestone) error {
	const q = `UPDATE milestones
		SET title = $2, description = $3, category = $4, due_date = $5, was_modified = TRUE, updated_at = NOW()
		WHERE id = $1 RETURNING was_modified, updated_at`
	return r.pool.QueryRow(ctx, q,
		m.ID, m.Title, m.Description, string(m.Category), m.DueDate).
		Scan(&m.WasModified, &m.UpdatedAt)
}

// UpdateStatus moves a milestone to a new status. Completing stamps
// completed_at; leaving COMPLETED clears it.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MilestoneStatus) (*time.Time, error) {
	var completedAt *time.Time
	const q = `UPDATE milestones
		SET status = $2,
		    completed_at = CASE WHEN $2 = 'COMPLETED' THEN NOW() ELSE NULL END,
		    updated_at = NOW()
		WHERE id = $1 RETURNING completed_at`
	err := r.pool.QueryRow(ctx, q, id, string(status)).Scan(&completedAt)
	return completedAt, err
}

// Assign sets or clears the milestone's assignee.
func (r *Repository) Assign(ctx context.Context, id uuid.UUID, assigneeID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE milestones SET assignee_id = $2, updated_at = NOW() WHERE id = $1`, id, assigneeID)
	return err
}

// Delete removes a milestone.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, id)
	return err
}
