package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/causeplan/backend/internal/models"
)

// Repository handles event persistence and event-scoped milestone reads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an event and its initial milestones (copied from a
// template version, or empty for a blank event) in one transaction.
func (r *Repository) Create(ctx context.Context, event *models.Event, milestones []models.Milestone) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertEvent = `INSERT INTO events
		(organization_id, template_id, template_version_id, title, description, location, event_date, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertEvent,
		event.OrganizationID, event.TemplateID, event.TemplateVersionID,
		event.Title, event.Description, event.Location, event.EventDate,
		string(event.Status), event.CreatedBy).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt); err != nil {
		return err
	}

	const insertMilestone = `INSERT INTO milestones
		(event_id, title, description, category, due_date, status, is_ai_generated, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, m := range milestones {
		if _, err := tx.Exec(ctx, insertMilestone,
			event.ID, m.Title, m.Description, string(m.Category), m.DueDate,
			string(models.MilestoneNotStarted), m.IsAIGenerated, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	const q = `SELECT id, organization_id, template_id, template_version_id, title, description, location,
		event_date, status, created_by, created_at, updated_at
		FROM events WHERE id = $1`
	var e models.Event
	var status string
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&e.ID, &e.OrganizationID, &e.TemplateID, &e.TemplateVersionID, &e.Title, &e.Description,
			&e.Location, &e.EventDate, &status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Status = models.EventStatus(status)
	return &e, nil
}

// ListByOrg returns the organization's events, soonest first.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Event, error) {
	const q = `SELECT id, organization_id, template_id, template_version_id, title, description, location,
		event_date, status, created_by, created_at, updated_at
		FROM events WHERE organization_id = $1 ORDER BY event_date ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Event
	for rows.Next() {
		var e models.Event
		var status string
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.TemplateID, &e.TemplateVersionID, &e.Title,
			&e.Description, &e.Location, &e.EventDate, &status, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Status = models.EventStatus(status)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// Update persists an event's editable fields.
func (r *Repository) Update(ctx context.Context, event *models.Event) error {
	const q = `UPDATE events SET title = $2, description = $3, location = $4, event_date = $5, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q,
		event.ID, event.Title, event.Description, event.Location, event.EventDate).
		Scan(&event.UpdatedAt)
}

// UpdateStatus moves an event to a new status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.EventStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE events SET status = $2, updated_at = NOW() WHERE id = $1`, id, string(status))
	return err
}

// Delete removes an event and, via cascade, its milestones.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}

// ListMilestones returns an event's milestones in sort order.
func (r *Repository) ListMilestones(ctx context.Context, eventID uuid.UUID) ([]models.Milestone, error) {
	const q = `SELECT id, event_id, title, description, category, due_date, status, assignee_id,
		is_ai_generated, was_modified, sort_order, completed_at, created_at, updated_at
		FROM milestones WHERE event_id = $1 ORDER BY sort_order, due_date`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMilestones(rows)
}

// ListByOrgForTriage returns all open milestones in the organization with
// their events, for the attention dashboard.
func (r *Repository) ListByOrgForTriage(ctx context.Context, orgID uuid.UUID) ([]models.Milestone, []*models.Event, error) {
	events, err := r.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, nil, err
	}
	const q = `SELECT m.id, m.event_id, m.title, m.description, m.category, m.due_date, m.status, m.assignee_id,
		m.is_ai_generated, m.was_modified, m.sort_order, m.completed_at, m.created_at, m.updated_at
		FROM milestones m
		INNER JOIN events e ON e.id = m.event_id
		WHERE e.organization_id = $1
		ORDER BY m.due_date`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	milestones, err := scanMilestones(rows)
	if err != nil {
		return nil, nil, err
	}
	return milestones, events, nil
}

// ListOrgIDsWithOpenMilestones returns the organizations that have at
// least one milestone still open, for the reminder sweep.
func (r *Repository) ListOrgIDsWithOpenMilestones(ctx context.Context) ([]uuid.UUID, error) {
	const q = `SELECT DISTINCT e.organization_id
		FROM milestones m
		INNER JOIN events e ON e.id = m.event_id
		WHERE m.status NOT IN ('COMPLETED', 'SKIPPED')`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMilestones(rows rowScanner) ([]models.Milestone, error) {
	var list []models.Milestone
	for rows.Next() {
		var m models.Milestone
		var category, status string
		if err := rows.Scan(&m.ID, &m.EventID, &m.Title, &m.Description, &category, &m.DueDate, &status,
			&m.AssigneeID, &m.IsAIGenerated, &m.WasModified, &m.SortOrder, &m.CompletedAt,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		m.Category = models.MilestoneCategory(category)
		m.Status = models.MilestoneStatus(status)
		list = append(list, m)
	}
	return list, rows.Err()
}
