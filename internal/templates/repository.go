package templates

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/causeplan/backend/internal/models"
)

// Repository handles template, version, and milestone-template persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a templates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateWithInitialVersion creates a template and its version 1 snapshot
// in one transaction.
func (r *Repository) CreateWithInitialVersion(ctx context.Context, tmpl *models.Template, milestones []models.MilestoneTemplate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertTemplate = `INSERT INTO templates (organization_id, name, description, current_version, created_by)
		VALUES ($1, $2, $3, 1, $4)
		RETURNING id, is_active, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTemplate, tmpl.OrganizationID, tmpl.Name, tmpl.Description, tmpl.CreatedBy).
		Scan(&tmpl.ID, &tmpl.IsActive, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
		return err
	}
	tmpl.CurrentVersion = 1

	if _, err := insertVersionTx(ctx, tx, tmpl.ID, 1, "Initial version", tmpl.CreatedBy, milestones); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetByID returns a template by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	const q = `SELECT id, organization_id, name, description, current_version, is_active, created_by, created_at, updated_at
		FROM templates WHERE id = $1`
	var t models.Template
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CurrentVersion, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByOrg returns the organization's active templates.
func (r *Repository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*models.Template, error) {
	const q = `SELECT id, organization_id, name, description, current_version, is_active, created_by, created_at, updated_at
		FROM templates WHERE organization_id = $1 AND is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Template
	for rows.Next() {
		var t models.Template
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &t.Description, &t.CurrentVersion, &t.IsActive, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// Deactivate soft-deletes a template. Events keep their pinned versions.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE templates SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListVersions returns a template's versions, newest first.
func (r *Repository) ListVersions(ctx context.Context, templateID uuid.UUID) ([]*models.TemplateVersion, error) {
	const q = `SELECT id, template_id, version, changelog, created_by, created_at
		FROM template_versions WHERE template_id = $1 ORDER BY version DESC`
	rows, err := r.pool.Query(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.TemplateVersion
	for rows.Next() {
		var v models.TemplateVersion
		if err := rows.Scan(&v.ID, &v.TemplateID, &v.Version, &v.Changelog, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

// GetVersion returns one version of a template.
func (r *Repository) GetVersion(ctx context.Context, templateID uuid.UUID, version int) (*models.TemplateVersion, error) {
	const q = `SELECT id, template_id, version, changelog, created_by, created_at
		FROM template_versions WHERE template_id = $1 AND version = $2`
	var v models.TemplateVersion
	err := r.pool.QueryRow(ctx, q, templateID, version).
		Scan(&v.ID, &v.TemplateID, &v.Version, &v.Changelog, &v.CreatedBy, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MilestonesForVersion returns a version's milestone templates in stored
// order.
func (r *Repository) MilestonesForVersion(ctx context.Context, versionID uuid.UUID) ([]models.MilestoneTemplate, error) {
	const q = `SELECT id, version_id, title, description, category, days_before_event, estimated_hours, is_ai_generated, sort_order
		FROM milestone_templates WHERE version_id = $1 ORDER BY sort_order, title`
	rows, err := r.pool.Query(ctx, q, versionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MilestoneTemplate
	for rows.Next() {
		var mt models.MilestoneTemplate
		var category string
		if err := rows.Scan(&mt.ID, &mt.VersionID, &mt.Title, &mt.Description, &category, &mt.DaysBeforeEvent, &mt.EstimatedHours, &mt.IsAIGenerated, &mt.SortOrder); err != nil {
			return nil, err
		}
		mt.Category = models.MilestoneCategory(category)
		list = append(list, mt)
	}
	return list, rows.Err()
}

// CurrentMilestones returns the milestone set of the template's current
// version.
func (r *Repository) CurrentMilestones(ctx context.Context, templateID uuid.UUID) ([]models.MilestoneTemplate, error) {
	tmpl, err := r.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	v, err := r.GetVersion(ctx, templateID, tmpl.CurrentVersion)
	if err != nil {
		return nil, err
	}
	return r.MilestonesForVersion(ctx, v.ID)
}

// CreateVersion persists a new immutable version with the given milestone
// set and bumps the template's current_version pointer, all in one
// transaction. The template row is locked for the duration and the
// (template_id, version) unique constraint rejects a concurrent writer, so
// two calls can never interleave into an inconsistent milestone list.
func (r *Repository) CreateVersion(ctx context.Context, templateID, createdBy uuid.UUID, milestones []models.MilestoneTemplate, changelog string) (*models.TemplateVersion, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var current int
	if err := tx.QueryRow(ctx,
		`SELECT current_version FROM templates WHERE id = $1 FOR UPDATE`, templateID).
		Scan(&current); err != nil {
		return nil, err
	}
	next := current + 1

	if _, err := insertVersionTx(ctx, tx, templateID, next, changelog, createdBy, milestones); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE templates SET current_version = $2, updated_at = NOW() WHERE id = $1`,
		templateID, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetVersion(ctx, templateID, next)
}

func insertVersionTx(ctx context.Context, tx pgx.Tx, templateID uuid.UUID, version int, changelog string, createdBy uuid.UUID, milestones []models.MilestoneTemplate) (uuid.UUID, error) {
	var versionID uuid.UUID
	const insertVersion = `INSERT INTO template_versions (template_id, version, changelog, created_by)
		VALUES ($1, $2, $3, $4) RETURNING id`
	if err := tx.QueryRow(ctx, insertVersion, templateID, version, changelog, createdBy).Scan(&versionID); err != nil {
		return uuid.Nil, err
	}

	const insertMilestone = `INSERT INTO milestone_templates
		(version_id, title, description, category, days_before_event, estimated_hours, is_ai_generated, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, mt := range milestones {
		if _, err := tx.Exec(ctx, insertMilestone,
			versionID, mt.Title, mt.Description, string(mt.Category), mt.DaysBeforeEvent, mt.EstimatedHours, mt.IsAIGenerated, i); err != nil {
			return uuid.Nil, err
		}
	}
	return versionID, nil
}
