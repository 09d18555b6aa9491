package organizations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/causeplan/backend/internal/models"
	"github.com/causeplan/backend/internal/permissions"
)

// Repository handles organization, membership, and invite persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create creates an organization.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, is_archived, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, org.Name, org.Slug, org.Description).
		Scan(&org.ID, &org.IsArchived, &org.CreatedAt, &org.UpdatedAt)
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, description, is_archived, created_at, updated_at
		FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&org.ID, &org.Name, &org.Slug, &org.Description, &org.IsArchived, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Update updates an organization's name and description.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	const q = `UPDATE organizations SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, org.ID, org.Name, org.Description).Scan(&org.UpdatedAt)
}

// Archive soft-archives an organization.
func (r *Repository) Archive(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE organizations SET is_archived = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListForUser returns organizations the user is a member of.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Organization, error) {
	const q = `SELECT o.id, o.name, o.slug, o.description, o.is_archived, o.created_at, o.updated_at
		FROM organizations o
		INNER JOIN organization_members m ON m.organization_id = o.id
		WHERE m.user_id = $1
		ORDER BY o.name`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.IsArchived, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &o)
	}
	return list, rows.Err()
}

// AddMember adds a user to an organization with a role, updating the role
// if the membership already exists.
func (r *Repository) AddMember(ctx context.Context, orgID, userID uuid.UUID, role permissions.Role) error {
	const q = `INSERT INTO organization_members (organization_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (organization_id, user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()`
	_, err := r.pool.Exec(ctx, q, orgID, userID, string(role))
	return err
}

// GetMemberRole returns the user's role in the organization, or empty if
// not a member.
func (r *Repository) GetMemberRole(ctx context.Context, orgID, userID uuid.UUID) (permissions.Role, error) {
	const q = `SELECT role FROM organization_members WHERE organization_id = $1 AND user_id = $2`
	var role string
	err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return permissions.Role(role), nil
}

// UpdateMemberRole changes a member's role.
func (r *Repository) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role permissions.Role) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE organization_members SET role = $3, updated_at = NOW()
		WHERE organization_id = $1 AND user_id = $2`, orgID, userID, string(role))
	return err
}

// RemoveMember deletes a membership.
func (r *Repository) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM organization_members WHERE organization_id = $1 AND user_id = $2`, orgID, userID)
	return err
}

// Member represents an organization member with user details.
type Member struct {
	ID       uuid.UUID        `json:"id"`
	UserID   uuid.UUID        `json:"user_id"`
	Email    string           `json:"email"`
	FullName string           `json:"full_name"`
	Role     permissions.Role `json:"role"`
	AddedAt  time.Time        `json:"added_at"`
}

// ListMembers returns members of an organization with user details.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID) ([]Member, error) {
	const q = `SELECT m.id, m.user_id, u.email, u.full_name, m.role, m.created_at
		FROM organization_members m
		INNER JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Member
	for rows.Next() {
		var m Member
		var role string
		if err := rows.Scan(&m.ID, &m.UserID, &m.Email, &m.FullName, &role, &m.AddedAt); err != nil {
			return nil, err
		}
		m.Role = permissions.Role(role)
		list = append(list, m)
	}
	return list, rows.Err()
}

// CreateInvite inserts a pending invite.
func (r *Repository) CreateInvite(ctx context.Context, inv *models.Invite) error {
	const q = `INSERT INTO invites (organization_id, email, role, token, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		inv.OrganizationID, inv.Email, string(inv.Role), inv.Token, inv.InvitedBy, inv.ExpiresAt).
		Scan(&inv.ID, &inv.CreatedAt)
}

// GetInviteByToken returns an invite by its token.
func (r *Repository) GetInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	const q = `SELECT id, organization_id, email, role, token, invited_by, accepted_at, expires_at, created_at
		FROM invites WHERE token = $1`
	var inv models.Invite
	var role string
	err := r.pool.QueryRow(ctx, q, token).
		Scan(&inv.ID, &inv.OrganizationID, &inv.Email, &role, &inv.Token,
			&inv.InvitedBy, &inv.AcceptedAt, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	inv.Role = permissions.Role(role)
	return &inv, nil
}

// MarkInviteAccepted stamps the invite's accepted_at.
func (r *Repository) MarkInviteAccepted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invites SET accepted_at = NOW() WHERE id = $1 AND accepted_at IS NULL`, id)
	return err
}
