package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

const organizationColumns = `org_id, name, parent_org_id, created_at, updated_at`

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Create creates a new organization in the database. The parent row is
// locked while the child is inserted so the nesting check holds.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	now := time.Now().UTC()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	if org.UpdatedAt.IsZero() {
		org.UpdatedAt = org.CreatedAt
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback is safe to call after commit

	if org.ParentOrgID != nil {
		var grandparent *uuid.UUID
		err := tx.QueryRow(ctx,
			`SELECT parent_org_id FROM organizations WHERE org_id = $1 FOR SHARE`,
			*org.ParentOrgID,
		).Scan(&grandparent)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return store.ErrOrganizationNotFound
			}
			return fmt.Errorf("failed to get parent organization: %w", err)
		}
		if grandparent != nil {
			return store.ErrNestingTooDeep
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO organizations (`+organizationColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`,
		org.OrgID,
		org.Name,
		org.ParentOrgID,
		org.CreatedAt,
		org.UpdatedAt,
	)
	if err != nil {
		if mapped := mapPostgresError(err); errors.Is(mapped, store.ErrOrganizationAlreadyExists) {
			return mapped
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit organization: %w", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Bool("child", org.IsChild()).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	return s.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE org_id = $1`, orgID)
}

// GetByName retrieves an organization by name.
func (s *OrganizationStore) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	return s.getOne(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE name = $1`, name)
}

func (s *OrganizationStore) getOne(ctx context.Context, query string, arg any) (*models.Organization, error) {
	org, err := scanOrganization(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", mapPostgresError(err))
	}
	return org, nil
}

// ListChildren returns the direct children of parentID, oldest first.
func (s *OrganizationStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Organization, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE parent_org_id = $1
		ORDER BY created_at, org_id
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child organizations: %w", mapPostgresError(err))
	}
	defer rows.Close()

	orgs := make([]*models.Organization, 0)
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organizations: %w", err)
	}

	return orgs, nil
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.OrgID,
		&org.Name,
		&org.ParentOrgID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &org, nil
}
