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

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create creates a new user. Roles are stored by name.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if !user.Role.Valid() {
		return fmt.Errorf("failed to create user: invalid role %d", user.Role)
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, org_id, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		user.UserID,
		user.OrgID,
		user.Email,
		user.Role.String(),
		user.CreatedAt,
	)
	if err != nil {
		mapped := mapPostgresError(err)
		if errors.Is(mapped, store.ErrUserAlreadyExists) || errors.Is(mapped, store.ErrOrganizationNotFound) {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", mapped)
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("org_id", user.OrgID.String()).
		Str("role", user.Role.String()).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.getOne(ctx, `
		SELECT user_id, org_id, email, role, created_at
		FROM users
		WHERE user_id = $1
	`, userID)
}

// GetByEmail retrieves a user by email address, ignoring case.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getOne(ctx, `
		SELECT user_id, org_id, email, role, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		user models.User
		role string
	)
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.UserID,
		&user.OrgID,
		&user.Email,
		&role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}

	user.Role, err = models.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", user.UserID, err)
	}

	return &user, nil
}
