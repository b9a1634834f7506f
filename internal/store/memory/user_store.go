package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
// This implementation is for testing only - data is lost on restart.
type UserStore struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*models.User // user_id -> User
	usersByEmail map[string]*models.User    // lower(email) -> User
	orgs         *OrganizationStore
}

// NewUserStore creates a new in-memory user store. When orgs is non-nil, users
// must belong to an existing organization.
func NewUserStore(orgs *OrganizationStore) *UserStore {
	return &UserStore{
		users:        make(map[uuid.UUID]*models.User),
		usersByEmail: make(map[string]*models.User),
		orgs:         orgs,
	}
}

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.UserID]; exists {
		return store.ErrUserAlreadyExists
	}

	email := strings.ToLower(user.Email)
	if _, exists := s.usersByEmail[email]; exists {
		return store.ErrUserAlreadyExists
	}

	if s.orgs != nil && !s.orgs.exists(user.OrgID) {
		return fmt.Errorf("%w: %s", store.ErrOrganizationNotFound, user.OrgID)
	}

	// Clone to avoid external modifications
	clone := *user
	s.users[user.UserID] = &clone
	s.usersByEmail[email] = &clone

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email address, ignoring case.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByEmail[strings.ToLower(email)]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}
