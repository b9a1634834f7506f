// Package seed loads organizations and users from a YAML file into the stores.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/taskscope/internal/models"
	"github.com/wolfeidau/taskscope/internal/store"
	"gopkg.in/yaml.v3"
)

// File is the seed file layout.
//
//	organizations:
//	  - name: Acme
//	  - name: Acme Labs
//	    parent: Acme
//	users:
//	  - email: owner@acme.test
//	    role: Owner
//	    organization: Acme
type File struct {
	Organizations []Organization `yaml:"organizations"`
	Users         []User         `yaml:"users"`
}

// Organization is a seeded organization. Parent refers to an organization
// declared earlier in the file.
type Organization struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Parent string `yaml:"parent"`
}

// User is a seeded user of the named organization.
type User struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	Role         string `yaml:"role"`
	Organization string `yaml:"organization"`
}

// Result counts what Apply created and skipped.
type Result struct {
	OrganizationsCreated int
	OrganizationsSkipped int
	UsersCreated         int
	UsersSkipped         int
}

// Load reads and validates a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates seed YAML.
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}

	return &file, nil
}

// Validate checks names, roles and references. Parents must be declared
// before their children and may not be children themselves.
func (f *File) Validate() error {
	var errs []error

	declared := make(map[string]Organization, len(f.Organizations))
	for i, org := range f.Organizations {
		switch {
		case strings.TrimSpace(org.Name) == "":
			errs = append(errs, fmt.Errorf("organizations[%d]: name is required", i))
			continue
		case hasKey(declared, org.Name):
			errs = append(errs, fmt.Errorf("organizations[%d]: duplicate name %q", i, org.Name))
			continue
		}

		if err := validID(org.ID); err != nil {
			errs = append(errs, fmt.Errorf("organizations[%d]: %w", i, err))
		}

		if org.Parent != "" {
			parent, ok := declared[org.Parent]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("organizations[%d]: parent %q must be declared before %q", i, org.Parent, org.Name))
			case parent.Parent != "":
				errs = append(errs, fmt.Errorf("organizations[%d]: parent %q is itself a child organization", i, org.Parent))
			}
		}

		declared[org.Name] = org
	}

	emails := make(map[string]bool, len(f.Users))
	for i, user := range f.Users {
		email := strings.ToLower(strings.TrimSpace(user.Email))
		switch {
		case email == "":
			errs = append(errs, fmt.Errorf("users[%d]: email is required", i))
		case emails[email]:
			errs = append(errs, fmt.Errorf("users[%d]: duplicate email %q", i, user.Email))
		}
		emails[email] = true

		if _, err := models.ParseRole(user.Role); err != nil {
			errs = append(errs, fmt.Errorf("users[%d]: %w", i, err))
		}

		if !hasKey(declared, user.Organization) {
			errs = append(errs, fmt.Errorf("users[%d]: unknown organization %q", i, user.Organization))
		}

		if err := validID(user.ID); err != nil {
			errs = append(errs, fmt.Errorf("users[%d]: %w", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid seed file: %w", errors.Join(errs...))
	}

	return nil
}

// Apply creates the file's organizations (parents first) and users.
// Organizations that already exist by name and users that already exist by
// email are left untouched, so Apply can be run repeatedly.
func Apply(ctx context.Context, stores store.Stores, file *File) (Result, error) {
	var result Result
	logger := zerolog.Ctx(ctx)

	orgIDs := make(map[string]uuid.UUID, len(file.Organizations))

	for _, org := range file.Organizations {
		existing, err := stores.Organizations.GetByName(ctx, org.Name)
		switch {
		case err == nil:
			orgIDs[org.Name] = existing.OrgID
			result.OrganizationsSkipped++
			logger.Debug().Str("name", org.Name).Msg("Organization exists, skipping")
			continue
		case !errors.Is(err, store.ErrOrganizationNotFound):
			return result, fmt.Errorf("failed to look up organization %q: %w", org.Name, err)
		}

		orgID, err := idOrNew(org.ID)
		if err != nil {
			return result, err
		}

		now := time.Now().UTC()
		record := &models.Organization{
			OrgID:     orgID,
			Name:      org.Name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if org.Parent != "" {
			parentID, ok := orgIDs[org.Parent]
			if !ok {
				return result, fmt.Errorf("organization %q: parent %q not seeded", org.Name, org.Parent)
			}
			record.ParentOrgID = &parentID
		}

		if err := stores.Organizations.Create(ctx, record); err != nil {
			return result, fmt.Errorf("failed to create organization %q: %w", org.Name, err)
		}

		orgIDs[org.Name] = orgID
		result.OrganizationsCreated++
		logger.Info().Str("name", org.Name).Str("org_id", orgID.String()).Msg("Seeded organization")
	}

	for _, user := range file.Users {
		_, err := stores.Users.GetByEmail(ctx, user.Email)
		switch {
		case err == nil:
			result.UsersSkipped++
			logger.Debug().Str("email", user.Email).Msg("User exists, skipping")
			continue
		case !errors.Is(err, store.ErrUserNotFound):
			return result, fmt.Errorf("failed to look up user %q: %w", user.Email, err)
		}

		role, err := models.ParseRole(user.Role)
		if err != nil {
			return result, fmt.Errorf("user %q: %w", user.Email, err)
		}

		orgID, ok := orgIDs[user.Organization]
		if !ok {
			return result, fmt.Errorf("user %q: organization %q not seeded", user.Email, user.Organization)
		}

		userID, err := idOrNew(user.ID)
		if err != nil {
			return result, err
		}

		err = stores.Users.Create(ctx, &models.User{
			UserID:    userID,
			OrgID:     orgID,
			Email:     user.Email,
			Role:      role,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return result, fmt.Errorf("failed to create user %q: %w", user.Email, err)
		}

		result.UsersCreated++
		logger.Info().Str("email", user.Email).Str("user_id", userID.String()).Str("role", role.String()).Msg("Seeded user")
	}

	return result, nil
}

func validID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid id %q: %w", id, err)
	}
	return nil
}

func idOrNew(id string) (uuid.UUID, error) {
	if id != "" {
		return uuid.Parse(id)
	}
	return uuid.NewV7()
}

func hasKey[K comparable, V any](m map[K]V, key K) bool {
	_, ok := m[key]
	return ok
}
