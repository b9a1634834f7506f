package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/taskscope/internal/auth"
	"github.com/wolfeidau/taskscope/internal/logger"
	"github.com/wolfeidau/taskscope/internal/models"
)

type TokenCmd struct {
	SigningKey []byte        `help:"path to the PEM-encoded ES256 signing key" type:"filecontent" required:"" env:"TASKSCOPE_JWT_SIGNING_KEY"`
	TTL        time.Duration `help:"Token lifetime" default:"1h"`

	// Either look the caller up by email...
	Email         string             `help:"issue the token for this user, looked up in PostgreSQL"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`

	// ...or describe it explicitly.
	UserID string `help:"caller user id"`
	Role   string `help:"caller role (Viewer, Admin or Owner)"`
	OrgID  string `help:"caller organization id"`

	out io.Writer `kong:"-"`
}

func (t *TokenCmd) Run(ctx context.Context, globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx = log.WithContext(ctx)

	var (
		caller auth.Caller
		err    error
	)
	if t.Email != "" {
		caller, err = t.lookupCaller(ctx)
	} else {
		caller, err = t.explicitCaller()
	}
	if err != nil {
		return err
	}

	token, err := auth.IssueToken(string(t.SigningKey), caller, t.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	out := t.out
	if out == nil {
		out = os.Stdout
	}

	_, err = fmt.Fprintln(out, token)
	return err
}

func (t *TokenCmd) lookupCaller(ctx context.Context) (auth.Caller, error) {
	stores, closeStores, err := openStores(ctx, "postgres", t.PostgresStore)
	if err != nil {
		return auth.Caller{}, err
	}
	defer closeStores()

	user, err := stores.Users.GetByEmail(ctx, t.Email)
	if err != nil {
		return auth.Caller{}, fmt.Errorf("failed to look up %s: %w", t.Email, err)
	}

	return auth.CallerFromUser(user), nil
}

func (t *TokenCmd) explicitCaller() (auth.Caller, error) {
	if t.UserID == "" || t.Role == "" || t.OrgID == "" {
		return auth.Caller{}, errors.New("either --email or all of --user-id, --role and --org-id are required")
	}

	userID, err := uuid.Parse(t.UserID)
	if err != nil {
		return auth.Caller{}, fmt.Errorf("invalid user id: %w", err)
	}

	role, err := models.ParseRole(t.Role)
	if err != nil {
		return auth.Caller{}, err
	}

	orgID, err := uuid.Parse(t.OrgID)
	if err != nil {
		return auth.Caller{}, fmt.Errorf("invalid organization id: %w", err)
	}

	return auth.Caller{ID: userID, Role: role, OrgID: orgID}, nil
}
