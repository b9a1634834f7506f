package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/taskscope/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	plain := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
	}{
		{name: "organization id taken", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "organizations_pkey"}, target: store.ErrOrganizationAlreadyExists},
		{name: "organization name taken", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "organizations_name_key"}, target: store.ErrOrganizationAlreadyExists},
		{name: "email taken", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"}, target: store.ErrUserAlreadyExists},
		{name: "task id taken", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "tasks_pkey"}, target: store.ErrTaskAlreadyExists},
		{name: "unknown organization", err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, target: store.ErrOrganizationNotFound},
		{name: "not a postgres error", err: plain, target: plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, mapPostgresError(tt.err), tt.target)
		})
	}

	require.NoError(t, mapPostgresError(nil))
}

func TestMapPostgresError_keepsCause(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.DeadlockDetected}

	err := mapPostgresError(pgErr)

	var target *pgconn.PgError
	require.ErrorAs(t, err, &target)
	require.Contains(t, err.Error(), "retryable")
}
