package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veterinaryhq/userd/pkg/store"
)

func TestMapPgError(t *testing.T) {
	t.Run("NilIsNil", func(t *testing.T) {
		assert.NoError(t, mapPgError(nil, "op"))
	})

	t.Run("NoRowsIsNotFound", func(t *testing.T) {
		err := mapPgError(pgx.ErrNoRows, "GetUserByID")
		assert.Equal(t, store.ErrNotFound, store.CodeOf(err))
	})

	t.Run("UniqueViolationIsAlreadyExistsWithConstraint", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		err := mapPgError(pgErr, "CreateUser")

		var se *store.StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, store.ErrAlreadyExists, se.Code)
		assert.Equal(t, "users_email_key", se.Constraint)
	})

	t.Run("ForeignKeyViolationIsNotFound", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "profiles_user_id_fkey"}
		err := mapPgError(pgErr, "CreateProfile")
		assert.Equal(t, store.ErrNotFound, store.CodeOf(err))
	})

	t.Run("NotNullViolationIsInvalidArgument", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23502", ColumnName: "email"}
		err := mapPgError(pgErr, "CreateUser")
		assert.Equal(t, store.ErrInvalidArgument, store.CodeOf(err))
		assert.Contains(t, err.Error(), "email")
	})

	t.Run("CheckViolationIsInvalidArgument", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23514", ConstraintName: "users_status_check"}
		err := mapPgError(pgErr, "CreateUser")
		assert.Equal(t, store.ErrInvalidArgument, store.CodeOf(err))
	})

	t.Run("ConnectionErrorsAreUnavailable", func(t *testing.T) {
		for _, code := range []string{"08000", "08001", "08003", "08006", "53300", "57P01", "57P03"} {
			err := mapPgError(&pgconn.PgError{Code: code}, "query")
			assert.Equal(t, store.ErrUnavailable, store.CodeOf(err), "code %s", code)
		}
	})

	t.Run("ClosedPoolIsUnavailable", func(t *testing.T) {
		err := mapPgError(puddle.ErrClosedPool, "query")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(err))
	})

	t.Run("CancellationIsUnavailable", func(t *testing.T) {
		err := mapPgError(context.Canceled, "GetUserByID")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(err))

		err = mapPgError(context.DeadlineExceeded, "GetUserByID")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(err))
	})

	t.Run("WrappedCancellationIsUnavailable", func(t *testing.T) {
		err := mapPgError(fmt.Errorf("acquire: %w", context.Canceled), "GetUserByEmail")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(err))
	})

	t.Run("QueryCanceledIsUnavailable", func(t *testing.T) {
		err := mapPgError(&pgconn.PgError{Code: "57014"}, "GetProfileByUserID")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(err))
	})

	t.Run("SerializationFailureIsBackend", func(t *testing.T) {
		err := mapPgError(&pgconn.PgError{Code: "40001"}, "exec")
		assert.Equal(t, store.ErrBackend, store.CodeOf(err))
	})

	t.Run("UnknownPgCodeIsBackend", func(t *testing.T) {
		err := mapPgError(&pgconn.PgError{Code: "XX000", Message: "internal"}, "exec")
		assert.Equal(t, store.ErrBackend, store.CodeOf(err))
	})

	t.Run("UnknownErrorIsBackend", func(t *testing.T) {
		err := mapPgError(errors.New("boom"), "exec")
		assert.Equal(t, store.ErrBackend, store.CodeOf(err))
	})

	t.Run("AlreadyClassifiedErrorsPassThrough", func(t *testing.T) {
		in := store.NewUnavailableError("connection acquire timeout", nil)
		out := mapPgError(in, "queryRow")
		assert.Equal(t, store.ErrUnavailable, store.CodeOf(out))
	})
}
