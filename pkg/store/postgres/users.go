package postgres

import (
	"context"

	"github.com/veterinaryhq/userd/internal/logger"
	"github.com/veterinaryhq/userd/internal/telemetry"
	"github.com/veterinaryhq/userd/pkg/store"
)

// userColumns are the columns read back for user lookups. password_hash is
// deliberately absent: the credential is write-only.
const userColumns = `id, email, first_name, middle_name, last_name, status`

// GetUserByID returns the user with the given id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*store.User, error) {
	if id == "" {
		return nil, store.NewInvalidArgumentError("user id is required")
	}

	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreGetUserByID, telemetry.UserID(id))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u store.User
	err := s.queryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.MiddleName,
		&u.LastName,
		&u.Status,
	)
	if err != nil {
		return nil, mapPgError(err, "GetUserByID")
	}

	return &u, nil
}

// GetUserByEmail returns the user with the given email address.
//
// Matching is exact on the stored address. Addresses are stored as given at
// creation, so a lookup with different casing misses; normalization is a
// policy decision that belongs to the caller, not the store.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	if email == "" {
		return nil, store.NewInvalidArgumentError("email is required")
	}

	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreGetUserByEmail,
		telemetry.EmailDigest(logger.DigestEmail(email)))
	defer span.End()

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u store.User
	err := s.queryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.FirstName,
		&u.MiddleName,
		&u.LastName,
		&u.Status,
	)
	if err != nil {
		return nil, mapPgError(err, "GetUserByEmail")
	}

	return &u, nil
}

// CreateUser inserts a new user record.
//
// There is no existence pre-check: the insert is attempted unconditionally
// and unique violations from the database surface as ErrAlreadyExists. A
// check-then-insert would race with concurrent creates.
func (s *Store) CreateUser(ctx context.Context, user *store.User) error {
	if user.ID == "" {
		return store.NewInvalidArgumentError("user id is required")
	}
	if user.Email == "" {
		return store.NewInvalidArgumentError("email is required")
	}

	ctx, span := telemetry.StartStoreSpan(ctx, telemetry.SpanStoreCreateUser, telemetry.UserID(user.ID))
	defer span.End()

	query := `
		INSERT INTO users (id, email, first_name, middle_name, last_name, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	status := user.Status
	if status == "" {
		status = store.StatusActive
	}

	_, err := s.exec(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.MiddleName,
		user.LastName,
		status,
		user.PasswordHash,
	)
	if err != nil {
		return err
	}

	s.logger.Info("user created",
		logger.KeyUserID, user.ID,
		logger.KeyEmailDigest, logger.DigestEmail(user.Email),
		logger.KeyUserStatus, status,
	)

	return nil
}
