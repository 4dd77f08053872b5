// Package store defines the user data access contract and its error
// taxonomy. Backends (PostgreSQL in production) implement UserStore; the
// RPC layer depends only on this package.
package store

import (
	"context"
	"time"
)

// User lifecycle statuses as stored in the status column.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
	StatusPending  = "pending"
)

// User is a user record.
//
// MiddleName is nil when the record has no middle name; an empty string is a
// distinct, valid value. PasswordHash is the opaque credential supplied at
// creation. It is write-only: read operations never populate it.
type User struct {
	ID           string
	Email        string
	FirstName    string
	MiddleName   *string
	LastName     string
	Status       string
	PasswordHash string
}

// Profile is a user's profile record. DisplayName and AvatarURL are nil when
// unset. Settings is never nil on read; an absent stored value comes back as
// an empty map. UpdatedAt is nil until the profile has been modified.
type Profile struct {
	UserID      string
	DisplayName *string
	AvatarURL   *string
	Settings    map[string]string
	UpdatedAt   *time.Time
}

// UserStore is the data access contract for user and profile records.
//
// All methods return *StoreError on failure so callers can branch on the
// error code. Uniqueness of id and email is enforced by the backend itself;
// implementations must not pre-check and must surface constraint violations
// as ErrAlreadyExists.
type UserStore interface {
	// GetUserByID returns the user with the given id, or ErrNotFound.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// GetUserByEmail returns the user with the given email address, or
	// ErrNotFound. Matching is exact on the stored address; no normalization
	// is applied.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// CreateUser inserts a new user record. Returns ErrAlreadyExists when the
	// id or email collides with an existing record.
	CreateUser(ctx context.Context, user *User) error

	// GetProfileByUserID returns the profile for the given user id, or
	// ErrNotFound when no profile row exists.
	GetProfileByUserID(ctx context.Context, userID string) (*Profile, error)

	// Healthcheck verifies the backend is reachable and can serve requests.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources. Safe to call more than once.
	Close() error
}
