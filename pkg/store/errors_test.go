package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError(t *testing.T) {
	t.Run("ErrorIncludesConstraintWhenSet", func(t *testing.T) {
		err := NewAlreadyExistsError("user", "users_email_key")
		assert.Contains(t, err.Error(), "user already exists")
		assert.Contains(t, err.Error(), "users_email_key")
	})

	t.Run("ErrorOmitsConstraintWhenEmpty", func(t *testing.T) {
		err := NewNotFoundError("user")
		assert.Equal(t, "user not found", err.Error())
	})

	t.Run("UnwrapExposesCause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewUnavailableError("pool exhausted", cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestCodeOf(t *testing.T) {
	t.Run("ExtractsCodeFromStoreError", func(t *testing.T) {
		assert.Equal(t, ErrNotFound, CodeOf(NewNotFoundError("user")))
		assert.Equal(t, ErrAlreadyExists, CodeOf(NewAlreadyExistsError("user", "")))
		assert.Equal(t, ErrUnavailable, CodeOf(NewUnavailableError("down", nil)))
	})

	t.Run("ExtractsCodeThroughWrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup: %w", NewNotFoundError("profile"))
		assert.Equal(t, ErrNotFound, CodeOf(wrapped))
	})

	t.Run("UnclassifiedErrorsReportBackend", func(t *testing.T) {
		assert.Equal(t, ErrBackend, CodeOf(errors.New("surprise")))
	})
}

func TestErrorCodeString(t *testing.T) {
	cases := map[ErrorCode]string{
		ErrNotFound:        "not_found",
		ErrAlreadyExists:   "already_exists",
		ErrInvalidArgument: "invalid_argument",
		ErrUnavailable:     "unavailable",
		ErrBackend:         "backend",
		ErrorCode(99):      "unknown",
	}
	for code, want := range cases {
		assert.Equal(t, want, code.String())
	}
}
