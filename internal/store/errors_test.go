package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
	}{
		{"nil error", nil, false, false},
		{"generic error", errors.New("some error"), false, false},
		{"ErrNotFound", ErrNotFound, true, false},
		{"wrapped ErrUserNotFound", fmt.Errorf("find user: %w", ErrUserNotFound), true, false},
		{"ErrTaskNotFound", ErrTaskNotFound, true, false},
		{"ErrDuplicate", ErrDuplicate, false, true},
		{"wrapped ErrEmailExists", fmt.Errorf("create: %w", ErrEmailExists), false, true},
		{"store error around not found", NewStoreError("task", "get", "lookup failed", ErrTaskNotFound), true, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.notFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.duplicate, IsDuplicateError(tc.err))
		})
	}
}

func TestEntityErrorsWrapGeneric(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ErrUserNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrTaskNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrEmailExists, ErrDuplicate)
	assert.NotErrorIs(t, ErrTaskNotFound, ErrUserNotFound)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("task", "list", "query failed", cause)
	assert.Equal(t, "list operation on task failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("user", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on user failed: no rows", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
