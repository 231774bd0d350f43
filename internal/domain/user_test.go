package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Ada ", "Lovelace", "  Ada@Example.COM ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.FirstName)
	assert.Equal(t, "Lovelace", user.LastName)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "password123", user.Password)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Nil(t, user.UpdatedAt)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	valid := User{
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		HashedPassword: "$2a$10$hash",
	}

	tests := []struct {
		name   string
		mutate func(u *User)
		field  string
	}{
		{"valid", func(u *User) {}, ""},
		{"empty first name", func(u *User) { u.FirstName = "   " }, "firstName"},
		{"long last name", func(u *User) { u.LastName = strings.Repeat("x", 129) }, "lastName"},
		{"empty email", func(u *User) { u.Email = "" }, "email"},
		{"malformed email", func(u *User) { u.Email = "invalidemail" }, "email"},
		{"email with display name", func(u *User) { u.Email = "Ada <ada@example.com>" }, "email"},
		{"email without dot in domain", func(u *User) { u.Email = "ada@localhost" }, "email"},
		{"short password", func(u *User) { u.Password = "short" }, "password"},
		{"long password", func(u *User) { u.Password = strings.Repeat("p", 73) }, "password"},
		{"no password or hash", func(u *User) { u.HashedPassword = "" }, "password"},
		{"plaintext without hash", func(u *User) { u.HashedPassword = ""; u.Password = "password123" }, ""},
		{"128 rune name", func(u *User) { u.FirstName = strings.Repeat("é", 128) }, ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			u := valid
			tc.mutate(&u)
			err := u.Validate()
			if tc.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestUserApplyPatch(t *testing.T) {
	t.Parallel()

	original := &User{
		ID:             7,
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.com",
		HashedPassword: "$2a$10$hash",
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("applies provided fields", func(t *testing.T) {
		t.Parallel()
		first := " Augusta "
		email := "AUGUSTA@example.com"
		updated, err := original.ApplyPatch(UserPatch{FirstName: &first, Email: &email}, now)
		require.NoError(t, err)
		assert.Equal(t, "Augusta", updated.FirstName)
		assert.Equal(t, "Lovelace", updated.LastName)
		assert.Equal(t, "augusta@example.com", updated.Email)
		assert.Empty(t, updated.Password)
		require.NotNil(t, updated.UpdatedAt)
		assert.Equal(t, now, *updated.UpdatedAt)
		assert.Equal(t, "Ada", original.FirstName, "original must not change")
	})

	t.Run("sets new password", func(t *testing.T) {
		t.Parallel()
		pw := "new-password"
		updated, err := original.ApplyPatch(UserPatch{Password: &pw}, now)
		require.NoError(t, err)
		assert.Equal(t, "new-password", updated.Password)
	})

	t.Run("rejects empty password", func(t *testing.T) {
		t.Parallel()
		pw := ""
		_, err := original.ApplyPatch(UserPatch{Password: &pw}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()
		email := "nope"
		_, err := original.ApplyPatch(UserPatch{Email: &email}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty patch", func(t *testing.T) {
		t.Parallel()
		assert.True(t, UserPatch{}.IsEmpty())
	})
}
