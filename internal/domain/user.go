package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxNameLength bounds user first/last names and task names.
	MaxNameLength = 128
	// MaxEmailLength is the longest email address accepted.
	MaxEmailLength = 320
	// MinPasswordLength is the shortest plaintext password accepted.
	MinPasswordLength = 8
	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// User represents a registered user of the task board.
type User struct {
	ID             int64
	FirstName      string
	LastName       string
	Email          string
	Password       string // plaintext, only set while registering or changing the password
	HashedPassword string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// NewUser creates a new User with normalized names and email.
// The caller is responsible for hashing the password before storing the user.
func NewUser(firstName, lastName, email, password string) (*User, error) {
	user := &User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if err := validateName("firstName", u.FirstName); err != nil {
		return err
	}
	if err := validateName("lastName", u.LastName); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}

	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "password is required")
	}
	return nil
}

// ValidateEmail checks that email is a bare, well-formed address.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return NewValidationError("email", "email is too long")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return NewValidationError("email", "email must be a valid email address")
	}
	return nil
}

// ValidatePassword enforces the plaintext password length limits.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", "password must be at least 8 characters long")
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "password must be at most 72 bytes long")
	}
	return nil
}

func validateName(field, value string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return NewValidationError(field, field+" is required")
	}
	if n > MaxNameLength {
		return NewValidationError(field, field+" must be at most 128 characters long")
	}
	return nil
}

// UserPatch holds the optional changes of a profile update.
// Nil fields are left untouched.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Password == nil
}

// ApplyPatch returns a copy of u with the patch applied and validated.
func (u *User) ApplyPatch(p UserPatch, now time.Time) (*User, error) {
	updated := *u
	updated.Password = ""

	if p.FirstName != nil {
		updated.FirstName = strings.TrimSpace(*p.FirstName)
	}
	if p.LastName != nil {
		updated.LastName = strings.TrimSpace(*p.LastName)
	}
	if p.Email != nil {
		updated.Email = NormalizeEmail(*p.Email)
	}
	if p.Password != nil {
		if err := ValidatePassword(*p.Password); err != nil {
			return nil, err
		}
		updated.Password = *p.Password
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	ts := now.UTC()
	updated.UpdatedAt = &ts
	return &updated, nil
}
