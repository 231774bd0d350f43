package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserService provides account operations: registration, login, and self-service updates.
type UserService interface {
	// Register creates a new account. The password is hashed by the store.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Authenticate checks credentials and returns the matching user.
	// Unknown emails and wrong passwords both yield auth.ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// UpdateUser applies a partial update. Users may only update themselves.
	UpdateUser(ctx context.Context, actorID, targetID int64, patch domain.UserPatch) (*domain.User, error)

	// DeleteUser removes an account. Users may only delete themselves.
	DeleteUser(ctx context.Context, actorID, targetID int64) error
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	tx        store.Transactor
	verifier  auth.PasswordVerifier
	hasher    auth.PasswordHasher
	logger    *slog.Logger
	now       func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	tx store.Transactor,
	verifier auth.PasswordVerifier,
	hasher auth.PasswordHasher,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		tx:        tx,
		verifier:  verifier,
		hasher:    hasher,
		logger:    logger.With("component", "user_service"),
		now:       time.Now,
	}
}

// timingHash returns a hash compared against when the email is unknown, so that
// login latency does not reveal which accounts exist. It is built once with the
// same hasher, and therefore the same cost, as stored passwords.
func (s *UserServiceImpl) timingHash() string {
	s.dummyHashOnce.Do(func() {
		h, err := s.hasher.Hash("taskboard-timing-equalizer")
		if err != nil {
			s.logger.Error("failed to build timing hash", "error", err)
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// Register creates a new user account
func (s *UserServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(input.FirstName, input.LastName, input.Email, input.Password)
	if err != nil {
		log.Debug("registration rejected by validation", "error", err)
		return nil, err
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register an existing email", "email", user.Email)
		} else {
			log.Error("failed to save user to database", "error", err, "email", user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Password = ""

	log.Info("user registered successfully", "user_id", user.ID)
	return user, nil
}

// Authenticate verifies an email/password pair
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			_ = s.verifier.Compare(s.timingHash(), password)
			log.Debug("login attempt for unknown email")
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to retrieve user for login", "error", err)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password", "user_id", user.ID)
		return nil, auth.ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return user, nil
}

// UpdateUser reads the current user and writes the patched copy in one transaction
func (s *UserServiceImpl) UpdateUser(
	ctx context.Context,
	actorID, targetID int64,
	patch domain.UserPatch,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actorID != targetID {
		log.Warn("user attempted to update another account",
			"actor_id", actorID,
			"target_id", targetID)
		return nil, ErrUserAccessDenied
	}

	var updated *domain.User
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		current, err := txStore.GetByID(ctx, targetID)
		if err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		if patch.IsEmpty() {
			updated = current
			return nil
		}

		updated, err = current.ApplyPatch(patch, s.now())
		if err != nil {
			return err
		}

		if err := txStore.Update(ctx, updated); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, store.ErrUserNotFound),
			errors.Is(err, store.ErrEmailExists):
			log.Debug("user update rejected", "error", err, "user_id", targetID)
		default:
			log.Error("failed to update user", "error", err, "user_id", targetID)
		}
		return nil, err
	}

	updated.Password = ""
	log.Info("user updated successfully", "user_id", targetID)
	return updated, nil
}

// DeleteUser deletes a user by their ID
func (s *UserServiceImpl) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actorID != targetID {
		log.Warn("user attempted to delete another account",
			"actor_id", actorID,
			"target_id", targetID)
		return ErrUserAccessDenied
	}

	if err := s.userStore.Delete(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("attempted to delete non-existent user", "user_id", targetID)
		} else {
			log.Error("failed to delete user", "error", err, "user_id", targetID)
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	log.Info("user deleted successfully", "user_id", targetID)
	return nil
}
