package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements store.UserStore on PostgreSQL.
type PostgresUserStore struct {
	db         store.DBTX
	bcryptCost int
	logger     *slog.Logger
}

// NewPostgresUserStore creates a user store. A bcryptCost outside bcrypt's
// accepted range falls back to bcrypt.DefaultCost; a nil logger uses slog.Default().
func NewPostgresUserStore(db store.DBTX, bcryptCost int, logger *slog.Logger) *PostgresUserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		logger.Warn("invalid bcrypt cost, using default",
			slog.Int("configured_cost", bcryptCost),
			slog.Int("default_cost", bcrypt.DefaultCost))
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresUserStore{
		db:         db,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "user_store")),
	}
}

var _ store.UserStore = (*PostgresUserStore)(nil)

// WithTx implements store.UserStore.WithTx.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		bcryptCost: s.bcryptCost,
		logger:     s.logger,
	}
}

const userColumns = `id, first_name, last_name, email, hashed_password, created_at, updated_at`

// Create implements store.UserStore.Create.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create", slog.String("error", err.Error()))
		return err
	}
	if user.Password == "" {
		return domain.NewValidationError("password", "password is required")
	}

	hash, err := s.hashPassword(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO users (first_name, last_name, email, hashed_password)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err = s.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, hash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Info("attempted to create user with existing email")
			return store.ErrEmailExists
		}
		log.Error("failed to insert user", slog.String("error", err.Error()))
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}

	user.HashedPassword = hash
	user.Password = ""

	log.Info("user created successfully", slog.Int64("user_id", user.ID))
	return nil
}

// GetByID implements store.UserStore.GetByID.
func (s *PostgresUserStore) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving user by ID", slog.Int64("user_id", id))

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.Int64("user_id", id))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID", slog.String("error", err.Error()), slog.Int64("user_id", id))
		return nil, store.NewStoreError("user", "get", "failed to query user", MapError(err))
	}
	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = $1`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, domain.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", err.Error()))
		return nil, store.NewStoreError("user", "get", "failed to query user by email", MapError(err))
	}
	return user, nil
}

// Update implements store.UserStore.Update.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user.Email = domain.NormalizeEmail(user.Email)
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()), slog.Int64("user_id", user.ID))
		return err
	}

	hash := user.HashedPassword
	if user.Password != "" {
		var err error
		if hash, err = s.hashPassword(user.Password); err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			return err
		}
	}

	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, email = $3, hashed_password = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := s.db.QueryRowContext(ctx, query, user.FirstName, user.LastName, user.Email, hash, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return store.ErrUserNotFound
		case IsUniqueViolation(err):
			log.Info("attempted to update user to existing email", slog.Int64("user_id", user.ID))
			return store.ErrEmailExists
		}
		log.Error("failed to update user", slog.String("error", err.Error()), slog.Int64("user_id", user.ID))
		return store.NewStoreError("user", "update", "failed to update user", MapError(err))
	}

	user.HashedPassword = hash
	user.Password = ""

	log.Info("user updated successfully", slog.Int64("user_id", user.ID))
	return nil
}

// Delete implements store.UserStore.Delete.
func (s *PostgresUserStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete user", slog.String("error", err.Error()), slog.Int64("user_id", id))
		return store.NewStoreError("user", "delete", "failed to delete user", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	log.Info("user deleted successfully", slog.Int64("user_id", id))
	return nil
}

func (s *PostgresUserStore) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.HashedPassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
