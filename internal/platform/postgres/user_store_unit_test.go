package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

var userRowColumns = []string{
	"id", "first_name", "last_name", "email", "hashed_password", "created_at", "updated_at",
}

func TestNewPostgresUserStore_InvalidCostFallsBack(t *testing.T) {
	t.Parallel()
	db, _ := newMock(t)

	s := NewPostgresUserStore(db, 99, nil)
	assert.Equal(t, bcrypt.DefaultCost, s.bcryptCost)

	s = NewPostgresUserStore(db, bcrypt.MinCost, nil)
	assert.Equal(t, bcrypt.MinCost, s.bcryptCost)

	assert.Panics(t, func() { NewPostgresUserStore(nil, bcrypt.MinCost, nil) })
}

func TestUserStoreCreate(t *testing.T) {
	t.Parallel()

	t.Run("hashes password and sets ID", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs("Ada", "Lovelace", "ada@example.com", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), createdAt))

		user := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com", Password: "password123"}
		require.NoError(t, s.Create(context.Background(), user))

		assert.Equal(t, int64(11), user.ID)
		assert.Equal(t, createdAt, user.CreatedAt)
		assert.Empty(t, user.Password)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		user := &domain.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "password123"}
		assert.ErrorIs(t, s.Create(context.Background(), user), store.ErrEmailExists)
	})

	t.Run("invalid user never reaches the database", func(t *testing.T) {
		t.Parallel()
		db, _ := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		user := &domain.User{FirstName: "", LastName: "Lovelace", Email: "ada@example.com", Password: "password123"}
		assert.ErrorIs(t, s.Create(context.Background(), user), domain.ErrValidation)
	})
}

func TestUserStoreGet(t *testing.T) {
	t.Parallel()

	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("by ID", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(int64(3), "Ada", "Lovelace", "ada@example.com", "$2a$04$hash", createdAt, nil))

		user, err := s.GetByID(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), user.ID)
		assert.Equal(t, "Ada", user.FirstName)
		assert.Equal(t, "$2a$04$hash", user.HashedPassword)
		assert.Nil(t, user.UpdatedAt)
	})

	t.Run("by ID not found", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
			WithArgs(int64(404)).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		_, err := s.GetByID(context.Background(), 404)
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("by email is case-insensitive", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		updatedAt := createdAt.Add(time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(email) = $1")).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(int64(3), "Ada", "Lovelace", "ada@example.com", "$2a$04$hash", createdAt, updatedAt))

		user, err := s.GetByEmail(context.Background(), " ADA@example.com ")
		require.NoError(t, err)
		require.NotNil(t, user.UpdatedAt)
		assert.Equal(t, updatedAt, *user.UpdatedAt)
	})
}

func TestUserStoreUpdate(t *testing.T) {
	t.Parallel()

	t.Run("rehashes new password", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		updatedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WithArgs("Ada", "King", "ada@example.com", sqlmock.AnyArg(), int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updatedAt))

		user := &domain.User{
			ID: 3, FirstName: "Ada", LastName: "King", Email: "ada@example.com",
			HashedPassword: "old", Password: "new-password",
		}
		require.NoError(t, s.Update(context.Background(), user))
		assert.NotEqual(t, "old", user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("new-password")))
		require.NotNil(t, user.UpdatedAt)
		assert.Equal(t, updatedAt, *user.UpdatedAt)
	})

	t.Run("keeps hash without new password", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WithArgs("Ada", "King", "ada@example.com", "old", int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

		user := &domain.User{ID: 3, FirstName: "Ada", LastName: "King", Email: "ada@example.com", HashedPassword: "old"}
		require.NoError(t, s.Update(context.Background(), user))
		assert.Equal(t, "old", user.HashedPassword)
	})

	t.Run("missing user", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

		user := &domain.User{ID: 9, FirstName: "Ada", LastName: "King", Email: "ada@example.com", HashedPassword: "old"}
		assert.ErrorIs(t, s.Update(context.Background(), user), store.ErrUserNotFound)
	})

	t.Run("email taken", func(t *testing.T) {
		t.Parallel()
		db, mock := newMock(t)
		s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

		mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		user := &domain.User{ID: 3, FirstName: "Ada", LastName: "King", Email: "taken@example.com", HashedPassword: "old"}
		assert.ErrorIs(t, s.Update(context.Background(), user), store.ErrEmailExists)
	})
}

func TestUserStoreDelete(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, s.Delete(context.Background(), 3))
	assert.ErrorIs(t, s.Delete(context.Background(), 4), store.ErrUserNotFound)
}

func TestUserStoreWithTx(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	s := NewPostgresUserStore(db, bcrypt.MinCost, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		return s.WithTx(tx).Delete(ctx, 3)
	})
	assert.NoError(t, err)
}
