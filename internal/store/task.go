package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create inserts the task and sets its ID and CreatedAt.
	// Returns ErrInvalidEntity when the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// GetByIDForUpdate retrieves a task and locks its row until the surrounding
	// transaction ends. It must be called on a store returned by WithTx.
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error)

	// List returns one page of the tasks userID created or is assigned to,
	// narrowed by filter and ordered by sort, plus the total number of matches.
	List(
		ctx context.Context,
		userID int64,
		filter domain.TaskFilter,
		sort domain.TaskSort,
		page domain.PageRequest,
	) ([]*domain.Task, int, error)

	// Update persists all mutable fields of the task.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
