package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TaskStore is a testify mock of store.TaskStore. WithTx returns the mock itself.
type TaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*TaskStore)(nil)

func (m *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if task, ok := args.Get(0).(*domain.Task); ok {
		return task, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskStore) List(
	ctx context.Context,
	userID int64,
	filter domain.TaskFilter,
	sort domain.TaskSort,
	page domain.PageRequest,
) ([]*domain.Task, int, error) {
	args := m.Called(ctx, userID, filter, sort, page)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

func (m *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *TaskStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
