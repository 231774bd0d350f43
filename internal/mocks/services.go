package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/stretchr/testify/mock"
)

// UserService is a testify mock of service.UserService.
type UserService struct {
	mock.Mock
}

var _ service.UserService = (*UserService)(nil)

func (m *UserService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) UpdateUser(
	ctx context.Context,
	actorID, targetID int64,
	patch domain.UserPatch,
) (*domain.User, error) {
	args := m.Called(ctx, actorID, targetID, patch)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserService) DeleteUser(ctx context.Context, actorID, targetID int64) error {
	args := m.Called(ctx, actorID, targetID)
	return args.Error(0)
}

// TaskService is a testify mock of service.TaskService.
type TaskService struct {
	mock.Mock
}

var _ service.TaskService = (*TaskService)(nil)

func (m *TaskService) CreateTask(
	ctx context.Context,
	actorID int64,
	input service.CreateTaskInput,
) (*domain.Task, error) {
	args := m.Called(ctx, actorID, input)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) GetTask(ctx context.Context, actorID, taskID int64) (*domain.Task, error) {
	args := m.Called(ctx, actorID, taskID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) ListTasks(
	ctx context.Context,
	actorID int64,
	filter domain.TaskFilter,
	sort domain.TaskSort,
	page domain.PageRequest,
) (*service.TaskPage, error) {
	args := m.Called(ctx, actorID, filter, sort, page)
	result, _ := args.Get(0).(*service.TaskPage)
	return result, args.Error(1)
}

func (m *TaskService) UpdateTask(
	ctx context.Context,
	actorID, taskID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	args := m.Called(ctx, actorID, taskID, patch)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *TaskService) DeleteTask(ctx context.Context, actorID, taskID int64) error {
	args := m.Called(ctx, actorID, taskID)
	return args.Error(0)
}
