package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides task operations scoped to the acting user.
// A task is visible to its creator and its assignee; anyone else gets store.ErrTaskNotFound.
type TaskService interface {
	// CreateTask creates a task owned by actorID.
	CreateTask(ctx context.Context, actorID int64, input CreateTaskInput) (*domain.Task, error)

	// GetTask returns a single visible task.
	GetTask(ctx context.Context, actorID, taskID int64) (*domain.Task, error)

	// ListTasks returns one page of the tasks visible to actorID.
	ListTasks(
		ctx context.Context,
		actorID int64,
		filter domain.TaskFilter,
		sort domain.TaskSort,
		page domain.PageRequest,
	) (*TaskPage, error)

	// UpdateTask applies a partial update. The creator and the assignee may edit.
	UpdateTask(ctx context.Context, actorID, taskID int64, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task. Only the creator may delete.
	DeleteTask(ctx context.Context, actorID, taskID int64) error
}

// CreateTaskInput carries the fields for a new task.
type CreateTaskInput struct {
	Name        string
	Description string
	AssigneeID  *int64
	DueDate     civil.Date
	StartDate   *civil.Date
	Priority    domain.Priority
}

// TaskPage is one page of a task listing.
type TaskPage struct {
	Tasks      []*domain.Task
	Pagination domain.Pagination
}

// TaskServiceImpl implements the TaskService interface
type TaskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	tx        store.Transactor
	emitter   events.EventEmitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	tx store.Transactor,
	emitter events.EventEmitter,
	logger *slog.Logger,
) TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		tx:        tx,
		emitter:   emitter,
		logger:    logger.With("component", "task_service"),
		now:       time.Now,
	}
}

// CreateTask validates the input, checks the assignee, and stores the task
func (s *TaskServiceImpl) CreateTask(
	ctx context.Context,
	actorID int64,
	input CreateTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(
		input.Name,
		input.Description,
		actorID,
		input.AssigneeID,
		input.DueDate,
		input.StartDate,
		input.Priority,
	)
	if err != nil {
		log.Debug("task rejected by validation", "error", err, "actor_id", actorID)
		return nil, err
	}

	err = s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.checkAssignee(ctx, s.userStore.WithTx(tx), task.AssigneeID); err != nil {
			return err
		}
		if err := s.taskStore.WithTx(tx).Create(ctx, task); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) && task.AssigneeID != nil {
				return ErrAssigneeNotFound
			}
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			log.Error("failed to create task", "error", err, "actor_id", actorID)
		}
		return nil, err
	}

	log.Info("task created successfully", "task_id", task.ID, "actor_id", actorID)

	s.emit(ctx, events.TaskCreated, task.ID, actorID, events.TaskPayload{
		Name:        task.Name,
		CreatedByID: task.CreatedByID,
	})
	if task.AssigneeID != nil {
		s.emit(ctx, events.TaskAssigned, task.ID, actorID, events.AssignmentPayload{
			AssigneeID: task.AssigneeID,
		})
	}

	return task, nil
}

// GetTask retrieves a task visible to the actor
func (s *TaskServiceImpl) GetTask(ctx context.Context, actorID, taskID int64) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, taskID)
	if err != nil {
		if !errors.Is(err, store.ErrTaskNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve task",
				"error", err,
				"task_id", taskID)
		}
		return nil, fmt.Errorf("failed to retrieve task: %w", err)
	}

	if !task.CanView(actorID) {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns a filtered, sorted page of tasks visible to the actor
func (s *TaskServiceImpl) ListTasks(
	ctx context.Context,
	actorID int64,
	filter domain.TaskFilter,
	sort domain.TaskSort,
	page domain.PageRequest,
) (*TaskPage, error) {
	if filter.Scope == "" {
		filter.Scope = domain.ScopeAll
	}
	if page.PerPage == 0 {
		page.PerPage = domain.DefaultPerPage
	}
	if page.Page == 0 {
		page.Page = 1
	}

	tasks, total, err := s.taskStore.List(ctx, actorID, filter, sort, page)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			"error", err,
			"actor_id", actorID)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &TaskPage{
		Tasks:      tasks,
		Pagination: domain.NewPagination(page, len(tasks), total),
	}, nil
}

// UpdateTask locks the task row, applies the patch, and saves it in one transaction
func (s *TaskServiceImpl) UpdateTask(
	ctx context.Context,
	actorID, taskID int64,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := patch.Check(); err != nil {
		return nil, err
	}

	var before, updated *domain.Task
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		current, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to retrieve task for update: %w", err)
		}
		if !current.CanView(actorID) {
			return store.ErrTaskNotFound
		}
		if !current.CanEdit(actorID) {
			return ErrTaskAccessDenied
		}
		before = current

		if patch.IsEmpty() {
			updated = current
			return nil
		}

		updated, err = current.ApplyPatch(patch, s.now())
		if err != nil {
			return err
		}

		if domain.AssigneeChanged(current, updated) {
			if err := s.checkAssignee(ctx, s.userStore.WithTx(tx), updated.AssigneeID); err != nil {
				return err
			}
		}

		if err := txTasks.Update(ctx, updated); err != nil {
			if errors.Is(err, store.ErrInvalidEntity) {
				return ErrAssigneeNotFound
			}
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation),
			errors.Is(err, domain.ErrForbidden),
			errors.Is(err, store.ErrTaskNotFound):
			log.Debug("task update rejected", "error", err, "task_id", taskID, "actor_id", actorID)
		default:
			log.Error("failed to update task", "error", err, "task_id", taskID, "actor_id", actorID)
		}
		return nil, err
	}

	log.Info("task updated successfully", "task_id", taskID, "actor_id", actorID)

	if domain.AssigneeChanged(before, updated) {
		s.emit(ctx, events.TaskAssigned, taskID, actorID, events.AssignmentPayload{
			PreviousAssigneeID: before.AssigneeID,
			AssigneeID:         updated.AssigneeID,
		})
	}

	return updated, nil
}

// DeleteTask removes a task created by the actor
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, actorID, taskID int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted *domain.Task
	err := s.tx.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.taskStore.WithTx(tx)

		current, err := txTasks.GetByIDForUpdate(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to retrieve task for delete: %w", err)
		}
		if !current.CanView(actorID) {
			return store.ErrTaskNotFound
		}
		if !current.CanDelete(actorID) {
			return ErrTaskAccessDenied
		}

		if err := txTasks.Delete(ctx, taskID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		deleted = current
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) || errors.Is(err, domain.ErrForbidden) {
			log.Debug("task delete rejected", "error", err, "task_id", taskID, "actor_id", actorID)
		} else {
			log.Error("failed to delete task", "error", err, "task_id", taskID, "actor_id", actorID)
		}
		return err
	}

	log.Info("task deleted successfully", "task_id", taskID, "actor_id", actorID)

	s.emit(ctx, events.TaskDeleted, taskID, actorID, events.TaskPayload{
		Name:        deleted.Name,
		CreatedByID: deleted.CreatedByID,
	})
	return nil
}

func (s *TaskServiceImpl) checkAssignee(ctx context.Context, users store.UserStore, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := users.GetByID(ctx, *assigneeID); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to look up assignee: %w", err)
	}
	return nil
}

// emit publishes an event. Failures are logged and never returned.
func (s *TaskServiceImpl) emit(ctx context.Context, eventType string, taskID, actorID int64, payload interface{}) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewEvent(eventType, taskID, actorID, payload)
	if err != nil {
		log.Error("failed to build task event", "error", err, "event_type", eventType, "task_id", taskID)
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit task event", "error", err, "event_type", eventType, "task_id", taskID)
	}
}
