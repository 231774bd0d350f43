package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// PostgresTaskStore implements store.TaskStore on PostgreSQL.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresTaskStore creates a task store. A nil logger uses slog.Default().
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
		now:    time.Now,
	}
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
		now:    s.now,
	}
}

const taskColumns = `id, name, description, created_by_id, assignee_id, due_date, start_date, priority, created_at, updated_at`

// Create implements store.TaskStore.Create.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create", slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO tasks (name, description, created_by_id, assignee_id, due_date, start_date, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Name,
		task.Description,
		task.CreatedByID,
		task.AssigneeID,
		dateArg(task.DueDate),
		nullableDateArg(task.StartDate),
		string(task.Priority),
	).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.Int64("created_by_id", task.CreatedByID))
			return fmt.Errorf("%w: creator or assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to insert task", slog.String("error", err.Error()))
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}

	log.Info("task created successfully",
		slog.Int64("task_id", task.ID),
		slog.Int64("created_by_id", task.CreatedByID))
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, false)
}

// GetByIDForUpdate implements store.TaskStore.GetByIDForUpdate.
func (s *PostgresTaskStore) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Task, error) {
	return s.get(ctx, id, true)
}

func (s *PostgresTaskStore) get(ctx context.Context, id int64, forUpdate bool) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	log.Debug("retrieving task by ID", slog.Int64("task_id", id), slog.Bool("for_update", forUpdate))

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var row taskRow
	if err := s.db.QueryRowContext(ctx, query, id).Scan(row.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}
	return row.toDomain(), nil
}

// List implements store.TaskStore.List.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID int64,
	filter domain.TaskFilter,
	sort domain.TaskSort,
	page domain.PageRequest,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	q := buildListQuery(userID, filter, civil.DateOf(s.now().UTC()))
	orderBy, err := orderByClause(sort)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + taskColumns + `, COUNT(*) OVER() AS total_count FROM tasks WHERE ` +
		q.where() + ` ORDER BY ` + orderBy +
		fmt.Sprintf(` LIMIT %s OFFSET %s`, q.arg(page.PerPage), q.arg(page.Offset()))

	rows, err := s.db.QueryContext(ctx, query, q.args...)
	if err != nil {
		log.Error("failed to list tasks", slog.String("error", err.Error()), slog.Int64("user_id", userID))
		return nil, 0, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0, page.PerPage)
	total := 0
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(append(row.dest(), &total)...); err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, 0, store.NewStoreError("task", "list", "failed to scan task", err)
		}
		tasks = append(tasks, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		log.Error("failed iterating task rows", slog.String("error", err.Error()))
		return nil, 0, store.NewStoreError("task", "list", "failed to read tasks", MapError(err))
	}

	// Past the last page the window count is unavailable.
	if len(tasks) == 0 && page.Offset() > 0 {
		countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + q.where()
		if err := s.db.QueryRowContext(ctx, countQuery, q.args[:q.filterArgs]...).Scan(&total); err != nil {
			log.Error("failed to count tasks", slog.String("error", err.Error()))
			return nil, 0, store.NewStoreError("task", "list", "failed to count tasks", MapError(err))
		}
	}

	log.Debug("tasks listed",
		slog.Int64("user_id", userID),
		slog.Int("count", len(tasks)),
		slog.Int("total", total))
	return tasks, total, nil
}

// Update implements store.TaskStore.Update.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()), slog.Int64("task_id", task.ID))
		return err
	}

	query := `
		UPDATE tasks
		SET name = $1, description = $2, assignee_id = $3, due_date = $4,
		    start_date = $5, priority = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := s.db.QueryRowContext(
		ctx,
		query,
		task.Name,
		task.Description,
		task.AssigneeID,
		dateArg(task.DueDate),
		nullableDateArg(task.StartDate),
		string(task.Priority),
		task.ID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return store.ErrTaskNotFound
		case IsForeignKeyViolation(err):
			log.Warn("foreign key violation during task update", slog.Int64("task_id", task.ID))
			return fmt.Errorf("%w: assignee does not exist", store.ErrInvalidEntity)
		}
		log.Error("failed to update task", slog.String("error", err.Error()), slog.Int64("task_id", task.ID))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	log.Info("task updated successfully", slog.Int64("task_id", task.ID))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task", slog.String("error", err.Error()), slog.Int64("task_id", id))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted successfully", slog.Int64("task_id", id))
	return nil
}

// taskRow mirrors a tasks row; dates arrive as time.Time.
type taskRow struct {
	task      domain.Task
	priority  string
	dueDate   time.Time
	startDate sql.NullTime
}

func (r *taskRow) dest() []any {
	return []any{
		&r.task.ID,
		&r.task.Name,
		&r.task.Description,
		&r.task.CreatedByID,
		&r.task.AssigneeID,
		&r.dueDate,
		&r.startDate,
		&r.priority,
		&r.task.CreatedAt,
		&r.task.UpdatedAt,
	}
}

func (r *taskRow) toDomain() *domain.Task {
	t := r.task
	t.Priority = domain.Priority(r.priority)
	t.DueDate = civil.DateOf(r.dueDate)
	if r.startDate.Valid {
		d := civil.DateOf(r.startDate.Time)
		t.StartDate = &d
	}
	return &t
}

func dateArg(d civil.Date) time.Time {
	return d.In(time.UTC)
}

func nullableDateArg(d *civil.Date) any {
	if d == nil {
		return nil
	}
	return dateArg(*d)
}

// listQuery accumulates WHERE conditions with positional arguments.
type listQuery struct {
	conds      []string
	args       []any
	filterArgs int
}

func (q *listQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

func (q *listQuery) where() string {
	return strings.Join(q.conds, " AND ")
}

func buildListQuery(userID int64, filter domain.TaskFilter, today civil.Date) *listQuery {
	q := &listQuery{}

	user := q.arg(userID)
	switch filter.Scope {
	case domain.ScopeCreated:
		q.conds = append(q.conds, "created_by_id = "+user)
	case domain.ScopeAssigned:
		q.conds = append(q.conds, "assignee_id = "+user)
	default:
		q.conds = append(q.conds, "(created_by_id = "+user+" OR assignee_id = "+user+")")
	}

	if filter.Priority != nil {
		q.conds = append(q.conds, "priority = "+q.arg(string(*filter.Priority)))
	}

	if filter.Status != nil {
		op := "="
		switch *filter.Status {
		case domain.StatusOverdue:
			op = "<"
		case domain.StatusUpcoming:
			op = ">"
		}
		q.conds = append(q.conds, "due_date "+op+" "+q.arg(dateArg(today)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		p := q.arg("%" + escapeLike(search) + "%")
		q.conds = append(q.conds, "(name ILIKE "+p+` ESCAPE '\' OR description ILIKE `+p+` ESCAPE '\')`)
	}

	q.filterArgs = len(q.args)
	return q
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var sortColumns = map[domain.SortField]string{
	domain.SortByID:        "id",
	domain.SortByName:      "name",
	domain.SortByDueDate:   "due_date",
	domain.SortByStartDate: "start_date",
	domain.SortByPriority:  "priority",
	domain.SortByCreatedAt: "created_at",
}

func orderByClause(sort domain.TaskSort) (string, error) {
	by := sort.By
	if by == "" {
		by = domain.SortByID
	}
	column, ok := sortColumns[by]
	if !ok {
		return "", domain.NewValidationError("sort_by", fmt.Sprintf("unsupported sort field %q", sort.By))
	}

	dir := "ASC"
	switch sort.Order {
	case domain.SortAsc, "":
	case domain.SortDesc:
		dir = "DESC"
	default:
		return "", domain.NewValidationError("sort_order", fmt.Sprintf("unsupported sort order %q", sort.Order))
	}

	if column == "id" {
		return "id " + dir, nil
	}
	nulls := ""
	if column == "start_date" {
		nulls = " NULLS LAST"
	}
	return column + " " + dir + nulls + ", id " + dir, nil
}
