package api

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TokenTypeBearer is reported in token responses.
const TokenTypeBearer = "bearer"

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,max=128"`
	LastName  string `json:"lastName"  validate:"required,max=128"`
	Email     string `json:"email"     validate:"required,email,max=320"`
	Password  string `json:"password"  validate:"required,min=8,max=72"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the optional body of the refresh endpoint.
// Browsers send the refresh_token cookie instead.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`

	// ExpiresAt is the RFC 3339 time when the access token expires
	ExpiresAt string `json:"expiresAt"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64      `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UpdateUserRequest is a partial profile update. Omitted fields are unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=128"`
	LastName  *string `json:"lastName"  validate:"omitempty,min=1,max=128"`
	Email     *string `json:"email"     validate:"omitempty,email,max=320"`
	Password  *string `json:"password"  validate:"omitempty,min=8,max=72"`
}

// Validate requires at least one field.
func (r UpdateUserRequest) Validate() error {
	if r.toPatch().IsEmpty() {
		return domain.NewValidationError("", "at least one field must be provided")
	}
	return nil
}

func (r UpdateUserRequest) toPatch() domain.UserPatch {
	return domain.UserPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Password:  r.Password,
	}
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Name        string      `json:"name"        validate:"required,max=128"`
	Description string      `json:"description" validate:"max=20000"`
	AssigneeID  *int64      `json:"assigneeId"  validate:"omitempty,gt=0"`
	DueDate     civil.Date  `json:"dueDate"`
	StartDate   *civil.Date `json:"startDate"`
	Priority    string      `json:"priority"    validate:"omitempty,oneof=low medium high"`
}

// Validate checks the fields struct tags cannot express.
func (r CreateTaskRequest) Validate() error {
	if r.DueDate.IsZero() {
		return domain.NewValidationError("dueDate", "required field")
	}
	return nil
}

func (r CreateTaskRequest) toInput() (service.CreateTaskInput, error) {
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return service.CreateTaskInput{}, err
	}
	return service.CreateTaskInput{
		Name:        r.Name,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		DueDate:     r.DueDate,
		StartDate:   r.StartDate,
		Priority:    priority,
	}, nil
}

// CreateTaskResponse is returned after a task is created.
type CreateTaskResponse struct {
	Message string `json:"message"`
	TaskID  int64  `json:"taskId"`
}

// UpdateTaskRequest is a partial task update. An omitted key leaves the field
// unchanged; null clears assigneeId or startDate.
type UpdateTaskRequest struct {
	Name        domain.Optional[string]     `json:"name"`
	Description domain.Optional[string]     `json:"description"`
	AssigneeID  domain.Optional[int64]      `json:"assigneeId"`
	DueDate     domain.Optional[civil.Date] `json:"dueDate"`
	StartDate   domain.Optional[civil.Date] `json:"startDate"`
	Priority    domain.Optional[string]     `json:"priority"`
}

// Validate requires at least one field and rejects nulls that cannot be applied.
func (r UpdateTaskRequest) Validate() error {
	patch, err := r.toPatch()
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return domain.NewValidationError("", "at least one field must be provided")
	}
	if r.AssigneeID.Value != nil && *r.AssigneeID.Value <= 0 {
		return domain.NewValidationError("assigneeId", "must be positive")
	}
	return patch.Check()
}

func (r UpdateTaskRequest) toPatch() (domain.TaskPatch, error) {
	patch := domain.TaskPatch{
		Name:        r.Name,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		DueDate:     r.DueDate,
		StartDate:   r.StartDate,
	}
	if r.Priority.Set {
		if r.Priority.Value == nil {
			patch.Priority = domain.Null[domain.Priority]()
		} else {
			// ParsePriority defaults a blank value to low, which only applies on create.
			if strings.TrimSpace(*r.Priority.Value) == "" {
				return domain.TaskPatch{}, domain.NewValidationError("priority", "priority cannot be empty")
			}
			p, err := domain.ParsePriority(*r.Priority.Value)
			if err != nil {
				return domain.TaskPatch{}, err
			}
			patch.Priority = domain.Some(p)
		}
	}
	return patch, nil
}

// TaskResponse is the public view of a task. Status is derived from the due date.
type TaskResponse struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedByID int64       `json:"createdById"`
	AssigneeID  *int64      `json:"assigneeId"`
	DueDate     civil.Date  `json:"dueDate"`
	StartDate   *civil.Date `json:"startDate"`
	Priority    string      `json:"priority"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   *time.Time  `json:"updatedAt"`
}

func taskToResponse(t *domain.Task, today civil.Date) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		CreatedByID: t.CreatedByID,
		AssigneeID:  t.AssigneeID,
		DueDate:     t.DueDate,
		StartDate:   t.StartDate,
		Priority:    string(t.Priority),
		Status:      string(t.Status(today)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// PaginationResponse describes the returned page of a listing.
type PaginationResponse struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Count      int `json:"count"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListTasksResponse is returned by the task listing endpoint.
type ListTasksResponse struct {
	Message    string             `json:"message"`
	Tasks      []TaskResponse     `json:"tasks"`
	Pagination PaginationResponse `json:"pagination"`
}

func taskPageToResponse(page *service.TaskPage, today civil.Date) ListTasksResponse {
	tasks := make([]TaskResponse, 0, len(page.Tasks))
	for _, t := range page.Tasks {
		tasks = append(tasks, taskToResponse(t, today))
	}
	p := page.Pagination
	return ListTasksResponse{
		Message: "Tasks fetched successfully",
		Tasks:   tasks,
		Pagination: PaginationResponse{
			Page:       p.Page,
			Limit:      p.Limit,
			Count:      p.Count,
			Total:      p.Total,
			TotalPages: p.TotalPages,
		},
	}
}
