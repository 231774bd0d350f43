package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

// MaxDescriptionLength is the longest task description accepted.
const MaxDescriptionLength = 20000

// Priority ranks a task.
type Priority string

// Valid priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority converts a string to a Priority. An empty string yields PriorityLow.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityLow, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", NewValidationError("priority", fmt.Sprintf("invalid priority %q, must be one of low, medium, high", s))
	}
}

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskStatus is derived from a task's due date relative to the current day.
type TaskStatus string

const (
	StatusOverdue  TaskStatus = "overdue"
	StatusDueToday TaskStatus = "due_today"
	StatusUpcoming TaskStatus = "upcoming"
)

// ParseTaskStatus converts a string to a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch st := TaskStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusOverdue, StatusDueToday, StatusUpcoming:
		return st, nil
	default:
		return "", NewValidationError("status", fmt.Sprintf("invalid status %q, must be one of overdue, due_today, upcoming", s))
	}
}

// Task is a unit of work created by a user and optionally assigned to another.
type Task struct {
	ID          int64
	Name        string
	Description string
	CreatedByID int64
	AssigneeID  *int64
	DueDate     civil.Date
	StartDate   *civil.Date
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// NewTask creates a validated Task owned by createdByID.
func NewTask(
	name, description string,
	createdByID int64,
	assigneeID *int64,
	dueDate civil.Date,
	startDate *civil.Date,
	priority Priority,
) (*Task, error) {
	if priority == "" {
		priority = PriorityLow
	}

	task := &Task{
		Name:        strings.TrimSpace(name),
		Description: description,
		CreatedByID: createdByID,
		AssigneeID:  assigneeID,
		DueDate:     dueDate,
		StartDate:   startDate,
		Priority:    priority,
		CreatedAt:   time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if err := validateName("name", t.Name); err != nil {
		return err
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "description must be at most 20000 characters long")
	}
	if t.CreatedByID <= 0 {
		return NewValidationError("createdById", "creator is required")
	}
	if t.AssigneeID != nil && *t.AssigneeID <= 0 {
		return NewValidationError("assigneeId", "assignee must be a positive user ID")
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", "priority must be one of low, medium, high")
	}
	if t.DueDate.IsZero() {
		return NewValidationError("dueDate", "due date is required")
	}
	if !t.DueDate.IsValid() {
		return NewValidationError("dueDate", "due date is not a valid date")
	}
	if t.StartDate != nil {
		if !t.StartDate.IsValid() {
			return NewValidationError("startDate", "start date is not a valid date")
		}
		if t.StartDate.After(t.DueDate) {
			return NewValidationError("startDate", "start date must not be after the due date")
		}
	}
	return nil
}

// Status derives the task's status for the given calendar day.
func (t *Task) Status(today civil.Date) TaskStatus {
	switch {
	case t.DueDate.Before(today):
		return StatusOverdue
	case t.DueDate.After(today):
		return StatusUpcoming
	default:
		return StatusDueToday
	}
}

// IsAssignedTo reports whether userID is the task's assignee.
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// CanView reports whether userID may read the task.
func (t *Task) CanView(userID int64) bool {
	return t.CreatedByID == userID || t.IsAssignedTo(userID)
}

// CanEdit reports whether userID may modify the task.
func (t *Task) CanEdit(userID int64) bool {
	return t.CanView(userID)
}

// CanDelete reports whether userID may delete the task. Only the creator can.
func (t *Task) CanDelete(userID int64) bool {
	return t.CreatedByID == userID
}

// TaskPatch describes a partial task update.
// Name, Description, DueDate and Priority may be absent but not null.
type TaskPatch struct {
	Name        Optional[string]
	Description Optional[string]
	AssigneeID  Optional[int64]
	DueDate     Optional[civil.Date]
	StartDate   Optional[civil.Date]
	Priority    Optional[Priority]
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Description.Set && !p.AssigneeID.Set &&
		!p.DueDate.Set && !p.StartDate.Set && !p.Priority.Set
}

// Check rejects explicit nulls for fields that cannot be cleared.
func (p TaskPatch) Check() error {
	switch {
	case p.Name.IsNull():
		return NewValidationError("name", "name cannot be null")
	case p.Description.IsNull():
		return NewValidationError("description", "description cannot be null")
	case p.DueDate.IsNull():
		return NewValidationError("dueDate", "due date cannot be null")
	case p.Priority.IsNull():
		return NewValidationError("priority", "priority cannot be null")
	}
	return nil
}

// ApplyPatch returns a copy of t with the patch applied and validated.
func (t *Task) ApplyPatch(p TaskPatch, now time.Time) (*Task, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}

	updated := *t

	if p.Name.Set {
		updated.Name = strings.TrimSpace(*p.Name.Value)
	}
	if p.Description.Set {
		updated.Description = *p.Description.Value
	}
	if p.AssigneeID.Set {
		updated.AssigneeID = p.AssigneeID.Value
	}
	if p.DueDate.Set {
		updated.DueDate = *p.DueDate.Value
	}
	if p.StartDate.Set {
		updated.StartDate = p.StartDate.Value
	}
	if p.Priority.Set {
		updated.Priority = *p.Priority.Value
	}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	ts := now.UTC()
	updated.UpdatedAt = &ts
	return &updated, nil
}

// AssigneeChanged reports whether two tasks have different assignees.
func AssigneeChanged(before, after *Task) bool {
	switch {
	case before.AssigneeID == nil && after.AssigneeID == nil:
		return false
	case before.AssigneeID == nil || after.AssigneeID == nil:
		return true
	default:
		return *before.AssigneeID != *after.AssigneeID
	}
}
