package domain

import (
	"fmt"
	"math"
	"strings"
)

// Page size limits for task listings.
const (
	DefaultPerPage = 10
	MaxPerPage     = 100

	// MaxPage keeps (Page-1)*PerPage from overflowing an int32 row offset.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// TaskScope narrows a listing to the tasks a user created or is assigned to.
type TaskScope string

const (
	ScopeAll      TaskScope = "all"
	ScopeCreated  TaskScope = "created"
	ScopeAssigned TaskScope = "assigned"
)

// ParseTaskScope converts a string to a TaskScope. An empty string yields ScopeAll.
func ParseTaskScope(s string) (TaskScope, error) {
	switch sc := TaskScope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeAll, nil
	case ScopeAll, ScopeCreated, ScopeAssigned:
		return sc, nil
	default:
		return "", NewValidationError("scope", fmt.Sprintf("invalid scope %q, must be one of all, created, assigned", s))
	}
}

// TaskFilter restricts which visible tasks a listing returns.
type TaskFilter struct {
	Priority *Priority
	Status   *TaskStatus
	Search   string
	Scope    TaskScope
}

// SortField is a whitelisted task column listings can be ordered by.
type SortField string

const (
	SortByID        SortField = "id"
	SortByName      SortField = "name"
	SortByDueDate   SortField = "due_date"
	SortByStartDate SortField = "start_date"
	SortByPriority  SortField = "priority"
	SortByCreatedAt SortField = "created_at"
)

// SortOrder is the direction of a listing.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskSort orders a task listing. The zero value sorts by id ascending.
type TaskSort struct {
	By    SortField
	Order SortOrder
}

// ParseTaskSort validates a sort field and order. Empty values fall back to id asc.
func ParseTaskSort(by, order string) (TaskSort, error) {
	s := TaskSort{
		By:    SortField(strings.ToLower(strings.TrimSpace(by))),
		Order: SortOrder(strings.ToLower(strings.TrimSpace(order))),
	}
	if s.By == "" {
		s.By = SortByID
	}
	if s.Order == "" {
		s.Order = SortAsc
	}

	switch s.By {
	case SortByID, SortByName, SortByDueDate, SortByStartDate, SortByPriority, SortByCreatedAt:
	default:
		return TaskSort{}, NewValidationError("sort_by",
			fmt.Sprintf("invalid sort field %q, must be one of id, name, due_date, start_date, priority, created_at", by))
	}
	if s.Order != SortAsc && s.Order != SortDesc {
		return TaskSort{}, NewValidationError("sort_order", fmt.Sprintf("invalid sort order %q, must be asc or desc", order))
	}
	return s, nil
}

// PageRequest selects a page of a listing.
type PageRequest struct {
	Page    int
	PerPage int
}

// NewPageRequest validates page and perPage; zero values take the defaults.
func NewPageRequest(page, perPage int) (PageRequest, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return PageRequest{}, NewValidationError("page", "page must be at least 1")
	}
	if page > MaxPage {
		return PageRequest{}, NewValidationError("page", fmt.Sprintf("page must be at most %d", MaxPage))
	}
	if perPage < 1 || perPage > MaxPerPage {
		return PageRequest{}, NewValidationError("records_per_page", "records_per_page must be between 1 and 100")
	}
	return PageRequest{Page: page, PerPage: perPage}, nil
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Pagination describes the page a listing returned.
type Pagination struct {
	Page       int
	Limit      int
	Count      int
	Total      int
	TotalPages int
}

// NewPagination builds the pagination metadata for a page holding count of total rows.
func NewPagination(req PageRequest, count, total int) Pagination {
	totalPages := 0
	if req.PerPage > 0 {
		totalPages = (total + req.PerPage - 1) / req.PerPage
	}
	return Pagination{
		Page:       req.Page,
		Limit:      req.PerPage,
		Count:      count,
		Total:      total,
		TotalPages: totalPages,
	}
}
