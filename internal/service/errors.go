package service

import (
	"fmt"

	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Sentinel errors returned by the services. Callers check them with errors.Is.
var (
	// ErrTaskAccessDenied indicates the actor can see the task but may not perform the operation.
	// API layer should map this to HTTP 403 Forbidden.
	ErrTaskAccessDenied = fmt.Errorf("%w: task access denied", domain.ErrForbidden)

	// ErrUserAccessDenied indicates an attempt to modify another user's account.
	// API layer should map this to HTTP 403 Forbidden.
	ErrUserAccessDenied = fmt.Errorf("%w: user access denied", domain.ErrForbidden)

	// ErrAssigneeNotFound indicates the requested assignee does not exist.
	// It is a validation error on the assigneeId field.
	ErrAssigneeNotFound error = domain.NewValidationError("assigneeId", "assignee does not exist")
)
