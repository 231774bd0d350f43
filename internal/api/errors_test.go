package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"missing token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"wrong token type", auth.ErrWrongTokenType, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"task access denied", service.ErrTaskAccessDenied, http.StatusForbidden},
		{"user access denied", service.ErrUserAccessDenied, http.StatusForbidden},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"wrapped task not found", fmt.Errorf("get task: %w", store.ErrTaskNotFound), http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"field validation", domain.NewValidationError("name", "name is required"), http.StatusBadRequest},
		{"assignee missing", service.ErrAssigneeNotFound, http.StatusBadRequest},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"nil", nil, "An unexpected error occurred"},
		{"unauthorized", domain.ErrUnauthorized, "Not authenticated"},
		{"expired token", auth.ErrExpiredToken, "Invalid or expired token"},
		{"expired refresh token", auth.ErrExpiredRefreshToken, "Invalid or expired refresh token"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"task access denied", service.ErrTaskAccessDenied, "You do not have permission to perform this action on the task"},
		{"user access denied", service.ErrUserAccessDenied, "You can only modify your own account"},
		{"user not found", store.ErrUserNotFound, "User not found"},
		{"task not found", store.ErrTaskNotFound, "Task not found"},
		{"email exists", store.ErrEmailExists, "Email already exists"},
		{"field validation", domain.NewValidationError("dueDate", "due date is required"), "dueDate: due date is required"},
		{"assignee missing", service.ErrAssigneeNotFound, "assigneeId: assignee does not exist"},
		{"body too large", &http.MaxBytesError{Limit: 10}, "Request body too large"},
		{"internal detail hidden", errors.New("pq: relation \"tasks\" does not exist"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestHandleAPIError_Fallback(t *testing.T) {
	t.Run("fallback replaces generic 500 message", func(t *testing.T) {
		rr := recordAPIError(errors.New("boom"), "Failed to list tasks")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Contains(t, rr.Body.String(), "Failed to list tasks")
		assert.NotContains(t, rr.Body.String(), "boom")
	})

	t.Run("fallback ignored for mapped errors", func(t *testing.T) {
		rr := recordAPIError(store.ErrTaskNotFound, "Failed to get task")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Contains(t, rr.Body.String(), "Task not found")
	})
}

func TestDescribeDecodeError(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}

	syntaxErr := json.Unmarshal([]byte(`{"name":}`), &target)
	typeErr := json.Unmarshal([]byte(`{"name":12}`), &target)

	assert.Equal(t, "Request body is required", describeDecodeError(shared.ErrEmptyBody))
	assert.Contains(t, describeDecodeError(syntaxErr), "malformed JSON at position")
	assert.Equal(t, "Invalid request format: name has the wrong type", describeDecodeError(typeErr))
	assert.Equal(t, `Invalid request format: unknown field "role"`,
		describeDecodeError(errors.New(`json: unknown field "role"`)))
	assert.Equal(t, "Invalid request format", describeDecodeError(errors.New("unexpected EOF")))
}

func recordAPIError(err error, fallback string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/task/list", nil)
	HandleAPIError(rr, req, err, fallback)
	return rr
}
