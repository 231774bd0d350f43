package api

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateTaskRequest_DistinguishesAbsentFromNull(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":null,"dueDate":"2030-05-01"}`), &req))

	patch, err := req.toPatch()
	require.NoError(t, err)

	assert.False(t, patch.Name.Set)
	assert.False(t, patch.AssigneeID.Set)
	assert.True(t, patch.StartDate.IsNull())
	require.True(t, patch.DueDate.Set)
	assert.Equal(t, civil.Date{Year: 2030, Month: time.May, Day: 1}, *patch.DueDate.Value)
	assert.NoError(t, req.Validate())
}

func TestUpdateTaskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty", `{}`, "at least one field must be provided"},
		{"null due date", `{"dueDate":null}`, "dueDate: due date cannot be null"},
		{"null priority", `{"priority":null}`, "priority: priority cannot be null"},
		{"bad priority", `{"priority":"urgent"}`, "priority: invalid priority"},
		{"empty priority", `{"priority":""}`, "priority: priority cannot be empty"},
		{"blank priority", `{"priority":"   "}`, "priority: priority cannot be empty"},
		{"negative assignee", `{"assigneeId":-4}`, "assigneeId: must be positive"},
		{"clear assignee", `{"assigneeId":null}`, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req UpdateTaskRequest
			require.NoError(t, json.Unmarshal([]byte(tc.body), &req))

			err := req.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	assert.EqualError(t, UpdateUserRequest{}.Validate(), "at least one field must be provided")

	name := "Ada"
	assert.NoError(t, UpdateUserRequest{FirstName: &name}.Validate())
}

func TestTaskToResponse_DerivesStatus(t *testing.T) {
	task := &domain.Task{ID: 1, DueDate: civil.Date{Year: 2030, Month: time.March, Day: 1}, Priority: domain.PriorityLow}

	assert.Equal(t, "upcoming", taskToResponse(task, civil.Date{Year: 2030, Month: time.February, Day: 28}).Status)
	assert.Equal(t, "due_today", taskToResponse(task, civil.Date{Year: 2030, Month: time.March, Day: 1}).Status)
	assert.Equal(t, "overdue", taskToResponse(task, civil.Date{Year: 2030, Month: time.March, Day: 2}).Status)
}

func TestTaskResponse_JSONDates(t *testing.T) {
	start := civil.Date{Year: 2030, Month: time.January, Day: 5}
	resp := taskToResponse(&domain.Task{
		ID:        3,
		DueDate:   civil.Date{Year: 2030, Month: time.January, Day: 9},
		StartDate: &start,
		Priority:  domain.PriorityMedium,
	}, civil.Date{Year: 2030, Month: time.January, Day: 1})

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dueDate":"2030-01-09"`)
	assert.Contains(t, string(data), `"startDate":"2030-01-05"`)
	assert.Contains(t, string(data), `"assigneeId":null`)
}

func TestUpdateTaskRequest_PriorityIsNotDefaulted(t *testing.T) {
	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"priority":""}`), &req))

	_, err := req.toPatch()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, json.Unmarshal([]byte(`{"priority":"HIGH"}`), &req))
	patch, err := req.toPatch()
	require.NoError(t, err)
	require.True(t, patch.Priority.Set)
	assert.Equal(t, domain.PriorityHigh, *patch.Priority.Value)
}
