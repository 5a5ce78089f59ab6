package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) *time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEnumLabelsAndMembership(t *testing.T) {
	assert.Equal(t, "In Progress", TaskInProgress.Label())
	assert.Equal(t, "Medium", PriorityMedium.Label())
	assert.Equal(t, "Archived", ProjectArchived.Label())

	assert.False(t, TaskStatus("done").Valid())
	assert.False(t, TaskPriority("urgent").Valid())
	assert.False(t, ProjectStatus("paused").Valid())

	s, err := ParseTaskStatus("  In_Progress ")
	require.NoError(t, err)
	assert.Equal(t, TaskInProgress, s)

	_, err = ParseTaskPriority("critical")
	assert.Error(t, err)

	assert.Len(t, TaskStatusOptions(), 4)
	assert.Equal(t, Option{Value: "low", Label: "Low"}, TaskPriorityOptions()[0])
	assert.Len(t, ProjectStatusOptions(), 3)
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Equal(t, 0, TaskPriority("x").Rank())
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{Status: TaskPending}, false},
		{"due yesterday pending", Task{Status: TaskPending, DueDate: day("2025-03-09")}, true},
		{"due yesterday in progress", Task{Status: TaskInProgress, DueDate: day("2025-03-09")}, true},
		{"due today", Task{Status: TaskPending, DueDate: day("2025-03-10")}, false},
		{"due yesterday completed", Task{Status: TaskCompleted, DueDate: day("2025-03-09")}, false},
		{"due last year cancelled", Task{Status: TaskCancelled, DueDate: day("2024-03-09")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOverdue(&tt.task, now))
		})
	}
}

func TestIsDueSoon(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	window := 72 * time.Hour

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"no due date", Task{Status: TaskPending}, false},
		{"due today", Task{Status: TaskPending, DueDate: day("2025-03-10")}, true},
		{"due at window edge", Task{Status: TaskPending, DueDate: day("2025-03-13")}, true},
		{"due past window", Task{Status: TaskPending, DueDate: day("2025-03-14")}, false},
		{"overdue is not due soon", Task{Status: TaskPending, DueDate: day("2025-03-09")}, false},
		{"completed is not due soon", Task{Status: TaskCompleted, DueDate: day("2025-03-11")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDueSoon(&tt.task, now, window))
		})
	}
}

func TestTaskViewDerive(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	v := TaskView{Task: Task{Status: TaskPending, DueDate: day("2025-03-11")}}
	v.Derive(now, 72*time.Hour)

	assert.False(t, v.IsOverdue)
	assert.True(t, v.IsDueSoon)
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())

	ve.Add("name", "is required")
	ve.Add("end_date", "must be on or after start_date")

	err := fmt.Errorf("create project: %w", ve.OrNil())
	assert.True(t, errors.Is(err, ErrValidation))

	got, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"is required"}, got.Fields["name"])
	assert.Equal(t, "validation failed: end_date: must be on or after start_date, name: is required", got.Error())
}
