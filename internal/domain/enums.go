package domain

import (
	"fmt"
	"strings"
)

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Option is a value/label pair handed to clients building pickers.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	taskStatuses    = []TaskStatus{TaskPending, TaskInProgress, TaskCompleted, TaskCancelled}
	taskPriorities  = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}
	projectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectArchived}

	taskStatusLabels = map[TaskStatus]string{
		TaskPending:    "Pending",
		TaskInProgress: "In Progress",
		TaskCompleted:  "Completed",
		TaskCancelled:  "Cancelled",
	}
	taskPriorityLabels = map[TaskPriority]string{
		PriorityLow:    "Low",
		PriorityMedium: "Medium",
		PriorityHigh:   "High",
	}
	projectStatusLabels = map[ProjectStatus]string{
		ProjectActive:    "Active",
		ProjectCompleted: "Completed",
		ProjectArchived:  "Archived",
	}
)

func AllTaskStatuses() []TaskStatus       { return append([]TaskStatus(nil), taskStatuses...) }
func AllTaskPriorities() []TaskPriority   { return append([]TaskPriority(nil), taskPriorities...) }
func AllProjectStatuses() []ProjectStatus { return append([]ProjectStatus(nil), projectStatuses...) }

func (s TaskStatus) Valid() bool {
	_, ok := taskStatusLabels[s]
	return ok
}

func (s TaskStatus) Label() string {
	if l, ok := taskStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal statuses end overdue and due-soon classification.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskCancelled
}

func (p TaskPriority) Valid() bool {
	_, ok := taskPriorityLabels[p]
	return ok
}

func (p TaskPriority) Label() string {
	if l, ok := taskPriorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// Rank orders priorities low < medium < high; unknown values rank 0.
func (p TaskPriority) Rank() int {
	for i, v := range taskPriorities {
		if v == p {
			return i + 1
		}
	}
	return 0
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectStatusLabels[s]
	return ok
}

func (s ProjectStatus) Label() string {
	if l, ok := projectStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

func ParseTaskStatus(v string) (TaskStatus, error) {
	s := TaskStatus(normalizeEnum(v))
	if !s.Valid() {
		return "", fmt.Errorf("invalid task status %q", v)
	}
	return s, nil
}

func ParseTaskPriority(v string) (TaskPriority, error) {
	p := TaskPriority(normalizeEnum(v))
	if !p.Valid() {
		return "", fmt.Errorf("invalid task priority %q", v)
	}
	return p, nil
}

func ParseProjectStatus(v string) (ProjectStatus, error) {
	s := ProjectStatus(normalizeEnum(v))
	if !s.Valid() {
		return "", fmt.Errorf("invalid project status %q", v)
	}
	return s, nil
}

func TaskStatusOptions() []Option {
	out := make([]Option, 0, len(taskStatuses))
	for _, s := range taskStatuses {
		out = append(out, Option{Value: string(s), Label: s.Label()})
	}
	return out
}

func TaskPriorityOptions() []Option {
	out := make([]Option, 0, len(taskPriorities))
	for _, p := range taskPriorities {
		out = append(out, Option{Value: string(p), Label: p.Label()})
	}
	return out
}

func ProjectStatusOptions() []Option {
	out := make([]Option, 0, len(projectStatuses))
	for _, s := range projectStatuses {
		out = append(out, Option{Value: string(s), Label: s.Label()})
	}
	return out
}

func normalizeEnum(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
