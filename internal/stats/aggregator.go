// Package stats computes task counts, completion rates and due-date buckets.
// Every computation takes the reference time as a parameter and never reads the clock.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
)

const (
	DefaultDueSoonWindow = 3 * 24 * time.Hour
	DefaultListLimit     = 10
)

type TaskStats struct {
	Total          int                         `json:"total"`
	Completed      int                         `json:"completed"`
	Pending        int                         `json:"pending"`
	InProgress     int                         `json:"in_progress"`
	Cancelled      int                         `json:"cancelled"`
	Overdue        int                         `json:"overdue"`
	DueSoon        int                         `json:"due_soon"`
	CompletionRate float64                     `json:"completion_rate"`
	ByPriority     map[domain.TaskPriority]int `json:"by_priority"`
}

type ProjectStats struct {
	ProjectID   string               `json:"project_id"`
	ProjectName string               `json:"project_name"`
	Status      domain.ProjectStatus `json:"status"`
	TaskStats
}

type ProjectCounts struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Archived  int `json:"archived"`
}

type DashboardStats struct {
	Projects    ProjectCounts     `json:"projects"`
	Owned       TaskStats         `json:"owned"`
	Assigned    TaskStats         `json:"assigned"`
	DueSoon     []domain.TaskView `json:"due_soon"`
	Overdue     []domain.TaskView `json:"overdue"`
	GeneratedAt time.Time         `json:"generated_at"`
}

type Aggregator struct {
	DueSoonWindow time.Duration
	// ListLimit caps the due-soon and overdue lists of the dashboard; 0 means no cap.
	ListLimit int
}

func NewAggregator(window time.Duration) *Aggregator {
	if window <= 0 {
		window = DefaultDueSoonWindow
	}
	return &Aggregator{DueSoonWindow: window, ListLimit: DefaultListLimit}
}

// CompletionRate is completed/total as a percentage rounded to two decimals, 0 for an empty set.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(completed)/float64(total)*100*100) / 100
}

func (a *Aggregator) Summarize(tasks []domain.TaskView, now time.Time) TaskStats {
	s := TaskStats{ByPriority: make(map[domain.TaskPriority]int, 3)}
	for _, p := range domain.AllTaskPriorities() {
		s.ByPriority[p] = 0
	}

	for i := range tasks {
		t := &tasks[i].Task
		s.Total++

		switch t.Status {
		case domain.TaskCompleted:
			s.Completed++
		case domain.TaskPending:
			s.Pending++
		case domain.TaskInProgress:
			s.InProgress++
		case domain.TaskCancelled:
			s.Cancelled++
		}

		if t.Priority.Valid() {
			s.ByPriority[t.Priority]++
		}
		if domain.IsOverdue(t, now) {
			s.Overdue++
		}
		if domain.IsDueSoon(t, now, a.DueSoonWindow) {
			s.DueSoon++
		}
	}

	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	return s
}

func (a *Aggregator) ProjectStats(p *domain.Project, tasks []domain.TaskView, now time.Time) ProjectStats {
	out := ProjectStats{TaskStats: a.Summarize(tasks, now)}
	if p != nil {
		out.ProjectID = p.ID
		out.ProjectName = p.Name
		out.Status = p.Status
	}
	return out
}

// Dashboard aggregates tasks in the user's own projects and tasks assigned to the user
// independently; a task may count in both. The due lists are merged across both sources.
func (a *Aggregator) Dashboard(projects []domain.Project, owned, assigned []domain.TaskView, now time.Time) DashboardStats {
	d := DashboardStats{
		Projects:    countProjects(projects),
		Owned:       a.Summarize(owned, now),
		Assigned:    a.Summarize(assigned, now),
		GeneratedAt: now,
	}

	merged := dedupe(owned, assigned)
	d.DueSoon = capList(a.DueSoon(merged, now), a.ListLimit)
	d.Overdue = capList(a.Overdue(merged, now), a.ListLimit)
	return d
}

// DueSoon returns copies of the tasks due within the window, ascending by due date.
func (a *Aggregator) DueSoon(tasks []domain.TaskView, now time.Time) []domain.TaskView {
	return a.collect(tasks, now, func(t *domain.Task) bool {
		return domain.IsDueSoon(t, now, a.DueSoonWindow)
	})
}

// Overdue returns copies of the overdue tasks, ascending by due date.
func (a *Aggregator) Overdue(tasks []domain.TaskView, now time.Time) []domain.TaskView {
	return a.collect(tasks, now, func(t *domain.Task) bool {
		return domain.IsOverdue(t, now)
	})
}

func (a *Aggregator) collect(tasks []domain.TaskView, now time.Time, keep func(*domain.Task) bool) []domain.TaskView {
	out := make([]domain.TaskView, 0)
	for i := range tasks {
		if !keep(&tasks[i].Task) {
			continue
		}
		v := tasks[i]
		v.Derive(now, a.DueSoonWindow)
		out = append(out, v)
	}
	sortByDueDate(out)
	return out
}

func sortByDueDate(tasks []domain.TaskView) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		if !di.Equal(*dj) {
			return di.Before(*dj)
		}
		if tasks[i].Title != tasks[j].Title {
			return tasks[i].Title < tasks[j].Title
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func countProjects(projects []domain.Project) ProjectCounts {
	var c ProjectCounts
	for _, p := range projects {
		c.Total++
		switch p.Status {
		case domain.ProjectActive:
			c.Active++
		case domain.ProjectCompleted:
			c.Completed++
		case domain.ProjectArchived:
			c.Archived++
		}
	}
	return c
}

func dedupe(lists ...[]domain.TaskView) []domain.TaskView {
	seen := make(map[string]struct{})
	var out []domain.TaskView
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func capList(tasks []domain.TaskView, limit int) []domain.TaskView {
	if limit > 0 && len(tasks) > limit {
		return tasks[:limit]
	}
	return tasks
}
