package service

import (
	"context"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/policy"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
)

// Repository is the persistence surface the service needs; *repository.ProjectRepository satisfies it.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id string, withTrashed bool) (*domain.Project, error)
	List(ctx context.Context, plan query.Plan) ([]domain.Project, int, error)
	Update(ctx context.Context, p *domain.Project) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
}

// TaskLister loads the tasks of one project, trashed ones included when asked.
type TaskLister interface {
	ListByProject(ctx context.Context, projectID string, withTrashed bool) ([]domain.TaskView, error)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...string) error
}

type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	DueSoonWindow   time.Duration
	Clock           func() time.Time
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo  Repository
	tasks TaskLister
	cache CacheInvalidator
	agg   *stats.Aggregator
	opts  Options
}

// NewProjectService creates a new project service. cache may be nil.
func NewProjectService(repo Repository, tasks TaskLister, cache CacheInvalidator, opts Options) *ProjectService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &ProjectService{
		repo:  repo,
		tasks: tasks,
		cache: cache,
		agg:   stats.NewAggregator(opts.DueSoonWindow),
		opts:  opts,
	}
}

// Create creates a new project owned by the actor
func (s *ProjectService) Create(ctx context.Context, actor domain.Actor, cmd validation.CreateProject) (*domain.Project, error) {
	if !policy.CreateProject(actor) {
		return nil, domain.ErrForbidden
	}
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}

	p := &domain.Project{
		OwnerID:     actor.ID,
		Name:        strings.TrimSpace(cmd.Name),
		Description: cmd.Description,
		Status:      domain.ProjectActive,
		StartDate:   validation.Date(cmd.StartDate),
		EndDate:     validation.Date(cmd.EndDate),
	}
	if cmd.Status != "" {
		p.Status, _ = domain.ParseProjectStatus(cmd.Status)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.OwnerID)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewProject(actor, p).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns one page of the projects visible to the actor
func (s *ProjectService) List(ctx context.Context, actor domain.Actor, q query.ProjectQuery) (query.Page[domain.Project], error) {
	if !policy.ViewAnyProjects(actor) {
		return query.Page[domain.Project]{}, domain.ErrForbidden
	}
	q.Normalize(s.opts.DefaultPageSize, s.opts.MaxPageSize)

	plan, err := query.BuildProjectPlan(actor, q)
	if err != nil {
		return query.Page[domain.Project]{}, err
	}
	items, total, err := s.repo.List(ctx, plan)
	if err != nil {
		return query.Page[domain.Project]{}, err
	}
	return query.NewPage(items, total, q.Page, q.PageSize), nil
}

// Update applies the fields present in cmd. Dates are checked against the merged
// result so sending only end_date still respects the stored start_date.
func (s *ProjectService) Update(ctx context.Context, actor domain.Actor, id string, cmd validation.UpdateProject) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.UpdateProject(actor, p).Err(); err != nil {
		return nil, err
	}
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		p.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Description != nil {
		p.Description = *cmd.Description
	}
	if cmd.Status != nil {
		p.Status, _ = domain.ParseProjectStatus(*cmd.Status)
	}
	if cmd.StartDate != nil {
		p.StartDate = validation.Date(*cmd.StartDate)
	}
	if cmd.EndDate != nil {
		p.EndDate = validation.Date(*cmd.EndDate)
	}
	if err := validation.CheckDateRange(p.StartDate, p.EndDate); err != nil {
		return nil, err
	}

	if cmd.Empty() {
		return p, nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.OwnerID)
	return p, nil
}

// Delete trashes the project together with its tasks.
func (s *ProjectService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	p, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := policy.DeleteProject(actor, p).Err(); err != nil {
		return err
	}

	affected := s.affectedUsers(ctx, p, false)
	if err := s.repo.SoftDelete(ctx, p.ID, s.opts.Clock()); err != nil {
		return err
	}
	s.invalidate(ctx, affected...)
	return nil
}

func (s *ProjectService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	p, err := s.repo.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !p.Trashed() {
		return nil, domain.ErrNotFound
	}
	if err := policy.RestoreProject(actor, p).Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Restore(ctx, p.ID); err != nil {
		return nil, err
	}
	p.DeletedAt = nil
	s.invalidate(ctx, s.affectedUsers(ctx, p, false)...)
	return p, nil
}

// ForceDelete removes the project and its tasks permanently; admins only.
func (s *ProjectService) ForceDelete(ctx context.Context, actor domain.Actor, id string) error {
	p, err := s.repo.Get(ctx, id, true)
	if err != nil {
		return err
	}
	if err := policy.ForceDeleteProject(actor, p).Err(); err != nil {
		return err
	}

	affected := s.affectedUsers(ctx, p, true)
	if err := s.repo.ForceDelete(ctx, p.ID); err != nil {
		return err
	}
	s.invalidate(ctx, affected...)
	return nil
}

// Tasks returns the live tasks of a visible project with derived fields filled.
func (s *ProjectService) Tasks(ctx context.Context, actor domain.Actor, id string) ([]domain.TaskView, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID, false)
	if err != nil {
		return nil, err
	}

	now := s.opts.Clock()
	for i := range tasks {
		tasks[i].Derive(now, s.agg.DueSoonWindow)
	}
	return tasks, nil
}

func (s *ProjectService) Stats(ctx context.Context, actor domain.Actor, id string) (*stats.ProjectStats, error) {
	p, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID, false)
	if err != nil {
		return nil, err
	}

	out := s.agg.ProjectStats(p, tasks, s.opts.Clock())
	return &out, nil
}

// affectedUsers is the owner plus every assignee of the project's tasks.
func (s *ProjectService) affectedUsers(ctx context.Context, p *domain.Project, withTrashed bool) []string {
	ids := []string{p.OwnerID}
	if s.cache == nil {
		return ids
	}
	tasks, err := s.tasks.ListByProject(ctx, p.ID, withTrashed)
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("project_id", p.ID).Warn("list assignees for cache invalidation")
		return ids
	}
	for _, t := range tasks {
		if t.AssigneeID != nil {
			ids = append(ids, *t.AssigneeID)
		}
	}
	return ids
}

// invalidate drops cached dashboards; a cache failure never fails the write.
func (s *ProjectService) invalidate(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("dashboard cache invalidation failed")
	}
}
