package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/policy"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
)

type Repository interface {
	Create(ctx context.Context, t *domain.Task) error
	Get(ctx context.Context, id string, withTrashed bool) (*domain.TaskView, error)
	List(ctx context.Context, plan query.Plan) ([]domain.TaskView, int, error)
	Update(ctx context.Context, t *domain.Task) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
}

type ProjectGetter interface {
	Get(ctx context.Context, id string, withTrashed bool) (*domain.Project, error)
}

type UserChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
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

// TaskService handles task business logic. Every write re-reads the joined view
// so callers always get project and assignee names back.
type TaskService struct {
	repo     Repository
	projects ProjectGetter
	users    UserChecker
	cache    CacheInvalidator
	opts     Options
}

// NewTaskService wires the service; cache may be nil.
func NewTaskService(repo Repository, projects ProjectGetter, users UserChecker, cache CacheInvalidator, opts Options) *TaskService {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.DueSoonWindow <= 0 {
		opts.DueSoonWindow = stats.DefaultDueSoonWindow
	}
	return &TaskService{repo: repo, projects: projects, users: users, cache: cache, opts: opts}
}

func (s *TaskService) Create(ctx context.Context, actor domain.Actor, cmd validation.CreateTask) (*domain.TaskView, error) {
	if !policy.CreateTask(actor) {
		return nil, domain.ErrForbidden
	}
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}

	p, err := s.targetProject(ctx, actor, cmd.ProjectID)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(cmd.Title),
		Description: cmd.Description,
		Priority:    domain.PriorityMedium,
		Status:      domain.TaskPending,
		DueDate:     validation.Date(cmd.DueDate),
	}
	if cmd.Priority != "" {
		t.Priority, _ = domain.ParseTaskPriority(cmd.Priority)
	}
	if cmd.Status != "" {
		t.Status, _ = domain.ParseTaskStatus(cmd.Status)
	}
	if cmd.AssigneeID != "" {
		if err := s.checkAssignee(ctx, cmd.AssigneeID); err != nil {
			return nil, err
		}
		t.AssigneeID = &cmd.AssigneeID
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, p.OwnerID, assigneeOf(t))
	return s.reload(ctx, t.ID)
}

func (s *TaskService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.TaskView, error) {
	v, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.ViewTask(actor, policy.ResourceOf(v)).Err(); err != nil {
		return nil, err
	}
	v.Derive(s.opts.Clock(), s.opts.DueSoonWindow)
	return v, nil
}

// List returns one page of the tasks visible to the actor; derived flags share one now.
func (s *TaskService) List(ctx context.Context, actor domain.Actor, q query.TaskQuery) (query.Page[domain.TaskView], error) {
	if !policy.ViewAnyTasks(actor) {
		return query.Page[domain.TaskView]{}, domain.ErrForbidden
	}
	q.Normalize(s.opts.DefaultPageSize, s.opts.MaxPageSize)

	plan, err := query.BuildTaskPlan(actor, q)
	if err != nil {
		return query.Page[domain.TaskView]{}, err
	}
	items, total, err := s.repo.List(ctx, plan)
	if err != nil {
		return query.Page[domain.TaskView]{}, err
	}

	now := s.opts.Clock()
	for i := range items {
		items[i].Derive(now, s.opts.DueSoonWindow)
	}
	return query.NewPage(items, total, q.Page, q.PageSize), nil
}

// Update applies the fields present in cmd. An actor allowed only as assignee may
// change the status and nothing else.
func (s *TaskService) Update(ctx context.Context, actor domain.Actor, id string, cmd validation.UpdateTask) (*domain.TaskView, error) {
	v, err := s.authorizeUpdate(ctx, actor, id, cmd.StatusOnly())
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, v, cmd)
}

// ChangeStatus is the status-only update open to owners, admins and the assignee.
func (s *TaskService) ChangeStatus(ctx context.Context, actor domain.Actor, id string, cmd validation.ChangeTaskStatus) (*domain.TaskView, error) {
	v, err := s.authorizeUpdate(ctx, actor, id, true)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(cmd); err != nil {
		return nil, err
	}
	return s.apply(ctx, actor, v, validation.UpdateTask{Status: &cmd.Status})
}

func (s *TaskService) authorizeUpdate(ctx context.Context, actor domain.Actor, id string, statusOnly bool) (*domain.TaskView, error) {
	v, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	res := policy.ResourceOf(v)
	if err := policy.UpdateTask(actor, res).Err(); err != nil {
		return nil, err
	}
	if policy.AssigneeOnly(actor, res) && !statusOnly {
		return nil, domain.ErrForbidden
	}
	return v, nil
}

func (s *TaskService) apply(ctx context.Context, actor domain.Actor, v *domain.TaskView, cmd validation.UpdateTask) (*domain.TaskView, error) {
	t := v.Task
	affected := []string{v.ProjectOwnerID, assigneeOf(&t)}

	if cmd.ProjectID != nil && *cmd.ProjectID != t.ProjectID {
		p, err := s.targetProject(ctx, actor, *cmd.ProjectID)
		if err != nil {
			return nil, err
		}
		t.ProjectID = p.ID
		affected = append(affected, p.OwnerID)
	}
	if cmd.AssigneeID != nil {
		switch id := *cmd.AssigneeID; {
		case id == "":
			t.AssigneeID = nil
		case !t.AssignedTo(id):
			if err := s.checkAssignee(ctx, id); err != nil {
				return nil, err
			}
			t.AssigneeID = &id
		}
	}
	if cmd.Title != nil {
		t.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.Description != nil {
		t.Description = *cmd.Description
	}
	if cmd.Priority != nil {
		t.Priority, _ = domain.ParseTaskPriority(*cmd.Priority)
	}
	if cmd.Status != nil {
		t.Status, _ = domain.ParseTaskStatus(*cmd.Status)
	}
	if cmd.DueDate != nil {
		t.DueDate = validation.Date(*cmd.DueDate)
	}

	if err := s.repo.Update(ctx, &t); err != nil {
		return nil, err
	}
	s.invalidate(ctx, append(affected, assigneeOf(&t))...)
	return s.reload(ctx, t.ID)
}

func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	v, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := policy.DeleteTask(actor, policy.ResourceOf(v)).Err(); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, v.ID, s.opts.Clock()); err != nil {
		return err
	}
	s.invalidate(ctx, v.ProjectOwnerID, assigneeOf(&v.Task))
	return nil
}

func (s *TaskService) Restore(ctx context.Context, actor domain.Actor, id string) (*domain.TaskView, error) {
	v, err := s.repo.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !v.Trashed() {
		return nil, domain.ErrNotFound
	}
	if err := policy.RestoreTask(actor, policy.ResourceOf(v)).Err(); err != nil {
		return nil, err
	}

	if err := s.repo.Restore(ctx, v.ID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, v.ProjectOwnerID, assigneeOf(&v.Task))
	return s.reload(ctx, v.ID)
}

// ForceDelete removes a live or trashed task permanently; admins only.
func (s *TaskService) ForceDelete(ctx context.Context, actor domain.Actor, id string) error {
	v, err := s.repo.Get(ctx, id, true)
	if err != nil {
		return err
	}
	if err := policy.ForceDeleteTask(actor, policy.ResourceOf(v)).Err(); err != nil {
		return err
	}

	if err := s.repo.ForceDelete(ctx, v.ID); err != nil {
		return err
	}
	s.invalidate(ctx, v.ProjectOwnerID, assigneeOf(&v.Task))
	return nil
}

// targetProject resolves the project a task is created in or moved to. The actor
// needs update rights on it; an unknown id is a field error, not a 404.
func (s *TaskService) targetProject(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error) {
	p, err := s.projects.Get(ctx, id, false)
	if errors.Is(err, domain.ErrNotFound) {
		ve := domain.NewValidationError()
		ve.Add("project_id", "does not exist")
		return nil, ve
	}
	if err != nil {
		return nil, err
	}
	if !policy.UpdateProject(actor, p).Allowed() {
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, id string) error {
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		ve := domain.NewValidationError()
		ve.Add("assigned_to", "does not exist")
		return ve
	}
	return nil
}

func (s *TaskService) reload(ctx context.Context, id string) (*domain.TaskView, error) {
	v, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	v.Derive(s.opts.Clock(), s.opts.DueSoonWindow)
	return v, nil
}

func (s *TaskService) invalidate(ctx context.Context, userIDs ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		logger.FromContext(ctx).WithError(err).Warn("dashboard cache invalidation failed")
	}
}

func assigneeOf(t *domain.Task) string {
	if t == nil || t.AssigneeID == nil {
		return ""
	}
	return *t.AssigneeID
}
