// Package dashboard assembles the per-user statistics view.
package dashboard

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/logger"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
)

type ProjectSource interface {
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error)
}

type TaskSource interface {
	ListOwnedBy(ctx context.Context, userID string) ([]domain.TaskView, error)
	ListAssignedTo(ctx context.Context, userID string) ([]domain.TaskView, error)
}

// Cache is satisfied by *stats.Cache.
type Cache interface {
	Get(ctx context.Context, userID string) (*stats.DashboardStats, bool, error)
	Set(ctx context.Context, userID string, d *stats.DashboardStats) error
}

type Service struct {
	projects ProjectSource
	tasks    TaskSource
	cache    Cache
	agg      *stats.Aggregator
	clock    func() time.Time
}

// NewService builds the dashboard service; cache and clock may be nil.
func NewService(projects ProjectSource, tasks TaskSource, cache Cache, agg *stats.Aggregator, clock func() time.Time) *Service {
	if agg == nil {
		agg = stats.NewAggregator(0)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{projects: projects, tasks: tasks, cache: cache, agg: agg, clock: clock}
}

// Get returns the actor's dashboard, served from cache when present. Cache errors
// are logged and the dashboard is computed from storage instead.
func (s *Service) Get(ctx context.Context, actor domain.Actor) (*stats.DashboardStats, error) {
	if actor.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	log := logger.FromContext(ctx).WithField("user_id", actor.ID)

	if s.cache != nil {
		d, ok, err := s.cache.Get(ctx, actor.ID)
		if err != nil {
			log.WithError(err).Warn("dashboard cache read failed")
		} else if ok {
			return d, nil
		}
	}

	d, err := s.Compute(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, actor.ID, d); err != nil {
			log.WithError(err).Warn("dashboard cache write failed")
		}
	}
	return d, nil
}

// Compute builds the dashboard from storage with a single reference time.
func (s *Service) Compute(ctx context.Context, userID string) (*stats.DashboardStats, error) {
	projects, err := s.projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned, err := s.tasks.ListOwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	assigned, err := s.tasks.ListAssignedTo(ctx, userID)
	if err != nil {
		return nil, err
	}

	d := s.agg.Dashboard(projects, owned, assigned, s.clock())
	return &d, nil
}
