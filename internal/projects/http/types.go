package http

import (
	"context"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
)

// Service is the project use-case surface; *service.ProjectService satisfies it.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, cmd validation.CreateProject) (*domain.Project, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error)
	List(ctx context.Context, actor domain.Actor, q query.ProjectQuery) (query.Page[domain.Project], error)
	Update(ctx context.Context, actor domain.Actor, id string, cmd validation.UpdateProject) (*domain.Project, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Restore(ctx context.Context, actor domain.Actor, id string) (*domain.Project, error)
	ForceDelete(ctx context.Context, actor domain.Actor, id string) error
	Tasks(ctx context.Context, actor domain.Actor, id string) ([]domain.TaskView, error)
	Stats(ctx context.Context, actor domain.Actor, id string) (*stats.ProjectStats, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
