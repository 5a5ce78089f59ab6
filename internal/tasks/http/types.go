package http

import (
	"context"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/validation"
)

// Service is the task use-case surface; *service.TaskService satisfies it.
type Service interface {
	Create(ctx context.Context, actor domain.Actor, cmd validation.CreateTask) (*domain.TaskView, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.TaskView, error)
	List(ctx context.Context, actor domain.Actor, q query.TaskQuery) (query.Page[domain.TaskView], error)
	Update(ctx context.Context, actor domain.Actor, id string, cmd validation.UpdateTask) (*domain.TaskView, error)
	ChangeStatus(ctx context.Context, actor domain.Actor, id string, cmd validation.ChangeTaskStatus) (*domain.TaskView, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Restore(ctx context.Context, actor domain.Actor, id string) (*domain.TaskView, error)
	ForceDelete(ctx context.Context, actor domain.Actor, id string) error
}

type Handler struct {
	svc Service
}

func New(svc Service) *Handler {
	return &Handler{svc: svc}
}
