package validation

import (
	"strings"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
)

type CreateProject struct {
	Name        string `json:"name" validate:"notblank,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status" validate:"omitempty,projectstatus"`
	StartDate   string `json:"start_date" validate:"omitempty,isodate"`
	EndDate     string `json:"end_date" validate:"omitempty,isodate"`
}

func (c CreateProject) crossCheck(ve *domain.ValidationError) {
	checkDateRange(ve, Date(c.StartDate), Date(c.EndDate))
}

// UpdateProject carries only the fields the caller sent; nil means unchanged.
type UpdateProject struct {
	Name        *string `json:"name" validate:"omitnil,notblank,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Status      *string `json:"status" validate:"omitnil,projectstatus"`
	StartDate   *string `json:"start_date" validate:"omitnil,isodate"`
	EndDate     *string `json:"end_date" validate:"omitnil,isodate"`
}

func (c UpdateProject) crossCheck(ve *domain.ValidationError) {
	checkDateRange(ve, Date(deref(c.StartDate)), Date(deref(c.EndDate)))
}

func (c UpdateProject) Empty() bool {
	return c.Name == nil && c.Description == nil && c.Status == nil && c.StartDate == nil && c.EndDate == nil
}

type CreateTask struct {
	ProjectID   string `json:"project_id" validate:"required,uuid"`
	AssigneeID  string `json:"assigned_to" validate:"omitempty,uuid"`
	Title       string `json:"title" validate:"notblank,max=255"`
	Description string `json:"description" validate:"max=1000"`
	Priority    string `json:"priority" validate:"omitempty,taskpriority"`
	Status      string `json:"status" validate:"omitempty,taskstatus"`
	DueDate     string `json:"due_date" validate:"omitempty,isodate"`
}

// UpdateTask carries only the fields the caller sent. An empty assigned_to unassigns
// the task and an empty due_date clears it.
type UpdateTask struct {
	ProjectID   *string `json:"project_id" validate:"omitnil,uuid"`
	AssigneeID  *string `json:"assigned_to" validate:"omitnil,optuuid"`
	Title       *string `json:"title" validate:"omitnil,notblank,max=255"`
	Description *string `json:"description" validate:"omitnil,max=1000"`
	Priority    *string `json:"priority" validate:"omitnil,taskpriority"`
	Status      *string `json:"status" validate:"omitnil,taskstatus"`
	DueDate     *string `json:"due_date" validate:"omitnil,isodate"`
}

// StatusOnly reports an update that touches nothing but the status.
func (c UpdateTask) StatusOnly() bool {
	return c.ProjectID == nil && c.AssigneeID == nil && c.Title == nil &&
		c.Description == nil && c.Priority == nil && c.DueDate == nil
}

type ChangeTaskStatus struct {
	Status string `json:"status" validate:"required,taskstatus"`
}

type Register struct {
	Name     string `json:"name" validate:"notblank,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,bcryptmax"`
}

// Normalize lower-cases the email before it reaches storage.
func (c *Register) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

type Login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
