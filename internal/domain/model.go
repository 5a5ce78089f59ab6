package domain

import "time"

// DateLayout is the wire and storage format of calendar dates (start/end/due dates).
const DateLayout = "2006-01-02"

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"is_admin"`
	FirebaseUID *string   `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, IsAdmin: u.IsAdmin}
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// UserSummary is the public projection of a user (assignee pickers, embedded names).
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Project struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	StartDate   *time.Time    `json:"start_date,omitempty"`
	EndDate     *time.Time    `json:"end_date,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   *time.Time    `json:"deleted_at,omitempty"`
}

func (p *Project) Trashed() bool { return p != nil && p.DeletedAt != nil }

type Task struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"project_id"`
	AssigneeID  *string      `json:"assigned_to,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty"`
}

func (t *Task) Trashed() bool { return t != nil && t.DeletedAt != nil }

func (t *Task) AssignedTo(userID string) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == userID
}

// TaskView is a task joined with its project and assignee plus the fields derived at read time.
type TaskView struct {
	Task
	ProjectName    string `json:"project_name"`
	ProjectOwnerID string `json:"project_owner_id"`
	AssigneeName   string `json:"assignee_name,omitempty"`
	IsOverdue      bool   `json:"is_overdue"`
	IsDueSoon      bool   `json:"is_due_soon"`
}

// Derive fills IsOverdue/IsDueSoon against a single reference time.
func (v *TaskView) Derive(now time.Time, window time.Duration) {
	v.IsOverdue = IsOverdue(&v.Task, now)
	v.IsDueSoon = IsDueSoon(&v.Task, now, window)
}

// DateOf truncates t to its calendar day in t's own location, expressed in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsOverdue reports a non-terminal task whose due day lies before now's day.
func IsOverdue(t *Task, now time.Time) bool {
	if t == nil || t.DueDate == nil || t.Status.Terminal() {
		return false
	}
	return DateOf(*t.DueDate).Before(DateOf(now))
}

// IsDueSoon reports a non-terminal, non-overdue task due between today and today+window inclusive.
func IsDueSoon(t *Task, now time.Time, window time.Duration) bool {
	if t == nil || t.DueDate == nil || t.Status.Terminal() {
		return false
	}
	due := DateOf(*t.DueDate)
	today := DateOf(now)
	if due.Before(today) {
		return false
	}
	return !due.After(today.Add(window))
}

func ParseDate(v string) (time.Time, error) {
	return time.Parse(DateLayout, v)
}
