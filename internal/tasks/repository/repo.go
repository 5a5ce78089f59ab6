package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/storage/postgres"
	"github.com/google/uuid"
)

// TaskRepository persists tasks and reads them joined with their project and assignee.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskViewColumns = `t.id::text, t.project_id::text, t.assigned_to::text, t.title, t.description,
       t.priority, t.status, t.due_date, t.created_at, t.updated_at, t.deleted_at,
       p.name, p.owner_id::text, COALESCE(u.name, '')`

const taskViewFrom = ` FROM tasks t
JOIN projects p ON p.id = t.project_id
LEFT JOIN users u ON u.id = t.assigned_to`

func scanTaskView(row postgres.Scanner) (*domain.TaskView, error) {
	var v domain.TaskView
	var assignee sql.NullString
	var due, deleted sql.NullTime
	if err := row.Scan(&v.ID, &v.ProjectID, &assignee, &v.Title, &v.Description,
		&v.Priority, &v.Status, &due, &v.CreatedAt, &v.UpdatedAt, &deleted,
		&v.ProjectName, &v.ProjectOwnerID, &v.AssigneeName); err != nil {
		return nil, err
	}
	if assignee.Valid {
		v.AssigneeID = &assignee.String
	}
	v.DueDate = postgres.DatePtr(due)
	v.DeletedAt = postgres.TimePtr(deleted)
	return &v, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	const q = `
INSERT INTO tasks (id, project_id, assigned_to, title, description, priority, status, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, t.ID, t.ProjectID, postgres.NullString(t.AssigneeID),
		t.Title, t.Description, string(t.Priority), string(t.Status), postgres.NullTime(t.DueDate)).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// Get loads a task of a live project. Trashed tasks are only returned when withTrashed is set.
func (r *TaskRepository) Get(ctx context.Context, id string, withTrashed bool) (*domain.TaskView, error) {
	q := `SELECT ` + taskViewColumns + taskViewFrom + `
WHERE t.id = $1 AND p.deleted_at IS NULL`
	if !withTrashed {
		q += ` AND t.deleted_at IS NULL`
	}

	v, err := scanTaskView(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return v, nil
}

// List runs an actor-scoped plan and returns the page rows plus the total match count.
func (r *TaskRepository) List(ctx context.Context, plan query.Plan) ([]domain.TaskView, int, error) {
	where := plan.WhereSQL()

	var total int
	countQ := `SELECT count(*) FROM tasks t JOIN projects p ON p.id = t.project_id` + where
	if err := r.db.QueryRowContext(ctx, countQ, plan.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	page, args := plan.PageSQL()
	items, err := r.list(ctx, `SELECT `+taskViewColumns+taskViewFrom+where+page, args...)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	const q = `
UPDATE tasks
SET project_id = $2, assigned_to = $3, title = $4, description = $5,
    priority = $6, status = $7, due_date = $8, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING updated_at;
`
	err := r.db.QueryRowContext(ctx, q, t.ID, t.ProjectID, postgres.NullString(t.AssigneeID),
		t.Title, t.Description, string(t.Priority), string(t.Status), postgres.NullTime(t.DueDate)).
		Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (r *TaskRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "trash task",
		`UPDATE tasks SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL;`,
		id, at.UTC().Truncate(time.Microsecond))
}

func (r *TaskRepository) Restore(ctx context.Context, id string) error {
	return r.exec(ctx, "restore task",
		`UPDATE tasks SET deleted_at = NULL, updated_at = now() WHERE id = $1 AND deleted_at IS NOT NULL;`, id)
}

func (r *TaskRepository) ForceDelete(ctx context.Context, id string) error {
	return r.exec(ctx, "delete task", `DELETE FROM tasks WHERE id = $1;`, id)
}

// ListOwnedBy returns the live tasks of every live project the user owns.
func (r *TaskRepository) ListOwnedBy(ctx context.Context, userID string) ([]domain.TaskView, error) {
	return r.list(ctx, `SELECT `+taskViewColumns+taskViewFrom+`
WHERE p.owner_id = $1 AND p.deleted_at IS NULL AND t.deleted_at IS NULL
ORDER BY t.created_at DESC, t.id DESC;`, userID)
}

// ListAssignedTo returns the live tasks assigned to the user, whoever owns the project.
func (r *TaskRepository) ListAssignedTo(ctx context.Context, userID string) ([]domain.TaskView, error) {
	return r.list(ctx, `SELECT `+taskViewColumns+taskViewFrom+`
WHERE t.assigned_to = $1 AND p.deleted_at IS NULL AND t.deleted_at IS NULL
ORDER BY t.created_at DESC, t.id DESC;`, userID)
}

func (r *TaskRepository) ListByProject(ctx context.Context, projectID string, withTrashed bool) ([]domain.TaskView, error) {
	q := `SELECT ` + taskViewColumns + taskViewFrom + `
WHERE t.project_id = $1`
	if !withTrashed {
		q += ` AND t.deleted_at IS NULL`
	}
	return r.list(ctx, q+` ORDER BY t.created_at DESC, t.id DESC;`, projectID)
}

// ListOpenWithDueDate returns live, non-terminal tasks due on or before the given day.
func (r *TaskRepository) ListOpenWithDueDate(ctx context.Context, before time.Time) ([]domain.TaskView, error) {
	return r.list(ctx, `SELECT `+taskViewColumns+taskViewFrom+`
WHERE t.due_date IS NOT NULL AND t.due_date <= $1
  AND t.status NOT IN ('completed', 'cancelled')
  AND p.deleted_at IS NULL AND t.deleted_at IS NULL
ORDER BY t.due_date ASC, t.title ASC, t.id ASC;`, domain.DateOf(before))
}

func (r *TaskRepository) list(ctx context.Context, q string, args ...any) ([]domain.TaskView, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TaskView, 0, 16)
	for rows.Next() {
		v, err := scanTaskView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TaskRepository) exec(ctx context.Context, op, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
