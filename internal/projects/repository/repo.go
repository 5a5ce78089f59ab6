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

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `p.id::text, p.owner_id::text, p.name, p.description, p.status,
       p.start_date, p.end_date, p.created_at, p.updated_at, p.deleted_at`

func scanProject(row postgres.Scanner) (*domain.Project, error) {
	var p domain.Project
	var start, end, deleted sql.NullTime
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Status,
		&start, &end, &p.CreatedAt, &p.UpdatedAt, &deleted); err != nil {
		return nil, err
	}
	p.StartDate = postgres.DatePtr(start)
	p.EndDate = postgres.DatePtr(end)
	p.DeletedAt = postgres.TimePtr(deleted)
	return &p, nil
}

// Create inserts p, assigning its id.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	const q = `
INSERT INTO projects (id, owner_id, name, description, status, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at, updated_at;
`
	err := r.db.QueryRowContext(ctx, q, p.ID, p.OwnerID, p.Name, p.Description, string(p.Status),
		postgres.NullTime(p.StartDate), postgres.NullTime(p.EndDate)).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Get loads one project; trashed projects are only returned when withTrashed is set.
func (r *ProjectRepository) Get(ctx context.Context, id string, withTrashed bool) (*domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	if !withTrashed {
		q += ` AND p.deleted_at IS NULL`
	}

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// List runs an actor-scoped plan and returns the page rows plus the total match count.
func (r *ProjectRepository) List(ctx context.Context, plan query.Plan) ([]domain.Project, int, error) {
	where := plan.WhereSQL()

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM projects p`+where, plan.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	page, args := plan.PageSQL()
	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects p`+where+page, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, plan.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByOwner returns every live project of one user, newest first.
func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Project, error) {
	q := `SELECT ` + projectColumns + ` FROM projects p
WHERE p.owner_id = $1 AND p.deleted_at IS NULL
ORDER BY p.created_at DESC, p.id DESC;`

	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects by owner: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const q = `
UPDATE projects
SET name = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING updated_at;
`
	err := r.db.QueryRowContext(ctx, q, p.ID, p.Name, p.Description, string(p.Status),
		postgres.NullTime(p.StartDate), postgres.NullTime(p.EndDate)).
		Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// SoftDelete trashes the project and its live tasks in one transaction, stamping
// all of them with the same time so Restore can bring back exactly that cascade.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	at = at.UTC().Truncate(time.Microsecond)

	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE projects SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL;`, id, at)
		if err != nil {
			return fmt.Errorf("trash project: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET deleted_at = $2 WHERE project_id = $1 AND deleted_at IS NULL;`, id, at); err != nil {
			return fmt.Errorf("trash project tasks: %w", err)
		}
		return nil
	})
}

// Restore un-trashes the project and the tasks that were trashed along with it.
// Tasks deleted individually before the project stay in the trash.
func (r *ProjectRepository) Restore(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		var deletedAt time.Time
		err := tx.QueryRowContext(ctx,
			`SELECT deleted_at FROM projects WHERE id = $1 AND deleted_at IS NOT NULL FOR UPDATE;`, id).
			Scan(&deletedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("lock trashed project: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE tasks SET deleted_at = NULL WHERE project_id = $1 AND deleted_at = $2;`, id, deletedAt); err != nil {
			return fmt.Errorf("restore project tasks: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE projects SET deleted_at = NULL, updated_at = now() WHERE id = $1;`, id); err != nil {
			return fmt.Errorf("restore project: %w", err)
		}
		return nil
	})
}

// ForceDelete removes the row; tasks go with it through ON DELETE CASCADE.
func (r *ProjectRepository) ForceDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
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

func (r *ProjectRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
