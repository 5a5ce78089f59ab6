package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/domain"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectCols = []string{"id", "owner_id", "name", "description", "status",
	"start_date", "end_date", "created_at", "updated_at", "deleted_at"}

func setupProjectRepo(t *testing.T) (*ProjectRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewProjectRepository(db), mock, db
}

func TestProjectRepository_Create(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO projects`).
		WithArgs(sqlmock.AnyArg(), "owner-1", "Launch", "", "active", start, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p := &domain.Project{OwnerID: "owner-1", Name: "Launch", Status: domain.ProjectActive, StartDate: &start}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, now, p.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Get(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()

	t.Run("live project", func(t *testing.T) {
		now := time.Now()
		end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.Local)
		mock.ExpectQuery(`FROM projects p WHERE p.id = \$1 AND p.deleted_at IS NULL`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "owner-1", "Launch", "desc", "archived", nil, end, now, now, nil))

		p, err := repo.Get(ctx, "p1", false)
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectArchived, p.Status)
		assert.Nil(t, p.StartDate)
		require.NotNil(t, p.EndDate)
		assert.Equal(t, "2025-02-01", p.EndDate.Format(domain.DateLayout))
		assert.False(t, p.Trashed())
	})

	t.Run("with trashed", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`FROM projects p WHERE p.id = \$1$`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows(projectCols).
				AddRow("p1", "owner-1", "Launch", "", "active", nil, nil, now, now, now))

		p, err := repo.Get(ctx, "p1", true)
		require.NoError(t, err)
		assert.True(t, p.Trashed())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery(`FROM projects p WHERE p.id = \$1`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "nope", false)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListSearch(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	actor := domain.Actor{ID: "owner-1"}
	q := query.ProjectQuery{Search: "alpha"}
	q.Normalize(15, 100)
	plan, err := query.BuildProjectPlan(actor, q)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM projects p WHERE p.owner_id = \$1 AND p.deleted_at IS NULL AND \(p.name ILIKE \$2 OR p.description ILIKE \$3\)`).
		WithArgs("owner-1", "%alpha%", "%alpha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now()
	mock.ExpectQuery(`FROM projects p WHERE (.+) ORDER BY p.created_at DESC, p.id DESC LIMIT \$4 OFFSET \$5`).
		WithArgs("owner-1", "%alpha%", "%alpha%", 15, 0).
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p2", "owner-1", "Other", "contains alpha here", "active", nil, nil, now, now, nil).
			AddRow("p1", "owner-1", "Alpha Launch", "", "active", nil, nil, now, now, nil))

	items, total, err := repo.List(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha Launch", items[1].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Update(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE projects`).
		WithArgs("p1", "New", "", "completed", nil, nil).
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &domain.Project{ID: "p1", Name: "New", Status: domain.ProjectCompleted})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_SoftDeleteCascades(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 123456789, time.UTC)
	stamp := at.Truncate(time.Microsecond)

	t.Run("project and tasks share one stamp", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE projects SET deleted_at = \$2`).WithArgs("p1", stamp).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE tasks SET deleted_at = \$2 WHERE project_id = \$1 AND deleted_at IS NULL`).WithArgs("p1", stamp).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		require.NoError(t, repo.SoftDelete(ctx, "p1", at))
	})

	t.Run("already trashed rolls back", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE projects SET deleted_at = \$2`).WithArgs("p1", stamp).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.SoftDelete(ctx, "p1", at), domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_Restore(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()
	ctx := context.Background()
	stamp := time.Date(2025, 3, 1, 10, 0, 0, 123000, time.UTC)

	t.Run("restores the cascade", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT deleted_at FROM projects WHERE id = \$1 AND deleted_at IS NOT NULL FOR UPDATE`).
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"deleted_at"}).AddRow(stamp))
		mock.ExpectExec(`UPDATE tasks SET deleted_at = NULL WHERE project_id = \$1 AND deleted_at = \$2`).
			WithArgs("p1", stamp).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`UPDATE projects SET deleted_at = NULL`).WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Restore(ctx, "p1"))
	})

	t.Run("not trashed", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT deleted_at FROM projects`).WithArgs("p2").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Restore(ctx, "p2"), domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ForceDelete(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ForceDelete(context.Background(), "p1"))

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.ForceDelete(context.Background(), "p1"), domain.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListByOwner(t *testing.T) {
	repo, mock, db := setupProjectRepo(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE p.owner_id = \$1 AND p.deleted_at IS NULL`).
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows(projectCols).
			AddRow("p1", "owner-1", "Launch", "", "active", nil, nil, now, now, nil))

	items, err := repo.ListByOwner(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
