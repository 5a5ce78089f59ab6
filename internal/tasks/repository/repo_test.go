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

var viewCols = []string{"id", "project_id", "assigned_to", "title", "description",
	"priority", "status", "due_date", "created_at", "updated_at", "deleted_at",
	"name", "owner_id", "assignee_name"}

func setupTaskRepo(t *testing.T) (*TaskRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewTaskRepository(db), mock, db
}

func TestTaskRepository_Create(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()

	now := time.Now()
	due := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	assignee := "u2"
	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(sqlmock.AnyArg(), "p1", "u2", "Write docs", "", "high", "pending", due).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	task := &domain.Task{ProjectID: "p1", AssigneeID: &assignee, Title: "Write docs",
		Priority: domain.PriorityHigh, Status: domain.TaskPending, DueDate: &due}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.NotEmpty(t, task.ID)

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs(sqlmock.AnyArg(), "p1", nil, "Unassigned", "", "low", "pending", nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, repo.Create(context.Background(), &domain.Task{ProjectID: "p1", Title: "Unassigned",
		Priority: domain.PriorityLow, Status: domain.TaskPending}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Get(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`WHERE t.id = \$1 AND p.deleted_at IS NULL AND t.deleted_at IS NULL`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(viewCols).AddRow(
			"t1", "p1", "u2", "Write docs", "", "high", "in_progress", now, now, now, nil,
			"Launch", "u1", "Bob"))

	v, err := repo.Get(ctx, "t1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, v.Status)
	assert.Equal(t, "Launch", v.ProjectName)
	assert.Equal(t, "u1", v.ProjectOwnerID)
	assert.True(t, v.AssignedTo("u2"))
	assert.Equal(t, "Bob", v.AssigneeName)
	require.NotNil(t, v.DueDate)
	assert.Equal(t, 0, v.DueDate.Hour())

	mock.ExpectQuery(`WHERE t.id = \$1 AND p.deleted_at IS NULL`).
		WithArgs("t9").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.Get(ctx, "t9", true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListScopedToOwner(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()

	q := query.TaskQuery{Status: "pending"}
	q.Normalize(15, 100)
	plan, err := query.BuildTaskPlan(domain.Actor{ID: "u1"}, q)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.owner_id = \$1 AND t.deleted_at IS NULL AND p.deleted_at IS NULL AND t.status = \$2`).
		WithArgs("u1", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery(`LEFT JOIN users u ON u.id = t.assigned_to WHERE (.+) LIMIT \$3 OFFSET \$4`).
		WithArgs("u1", "pending", 15, 0).
		WillReturnRows(sqlmock.NewRows(viewCols).AddRow(
			"t1", "p1", nil, "Plan", "", "medium", "pending", nil, now, now, nil, "Launch", "u1", ""))

	items, total, err := repo.List(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].AssigneeID)
	assert.Nil(t, items[0].DueDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_UpdateClearsAssignee(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()

	empty := ""
	mock.ExpectQuery(`UPDATE tasks`).
		WithArgs("t1", "p1", nil, "Plan", "", "medium", "completed", nil).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))

	err := repo.Update(context.Background(), &domain.Task{ID: "t1", ProjectID: "p1", AssigneeID: &empty,
		Title: "Plan", Priority: domain.PriorityMedium, Status: domain.TaskCompleted})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Lifecycle(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE tasks SET deleted_at = \$2`).WithArgs("t1", at).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDelete(ctx, "t1", at))

	mock.ExpectExec(`UPDATE tasks SET deleted_at = \$2`).WithArgs("t1", at).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.SoftDelete(ctx, "t1", at), domain.ErrNotFound)

	mock.ExpectExec(`UPDATE tasks SET deleted_at = NULL`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Restore(ctx, "t1"))

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ForceDelete(ctx, "t1"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListOpenWithDueDate(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()

	before := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)
	mock.ExpectQuery(`t.due_date <= \$1 AND t.status NOT IN \('completed', 'cancelled'\)`).
		WithArgs(time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows(viewCols))

	items, err := repo.ListOpenWithDueDate(context.Background(), before)
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_OwnedAssignedByProject(t *testing.T) {
	repo, mock, db := setupTaskRepo(t)
	defer db.Close()
	ctx := context.Background()

	mock.ExpectQuery(`WHERE p.owner_id = \$1`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(viewCols))
	mock.ExpectQuery(`WHERE t.assigned_to = \$1`).WithArgs("u2").WillReturnRows(sqlmock.NewRows(viewCols))
	mock.ExpectQuery(`WHERE t.project_id = \$1 ORDER BY`).WithArgs("p1").WillReturnRows(sqlmock.NewRows(viewCols))

	_, err := repo.ListOwnedBy(ctx, "u1")
	require.NoError(t, err)
	_, err = repo.ListAssignedTo(ctx, "u2")
	require.NoError(t, err)
	_, err = repo.ListByProject(ctx, "p1", true)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
