package tasks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	owner := uuid.New()
	id := uuid.New()
	project := uuid.New()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+tasks`).
		WithArgs(id, owner, project, "fix bug", "", models.TaskStatusTodo).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	task := &models.Task{ID: id, UserID: owner, ProjectID: project, Title: "fix bug", Status: models.TaskStatusTodo}
	got, err := repo.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CreatedAt != now {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+tasks\s+SET\s+title`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t", "d", models.TaskStatusDone).
		WillReturnError(sql.ErrNoRows)

	task := &models.Task{ID: uuid.New(), UserID: uuid.New(), Title: "t", Description: "d", Status: models.TaskStatusDone}
	_, err := repo.Update(context.Background(), task)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestListByProject_ScopedToOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	owner := uuid.New()
	project := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "project_id", "title", "description", "status", "created_at", "updated_at",
	}).AddRow(uuid.New(), owner, project, "a", "", models.TaskStatusTodo, now, now)

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+tasks\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+project_id\s*=\s*\$2`).
		WithArgs(owner, project).
		WillReturnRows(rows)

	got, err := repo.ListByProject(context.Background(), owner, project)
	if err != nil {
		t.Fatalf("ListByProject error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "a" {
		t.Fatalf("unexpected tasks: %+v", got)
	}
}
