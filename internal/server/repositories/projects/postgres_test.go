package projects

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
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

	q := `(?s)^INSERT\s+INTO\s+projects\s*\(id,\s*user_id,\s*name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+created_at,\s*updated_at\s*$`

	now := time.Now()
	owner := uuid.New()
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(q).
		WithArgs(id, owner, "alpha").
		WillReturnRows(rows)

	p := &models.Project{ID: id, UserID: owner, Name: "alpha"}
	got, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.CreatedAt != now || got.UpdatedAt != now {
		t.Fatalf("unexpected project: %+v", got)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*created_at,\s*updated_at\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	now := time.Now()
	owner := uuid.New()
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
		AddRow(id, owner, "alpha", now, now)
	mock.ExpectQuery(q).
		WithArgs(owner, id).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), owner, id)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.ID != id || got.Name != "alpha" {
		t.Fatalf("unexpected project: %+v", got)
	}
}

// A row owned by another user must surface as plain absence: the query
// carries both predicates and yields sql.ErrNoRows either way.
func TestGetByID_OtherOwnerLooksAbsent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*created_at,\s*updated_at\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	stranger := uuid.New()
	id := uuid.New()

	mock.ExpectQuery(q).
		WithArgs(stranger, id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), stranger, id)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestList_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*created_at,\s*updated_at\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s*$`

	now := time.Now()
	owner := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}).
		AddRow(uuid.New(), owner, "alpha", now, now).
		AddRow(uuid.New(), owner, "beta", now, now)
	mock.ExpectQuery(q).
		WithArgs(owner).
		WillReturnRows(rows)

	got, err := repo.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[1].Name != "beta" {
		t.Fatalf("unexpected projects: %+v", got)
	}
}

func TestList_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*user_id,\s*name,\s*created_at,\s*updated_at\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s*$`

	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "created_at", "updated_at"}))

	got, err := repo.List(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+projects\s+SET\s+name\s*=\s*\$3,\s*updated_at\s*=\s*NOW\(\)\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s+RETURNING\s+updated_at\s*$`

	mock.ExpectQuery(q).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "renamed").
		WillReturnError(sql.ErrNoRows)

	p := &models.Project{ID: uuid.New(), UserID: uuid.New(), Name: "renamed"}
	_, err := repo.Update(context.Background(), p)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	owner := uuid.New()
	id := uuid.New()

	mock.ExpectExec(q).
		WithArgs(owner, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), owner, id); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+projects\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+projects`

	mock.ExpectQuery(q).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Project{ID: uuid.New(), UserID: uuid.New(), Name: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
