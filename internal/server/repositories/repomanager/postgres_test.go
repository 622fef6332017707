package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mlevkov/workbench/internal/server/repositories/processes"
	"github.com/mlevkov/workbench/internal/server/repositories/projects"
	"github.com/mlevkov/workbench/internal/server/repositories/ptysessions"
	"github.com/mlevkov/workbench/internal/server/repositories/repos"
	"github.com/mlevkov/workbench/internal/server/repositories/sessions"
	"github.com/mlevkov/workbench/internal/server/repositories/tasks"
	"github.com/mlevkov/workbench/internal/server/repositories/userconfigs"
	"github.com/mlevkov/workbench/internal/server/repositories/workspaces"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	var _ projects.Repository = m.Projects(db)
	var _ repos.Repository = m.Repos(db)
	var _ tasks.Repository = m.Tasks(db)
	var _ workspaces.Repository = m.Workspaces(db)
	var _ sessions.Repository = m.Sessions(db)
	var _ processes.Repository = m.Processes(db)
	var _ userconfigs.Repository = m.UserConfigs(db)
	var _ ptysessions.Repository = m.PTYSessions(db)

	if m.Projects(db) == nil || m.PTYSessions(db) == nil {
		t.Fatal("factory returned nil")
	}
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	var _ RepositoryManager = NewPostgresRepositoryManager()
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		if len(opts) != 0 {
			return errors.New("unexpected opts")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}
