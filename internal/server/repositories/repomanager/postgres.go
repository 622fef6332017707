// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mlevkov/workbench/internal/dbx"
	"github.com/mlevkov/workbench/internal/server/migrations"
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

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Repos(db dbx.DBTX) repos.Repository {
	return repos.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return tasks.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Workspaces(db dbx.DBTX) workspaces.Repository {
	return workspaces.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Processes(db dbx.DBTX) processes.Repository {
	return processes.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) UserConfigs(db dbx.DBTX) userconfigs.Repository {
	return userconfigs.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) PTYSessions(db dbx.DBTX) ptysessions.Repository {
	return ptysessions.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection. Goose tracks applied versions,
// so running at every startup is safe.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// OpenPool opens a pgx stdlib connection pool capped at maxConns open
// connections and verifies connectivity with a bounded retry.
func OpenPool(ctx context.Context, databaseURL string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)

	if err := dbx.Retry(ctx, func(ctx context.Context) error {
		return db.PingContext(ctx)
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
