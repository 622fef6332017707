package repomanager

import (
	"context"
	"database/sql"

	"github.com/mlevkov/workbench/internal/dbx"
	"github.com/mlevkov/workbench/internal/server/repositories/processes"
	"github.com/mlevkov/workbench/internal/server/repositories/projects"
	"github.com/mlevkov/workbench/internal/server/repositories/ptysessions"
	"github.com/mlevkov/workbench/internal/server/repositories/repos"
	"github.com/mlevkov/workbench/internal/server/repositories/sessions"
	"github.com/mlevkov/workbench/internal/server/repositories/tasks"
	"github.com/mlevkov/workbench/internal/server/repositories/userconfigs"
	"github.com/mlevkov/workbench/internal/server/repositories/workspaces"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Projects(db dbx.DBTX) projects.Repository
	Repos(db dbx.DBTX) repos.Repository
	Tasks(db dbx.DBTX) tasks.Repository
	Workspaces(db dbx.DBTX) workspaces.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Processes(db dbx.DBTX) processes.Repository
	UserConfigs(db dbx.DBTX) userconfigs.Repository
	PTYSessions(db dbx.DBTX) ptysessions.Repository
}
