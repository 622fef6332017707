// Package server initializes and runs the workbench server. It selects
// the deployment mode, wires storage, services and registries, and handles
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/sandbox"
	"github.com/mlevkov/workbench/internal/server/auth"
	"github.com/mlevkov/workbench/internal/server/config"
	"github.com/mlevkov/workbench/internal/server/logstore"
	"github.com/mlevkov/workbench/internal/server/mode"
	"github.com/mlevkov/workbench/internal/server/reaper"
	"github.com/mlevkov/workbench/internal/server/registry"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
	"github.com/mlevkov/workbench/internal/server/services"
	"github.com/mlevkov/workbench/internal/server/vault"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	mode   mode.Mode

	Verifier auth.Verifier

	Projects   *services.ProjectService
	Repos      *services.RepoService
	Tasks      *services.TaskService
	Workspaces *services.WorkspaceService
	Sessions   *services.SessionService
	Secrets    *services.SecretService

	Shells    *registry.SessionRegistry
	Processes *registry.ProcessRegistry

	reaper *reaper.Reaper
}

// NewApp wires the full server from configuration. The deployment mode is
// decided exactly once here; every later component simply uses the
// verifier and sandbox it was handed.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	m, recognised := mode.Detect(c.DeploymentMode, c.DatabaseURL)
	if !recognised {
		return nil, fmt.Errorf("unrecognised DEPLOYMENT_MODE %q", c.DeploymentMode)
	}

	var verifier auth.Verifier
	var sb sandbox.Sandbox
	switch m {
	case mode.Multi:
		if c.TokenSecret == "" {
			return nil, fmt.Errorf("multi-tenant mode requires TOKEN_SECRET")
		}
		verifier = auth.NewJWTVerifier([]byte(c.TokenSecret))
		sb = sandbox.New(c.WorkspaceRoot)
	case mode.Single:
		verifier = auth.NewStaticVerifier()
		sb = sandbox.NewShared(c.WorkspaceRoot)
	}

	db, err := repomanager.OpenPool(ctx, c.DatabaseURL, c.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	// live shells and agent handles never survive a restart
	if err := rm.PTYSessions(db).DeleteAll(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if n, err := rm.Processes(db).FailAbandoned(ctx); err != nil {
		db.Close()
		return nil, err
	} else if n > 0 {
		logger.Warn(ctx, "abandoned processes marked failed", "count", n)
	}

	key, err := vault.DeriveKey(c.SecretKey)
	if err != nil {
		db.Close()
		return nil, err
	}
	v, err := vault.New(key, rm.UserConfigs(db))
	if err != nil {
		db.Close()
		return nil, err
	}

	var logs logstore.Store
	if c.S3Bucket != "" {
		logs, err = logstore.NewS3Store(ctx, logstore.S3Options{
			Region:       c.S3Region,
			Bucket:       c.S3Bucket,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			db.Close()
			return nil, err
		}
	} else {
		logs = logstore.NewPostgresStore(db)
	}

	shells := registry.NewSessionRegistry(
		&registry.ExecStarter{Command: "/bin/bash", Args: []string{"-i"}},
		sb, rm.PTYSessions(db), logger, c.SessionIdle)
	procs := registry.NewProcessRegistry(
		&registry.ExecLauncher{Command: "codingagent"},
		rm.Processes(db), logs, logger)

	app := &App{
		config:     c,
		logger:     logger,
		db:         db,
		mode:       m,
		Verifier:   verifier,
		Projects:   services.NewProjectService(db, rm),
		Repos:      services.NewRepoService(db, rm, sb, logger),
		Tasks:      services.NewTaskService(db, rm),
		Workspaces: services.NewWorkspaceService(db, rm, sb, logger),
		Sessions:   services.NewSessionService(db, rm, procs, logs),
		Secrets:    services.NewSecretService(db, rm, v),
		Shells:     shells,
		Processes:  procs,
		reaper:     reaper.New(shells, c.ReaperInterval, logger),
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the context is cancelled or a termination signal
// arrives, then drains live processes before returning.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting workbench server", "mode", app.mode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.reaper.Run(ctx)
	}()

	<-ctx.Done()
	wg.Wait()

	app.Processes.Wait()
	app.db.Close()
	app.logger.Info(context.Background(), "workbench server stopped")
}
