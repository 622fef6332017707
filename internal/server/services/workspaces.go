package services

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/sandbox"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
)

// WorkspaceService creates and manages per-task working directories. The
// directory of every workspace row is produced by the sandbox, never taken
// from the caller verbatim.
type WorkspaceService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	sandbox sandbox.Sandbox
	logger  logging.Logger
}

func NewWorkspaceService(db *sql.DB, rm repomanager.RepositoryManager, sb sandbox.Sandbox, logger logging.Logger) *WorkspaceService {
	return &WorkspaceService{db: db, rm: rm, sandbox: sb, logger: logger}
}

// Create verifies the parent task belongs to the caller, provisions a
// directory inside the caller's sandbox, and records the workspace.
func (s *WorkspaceService) Create(ctx context.Context, userID, taskID uuid.UUID, branch string) (*models.Workspace, error) {
	if _, err := s.rm.Tasks(s.db).GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}

	if _, err := s.sandbox.EnsureRoot(userID); err != nil {
		return nil, err
	}

	id := uuid.New()
	dir, err := s.sandbox.Resolve(userID, filepath.Join("workspaces", id.String()))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	ws, err := s.rm.Workspaces(s.db).Create(ctx, &models.Workspace{
		ID:     id,
		UserID: userID,
		TaskID: taskID,
		Branch: branch,
		Dir:    dir,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	s.logger.Info(ctx, "workspace created", "user_id", userID, "workspace_id", id)
	return ws, nil
}

func (s *WorkspaceService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error) {
	return s.rm.Workspaces(s.db).GetByID(ctx, userID, id)
}

func (s *WorkspaceService) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*models.Workspace, error) {
	if _, err := s.rm.Tasks(s.db).GetByID(ctx, userID, taskID); err != nil {
		return nil, err
	}
	return s.rm.Workspaces(s.db).ListByTask(ctx, userID, taskID)
}

func (s *WorkspaceService) Archive(ctx context.Context, userID, id uuid.UUID) error {
	return s.rm.Workspaces(s.db).SetArchived(ctx, userID, id, true)
}

// Delete removes the row first and only then the directory, so a failed
// delete never leaves a dangling row pointing at a missing dir.
func (s *WorkspaceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ws, err := s.rm.Workspaces(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.rm.Workspaces(s.db).Delete(ctx, userID, id); err != nil {
		return err
	}

	// re-validate before touching the filesystem
	dir, err := s.sandbox.Resolve(userID, ws.Dir)
	if err != nil {
		s.logger.Warn(ctx, "workspace dir rejected on delete",
			logging.SecurityEventKey, true,
			"user_id", userID,
			"resource_kind", "workspace",
			"resource_id", id,
			"reason", "path_escape",
		)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		s.logger.Error(ctx, "workspace dir removal failed", "error", err, "workspace_id", id)
	}
	return nil
}
