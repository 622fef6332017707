package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/logstore"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/registry"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
)

// SessionService manages coding-agent sessions and the processes spawned
// for them. Workspace ownership is checked before anything touches the
// filesystem or the process table.
type SessionService struct {
	db        *sql.DB
	rm        repomanager.RepositoryManager
	processes *registry.ProcessRegistry
	logs      logstore.Store
}

func NewSessionService(db *sql.DB, rm repomanager.RepositoryManager, processes *registry.ProcessRegistry, logs logstore.Store) *SessionService {
	return &SessionService{db: db, rm: rm, processes: processes, logs: logs}
}

func (s *SessionService) Create(ctx context.Context, userID, workspaceID uuid.UUID, executor string) (*models.Session, error) {
	if _, err := s.rm.Workspaces(s.db).GetByID(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.rm.Sessions(s.db).Create(ctx, &models.Session{
		ID:          uuid.New(),
		UserID:      userID,
		WorkspaceID: workspaceID,
		Executor:    executor,
	})
}

func (s *SessionService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Session, error) {
	return s.rm.Sessions(s.db).GetByID(ctx, userID, id)
}

func (s *SessionService) ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]*models.Session, error) {
	if _, err := s.rm.Workspaces(s.db).GetByID(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.rm.Sessions(s.db).ListByWorkspace(ctx, userID, workspaceID)
}

func (s *SessionService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.rm.Sessions(s.db).Delete(ctx, userID, id)
}

// Spawn starts an agent process in the session's workspace directory.
// The directory comes from the workspace row, which was sandbox-resolved
// at creation time.
func (s *SessionService) Spawn(ctx context.Context, userID, sessionID uuid.UUID, runReason string) (*models.Process, error) {
	session, err := s.rm.Sessions(s.db).GetByID(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	ws, err := s.rm.Workspaces(s.db).GetByID(ctx, userID, session.WorkspaceID)
	if err != nil {
		return nil, err
	}

	return s.processes.Spawn(ctx, userID, registry.SpawnOptions{
		SessionID: sessionID,
		RunReason: runReason,
		Dir:       ws.Dir,
	})
}

func (s *SessionService) Interrupt(ctx context.Context, userID, processID uuid.UUID) error {
	return s.processes.Interrupt(ctx, userID, processID)
}

func (s *SessionService) ProcessStatus(ctx context.Context, userID, processID uuid.UUID) (*models.Process, error) {
	return s.processes.Status(ctx, userID, processID)
}

func (s *SessionService) ProcessMessages(ctx context.Context, userID, processID uuid.UUID) (<-chan []byte, error) {
	return s.processes.Messages(ctx, userID, processID)
}

// ProcessLogs returns the archived log of a finished process. The archive
// is keyed by owner, so someone else's process reads as absent.
func (s *SessionService) ProcessLogs(ctx context.Context, userID, processID uuid.UUID) ([]byte, error) {
	if _, err := s.rm.Processes(s.db).GetByID(ctx, userID, processID); err != nil {
		return nil, err
	}
	return s.logs.Fetch(ctx, userID, processID)
}

func (s *SessionService) ListProcesses(ctx context.Context, userID, sessionID uuid.UUID) ([]*models.Process, error) {
	if _, err := s.rm.Sessions(s.db).GetByID(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	return s.rm.Processes(s.db).ListBySession(ctx, userID, sessionID)
}
