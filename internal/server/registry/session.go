// Package registry tracks live per-user resources that never touch the
// database directly: interactive shells and coding-agent processes. Every
// lookup is keyed by owner first, so a handle belonging to another user is
// reported as absent.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/sandbox"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/ptysessions"
)

// OpenOptions describes a shell session to open. RelDir is interpreted
// inside the owner's sandbox; empty means the sandbox root itself.
type OpenOptions struct {
	WorkspaceID *uuid.UUID
	RelDir      string
	Cols        int
	Rows        int
}

// SessionInfo is a point-in-time view of a live session.
type SessionInfo struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	WorkspaceID    *uuid.UUID
	Cols           int
	Rows           int
	CreatedAt      time.Time
	LastActivityAt time.Time
}

type liveSession struct {
	info  SessionInfo
	shell Shell
}

// SessionRegistry owns every live shell in the server. All state lives
// behind one mutex; shell I/O itself happens outside the lock.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession

	starter ShellStarter
	sandbox sandbox.Sandbox
	records ptysessions.Repository
	logger  logging.Logger
	idle    time.Duration
	now     func() time.Time
}

// NewSessionRegistry constructs a registry. Sessions idle longer than
// idle are eligible for reclamation by CloseIdle.
func NewSessionRegistry(starter ShellStarter, sb sandbox.Sandbox, records ptysessions.Repository, logger logging.Logger, idle time.Duration) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*liveSession),
		starter:  starter,
		sandbox:  sb,
		records:  records,
		logger:   logger,
		idle:     idle,
		now:      time.Now,
	}
}

// Open starts a shell confined to the owner's sandbox and registers it.
// The shell's working directory and HOME both resolve inside the sandbox.
func (r *SessionRegistry) Open(ctx context.Context, userID uuid.UUID, opts OpenOptions) (SessionInfo, error) {
	root, err := r.sandbox.EnsureRoot(userID)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("ensure root: %w", err)
	}

	dir := root
	if opts.RelDir != "" {
		if dir, err = r.sandbox.Resolve(userID, opts.RelDir); err != nil {
			return SessionInfo{}, err
		}
	}

	cols, rows := opts.Cols, opts.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}

	shell, err := r.starter.Start(ctx, ShellOptions{
		Dir:  dir,
		Env:  []string{"HOME=" + dir},
		Cols: cols,
		Rows: rows,
	})
	if err != nil {
		return SessionInfo{}, fmt.Errorf("start shell: %w", err)
	}

	now := r.now()
	info := SessionInfo{
		ID:             uuid.New(),
		UserID:         userID,
		WorkspaceID:    opts.WorkspaceID,
		Cols:           cols,
		Rows:           rows,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if _, err := r.records.Create(ctx, &models.PTYRecord{
		ID:          info.ID,
		UserID:      userID,
		WorkspaceID: opts.WorkspaceID,
		Cols:        cols,
		Rows:        rows,
		CreatedAt:   now,
	}); err != nil {
		shell.Close()
		return SessionInfo{}, err
	}

	r.mu.Lock()
	r.sessions[info.ID] = &liveSession{info: info, shell: shell}
	r.mu.Unlock()

	r.logger.Info(ctx, "shell session opened", "user_id", userID, "session_id", info.ID)
	return info, nil
}

// Write sends input to an owned session and refreshes its activity time.
func (r *SessionRegistry) Write(ctx context.Context, userID, id uuid.UUID, p []byte) error {
	s, err := r.touch(userID, id)
	if err != nil {
		return err
	}
	if _, err := s.shell.Write(p); err != nil {
		return fmt.Errorf("shell write: %w", err)
	}
	r.touchRecord(ctx, userID, id)
	return nil
}

// Resize changes the terminal dimensions of an owned session.
func (r *SessionRegistry) Resize(ctx context.Context, userID, id uuid.UUID, cols, rows int) error {
	s, err := r.touch(userID, id)
	if err != nil {
		return err
	}
	if err := s.shell.Resize(cols, rows); err != nil {
		return fmt.Errorf("shell resize: %w", err)
	}
	r.mu.Lock()
	s.info.Cols, s.info.Rows = cols, rows
	r.mu.Unlock()
	r.touchRecord(ctx, userID, id)
	return nil
}

// touchRecord refreshes the persisted activity snapshot. The in-memory
// timestamp was already bumped, so a failure here only skews the snapshot
// and is logged rather than returned.
func (r *SessionRegistry) touchRecord(ctx context.Context, userID, id uuid.UUID) {
	if err := r.records.TouchActivity(ctx, userID, id, r.now()); err != nil && err != common.ErrorNotFound {
		r.logger.Warn(ctx, "session activity update failed", "error", err, "session_id", id)
	}
}

// Output returns the live output channel of an owned session.
func (r *SessionRegistry) Output(_ context.Context, userID, id uuid.UUID) (<-chan []byte, error) {
	s, err := r.touch(userID, id)
	if err != nil {
		return nil, err
	}
	return s.shell.Output(), nil
}

// Close terminates an owned session and drops its record.
func (r *SessionRegistry) Close(ctx context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok || s.info.UserID != userID {
		r.mu.Unlock()
		return common.ErrorNotFound
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	s.shell.Close()
	if err := r.records.Delete(ctx, userID, id); err != nil && err != common.ErrorNotFound {
		return err
	}
	r.logger.Info(ctx, "shell session closed", "user_id", userID, "session_id", id)
	return nil
}

// List returns the caller's live sessions only.
func (r *SessionRegistry) List(_ context.Context, userID uuid.UUID) []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []SessionInfo
	for _, s := range r.sessions {
		if s.info.UserID == userID {
			result = append(result, s.info)
		}
	}
	return result
}

// CloseIdle reclaims every session whose last activity is older than the
// idle threshold and returns the reclaimed sessions. A failed record
// delete does not stop the sweep.
func (r *SessionRegistry) CloseIdle(ctx context.Context) []SessionInfo {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []*liveSession
	for id, s := range r.sessions {
		if s.info.LastActivityAt.Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	var reclaimed []SessionInfo
	for _, s := range stale {
		s.shell.Close()
		if err := r.records.Delete(ctx, s.info.UserID, s.info.ID); err != nil && err != common.ErrorNotFound {
			r.logger.Error(ctx, "session record delete failed", "error", err, "session_id", s.info.ID)
		}
		reclaimed = append(reclaimed, s.info)
	}
	return reclaimed
}

// touch locates an owned session and bumps its activity timestamp.
// Missing session and foreign session are the same error.
func (r *SessionRegistry) touch(userID, id uuid.UUID) (*liveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.info.UserID != userID {
		return nil, common.ErrorNotFound
	}
	s.info.LastActivityAt = r.now()
	return s, nil
}
