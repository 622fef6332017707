package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/server/logstore"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/processes"
)

// LaunchOptions describes a coding-agent process to spawn. Dir is already
// resolved and confined by the caller.
type LaunchOptions struct {
	Dir string
	Env []string
}

// AgentProcess is the live handle of a spawned agent. Messages is closed
// when the process exits; Wait then reports the exit code. A negative
// exit code means the process was killed before exiting on its own.
type AgentProcess interface {
	Messages() <-chan []byte
	Interrupt() error
	Kill() error
	Wait() (int64, error)
}

// Launcher spawns agent processes. The registry owns the returned handle.
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (AgentProcess, error)
}

// SpawnOptions ties a new process to its session row.
type SpawnOptions struct {
	SessionID uuid.UUID
	RunReason string
	Dir       string
	Env       []string
}

type liveProcess struct {
	id     uuid.UUID
	userID uuid.UUID
	handle AgentProcess

	mu      sync.Mutex
	more    *sync.Cond
	backlog [][]byte
	done    bool
}

// stream delivers the full ordered backlog to one subscriber, waiting for
// new messages as they arrive. Slow subscribers fall behind but never miss
// a message; they catch up from the backlog at their own pace. The channel
// is closed once everything up to process exit was delivered, or when ctx
// is cancelled.
func (p *liveProcess) stream(ctx context.Context, ch chan<- []byte) {
	defer close(ch)
	next := 0
	for {
		p.mu.Lock()
		for next >= len(p.backlog) && !p.done {
			p.more.Wait()
		}
		if next >= len(p.backlog) {
			p.mu.Unlock()
			return
		}
		m := p.backlog[next]
		next++
		p.mu.Unlock()

		select {
		case ch <- m:
		case <-ctx.Done():
			return
		}
	}
}

// ProcessRegistry owns every live agent process. Each message a process
// emits is buffered so late subscribers replay the full history before
// receiving live traffic.
type ProcessRegistry struct {
	mu        sync.Mutex
	processes map[uuid.UUID]*liveProcess

	launcher Launcher
	repo     processes.Repository
	logs     logstore.Store
	logger   logging.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

// NewProcessRegistry constructs a registry persisting outcomes through
// the given repository and archiving logs through the given store.
func NewProcessRegistry(launcher Launcher, repo processes.Repository, logs logstore.Store, logger logging.Logger) *ProcessRegistry {
	return &ProcessRegistry{
		processes: make(map[uuid.UUID]*liveProcess),
		launcher:  launcher,
		repo:      repo,
		logs:      logs,
		logger:    logger,
		now:       time.Now,
	}
}

// Spawn launches an agent, records a running row, and starts draining its
// messages. The returned model reflects the freshly inserted row.
func (r *ProcessRegistry) Spawn(ctx context.Context, userID uuid.UUID, opts SpawnOptions) (*models.Process, error) {
	handle, err := r.launcher.Launch(ctx, LaunchOptions{Dir: opts.Dir, Env: opts.Env})
	if err != nil {
		return nil, fmt.Errorf("launch agent: %w", err)
	}

	row := &models.Process{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: opts.SessionID,
		RunReason: opts.RunReason,
		Status:    models.ProcessStatusRunning,
		StartedAt: r.now(),
	}

	if _, err := r.repo.Create(ctx, row); err != nil {
		handle.Kill()
		return nil, err
	}

	p := &liveProcess{id: row.ID, userID: userID, handle: handle}
	p.more = sync.NewCond(&p.mu)
	r.mu.Lock()
	r.processes[row.ID] = p
	r.mu.Unlock()

	r.wg.Add(1)
	go r.drain(p)

	r.logger.Info(ctx, "agent process spawned",
		"user_id", userID, "process_id", row.ID, "session_id", opts.SessionID)
	return row, nil
}

// Interrupt asks an owned running process to stop gracefully.
func (r *ProcessRegistry) Interrupt(_ context.Context, userID, id uuid.UUID) error {
	p, err := r.get(userID, id)
	if err != nil {
		return err
	}
	if err := p.handle.Interrupt(); err != nil {
		return fmt.Errorf("interrupt: %w", err)
	}
	return nil
}

// Kill force-stops an owned running process.
func (r *ProcessRegistry) Kill(_ context.Context, userID, id uuid.UUID) error {
	p, err := r.get(userID, id)
	if err != nil {
		return err
	}
	if err := p.handle.Kill(); err != nil {
		return fmt.Errorf("kill: %w", err)
	}
	return nil
}

// Status reports the persisted state of an owned process, live or not.
func (r *ProcessRegistry) Status(ctx context.Context, userID, id uuid.UUID) (*models.Process, error) {
	return r.repo.GetByID(ctx, userID, id)
}

// Messages subscribes to an owned process. The channel replays every
// message emitted so far, then carries live traffic, and is closed when
// the process exits and the subscriber has seen everything. Cancelling
// ctx releases the subscription.
func (r *ProcessRegistry) Messages(ctx context.Context, userID, id uuid.UUID) (<-chan []byte, error) {
	p, err := r.get(userID, id)
	if err != nil {
		return nil, err
	}

	ch := make(chan []byte, 16)
	go p.stream(ctx, ch)
	return ch, nil
}

// List returns ids of the caller's live processes only.
func (r *ProcessRegistry) List(_ context.Context, userID uuid.UUID) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []uuid.UUID
	for id, p := range r.processes {
		if p.userID == userID {
			result = append(result, id)
		}
	}
	return result
}

// Wait blocks until every drain goroutine has finished. Used on shutdown.
func (r *ProcessRegistry) Wait() {
	r.wg.Wait()
}

// drain forwards messages until the process exits, then finalises the row
// and archives the accumulated log.
func (r *ProcessRegistry) drain(p *liveProcess) {
	defer r.wg.Done()

	for m := range p.handle.Messages() {
		p.mu.Lock()
		p.backlog = append(p.backlog, m)
		p.more.Broadcast()
		p.mu.Unlock()
	}

	code, waitErr := p.handle.Wait()

	p.mu.Lock()
	p.done = true
	p.more.Broadcast()
	backlog := p.backlog
	p.mu.Unlock()

	r.mu.Lock()
	delete(r.processes, p.id)
	r.mu.Unlock()

	status := models.ProcessStatusCompleted
	switch {
	case code < 0:
		status = models.ProcessStatusKilled
	case waitErr != nil || code != 0:
		status = models.ProcessStatusFailed
	}

	ctx := context.Background()
	if err := r.repo.Finish(ctx, p.userID, p.id, status, &code); err != nil {
		r.logger.Error(ctx, "process finalize failed", "error", err, "process_id", p.id)
	}
	if err := r.logs.Archive(ctx, p.userID, p.id, joinMessages(backlog)); err != nil {
		r.logger.Error(ctx, "process log archive failed", "error", err, "process_id", p.id)
	}

	r.logger.Info(ctx, "agent process exited",
		"user_id", p.userID, "process_id", p.id, "status", status, "exit_code", code)
}

// get locates an owned live process. Missing and foreign processes are
// the same error.
func (r *ProcessRegistry) get(userID, id uuid.UUID) (*liveProcess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.processes[id]
	if !ok || p.userID != userID {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func joinMessages(msgs [][]byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, m...)
		out = append(out, '\n')
	}
	return out
}
