package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type discardLogger struct{}

func (discardLogger) Debug(context.Context, string, ...any) {}
func (discardLogger) Info(context.Context, string, ...any)  {}
func (discardLogger) Warn(context.Context, string, ...any)  {}
func (discardLogger) Error(context.Context, string, ...any) {}
func (l discardLogger) With(...any) logging.Logger          { return l }

type fakeProcess struct {
	msgs     chan []byte
	exitCode int64
	exited   chan struct{}

	mu          sync.Mutex
	interrupted bool
	killed      bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{msgs: make(chan []byte, 16), exited: make(chan struct{})}
}

func (f *fakeProcess) Messages() <-chan []byte { return f.msgs }

func (f *fakeProcess) Interrupt() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interrupted = true
	return nil
}

func (f *fakeProcess) Kill() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = true
	return nil
}

func (f *fakeProcess) Wait() (int64, error) {
	<-f.exited
	return f.exitCode, nil
}

func (f *fakeProcess) emit(m []byte) { f.msgs <- m }

func (f *fakeProcess) exit(code int64) {
	f.exitCode = code
	close(f.msgs)
	close(f.exited)
}

type fakeLauncher struct {
	mu    sync.Mutex
	procs []*fakeProcess
}

func (f *fakeLauncher) Launch(_ context.Context, _ LaunchOptions) (AgentProcess, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := newFakeProcess()
	f.procs = append(f.procs, p)
	return p, nil
}

type fakeProcessRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Process
}

func newFakeProcessRepo() *fakeProcessRepo {
	return &fakeProcessRepo{rows: make(map[uuid.UUID]*models.Process)}
}

func (f *fakeProcessRepo) Create(_ context.Context, p *models.Process) (*models.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.rows[p.ID] = &cp
	return p, nil
}

func (f *fakeProcessRepo) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProcessRepo) ListBySession(_ context.Context, userID, sessionID uuid.UUID) ([]*models.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Process
	for _, p := range f.rows {
		if p.UserID == userID && p.SessionID == sessionID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeProcessRepo) Finish(_ context.Context, userID, id uuid.UUID, status models.ProcessStatus, exitCode *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok || p.UserID != userID || p.Status != models.ProcessStatusRunning {
		return common.ErrorNotFound
	}
	p.Status = status
	p.ExitCode = exitCode
	now := time.Now()
	p.CompletedAt = &now
	return nil
}

func (f *fakeProcessRepo) FailAbandoned(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.rows {
		if p.Status == models.ProcessStatusRunning {
			p.Status = models.ProcessStatusFailed
			n++
		}
	}
	return n, nil
}

type fakeLogStore struct {
	mu    sync.Mutex
	blobs map[uuid.UUID][]byte
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{blobs: make(map[uuid.UUID][]byte)}
}

func (f *fakeLogStore) Archive(_ context.Context, _, processID uuid.UUID, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[processID] = payload
	return nil
}

func (f *fakeLogStore) Fetch(_ context.Context, _, processID uuid.UUID) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	blob, ok := f.blobs[processID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return blob, nil
}

func newTestProcessRegistry(t *testing.T) (*ProcessRegistry, *fakeLauncher, *fakeProcessRepo, *fakeLogStore) {
	t.Helper()
	launcher := &fakeLauncher{}
	repo := newFakeProcessRepo()
	logs := newFakeLogStore()
	r := NewProcessRegistry(launcher, repo, logs, discardLogger{})
	return r, launcher, repo, logs
}

func TestProcessRegistry_SpawnAndExit(t *testing.T) {
	r, launcher, repo, logs := newTestProcessRegistry(t)
	owner := uuid.New()
	session := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: session, RunReason: "codingagent"})
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusRunning, row.Status)

	proc := launcher.procs[0]
	proc.emit([]byte("hello"))
	proc.exit(0)
	r.Wait()

	final, err := repo.GetByID(context.Background(), owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusCompleted, final.Status)
	require.NotNil(t, final.ExitCode)
	assert.Equal(t, int64(0), *final.ExitCode)

	blob, err := logs.Fetch(context.Background(), owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello\n"), blob)
}

func TestProcessRegistry_NonZeroExitIsFailed(t *testing.T) {
	r, launcher, repo, _ := newTestProcessRegistry(t)
	owner := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	launcher.procs[0].exit(2)
	r.Wait()

	final, err := repo.GetByID(context.Background(), owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusFailed, final.Status)
	require.NotNil(t, final.ExitCode)
	assert.Equal(t, int64(2), *final.ExitCode)
}

func TestProcessRegistry_KilledStatus(t *testing.T) {
	r, launcher, repo, _ := newTestProcessRegistry(t)
	owner := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	require.NoError(t, r.Kill(context.Background(), owner, row.ID))
	launcher.procs[0].exit(-1)
	r.Wait()

	final, err := repo.GetByID(context.Background(), owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProcessStatusKilled, final.Status)
}

// Subscribing after messages were emitted replays the backlog before any
// live traffic.
func TestProcessRegistry_MessagesReplayThenLive(t *testing.T) {
	r, launcher, _, _ := newTestProcessRegistry(t)
	owner := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	proc := launcher.procs[0]
	proc.emit([]byte("first"))
	proc.emit([]byte("second"))

	// give the drain goroutine time to buffer both
	require.Eventually(t, func() bool {
		p, err := r.get(owner, row.ID)
		if err != nil {
			return false
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.backlog) == 2
	}, time.Second, 5*time.Millisecond)

	ch, err := r.Messages(context.Background(), owner, row.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), <-ch)
	assert.Equal(t, []byte("second"), <-ch)

	proc.exit(0)
	r.Wait()

	// channel closed after exit
	for range ch {
	}
}

// A subscriber that stops reading while the process keeps emitting must
// still observe every message in order once it resumes.
func TestProcessRegistry_SlowSubscriberSeesFullStream(t *testing.T) {
	r, launcher, _, _ := newTestProcessRegistry(t)
	owner := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	ch, err := r.Messages(context.Background(), owner, row.ID)
	require.NoError(t, err)

	proc := launcher.procs[0]
	for i := 0; i < 50; i++ {
		proc.emit([]byte{byte(i)})
	}
	proc.exit(0)
	r.Wait()

	// only now does the subscriber start reading
	var got [][]byte
	for m := range ch {
		got = append(got, m)
	}
	require.Len(t, got, 50)
	for i, m := range got {
		assert.Equal(t, []byte{byte(i)}, m)
	}
}

// Cancelling the subscription context releases the stream even if the
// subscriber never drains its channel.
func TestProcessRegistry_MessagesCancelledSubscriber(t *testing.T) {
	r, launcher, _, _ := newTestProcessRegistry(t)
	owner := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := r.Messages(ctx, owner, row.ID)
	require.NoError(t, err)

	proc := launcher.procs[0]
	for i := 0; i < 40; i++ {
		proc.emit([]byte("x"))
	}
	cancel()
	proc.exit(0)
	r.Wait()

	// the channel closes without the full stream being consumed
	require.Eventually(t, func() bool {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return true
				}
			default:
				return false
			}
		}
	}, time.Second, 5*time.Millisecond)
}

func TestProcessRegistry_ForeignProcessLooksAbsent(t *testing.T) {
	r, _, _, _ := newTestProcessRegistry(t)
	owner := uuid.New()
	stranger := uuid.New()

	row, err := r.Spawn(context.Background(), owner, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	assert.ErrorIs(t, r.Interrupt(context.Background(), stranger, row.ID), common.ErrorNotFound)
	assert.ErrorIs(t, r.Kill(context.Background(), stranger, row.ID), common.ErrorNotFound)
	_, err = r.Messages(context.Background(), stranger, row.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	_, err = r.Status(context.Background(), stranger, row.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestProcessRegistry_ListIsPerUser(t *testing.T) {
	r, _, _, _ := newTestProcessRegistry(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := r.Spawn(context.Background(), alice, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)
	_, err = r.Spawn(context.Background(), bob, SpawnOptions{SessionID: uuid.New()})
	require.NoError(t, err)

	assert.Len(t, r.List(context.Background(), alice), 1)
	assert.Len(t, r.List(context.Background(), bob), 1)
	assert.Empty(t, r.List(context.Background(), uuid.New()))
}
