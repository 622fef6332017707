// Package reaper periodically reclaims idle shell sessions. It only goes
// through the registry's public operations, so a sweep is exactly a close
// performed on the owner's behalf.
package reaper

import (
	"context"
	"time"

	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/server/registry"
)

// Reaper sweeps the session registry on a fixed interval until its
// context is cancelled.
type Reaper struct {
	sessions *registry.SessionRegistry
	interval time.Duration
	logger   logging.Logger
}

func New(sessions *registry.SessionRegistry, interval time.Duration, logger logging.Logger) *Reaper {
	return &Reaper{sessions: sessions, interval: interval, logger: logger}
}

// Run blocks, sweeping every interval, and returns when ctx is done. A
// session that fails to reclaim stays registered and is retried on the
// next sweep.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info(ctx, "reaper started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info(ctx, "reaper stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs one reclamation pass and audit-logs every reclaimed
// session.
func (r *Reaper) Sweep(ctx context.Context) {
	for _, info := range r.sessions.CloseIdle(ctx) {
		r.logger.Warn(ctx, "idle session reclaimed",
			logging.SecurityEventKey, true,
			"user_id", info.UserID,
			"resource_kind", "pty_session",
			"resource_id", info.ID,
			"reason", "idle_timeout",
			"last_activity_at", info.LastActivityAt,
		)
	}
}
