package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessStatus is the lifecycle state of an execution process record.
type ProcessStatus string

const (
	ProcessStatusRunning   ProcessStatus = "running"
	ProcessStatusCompleted ProcessStatus = "completed"
	ProcessStatusFailed    ProcessStatus = "failed"
	ProcessStatusKilled    ProcessStatus = "killed"
)

// Process is the persisted snapshot of a coding-agent child process. The
// live OS handle is owned by the process registry; this row records its
// outcome.
type Process struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	SessionID   uuid.UUID
	RunReason   string
	Status      ProcessStatus
	ExitCode    *int64
	StartedAt   time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
