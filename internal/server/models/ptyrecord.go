package models

import (
	"time"

	"github.com/google/uuid"
)

// PTYRecord is the persisted snapshot of a live shell session. Created on
// open, deleted on close or idle reclamation; the registry owns the live
// handle.
type PTYRecord struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	WorkspaceID    *uuid.UUID
	Cols           int
	Rows           int
	CreatedAt      time.Time
	LastActivityAt time.Time
}
