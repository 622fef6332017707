package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is an agent conversation bound to a workspace owned by the same
// user (transitive ownership consistency, enforced at the service layer
// and by the repository predicates).
type Session struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Executor    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
