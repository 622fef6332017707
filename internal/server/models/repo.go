package models

import (
	"time"

	"github.com/google/uuid"
)

// Repo is a registered source tree. Paths are unique per user, not
// globally — a global unique would leak path existence across tenants.
type Repo struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Path        string
	Name        string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
