package models

import (
	"time"

	"github.com/google/uuid"
)

// Workspace is a working directory bound to a task. Its filesystem root
// lives under the owner's prefix and is created through the path sandbox.
type Workspace struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    uuid.UUID
	Branch    string
	Dir       string
	Archived  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
