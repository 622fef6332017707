// Package logstore archives the terminal output of finished agent
// processes. Blobs are written once and keyed by owner, so one user can
// never address another user's logs.
package logstore

import (
	"context"

	"github.com/google/uuid"
)

// Store persists process log blobs.
type Store interface {
	Archive(ctx context.Context, userID, processID uuid.UUID, payload []byte) error
	Fetch(ctx context.Context, userID, processID uuid.UUID) ([]byte, error)
}
