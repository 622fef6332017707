package models

import (
	"time"

	"github.com/google/uuid"
)

// UserConfig is the per-user settings row, keyed by the user itself.
// OAuthCredentials holds the vault ciphertext (nonce ‖ ciphertext ‖ tag);
// the plaintext never reaches this struct.
type UserConfig struct {
	UserID           uuid.UUID
	ConfigJSON       []byte
	OAuthCredentials []byte
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
