// Package vault encrypts per-user OAuth credentials with AES-256-GCM
// before they reach the database. The stored blob is nonce followed by
// ciphertext and tag; a fresh random nonce is generated for every write,
// so encrypting the same plaintext twice yields different blobs.
package vault

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/server/repositories/userconfigs"
)

// ErrDecrypt is returned when a stored blob fails authentication. The
// underlying cipher error is deliberately not wrapped.
var ErrDecrypt = errors.New("vault: decryption failed")

// Vault stores and retrieves encrypted credentials through the
// user_configs repository.
type Vault struct {
	aead cipher.AEAD
	repo userconfigs.Repository
}

// New constructs a Vault from a 32-byte AES key.
func New(key []byte, repo userconfigs.Repository) (*Vault, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return &Vault{aead: aead, repo: repo}, nil
}

// PutCredentials encrypts plaintext and upserts it for the given user.
func (v *Vault) PutCredentials(ctx context.Context, userID uuid.UUID, plaintext []byte) error {
	blob, err := v.seal(plaintext)
	if err != nil {
		return err
	}
	return v.repo.UpsertCredentials(ctx, userID, blob)
}

// GetCredentials loads and decrypts the stored credentials of the given
// user. Absence of a row or of stored credentials reports
// common.ErrorNotFound.
func (v *Vault) GetCredentials(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	cfg, err := v.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cfg.OAuthCredentials) == 0 {
		return nil, common.ErrorNotFound
	}
	return v.open(cfg.OAuthCredentials)
}

// DeleteCredentials removes the stored blob for the given user.
func (v *Vault) DeleteCredentials(ctx context.Context, userID uuid.UUID) error {
	return v.repo.DeleteCredentials(ctx, userID)
}

func (v *Vault) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (v *Vault) open(blob []byte) ([]byte, error) {
	if len(blob) < v.aead.NonceSize() {
		return nil, ErrDecrypt
	}
	nonce, ciphertext := blob[:v.aead.NonceSize()], blob[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
