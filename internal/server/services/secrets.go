package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
	"github.com/mlevkov/workbench/internal/server/vault"
)

// SecretService manages per-user settings and encrypted credentials.
// Plaintext credentials exist only in memory between the API boundary and
// the vault.
type SecretService struct {
	db    *sql.DB
	rm    repomanager.RepositoryManager
	vault *vault.Vault
}

func NewSecretService(db *sql.DB, rm repomanager.RepositoryManager, v *vault.Vault) *SecretService {
	return &SecretService{db: db, rm: rm, vault: v}
}

func (s *SecretService) PutCredentials(ctx context.Context, userID uuid.UUID, plaintext []byte) error {
	if len(plaintext) == 0 {
		return ErrValidation
	}
	return s.vault.PutCredentials(ctx, userID, plaintext)
}

func (s *SecretService) GetCredentials(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return s.vault.GetCredentials(ctx, userID)
}

func (s *SecretService) DeleteCredentials(ctx context.Context, userID uuid.UUID) error {
	return s.vault.DeleteCredentials(ctx, userID)
}

// PutConfig stores the user's settings document after checking it is
// well-formed JSON.
func (s *SecretService) PutConfig(ctx context.Context, userID uuid.UUID, configJSON []byte) error {
	if !json.Valid(configJSON) {
		return ErrValidation
	}
	return s.rm.UserConfigs(s.db).UpsertConfig(ctx, userID, configJSON)
}

// GetConfig returns the settings document; an absent row yields an empty
// object rather than an error.
func (s *SecretService) GetConfig(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	cfg, err := s.rm.UserConfigs(s.db).Get(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return []byte(`{}`), nil
		}
		return nil, err
	}
	if len(cfg.ConfigJSON) == 0 {
		return []byte(`{}`), nil
	}
	return cfg.ConfigJSON, nil
}
