package userconfigs

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserConfig, error)
	UpsertConfig(ctx context.Context, userID uuid.UUID, configJSON []byte) error
	UpsertCredentials(ctx context.Context, userID uuid.UUID, ciphertext []byte) error
	DeleteCredentials(ctx context.Context, userID uuid.UUID) error
}
