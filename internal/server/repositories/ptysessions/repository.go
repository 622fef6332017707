package ptysessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.PTYRecord) (*models.PTYRecord, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.PTYRecord, error)
	TouchActivity(ctx context.Context, userID, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}
