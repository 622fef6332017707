package repos

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, repo *models.Repo) (*models.Repo, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Repo, error)
	GetByPath(ctx context.Context, userID uuid.UUID, path string) (*models.Repo, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Repo, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
