package projects

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) (*models.Project, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
