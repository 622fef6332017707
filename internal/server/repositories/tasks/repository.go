package tasks

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) (*models.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
