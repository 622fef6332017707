package workspaces

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error)
	ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*models.Workspace, error)
	SetArchived(ctx context.Context, userID, id uuid.UUID, archived bool) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
