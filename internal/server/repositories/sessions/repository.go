package sessions

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Session, error)
	ListByWorkspace(ctx context.Context, userID, workspaceID uuid.UUID) ([]*models.Session, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}
