package processes

import (
	"context"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, process *models.Process) (*models.Process, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Process, error)
	ListBySession(ctx context.Context, userID, sessionID uuid.UUID) ([]*models.Process, error)
	Finish(ctx context.Context, userID, id uuid.UUID, status models.ProcessStatus, exitCode *int64) error
	FailAbandoned(ctx context.Context) (int64, error)
}
