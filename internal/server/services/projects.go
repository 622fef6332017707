// Package services implements the operations exposed to authenticated
// principals. Every method takes the caller's identity first and passes it
// down to owner-filtered repositories, so no query can cross tenants.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
)

// ErrValidation marks rejected input. The wrapped message is safe to show
// to the caller.
var ErrValidation = errors.New("invalid request")

type ProjectService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewProjectService(db *sql.DB, rm repomanager.RepositoryManager) *ProjectService {
	return &ProjectService{db: db, rm: rm}
}

func (s *ProjectService) Create(ctx context.Context, userID uuid.UUID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	return s.rm.Projects(s.db).Create(ctx, &models.Project{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	})
}

func (s *ProjectService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Project, error) {
	return s.rm.Projects(s.db).GetByID(ctx, userID, id)
}

func (s *ProjectService) List(ctx context.Context, userID uuid.UUID) ([]*models.Project, error) {
	return s.rm.Projects(s.db).List(ctx, userID)
}

func (s *ProjectService) Rename(ctx context.Context, userID, id uuid.UUID, name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrValidation
	}
	return s.rm.Projects(s.db).Update(ctx, &models.Project{
		ID:     id,
		UserID: userID,
		Name:   name,
	})
}

func (s *ProjectService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.rm.Projects(s.db).Delete(ctx, userID, id)
}
