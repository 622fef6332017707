package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/logging"
	"github.com/mlevkov/workbench/internal/sandbox"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
)

// RepoService registers git repositories for a user. Paths are confined
// to the caller's sandbox before any row is written.
type RepoService struct {
	db      *sql.DB
	rm      repomanager.RepositoryManager
	sandbox sandbox.Sandbox
	logger  logging.Logger
}

func NewRepoService(db *sql.DB, rm repomanager.RepositoryManager, sb sandbox.Sandbox, logger logging.Logger) *RepoService {
	return &RepoService{db: db, rm: rm, sandbox: sb, logger: logger}
}

// Register resolves path inside the caller's sandbox and stores it. A
// path escaping the sandbox is reported exactly like a missing resource,
// and logged as a security event.
func (s *RepoService) Register(ctx context.Context, userID uuid.UUID, path, displayName string) (*models.Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrValidation
	}

	if _, err := s.sandbox.EnsureRoot(userID); err != nil {
		return nil, err
	}
	resolved, err := s.sandbox.Resolve(userID, path)
	if err != nil {
		if err == sandbox.ErrPathEscape {
			s.logger.Warn(ctx, "repo path rejected",
				logging.SecurityEventKey, true,
				"user_id", userID,
				"resource_kind", "repo",
				"reason", "path_escape",
			)
		}
		return nil, err
	}

	name := filepath.Base(resolved)
	if displayName == "" {
		displayName = name
	}

	return s.rm.Repos(s.db).Create(ctx, &models.Repo{
		ID:          uuid.New(),
		UserID:      userID,
		Path:        resolved,
		Name:        name,
		DisplayName: displayName,
	})
}

func (s *RepoService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Repo, error) {
	return s.rm.Repos(s.db).GetByID(ctx, userID, id)
}

func (s *RepoService) List(ctx context.Context, userID uuid.UUID) ([]*models.Repo, error) {
	return s.rm.Repos(s.db).List(ctx, userID)
}

func (s *RepoService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.rm.Repos(s.db).Delete(ctx, userID, id)
}
