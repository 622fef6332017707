package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/dbx"
	"github.com/mlevkov/workbench/internal/server/models"
	"github.com/mlevkov/workbench/internal/server/repositories/repomanager"
)

type TaskService struct {
	db *sql.DB
	rm repomanager.RepositoryManager
}

func NewTaskService(db *sql.DB, rm repomanager.RepositoryManager) *TaskService {
	return &TaskService{db: db, rm: rm}
}

// Create verifies that the parent project belongs to the caller before
// inserting the task. Check and insert run in one transaction so the
// project cannot disappear between the two.
func (s *TaskService) Create(ctx context.Context, userID, projectID uuid.UUID, title, description string) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrValidation
	}

	var task *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.rm.Projects(tx).GetByID(ctx, userID, projectID); err != nil {
			return err
		}
		var err error
		task, err = s.rm.Tasks(tx).Create(ctx, &models.Task{
			ID:          uuid.New(),
			UserID:      userID,
			ProjectID:   projectID,
			Title:       title,
			Description: description,
			Status:      models.TaskStatusTodo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id uuid.UUID) (*models.Task, error) {
	return s.rm.Tasks(s.db).GetByID(ctx, userID, id)
}

func (s *TaskService) ListByProject(ctx context.Context, userID, projectID uuid.UUID) ([]*models.Task, error) {
	if _, err := s.rm.Projects(s.db).GetByID(ctx, userID, projectID); err != nil {
		return nil, err
	}
	return s.rm.Tasks(s.db).ListByProject(ctx, userID, projectID)
}

func (s *TaskService) SetStatus(ctx context.Context, userID, id uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	switch status {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone, models.TaskStatusCancelled:
	default:
		return nil, ErrValidation
	}

	task, err := s.rm.Tasks(s.db).GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	return s.rm.Tasks(s.db).Update(ctx, task)
}

func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.rm.Tasks(s.db).Delete(ctx, userID, id)
}
