// Package workspaces provides PostgreSQL-backed storage for workspace rows.
// The dir column always holds a path that was resolved inside the owner's
// sandbox before the row was written.
package workspaces

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/dbx"
	"github.com/mlevkov/workbench/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ws *models.Workspace) (*models.Workspace, error) {
	query :=
		`INSERT INTO workspaces (id, user_id, task_id, branch, dir)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		ws.ID, ws.UserID, ws.TaskID, ws.Branch, ws.Dir).Scan(&ws.CreatedAt, &ws.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ws, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Workspace, error) {
	query :=
		`SELECT id, user_id, task_id, branch, dir, archived, created_at, updated_at FROM workspaces
		 WHERE user_id = $1 AND id = $2
		 `

	ws := &models.Workspace{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&ws.ID, &ws.UserID, &ws.TaskID, &ws.Branch, &ws.Dir, &ws.Archived,
		&ws.CreatedAt, &ws.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ws, nil
}

func (r *PostgresRepository) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]*models.Workspace, error) {
	query :=
		`SELECT id, user_id, task_id, branch, dir, archived, created_at, updated_at FROM workspaces
		 WHERE user_id = $1 AND task_id = $2
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Workspace
	for rows.Next() {
		var item models.Workspace
		if err := rows.Scan(&item.ID, &item.UserID, &item.TaskID, &item.Branch, &item.Dir,
			&item.Archived, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) SetArchived(ctx context.Context, userID, id uuid.UUID, archived bool) error {
	query :=
		`UPDATE workspaces SET archived = $3, updated_at = NOW()
		 WHERE user_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, id, archived)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query :=
		`DELETE FROM workspaces
		 WHERE user_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
