// Package ptysessions provides PostgreSQL-backed bookkeeping for live
// shell sessions. Rows mirror the in-memory registry so sessions can be
// listed per user and swept away on restart.
package ptysessions

import (
	"context"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.PTYRecord) (*models.PTYRecord, error) {
	query :=
		`INSERT INTO pty_sessions (id, user_id, workspace_id, cols, rows, created_at, last_activity_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 `

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.WorkspaceID, rec.Cols, rec.Rows, rec.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	rec.LastActivityAt = rec.CreatedAt
	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.PTYRecord, error) {
	query :=
		`SELECT id, user_id, workspace_id, cols, rows, created_at, last_activity_at FROM pty_sessions
		 WHERE user_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.PTYRecord
	for rows.Next() {
		var item models.PTYRecord
		if err := rows.Scan(&item.ID, &item.UserID, &item.WorkspaceID, &item.Cols, &item.Rows,
			&item.CreatedAt, &item.LastActivityAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) TouchActivity(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	query :=
		`UPDATE pty_sessions SET last_activity_at = $3
		 WHERE user_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, userID, id, at)
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
		`DELETE FROM pty_sessions
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

// DeleteAll clears every row. Called once at startup: live handles do not
// survive a restart, so stale rows would advertise sessions that no longer
// exist.
func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pty_sessions`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
