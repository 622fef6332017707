// Package processes provides PostgreSQL-backed storage for execution
// process records. Rows are written on spawn and finalised exactly once
// with a terminal status and exit code.
package processes

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

func (r *PostgresRepository) Create(ctx context.Context, process *models.Process) (*models.Process, error) {
	query :=
		`INSERT INTO execution_processes (id, user_id, session_id, run_reason, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		process.ID, process.UserID, process.SessionID, process.RunReason, process.Status, process.StartedAt).
		Scan(&process.CreatedAt, &process.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return process, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Process, error) {
	query :=
		`SELECT id, user_id, session_id, run_reason, status, exit_code, started_at, completed_at, created_at, updated_at
		 FROM execution_processes
		 WHERE user_id = $1 AND id = $2
		 `

	process := &models.Process{}
	err := r.db.QueryRowContext(ctx, query, userID, id).Scan(
		&process.ID, &process.UserID, &process.SessionID, &process.RunReason, &process.Status,
		&process.ExitCode, &process.StartedAt, &process.CompletedAt,
		&process.CreatedAt, &process.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return process, nil
}

func (r *PostgresRepository) ListBySession(ctx context.Context, userID, sessionID uuid.UUID) ([]*models.Process, error) {
	query :=
		`SELECT id, user_id, session_id, run_reason, status, exit_code, started_at, completed_at, created_at, updated_at
		 FROM execution_processes
		 WHERE user_id = $1 AND session_id = $2
		 ORDER BY started_at
		 `

	rows, err := r.db.QueryContext(ctx, query, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Process
	for rows.Next() {
		var item models.Process
		if err := rows.Scan(&item.ID, &item.UserID, &item.SessionID, &item.RunReason, &item.Status,
			&item.ExitCode, &item.StartedAt, &item.CompletedAt, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Finish records the terminal status of a process. Only rows still marked
// running transition; finishing an already finished process reports
// common.ErrorNotFound like any other absent row.
func (r *PostgresRepository) Finish(ctx context.Context, userID, id uuid.UUID, status models.ProcessStatus, exitCode *int64) error {
	query :=
		`UPDATE execution_processes SET status = $3, exit_code = $4, completed_at = NOW(), updated_at = NOW()
		 WHERE user_id = $1 AND id = $2 AND status = 'running'
		 `

	res, err := r.db.ExecContext(ctx, query, userID, id, status, exitCode)
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

// FailAbandoned marks every row still running as failed. Live handles do
// not survive a restart, so rows left running belong to a previous run.
func (r *PostgresRepository) FailAbandoned(ctx context.Context) (int64, error) {
	query :=
		`UPDATE execution_processes SET status = 'failed', completed_at = NOW(), updated_at = NOW()
		 WHERE status = 'running'
		 `

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
