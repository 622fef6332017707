// Package repos provides PostgreSQL-backed storage for registered git
// repositories. The path uniqueness constraint is scoped per user, so two
// users may register the same path without colliding.
package repos

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

// PostgresRepository implements repo storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, repo *models.Repo) (*models.Repo, error) {
	query :=
		`INSERT INTO repos (id, user_id, path, name, display_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		repo.ID, repo.UserID, repo.Path, repo.Name, repo.DisplayName).Scan(&repo.CreatedAt, &repo.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return repo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Repo, error) {
	query :=
		`SELECT id, user_id, path, name, display_name, created_at, updated_at FROM repos
		 WHERE user_id = $1 AND id = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, id))
}

func (r *PostgresRepository) GetByPath(ctx context.Context, userID uuid.UUID, path string) (*models.Repo, error) {
	query :=
		`SELECT id, user_id, path, name, display_name, created_at, updated_at FROM repos
		 WHERE user_id = $1 AND path = $2
		 `

	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, path))
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Repo, error) {
	repo := &models.Repo{}
	err := row.Scan(&repo.ID, &repo.UserID, &repo.Path, &repo.Name, &repo.DisplayName,
		&repo.CreatedAt, &repo.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return repo, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Repo, error) {
	query :=
		`SELECT id, user_id, path, name, display_name, created_at, updated_at FROM repos
		 WHERE user_id = $1
		 ORDER BY name
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Repo
	for rows.Next() {
		var item models.Repo
		if err := rows.Scan(&item.ID, &item.UserID, &item.Path, &item.Name, &item.DisplayName,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query :=
		`DELETE FROM repos
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
