// Package userconfigs provides PostgreSQL-backed storage for per-user
// settings and encrypted OAuth credentials. The user id is the primary
// key; oauth_credentials only ever holds ciphertext produced by the vault.
package userconfigs

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

func (r *PostgresRepository) Get(ctx context.Context, userID uuid.UUID) (*models.UserConfig, error) {
	query :=
		`SELECT user_id, config_json, oauth_credentials, created_at, updated_at FROM user_configs
		 WHERE user_id = $1
		 `

	cfg := &models.UserConfig{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&cfg.UserID, &cfg.ConfigJSON, &cfg.OAuthCredentials, &cfg.CreatedAt, &cfg.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return cfg, nil
}

func (r *PostgresRepository) UpsertConfig(ctx context.Context, userID uuid.UUID, configJSON []byte) error {
	query :=
		`INSERT INTO user_configs (user_id, config_json)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id)
		 DO UPDATE SET config_json = EXCLUDED.config_json, updated_at = NOW()
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, configJSON); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertCredentials(ctx context.Context, userID uuid.UUID, ciphertext []byte) error {
	query :=
		`INSERT INTO user_configs (user_id, oauth_credentials)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id)
		 DO UPDATE SET oauth_credentials = EXCLUDED.oauth_credentials, updated_at = NOW()
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, ciphertext); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteCredentials(ctx context.Context, userID uuid.UUID) error {
	query :=
		`UPDATE user_configs SET oauth_credentials = NULL, updated_at = NOW()
		 WHERE user_id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, userID)
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
