package logstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mlevkov/workbench/internal/common"
	"github.com/mlevkov/workbench/internal/dbx"
)

// PostgresStore keeps process logs in the process_logs table. Used when
// no object store is configured.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Archive(ctx context.Context, userID, processID uuid.UUID, payload []byte) error {
	query :=
		`INSERT INTO process_logs (process_id, user_id, payload)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (process_id)
		 DO UPDATE SET payload = EXCLUDED.payload
		 WHERE process_logs.user_id = EXCLUDED.user_id
		 `

	if _, err := s.db.ExecContext(ctx, query, processID, userID, payload); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, userID, processID uuid.UUID) ([]byte, error) {
	query :=
		`SELECT payload FROM process_logs
		 WHERE user_id = $1 AND process_id = $2
		 `

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, userID, processID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payload, nil
}
