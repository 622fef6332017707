package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error class/code prefixes we care about. Constraint violations
// surface as domain errors; connection-class failures are retried.
const (
	codeUniqueViolation = "23505"
	classConnection     = "08"
	codeTooManyConns    = "53300"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// Repositories map it to common.ErrorConflict so the raw driver error
// never reaches a caller.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// IsTransient reports whether err is worth retrying: connection-class
// failures, pool saturation on the server side, or a broken driver
// connection. Constraint violations and context cancellation are not
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, errBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == classConnection {
			return true
		}
		return pgErr.Code == codeTooManyConns
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
