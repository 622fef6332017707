// Package migrations embeds the goose SQL migrations applied at startup.
// Every migration is idempotent: re-applying a prior version is a no-op.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
