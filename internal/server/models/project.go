// Package models holds the persistent entity types of the tenant store.
// Every user-owned entity carries a non-null UserID; repositories never
// return a row whose UserID differs from the requesting principal.
package models

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
