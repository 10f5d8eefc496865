package models

import (
	"time"

	"github.com/google/uuid"
)

// Client is an agency customer that audits and assets can belong to.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Website   *string   `json:"website"`
	Industry  *string   `json:"industry"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
