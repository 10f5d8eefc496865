package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ClientAsset is the generic persisted envelope for generated deliverables.
// Payload shape is determined by Type; see DecodePayload.
type ClientAsset struct {
	ID        uuid.UUID       `json:"id"`
	ClientID  *uuid.UUID      `json:"clientId"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Payload   json.RawMessage `json:"payload"`
	Tags      []string        `json:"tags"`
	DemoKey   *string         `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AssetFilter narrows asset listings. Nil fields are not filtered on.
type AssetFilter struct {
	ClientID *uuid.UUID
	Type     *string
	Limit    int
}

// DemoAssetResponse is returned by the demo get-or-create endpoint.
type DemoAssetResponse struct {
	AssetID  uuid.UUID `json:"assetId"`
	Reused   bool      `json:"reused"`
	Redirect string    `json:"redirect"`
}
