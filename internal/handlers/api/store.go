package api

import (
	"context"

	"github.com/google/uuid"

	"agencydesk/internal/models"
)

// ClientStore persists clients.
type ClientStore interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context) ([]models.Client, error)
}

// AssetStore persists client assets.
type AssetStore interface {
	CreateClientAsset(ctx context.Context, asset *models.ClientAsset) error
	GetClientAssetByID(ctx context.Context, id uuid.UUID) (*models.ClientAsset, error)
	ListClientAssets(ctx context.Context, filter models.AssetFilter) ([]models.ClientAsset, error)
	DeleteClientAsset(ctx context.Context, id uuid.UUID) error
}

// AuditStore persists audits.
type AuditStore interface {
	CreateAudit(ctx context.Context, audit *models.Audit) error
	GetAuditByID(ctx context.Context, id uuid.UUID) (*models.Audit, error)
	ListAudits(ctx context.Context, clientID *uuid.UUID, limit int) ([]models.Audit, error)
}

// Store is everything the JSON API persists. *db.DB implements it.
type Store interface {
	ClientStore
	AssetStore
	AuditStore
}
