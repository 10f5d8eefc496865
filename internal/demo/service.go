package demo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agencydesk/internal/metrics"
	"agencydesk/internal/models"
)

// Store persists the demo asset. CreateOrReuseDemoAsset must be atomic: when an
// asset with the same demo key exists it fills asset from that row and returns true.
type Store interface {
	CreateOrReuseDemoAsset(ctx context.Context, asset *models.ClientAsset) (bool, error)
	DeleteDemoAssetsExceptNewest(ctx context.Context, demoKey string) (int64, error)
}

// Service creates the demo asset on first use and returns it afterwards.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService returns a demo service backed by store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateOrReuse returns the demo asset id, creating the asset if none exists.
func (s *Service) CreateOrReuse(ctx context.Context) (*models.DemoAssetResponse, error) {
	asset, err := Asset()
	if err != nil {
		return nil, fmt.Errorf("failed to build demo asset: %w", err)
	}

	reused, err := s.store.CreateOrReuseDemoAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("failed to store demo asset: %w", err)
	}
	metrics.RecordDemoAsset(reused)

	if !reused {
		s.logger.Info("created demo asset", zap.String("asset_id", asset.ID.String()))
	}

	return &models.DemoAssetResponse{
		AssetID:  asset.ID,
		Reused:   reused,
		Redirect: "/assets/" + asset.ID.String(),
	}, nil
}

// Cleanup removes duplicate demo assets, keeping the newest. It returns the number removed.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteDemoAssetsExceptNewest(ctx, Key)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up demo assets: %w", err)
	}
	if n > 0 {
		s.logger.Info("removed duplicate demo assets", zap.Int64("count", n))
	}
	return n, nil
}
