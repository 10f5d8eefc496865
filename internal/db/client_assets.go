package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"agencydesk/internal/models"
)

const assetColumns = `id, client_id, type, title, summary, payload, tags, demo_key, created_at, updated_at`

func scanAsset(row pgx.Row) (*models.ClientAsset, error) {
	var a models.ClientAsset
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.Type,
		&a.Title,
		&a.Summary,
		&a.Payload,
		&a.Tags,
		&a.DemoKey,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAssetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateClientAsset inserts a new asset.
func (d *DB) CreateClientAsset(ctx context.Context, asset *models.ClientAsset) error {
	if asset.Tags == nil {
		asset.Tags = []string{}
	}

	query := `
		INSERT INTO client_assets (client_id, type, title, summary, payload, tags, demo_key)
		VALUES ($1, $2, $3, $4, COALESCE($5::jsonb, '{}'::jsonb), $6, $7)
		RETURNING id, payload, created_at, updated_at
	`
	err := d.Pool.QueryRow(ctx, query,
		asset.ClientID,
		asset.Type,
		asset.Title,
		asset.Summary,
		nullJSON(asset.Payload),
		asset.Tags,
		asset.DemoKey,
	).Scan(&asset.ID, &asset.Payload, &asset.CreatedAt, &asset.UpdatedAt)
	return translateFKError(err)
}

// GetClientAssetByID retrieves an asset by ID.
func (d *DB) GetClientAssetByID(ctx context.Context, id uuid.UUID) (*models.ClientAsset, error) {
	return scanAsset(d.Pool.QueryRow(ctx, `SELECT `+assetColumns+` FROM client_assets WHERE id = $1`, id))
}

// ListClientAssets retrieves assets newest first, filtered by client and type.
func (d *DB) ListClientAssets(ctx context.Context, filter models.AssetFilter) ([]models.ClientAsset, error) {
	sql := `SELECT ` + assetColumns + ` FROM client_assets WHERE TRUE`
	var args []any

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		sql += ` AND client_id = $` + strconv.Itoa(len(args))
	}
	if filter.Type != nil {
		args = append(args, *filter.Type)
		sql += ` AND type = $` + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	sql += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []models.ClientAsset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// DeleteClientAsset deletes an asset by ID.
func (d *DB) DeleteClientAsset(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM client_assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// CreateOrReuseDemoAsset inserts asset unless an asset with the same demo key exists.
// It returns true when an existing asset was reused; asset is populated either way.
// The insert is a single ON CONFLICT statement on the demo_key unique index.
func (d *DB) CreateOrReuseDemoAsset(ctx context.Context, asset *models.ClientAsset) (bool, error) {
	if asset.DemoKey == nil || *asset.DemoKey == "" {
		return false, fmt.Errorf("demo asset requires a demo key")
	}
	if asset.Tags == nil {
		asset.Tags = []string{}
	}

	insert := `
		INSERT INTO client_assets (client_id, type, title, summary, payload, tags, demo_key)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
		ON CONFLICT (demo_key) WHERE demo_key IS NOT NULL DO NOTHING
		RETURNING ` + assetColumns

	created, err := scanAsset(d.Pool.QueryRow(ctx, insert,
		asset.ClientID,
		asset.Type,
		asset.Title,
		asset.Summary,
		string(asset.Payload),
		asset.Tags,
		asset.DemoKey,
	))
	if err == nil {
		*asset = *created
		return false, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return false, err
	}

	// Conflict: another row holds the key.
	existing, err := scanAsset(d.Pool.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM client_assets WHERE demo_key = $1`, *asset.DemoKey))
	if err != nil {
		return false, err
	}
	*asset = *existing
	return true, nil
}

// DeleteDemoAssetsExceptNewest removes all audit assets carrying demoKey except the newest one.
// Rows are matched on the payload metadata so copies made before the unique index are included.
func (d *DB) DeleteDemoAssetsExceptNewest(ctx context.Context, demoKey string) (int64, error) {
	query := `
		DELETE FROM client_assets
		WHERE type = $1
		  AND (demo_key = $2 OR payload->'meta'->>'demoKey' = $2)
		  AND id <> (
			  SELECT id FROM client_assets
			  WHERE type = $1 AND (demo_key = $2 OR payload->'meta'->>'demoKey' = $2)
			  ORDER BY (demo_key IS NOT NULL) DESC, created_at DESC
			  LIMIT 1
		  )
	`
	result, err := d.Pool.Exec(ctx, query, models.AssetAudit, demoKey)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// CountAssetsByType returns the number of stored assets per type.
func (d *DB) CountAssetsByType(ctx context.Context) (map[string]int64, error) {
	rows, err := d.Pool.Query(ctx, `SELECT type, COUNT(*) FROM client_assets GROUP BY type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var assetType string
		var n int64
		if err := rows.Scan(&assetType, &n); err != nil {
			return nil, err
		}
		counts[assetType] = n
	}
	return counts, rows.Err()
}
