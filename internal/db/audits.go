package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"agencydesk/internal/models"
)

const auditColumns = `id, client_id, url, score, raw_scan, structured_audit, structured_fields, created_at`

func scanAudit(row pgx.Row) (*models.Audit, error) {
	var a models.Audit
	err := row.Scan(
		&a.ID,
		&a.ClientID,
		&a.URL,
		&a.Score,
		&a.RawScan,
		&a.StructuredAudit,
		&a.StructuredFields,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAuditNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAudit persists an audit result.
func (d *DB) CreateAudit(ctx context.Context, audit *models.Audit) error {
	query := `
		INSERT INTO audits (client_id, url, score, raw_scan, structured_audit, structured_fields)
		VALUES ($1, $2, $3, $4, COALESCE($5::jsonb, '{}'::jsonb), COALESCE($6::jsonb, '{}'::jsonb))
		RETURNING id, created_at
	`
	err := d.Pool.QueryRow(ctx, query,
		audit.ClientID,
		audit.URL,
		audit.Score,
		audit.RawScan,
		nullJSON(audit.StructuredAudit),
		nullJSON(audit.StructuredFields),
	).Scan(&audit.ID, &audit.CreatedAt)
	return translateFKError(err)
}

// GetAuditByID retrieves an audit by ID.
func (d *DB) GetAuditByID(ctx context.Context, id uuid.UUID) (*models.Audit, error) {
	return scanAudit(d.Pool.QueryRow(ctx, `SELECT `+auditColumns+` FROM audits WHERE id = $1`, id))
}

// ListAudits retrieves audits newest first, optionally for one client.
func (d *DB) ListAudits(ctx context.Context, clientID *uuid.UUID, limit int) ([]models.Audit, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audits
		WHERE ($1::uuid IS NULL OR client_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := d.Pool.Query(ctx, query, clientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	audits := []models.Audit{}
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		audits = append(audits, *a)
	}
	return audits, rows.Err()
}

// nullJSON maps an empty raw message to SQL NULL so column defaults apply.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// translateFKError maps a foreign key violation to ErrUnknownClient.
func translateFKError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrUnknownClient
	}
	return err
}
