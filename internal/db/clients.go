package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"agencydesk/internal/models"
)

const clientColumns = `id, name, website, industry, notes, created_at, updated_at`

// CreateClient creates a new client.
func (d *DB) CreateClient(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (name, website, industry, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	return d.Pool.QueryRow(ctx, query,
		client.Name,
		client.Website,
		client.Industry,
		client.Notes,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
}

// GetClientByID retrieves a client by ID.
func (d *DB) GetClientByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`

	var c models.Client
	err := d.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Website, &c.Industry, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListClients retrieves all clients ordered by name.
func (d *DB) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := d.Pool.Query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Website, &c.Industry, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
