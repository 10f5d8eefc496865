package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"agencydesk/internal/db"
	"agencydesk/internal/models"
)

// memStore is an in-memory Store.
type memStore struct {
	mu      sync.Mutex
	clients map[uuid.UUID]models.Client
	assets  []models.ClientAsset
	audits  []models.Audit
}

func newMemStore() *memStore {
	return &memStore{clients: map[uuid.UUID]models.Client{}}
}

func (m *memStore) CreateClient(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.clients[c.ID] = *c
	return nil
}

func (m *memStore) GetClientByID(_ context.Context, id uuid.UUID) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clients[id]
	if !ok {
		return nil, db.ErrClientNotFound
	}
	return &c, nil
}

func (m *memStore) ListClients(context.Context) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Client{}
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *memStore) checkClient(id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, ok := m.clients[*id]; !ok {
		return db.ErrUnknownClient
	}
	return nil
}

func (m *memStore) CreateClientAsset(_ context.Context, a *models.ClientAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkClient(a.ClientID); err != nil {
		return err
	}
	a.ID = uuid.New()
	if len(a.Payload) == 0 {
		a.Payload = json.RawMessage(`{}`)
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.assets = append(m.assets, *a)
	return nil
}

func (m *memStore) GetClientAssetByID(_ context.Context, id uuid.UUID) (*models.ClientAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assets {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, db.ErrAssetNotFound
}

func (m *memStore) ListClientAssets(_ context.Context, f models.AssetFilter) ([]models.ClientAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ClientAsset{}
	for i := len(m.assets) - 1; i >= 0; i-- {
		a := m.assets[i]
		if f.ClientID != nil && (a.ClientID == nil || *a.ClientID != *f.ClientID) {
			continue
		}
		if f.Type != nil && a.Type != *f.Type {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) DeleteClientAsset(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, a := range m.assets {
		if a.ID == id {
			m.assets = append(m.assets[:i], m.assets[i+1:]...)
			return nil
		}
	}
	return db.ErrAssetNotFound
}

func (m *memStore) CreateAudit(_ context.Context, a *models.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkClient(a.ClientID); err != nil {
		return err
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.audits = append(m.audits, *a)
	return nil
}

func (m *memStore) GetAuditByID(_ context.Context, id uuid.UUID) (*models.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.audits {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, db.ErrAuditNotFound
}

func (m *memStore) ListAudits(_ context.Context, clientID *uuid.UUID, limit int) ([]models.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Audit{}
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		a := m.audits[i]
		if clientID != nil && (a.ClientID == nil || *a.ClientID != *clientID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// do sends a request with an optional JSON body and returns status and body.
func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
