package demo

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencydesk/internal/models"
)

// memStore keeps demo assets keyed by demo key, mimicking the unique index.
type memStore struct {
	mu      sync.Mutex
	byKey   map[string]models.ClientAsset
	inserts int
	err     error
}

func newMemStore() *memStore {
	return &memStore{byKey: make(map[string]models.ClientAsset)}
}

func (m *memStore) CreateOrReuseDemoAsset(_ context.Context, asset *models.ClientAsset) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if existing, ok := m.byKey[*asset.DemoKey]; ok {
		*asset = existing
		return true, nil
	}
	asset.ID = uuid.New()
	m.byKey[*asset.DemoKey] = *asset
	m.inserts++
	return false, nil
}

func (m *memStore) DeleteDemoAssetsExceptNewest(_ context.Context, demoKey string) (int64, error) {
	return 0, m.err
}

func TestAuditPayload_Deterministic(t *testing.T) {
	first, err := json.Marshal(AuditPayload())
	require.NoError(t, err)
	for range 5 {
		again, err := json.Marshal(AuditPayload())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestAuditPayload_IsValidAuditVariant(t *testing.T) {
	asset, err := Asset()
	require.NoError(t, err)

	payload, err := models.DecodePayload(asset.Type, asset.Payload)
	require.NoError(t, err)

	audit, ok := payload.(*models.AuditPayload)
	require.True(t, ok)
	require.NotNil(t, audit.Meta)
	assert.Equal(t, Key, audit.Meta.DemoKey)
	assert.Equal(t, Key, *asset.DemoKey)

	var fields models.AuditFields
	require.NoError(t, json.Unmarshal(audit.StructuredFields, &fields))
	assert.Equal(t, 6, fields.ImagesMissingAlt)
}

func TestCreateOrReuse_SequentialCalls(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	first, err := svc.CreateOrReuse(ctx)
	require.NoError(t, err)
	assert.False(t, first.Reused)
	assert.NotEqual(t, uuid.Nil, first.AssetID)
	assert.Equal(t, "/assets/"+first.AssetID.String(), first.Redirect)

	second, err := svc.CreateOrReuse(ctx)
	require.NoError(t, err)
	assert.True(t, second.Reused)
	assert.Equal(t, first.AssetID, second.AssetID)
	assert.Equal(t, 1, store.inserts)
}

func TestCreateOrReuse_ConcurrentCallsConverge(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, zap.NewNop())

	const n = 16
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.CreateOrReuse(context.Background())
			if assert.NoError(t, err) {
				ids[i] = resp.AssetID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, store.inserts)
}

func TestCreateOrReuse_StoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("connection refused")

	_, err := NewService(store, zap.NewNop()).CreateOrReuse(context.Background())
	assert.ErrorIs(t, err, store.err)
}
