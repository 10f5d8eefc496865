package metrics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (f fakeCounter) CountAssetsByType(context.Context) (map[string]int64, error) {
	return f.counts, f.err
}

func TestRecordFunctions(t *testing.T) {
	before := testutil.ToFloat64(providerCalls.WithLabelValues("openai", "error"))
	RecordProviderCall("openai", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(providerCalls.WithLabelValues("openai", "error")))

	before = testutil.ToFloat64(demoAssets.WithLabelValues("true"))
	RecordDemoAsset(true)
	assert.Equal(t, before+1, testutil.ToFloat64(demoAssets.WithLabelValues("true")))

	before = testutil.ToFloat64(rateLimited.WithLabelValues("keywords"))
	RecordRateLimited("keywords")
	assert.Equal(t, before+1, testutil.ToFloat64(rateLimited.WithLabelValues("keywords")))

	before = testutil.ToFloat64(parseFailures.WithLabelValues("press-release"))
	RecordParseFailure("press-release")
	assert.Equal(t, before+1, testutil.ToFloat64(parseFailures.WithLabelValues("press-release")))
}

func TestAssetCollector(t *testing.T) {
	c := &AssetCollector{
		counter: fakeCounter{counts: map[string]int64{"audit": 3, "keywords": 1}},
		logger:  zap.NewNop(),
	}

	expected := `
# HELP agencydesk_client_assets Stored client assets by type
# TYPE agencydesk_client_assets gauge
agencydesk_client_assets{type="audit"} 3
agencydesk_client_assets{type="keywords"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestAssetCollector_StoreError(t *testing.T) {
	c := &AssetCollector{counter: fakeCounter{err: errors.New("down")}, logger: zap.NewNop()}
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}

func TestInit_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	Init(reg, fakeCounter{}, zap.NewNop())
	assert.NotPanics(t, func() { Init(reg, fakeCounter{}, zap.NewNop()) })
}
