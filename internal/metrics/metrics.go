// Package metrics exposes Prometheus counters for provider calls, rate limiting,
// demo asset creation and generated JSON parse failures, plus a collector that
// reads stored asset counts on each scrape.
package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	providerCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_provider_calls_total",
		Help: "Text generation provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_rate_limited_total",
		Help: "Requests rejected by the rate limiter by route group",
	}, []string{"group"})

	demoAssets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_demo_assets_total",
		Help: "Demo asset requests by whether an existing asset was reused",
	}, []string{"reused"})

	parseFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_generated_json_failures_total",
		Help: "Generated responses that failed the JSON contract, by mode",
	}, []string{"mode"})

	storedAssetsDesc = prometheus.NewDesc(
		"agencydesk_client_assets",
		"Stored client assets by type",
		[]string{"type"},
		nil,
	)
)

// AssetCounter reports how many client assets are stored per type.
type AssetCounter interface {
	CountAssetsByType(ctx context.Context) (map[string]int64, error)
}

// AssetCollector is a custom collector that queries stored asset counts on each scrape.
type AssetCollector struct {
	counter AssetCounter
	logger  *zap.Logger
}

// Describe sends the metric descriptor to the channel.
func (c *AssetCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- storedAssetsDesc
}

// Collect queries the store and emits one gauge per asset type.
func (c *AssetCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.counter.CountAssetsByType(ctx)
	if err != nil {
		c.logger.Error("failed to collect asset metrics", zap.Error(err))
		return
	}
	for assetType, n := range counts {
		ch <- prometheus.MustNewConstMetric(storedAssetsDesc, prometheus.GaugeValue, float64(n), assetType)
	}
}

var initOnce sync.Once

// Init registers the counters with reg, and the asset collector when counter is non-nil.
// Only the first call has any effect.
func Init(reg prometheus.Registerer, counter AssetCounter, logger *zap.Logger) {
	initOnce.Do(func() {
		reg.MustRegister(providerCalls, rateLimited, demoAssets, parseFailures)
		if counter != nil {
			reg.MustRegister(&AssetCollector{counter: counter, logger: logger})
		}
	})
}

// RecordProviderCall counts one provider call. A nil err is recorded as "ok".
func RecordProviderCall(provider string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerCalls.WithLabelValues(provider, outcome).Inc()
}

// RecordRateLimited counts one rejected request for group.
func RecordRateLimited(group string) {
	rateLimited.WithLabelValues(group).Inc()
}

// RecordDemoAsset counts one demo asset request.
func RecordDemoAsset(reused bool) {
	demoAssets.WithLabelValues(strconv.FormatBool(reused)).Inc()
}

// RecordParseFailure counts one generated response that was not valid JSON.
func RecordParseFailure(mode string) {
	parseFailures.WithLabelValues(mode).Inc()
}
