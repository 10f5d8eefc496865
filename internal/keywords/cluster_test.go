package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agencydesk/internal/models"
)

func TestClusterLabel(t *testing.T) {
	tests := []struct {
		keyword string
		want    string
	}{
		{"Best Running Shoes 2024", "best running"},
		{"shoes", "shoes"},
		{"  Trail   Shoes  ", "trail shoes"},
		{"", ""},
		{"   ", "   "},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClusterLabel(tt.keyword), "ClusterLabel(%q)", tt.keyword)
	}
}

func TestCluster_GroupsByLeadingTokens(t *testing.T) {
	ideas := []models.KeywordIdea{
		{Keyword: "Best Running Shoes", DifficultyScore: ptr(40.0)},
		{Keyword: "seo audit"},
		{Keyword: "best running socks", DifficultyScore: ptr(60.0)},
		{Keyword: "BEST RUNNING apps", DifficultyScore: ptr(20.0)},
	}

	clusters := Cluster(ideas)
	require.Len(t, clusters, 2)

	assert.Equal(t, "best running", clusters[0].Label)
	assert.Equal(t, []string{"Best Running Shoes", "best running socks", "BEST RUNNING apps"}, clusters[0].Keywords)
	assert.Equal(t, "seo audit", clusters[1].Label)
	assert.Equal(t, 0.0, clusters[1].AverageDifficulty)
}

// The average is (previous + new) / 2 per insertion, so it depends on order.
func TestCluster_AverageIsOrderDependent(t *testing.T) {
	forward := Cluster([]models.KeywordIdea{
		{Keyword: "x a", DifficultyScore: ptr(10.0)},
		{Keyword: "x a b", DifficultyScore: ptr(20.0)},
		{Keyword: "x a c", DifficultyScore: ptr(90.0)},
	})
	reverse := Cluster([]models.KeywordIdea{
		{Keyword: "x a c", DifficultyScore: ptr(90.0)},
		{Keyword: "x a b", DifficultyScore: ptr(20.0)},
		{Keyword: "x a", DifficultyScore: ptr(10.0)},
	})

	require.Len(t, forward, 1)
	require.Len(t, reverse, 1)
	// ((10 + 20) / 2 + 90) / 2
	assert.Equal(t, 52.5, forward[0].AverageDifficulty)
	// ((90 + 20) / 2 + 10) / 2
	assert.Equal(t, 32.5, reverse[0].AverageDifficulty)
}

func TestCluster_Empty(t *testing.T) {
	assert.Equal(t, []models.KeywordCluster{}, Cluster(nil))
}

func TestApplyLabels(t *testing.T) {
	clusters := []models.KeywordCluster{{Label: "best running"}, {Label: "seo audit"}}
	got := ApplyLabels(clusters, map[string]string{"best running": " Running Gear ", "seo audit": ""})
	assert.Equal(t, "Running Gear", got[0].Label)
	assert.Equal(t, "seo audit", got[1].Label)
	assert.Equal(t, "best running", clusters[0].Label)
}
