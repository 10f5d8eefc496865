package keywords

import (
	"strings"

	"agencydesk/internal/models"
)

// ClusterLabel returns the grouping key for keyword: its first one or two
// lower-cased whitespace-delimited tokens, or the whole keyword when it has none.
func ClusterLabel(keyword string) string {
	lower := strings.ToLower(keyword)
	tokens := strings.Fields(lower)
	if len(tokens) == 0 {
		return lower
	}
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return strings.Join(tokens, " ")
}

// Cluster groups ideas by ClusterLabel. Clusters and their keyword lists keep encounter order.
//
// The average difficulty is updated as (average + value) / 2 on every insertion after
// the first, so later keywords weigh more than earlier ones. A missing difficulty counts as zero.
func Cluster(ideas []models.KeywordIdea) []models.KeywordCluster {
	index := make(map[string]int)
	var clusters []models.KeywordCluster

	for _, idea := range ideas {
		var difficulty float64
		if idea.DifficultyScore != nil {
			difficulty = *idea.DifficultyScore
		}

		label := ClusterLabel(idea.Keyword)
		i, ok := index[label]
		if !ok {
			index[label] = len(clusters)
			clusters = append(clusters, models.KeywordCluster{
				Label:             label,
				Keywords:          []string{idea.Keyword},
				AverageDifficulty: difficulty,
			})
			continue
		}

		c := &clusters[i]
		c.Keywords = append(c.Keywords, idea.Keyword)
		c.AverageDifficulty = (c.AverageDifficulty + difficulty) / 2
	}

	if clusters == nil {
		clusters = []models.KeywordCluster{}
	}
	return clusters
}

// ApplyLabels renames clusters using a map from naive label to display label.
func ApplyLabels(clusters []models.KeywordCluster, labels map[string]string) []models.KeywordCluster {
	out := make([]models.KeywordCluster, len(clusters))
	for i, c := range clusters {
		if l, ok := labels[c.Label]; ok && strings.TrimSpace(l) != "" {
			c.Label = strings.TrimSpace(l)
		}
		out[i] = c
	}
	return out
}
