package dataforseo

import (
	"context"
	"strings"

	"agencydesk/internal/models"
)

const (
	keywordIdeasPath   = "/v3/dataforseo_labs/google/keyword_ideas/live"
	searchVolumePath   = "/v3/keywords_data/google_ads/search_volume/live"
	defaultLocation    = "United States"
	defaultLanguage    = "English"
	maxMetricsKeywords = 1000
)

// Locale selects the market a query runs against. Empty fields use the defaults.
type Locale struct {
	Location string
	Language string
}

func (l Locale) location() string {
	if strings.TrimSpace(l.Location) == "" {
		return defaultLocation
	}
	return l.Location
}

func (l Locale) language() string {
	if strings.TrimSpace(l.Language) == "" {
		return defaultLanguage
	}
	return l.Language
}

type monthlySearch struct {
	Year         int    `json:"year"`
	Month        int    `json:"month"`
	SearchVolume *int64 `json:"search_volume"`
}

type ideasResult struct {
	Items []struct {
		Keyword     string `json:"keyword"`
		KeywordInfo struct {
			SearchVolume    *int64          `json:"search_volume"`
			CPC             *float64        `json:"cpc"`
			Competition     *float64        `json:"competition"`
			MonthlySearches []monthlySearch `json:"monthly_searches"`
		} `json:"keyword_info"`
		KeywordProperties struct {
			KeywordDifficulty *float64 `json:"keyword_difficulty"`
		} `json:"keyword_properties"`
	} `json:"items"`
}

// KeywordIdeas returns keywords related to seed with their metrics.
func (c *Client) KeywordIdeas(ctx context.Context, seed string, locale Locale, limit int) ([]models.KeywordIdea, error) {
	task := map[string]any{
		"keywords":      []string{seed},
		"location_name": locale.location(),
		"language_name": locale.language(),
	}
	if limit > 0 {
		task["limit"] = limit
	}

	var results []ideasResult
	if err := c.post(ctx, keywordIdeasPath, task, &results); err != nil {
		return nil, err
	}

	ideas := []models.KeywordIdea{}
	for _, r := range results {
		for _, item := range r.Items {
			idea := models.KeywordIdea{
				Keyword:         item.Keyword,
				SearchVolume:    item.KeywordInfo.SearchVolume,
				CPC:             item.KeywordInfo.CPC,
				DifficultyScore: item.KeywordProperties.KeywordDifficulty,
			}
			// Labels reports competition as 0..1.
			if comp := item.KeywordInfo.Competition; comp != nil {
				idx := *comp * 100
				idea.CompetitionIndex = &idx
			}
			ideas = append(ideas, idea)
		}
	}
	return ideas, nil
}

type searchVolumeResult struct {
	Keyword          string          `json:"keyword"`
	SearchVolume     *int64          `json:"search_volume"`
	CPC              *float64        `json:"cpc"`
	CompetitionIndex *float64        `json:"competition_index"`
	MonthlySearches  []monthlySearch `json:"monthly_searches"`
}

// KeywordMetrics returns volume, cost and competition for each keyword.
// The trend is the monthly search volume, oldest first.
func (c *Client) KeywordMetrics(ctx context.Context, keywords []string, locale Locale) ([]models.KeywordMetrics, error) {
	if len(keywords) > maxMetricsKeywords {
		keywords = keywords[:maxMetricsKeywords]
	}
	task := map[string]any{
		"keywords":      keywords,
		"location_name": locale.location(),
		"language_name": locale.language(),
	}

	var results []searchVolumeResult
	if err := c.post(ctx, searchVolumePath, task, &results); err != nil {
		return nil, err
	}

	out := make([]models.KeywordMetrics, 0, len(results))
	for _, r := range results {
		m := models.KeywordMetrics{
			Keyword:      r.Keyword,
			SearchVolume: r.SearchVolume,
			CPC:          r.CPC,
			Competition:  r.CompetitionIndex,
			Trend:        trend(r.MonthlySearches),
		}
		out = append(out, m)
	}
	return out, nil
}

// trend orders monthly searches oldest first. The API lists newest first.
func trend(months []monthlySearch) []int64 {
	out := make([]int64, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		var v int64
		if months[i].SearchVolume != nil {
			v = *months[i].SearchVolume
		}
		out = append(out, v)
	}
	return out
}
