package models

// Search intent values a keyword annotation may carry.
const (
	IntentInformational = "informational"
	IntentNavigational  = "navigational"
	IntentCommercial    = "commercial"
	IntentTransactional = "transactional"
)

// ValidIntent reports whether s is a known search intent.
func ValidIntent(s string) bool {
	switch s {
	case IntentInformational, IntentNavigational, IntentCommercial, IntentTransactional:
		return true
	}
	return false
}

// KeywordIdea is a keyword with provider metrics and optional generated annotations.
type KeywordIdea struct {
	Keyword          string   `json:"keyword"`
	SearchVolume     *int64   `json:"searchVolume,omitempty"`
	CPC              *float64 `json:"cpc,omitempty"`
	CompetitionIndex *float64 `json:"competitionIndex,omitempty"`
	DifficultyScore  *float64 `json:"difficultyScore,omitempty"`
	Intent           *string  `json:"intent,omitempty"`
	ClusterLabel     *string  `json:"clusterLabel,omitempty"`
	PriorityScore    *float64 `json:"priorityScore,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}

// Priority returns the priority score, treating an absent score as zero.
func (k KeywordIdea) Priority() float64 {
	if k.PriorityScore == nil {
		return 0
	}
	return *k.PriorityScore
}

// KeywordMetrics are volume and cost figures for one keyword.
type KeywordMetrics struct {
	Keyword         string   `json:"keyword"`
	SearchVolume    *int64   `json:"searchVolume"`
	CPC             *float64 `json:"cpc"`
	Competition     *float64 `json:"competition"`
	DifficultyScore *float64 `json:"difficultyScore"`
	Trend           []int64  `json:"trend"`
}

// KeywordCluster groups keywords sharing a leading token prefix.
type KeywordCluster struct {
	Label             string   `json:"label"`
	Keywords          []string `json:"keywords"`
	AverageDifficulty float64  `json:"averageDifficulty"`
}
