// Package keywords merges provider keyword data with generated annotations
// and groups keywords into naive clusters.
package keywords

import (
	"errors"
	"math"
	"sort"
	"strings"

	"agencydesk/internal/models"
)

// ErrNotAnArray is returned when an annotation document is not a JSON array.
var ErrNotAnArray = errors.New("annotations are not a JSON array")

// Dedupe drops empty keywords and case-insensitive duplicates. The first occurrence wins.
func Dedupe(ideas []models.KeywordIdea) []models.KeywordIdea {
	seen := make(map[string]struct{}, len(ideas))
	out := make([]models.KeywordIdea, 0, len(ideas))
	for _, idea := range ideas {
		idea.Keyword = strings.TrimSpace(idea.Keyword)
		key := strings.ToLower(idea.Keyword)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, idea)
	}
	return out
}

// Batches splits keywords into consecutive groups of at most size.
func Batches(keywords []string, size int) [][]string {
	if size <= 0 {
		size = len(keywords)
	}
	var out [][]string
	for start := 0; start < len(keywords); start += size {
		end := min(start+size, len(keywords))
		out = append(out, keywords[start:end])
	}
	return out
}

// Texts returns the keyword strings of ideas, in order.
func Texts(ideas []models.KeywordIdea) []string {
	out := make([]string, len(ideas))
	for i, idea := range ideas {
		out[i] = idea.Keyword
	}
	return out
}

// AnnotationsFrom extracts annotation records from a decoded JSON document.
// The document must be an array, or an object holding the array under "keywords".
// Array elements that are not objects are skipped.
func AnnotationsFrom(doc any) ([]map[string]any, error) {
	if obj, ok := doc.(map[string]any); ok {
		doc = obj["keywords"]
	}
	items, ok := doc.([]any)
	if !ok {
		return nil, ErrNotAnArray
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if rec, ok := item.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Merge overlays annotations onto base. Every base record is kept, in order.
// Annotations are matched by case-insensitive keyword; unmatched annotations are ignored.
// Only fields that are present and of the expected type overwrite the base value.
func Merge(base []models.KeywordIdea, annotations []map[string]any) []models.KeywordIdea {
	byKeyword := make(map[string]map[string]any, len(annotations))
	for _, rec := range annotations {
		kw, ok := rec["keyword"].(string)
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(kw))
		if _, exists := byKeyword[key]; !exists {
			byKeyword[key] = rec
		}
	}

	out := make([]models.KeywordIdea, len(base))
	for i, idea := range base {
		if rec, ok := byKeyword[strings.ToLower(strings.TrimSpace(idea.Keyword))]; ok {
			applyAnnotation(&idea, rec)
		}
		out[i] = idea
	}
	return out
}

func applyAnnotation(idea *models.KeywordIdea, rec map[string]any) {
	if v, ok := number(rec["searchVolume"]); ok {
		// Volumes outside int64, negatives included, are not well-typed.
		if r := math.Round(v); r >= 0 && r < math.MaxInt64 {
			n := int64(r)
			idea.SearchVolume = &n
		}
	}
	if v, ok := number(rec["cpc"]); ok {
		idea.CPC = &v
	}
	if v, ok := number(rec["competitionIndex"]); ok {
		idea.CompetitionIndex = &v
	}
	if v, ok := number(rec["difficultyScore"]); ok {
		idea.DifficultyScore = &v
	}
	if v, ok := rec["intent"].(string); ok {
		if intent := strings.ToLower(strings.TrimSpace(v)); models.ValidIntent(intent) {
			idea.Intent = &intent
		}
	}
	if v, ok := rec["clusterLabel"].(string); ok && strings.TrimSpace(v) != "" {
		label := strings.TrimSpace(v)
		idea.ClusterLabel = &label
	}
	if v, ok := number(rec["priorityScore"]); ok {
		idea.PriorityScore = &v
	}
	if v, ok := rec["notes"].(string); ok {
		idea.Notes = &v
	}
}

func number(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SortByPriority orders ideas by descending priority score (absent counts as zero)
// and truncates to limit. Ties keep their input order. A limit <= 0 keeps everything.
func SortByPriority(ideas []models.KeywordIdea, limit int) []models.KeywordIdea {
	out := make([]models.KeywordIdea, len(ideas))
	copy(out, ideas)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority() > out[j].Priority()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Enrich merges annotations onto base, sorts by priority and truncates to limit.
func Enrich(base []models.KeywordIdea, annotations []map[string]any, limit int) []models.KeywordIdea {
	return SortByPriority(Merge(base, annotations), limit)
}
