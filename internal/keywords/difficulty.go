package keywords

import (
	"math"

	"agencydesk/internal/models"
)

// EstimateDifficulty derives a 0-100 difficulty from competition and volume.
// Competition dominates; volume adds up to 30 points on a log scale.
func EstimateDifficulty(competitionIndex float64, searchVolume int64) float64 {
	competition := math.Max(0, math.Min(100, competitionIndex))
	volumeFactor := 0.0
	if searchVolume > 0 {
		volumeFactor = math.Min(1, math.Log10(float64(searchVolume)+1)/5)
	}
	return math.Round(competition*0.7 + volumeFactor*30)
}

// FillDifficulty sets DifficultyScore on ideas that lack one but carry a competition index.
func FillDifficulty(ideas []models.KeywordIdea) {
	for i := range ideas {
		idea := &ideas[i]
		if idea.DifficultyScore != nil || idea.CompetitionIndex == nil {
			continue
		}
		var volume int64
		if idea.SearchVolume != nil {
			volume = *idea.SearchVolume
		}
		d := EstimateDifficulty(*idea.CompetitionIndex, volume)
		idea.DifficultyScore = &d
	}
}
