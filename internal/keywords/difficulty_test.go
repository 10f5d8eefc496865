package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"agencydesk/internal/models"
)

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, 0.0, EstimateDifficulty(0, 0))
	assert.Equal(t, 70.0, EstimateDifficulty(100, 0))
	assert.Equal(t, 100.0, EstimateDifficulty(150, 1_000_000))
	assert.Equal(t, 47.0, EstimateDifficulty(50, 99))
}

func TestFillDifficulty(t *testing.T) {
	ideas := []models.KeywordIdea{
		{Keyword: "has", CompetitionIndex: ptr(100.0), DifficultyScore: ptr(5.0)},
		{Keyword: "derive", CompetitionIndex: ptr(100.0)},
		{Keyword: "none"},
	}
	FillDifficulty(ideas)
	assert.Equal(t, 5.0, *ideas[0].DifficultyScore)
	assert.Equal(t, 70.0, *ideas[1].DifficultyScore)
	assert.Nil(t, ideas[2].DifficultyScore)
}
