package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spacesedan/ideiamap/internal/models"
)

func TestParseStars(t *testing.T) {
	tests := []struct {
		label string
		stars int
		ok    bool
	}{
		{"1 star", 1, true},
		{"4 stars", 4, true},
		{"5 Stars", 5, true},
		{"3stars", 3, true},
		{"0 stars", 0, false},
		{"6 stars", 0, false},
		{"LABEL_2", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			stars, ok := ParseStars(tt.label)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.stars, stars)
		})
	}
}

func TestSentimentForStars(t *testing.T) {
	expected := map[int]models.SentimentLabel{
		0: models.SentimentUndetermined,
		1: models.SentimentNegative,
		2: models.SentimentNegative,
		3: models.SentimentNeutral,
		4: models.SentimentPositive,
		5: models.SentimentPositive,
		6: models.SentimentUndetermined,
	}

	for stars, label := range expected {
		assert.Equal(t, label, SentimentForStars(stars), "stars=%d", stars)
		// same input, same output
		assert.Equal(t, SentimentForStars(stars), SentimentForStars(stars))
	}
}

func TestStarsLabelRoundTrip(t *testing.T) {
	for stars := 1; stars <= 5; stars++ {
		parsed, ok := ParseStars(starsLabel(stars))
		assert.True(t, ok)
		assert.Equal(t, stars, parsed)
	}
}
