package sentiment

import (
	"regexp"
	"strconv"

	"github.com/spacesedan/ideiamap/internal/models"
)

var starPattern = regexp.MustCompile(`(?i)(\d)\s*stars?\b`)

// ParseStars extracts the 1-5 rating from a classifier label such as "4 stars".
func ParseStars(label string) (int, bool) {
	match := starPattern.FindStringSubmatch(label)
	if match == nil {
		return 0, false
	}
	stars, err := strconv.Atoi(match[1])
	if err != nil || stars < 1 || stars > 5 {
		return 0, false
	}
	return stars, true
}

// SentimentForStars maps 1-2 to Negative, 3 to Neutral and 4-5 to Positive.
func SentimentForStars(stars int) models.SentimentLabel {
	switch {
	case stars >= 1 && stars <= 2:
		return models.SentimentNegative
	case stars == 3:
		return models.SentimentNeutral
	case stars >= 4 && stars <= 5:
		return models.SentimentPositive
	default:
		return models.SentimentUndetermined
	}
}

func starsLabel(stars int) string {
	if stars == 1 {
		return "1 star"
	}
	return strconv.Itoa(stars) + " stars"
}
