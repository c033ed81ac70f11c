package sentiment

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/ideiamap/internal/models"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	plainText := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(plainText), " ")
}

// VaderModel is the offline lexicon scorer. The compound score is bucketed
// into a star rating so it reads like the transformer models.
type VaderModel struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderModel() *VaderModel {
	return &VaderModel{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderModel) Predict(_ context.Context, text string) (string, float64, error) {
	plainText := ConvertMarkdownToText(text)
	if plainText == "" {
		return "", 0, fmt.Errorf("no text left after markdown cleanup")
	}

	scores := v.analyzer.PolarityScores(plainText)
	stars := starsForCompound(scores.Compound)

	var confidence float64
	switch SentimentForStars(stars) {
	case models.SentimentPositive:
		confidence = scores.Positive
	case models.SentimentNegative:
		confidence = scores.Negative
	default:
		confidence = scores.Neutral
	}

	return starsLabel(stars), confidence, nil
}

func starsForCompound(score float64) int {
	switch {
	case score <= -0.6:
		return 1
	case score <= -0.2:
		return 2
	case score < 0.2:
		return 3
	case score < 0.6:
		return 4
	default:
		return 5
	}
}
