package sentiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/tokenize"
)

func TestConvertMarkdownToText(t *testing.T) {
	input := "**Great** idea, see [the plan](https://example.com/plan) or https://example.com"
	assert.Equal(t, "Great idea, see the plan or", ConvertMarkdownToText(input))
}

func TestVaderModelPredict(t *testing.T) {
	model := NewVaderModel()
	classifier := NewClassifier(model, tokenize.Whitespace{})

	positive := classifier.Classify(context.Background(), "I love this wonderful, amazing and beautiful park!")
	assert.Equal(t, models.SentimentPositive, positive.Label)
	assert.Greater(t, positive.Confidence, 0.0)

	negative := classifier.Classify(context.Background(), "This is a terrible, horrible and awful disaster.")
	assert.Equal(t, models.SentimentNegative, negative.Label)
}

func TestVaderModelRejectsEmptyMarkup(t *testing.T) {
	_, _, err := NewVaderModel().Predict(context.Background(), "https://example.com")
	require.Error(t, err)
}

func TestStarsForCompound(t *testing.T) {
	assert.Equal(t, 1, starsForCompound(-0.9))
	assert.Equal(t, 2, starsForCompound(-0.3))
	assert.Equal(t, 3, starsForCompound(0))
	assert.Equal(t, 4, starsForCompound(0.4))
	assert.Equal(t, 5, starsForCompound(0.95))
}
