package sentiment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/tokenize"
)

type fakeModel struct {
	label string
	score float64
	err   error
	panic bool

	calls []string
}

func (f *fakeModel) Predict(_ context.Context, text string) (string, float64, error) {
	f.calls = append(f.calls, text)
	if f.panic {
		panic("model exploded")
	}
	return f.label, f.score, f.err
}

type failingTokenizer struct{}

func (failingTokenizer) Truncate(string, int) (string, int, error) {
	return "", 0, errors.New("tokenizer broken")
}

func TestClassify(t *testing.T) {
	model := &fakeModel{label: "4 stars", score: 0.81}
	classifier := NewClassifier(model, nil)

	result := classifier.Classify(context.Background(), "Mais ciclovias no Centro")

	assert.Equal(t, models.SentimentPositive, result.Label)
	assert.InDelta(t, 0.81, result.Confidence, 1e-9)
	assert.Equal(t, 4, result.TokenCount)
	assert.Equal(t, 4, result.Stars)
	require.Len(t, model.calls, 1)
}

func TestClassifyIsTotal(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		model     *fakeModel
		tokenizer Tokenizer
		expected  models.SentimentLabel
	}{
		{"empty text", "", &fakeModel{label: "5 stars"}, nil, models.SentimentError},
		{"blank text", "  \n\t ", &fakeModel{label: "5 stars"}, nil, models.SentimentError},
		{"invalid utf8", "ab\xffcd", &fakeModel{label: "5 stars"}, nil, models.SentimentError},
		{"model error", "texto", &fakeModel{err: errors.New("boom")}, nil, models.SentimentError},
		{"model panic", "texto", &fakeModel{panic: true}, nil, models.SentimentError},
		{"tokenizer error", "texto", &fakeModel{label: "5 stars"}, failingTokenizer{}, models.SentimentError},
		{"unparseable label", "texto", &fakeModel{label: "POSITIVE"}, nil, models.SentimentUndetermined},
		{"out of range digit", "texto", &fakeModel{label: "9 stars"}, nil, models.SentimentUndetermined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewClassifier(tt.model, tt.tokenizer)

			var result models.SentimentResult
			require.NotPanics(t, func() {
				result = classifier.Classify(context.Background(), tt.text)
			})

			assert.Equal(t, tt.expected, result.Label)
			assert.Zero(t, result.Confidence)
			assert.Zero(t, result.TokenCount)
		})
	}
}

func TestClassifySkipsModelForEmptyText(t *testing.T) {
	model := &fakeModel{label: "5 stars"}
	NewClassifier(model, nil).Classify(context.Background(), "")
	assert.Empty(t, model.calls)
}

func TestClassifyTruncatesLongText(t *testing.T) {
	text := strings.Repeat("palavra ", 2000)
	model := &fakeModel{label: "3 stars", score: 0.5}

	result := NewClassifier(model, nil).Classify(context.Background(), text)

	assert.Equal(t, models.SentimentNeutral, result.Label)
	assert.Equal(t, MaxTokens, result.TokenCount)
	require.Len(t, model.calls, 1)

	// the model sees exactly the truncated span
	_, count, err := tokenize.Whitespace{}.Truncate(model.calls[0], MaxTokens*2)
	require.NoError(t, err)
	assert.Equal(t, result.TokenCount, count)
}

func TestHealthCheck(t *testing.T) {
	assert.True(t, NewClassifier(&fakeModel{label: "5 stars", score: 1}, nil).HealthCheck(context.Background()))
	assert.False(t, NewClassifier(&fakeModel{err: errors.New("down")}, nil).HealthCheck(context.Background()))
}
