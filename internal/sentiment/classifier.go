package sentiment

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/tokenize"
)

// MaxTokens is the longest span the multilingual rating models accept.
const MaxTokens = tokenize.ModelMaxTokens

// Model is a text classification capability returning a "<n> stars" label
// and the probability of that label.
type Model interface {
	Predict(ctx context.Context, text string) (label string, score float64, err error)
}

// Tokenizer cuts text down to at most maxTokens subword units and reports
// how many units the returned span holds.
type Tokenizer interface {
	Truncate(text string, maxTokens int) (span string, count int, err error)
}

type Classifier struct {
	model     Model
	tokenizer Tokenizer
	maxTokens int
}

func NewClassifier(model Model, tokenizer Tokenizer) *Classifier {
	if tokenizer == nil {
		tokenizer = tokenize.Whitespace{}
	}
	return &Classifier{
		model:     model,
		tokenizer: tokenizer,
		maxTokens: MaxTokens,
	}
}

// Classify never fails: faults become Error and unreadable ratings become
// Undetermined.
func (c *Classifier) Classify(ctx context.Context, text string) (result models.SentimentResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[Classifier] Recovered from panic during classification",
				slog.Any("panic", r))
			result = models.ErrorSentiment()
		}
	}()

	if strings.TrimSpace(text) == "" {
		slog.Debug("[Classifier] Empty text, skipping model call")
		return models.ErrorSentiment()
	}
	if !utf8.ValidString(text) {
		slog.Warn("[Classifier] Text is not valid UTF-8")
		return models.ErrorSentiment()
	}

	span, count, err := c.tokenizer.Truncate(text, c.maxTokens)
	if err != nil {
		slog.Warn("[Classifier] Tokenization failed",
			slog.String("error", err.Error()))
		return models.ErrorSentiment()
	}

	start := time.Now()
	label, score, err := c.model.Predict(ctx, span)
	if err != nil {
		slog.Warn("[Classifier] Model prediction failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return models.ErrorSentiment()
	}

	stars, ok := ParseStars(label)
	if !ok {
		slog.Warn("[Classifier] Could not parse rating from label",
			slog.String("label", label))
		return models.UndeterminedSentiment()
	}

	return models.SentimentResult{
		Label:      SentimentForStars(stars),
		Confidence: score,
		TokenCount: count,
		Stars:      stars,
	}
}

const healthCheckText = "5 stars"

// HealthCheck runs a probe text through the model. A lazily loaded model is
// loaded by the first probe.
func (c *Classifier) HealthCheck(ctx context.Context) bool {
	return c.Classify(ctx, healthCheckText).Label != models.SentimentError
}

// Reload lets a model or tokenizer whose load failed try again on the next
// classification. Whatever already loaded is kept.
func (c *Classifier) Reload() {
	if r, ok := c.model.(interface{ Reload() }); ok {
		r.Reload()
	}
	if r, ok := c.tokenizer.(interface{ Reload() }); ok {
		r.Reload()
	}
}

// Close releases the model when it holds native resources.
func (c *Classifier) Close() error {
	if closer, ok := c.model.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
