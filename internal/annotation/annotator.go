package annotation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/monitoring"
)

type SentimentClassifier interface {
	Classify(ctx context.Context, text string) models.SentimentResult
}

type NeighborhoodExtractor interface {
	Extract(text string) (string, bool)
}

type LocationResolver interface {
	Resolve(ctx context.Context, neighborhood string) models.GeoPoint
}

// ProgressFunc is called after each item of a batch with the number of
// items completed so far.
type ProgressFunc func(done, total int)

type Annotator struct {
	classifier SentimentClassifier
	extractor  NeighborhoodExtractor
	resolver   LocationResolver
	now        func() time.Time
}

func NewAnnotator(classifier SentimentClassifier, extractor NeighborhoodExtractor, resolver LocationResolver) *Annotator {
	return &Annotator{
		classifier: classifier,
		extractor:  extractor,
		resolver:   resolver,
		now:        time.Now,
	}
}

// Annotate turns one idea into a complete record. Sub-steps report their
// own failures as values, so there is nothing to return besides the record.
func (a *Annotator) Annotate(ctx context.Context, idea models.Idea) models.AnnotatedIdea {
	record := models.AnnotatedIdea{
		ID:        uuid.New(),
		Idea:      idea,
		Sentiment: a.classifier.Classify(ctx, idea.Text),
		Location:  models.AbsentGeoPoint(),
		CreatedAt: a.now().UTC(),
	}

	if name, ok := a.extractor.Extract(idea.Text); ok {
		record.Neighborhood = &name
		record.Location = a.resolver.Resolve(ctx, name)
	}

	monitoring.IdeasAnnotatedTotal.
		WithLabelValues(string(record.Sentiment.Label), string(idea.Source)).
		Inc()

	slog.Debug("[Annotator] Idea annotated",
		slog.String("id", record.ID.String()),
		slog.String("sentiment", string(record.Sentiment.Label)),
		slog.String("neighborhood", record.NeighborhoodName()),
		slog.Bool("located", record.Location.Valid))

	return record
}

// AnnotateBatch annotates ideas one at a time, in input order.
func (a *Annotator) AnnotateBatch(ctx context.Context, ideas []models.Idea, progress ProgressFunc) []models.AnnotatedIdea {
	start := time.Now()
	records := make([]models.AnnotatedIdea, 0, len(ideas))

	for i, idea := range ideas {
		records = append(records, a.Annotate(ctx, idea))
		if progress != nil {
			progress(i+1, len(ideas))
		}
	}

	slog.Info("[Annotator] Batch annotated",
		slog.Int("batch_size", len(ideas)),
		slog.Duration("elapsed", time.Since(start)))

	return records
}
