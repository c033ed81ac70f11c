package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/monitoring"
	"github.com/spacesedan/ideiamap/internal/utils"
)

// Sink receives annotated records outside the session, e.g. a table or topic.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []models.AnnotatedIdea) error
}

type Exporter struct {
	sinks     []Sink
	batchSize int
}

func NewExporter(batchSize int, sinks ...Sink) *Exporter {
	if batchSize <= 0 {
		batchSize = utils.BATCH_SIZE
	}
	return &Exporter{sinks: sinks, batchSize: batchSize}
}

func (e *Exporter) Sinks() []string {
	names := make([]string, len(e.sinks))
	for i, sink := range e.sinks {
		names[i] = sink.Name()
	}
	return names
}

// Export writes records to every sink in batches. A failing sink does not
// stop the others; all failures are joined into the returned error.
func (e *Exporter) Export(ctx context.Context, records []models.AnnotatedIdea) error {
	if len(e.sinks) == 0 || len(records) == 0 {
		return nil
	}

	var errs []error
	for _, sink := range e.sinks {
		if err := e.exportTo(ctx, sink, records); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (e *Exporter) exportTo(ctx context.Context, sink Sink, records []models.AnnotatedIdea) error {
	start := time.Now()
	buffer := utils.NewBatchBuffer[models.AnnotatedIdea](e.batchSize)
	written := 0

	flush := func() error {
		if !buffer.HasData() {
			return nil
		}
		buffer.LogBatchProcessing(sink.Name())
		batch := buffer.GetAndClear()
		if err := sink.Write(ctx, batch); err != nil {
			monitoring.ExportRecordsTotal.WithLabelValues(sink.Name(), "failed").Add(float64(len(batch)))
			return err
		}
		monitoring.ExportRecordsTotal.WithLabelValues(sink.Name(), "ok").Add(float64(len(batch)))
		written += len(batch)
		return nil
	}

	for _, record := range records {
		if buffer.Add(record) {
			if err := flush(); err != nil {
				slog.Error("[Exporter] Sink write failed",
					slog.String("sink", sink.Name()),
					slog.Int("written", written),
					slog.String("error", err.Error()))
				return err
			}
		}
	}
	if err := flush(); err != nil {
		slog.Error("[Exporter] Sink write failed",
			slog.String("sink", sink.Name()),
			slog.Int("written", written),
			slog.String("error", err.Error()))
		return err
	}

	slog.Info("[Exporter] Records exported",
		slog.String("sink", sink.Name()),
		slog.Int("records", written),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}
