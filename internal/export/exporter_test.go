package export

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideiamap/internal/models"
)

type recordingSink struct {
	name    string
	batches [][]models.AnnotatedIdea
	failOn  int
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Write(_ context.Context, records []models.AnnotatedIdea) error {
	r.batches = append(r.batches, records)
	if r.failOn > 0 && len(r.batches) == r.failOn {
		return errors.New("sink unavailable")
	}
	return nil
}

func annotated(n int) []models.AnnotatedIdea {
	out := make([]models.AnnotatedIdea, n)
	for i := range out {
		out[i] = models.AnnotatedIdea{ID: uuid.New(), Idea: models.NewBatchIdea("ideia")}
	}
	return out
}

func TestExportBatchesRecords(t *testing.T) {
	sink := &recordingSink{name: "memory"}
	exporter := NewExporter(2, sink)
	records := annotated(5)

	require.NoError(t, exporter.Export(context.Background(), records))

	require.Len(t, sink.batches, 3)
	assert.Len(t, sink.batches[0], 2)
	assert.Len(t, sink.batches[1], 2)
	assert.Len(t, sink.batches[2], 1)
	assert.Equal(t, records[4].ID, sink.batches[2][0].ID)
}

func TestExportContinuesPastFailingSink(t *testing.T) {
	failing := &recordingSink{name: "broken", failOn: 1}
	healthy := &recordingSink{name: "ok"}
	exporter := NewExporter(10, failing, healthy)

	err := exporter.Export(context.Background(), annotated(3))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Len(t, failing.batches, 1)
	require.Len(t, healthy.batches, 1)
	assert.Len(t, healthy.batches[0], 3)
}

func TestExportNoop(t *testing.T) {
	sink := &recordingSink{name: "memory"}

	require.NoError(t, NewExporter(0).Export(context.Background(), annotated(2)))
	require.NoError(t, NewExporter(0, sink).Export(context.Background(), nil))
	assert.Empty(t, sink.batches)
}

func TestSinks(t *testing.T) {
	exporter := NewExporter(0, &recordingSink{name: "postgres"}, &recordingSink{name: "kafka"})
	assert.Equal(t, []string{"postgres", "kafka"}, exporter.Sinks())
}
