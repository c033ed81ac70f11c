package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spacesedan/ideiamap/internal/models"
)

const annotatedIdeasSchema = `
CREATE TABLE IF NOT EXISTS annotated_ideas (
    id            UUID PRIMARY KEY,
    text          TEXT NOT NULL,
    source        TEXT NOT NULL,
    sentiment     TEXT NOT NULL,
    confidence    DOUBLE PRECISION NOT NULL,
    token_count   INTEGER NOT NULL,
    stars         SMALLINT NOT NULL,
    neighborhood  TEXT,
    latitude      DOUBLE PRECISION,
    longitude     DOUBLE PRECISION,
    created_at    TIMESTAMPTZ NOT NULL
)`

const postgresColumns = 11

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type PostgresSink struct {
	db Execer
}

func NewPostgresSink(db Execer) *PostgresSink {
	return &PostgresSink{db: db}
}

func (p *PostgresSink) Name() string {
	return "postgres"
}

func (p *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, annotatedIdeasSchema); err != nil {
		return fmt.Errorf("failed to create annotated_ideas table: %w", err)
	}
	return nil
}

// Write batch inserts records. Records already exported are skipped.
func (p *PostgresSink) Write(ctx context.Context, records []models.AnnotatedIdea) error {
	if len(records) == 0 {
		return nil
	}

	query, values := buildInsert(records)
	if _, err := p.db.Exec(ctx, query, values...); err != nil {
		return fmt.Errorf("failed to insert annotated ideas: %w", err)
	}
	return nil
}

func buildInsert(records []models.AnnotatedIdea) (string, []any) {
	values := make([]any, 0, len(records)*postgresColumns)
	placeholderParts := make([]string, 0, len(records))

	for i, record := range records {
		offset := i * postgresColumns
		placeholders := make([]string, postgresColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", offset+j+1)
		}
		placeholderParts = append(placeholderParts, "("+strings.Join(placeholders, ", ")+")")

		var neighborhood, lat, lon any
		if record.Neighborhood != nil {
			neighborhood = *record.Neighborhood
		}
		if record.Location.Valid {
			lat, lon = record.Location.Latitude, record.Location.Longitude
		}

		values = append(values,
			record.ID,
			record.Idea.Text,
			string(record.Idea.Source),
			string(record.Sentiment.Label),
			record.Sentiment.Confidence,
			record.Sentiment.TokenCount,
			record.Sentiment.Stars,
			neighborhood,
			lat,
			lon,
			record.CreatedAt,
		)
	}

	query := `INSERT INTO annotated_ideas (id, text, source, sentiment, confidence, token_count, stars, neighborhood, latitude, longitude, created_at) VALUES ` +
		strings.Join(placeholderParts, ", ") +
		` ON CONFLICT (id) DO NOTHING`

	return query, values
}
