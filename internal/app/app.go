package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spacesedan/ideiamap/config"
	"github.com/spacesedan/ideiamap/internal/annotation"
	"github.com/spacesedan/ideiamap/internal/clients"
	"github.com/spacesedan/ideiamap/internal/clients/kafka_client"
	"github.com/spacesedan/ideiamap/internal/db"
	"github.com/spacesedan/ideiamap/internal/export"
	"github.com/spacesedan/ideiamap/internal/geocode"
	"github.com/spacesedan/ideiamap/internal/neighborhood"
	"github.com/spacesedan/ideiamap/internal/sentiment"
	"github.com/spacesedan/ideiamap/internal/store"
)

const (
	SINK_DYNAMODB = "dynamodb"
	SINK_POSTGRES = "postgres"
	SINK_KAFKA    = "kafka"
)

// App holds the process-wide pipeline: one model, one geocode cache, and
// the sinks records can be exported to.
type App struct {
	Settings   config.Settings
	Classifier *sentiment.Classifier
	Annotator  *annotation.Annotator
	Exporter   *export.Exporter

	closers []func()
}

func New(ctx context.Context, settings config.Settings) (*App, error) {
	a := &App{Settings: settings}

	classifier, err := newClassifier(settings.Classifier)
	if err != nil {
		return nil, err
	}
	a.Classifier = classifier
	a.onClose(func() {
		if err := classifier.Close(); err != nil {
			slog.Warn("[App] Failed to release model", slog.String("error", err.Error()))
		}
	})

	resolver := geocode.NewResolver(
		clients.NewNominatimClient(clients.NominatimConfig{
			BaseURL:   settings.Geocode.NominatimURL,
			UserAgent: settings.Geocode.UserAgent,
			Timeout:   settings.Geocode.Timeout,
		}),
		a.newGeocodeCache(settings.Geocode),
		geocode.Options{Backoff: settings.Geocode.Backoff},
	)

	a.Annotator = annotation.NewAnnotator(classifier, neighborhood.NewFlorianopolisExtractor(), resolver)

	sinks, err := a.newSinks(ctx, settings.Export)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Exporter = export.NewExporter(settings.Export.BatchSize, sinks...)

	slog.Info("[App] Pipeline ready",
		slog.String("classifier", settings.Classifier.Backend),
		slog.String("geocode_cache", settings.Geocode.Cache),
		slog.Any("sinks", a.Exporter.Sinks()))
	return a, nil
}

// AnnotatorProvider shares the process-wide annotator with every session. A
// model whose load failed gets another attempt on every acquisition.
func (a *App) AnnotatorProvider() store.AnnotatorProvider {
	return func() (store.Annotator, error) {
		if a.Annotator == nil {
			return nil, errors.New("annotator not initialized")
		}
		if a.Classifier != nil {
			a.Classifier.Reload()
		}
		return a.Annotator, nil
	}
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newClassifier(cfg config.ClassifierSettings) (*sentiment.Classifier, error) {
	opts := sentiment.BackendOptions{
		Backend:   cfg.Backend,
		ModelName: cfg.Model,
		ModelDir:  cfg.ModelDir,
		HubToken:  cfg.HFToken,
	}

	switch cfg.Backend {
	case sentiment.BackendHuggingFace:
		opts.HuggingFace = clients.NewHuggingFaceClient(clients.HuggingFaceConfig{
			Endpoint: cfg.HFInferenceURL,
			Model:    cfg.Model,
			Token:    cfg.HFToken,
		})
	case sentiment.BackendOpenAI:
		client, err := clients.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
		if err != nil {
			return nil, err
		}
		opts.OpenAI = client
	}

	return sentiment.NewClassifierForBackend(opts)
}

// newGeocodeCache always keeps a process-local tier. A valkey tier is added
// behind it when configured and reachable.
func (a *App) newGeocodeCache(cfg config.GeocodeSettings) geocode.Cache {
	local := geocode.NewMemoryCache()
	if cfg.Cache != "valkey" {
		return local
	}

	client, err := clients.NewValkeyClient(clients.ValkeyConfig{
		Address:  cfg.ValkeyAddress,
		Password: cfg.ValkeyPass,
		UseTLS:   cfg.ValkeyTLS,
	})
	if err != nil {
		slog.Warn("[App] Valkey unavailable, using in-process geocode cache only",
			slog.String("error", err.Error()))
		return local
	}
	a.onClose(client.Close)

	return geocode.NewTieredCache(local, geocode.NewValkeyCache(client, cfg.CacheTTL))
}

func (a *App) newSinks(ctx context.Context, cfg config.ExportSettings) ([]export.Sink, error) {
	var sinks []export.Sink
	for _, name := range cfg.Sinks {
		switch name {
		case SINK_DYNAMODB:
			client, err := clients.NewDynamoDBClient(ctx, clients.AWSConfig{
				Region:   cfg.AWSRegion,
				Endpoint: cfg.AWSEndpoint,
			})
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, db.NewDynamoDBSink(client, cfg.DynamoDBTable))

		case SINK_POSTGRES:
			pool, err := clients.NewPostgresPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return nil, err
			}
			a.onClose(pool.Close)
			sink := db.NewPostgresSink(pool)
			if err := sink.EnsureSchema(ctx); err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)

		case SINK_KAFKA:
			producer, err := kafka_client.NewKafkaProducer(kafka_client.KafkaConfig{Broker: cfg.KafkaBroker})
			if err != nil {
				return nil, err
			}
			sink := kafka_client.NewKafkaSink(producer, cfg.KafkaTopic)
			a.onClose(sink.Close)
			sinks = append(sinks, sink)

		default:
			return nil, fmt.Errorf("unknown export sink %q", name)
		}
	}
	return sinks, nil
}
