package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", "")
	t.Setenv("EXPORT_SINKS", "")
	t.Setenv("HEALTHCHECK_INTERVAL", "")

	settings := Load()

	assert.Equal(t, ":8080", settings.HTTPAddr)
	assert.Equal(t, "floripa-sentimento-mapa", settings.Geocode.UserAgent)
	assert.Equal(t, time.Second, settings.Geocode.Backoff)
	assert.Equal(t, "memory", settings.Geocode.Cache)
	assert.Empty(t, settings.Export.Sinks)
	assert.Zero(t, settings.Classifier.HealthCheckInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", "VADER")
	t.Setenv("GEOCODE_TIMEOUT", "3s")
	t.Setenv("EXPORT_SINKS", " Postgres, kafka ,,")
	t.Setenv("HEALTHCHECK_INTERVAL", "1h")

	settings := Load()

	assert.Equal(t, "vader", settings.Classifier.Backend)
	assert.Equal(t, 3*time.Second, settings.Geocode.Timeout)
	assert.Equal(t, []string{"postgres", "kafka"}, settings.Export.Sinks)
	assert.Equal(t, time.Hour, settings.Classifier.HealthCheckInterval)
}
