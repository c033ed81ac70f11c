package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Settings struct {
	Env      string
	LogLevel string
	HTTPAddr string

	Classifier ClassifierSettings
	Geocode    GeocodeSettings
	Export     ExportSettings
}

type ClassifierSettings struct {
	Backend        string
	Model          string
	ModelDir       string
	HFToken        string
	HFInferenceURL string
	OpenAIKey      string
	OpenAIModel    string
	// HealthCheckInterval overrides the probe interval picked per backend.
	HealthCheckInterval time.Duration
}

type GeocodeSettings struct {
	NominatimURL string
	UserAgent    string
	Timeout      time.Duration
	Backoff      time.Duration
	// Cache is "memory" or "valkey". The valkey tier sits behind memory.
	Cache         string
	CacheTTL      time.Duration
	ValkeyAddress string
	ValkeyPass    string
	ValkeyTLS     bool
}

type ExportSettings struct {
	Sinks         []string
	BatchSize     int
	AWSEndpoint   string
	AWSRegion     string
	DynamoDBTable string
	DatabaseURL   string
	KafkaBroker   string
	KafkaTopic    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("CLASSIFIER_BACKEND", "hugot")
	v.SetDefault("CLASSIFIER_MODEL", "nlptown/bert-base-multilingual-uncased-sentiment")
	v.SetDefault("MODEL_DIR", "./models")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	v.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODE_USER_AGENT", "floripa-sentimento-mapa")
	v.SetDefault("GEOCODE_TIMEOUT", 10*time.Second)
	v.SetDefault("GEOCODE_BACKOFF", time.Second)
	v.SetDefault("GEOCODE_CACHE", "memory")
	v.SetDefault("GEOCODE_CACHE_TTL", 30*24*time.Hour)
	v.SetDefault("VALKEY_INIT_ADDRESS", "localhost:6379")

	v.SetDefault("EXPORT_SINKS", "")
	v.SetDefault("EXPORT_BATCH_SIZE", 25)
	v.SetDefault("AWS_REGION", "us-west-2")
	v.SetDefault("DYNAMODB_TABLE", "AnnotatedIdeas")
	v.SetDefault("KAFKA_BROKER", "localhost:29092")
	v.SetDefault("KAFKA_EXPORT_TOPIC", "annotated-ideas")
}

// Load reads settings from the environment. Call LoadEnv first to pull in
// the env file for the current APP_ENV.
func Load() Settings {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return Settings{
		Env:      v.GetString("APP_ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		HTTPAddr: v.GetString("HTTP_ADDR"),
		Classifier: ClassifierSettings{
			Backend:        strings.ToLower(v.GetString("CLASSIFIER_BACKEND")),
			Model:          v.GetString("CLASSIFIER_MODEL"),
			ModelDir:       v.GetString("MODEL_DIR"),
			HFToken:        v.GetString("HF_API_TOKEN"),
			HFInferenceURL: v.GetString("HF_INFERENCE_URL"),
			OpenAIKey:      v.GetString("OPENAI_API_KEY"),
			OpenAIModel:    v.GetString("OPENAI_MODEL"),

			HealthCheckInterval: v.GetDuration("HEALTHCHECK_INTERVAL"),
		},
		Geocode: GeocodeSettings{
			NominatimURL:  v.GetString("NOMINATIM_URL"),
			UserAgent:     v.GetString("GEOCODE_USER_AGENT"),
			Timeout:       v.GetDuration("GEOCODE_TIMEOUT"),
			Backoff:       v.GetDuration("GEOCODE_BACKOFF"),
			Cache:         strings.ToLower(v.GetString("GEOCODE_CACHE")),
			CacheTTL:      v.GetDuration("GEOCODE_CACHE_TTL"),
			ValkeyAddress: v.GetString("VALKEY_INIT_ADDRESS"),
			ValkeyPass:    v.GetString("VALKEY_PASSWORD"),
			ValkeyTLS:     v.GetBool("VALKEY_TLS"),
		},
		Export: ExportSettings{
			Sinks:         splitList(v.GetString("EXPORT_SINKS")),
			BatchSize:     v.GetInt("EXPORT_BATCH_SIZE"),
			AWSEndpoint:   v.GetString("AWS_ENDPOINT"),
			AWSRegion:     v.GetString("AWS_REGION"),
			DynamoDBTable: v.GetString("DYNAMODB_TABLE"),
			DatabaseURL:   v.GetString("DATABASE_URL"),
			KafkaBroker:   v.GetString("KAFKA_BROKER"),
			KafkaTopic:    v.GetString("KAFKA_EXPORT_TOPIC"),
		},
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
