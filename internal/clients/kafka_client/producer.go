package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/ideiamap/internal/models"
)

// TransactionalProducer is the subset of *kafka.Producer the sink drives.
type TransactionalProducer interface {
	BeginTransaction() error
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
	Flush(timeoutMs int) int
	Close()
}

type KafkaSink struct {
	producer   TransactionalProducer
	topic      string
	retryDelay time.Duration
}

func NewKafkaProducer(cfg KafkaConfig) (*kafka.Producer, error) {
	cfg = cfg.withDefaults()
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":                     cfg.Broker,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      cfg.TransactionalID,
	})
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if err := p.InitTransactions(context.Background()); err != nil {
		p.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return p, nil
}

func NewKafkaSink(producer TransactionalProducer, topic string) *KafkaSink {
	if topic == "" {
		topic = KAFKA_TOPIC_ANNOTATED_IDEAS
	}
	return &KafkaSink{producer: producer, topic: topic, retryDelay: RETRY_DELAY}
}

func (k *KafkaSink) Name() string {
	return "kafka"
}

// Write publishes one batch inside a single transaction.
func (k *KafkaSink) Write(ctx context.Context, records []models.AnnotatedIdea) error {
	if len(records) == 0 {
		return nil
	}

	if err := k.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	for _, record := range records {
		jsonData, err := json.Marshal(record)
		if err != nil {
			return k.abort(ctx, err)
		}

		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
			Key:            []byte(record.ID.String()),
			Value:          jsonData,
		}

		if err := k.produce(msg); err != nil {
			return k.abort(ctx, err)
		}
	}

	var commitErr error
	for i := 0; i < MAX_RETRIES; i++ {
		commitErr = k.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1))
		time.Sleep(k.retryDelay)
	}
	if commitErr != nil {
		return k.abort(ctx, fmt.Errorf("failed to commit transaction after %d retries: %w", MAX_RETRIES, commitErr))
	}

	slog.Info("[KafkaClient] Published annotated ideas transactionally",
		slog.String("topic", k.topic),
		slog.Int("count", len(records)))
	return nil
}

func (k *KafkaSink) produce(msg *kafka.Message) error {
	var err error
	for i := 0; i < MAX_RETRIES; i++ {
		err = k.producer.Produce(msg, nil)
		if err == nil {
			return nil
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1))
	}
	return err
}

func (k *KafkaSink) abort(ctx context.Context, cause error) error {
	if abortErr := k.producer.AbortTransaction(ctx); abortErr != nil {
		return fmt.Errorf("[KafkaClient] failed to abort transaction after %v: %w", cause, abortErr)
	}
	return fmt.Errorf("[KafkaClient] %w", cause)
}

func (k *KafkaSink) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := k.producer.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	k.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
