package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/ideiamap/internal/models"
)

const (
	ANNOTATED_IDEAS_TABLE_NAME = "AnnotatedIdeas"
	// BatchWriteItem accepts at most 25 requests.
	DYNAMODB_MAX_BATCH = 25
)

type DynamoDBWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

type DynamoDBSink struct {
	client  DynamoDBWriter
	table   string
	backoff time.Duration
}

type dynamoItem struct {
	ID           string   `dynamodbav:"id"`
	Text         string   `dynamodbav:"text"`
	Source       string   `dynamodbav:"source"`
	Sentiment    string   `dynamodbav:"sentiment_label"`
	Confidence   float64  `dynamodbav:"confidence"`
	TokenCount   int      `dynamodbav:"token_count"`
	Stars        int      `dynamodbav:"stars"`
	Neighborhood string   `dynamodbav:"neighborhood,omitempty"`
	Latitude     *float64 `dynamodbav:"latitude,omitempty"`
	Longitude    *float64 `dynamodbav:"longitude,omitempty"`
	CreatedAt    int64    `dynamodbav:"created_at"`
}

func NewDynamoDBSink(client DynamoDBWriter, table string) *DynamoDBSink {
	if table == "" {
		table = ANNOTATED_IDEAS_TABLE_NAME
	}
	return &DynamoDBSink{client: client, table: table, backoff: 500 * time.Millisecond}
}

func (d *DynamoDBSink) Name() string {
	return "dynamodb"
}

func RecordToDynamoDBItem(record models.AnnotatedIdea) (map[string]types.AttributeValue, error) {
	item := dynamoItem{
		ID:           record.ID.String(),
		Text:         record.Idea.Text,
		Source:       string(record.Idea.Source),
		Sentiment:    string(record.Sentiment.Label),
		Confidence:   record.Sentiment.Confidence,
		TokenCount:   record.Sentiment.TokenCount,
		Stars:        record.Sentiment.Stars,
		Neighborhood: record.NeighborhoodName(),
		CreatedAt:    record.CreatedAt.Unix(),
	}
	if record.Location.Valid {
		lat, lon := record.Location.Latitude, record.Location.Longitude
		item.Latitude, item.Longitude = &lat, &lon
	}
	return attributevalue.MarshalMap(item)
}

func (d *DynamoDBSink) Write(ctx context.Context, records []models.AnnotatedIdea) error {
	for i := 0; i < len(records); i += DYNAMODB_MAX_BATCH {
		end := min(i+DYNAMODB_MAX_BATCH, len(records))

		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, record := range records[i:end] {
			item, err := RecordToDynamoDBItem(record)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal record %s: %w", record.ID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := d.batchWrite(ctx, writeRequests); err != nil {
			return err
		}
	}
	return nil
}

func (d *DynamoDBSink) batchWrite(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			d.table: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write records: %w", err)
	}

	// Retry writing unprocessed records
	retryCount := 0
	backoff := d.backoff
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		time.Sleep(backoff)
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("attempt", retryCount+1),
			slog.Int("remaining", len(out.UnprocessedItems[d.table])))

		out, err = d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Retry error: %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[d.table]); remaining > 0 {
		slog.Error("[DynamoDB] Some records were not written even after retries",
			slog.Int("remaining", remaining))
		return fmt.Errorf("[DynamoDB] %d records left unprocessed", remaining)
	}
	return nil
}
