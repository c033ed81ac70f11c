package kafka_client

import "time"

const (
	KAFKA_TOPIC_ANNOTATED_IDEAS = "annotated-ideas" // one message per annotated idea, keyed by record id
)

const (
	FLUSH_TIMEOUT_MS = 5000
	MAX_RETRIES      = 3
	RETRY_DELAY      = 2 * time.Second
)
