package models

type SentimentLabel string

const (
	SentimentPositive     SentimentLabel = "Positive"
	SentimentNeutral      SentimentLabel = "Neutral"
	SentimentNegative     SentimentLabel = "Negative"
	SentimentUndetermined SentimentLabel = "Undetermined"
	SentimentError        SentimentLabel = "Error"
)

type SentimentResult struct {
	Label      SentimentLabel `json:"label"`
	Confidence float64        `json:"confidence"`
	TokenCount int            `json:"token_count"`
	// Stars is the parsed 1-5 rating, 0 when no rating was available.
	Stars int `json:"stars"`
}

func ErrorSentiment() SentimentResult {
	return SentimentResult{Label: SentimentError}
}

func UndeterminedSentiment() SentimentResult {
	return SentimentResult{Label: SentimentUndetermined}
}
