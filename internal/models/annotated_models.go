package models

import (
	"time"

	"github.com/google/uuid"
)

type AnnotatedIdea struct {
	ID           uuid.UUID       `json:"id"`
	Idea         Idea            `json:"idea"`
	Sentiment    SentimentResult `json:"sentiment"`
	Neighborhood *string         `json:"neighborhood"`
	Location     GeoPoint        `json:"location"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (a AnnotatedIdea) HasNeighborhood() bool {
	return a.Neighborhood != nil
}

// NeighborhoodName returns the matched neighborhood or an empty string.
func (a AnnotatedIdea) NeighborhoodName() string {
	if a.Neighborhood == nil {
		return ""
	}
	return *a.Neighborhood
}

// Marker is one map-renderable point derived from an AnnotatedIdea.
type Marker struct {
	RecordID  uuid.UUID `json:"record_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Popup     string    `json:"popup"`
	Color     string    `json:"color"`
}

// TableRow is the tabular view of an AnnotatedIdea without coordinates.
type TableRow struct {
	ID           uuid.UUID      `json:"id"`
	Text         string         `json:"text"`
	Source       Source         `json:"source"`
	Sentiment    SentimentLabel `json:"sentiment"`
	Confidence   float64        `json:"confidence"`
	TokenCount   int            `json:"token_count"`
	Neighborhood string         `json:"neighborhood"`
}
