package mapview

import (
	"fmt"
	"html"

	"github.com/spacesedan/ideiamap/internal/models"
)

const (
	DEFAULT_CENTER_LAT = -27.5954
	DEFAULT_CENTER_LON = -48.5480
	DEFAULT_ZOOM       = 12

	COLOR_POSITIVE = "green"
	COLOR_NEUTRAL  = "orange"
	COLOR_OTHER    = "red"
)

type View struct {
	CenterLatitude  float64         `json:"center_latitude"`
	CenterLongitude float64         `json:"center_longitude"`
	Zoom            int             `json:"zoom"`
	Markers         []models.Marker `json:"markers"`
}

func NewView(records []models.AnnotatedIdea) View {
	return View{
		CenterLatitude:  DEFAULT_CENTER_LAT,
		CenterLongitude: DEFAULT_CENTER_LON,
		Zoom:            DEFAULT_ZOOM,
		Markers:         Markers(records),
	}
}

// Markers returns one marker per record with coordinates, in record order.
func Markers(records []models.AnnotatedIdea) []models.Marker {
	markers := make([]models.Marker, 0, len(records))
	for _, record := range records {
		if !record.Location.Valid {
			continue
		}
		markers = append(markers, models.Marker{
			RecordID:  record.ID,
			Latitude:  record.Location.Latitude,
			Longitude: record.Location.Longitude,
			Popup:     Popup(record),
			Color:     ColorFor(record.Sentiment.Label),
		})
	}
	return markers
}

func ColorFor(label models.SentimentLabel) string {
	switch label {
	case models.SentimentPositive:
		return COLOR_POSITIVE
	case models.SentimentNeutral:
		return COLOR_NEUTRAL
	default:
		return COLOR_OTHER
	}
}

func Popup(record models.AnnotatedIdea) string {
	return fmt.Sprintf("<b>Bairro:</b> %s<br><b>Sentimento:</b> %s<br><b>Confiança:</b> %.2f",
		html.EscapeString(record.NeighborhoodName()),
		html.EscapeString(string(record.Sentiment.Label)),
		record.Sentiment.Confidence)
}

// Table returns every record without its coordinates.
func Table(records []models.AnnotatedIdea) []models.TableRow {
	rows := make([]models.TableRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, models.TableRow{
			ID:           record.ID,
			Text:         record.Idea.Text,
			Source:       record.Idea.Source,
			Sentiment:    record.Sentiment.Label,
			Confidence:   record.Sentiment.Confidence,
			TokenCount:   record.Sentiment.TokenCount,
			Neighborhood: record.NeighborhoodName(),
		})
	}
	return rows
}
