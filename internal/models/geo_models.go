package models

import "encoding/json"

// GeoPoint holds a resolved coordinate pair. Latitude and Longitude are only
// meaningful when Valid is set; both are absent together otherwise.
type GeoPoint struct {
	Latitude  float64
	Longitude float64
	Valid     bool
}

func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Latitude: lat, Longitude: lon, Valid: true}
}

func AbsentGeoPoint() GeoPoint {
	return GeoPoint{}
}

type geoPointJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (g GeoPoint) MarshalJSON() ([]byte, error) {
	var out geoPointJSON
	if g.Valid {
		lat, lon := g.Latitude, g.Longitude
		out.Latitude, out.Longitude = &lat, &lon
	}
	return json.Marshal(out)
}

// UnmarshalJSON treats a point with either coordinate missing as absent.
func (g *GeoPoint) UnmarshalJSON(data []byte) error {
	var in geoPointJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Latitude == nil || in.Longitude == nil {
		*g = AbsentGeoPoint()
		return nil
	}
	*g = NewGeoPoint(*in.Latitude, *in.Longitude)
	return nil
}
