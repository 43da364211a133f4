package domain

import "fmt"

// Position is a map coordinate in the map widget's native lat/lng order.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Position) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}

// Valid reports whether both axes are inside WGS84 bounds.
func (p Position) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
