package domain

import (
	"math"

	"github.com/aitorzubi/obratrace/internal/pkg/geospatial"
)

// walkSpeedMetersPerMinute is the pace used for the walk-time estimate,
// 83.33 m/min ≈ 5 km/h.
const walkSpeedMetersPerMinute = 83.33

// SiteMetrics is derived from a traced shape and never edited by hand.
type SiteMetrics struct {
	PerimeterMeters          float64 `json:"perimeterMeters"`
	VertexCount              int     `json:"vertexCount"`
	EstimatedWalkTimeMinutes float64 `json:"estimatedWalkTimeMinutes"`
}

// ComputeMetrics derives length, vertex count and walk time from an ordered
// vertex list. When closed is true the last vertex connects back to the
// first. Summation runs at full precision; rounding happens once at the end
// (perimeter to 2 decimals, walk time to 1).
func ComputeMetrics(points []GeoPoint, closed bool) SiteMetrics {
	m := SiteMetrics{VertexCount: len(points)}
	if len(points) < 2 {
		return m
	}

	limit := len(points) - 1
	if closed {
		limit = len(points)
	}

	var meters float64
	for i := 0; i < limit; i++ {
		a := points[i]
		b := points[(i+1)%len(points)]
		meters += geospatial.Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
	}

	m.PerimeterMeters = round(meters, 2)
	m.EstimatedWalkTimeMinutes = round(meters/walkSpeedMetersPerMinute, 1)
	return m
}

func round(v float64, decimals int) float64 {
	scale := math.Pow10(decimals)
	return math.Round(v*scale) / scale
}
