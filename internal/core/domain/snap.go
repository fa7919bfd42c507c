package domain

import "math"

// Snap resolves a candidate click against the existing vertices. Every
// vertex and the candidate are projected into the same screen space; if the
// nearest vertex lies within thresholdPx pixels, its exact coordinates are
// returned (by value) so a polygon can be closed pixel-accurately at any
// zoom level. Otherwise, or when snapping is disabled (thresholdPx <= 0),
// the candidate comes back unchanged. The first vertex in iteration order
// wins ties.
func Snap(existing []GeoPoint, candidate GeoPoint, project Projector, thresholdPx float64) GeoPoint {
	if len(existing) == 0 || thresholdPx <= 0 || project == nil {
		return candidate
	}

	target := project(candidate)

	best := -1
	bestDist := math.Inf(1)
	for i, p := range existing {
		s := project(p)
		d := math.Hypot(s.X-target.X, s.Y-target.Y)
		if d < bestDist {
			best = i
			bestDist = d
		}
	}

	if bestDist <= thresholdPx {
		return existing[best]
	}
	return candidate
}
