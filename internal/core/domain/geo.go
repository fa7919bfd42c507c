package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ScreenPoint is a pixel-space coordinate produced by projecting a GeoPoint
// through the map viewport.
type ScreenPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Projector converts a geographic coordinate into screen space. The map/UI
// layer owns the current viewport and zoom, so it supplies the projection;
// the core never computes one itself.
type Projector func(GeoPoint) ScreenPoint
