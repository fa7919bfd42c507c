package geospatial

import "math"

const tileSize = 256.0

// WebMercator projects a WGS 84 coordinate into world pixel space at the
// given zoom level, matching the projection slippy-map libraries use. It
// lets server-side callers snap in the same pixel space the map client
// renders in.
func WebMercator(lat, lng float64, zoom float64) (x, y float64) {
	scale := tileSize * math.Exp2(zoom)

	x = (lng + 180) / 360 * scale

	sin := math.Sin(toRad(lat))
	y = (0.5 - math.Log((1+sin)/(1-sin))/(4*math.Pi)) * scale
	return x, y
}
