package domain_test

import (
	"math"
	"testing"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

// sideDeg is the latitude/longitude delta that spans ~100 meters on the
// equator for the spherical earth radius used by the metrics engine.
const sideDeg = 100.0 / 111194.93

// square100m returns four vertices tracing a ~100m x 100m square at the equator.
func square100m() []domain.GeoPoint {
	return []domain.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: sideDeg},
		{Lat: sideDeg, Lng: sideDeg},
		{Lat: sideDeg, Lng: 0},
	}
}

func approx(t *testing.T, got, want, tol float64, what string) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", what, got, want, tol)
	}
}

func TestComputeMetricsFewerThanTwoVertices(t *testing.T) {
	for _, closed := range []bool{false, true} {
		m := domain.ComputeMetrics(nil, closed)
		if m.PerimeterMeters != 0 || m.EstimatedWalkTimeMinutes != 0 || m.VertexCount != 0 {
			t.Errorf("empty list (closed=%v): got %+v, want all zero", closed, m)
		}

		m = domain.ComputeMetrics([]domain.GeoPoint{{Lat: 43.26, Lng: -2.93}}, closed)
		if m.PerimeterMeters != 0 || m.EstimatedWalkTimeMinutes != 0 {
			t.Errorf("single vertex (closed=%v): got %+v, want zero length", closed, m)
		}
		if m.VertexCount != 1 {
			t.Errorf("single vertex: VertexCount = %d, want 1", m.VertexCount)
		}
	}
}

func TestComputeMetricsSquare(t *testing.T) {
	pts := square100m()

	closed := domain.ComputeMetrics(pts, true)
	approx(t, closed.PerimeterMeters, 400.0, 0.1, "closed perimeter")
	approx(t, closed.EstimatedWalkTimeMinutes, 4.8, 0.05, "closed walk time")
	if closed.VertexCount != 4 {
		t.Errorf("VertexCount = %d, want 4", closed.VertexCount)
	}

	open := domain.ComputeMetrics(pts, false)
	approx(t, open.PerimeterMeters, 300.0, 0.1, "open perimeter")
}

func TestComputeMetricsDeterministic(t *testing.T) {
	pts := square100m()
	first := domain.ComputeMetrics(pts, true)
	second := domain.ComputeMetrics(pts, true)
	if first != second {
		t.Errorf("metrics not deterministic: %+v vs %+v", first, second)
	}
}

func TestComputeMetricsDegenerateSegment(t *testing.T) {
	pts := []domain.GeoPoint{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 0}, // zero-length segment is legal
		{Lat: 0, Lng: sideDeg},
	}
	m := domain.ComputeMetrics(pts, false)
	approx(t, m.PerimeterMeters, 100.0, 0.1, "perimeter with degenerate segment")
}

func TestComputeMetricsMonotonicUnderAppend(t *testing.T) {
	pts := square100m()

	// Open path: each appended vertex only adds a segment.
	prev := 0.0
	for i := 2; i <= len(pts); i++ {
		m := domain.ComputeMetrics(pts[:i], false)
		if m.PerimeterMeters < prev {
			t.Fatalf("open perimeter shrank after appending vertex %d: %v < %v", i, m.PerimeterMeters, prev)
		}
		prev = m.PerimeterMeters
	}

	// Closed polygon: the wrap segment is replaced, but the detour through
	// the new vertex can never be shorter than the segment it replaces.
	prev = 0.0
	for i := 2; i <= len(pts); i++ {
		m := domain.ComputeMetrics(pts[:i], true)
		if m.PerimeterMeters < prev {
			t.Fatalf("closed perimeter shrank after appending vertex %d: %v < %v", i, m.PerimeterMeters, prev)
		}
		prev = m.PerimeterMeters
	}
}

func TestComputeMetricsClosingAddsWrapSegment(t *testing.T) {
	pts := square100m()
	open := domain.ComputeMetrics(pts, false)
	closed := domain.ComputeMetrics(pts, true)
	if closed.PerimeterMeters <= open.PerimeterMeters {
		t.Errorf("closing the square should add the wrap segment: closed=%v open=%v",
			closed.PerimeterMeters, open.PerimeterMeters)
	}
}
