package domain_test

import (
	"testing"

	"github.com/aitorzubi/obratrace/internal/core/domain"
)

const noSnap = 0.0

func TestCaptureMachineInitialPhase(t *testing.T) {
	fresh := domain.NewCaptureMachine(nil, false)
	if fresh.Phase() != domain.PhaseEmpty {
		t.Errorf("fresh machine phase = %s, want %s", fresh.Phase(), domain.PhaseEmpty)
	}

	resumed := domain.NewCaptureMachine(square100m(), true)
	if resumed.Phase() != domain.PhaseFinished {
		t.Errorf("resumed machine phase = %s, want %s", resumed.Phase(), domain.PhaseFinished)
	}
	if got := resumed.Metrics().VertexCount; got != 4 {
		t.Errorf("resumed VertexCount = %d, want 4", got)
	}
}

func TestCaptureMachineAddVertexEntersDrawing(t *testing.T) {
	m := domain.NewCaptureMachine(nil, false)
	if !m.AddVertex(domain.GeoPoint{Lat: 1, Lng: 1}, testProjector, noSnap) {
		t.Fatal("AddVertex rejected on empty machine")
	}
	if m.Phase() != domain.PhaseDrawing {
		t.Errorf("phase after first vertex = %s, want %s", m.Phase(), domain.PhaseDrawing)
	}
}

func TestCaptureMachineAddVertexSnaps(t *testing.T) {
	m := domain.NewCaptureMachine(nil, false)
	first := domain.GeoPoint{Lat: 43.26, Lng: -2.93}
	m.AddVertex(first, testProjector, 10)
	m.AddVertex(domain.GeoPoint{Lat: 43.27, Lng: -2.93}, testProjector, 10)

	// A click within the pixel threshold of the first vertex rejoins it.
	m.AddVertex(domain.GeoPoint{Lat: 43.260001, Lng: -2.93}, testProjector, 10)

	pts := m.Points()
	if pts[2] != first {
		t.Errorf("third vertex = %+v, want snapped to %+v", pts[2], first)
	}
}

func TestCaptureMachineFinishRequiresTwoVertices(t *testing.T) {
	m := domain.NewCaptureMachine(nil, false)
	if m.CanFinish() || m.Finish() {
		t.Error("Finish allowed on empty machine")
	}

	m.AddVertex(domain.GeoPoint{Lat: 1, Lng: 1}, testProjector, noSnap)
	if m.Finish() {
		t.Error("Finish allowed with a single vertex")
	}

	m.AddVertex(domain.GeoPoint{Lat: 2, Lng: 2}, testProjector, noSnap)
	if !m.Finish() {
		t.Error("Finish rejected with two vertices")
	}
	if m.Phase() != domain.PhaseFinished {
		t.Errorf("phase = %s, want %s", m.Phase(), domain.PhaseFinished)
	}

	// Finished machines accept no more edits.
	if m.AddVertex(domain.GeoPoint{Lat: 3, Lng: 3}, testProjector, noSnap) {
		t.Error("AddVertex allowed after finish")
	}
	if m.Undo() {
		t.Error("Undo allowed after finish")
	}
}

func TestCaptureMachineUndo(t *testing.T) {
	m := domain.NewCaptureMachine(nil, false)
	if m.Undo() {
		t.Error("Undo allowed on empty sequence")
	}

	m.AddVertex(domain.GeoPoint{Lat: 1, Lng: 1}, testProjector, noSnap)
	m.AddVertex(domain.GeoPoint{Lat: 2, Lng: 2}, testProjector, noSnap)

	if !m.Undo() {
		t.Fatal("Undo rejected while drawing")
	}
	if m.Phase() != domain.PhaseDrawing {
		t.Errorf("phase with one vertex left = %s, want %s", m.Phase(), domain.PhaseDrawing)
	}

	if !m.Undo() {
		t.Fatal("Undo rejected on last vertex")
	}
	if m.Phase() != domain.PhaseEmpty {
		t.Errorf("phase after removing last vertex = %s, want %s", m.Phase(), domain.PhaseEmpty)
	}
}

func TestCaptureMachineClearRestartsTrace(t *testing.T) {
	m := domain.NewCaptureMachine(square100m(), true)
	if m.Phase() != domain.PhaseFinished {
		t.Fatalf("precondition: phase = %s", m.Phase())
	}

	if !m.Clear() {
		t.Fatal("Clear rejected on finished machine with vertices")
	}
	if m.Phase() != domain.PhaseEmpty {
		t.Errorf("phase after clear = %s, want %s", m.Phase(), domain.PhaseEmpty)
	}
	if m.Metrics().PerimeterMeters != 0 {
		t.Errorf("perimeter after clear = %v, want 0", m.Metrics().PerimeterMeters)
	}

	// Clearing twice has nothing to do.
	if m.Clear() {
		t.Error("Clear allowed with no vertices")
	}

	// Drawing resumes normally after a clear.
	if !m.AddVertex(domain.GeoPoint{Lat: 5, Lng: 5}, testProjector, noSnap) {
		t.Fatal("AddVertex rejected after clear")
	}
	if m.Phase() != domain.PhaseDrawing {
		t.Errorf("phase after clear+add = %s, want %s", m.Phase(), domain.PhaseDrawing)
	}
}

func TestCaptureMachineToggleClosed(t *testing.T) {
	m := domain.NewCaptureMachine(square100m(), false)
	openPerimeter := m.Metrics().PerimeterMeters

	m.ToggleClosed()
	if !m.Closed() {
		t.Fatal("ToggleClosed did not flip the flag")
	}
	if m.Phase() != domain.PhaseFinished {
		t.Errorf("ToggleClosed changed phase to %s", m.Phase())
	}
	if m.Metrics().PerimeterMeters <= openPerimeter {
		t.Errorf("closing did not add the wrap segment: %v <= %v", m.Metrics().PerimeterMeters, openPerimeter)
	}

	m.ToggleClosed()
	if m.Closed() {
		t.Error("second toggle should reopen the path")
	}
	if m.Metrics().PerimeterMeters != openPerimeter {
		t.Errorf("reopened perimeter = %v, want %v", m.Metrics().PerimeterMeters, openPerimeter)
	}
}

func TestCaptureMachineMetricsTrackEveryMutation(t *testing.T) {
	m := domain.NewCaptureMachine(nil, false)
	pts := square100m()
	for i, p := range pts {
		m.AddVertex(p, testProjector, noSnap)
		if got := m.Metrics().VertexCount; got != i+1 {
			t.Fatalf("VertexCount after %d adds = %d", i+1, got)
		}
		want := domain.ComputeMetrics(pts[:i+1], false)
		if m.Metrics() != want {
			t.Fatalf("metrics after %d adds = %+v, want %+v", i+1, m.Metrics(), want)
		}
	}

	m.Undo()
	want := domain.ComputeMetrics(pts[:3], false)
	if m.Metrics() != want {
		t.Errorf("metrics after undo = %+v, want %+v", m.Metrics(), want)
	}
}
