package domain

// CapturePhase is the drawing phase of a capture machine. The closure flag
// is deliberately not part of the phase: a shape can be toggled between
// open path and closed polygon in any phase.
type CapturePhase string

const (
	// PhaseEmpty means no vertex has been placed yet.
	PhaseEmpty CapturePhase = "empty"
	// PhaseDrawing means at least one vertex exists and edits are accepted.
	PhaseDrawing CapturePhase = "drawing"
	// PhaseFinished means the trace was completed; vertices are frozen.
	PhaseFinished CapturePhase = "finished"
)

// CaptureMachine accumulates the vertices of a traced shape. Illegal calls
// are rejected with a false return instead of panicking, so a caller that
// forgets to check the Can* predicates cannot corrupt state. Metrics are
// recomputed on every mutation of the vertex list or the closure flag.
type CaptureMachine struct {
	phase   CapturePhase
	points  []GeoPoint
	closed  bool
	metrics SiteMetrics
}

// NewCaptureMachine builds a machine over an existing vertex list.
// Re-opening an already-drawn shape starts in the finished phase; a fresh
// one starts empty.
func NewCaptureMachine(points []GeoPoint, closed bool) *CaptureMachine {
	m := &CaptureMachine{
		phase:  PhaseEmpty,
		points: append([]GeoPoint(nil), points...),
		closed: closed,
	}
	if len(m.points) > 0 {
		m.phase = PhaseFinished
	}
	m.recompute()
	return m
}

// Phase returns the current drawing phase.
func (m *CaptureMachine) Phase() CapturePhase { return m.phase }

// Closed reports whether the shape is interpreted as a closed polygon.
func (m *CaptureMachine) Closed() bool { return m.closed }

// Points returns a copy of the current vertex list in drawing order.
func (m *CaptureMachine) Points() []GeoPoint {
	return append([]GeoPoint(nil), m.points...)
}

// Metrics returns the metrics of the current vertex list and closure flag.
func (m *CaptureMachine) Metrics() SiteMetrics { return m.metrics }

// CanAddVertex reports whether a vertex may be appended.
func (m *CaptureMachine) CanAddVertex() bool { return m.phase != PhaseFinished }

// AddVertex appends the snap-resolved candidate and enters the drawing
// phase on the first point. Rejected once finished.
func (m *CaptureMachine) AddVertex(candidate GeoPoint, project Projector, snapThresholdPx float64) bool {
	if !m.CanAddVertex() {
		return false
	}
	m.points = append(m.points, Snap(m.points, candidate, project, snapThresholdPx))
	m.phase = PhaseDrawing
	m.recompute()
	return true
}

// CanUndo reports whether the last vertex may be removed.
func (m *CaptureMachine) CanUndo() bool {
	return m.phase != PhaseFinished && len(m.points) > 0
}

// Undo removes the last vertex. Falls back to the empty phase when the last
// remaining vertex is removed.
func (m *CaptureMachine) Undo() bool {
	if !m.CanUndo() {
		return false
	}
	m.points = m.points[:len(m.points)-1]
	if len(m.points) == 0 {
		m.phase = PhaseEmpty
	}
	m.recompute()
	return true
}

// CanClear reports whether there is anything to clear.
func (m *CaptureMachine) CanClear() bool { return len(m.points) > 0 }

// Clear drops all vertices and restarts the trace, from any phase.
func (m *CaptureMachine) Clear() bool {
	if !m.CanClear() {
		return false
	}
	m.points = nil
	m.phase = PhaseEmpty
	m.recompute()
	return true
}

// CanFinish reports whether the trace has enough vertices to complete.
func (m *CaptureMachine) CanFinish() bool {
	return m.phase != PhaseFinished && len(m.points) >= 2
}

// Finish freezes the trace. Rejected with fewer than two vertices.
func (m *CaptureMachine) Finish() bool {
	if !m.CanFinish() {
		return false
	}
	m.phase = PhaseFinished
	return true
}

// ToggleClosed flips between open path and closed polygon. Legal in any
// phase; vertices and phase are untouched but metrics change.
func (m *CaptureMachine) ToggleClosed() {
	m.closed = !m.closed
	m.recompute()
}

func (m *CaptureMachine) recompute() {
	m.metrics = ComputeMetrics(m.points, m.closed)
}
