package sph

// Diagnostics receives arithmetic anomalies that the simulation corrected
// locally. Methods are called from worker goroutines and must be safe for
// concurrent use.
type Diagnostics interface {
	// ZeroDensity reports a density that was clamped to DensityEpsilon.
	ZeroDensity(i int, raw float64)
	// CoincidentPair reports two particles at the same position.
	CoincidentPair(i, j int)
	// NonFinite reports a particle whose state was reset after going NaN/Inf.
	NonFinite(i int)
}

// PhaseRecorder receives the start of each pipeline phase for timing.
// Called from the goroutine running Update only.
type PhaseRecorder interface {
	StartPhase(name string)
}

// Pipeline phase names passed to PhaseRecorder.
const (
	PhaseSpatialHash  = "spatial_hash"
	PhaseDensity      = "density"
	PhaseAcceleration = "acceleration"
	PhaseIntegrate    = "integrate"
	PhaseCollisions   = "collisions"
	PhaseBoundary     = "boundary"
)

// Phases lists every phase in pipeline order.
var Phases = []string{
	PhaseSpatialHash, PhaseDensity, PhaseAcceleration,
	PhaseIntegrate, PhaseCollisions, PhaseBoundary,
}

type nopDiagnostics struct{}

func (nopDiagnostics) ZeroDensity(int, float64) {}
func (nopDiagnostics) CoincidentPair(int, int)  {}
func (nopDiagnostics) NonFinite(int)            {}

type nopRecorder struct{}

func (nopRecorder) StartPhase(string) {}
