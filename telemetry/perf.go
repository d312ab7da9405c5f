package telemetry

import (
	"context"
	"log/slog"
	"time"

	"github.com/pthm-cable/sph/sph"
)

// updateSample is the timing of one Simulation.Update call.
type updateSample struct {
	total    time.Duration
	substeps int
	phases   map[string]time.Duration
}

// PerfCollector times simulation updates and their pipeline phases over a
// rolling window of updates. It is the sph.PhaseRecorder of the game: the
// host brackets each Update with BeginUpdate/EndUpdate and the simulation
// reports phase boundaries in between, all on one goroutine.
type PerfCollector struct {
	window []updateSample
	next   int
	filled int

	// in-flight update
	phases     map[string]time.Duration
	substeps   int
	began      time.Time
	phase      string
	phaseBegan time.Time

	lastFrame     time.Time
	frameDuration time.Duration

	clock func() time.Time
}

// NewPerfCollector creates a collector averaging over the last window
// updates (60 when window < 1).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		window: make([]updateSample, window),
		phases: make(map[string]time.Duration),
		clock:  time.Now,
	}
}

// BeginUpdate starts timing one Simulation.Update.
func (p *PerfCollector) BeginUpdate() {
	p.began = p.clock()
	p.phases = make(map[string]time.Duration, len(sph.Phases))
	p.substeps = 0
	p.phase = ""
}

// StartPhase closes the running phase and opens name. Boundary resolution
// is the last stage of every substep, so its entries count substeps.
func (p *PerfCollector) StartPhase(name string) {
	now := p.clock()
	p.closePhase(now)
	p.phase = name
	p.phaseBegan = now
	if name == sph.PhaseBoundary {
		p.substeps++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.phases[p.phase] += now.Sub(p.phaseBegan)
	}
}

// EndUpdate closes the last phase and pushes the update into the window.
func (p *PerfCollector) EndUpdate() {
	now := p.clock()
	p.closePhase(now)
	p.phase = ""

	p.window[p.next] = updateSample{
		total:    now.Sub(p.began),
		substeps: p.substeps,
		phases:   p.phases,
	}
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

// RecordFrame marks a rendered frame; paused frames count too.
func (p *PerfCollector) RecordFrame() {
	now := p.clock()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the updates in the window.
type PerfStats struct {
	Updates int // samples in the window

	AvgUpdate time.Duration
	MinUpdate time.Duration
	MaxUpdate time.Duration

	// AvgSubstep is AvgUpdate spread over the substeps of an update.
	AvgSubstep time.Duration

	PhaseAvg map[string]time.Duration // mean time per update
	PhasePct map[string]float64       // share of AvgUpdate, 0-100

	FrameDuration time.Duration
	FPS           float64
}

// UpdatesPerSecond is the throughput the average update time allows.
func (s PerfStats) UpdatesPerSecond() float64 {
	if s.AvgUpdate <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.AvgUpdate)
}

// Stats computes the window aggregates.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		Updates:       p.filled,
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.filled == 0 {
		return stats
	}

	var total time.Duration
	var substeps int
	for i, s := range p.window[:p.filled] {
		total += s.total
		substeps += s.substeps
		if i == 0 || s.total < stats.MinUpdate {
			stats.MinUpdate = s.total
		}
		stats.MaxUpdate = max(stats.MaxUpdate, s.total)
		for name, d := range s.phases {
			stats.PhaseAvg[name] += d
		}
	}

	n := time.Duration(p.filled)
	stats.AvgUpdate = total / n
	if substeps > 0 {
		stats.AvgSubstep = total / time.Duration(substeps)
	}
	for name, sum := range stats.PhaseAvg {
		stats.PhaseAvg[name] = sum / n
		if stats.AvgUpdate > 0 {
			stats.PhasePct[name] = float64(sum/n) / float64(stats.AvgUpdate) * 100
		}
	}
	return stats
}

// LogStats logs the aggregates with phases in pipeline order.
func (s PerfStats) LogStats() {
	slog.Default().LogAttrs(context.Background(), slog.LevelInfo, "perf", s.LogValue().Group()...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_update_us", s.AvgUpdate.Microseconds()),
		slog.Int64("min_update_us", s.MinUpdate.Microseconds()),
		slog.Int64("max_update_us", s.MaxUpdate.Microseconds()),
		slog.Int64("avg_substep_us", s.AvgSubstep.Microseconds()),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, name := range sph.Phases {
		if pct, ok := s.PhasePct[name]; ok && pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgUpdateUS    int64   `csv:"avg_update_us"`
	MinUpdateUS    int64   `csv:"min_update_us"`
	MaxUpdateUS    int64   `csv:"max_update_us"`
	AvgSubstepUS   int64   `csv:"avg_substep_us"`
	UpdatesPerSec  float64 `csv:"updates_per_sec"`
	FPS            float64 `csv:"fps"`
	SpatialHashPct float64 `csv:"spatial_hash_pct"`
	DensityPct     float64 `csv:"density_pct"`
	AccelPct       float64 `csv:"acceleration_pct"`
	IntegratePct   float64 `csv:"integrate_pct"`
	CollisionsPct  float64 `csv:"collisions_pct"`
	BoundaryPct    float64 `csv:"boundary_pct"`
}

// ToCSV flattens s for the row ending at frame windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgUpdateUS:    s.AvgUpdate.Microseconds(),
		MinUpdateUS:    s.MinUpdate.Microseconds(),
		MaxUpdateUS:    s.MaxUpdate.Microseconds(),
		AvgSubstepUS:   s.AvgSubstep.Microseconds(),
		UpdatesPerSec:  s.UpdatesPerSecond(),
		FPS:            s.FPS,
		SpatialHashPct: s.PhasePct[sph.PhaseSpatialHash],
		DensityPct:     s.PhasePct[sph.PhaseDensity],
		AccelPct:       s.PhasePct[sph.PhaseAcceleration],
		IntegratePct:   s.PhasePct[sph.PhaseIntegrate],
		CollisionsPct:  s.PhasePct[sph.PhaseCollisions],
		BoundaryPct:    s.PhasePct[sph.PhaseBoundary],
	}
}

var _ sph.PhaseRecorder = (*PerfCollector)(nil)
