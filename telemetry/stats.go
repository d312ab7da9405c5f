package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph/sph"
)

// FluidStats summarizes the particle state at one instant.
// Particles have unit mass.
type FluidStats struct {
	Particles int `csv:"particles"`

	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMax  float64 `csv:"density_max"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP90  float64 `csv:"density_p90"`

	SpeedMean     float64 `csv:"speed_mean"`
	SpeedMax      float64 `csv:"speed_max"`
	KineticEnergy float64 `csv:"kinetic_energy"`

	CenterX float64 `csv:"center_x"`
	CenterY float64 `csv:"center_y"`
}

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Frames in the window that advanced the simulation
	SteppedFrames int `csv:"stepped_frames"`
	// Frames with the hand pushing or pulling
	HandFrames int `csv:"hand_frames"`

	FluidStats
	AnomalyCounts
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// StatsScratch holds reusable buffers for ComputeFluidStats.
type StatsScratch struct {
	sorted []float64
	speeds []float64
}

// ComputeFluidStats summarizes particles and their densities.
// densities may be shorter than particles (e.g. before the first update),
// in which case the density fields are zero.
func ComputeFluidStats(particles []sph.Particle, densities []float64, scratch *StatsScratch) FluidStats {
	n := len(particles)
	out := FluidStats{Particles: n}
	if n == 0 {
		return out
	}
	if scratch == nil {
		scratch = &StatsScratch{}
	}

	scratch.speeds = scratch.speeds[:0]
	var center r2.Vec
	for _, p := range particles {
		speed := r2.Norm(p.Velocity)
		scratch.speeds = append(scratch.speeds, speed)
		out.KineticEnergy += 0.5 * speed * speed
		center = r2.Add(center, p.Position)
	}
	center = r2.Scale(1/float64(n), center)
	out.CenterX, out.CenterY = center.X, center.Y
	out.SpeedMean = stat.Mean(scratch.speeds, nil)
	out.SpeedMax = floats.Max(scratch.speeds)

	if len(densities) >= n {
		d := densities[:n]
		out.DensityMean, out.DensityStd = stat.PopMeanStdDev(d, nil)
		out.DensityMax = floats.Max(d)

		scratch.sorted = append(scratch.sorted[:0], d...)
		sort.Float64s(scratch.sorted)
		out.DensityP10 = Percentile(scratch.sorted, 0.10)
		out.DensityP90 = Percentile(scratch.sorted, 0.90)
	}

	return out
}

// Finite reports whether every field is a finite number.
func (s FluidStats) Finite() bool {
	for _, v := range []float64{
		s.DensityMean, s.DensityStd, s.DensityMax, s.DensityP10, s.DensityP90,
		s.SpeedMean, s.SpeedMax, s.KineticEnergy, s.CenterX, s.CenterY,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("stepped_frames", s.SteppedFrames),
		slog.Int("hand_frames", s.HandFrames),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Int64("zero_density", s.ZeroDensity),
		slog.Int64("coincident_pairs", s.CoincidentPair),
		slog.Int64("non_finite", s.NonFinite),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndFrame,
		"sim_time", s.SimTimeSec,
		"stepped_frames", s.SteppedFrames,
		"particles", s.Particles,
		"density_mean", s.DensityMean,
		"density_p90", s.DensityP90,
		"speed_max", s.SpeedMax,
		"kinetic_energy", s.KineticEnergy,
		"anomalies", s.AnomalyCounts.Total(),
	)
}
