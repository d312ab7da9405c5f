package telemetry

import "github.com/pthm-cable/sph/sph"

// Collector accumulates per-frame events within windows and produces WindowStats.
type Collector struct {
	windowFrames int32

	anomalies *Anomalies
	scratch   StatsScratch

	// Current window tracking
	windowStartFrame int32
	simTime          float64
	steppedFrames    int
	handFrames       int
}

// NewCollector creates a new stats collector.
// windowFrames: frames per window; anomalies: the sink handed to the simulation
// (may be nil).
func NewCollector(windowFrames int, anomalies *Anomalies) *Collector {
	if windowFrames < 1 {
		windowFrames = 1
	}
	if anomalies == nil {
		anomalies = &Anomalies{}
	}
	return &Collector{
		windowFrames: int32(windowFrames),
		anomalies:    anomalies,
	}
}

// Anomalies returns the diagnostics sink whose counts each window reports.
func (c *Collector) Anomalies() *Anomalies {
	return c.anomalies
}

// RecordFrame records the outcome of one Update call.
func (c *Collector) RecordFrame(stepped bool, frameTime float64, hand sph.HandState) {
	if stepped {
		c.steppedFrames++
		c.simTime += frameTime
	}
	if hand != sph.HandIdle {
		c.handFrames++
	}
}

// SimTime returns the simulated seconds advanced so far.
func (c *Collector) SimTime() float64 {
	return c.simTime
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int32) bool {
	return currentFrame-c.windowStartFrame >= c.windowFrames
}

// Flush produces a WindowStats from the current particle state and resets
// the window counters.
func (c *Collector) Flush(currentFrame int32, particles []sph.Particle, densities []float64) WindowStats {
	stats := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       c.simTime,
		SteppedFrames:    c.steppedFrames,
		HandFrames:       c.handFrames,
		FluidStats:       ComputeFluidStats(particles, densities, &c.scratch),
		AnomalyCounts:    c.anomalies.Swap(),
	}

	c.windowStartFrame = currentFrame
	c.steppedFrames = 0
	c.handFrames = 0

	return stats
}

// WindowFrames returns the number of frames per window.
func (c *Collector) WindowFrames() int32 {
	return c.windowFrames
}
