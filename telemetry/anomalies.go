package telemetry

import (
	"log/slog"
	"sync/atomic"

	"github.com/pthm-cable/sph/sph"
)

// Anomalies counts arithmetic corrections reported by the simulation.
// Methods are called from worker goroutines.
type Anomalies struct {
	zeroDensity    atomic.Int64
	coincidentPair atomic.Int64
	nonFinite      atomic.Int64
}

var _ sph.Diagnostics = (*Anomalies)(nil)

// AnomalyCounts is a point-in-time copy of the counters.
type AnomalyCounts struct {
	ZeroDensity    int64 `csv:"zero_density"`
	CoincidentPair int64 `csv:"coincident_pairs"`
	NonFinite      int64 `csv:"non_finite"`
}

// Total returns the sum of all counters.
func (c AnomalyCounts) Total() int64 {
	return c.ZeroDensity + c.CoincidentPair + c.NonFinite
}

// ZeroDensity implements sph.Diagnostics.
func (a *Anomalies) ZeroDensity(i int, raw float64) {
	a.zeroDensity.Add(1)
}

// CoincidentPair implements sph.Diagnostics.
func (a *Anomalies) CoincidentPair(i, j int) {
	a.coincidentPair.Add(1)
}

// NonFinite implements sph.Diagnostics. Rare enough to log individually.
func (a *Anomalies) NonFinite(i int) {
	a.nonFinite.Add(1)
	slog.Warn("non-finite particle reset", "particle", i)
}

// Counts returns the current counter values.
func (a *Anomalies) Counts() AnomalyCounts {
	return AnomalyCounts{
		ZeroDensity:    a.zeroDensity.Load(),
		CoincidentPair: a.coincidentPair.Load(),
		NonFinite:      a.nonFinite.Load(),
	}
}

// Swap returns the current values and resets the counters to zero.
func (a *Anomalies) Swap() AnomalyCounts {
	return AnomalyCounts{
		ZeroDensity:    a.zeroDensity.Swap(0),
		CoincidentPair: a.coincidentPair.Swap(0),
		NonFinite:      a.nonFinite.Swap(0),
	}
}
