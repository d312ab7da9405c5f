package game

import "log/slog"

// flushTelemetry closes the stats window when it is full and fans the
// results out to the log, the callback and the CSV files.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.frame) {
		return
	}

	stats := g.collector.Flush(g.frame, g.sim.Particles(), g.sim.Densities())
	perfStats := g.perfCollector.Stats()

	if !stats.FluidStats.Finite() {
		slog.Warn("non-finite fluid stats", "frame", g.frame)
	}

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
