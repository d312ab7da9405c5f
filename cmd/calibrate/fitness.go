package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/sph/config"
	"github.com/pthm-cable/sph/game"
	"github.com/pthm-cable/sph/telemetry"
)

// Score weights and penalties.
const (
	weightCompression = 1.0  // density std / mean
	weightKinetic     = 4.0  // kinetic energy per particle
	penaltyAnomaly    = 0.5  // any corrected anomaly in a window
	penaltyInvalid    = 1e3  // config rejected or state blew up
	warmupWindows     = 2    // windows skipped while the fluid settles
)

// FitnessEvaluator runs headless simulations and scores the settled state.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  int32
	seeds      []uint64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastScore   windowScore
}

// windowScore is the mean of each score component over the scored windows.
type windowScore struct {
	Compression float64
	Kinetic     float64
	Anomalies   float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxFrames int32, seeds []uint64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastScore returns the components of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() windowScore {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}

// Evaluate computes fitness for a raw parameter vector (lower = better),
// averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	fitness := make([]float64, len(fe.seeds))
	scores := make([]windowScore, len(fe.seeds))

	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint64) {
			defer wg.Done()
			windows, ok := fe.runSimulation(x, s)
			if !ok {
				fitness[idx] = penaltyInvalid
				return
			}
			scores[idx] = scoreWindows(windows)
			fitness[idx] = scores[idx].total()
		}(i, seed)
	}
	wg.Wait()

	avg := stat.Mean(fitness, nil)

	var mean windowScore
	for _, s := range scores {
		mean.Compression += s.Compression / float64(len(scores))
		mean.Kinetic += s.Kinetic / float64(len(scores))
		mean.Anomalies += s.Anomalies / float64(len(scores))
	}

	fe.mu.Lock()
	fe.bestFitness = min(fe.bestFitness, avg)
	fe.lastScore = mean
	fe.mu.Unlock()

	return avg
}

// runSimulation executes a single headless run and returns its stats windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint64) ([]telemetry.WindowStats, bool) {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	var windows []telemetry.WindowStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:     seed,
		Headless: true,
		Config:   &cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, false
	}
	defer g.Unload()

	for g.Frame() < fe.maxFrames {
		g.UpdateHeadless()
	}

	for _, w := range windows {
		if !w.FluidStats.Finite() {
			return nil, false
		}
	}
	return windows, true
}

// scoreWindows averages the score components over the windows past warmup.
func scoreWindows(windows []telemetry.WindowStats) windowScore {
	if len(windows) <= warmupWindows {
		return windowScore{Compression: penaltyInvalid}
	}
	valid := windows[warmupWindows:]

	compression := make([]float64, 0, len(valid))
	kinetic := make([]float64, 0, len(valid))
	anomalies := make([]float64, 0, len(valid))
	for _, w := range valid {
		if w.Particles == 0 || w.DensityMean <= 0 {
			continue
		}
		compression = append(compression, w.DensityStd/w.DensityMean)
		kinetic = append(kinetic, w.KineticEnergy/float64(w.Particles))
		if w.AnomalyCounts.Total() > 0 {
			anomalies = append(anomalies, 1)
		} else {
			anomalies = append(anomalies, 0)
		}
	}
	if len(compression) == 0 {
		return windowScore{Compression: penaltyInvalid}
	}

	return windowScore{
		Compression: stat.Mean(compression, nil),
		Kinetic:     stat.Mean(kinetic, nil),
		Anomalies:   stat.Mean(anomalies, nil),
	}
}

// total combines the components into a scalar fitness.
func (s windowScore) total() float64 {
	return weightCompression*s.Compression + weightKinetic*s.Kinetic + penaltyAnomaly*s.Anomalies
}
