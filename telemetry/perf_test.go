package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/sph/sph"
)

// fakeClock advances only when told to.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.clock = clock.Now
	return pc, clock
}

// phaseStep is one phase entered for a fixed duration.
type phaseStep struct {
	name string
	d    time.Duration
}

func runUpdate(pc *PerfCollector, clock *fakeClock, steps ...phaseStep) {
	pc.BeginUpdate()
	for _, s := range steps {
		pc.StartPhase(s.name)
		clock.Advance(s.d)
	}
	pc.EndUpdate()
}

func TestPerfCollectorPhaseShares(t *testing.T) {
	pc, clock := newTestCollector(10)

	// Two substeps per update; boundary closes each one
	for i := 0; i < 5; i++ {
		runUpdate(pc, clock,
			phaseStep{sph.PhaseSpatialHash, 1 * time.Millisecond},
			phaseStep{sph.PhaseDensity, 4 * time.Millisecond},
			phaseStep{sph.PhaseBoundary, 5 * time.Millisecond},
			phaseStep{sph.PhaseSpatialHash, 1 * time.Millisecond},
			phaseStep{sph.PhaseDensity, 4 * time.Millisecond},
			phaseStep{sph.PhaseBoundary, 5 * time.Millisecond},
		)
	}

	stats := pc.Stats()
	if stats.Updates != 5 {
		t.Errorf("Updates = %d, want 5", stats.Updates)
	}
	if stats.AvgUpdate != 20*time.Millisecond {
		t.Errorf("AvgUpdate = %v, want 20ms", stats.AvgUpdate)
	}
	if stats.AvgSubstep != 10*time.Millisecond {
		t.Errorf("AvgSubstep = %v, want 10ms", stats.AvgSubstep)
	}

	tests := []struct {
		phase   string
		wantAvg time.Duration
		wantPct float64
	}{
		{sph.PhaseSpatialHash, 2 * time.Millisecond, 10},
		{sph.PhaseDensity, 8 * time.Millisecond, 40},
		{sph.PhaseBoundary, 10 * time.Millisecond, 50},
	}
	for _, tc := range tests {
		t.Run(tc.phase, func(t *testing.T) {
			if got := stats.PhaseAvg[tc.phase]; got != tc.wantAvg {
				t.Errorf("PhaseAvg = %v, want %v", got, tc.wantAvg)
			}
			if got := stats.PhasePct[tc.phase]; math.Abs(got-tc.wantPct) > 1e-9 {
				t.Errorf("PhasePct = %v, want %v", got, tc.wantPct)
			}
		})
	}
	if got := stats.UpdatesPerSecond(); math.Abs(got-50) > 1e-9 {
		t.Errorf("UpdatesPerSecond = %v, want 50", got)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc, clock := newTestCollector(3)

	// Older updates fall out of the window
	for _, d := range []time.Duration{100, 100, 100, 1, 2, 3} {
		runUpdate(pc, clock, phaseStep{sph.PhaseDensity, d * time.Millisecond})
	}

	stats := pc.Stats()
	if stats.Updates != 3 {
		t.Errorf("Updates = %d, want 3", stats.Updates)
	}
	if stats.AvgUpdate != 2*time.Millisecond {
		t.Errorf("AvgUpdate = %v, want 2ms", stats.AvgUpdate)
	}
	if stats.MinUpdate != 1*time.Millisecond || stats.MaxUpdate != 3*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/3ms", stats.MinUpdate, stats.MaxUpdate)
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	pc, _ := newTestCollector(10)

	stats := pc.Stats()
	if stats.AvgUpdate != 0 || stats.Updates != 0 {
		t.Errorf("empty collector stats = %+v, want zero", stats)
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
	if stats.UpdatesPerSecond() != 0 {
		t.Errorf("UpdatesPerSecond = %v, want 0", stats.UpdatesPerSecond())
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	pc.RecordFrame()
	if stats := pc.Stats(); stats.FPS != 0 {
		t.Errorf("FPS after one frame = %v, want 0", stats.FPS)
	}

	clock.Advance(20 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration != 20*time.Millisecond {
		t.Errorf("FrameDuration = %v, want 20ms", stats.FrameDuration)
	}
	if math.Abs(stats.FPS-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", stats.FPS)
	}
}

func TestPerfCollectorRecordsSimulationPhases(t *testing.T) {
	const substeps = 3

	for _, collisions := range []bool{false, true} {
		name := "collisions off"
		if collisions {
			name = "collisions on"
		}
		t.Run(name, func(t *testing.T) {
			pc := NewPerfCollector(4)
			sim, err := sph.New(
				sph.ParticleInfo{Count: 100, Radius: 0.01, Spacing: 0.01},
				sph.PhysicsInfo{
					Gravity: 9.8, BoundaryDamping: 0.9, CollisionDamping: 0.9, Substeps: substeps,
					RestDensity: 100, PressureConstant: 1, SmoothingRadius: 0.1,
					ResolveCollisions: collisions,
				},
				sph.BoundingBox{Left: -1, Right: 1, Bottom: -1, Top: 1},
				sph.NewHand(0.1, 0.5),
				sph.WithPhaseRecorder(pc),
				sph.WithWorkers(2),
			)
			if err != nil {
				t.Fatalf("sph.New: %v", err)
			}
			defer sim.Close()

			for i := 0; i < 3; i++ {
				pc.BeginUpdate()
				if !sim.Update(1.0 / 60) {
					t.Fatal("Update returned false")
				}
				pc.EndUpdate()
			}

			stats := pc.Stats()
			if stats.Updates != 3 {
				t.Errorf("Updates = %d, want 3", stats.Updates)
			}
			for _, s := range pc.window[:pc.filled] {
				if s.substeps != substeps {
					t.Errorf("sample counted %d substeps, want %d", s.substeps, substeps)
				}
			}

			for _, phase := range sph.Phases {
				_, ok := stats.PhaseAvg[phase]
				want := phase != sph.PhaseCollisions || collisions
				if ok != want {
					t.Errorf("phase %q recorded = %v, want %v", phase, ok, want)
				}
			}

			var pctSum float64
			for _, pct := range stats.PhasePct {
				pctSum += pct
			}
			if pctSum > 100+1e-6 {
				t.Errorf("phase shares sum to %v%%, want <= 100", pctSum)
			}

			row := stats.ToCSV(3)
			if row.WindowEnd != 3 || row.AvgUpdateUS != stats.AvgUpdate.Microseconds() {
				t.Errorf("ToCSV = %+v", row)
			}
			if !collisions && row.CollisionsPct != 0 {
				t.Errorf("collisions share %v with the stage disabled", row.CollisionsPct)
			}
		})
	}
}
