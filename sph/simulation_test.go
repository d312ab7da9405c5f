package sph

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// countingDiagnostics records anomaly counts for assertions.
type countingDiagnostics struct {
	zeroDensity atomic.Int64
	coincident  atomic.Int64
	nonFinite   atomic.Int64
}

func (d *countingDiagnostics) ZeroDensity(int, float64) { d.zeroDensity.Add(1) }
func (d *countingDiagnostics) CoincidentPair(int, int)  { d.coincident.Add(1) }
func (d *countingDiagnostics) NonFinite(int)            { d.nonFinite.Add(1) }

func testParticleInfo(count int) ParticleInfo {
	return ParticleInfo{
		Count:        count,
		Radius:       0.02,
		Spacing:      0,
		DefaultColor: Color{R: 1, G: 1, B: 1, A: 1},
	}
}

func testPhysicsInfo() PhysicsInfo {
	return PhysicsInfo{
		Gravity:          9.8,
		BoundaryDamping:  0.9,
		CollisionDamping: 0.9,
		Substeps:         8,
		RestDensity:      50,
		PressureConstant: 2,
		SmoothingRadius:  0.1,
	}
}

func testBox() BoundingBox {
	return BoundingBox{Left: -1.6, Right: 1.6, Bottom: -1, Top: 1}
}

func newTestSim(t *testing.T, particles ParticleInfo, physics PhysicsInfo, opts ...Option) *Simulation {
	t.Helper()
	s, err := New(particles, physics, testBox(), NewHand(0.1, 0.5), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func snapshot(s *Simulation) []Particle {
	return append([]Particle(nil), s.Particles()...)
}

func TestArrangeParticlesDeterministic(t *testing.T) {
	a := newTestSim(t, testParticleInfo(306), testPhysicsInfo())
	b := newTestSim(t, testParticleInfo(306), testPhysicsInfo())

	pa, pb := a.Particles(), b.Particles()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("particle %d differs: %v vs %v", i, pa[i], pb[i])
		}
	}

	// Re-arranging after motion restores the same layout
	a.Update(1.0 / 60)
	a.ArrangeParticles()
	for i, p := range a.Particles() {
		if p != pb[i] {
			t.Fatalf("particle %d after re-arrange: %v, want %v", i, p, pb[i])
		}
	}
}

func TestArrangeParticlesNoOverlap(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		spacing float64
	}{
		{name: "touching", count: 100, spacing: 0},
		{name: "spaced", count: 100, spacing: 0.01},
		{name: "partial row", count: 4, spacing: 0.01},
		{name: "ragged", count: 10, spacing: 0.005},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := testParticleInfo(tc.count)
			info.Spacing = tc.spacing
			s := newTestSim(t, info, testPhysicsInfo())
			ps := s.Particles()

			step := info.Radius + info.Spacing
			minDist := math.Inf(1)
			for i := range ps {
				if ps[i].Velocity != (r2.Vec{}) {
					t.Errorf("particle %d has velocity %v, want zero", i, ps[i].Velocity)
				}
				for j := i + 1; j < len(ps); j++ {
					minDist = min(minDist, r2.Norm(r2.Sub(ps[i].Position, ps[j].Position)))
				}
			}
			if !(minDist > 0) {
				t.Fatalf("min pairwise distance %g, want > 0", minDist)
			}
			if math.Abs(minDist-step) > 1e-12 {
				t.Errorf("min pairwise distance %g, want radius+spacing %g", minDist, step)
			}
			for i, a := range s.RenderAttrs() {
				if a.Color != info.DefaultColor || a.Radius != info.Radius {
					t.Errorf("attr %d = %+v, want default color and radius", i, a)
				}
			}
		})
	}
}

func TestArrangeParticlesExtentScalesWithSqrtCount(t *testing.T) {
	for _, count := range []int{1, 4, 9, 10, 100, 306} {
		info := testParticleInfo(count)
		s := newTestSim(t, info, testPhysicsInfo())

		xs := make([]float64, count)
		ys := make([]float64, count)
		for i, p := range s.Particles() {
			xs[i], ys[i] = p.Position.X, p.Position.Y
		}

		side := math.Ceil(math.Sqrt(float64(count)))
		want := (side - 1) * (info.Radius + info.Spacing)
		if got := floats.Max(xs) - floats.Min(xs); math.Abs(got-want) > 1e-9 {
			t.Errorf("count %d: x extent %g, want %g", count, got, want)
		}
		rows := math.Ceil(float64(count) / side)
		wantY := (rows - 1) * (info.Radius + info.Spacing)
		if got := floats.Max(ys) - floats.Min(ys); math.Abs(got-wantY) > 1e-9 {
			t.Errorf("count %d: y extent %g, want %g", count, got, wantY)
		}

		// Grid is centered on the box along x
		if mid := (floats.Max(xs) + floats.Min(xs)) / 2; math.Abs(mid) > 1e-9 {
			t.Errorf("count %d: grid centered at x=%g, want 0", count, mid)
		}
	}
}

func TestPressureAccelerationsCancel(t *testing.T) {
	physics := testPhysicsInfo()
	physics.Gravity = 0
	physics.BoundaryDamping = 1
	info := testParticleInfo(144)
	s := newTestSim(t, info, physics, WithWorkers(4))

	s.evaluate(s.positions, s.velocities, s.accel)

	var sum r2.Vec
	var magnitude float64
	for i := 0; i < info.Count; i++ {
		sum = r2.Add(sum, s.accel[i])
		magnitude += r2.Norm(s.accel[i])
	}
	if magnitude == 0 {
		t.Fatal("expected non-zero pressure accelerations in a packed grid")
	}
	if r2.Norm(sum) > 1e-9*magnitude {
		t.Errorf("net pressure acceleration %v not ≈ 0 (total magnitude %g)", sum, magnitude)
	}
}

func TestCoincidentParticlesUseFallbackDirection(t *testing.T) {
	physics := testPhysicsInfo()
	physics.Gravity = 0
	diag := &countingDiagnostics{}
	s := newTestSim(t, testParticleInfo(2), physics, WithDiagnostics(diag), WithSeed(99))

	s.positions[0] = r2.Vec{X: 0.1, Y: 0.1}
	s.positions[1] = r2.Vec{X: 0.1, Y: 0.1}
	s.evaluate(s.positions, s.velocities, s.accel)

	a0, a1 := s.accel[0], s.accel[1]
	if !finite(a0) || !finite(a1) {
		t.Fatalf("non-finite accelerations %v %v", a0, a1)
	}
	if r2.Norm(a0) == 0 {
		t.Fatal("coincident pair produced no pressure force")
	}
	if sum := r2.Add(a0, a1); r2.Norm(sum) > 1e-9*r2.Norm(a0) {
		t.Errorf("coincident pair forces not opposite: %v + %v", a0, a1)
	}
	if diag.coincident.Load() == 0 {
		t.Error("coincident pair was not reported")
	}

	// Same seed, same direction
	again := fallbackDirection(99, 0, 1)
	if again != fallbackDirection(99, 0, 1) {
		t.Error("fallback direction is not reproducible")
	}
	if flipped := fallbackDirection(99, 1, 0); flipped != r2.Scale(-1, again) {
		t.Errorf("fallback direction not antisymmetric: %v vs %v", flipped, again)
	}
	if n := r2.Norm(again); math.Abs(n-1) > 1e-12 {
		t.Errorf("fallback direction norm = %g, want 1", n)
	}
}

func TestNonFiniteParticleIsClampedAndReported(t *testing.T) {
	diag := &countingDiagnostics{}
	s := newTestSim(t, testParticleInfo(100), testPhysicsInfo(), WithDiagnostics(diag))

	s.positions[0] = r2.Vec{X: math.NaN(), Y: math.NaN()}
	s.Update(1.0 / 60)

	for i, p := range s.Particles() {
		if !finite(p.Position) || !finite(p.Velocity) {
			t.Fatalf("particle %d not finite after update: %+v", i, p)
		}
	}
	for i, d := range s.Densities() {
		if !(d > 0) || math.IsInf(d, 0) {
			t.Fatalf("density %d = %g, want positive finite", i, d)
		}
	}
	if diag.zeroDensity.Load() == 0 {
		t.Error("zero density was not reported")
	}
	if diag.nonFinite.Load() == 0 {
		t.Error("non-finite particle was not reported")
	}
}

func TestBoundaryResolution(t *testing.T) {
	box := testBox()
	const r = 0.02
	const damping = 0.5

	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{
			name:    "left",
			pos:     r2.Vec{X: box.Left - 0.1, Y: 0},
			vel:     r2.Vec{X: -2, Y: 1},
			wantPos: r2.Vec{X: box.Left + r, Y: 0},
			wantVel: r2.Vec{X: 1, Y: 1},
		},
		{
			name:    "right",
			pos:     r2.Vec{X: box.Right, Y: 0.3},
			vel:     r2.Vec{X: 4, Y: 0},
			wantPos: r2.Vec{X: box.Right - r, Y: 0.3},
			wantVel: r2.Vec{X: -2, Y: 0},
		},
		{
			name:    "bottom",
			pos:     r2.Vec{X: 0.5, Y: box.Bottom - 3},
			vel:     r2.Vec{X: 0.25, Y: -1},
			wantPos: r2.Vec{X: 0.5, Y: box.Bottom + r},
			wantVel: r2.Vec{X: 0.25, Y: 0.5},
		},
		{
			name:    "top",
			pos:     r2.Vec{X: -0.5, Y: box.Top + 0.01},
			vel:     r2.Vec{X: 0, Y: 3},
			wantPos: r2.Vec{X: -0.5, Y: box.Top - r},
			wantVel: r2.Vec{X: 0, Y: -1.5},
		},
		{
			name:    "corner",
			pos:     r2.Vec{X: box.Right + 1, Y: box.Top + 1},
			vel:     r2.Vec{X: 1, Y: 2},
			wantPos: r2.Vec{X: box.Right - r, Y: box.Top - r},
			wantVel: r2.Vec{X: -0.5, Y: -1},
		},
		{
			name:    "inside",
			pos:     r2.Vec{X: 0.1, Y: -0.2},
			vel:     r2.Vec{X: 1, Y: -1},
			wantPos: r2.Vec{X: 0.1, Y: -0.2},
			wantVel: r2.Vec{X: 1, Y: -1},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			physics := testPhysicsInfo()
			physics.BoundaryDamping = damping
			info := testParticleInfo(1)
			info.Radius = r
			s := newTestSim(t, info, physics)

			s.positions[0], s.velocities[0] = tc.pos, tc.vel
			s.resolveBoundary(0)

			if got := s.positions[0]; r2.Norm(r2.Sub(got, tc.wantPos)) > 1e-12 {
				t.Errorf("position = %v, want %v", got, tc.wantPos)
			}
			if got := s.velocities[0]; r2.Norm(r2.Sub(got, tc.wantVel)) > 1e-12 {
				t.Errorf("velocity = %v, want %v", got, tc.wantVel)
			}
		})
	}
}

func TestUpdateFreeFall(t *testing.T) {
	physics := testPhysicsInfo()
	physics.Gravity = 9.8
	physics.Substeps = 1
	physics.SmoothingRadius = 0.05

	// 2×2 grid with step 0.22 > 2h: no particle sees another
	info := ParticleInfo{Count: 4, Radius: 0.01, Spacing: 0.2}
	s := newTestSim(t, info, physics)

	if !s.Update(1.0 / 60) {
		t.Fatal("Update returned false on an unpaused simulation")
	}

	want := -9.8 / 60
	for i, p := range s.Particles() {
		if math.Abs(p.Velocity.Y-want) > 1e-9 {
			t.Errorf("particle %d velocity.y = %g, want %g", i, p.Velocity.Y, want)
		}
		if math.Abs(p.Velocity.X) > 1e-12 {
			t.Errorf("particle %d velocity.x = %g, want 0", i, p.Velocity.X)
		}
	}
}

func TestPauseAndSingleStep(t *testing.T) {
	s := newTestSim(t, testParticleInfo(50), testPhysicsInfo())
	s.SetPaused(true)

	before := snapshot(s)
	for i := 0; i < 5; i++ {
		if s.Update(1.0 / 60) {
			t.Fatal("Update advanced while paused")
		}
	}
	for i, p := range s.Particles() {
		if p != before[i] {
			t.Fatalf("particle %d changed while paused", i)
		}
	}

	s.ProceedFrame()
	if !s.StepArmed() {
		t.Fatal("ProceedFrame did not arm a step")
	}
	if !s.Update(1.0 / 60) {
		t.Fatal("armed step did not advance")
	}
	if s.StepArmed() {
		t.Fatal("step flag not consumed by Update")
	}
	stepped := snapshot(s)
	if stepped[0] == before[0] {
		t.Fatal("particle did not move during the single step")
	}

	if s.Update(1.0 / 60) {
		t.Fatal("Update advanced after the step was consumed")
	}
	for i, p := range s.Particles() {
		if p != stepped[i] {
			t.Fatalf("particle %d changed after step was consumed", i)
		}
	}

	s.HandleEvent(InputEvent{Kind: EventTogglePause})
	if s.Paused() {
		t.Fatal("toggle event did not unpause")
	}
	if !s.Update(1.0 / 60) {
		t.Fatal("Update did not advance after unpausing")
	}
}

func TestUpdateRejectsNonPositiveFrameTime(t *testing.T) {
	s := newTestSim(t, testParticleInfo(10), testPhysicsInfo())
	for _, ft := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if s.Update(ft) {
			t.Errorf("Update(%g) advanced", ft)
		}
	}
}

func TestWorkerCountDoesNotChangeResult(t *testing.T) {
	info := testParticleInfo(300)
	serial := newTestSim(t, info, testPhysicsInfo(), WithWorkers(1))
	parallel := newTestSim(t, info, testPhysicsInfo(), WithWorkers(6))

	for f := 0; f < 10; f++ {
		serial.Update(1.0 / 60)
		parallel.Update(1.0 / 60)
	}

	ps, pp := serial.Particles(), parallel.Particles()
	for i := range ps {
		if ps[i] != pp[i] {
			t.Fatalf("particle %d differs between 1 and 6 workers: %v vs %v", i, ps[i], pp[i])
		}
	}
}

func TestLongRunStaysFiniteAndInside(t *testing.T) {
	s := newTestSim(t, testParticleInfo(306), testPhysicsInfo(), WithWorkers(4))
	h := s.Hand()
	h.Position = r2.Vec{X: 0, Y: -0.5}
	h.State = HandPushing
	if err := s.SetHand(h); err != nil {
		t.Fatalf("SetHand: %v", err)
	}

	for f := 0; f < 120; f++ {
		s.Update(1.0 / 60)
	}

	box := s.BoundingBox()
	r := s.ParticleInfo().Radius
	for i, p := range s.Particles() {
		if !finite(p.Position) || !finite(p.Velocity) {
			t.Fatalf("particle %d not finite: %+v", i, p)
		}
		if p.Position.X < box.Left+r-1e-12 || p.Position.X > box.Right-r+1e-12 ||
			p.Position.Y < box.Bottom+r-1e-12 || p.Position.Y > box.Top-r+1e-12 {
			t.Fatalf("particle %d escaped the box: %v", i, p.Position)
		}
	}
}

func TestCollisionStageSeparatesOverlaps(t *testing.T) {
	physics := testPhysicsInfo()
	physics.ResolveCollisions = true
	physics.CollisionDamping = 0.5
	info := testParticleInfo(2)
	s := newTestSim(t, info, physics)

	s.positions[0] = r2.Vec{X: 0, Y: 0}
	s.positions[1] = r2.Vec{X: 0.01, Y: 0}
	s.velocities[0] = r2.Vec{X: 1, Y: 0}
	s.velocities[1] = r2.Vec{X: -1, Y: 0}

	s.resolveCollisions()

	d := r2.Norm(r2.Sub(s.positions[1], s.positions[0]))
	if math.Abs(d-2*info.Radius) > 1e-12 {
		t.Errorf("separation = %g, want %g", d, 2*info.Radius)
	}
	if got := s.velocities[0].X; math.Abs(got-(-0.5)) > 1e-12 {
		t.Errorf("v0.x = %g, want -0.5", got)
	}
	if got := s.velocities[1].X; math.Abs(got-0.5) > 1e-12 {
		t.Errorf("v1.x = %g, want 0.5", got)
	}
}

func TestCollisionStageOffByDefault(t *testing.T) {
	physics := testPhysicsInfo()
	physics.Gravity = 0
	physics.PressureConstant = 0
	info := testParticleInfo(2)
	s := newTestSim(t, info, physics)

	s.positions[0] = r2.Vec{X: 0, Y: 0}
	s.positions[1] = r2.Vec{X: 0.01, Y: 0}
	s.Update(1.0 / 60)

	d := r2.Norm(r2.Sub(s.positions[1], s.positions[0]))
	if d >= 2*info.Radius {
		t.Errorf("overlap resolved with collisions disabled: distance %g", d)
	}
}

func TestSettersRejectInvalidSnapshots(t *testing.T) {
	s := newTestSim(t, testParticleInfo(10), testPhysicsInfo(), WithCapacity(64))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"count over capacity", s.SetParticleInfo(testParticleInfo(65)), ErrCapacityExceeded},
		{"negative count", s.SetParticleInfo(testParticleInfo(-1)), ErrInvalidCount},
		{"zero radius", s.SetParticleInfo(ParticleInfo{Count: 4}), ErrInvalidRadius},
		{"zero smoothing radius", s.SetPhysicsInfo(PhysicsInfo{Substeps: 1}), ErrInvalidSmoothingRadius},
		{"zero substeps", s.SetPhysicsInfo(PhysicsInfo{SmoothingRadius: 0.1}), ErrInvalidSubsteps},
		{"damping above one", s.SetPhysicsInfo(PhysicsInfo{SmoothingRadius: 0.1, Substeps: 1, BoundaryDamping: 2}), ErrInvalidDamping},
		{"flat box", s.SetBoundingBox(BoundingBox{Left: 0, Right: 1, Bottom: 1, Top: 1}), ErrInvalidBounds},
		{"zero hand radius", s.SetHand(Hand{}), ErrInvalidHand},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.want) {
				t.Errorf("error = %v, want %v", tc.err, tc.want)
			}
		})
	}

	if got := s.ParticleInfo().Count; got != 10 {
		t.Errorf("rejected setter changed count to %d", got)
	}
	if got := s.PhysicsInfo().SmoothingRadius; got != 0.1 {
		t.Errorf("rejected setter changed smoothing radius to %g", got)
	}
}

func TestSetParticleInfoGrowsAtRest(t *testing.T) {
	s := newTestSim(t, testParticleInfo(10), testPhysicsInfo())
	s.Update(1.0 / 60)

	info := testParticleInfo(20)
	info.DefaultColor = Color{R: 0.2, G: 0.4, B: 0.8, A: 1}
	if err := s.SetParticleInfo(info); err != nil {
		t.Fatalf("SetParticleInfo: %v", err)
	}

	ps := s.Particles()
	if len(ps) != 20 {
		t.Fatalf("len(Particles()) = %d, want 20", len(ps))
	}
	for i := 10; i < 20; i++ {
		if ps[i].Velocity != (r2.Vec{}) {
			t.Errorf("new particle %d velocity %v, want zero", i, ps[i].Velocity)
		}
	}
	for i, a := range s.RenderAttrs() {
		if a.Color != info.DefaultColor {
			t.Errorf("attr %d color %v, want %v", i, a.Color, info.DefaultColor)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := New(testParticleInfo(20), testPhysicsInfo(), testBox(), NewHand(0.1, 0.5), WithCapacity(10))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Errorf("New with count > capacity: error = %v, want %v", err, ErrCapacityExceeded)
	}
}
