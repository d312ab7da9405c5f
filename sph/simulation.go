package sph

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Option configures a Simulation.
type Option func(*options)

type options struct {
	capacity int
	workers  int
	seed     uint64
	diag     Diagnostics
	recorder PhaseRecorder
}

// WithCapacity sets the fixed particle buffer capacity (default MaxParticles).
func WithCapacity(n int) Option { return func(o *options) { o.capacity = n } }

// WithWorkers sets the worker pool size (default GOMAXPROCS).
func WithWorkers(n int) Option { return func(o *options) { o.workers = n } }

// WithSeed seeds the fallback directions used for coincident particles.
func WithSeed(seed uint64) Option { return func(o *options) { o.seed = seed } }

// WithDiagnostics sets the sink for corrected arithmetic anomalies.
func WithDiagnostics(d Diagnostics) Option { return func(o *options) { o.diag = d } }

// WithPhaseRecorder sets the receiver of pipeline phase timings.
func WithPhaseRecorder(r PhaseRecorder) Option { return func(o *options) { o.recorder = r } }

// Simulation owns the particle buffers and configuration snapshots.
//
// All methods must be called from a single goroutine. Setters replace the
// snapshot consumed by the next Update; they never run concurrently with one.
type Simulation struct {
	capacity int
	seed     uint64
	diag     Diagnostics
	recorder PhaseRecorder
	pool     *WorkerPool
	grid     *SpatialHash

	particleInfo ParticleInfo
	physics      PhysicsInfo
	box          BoundingBox
	hand         Hand

	// Fixed-capacity buffers, allocated once.
	positions      []r2.Vec
	velocities     []r2.Vec
	predPositions  []r2.Vec
	predVelocities []r2.Vec
	accel          []r2.Vec
	predAccel      []r2.Vec
	densities      []float64
	attrs          []RenderAttr
	view           []Particle

	paused   bool
	stepOnce bool
}

// New validates the snapshots, allocates buffers at capacity and arranges
// the particles into their starting grid.
func New(particles ParticleInfo, physics PhysicsInfo, box BoundingBox, hand Hand, opts ...Option) (*Simulation, error) {
	o := options{
		capacity: MaxParticles,
		seed:     1,
		diag:     nopDiagnostics{},
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.capacity < 1 {
		return nil, fmt.Errorf("capacity %d: %w", o.capacity, ErrCapacityExceeded)
	}
	if o.diag == nil {
		o.diag = nopDiagnostics{}
	}
	if o.recorder == nil {
		o.recorder = nopRecorder{}
	}

	if err := particles.Validate(o.capacity); err != nil {
		return nil, fmt.Errorf("particle info: %w", err)
	}
	if err := physics.Validate(); err != nil {
		return nil, fmt.Errorf("physics info: %w", err)
	}
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("bounding box: %w", err)
	}
	if err := hand.Validate(); err != nil {
		return nil, fmt.Errorf("hand: %w", err)
	}

	n := o.capacity
	s := &Simulation{
		capacity:       n,
		seed:           o.seed,
		diag:           o.diag,
		recorder:       o.recorder,
		pool:           NewWorkerPool(o.workers),
		grid:           NewSpatialHash(n),
		particleInfo:   particles,
		physics:        physics,
		box:            box,
		hand:           hand,
		positions:      make([]r2.Vec, n),
		velocities:     make([]r2.Vec, n),
		predPositions:  make([]r2.Vec, n),
		predVelocities: make([]r2.Vec, n),
		accel:          make([]r2.Vec, n),
		predAccel:      make([]r2.Vec, n),
		densities:      make([]float64, n),
		attrs:          make([]RenderAttr, n),
		view:           make([]Particle, n),
	}
	s.ArrangeParticles()
	return s, nil
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.pool.Close()
}

// Capacity returns the fixed buffer capacity.
func (s *Simulation) Capacity() int { return s.capacity }

// ParticleInfo returns the current particle snapshot.
func (s *Simulation) ParticleInfo() ParticleInfo { return s.particleInfo }

// PhysicsInfo returns the current physics snapshot.
func (s *Simulation) PhysicsInfo() PhysicsInfo { return s.physics }

// BoundingBox returns the current domain.
func (s *Simulation) BoundingBox() BoundingBox { return s.box }

// Hand returns the current interaction source.
func (s *Simulation) Hand() Hand { return s.hand }

// SetParticleInfo replaces the particle snapshot. Slots that become active
// are placed at their arranged grid position at rest.
func (s *Simulation) SetParticleInfo(info ParticleInfo) error {
	if err := info.Validate(s.capacity); err != nil {
		return fmt.Errorf("particle info: %w", err)
	}
	prev := s.particleInfo.Count
	s.particleInfo = info

	for i := 0; i < info.Count; i++ {
		s.attrs[i] = RenderAttr{Color: info.DefaultColor, Radius: info.Radius}
	}
	for i := prev; i < info.Count; i++ {
		s.placeAtRest(i)
	}
	return nil
}

// SetPhysicsInfo replaces the physics snapshot.
func (s *Simulation) SetPhysicsInfo(info PhysicsInfo) error {
	if err := info.Validate(); err != nil {
		return fmt.Errorf("physics info: %w", err)
	}
	s.physics = info
	return nil
}

// SetBoundingBox replaces the domain.
func (s *Simulation) SetBoundingBox(box BoundingBox) error {
	if err := box.Validate(); err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}
	s.box = box
	return nil
}

// SetHand replaces the interaction source.
func (s *Simulation) SetHand(h Hand) error {
	if err := h.Validate(); err != nil {
		return fmt.Errorf("hand: %w", err)
	}
	s.hand = h
	return nil
}

// ArrangeParticles resets the active particles into a square grid centered
// on the box, at rest and with the default color.
func (s *Simulation) ArrangeParticles() {
	for i := 0; i < s.particleInfo.Count; i++ {
		s.placeAtRest(i)
		s.attrs[i] = RenderAttr{Color: s.particleInfo.DefaultColor, Radius: s.particleInfo.Radius}
	}
}

// placeAtRest puts particle i at its grid slot with zero velocity.
func (s *Simulation) placeAtRest(i int) {
	info := s.particleInfo
	side := int(math.Ceil(math.Sqrt(float64(info.Count))))
	step := info.Radius + info.Spacing
	offset := -float64(side-1) / 2 * step
	center := s.box.Center()

	s.positions[i] = r2.Vec{
		X: center.X + offset + float64(i%side)*step,
		Y: center.Y + offset + float64(i/side)*step,
	}
	s.velocities[i] = r2.Vec{}
}

// Update advances the simulation by one frame of frameTime seconds split
// into PhysicsInfo.Substeps substeps. It returns false without touching any
// state when paused (and no step is armed) or when frameTime is not positive.
func (s *Simulation) Update(frameTime float64) bool {
	if !(frameTime > 0) || math.IsInf(frameTime, 0) {
		return false
	}
	if s.paused && !s.stepOnce {
		return false
	}

	n := s.physics.Substeps
	dt := frameTime / float64(n)
	for k := 0; k < n; k++ {
		s.substep(dt)
	}

	s.FrameDone()
	return true
}

// Paused reports whether Update is gated.
func (s *Simulation) Paused() bool { return s.paused }

// SetPaused sets the pause flag.
func (s *Simulation) SetPaused(p bool) { s.paused = p }

// TogglePause flips the pause flag and returns the new value.
func (s *Simulation) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// ProceedFrame lets exactly one Update run while paused.
func (s *Simulation) ProceedFrame() { s.stepOnce = true }

// FrameDone consumes the single-step flag.
func (s *Simulation) FrameDone() { s.stepOnce = false }

// StepArmed reports whether a single step is pending.
func (s *Simulation) StepArmed() bool { return s.stepOnce }

// HandleEvent routes an input event: pause and step events drive the
// simulation, pointer events drive the hand.
func (s *Simulation) HandleEvent(ev InputEvent) {
	switch ev.Kind {
	case EventTogglePause:
		s.TogglePause()
	case EventStep:
		s.ProceedFrame()
	default:
		s.hand.HandleEvent(ev)
	}
}

// Particles returns the active particles. The slice is owned by the
// Simulation and rewritten on every call; callers must not modify it.
func (s *Simulation) Particles() []Particle {
	n := s.particleInfo.Count
	for i := 0; i < n; i++ {
		s.view[i] = Particle{Position: s.positions[i], Velocity: s.velocities[i]}
	}
	return s.view[:n]
}

// RenderAttrs returns the display attributes of the active particles.
func (s *Simulation) RenderAttrs() []RenderAttr {
	return s.attrs[:s.particleInfo.Count]
}

// Densities returns the densities from the last force evaluation, which is
// the predicted state of the final substep.
func (s *Simulation) Densities() []float64 {
	return s.densities[:s.particleInfo.Count]
}
