// Package sph implements a 2D Smoothed-Particle-Hydrodynamics fluid simulation.
//
// Particles move under gravity, pairwise pressure forces, boundary reflection and
// a localized interaction force. Neighbor queries go through a spatial hash grid
// and per-particle work runs on a persistent worker pool.
package sph

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// MaxParticles is the default buffer capacity of a Simulation.
const MaxParticles = 10000

// Configuration errors returned by New and the snapshot setters.
var (
	ErrCapacityExceeded       = errors.New("particle count exceeds capacity")
	ErrInvalidCount           = errors.New("particle count must not be negative")
	ErrInvalidRadius          = errors.New("particle radius must be positive")
	ErrInvalidSpacing         = errors.New("particle spacing must not be negative")
	ErrInvalidSmoothingRadius = errors.New("smoothing radius must be positive")
	ErrInvalidSubsteps        = errors.New("substep count must be at least 1")
	ErrInvalidDamping         = errors.New("damping factor must be within [0, 1]")
	ErrInvalidBounds          = errors.New("bounding box must have positive extent")
	ErrInvalidHand            = errors.New("hand radius must be positive")
)

// Particle is the state of one fluid particle.
type Particle struct {
	Position r2.Vec
	Velocity r2.Vec
}

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RenderAttr holds the display attributes of one particle slot.
// The renderer reads it alongside Particles; physics never touches it.
type RenderAttr struct {
	Color  Color
	Radius float64
}

// ParticleInfo describes the active particle set.
type ParticleInfo struct {
	Count        int
	Radius       float64
	Spacing      float64
	DefaultColor Color
}

// Validate checks the info against a buffer capacity.
func (p ParticleInfo) Validate(capacity int) error {
	switch {
	case p.Count < 0:
		return fmt.Errorf("count %d: %w", p.Count, ErrInvalidCount)
	case p.Count > capacity:
		return fmt.Errorf("count %d > %d: %w", p.Count, capacity, ErrCapacityExceeded)
	case !(p.Radius > 0):
		return fmt.Errorf("radius %g: %w", p.Radius, ErrInvalidRadius)
	case p.Spacing < 0:
		return fmt.Errorf("spacing %g: %w", p.Spacing, ErrInvalidSpacing)
	}
	return nil
}

// PhysicsInfo holds the physical constants consumed by Update.
type PhysicsInfo struct {
	Gravity          float64
	BoundaryDamping  float64
	CollisionDamping float64
	Substeps         int
	RestDensity      float64
	PressureConstant float64
	SmoothingRadius  float64

	// ResolveCollisions enables the O(n²) pairwise penetration stage.
	ResolveCollisions bool
}

// Validate checks the physics constants.
func (p PhysicsInfo) Validate() error {
	switch {
	case !(p.SmoothingRadius > 0) || math.IsInf(p.SmoothingRadius, 0):
		return fmt.Errorf("smoothing radius %g: %w", p.SmoothingRadius, ErrInvalidSmoothingRadius)
	case p.Substeps < 1:
		return fmt.Errorf("substeps %d: %w", p.Substeps, ErrInvalidSubsteps)
	case p.BoundaryDamping < 0 || p.BoundaryDamping > 1:
		return fmt.Errorf("boundary damping %g: %w", p.BoundaryDamping, ErrInvalidDamping)
	case p.CollisionDamping < 0 || p.CollisionDamping > 1:
		return fmt.Errorf("collision damping %g: %w", p.CollisionDamping, ErrInvalidDamping)
	}
	return nil
}

// BoundingBox is the simulation domain. Y grows upward.
type BoundingBox struct {
	Left, Right float64
	Bottom, Top float64
}

// Validate checks that the box has a positive extent on both axes.
func (b BoundingBox) Validate() error {
	if !(b.Right > b.Left) || !(b.Top > b.Bottom) {
		return fmt.Errorf("box [%g,%g]x[%g,%g]: %w", b.Left, b.Right, b.Bottom, b.Top, ErrInvalidBounds)
	}
	return nil
}

// Center returns the middle of the box.
func (b BoundingBox) Center() r2.Vec {
	return r2.Vec{X: (b.Left + b.Right) / 2, Y: (b.Bottom + b.Top) / 2}
}

// Width returns the horizontal extent.
func (b BoundingBox) Width() float64 { return b.Right - b.Left }

// Height returns the vertical extent.
func (b BoundingBox) Height() float64 { return b.Top - b.Bottom }

// finite reports whether both components of v are finite.
func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
