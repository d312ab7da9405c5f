package config

import "github.com/pthm-cable/sph/sph"

// ParticleInfo converts the particles section.
func (c *Config) ParticleInfo() sph.ParticleInfo {
	p := c.Particles
	return sph.ParticleInfo{
		Count:   p.Count,
		Radius:  p.Radius,
		Spacing: p.Spacing,
		DefaultColor: sph.Color{
			R: p.Color.R, G: p.Color.G, B: p.Color.B, A: p.Color.A,
		},
	}
}

// PhysicsInfo converts the physics section.
func (c *Config) PhysicsInfo() sph.PhysicsInfo {
	p := c.Physics
	return sph.PhysicsInfo{
		Gravity:           p.Gravity,
		BoundaryDamping:   p.BoundaryDamping,
		CollisionDamping:  p.CollisionDamping,
		Substeps:          p.Substeps,
		RestDensity:       p.RestDensity,
		PressureConstant:  p.PressureConstant,
		SmoothingRadius:   p.SmoothingRadius,
		ResolveCollisions: p.ResolveCollisions,
	}
}

// NewHand returns an idle hand with the configured radius and strength.
func (c *Config) NewHand() sph.Hand {
	return sph.NewHand(c.Hand.Radius, c.Hand.Strength)
}

// BoundingBox returns the aspect-derived simulation box.
func (c *Config) BoundingBox() sph.BoundingBox {
	d := c.Derived
	return sph.BoundingBox{Left: d.BoxLeft, Right: d.BoxRight, Bottom: d.BoxBottom, Top: d.BoxTop}
}

// Options returns the construction options for the simulation section.
func (c *Config) Options() []sph.Option {
	s := c.Simulation
	return []sph.Option{
		sph.WithCapacity(s.Capacity),
		sph.WithWorkers(s.Workers),
		sph.WithSeed(s.Seed),
	}
}
