package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/config"
)

// ControlActions reports what the user did in the controls panel this frame.
type ControlActions struct {
	ParticlesChanged bool
	PhysicsChanged   bool
	HandChanged      bool
	Start            bool
	Reset            bool
}

// Changed reports whether any setting was edited.
func (a ControlActions) Changed() bool {
	return a.ParticlesChanged || a.PhysicsChanged || a.HandChanged
}

// ControlsPanel renders the editable particle, physics and interaction settings.
// Edits are written straight into the config sections it is given.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
	capacity int
}

// NewControlsPanel creates a new controls panel. capacity bounds the count slider.
func NewControlsPanel(x, y, width int32, capacity int) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		capacity: capacity,
	}
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Contains reports whether a screen point is over the panel, so clicks on
// sliders are not forwarded to the hand.
func (c *ControlsPanel) Contains(sx, sy float32) bool {
	if !c.visible {
		return false
	}
	return sx >= float32(c.x) && sx <= float32(c.x+c.width) &&
		sy >= float32(c.y) && sy <= float32(c.y+c.height())
}

func (c *ControlsPanel) height() int32 {
	r := c.renderer
	rows := int32(17)
	return rows*(r.Theme.SliderHeight+6) + 4*r.Theme.LineHeight + 24 + r.Theme.Padding*3
}

// Draw renders the panel and applies slider edits to cfg.
// Before the simulation is started the particle section is live and
// the Start button is shown; afterwards Reset returns to that state.
func (c *ControlsPanel) Draw(cfg *config.Config, started bool) ControlActions {
	var act ControlActions
	if !c.visible {
		return act
	}

	r := c.renderer
	pad := r.Theme.Padding
	row := r.Theme.SliderHeight + 6
	w := c.width - pad*2
	x := c.x + pad

	r.DrawPanel(c.x, c.y, c.width, c.height())
	y := c.y + pad

	// Particles
	y = r.DrawSectionHeader(x, y, "Particles")
	p := &cfg.Particles
	var changed bool
	if p.Count, changed = r.SliderInt(x, y, w, "Count", p.Count, 0, c.capacity); changed {
		act.ParticlesChanged = true
	}
	y += row
	radius, changed := r.SliderFloat(x, y, w, "Radius", "%.3f", float32(p.Radius), 0.002, 0.1)
	if changed {
		p.Radius = float64(radius)
		act.ParticlesChanged = true
	}
	y += row
	spacing, changed := r.SliderFloat(x, y, w, "Spacing", "%.3f", float32(p.Spacing), 0, 0.1)
	if changed {
		p.Spacing = float64(spacing)
		act.ParticlesChanged = true
	}
	y += row
	for _, ch := range []struct {
		label string
		v     *float32
	}{{"Red", &p.Color.R}, {"Green", &p.Color.G}, {"Blue", &p.Color.B}} {
		if *ch.v, changed = r.SliderFloat(x, y, w, ch.label, "%.2f", *ch.v, 0, 1); changed {
			act.ParticlesChanged = true
		}
		y += row
	}
	y = r.DrawColorSwatch(x, y, "Color", rl.ColorFromNormalized(rl.Vector4{X: p.Color.R, Y: p.Color.G, Z: p.Color.B, W: 1}))

	// Physics
	y = r.DrawSectionHeader(x, y+4, "Physics")
	ph := &cfg.Physics
	for _, s := range []struct {
		label, format string
		v             *float64
		min, max      float32
	}{
		{"Gravity", "%.2f", &ph.Gravity, 0, 30},
		{"Boundary damp", "%.2f", &ph.BoundaryDamping, 0, 1},
		{"Collision damp", "%.2f", &ph.CollisionDamping, 0, 1},
		{"Rest density", "%.0f", &ph.RestDensity, 0, 2000},
		{"Pressure k", "%.2f", &ph.PressureConstant, 0, 10},
		{"Smoothing h", "%.3f", &ph.SmoothingRadius, 0.01, 0.3},
	} {
		v, changed := r.SliderFloat(x, y, w, s.label, s.format, float32(*s.v), s.min, s.max)
		if changed {
			*s.v = float64(v)
			act.PhysicsChanged = true
		}
		y += row
	}
	if ph.Substeps, changed = r.SliderInt(x, y, w, "Substeps", ph.Substeps, 1, 32); changed {
		act.PhysicsChanged = true
	}
	y += row
	if ph.ResolveCollisions, changed = r.CheckBox(x, y, "Resolve collisions", ph.ResolveCollisions); changed {
		act.PhysicsChanged = true
	}
	y += row

	// Interaction
	y = r.DrawSectionHeader(x, y+4, "Interaction")
	h := &cfg.Hand
	radius, changed = r.SliderFloat(x, y, w, "Hand radius", "%.2f", float32(h.Radius), 0.01, 1)
	if changed {
		h.Radius = float64(radius)
		act.HandChanged = true
	}
	y += row
	strength, changed := r.SliderFloat(x, y, w, "Hand strength", "%.2f", float32(h.Strength), 0, 5)
	if changed {
		h.Strength = float64(strength)
		act.HandChanged = true
	}
	y += row + 4

	if !started {
		act.Start = r.Button(x, y, 100, "Start")
	} else {
		act.Reset = r.Button(x, y, 100, "Reset")
	}

	return act
}
