package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/sph"
)

// ColorMode selects how particle colors are chosen.
type ColorMode uint8

const (
	ColorByAttr    ColorMode = iota // per-particle render color
	ColorByDensity                  // density / rest density
	ColorBySpeed                    // speed / SpeedScale
)

// ParticleRenderer draws simulation particles as filled circles.
type ParticleRenderer struct {
	Mode ColorMode
	// Speed mapped to the top of the gradient in ColorBySpeed mode
	SpeedScale float64
	// Minimum on-screen radius in pixels
	MinRadius float32
}

// NewParticleRenderer creates a new particle renderer.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{SpeedScale: 2, MinRadius: 1}
}

// Draw renders all particles. densities may be shorter than particles
// before the first update.
func (r *ParticleRenderer) Draw(cam *camera.Camera, particles []sph.Particle, attrs []sph.RenderAttr, densities []float64, restDensity float64) {
	for i := range particles {
		p := &particles[i]
		a := &attrs[i]
		if !cam.IsVisible(p.Position, a.Radius) {
			continue
		}

		var color rl.Color
		switch r.Mode {
		case ColorByDensity:
			if i < len(densities) && restDensity > 0 {
				color = Gradient(float32(densities[i] / restDensity / 2))
			} else {
				color = Gradient(0)
			}
		case ColorBySpeed:
			color = Gradient(float32(r2.Norm(p.Velocity) / r.SpeedScale))
		default:
			color = ToRL(a.Color)
		}

		size := cam.ScaleLength(a.Radius)
		if size < r.MinRadius {
			size = r.MinRadius
		}
		sx, sy := cam.WorldToScreen(p.Position)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, size, color)
	}
}

// DrawVelocities draws a line per particle along its velocity, scaled so a
// speed of 1 spans scale world units.
func (r *ParticleRenderer) DrawVelocities(cam *camera.Camera, particles []sph.Particle, scale float64) {
	color := rl.Color{R: 255, G: 200, B: 80, A: 160}
	for i := range particles {
		p := &particles[i]
		sx, sy := cam.WorldToScreen(p.Position)
		ex, ey := cam.WorldToScreen(r2.Add(p.Position, r2.Scale(scale, p.Velocity)))
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, color)
	}
}

// ToRL converts a simulation color to a raylib color.
func ToRL(c sph.Color) rl.Color {
	return rl.Color{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

// Gradient maps t in [0,1] from blue through white to red.
func Gradient(t float32) rl.Color {
	if math.IsNaN(float64(t)) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	if t < 0.5 {
		k := t * 2
		return rl.Color{R: unit8(0.2 + 0.8*k), G: unit8(0.4 + 0.6*k), B: 255, A: 255}
	}
	k := (t - 0.5) * 2
	return rl.Color{R: 255, G: unit8(1 - 0.8*k), B: unit8(1 - 0.9*k), A: 255}
}

func unit8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
