// Smoothing kernel preview tool - plots the density kernel and the pressure
// gradient over the support radius, with the density a square lattice of
// particles would measure at a given spacing.
//
// Usage: go run ./cmd/kernelpreview
package main

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/sph/sph"
)

const (
	windowWidth  = 1000
	windowHeight = 620
	plotX        = 20
	plotY        = 40
	plotWidth    = 580
	plotHeight   = 400
	panelX       = plotX + plotWidth + 30
	panelWidth   = windowWidth - panelX - 20
	samples      = 256
)

// KernelParams holds the previewed settings.
type KernelParams struct {
	SmoothingRadius  float32
	LatticeSpacing   float32 // distance between neighboring particle centers
	RestDensity      float32
	PressureConstant float32
}

var (
	densityColor  = rl.Color{R: 40, G: 110, B: 220, A: 255}
	gradientColor = rl.Color{R: 220, G: 80, B: 40, A: 255}
)

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Kernel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	// Defaults match config/defaults.yaml
	params := KernelParams{
		SmoothingRadius:  0.1,
		LatticeSpacing:   0.02,
		RestDensity:      600,
		PressureConstant: 1,
	}

	density := make([]float64, samples)
	gradient := make([]float64, samples)

	for !rl.WindowShouldClose() {
		h := float64(params.SmoothingRadius)
		sampleKernels(density, gradient, h)
		lattice := latticeDensity(h, float64(params.LatticeSpacing))
		physics := sph.PhysicsInfo{RestDensity: float64(params.RestDensity), PressureConstant: float64(params.PressureConstant)}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		rl.DrawText("Kernels over r in [0, h] (normalized)", plotX, 12, 18, rl.DarkGray)
		drawPlot(density, gradient)

		statsY := int32(plotY + plotHeight + 20)
		rl.DrawText(fmt.Sprintf("W(0) = %.1f   |dW/dr|(0) = %.1f", density[0], gradient[0]), plotX, statsY, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Lattice density: %.1f   neighbors in support: %d", lattice.density, lattice.neighbors), plotX, statsY+22, 16, rl.DarkGray)
		rl.DrawText(fmt.Sprintf("Lattice pressure: %.2f", physics.Pressure(lattice.density)), plotX, statsY+44, 16, pressureColor(physics.Pressure(lattice.density)))
		drawLegend(plotX, statsY+72)

		// Control panel
		x := float32(panelX)
		y := float32(plotY)
		rl.DrawText("Parameters", int32(x), int32(y-28), 20, rl.DarkGray)

		params.SmoothingRadius = slider(x, &y, "Smoothing radius h", "%.3f", params.SmoothingRadius, 0.02, 0.3)
		params.LatticeSpacing = slider(x, &y, "Particle spacing", "%.3f", params.LatticeSpacing, 0.005, 0.2)
		params.RestDensity = slider(x, &y, "Rest density", "%.0f", params.RestDensity, 0, 2000)
		params.PressureConstant = slider(x, &y, "Pressure constant", "%.2f", params.PressureConstant, 0, 10)

		y += 10
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 200, Height: 30}, "Use lattice density as rest") {
			params.RestDensity = float32(lattice.density)
		}

		rl.EndDrawing()
	}
}

// slider draws a labelled raygui slider and advances y.
func slider(x float32, y *float32, label, format string, value, min, max float32) float32 {
	rl.DrawText(label, int32(x), int32(*y), 14, rl.Gray)
	*y += 18
	v := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: float32(panelWidth - 70), Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, v), int32(x)+panelWidth-60, int32(*y+2), 16, rl.DarkGray)
	*y += 35
	return v
}

// sampleKernels fills density and gradient with W and |dW/dr| at evenly
// spaced r in [0, h].
func sampleKernels(density, gradient []float64, h float64) {
	for i := range density {
		r := h * float64(i) / float64(len(density)-1)
		density[i] = sph.DensityKernel(r*r, h)
		gradient[i] = -sph.PressureGradientMagnitude(r*r, h)
	}
}

type latticeResult struct {
	density   float64
	neighbors int
}

// latticeDensity sums the density kernel over a square lattice around one
// particle, including the particle itself.
func latticeDensity(h, spacing float64) latticeResult {
	var res latticeResult
	if !(spacing > 0) {
		return res
	}
	n := int(math.Ceil(h / spacing))
	for i := -n; i <= n; i++ {
		for j := -n; j <= n; j++ {
			dx, dy := float64(i)*spacing, float64(j)*spacing
			r2 := dx*dx + dy*dy
			if r2 >= h*h {
				continue
			}
			res.density += sph.DensityKernel(r2, h)
			res.neighbors++
		}
	}
	return res
}

// drawPlot draws both curves normalized to their own maximum.
func drawPlot(density, gradient []float64) {
	rl.DrawRectangleLines(plotX, plotY, plotWidth, plotHeight, rl.DarkGray)
	for k := 1; k < 4; k++ {
		gx := int32(plotX + plotWidth*k/4)
		rl.DrawLine(gx, plotY, gx, plotY+plotHeight, rl.LightGray)
		rl.DrawText(fmt.Sprintf("%.2fh", float32(k)/4), gx-12, plotY+plotHeight+4, 12, rl.Gray)
	}
	drawCurve(density, densityColor)
	drawCurve(gradient, gradientColor)
}

func drawCurve(values []float64, color rl.Color) {
	peak := floats.Max(values)
	if !(peak > 0) {
		return
	}
	point := func(i int) rl.Vector2 {
		return rl.Vector2{
			X: plotX + plotWidth*float32(i)/float32(len(values)-1),
			Y: plotY + plotHeight - plotHeight*float32(values[i]/peak),
		}
	}
	prev := point(0)
	for i := 1; i < len(values); i++ {
		p := point(i)
		rl.DrawLineEx(prev, p, 2, color)
		prev = p
	}
}

func drawLegend(x, y int32) {
	rl.DrawRectangle(x, y+3, 12, 12, densityColor)
	rl.DrawText("density kernel W", x+18, y, 16, rl.DarkGray)
	rl.DrawRectangle(x+200, y+3, 12, 12, gradientColor)
	rl.DrawText("pressure gradient |dW/dr|", x+218, y, 16, rl.DarkGray)
}

// pressureColor tints positive (repulsive) pressure red and negative blue.
func pressureColor(p float64) rl.Color {
	switch {
	case p > 0:
		return gradientColor
	case p < 0:
		return densityColor
	default:
		return rl.DarkGray
	}
}
