package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph/camera"
	"github.com/pthm-cable/sph/sph"
)

// pointerButtons maps mouse buttons to hand buttons.
var pointerButtons = []struct {
	mouse  rl.MouseButton
	button sph.Button
}{
	{rl.MouseButtonLeft, sph.ButtonPrimary},
	{rl.MouseButtonRight, sph.ButtonSecondary},
}

// handleInput processes keyboard and mouse input.
func (g *Game) handleInput() {
	// Window resize propagation
	g.handleResize()

	// Fullscreen toggle
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		g.sim.HandleEvent(sph.InputEvent{Kind: sph.EventTogglePause})
	}
	if rl.IsKeyPressed(rl.KeyN) {
		g.sim.HandleEvent(sph.InputEvent{Kind: sph.EventStep})
	}
	if rl.IsKeyPressed(rl.KeyEnter) {
		g.start()
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.reset()
	}

	// Panels
	if rl.IsKeyPressed(rl.KeyTab) {
		g.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyO) {
		g.overlayPanel.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.showPerf = !g.showPerf
	}

	// Overlay hotkeys
	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		if id, enabled, ok := g.overlays.HandleKeyPress(key); ok {
			slog.Debug("overlay toggled", "overlay", id, "enabled", enabled)
		}
	}

	g.handleCameraInput()
	g.handleMouse()
}

// handleMouse forwards pointer movement and buttons to the hand.
func (g *Game) handleMouse() {
	mouse := rl.GetMousePosition()
	g.mouseWorld = g.camera.ScreenToWorld(mouse.X, mouse.Y)
	g.sim.HandleEvent(sph.InputEvent{Kind: sph.EventMove, Position: g.mouseWorld})

	overPanel := g.controls.Contains(mouse.X, mouse.Y)
	for _, b := range pointerButtons {
		if rl.IsMouseButtonPressed(b.mouse) && !overPanel {
			g.sim.HandleEvent(sph.InputEvent{Kind: sph.EventPress, Button: b.button})
		}
		// Releases always go through so a drag ending over a panel does not stick
		if rl.IsMouseButtonReleased(b.mouse) {
			g.sim.HandleEvent(sph.InputEvent{Kind: sph.EventRelease, Button: b.button})
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) || rl.IsKeyPressed(rl.KeyI) {
		g.selectNearest()
	}
}

// handleResize checks for window resize and refits the box to the new aspect.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h

	box := camera.AspectBox(w, h)
	if err := g.sim.SetBoundingBox(box); err != nil {
		slog.Warn("rejected bounding box", "error", err)
		box = g.sim.BoundingBox()
	}
	g.camera.Resize(w, h)
	g.camera.Reset(box)
	g.layout()
}

// handleCameraInput processes camera pan/zoom controls.
func (g *Game) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / g.camera.Zoom

	// Arrow key panning
	if rl.IsKeyDown(rl.KeyRight) {
		g.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		g.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		g.camera.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		g.camera.Pan(0, panSpeed)
	}

	// Zoom controls: mouse wheel or +/- keys
	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		g.camera.ZoomBy(1 + wheelMove*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		g.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		g.camera.ZoomBy(0.8)
	}

	// Home key to reset camera
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset(g.sim.BoundingBox())
	}
}
