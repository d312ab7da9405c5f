package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayPanel lists the overlay toggles with their key bindings.
type OverlayPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewOverlayPanel creates a hidden overlay panel.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (o *OverlayPanel) SetPosition(x, y int32) {
	o.x = x
	o.y = y
}

// Toggle switches panel visibility.
func (o *OverlayPanel) Toggle() bool {
	o.visible = !o.visible
	return o.visible
}

// Draw renders the panel.
func (o *OverlayPanel) Draw(overlays *OverlayRegistry) {
	if !o.visible {
		return
	}

	r := o.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1 // +1 for category header
	}
	panelHeight := int32(totalItems)*lineHeight + int32(len(categories))*4 + padding*2 + lineHeight + 4

	r.DrawPanel(o.x, o.y, o.width, panelHeight)
	y := o.y + padding

	rl.DrawText("Overlays", o.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), o.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			o.drawToggle(o.x+padding, y, desc, overlays.IsEnabled(desc.ID), o.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
}

// drawToggle draws a single overlay toggle line.
func (o *OverlayPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := o.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
