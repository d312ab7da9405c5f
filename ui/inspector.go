package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// InspectorData holds the readouts for the selected particle.
type InspectorData struct {
	Index    int
	X, Y     float64
	VX, VY   float64
	Speed    float64
	Density  float64
	Pressure float64
	Color    rl.Color
}

var inspectorSections = []SectionDescriptor{
	{
		Fields: []FieldDescriptor{
			{Label: "Position", Widget: WidgetText, TextGetter: func(d any) string {
				p := d.(*InspectorData)
				return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
			}},
			{Label: "Velocity", Widget: WidgetText, TextGetter: func(d any) string {
				p := d.(*InspectorData)
				return fmt.Sprintf("(%.3f, %.3f)", p.VX, p.VY)
			}},
			{Label: "Speed", Widget: WidgetText, Format: "%.3f", Getter: func(d any) float32 { return float32(d.(*InspectorData).Speed) }},
			{Widget: WidgetSpacer},
			{Label: "Density", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(d.(*InspectorData).Density) }},
			{Label: "Pressure", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(d.(*InspectorData).Pressure) }},
			{Label: "Color", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color { return d.(*InspectorData).Color }},
		},
	},
}

// Inspector renders the selected-particle panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector panel for the given data.
func (ins *Inspector) Draw(data InspectorData) {
	r := ins.renderer
	padding := r.Theme.Padding

	height := padding*2 + r.Theme.LineHeight + 4
	for _, sd := range inspectorSections {
		height += r.SectionHeight(sd, &data)
	}
	r.DrawPanel(ins.x, ins.y, ins.width, height)

	y := ins.y + padding
	rl.DrawText(fmt.Sprintf("Particle #%d", data.Index), ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	for _, sd := range inspectorSections {
		y = r.DrawSection(ins.x+padding, y, sd, &data, ins.width-padding*2)
	}
}
