package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the info panel.
type HUDData struct {
	FrameTime   time.Duration
	FPS         int32
	MouseX      float64 // world coordinates
	MouseY      float64
	Particles   int
	Capacity    int
	Started     bool
	Paused      bool
	HandState   string
	DensityMean float64
	DensityMax  float64
	RestDensity float64
	SpeedMax    float64
	Anomalies   int64
}

// infoSections describes the info panel layout.
var infoSections = []SectionDescriptor{
	{
		Title: "Info",
		Fields: []FieldDescriptor{
			{Label: "Frame", Widget: WidgetText, TextGetter: func(d any) string {
				return d.(*HUDData).FrameTime.Round(10 * time.Microsecond).String()
			}},
			{Label: "FPS", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 { return float32(d.(*HUDData).FPS) }},
			{Label: "Mouse", Widget: WidgetText, TextGetter: func(d any) string {
				h := d.(*HUDData)
				return fmt.Sprintf("(%.3f, %.3f)", h.MouseX, h.MouseY)
			}},
			{Label: "State", Widget: WidgetText, TextGetter: func(d any) string {
				h := d.(*HUDData)
				switch {
				case !h.Started:
					return "arranging"
				case h.Paused:
					return "PAUSED"
				default:
					return "running"
				}
			}},
			{Label: "Hand", Widget: WidgetText, TextGetter: func(d any) string { return d.(*HUDData).HandState }},
		},
	},
	{
		Title: "Fluid",
		Fields: []FieldDescriptor{
			{Label: "Particles", Widget: WidgetText, TextGetter: func(d any) string {
				h := d.(*HUDData)
				return fmt.Sprintf("%d / %d", h.Particles, h.Capacity)
			}},
			{Label: "Density mean", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 { return float32(d.(*HUDData).DensityMean) }},
			{Label: "Density max", Widget: WidgetText, Format: "%.1f", Getter: func(d any) float32 { return float32(d.(*HUDData).DensityMax) }},
			{Label: "Compression", Widget: WidgetBar, Range: FieldRange{Min: 0, Max: 2}, Getter: func(d any) float32 {
				h := d.(*HUDData)
				if h.RestDensity <= 0 {
					return 0
				}
				return float32(h.DensityMean / h.RestDensity)
			}},
			{Label: "Max speed", Widget: WidgetText, Format: "%.2f", Getter: func(d any) float32 { return float32(d.(*HUDData).SpeedMax) }},
			{Label: "Anomalies", Widget: WidgetText, Visible: func(d any) bool { return d.(*HUDData).Anomalies > 0 },
				TextGetter: func(d any) string { return fmt.Sprint(d.(*HUDData).Anomalies) }},
		},
	},
}

// HUD renders the info panel and key legend.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD(width int32) *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    width,
	}
}

// Draw renders the info panel with its top-right corner at (right, top).
func (h *HUD) Draw(right, top int32, data HUDData) {
	r := h.renderer
	pad := r.Theme.Padding

	height := pad * 2
	for _, sd := range infoSections {
		height += r.SectionHeight(sd, &data)
	}

	x := right - h.width
	r.DrawPanel(x, top, h.width, height)
	y := top + pad
	for _, sd := range infoSections {
		y = r.DrawSection(x+pad, y, sd, &data, h.width-pad*2)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase timings of the simulation update.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders phase averages, slowest first.
func (p *PerfPanel) Draw(phaseAvg map[string]time.Duration, total time.Duration) {
	x, y := p.x, p.y

	rl.DrawText("Update Performance", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Total: %s", total.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	names := make([]string, 0, len(phaseAvg))
	for name := range phaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return phaseAvg[names[i]] > phaseAvg[names[j]] })

	for _, name := range names {
		avg := phaseAvg[name]
		pct := float64(0)
		if total > 0 {
			pct = float64(avg) / float64(total) * 100
		}

		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}

		rl.DrawText(fmt.Sprintf("%-14s %8s %5.1f%%", name, avg.Round(time.Microsecond), pct), x, y, 12, color)
		y += 14
	}
}
