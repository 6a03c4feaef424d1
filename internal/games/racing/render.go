package racing

import (
	"fmt"
	"math"

	"github.com/vovakirdan/racer/internal/config"
	"github.com/vovakirdan/racer/internal/core"
)

// Visual characters for rendering
const (
	CarChar       = '█'
	WallChar      = '▓'
	WallCapTop    = '▀'
	WallCapBottom = '▄'
	RoadChar      = '═'
	RoadMarkChar  = '╪'
	TargetChar    = '▸'
)

// viewport maps playfield pixels onto screen cells below the HUD row.
type viewport struct {
	sx, sy float64
	top    int
	rows   int
}

func newViewport(dst *core.Screen, pf config.Playfield) viewport {
	rows := core.Max(dst.Height()-1, 1)
	return viewport{
		sx:   float64(dst.Width()) / float64(pf.Width),
		sy:   float64(rows) / float64(pf.Height),
		top:  1,
		rows: rows,
	}
}

func (v viewport) col(x float64) int {
	return int(math.Floor(x * v.sx))
}

func (v viewport) row(y float64) int {
	return v.top + int(math.Floor(y*v.sy))
}

// RenderFrame draws a snapshot onto dst, scaled to fit, with a HUD on row 0.
func RenderFrame(dst *core.Screen, f Frame, cfg *config.RacingConfig, s *Sprites) {
	v := newViewport(dst, cfg.Playfield)

	drawRoad(dst, v, f)
	for i, wl := range f.Walls {
		drawWall(dst, v, wl, s, i == f.Target)
	}
	for _, c := range f.Cars {
		drawCar(dst, v, c, s)
	}

	hud := fmt.Sprintf(" Score: %d  Gen: %d  Alive: %d  Tick: %d ", f.Score, f.Generation, f.Alive, f.Tick)
	dst.DrawTextColored(1, 0, hud, core.ColorWhite)
}

func drawRoad(dst *core.Screen, v viewport, f Frame) {
	y := v.row(f.RoadY)
	if y >= dst.Height() {
		y = dst.Height() - 1
	}
	for x := 0; x < dst.Width(); x++ {
		dst.SetColored(x, y, RoadChar, core.ColorGray)
	}
	// Segment seams scroll with the road.
	for _, sx := range []float64{f.RoadX1, f.RoadX2} {
		dst.SetColored(v.col(sx), y, RoadMarkChar, core.ColorWhite)
	}
}

func drawWall(dst *core.Screen, v viewport, wl WallView, s *Sprites, target bool) {
	color := core.ColorGreen
	if wl.Passed {
		color = core.ColorGray
	} else if target {
		color = core.ColorOrange
	}

	x0 := v.col(wl.X)
	x1 := core.Max(v.col(wl.X+float64(s.WallTop.Width())), x0+1)

	topEnd := v.row(wl.Height)
	topStart := core.Max(v.row(wl.Top), v.top)
	dst.DrawRect(core.NewRect(x0, topStart, x1-x0, topEnd-topStart), WallChar, color)
	for x := x0; x < x1; x++ {
		dst.SetColored(x, topEnd-1, WallCapTop, color)
	}

	bottomStart := v.row(wl.Bottom)
	bottomEnd := v.row(wl.Bottom + float64(s.WallBottom.Height()))
	dst.DrawRect(core.NewRect(x0, bottomStart, x1-x0, bottomEnd-bottomStart), WallChar, color)
	for x := x0; x < x1; x++ {
		dst.SetColored(x, bottomStart, WallCapBottom, color)
	}
}

// drawCar samples the car mask at each covered cell's center, so the
// silhouette survives down-scaling.
func drawCar(dst *core.Screen, v viewport, c CarView, s *Sprites) {
	color := core.PaletteColor(c.ID)
	x0, y0 := v.col(c.X), v.row(c.Y)
	x1 := core.Max(v.col(c.X+float64(s.Car.Width())), x0+1)
	y1 := core.Max(v.row(c.Y+float64(s.Car.Height())), y0+1)

	drawn := false
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px := int((float64(x-x0) + 0.5) / float64(x1-x0) * float64(s.Car.Width()))
			py := int((float64(y-y0) + 0.5) / float64(y1-y0) * float64(s.Car.Height()))
			if s.Car.Get(px, py) {
				dst.SetColored(x, y, CarChar, color)
				drawn = true
			}
		}
	}
	if !drawn {
		dst.SetColored(x0, y0, CarChar, color)
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w := dst.Width()
	h := dst.Height()

	boxW := core.Max(len(title), len(subtitle)) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)
	dst.DrawBox(core.NewRect(boxX, boxY, boxW, boxH))

	dst.DrawText(boxX+(boxW-len(title))/2, boxY+1, title)
	dst.DrawText(boxX+(boxW-len(subtitle))/2, boxY+3, subtitle)
}
