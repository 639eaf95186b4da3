package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// goalSeeker is a brain that can say where it is heading.
type goalSeeker interface {
	Goal() (Point, bool)
}

// drawFOV tints every on-map cell the actor can currently see.
func (g *Game) drawFOV(screen *ebiten.Image, a *Actor) {
	tm := g.td.World.Map
	VisibleTiles(tm, a).Each(func(p Point) {
		if !tm.InBounds(p) {
			return
		}
		x, y := g.cellOrigin(p)
		vector.FillRect(screen, x, y, cellSize, cellSize, color.RGBA{R: 255, G: 230, B: 120, A: 40}, false)
	})
}

// drawSoundField shades cells by the intensity of the last noise flood.
func (g *Game) drawSoundField(screen *ebiten.Image) {
	tm := g.td.World.Map
	field := tm.Sound()
	for y := 0; y < tm.Rows; y++ {
		for x := 0; x < tm.Cols; x++ {
			p := Point{X: x, Y: y}
			v := field.At(p)
			if v == 0 {
				continue
			}
			px, py := g.cellOrigin(p)
			alpha := uint8(40 + int(v)*160/maxVolume) // #nosec G115 -- at most 200
			vector.FillRect(screen, px, py, cellSize, cellSize, color.RGBA{R: 80, G: 200, B: 255, A: alpha}, false)
		}
	}
}

// drawRoutes draws each goal-seeking actor's planned route. The selected
// actor's route is brighter and ends in a destination marker. Planning here
// uses a private planner so nothing is written to the event log.
func (g *Game) drawRoutes(screen *ebiten.Image, sel *Actor) {
	w := g.td.World
	for _, a := range w.Actors() {
		gs, ok := a.Brain.(goalSeeker)
		if !ok {
			continue
		}
		goal, ok := gs.Goal()
		if !ok || goal == a.Pos {
			continue
		}
		pl := w.Planner(a)
		if !pl.Plan(a.Pos, goal) {
			continue
		}
		col := color.RGBA{R: 200, G: 200, B: 200, A: 90}
		width := float32(1.0)
		if a == sel {
			col = color.RGBA{R: 255, G: 255, B: 140, A: 220}
			width = 2.0
		}
		px, py := g.cellCentre(a.Pos)
		for _, p := range pl.Route(a.Pos) {
			cx, cy := g.cellCentre(p)
			vector.StrokeLine(screen, px, py, cx, cy, width, col, true)
			px, py = cx, cy
		}
		if a == sel {
			gx, gy := g.cellOrigin(goal)
			vector.StrokeRect(screen, gx+4, gy+4, cellSize-8, cellSize-8, 1.5, col, false)
		}
	}
}
