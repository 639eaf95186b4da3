package game

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// borderWidth is the pixel gap between the window edge and the level.
const borderWidth = 24

// cellSize is the on-screen size of one map cell in pixels.
const cellSize = 24

// logLines is how many recent log entries the bottom panel shows.
const logLines = 8

// lineHeight matches basicfont.Face7x13 with a little leading.
const lineHeight = 15

// viewerLevel is the demo level shown by the viewer.
var viewerLevel = []string{
	"########################################",
	"#........#.........#.........~~~~......#",
	"#........#.........#.........~~~~......#",
	"#........+.........'.........~~~~......#",
	"#........#.........#...................#",
	"#####+########L#####.........&&&.......#",
	"#..............#...#.........&&&.......#",
	"#..______......#...S...................#",
	"#..______......#...#########+###########",
	"#..............#...#...............#...#",
	"#.....---......'...+.......<.......+...#",
	"#.....---......#...#...............#.>.#",
	"########################################",
}

// sim speeds in environment ticks per second.
var simSpeeds = []float64{0, 1, 2, 4, 8, 16}

var terrainColors = [terrainCount]color.RGBA{
	TerrainBorder:       {R: 0, G: 0, B: 0, A: 255},
	TerrainWall:         {R: 70, G: 66, B: 60, A: 255},
	TerrainFloor:        {R: 28, G: 30, B: 26, A: 255},
	TerrainDoorOpen:     {R: 120, G: 84, B: 40, A: 255},
	TerrainDoorClosed:   {R: 150, G: 100, B: 40, A: 255},
	TerrainShallowWater: {R: 40, G: 80, B: 120, A: 255},
	TerrainDeepWater:    {R: 20, G: 40, B: 110, A: 255},
	TerrainIce:          {R: 150, G: 190, B: 210, A: 255},
	TerrainLava:         {R: 200, G: 60, B: 20, A: 255},
	TerrainUpStairs:     {R: 90, G: 140, B: 90, A: 255},
	TerrainDownStairs:   {R: 60, G: 110, B: 60, A: 255},
}

var actorColors = []color.RGBA{
	{R: 230, G: 70, B: 60, A: 255},
	{R: 80, G: 170, B: 255, A: 255},
	{R: 240, G: 200, B: 60, A: 255},
	{R: 170, G: 110, B: 220, A: 255},
}

// Game is the ebiten front end: it drives a TestDungeon in real time and
// draws the level with perception overlays.
type Game struct {
	td       *TestDungeon
	width    int
	height   int
	offX     int
	offY     int
	selected int

	showFOV   bool
	showSound bool
	showRoute bool
	showHUD   bool
	prevKeys  map[ebiten.Key]bool

	simSpeed  float64
	tickAccum float64

	hudFace text.Face
	status  string
}

// newViewerDungeon builds the demo level: a patrol that explores as it
// walks, and two chasers that hunt it by sight and sound.
func newViewerDungeon() *TestDungeon {
	return NewTestDungeon(
		WithMap(viewerLevel...),
		WithPatrol("p", 2, 2, 50, 6, 120,
			Point{X: 2, Y: 2}, Point{X: 25, Y: 10}, Point{X: 35, Y: 3}, Point{X: 12, Y: 10}),
		WithChaser("h", 37, 10, 100, 6, "p", 20),
		WithChaser("r", 5, 10, 40, 4, "p", 10),
	)
}

func New() *Game {
	td := newViewerDungeon()
	g := &Game{
		td:        td,
		offX:      borderWidth,
		offY:      borderWidth,
		showFOV:   true,
		showRoute: true,
		showHUD:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		simSpeed:  2,
		hudFace:   text.NewGoXFace(basicfont.Face7x13),
	}
	g.width = td.World.Map.Cols*cellSize + 2*borderWidth
	g.height = td.World.Map.Rows*cellSize + 2*borderWidth + logLines*lineHeight + borderWidth
	return g
}

func (g *Game) Update() error {
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed / float64(ebiten.TPS())
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.td.RunTicks(1)
	}
	return nil
}

// keyPressed records k in current and reports a fresh press.
func (g *Game) keyPressed(current map[ebiten.Key]bool, k ebiten.Key) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !g.prevKeys[k]
}

// handleInput processes keypresses (edge-triggered).
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}

	// P=pause/resume, ,=slower, .=faster, space=single tick while paused.
	if g.keyPressed(currentKeys, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.keyPressed(currentKeys, ebiten.KeyComma) {
		g.simSpeed = slowerSpeed(g.simSpeed)
	}
	if g.keyPressed(currentKeys, ebiten.KeyPeriod) {
		g.simSpeed = fasterSpeed(g.simSpeed)
	}
	if g.keyPressed(currentKeys, ebiten.KeySpace) && g.simSpeed == 0 {
		g.td.RunTicks(1)
	}

	// Tab: cycle the selected actor.
	if g.keyPressed(currentKeys, ebiten.KeyTab) {
		if n := len(g.td.World.Actors()); n > 0 {
			g.selected = (g.selected + 1) % n
		}
	}

	if g.keyPressed(currentKeys, ebiten.KeyF) {
		g.showFOV = !g.showFOV
	}
	if g.keyPressed(currentKeys, ebiten.KeyN) {
		g.showSound = !g.showSound
	}
	if g.keyPressed(currentKeys, ebiten.KeyR) {
		g.showRoute = !g.showRoute
	}
	if g.keyPressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// C: copy the map and summary for bug reports.
	if g.keyPressed(currentKeys, ebiten.KeyC) {
		report := g.td.Dump() + g.td.SimLog.Summary(g.td.World)
		if err := clipboard.WriteAll(report); err != nil {
			g.status = fmt.Sprintf("copy failed: %v", err)
		} else {
			g.status = fmt.Sprintf("copied report at T=%d", g.td.CurrentTick())
		}
	}

	g.prevKeys = currentKeys
}

func slowerSpeed(cur float64) float64 {
	for i := len(simSpeeds) - 1; i > 0; i-- {
		if simSpeeds[i] <= cur {
			return simSpeeds[i-1]
		}
	}
	return simSpeeds[0]
}

func fasterSpeed(cur float64) float64 {
	for _, s := range simSpeeds {
		if s > cur {
			return s
		}
	}
	return simSpeeds[len(simSpeeds)-1]
}

// selectedActor returns the actor the overlays follow, or nil.
func (g *Game) selectedActor() *Actor {
	actors := g.td.World.Actors()
	if len(actors) == 0 {
		return nil
	}
	return actors[g.selected%len(actors)]
}

// cellOrigin returns the top-left pixel of cell p.
func (g *Game) cellOrigin(p Point) (float32, float32) {
	return float32(g.offX + p.X*cellSize), float32(g.offY + p.Y*cellSize)
}

// cellCentre returns the centre pixel of cell p.
func (g *Game) cellCentre(p Point) (float32, float32) {
	x, y := g.cellOrigin(p)
	return x + cellSize/2, y + cellSize/2
}

// tileColor is the colour a cell is drawn with. Unseen cells are dimmed and
// hidden doors look like wall.
func tileColor(t *Tile) color.RGBA {
	terrain := t.Terrain
	if terrain == TerrainDoorClosed && t.Flags&TileFlagHidden != 0 {
		terrain = TerrainWall
	}
	c := terrainColors[terrain]
	if terrain == TerrainDoorClosed && t.Flags&TileFlagLocked != 0 {
		c = color.RGBA{R: 170, G: 60, B: 60, A: 255}
	}
	if t.Flags&TileFlagSeen == 0 {
		c.R, c.G, c.B = c.R/3, c.G/3, c.B/3
	}
	return c
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 8, G: 8, B: 10, A: 255})

	g.drawLevel(screen)
	if g.showSound {
		g.drawSoundField(screen)
	}
	sel := g.selectedActor()
	if g.showFOV && sel != nil {
		g.drawFOV(screen, sel)
	}
	if g.showRoute {
		g.drawRoutes(screen, sel)
	}
	g.drawActors(screen, sel)
	g.drawLogPanel(screen)
	if g.showHUD {
		g.drawHUD(screen, sel)
	}
}

func (g *Game) drawLevel(screen *ebiten.Image) {
	tm := g.td.World.Map
	for y := 0; y < tm.Rows; y++ {
		for x := 0; x < tm.Cols; x++ {
			p := Point{X: x, Y: y}
			px, py := g.cellOrigin(p)
			vector.FillRect(screen, px, py, cellSize, cellSize, tileColor(tm.At(p)), false)
		}
	}
	vector.StrokeRect(screen, float32(g.offX), float32(g.offY),
		float32(tm.Cols*cellSize), float32(tm.Rows*cellSize),
		1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
}

func (g *Game) drawActors(screen *ebiten.Image, sel *Actor) {
	for _, a := range g.td.World.Actors() {
		cx, cy := g.cellCentre(a.Pos)
		c := actorColors[a.ID%len(actorColors)]
		vector.FillCircle(screen, cx, cy, cellSize/2-3, c, true)
		if a == sel {
			vector.StrokeRect(screen, cx-cellSize/2+1, cy-cellSize/2+1, cellSize-2, cellSize-2,
				1.5, color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)
		}
		if r, _ := utf8.DecodeRuneInString(a.Label); r != utf8.RuneError {
			g.drawText(screen, string(r), float64(cx)-3, float64(cy)-7, color.Black)
		}
	}
}

func (g *Game) drawText(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, g.hudFace, op)
}

func (g *Game) drawLogPanel(screen *ebiten.Image) {
	tm := g.td.World.Map
	top := g.offY + tm.Rows*cellSize + borderWidth/2
	for i, e := range g.td.SimLog.Tail(logLines) {
		g.drawText(screen, e.String(), float64(g.offX), float64(top+i*lineHeight),
			color.RGBA{R: 170, G: 190, B: 170, A: 255})
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, sel *Actor) {
	speedStr := fmt.Sprintf("%gx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("T=%d  SIM: %s  P=pause ,/.=speed space=step", g.td.CurrentTick(), speedStr),
		fmt.Sprintf("[F]%s fov  [N]%s sound  [R]%s routes  Tab=select  C=copy",
			onMark(g.showFOV), onMark(g.showSound), onMark(g.showRoute)),
	}
	if sel != nil {
		lines = append(lines, fmt.Sprintf("%s pos=%v speed=%d sight=%d turns=%d timer=%d",
			sel.Label, sel.Pos, sel.Speed, sel.Sight, sel.Turns(), sel.Timer()))
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	const padX, padY = 5, 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*lineHeight + padY*2)
	bx := float32(g.width) - boxW - 4
	by := float32(4)

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		g.drawText(screen, line, float64(bx)+padX, float64(by)+padY+float64(i*lineHeight), color.White)
	}
}

func onMark(on bool) string {
	if on {
		return "*"
	}
	return " "
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
