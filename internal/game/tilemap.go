package game

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Point addresses one cell of the tile map.
type Point struct {
	X, Y int
}

// Add returns p offset by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Step returns the neighbouring point in direction d.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Offset()
	return p.Add(dx, dy)
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// chebyshev returns the king-move distance between a and b.
func chebyshev(a, b Point) int {
	return max(absInt(a.X-b.X), absInt(a.Y-b.Y))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Terrain identifies the base type of a tile.
type Terrain uint8

const (
	TerrainBorder       Terrain = iota // Off-map sentinel
	TerrainWall                        // Solid rock / masonry
	TerrainFloor                       // Open floor
	TerrainDoorOpen                    // Open door
	TerrainDoorClosed                  // Closed door: blocks sight, muffles sound
	TerrainShallowWater                // Wadeable
	TerrainDeepWater                   // Swim or drown
	TerrainIce                         // Slippery
	TerrainLava                        // Burns
	TerrainUpStairs                    // Link to the level above
	TerrainDownStairs                  // Link to the level below
	terrainCount                       // sentinel
)

var terrainNames = [terrainCount]string{
	TerrainBorder:       "border",
	TerrainWall:         "wall",
	TerrainFloor:        "floor",
	TerrainDoorOpen:     "open door",
	TerrainDoorClosed:   "closed door",
	TerrainShallowWater: "shallow water",
	TerrainDeepWater:    "deep water",
	TerrainIce:          "ice",
	TerrainLava:         "lava",
	TerrainUpStairs:     "up stairs",
	TerrainDownStairs:   "down stairs",
}

func (t Terrain) String() string {
	if t < terrainCount {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// Solid reports terrain that nothing ever walks through.
func (t Terrain) Solid() bool {
	switch t {
	case TerrainBorder, TerrainWall:
		return true
	default:
		return false
	}
}

// UsuallyPassable reports terrain an ordinary creature can stand on. It
// doubles as the transparency test for line of sight.
func (t Terrain) UsuallyPassable() bool {
	switch t {
	case TerrainFloor, TerrainDoorOpen, TerrainShallowWater, TerrainDeepWater,
		TerrainIce, TerrainLava, TerrainUpStairs, TerrainDownStairs:
		return true
	default:
		return false
	}
}

// IsDoor reports open and closed doors.
func (t Terrain) IsDoor() bool {
	return t == TerrainDoorOpen || t == TerrainDoorClosed
}

// TransmitsSound reports whether noise can flow through the terrain.
// Doors muffle sound but never stop it.
func (t Terrain) TransmitsSound() bool {
	return t.UsuallyPassable() || t.IsDoor()
}

// Hazardous reports terrain that is likely to kill whatever walks into it.
func (t Terrain) Hazardous() bool {
	return t == TerrainDeepWater || t == TerrainLava
}

// Risky reports terrain that is unpleasant but rarely deadly.
func (t Terrain) Risky() bool {
	return t == TerrainIce || t == TerrainShallowWater
}

// terrainSymbols maps the map-authoring alphabet to terrain and flags.
var terrainSymbols = map[rune]struct {
	terrain Terrain
	flags   TileFlags
}{
	' ':  {TerrainBorder, 0},
	'#':  {TerrainWall, 0},
	'.':  {TerrainFloor, 0},
	'\'': {TerrainDoorOpen, 0},
	'+':  {TerrainDoorClosed, 0},
	'L':  {TerrainDoorClosed, TileFlagLocked},
	'S':  {TerrainDoorClosed, TileFlagHidden},
	'-':  {TerrainShallowWater, 0},
	'~':  {TerrainDeepWater, 0},
	'_':  {TerrainIce, 0},
	'&':  {TerrainLava, 0},
	'<':  {TerrainUpStairs, 0},
	'>':  {TerrainDownStairs, 0},
}

// terrainGlyph returns the map symbol for a tile, honouring hidden/locked doors.
func terrainGlyph(t *Tile) byte {
	switch t.Terrain {
	case TerrainBorder:
		return ' '
	case TerrainWall:
		return '#'
	case TerrainDoorOpen:
		return '\''
	case TerrainDoorClosed:
		switch {
		case t.Flags&TileFlagHidden != 0:
			return 'S'
		case t.Flags&TileFlagLocked != 0:
			return 'L'
		}
		return '+'
	case TerrainShallowWater:
		return '-'
	case TerrainDeepWater:
		return '~'
	case TerrainIce:
		return '_'
	case TerrainLava:
		return '&'
	case TerrainUpStairs:
		return '<'
	case TerrainDownStairs:
		return '>'
	default:
		return '.'
	}
}

// TileFlags is a bitfield for per-tile metadata.
type TileFlags uint8

const (
	TileFlagHidden TileFlags = 1 << iota // secret door, looks like wall until found
	TileFlagLocked                       // door cannot be opened without a key
	TileFlagSeen                         // terrain has been seen by the player side
)

// ItemRef is an opaque handle into the (external) item store. Zero means none.
type ItemRef int32

// Tile is one cell of a dungeon level.
type Tile struct {
	Terrain  Terrain
	Flags    TileFlags
	Subtype  uint8   // trap / altar kind, interpreted outside the kernel
	Items    ItemRef // item pile on the floor, if any
	Occupant *Actor
}

// borderTile is returned for every out-of-range read. It must never be
// written through.
var borderTile = Tile{Terrain: TerrainBorder, Flags: TileFlagSeen}

// LevelKind distinguishes level types that the engines treat differently.
type LevelKind uint8

const (
	LevelDungeon   LevelKind = iota // enclosed level, models sound
	LevelOverworld                  // open surface, sound is not modelled
)

// ModelsSound reports whether noise propagation runs on this kind of level.
func (k LevelKind) ModelsSound() bool {
	return k == LevelDungeon
}

// Link connects a cell of this level to a cell of another level.
type Link struct {
	Level string
	To    Point
}

// TileMap is the authoritative per-cell representation of one level.
type TileMap struct {
	Cols  int
	Rows  int
	Kind  LevelKind
	Tiles []Tile // row-major: index = row*Cols + col

	scent []uint16
	sound *SoundField
	links map[Point]Link
}

// NewTileMap creates a level of open floor.
func NewTileMap(cols, rows int) *TileMap {
	if cols <= 0 || rows <= 0 {
		panic(fmt.Sprintf("game: invalid tile map size %dx%d", cols, rows))
	}
	tiles := make([]Tile, cols*rows)
	for i := range tiles {
		tiles[i].Terrain = TerrainFloor
	}
	return &TileMap{
		Cols:  cols,
		Rows:  rows,
		Tiles: tiles,
		scent: make([]uint16, cols*rows),
		sound: NewSoundField(cols, rows),
	}
}

// ParseTileMap builds a level from rows of map symbols. Short rows are padded
// with border. An unknown symbol is a data error and panics.
func ParseTileMap(rows ...string) *TileMap {
	cols := 0
	for _, r := range rows {
		cols = max(cols, len([]rune(r)))
	}
	tm := NewTileMap(cols, len(rows))
	for y, r := range rows {
		x := 0
		for _, ch := range r {
			sym, ok := terrainSymbols[ch]
			if !ok {
				panic(fmt.Sprintf("game: unknown terrain symbol %q at (%d,%d)", ch, x, y))
			}
			t := &tm.Tiles[y*cols+x]
			t.Terrain = sym.terrain
			t.Flags = sym.flags
			x++
		}
		for ; x < cols; x++ {
			tm.Tiles[y*cols+x].Terrain = TerrainBorder
		}
	}
	return tm
}

// InBounds returns true if p is on the map.
func (tm *TileMap) InBounds(p Point) bool {
	return p.X >= 0 && p.X < tm.Cols && p.Y >= 0 && p.Y < tm.Rows
}

func (tm *TileMap) index(p Point) int {
	return p.Y*tm.Cols + p.X
}

// mustIndex returns the slice index of p and panics if p is off the map.
func (tm *TileMap) mustIndex(p Point) int {
	if !tm.InBounds(p) {
		panic(fmt.Sprintf("game: cell %v outside %dx%d map", p, tm.Cols, tm.Rows))
	}
	return tm.index(p)
}

// At returns the tile at p. Off-map reads return the border sentinel, so
// callers never need to bounds-check before reading.
func (tm *TileMap) At(p Point) *Tile {
	if !tm.InBounds(p) {
		b := borderTile
		return &b
	}
	return &tm.Tiles[tm.index(p)]
}

// TerrainAt returns the terrain at p (TerrainBorder off the map).
func (tm *TileMap) TerrainAt(p Point) Terrain {
	if !tm.InBounds(p) {
		return TerrainBorder
	}
	return tm.Tiles[tm.index(p)].Terrain
}

// HasFlag reports whether every bit of f is set at p.
func (tm *TileMap) HasFlag(p Point, f TileFlags) bool {
	return tm.At(p).Flags&f == f
}

// IsPassable returns true if an ordinary creature can stand on p.
func (tm *TileMap) IsPassable(p Point) bool {
	return tm.TerrainAt(p).UsuallyPassable()
}

// IsOpaque returns true if p blocks line of sight.
func (tm *TileMap) IsOpaque(p Point) bool {
	return !tm.TerrainAt(p).UsuallyPassable()
}

// OccupantAt returns the actor standing on p, or nil.
func (tm *TileMap) OccupantAt(p Point) *Actor {
	if !tm.InBounds(p) {
		return nil
	}
	return tm.Tiles[tm.index(p)].Occupant
}

// SetTerrain changes the terrain of an on-map cell.
func (tm *TileMap) SetTerrain(p Point, t Terrain) {
	tm.Tiles[tm.mustIndex(p)].Terrain = t
}

// AddFlag sets flag bits on a tile.
func (tm *TileMap) AddFlag(p Point, f TileFlags) {
	tm.Tiles[tm.mustIndex(p)].Flags |= f
}

// ClearFlag clears flag bits on a tile.
func (tm *TileMap) ClearFlag(p Point, f TileFlags) {
	tm.Tiles[tm.mustIndex(p)].Flags &^= f
}

// MarkAllSeen flags every tile as seen, as for a fully explored level.
func (tm *TileMap) MarkAllSeen() {
	for i := range tm.Tiles {
		tm.Tiles[i].Flags |= TileFlagSeen
	}
}

// ScentAt returns the scent intensity at p (zero off the map).
func (tm *TileMap) ScentAt(p Point) uint16 {
	if !tm.InBounds(p) {
		return 0
	}
	return tm.scent[tm.index(p)]
}

// SetScent stores a scent intensity computed by the (external) tracker.
func (tm *TileMap) SetScent(p Point, v uint16) {
	tm.scent[tm.mustIndex(p)] = v
}

// Sound returns the level's reusable sound field.
func (tm *TileMap) Sound() *SoundField {
	return tm.sound
}

// AddLink records an inter-level connection at p.
func (tm *TileMap) AddLink(p Point, l Link) {
	tm.mustIndex(p)
	if tm.links == nil {
		tm.links = make(map[Point]Link)
	}
	tm.links[p] = l
}

// LinkAt returns the inter-level connection at p, if any.
func (tm *TileMap) LinkAt(p Point) (Link, bool) {
	l, ok := tm.links[p]
	return l, ok
}

// Dump renders the level as map symbols, one line per row. marks overrides
// the symbol of individual cells; occupants are drawn as the first rune of
// their label.
func (tm *TileMap) Dump(marks map[Point]byte) string {
	var sb strings.Builder
	sb.Grow((tm.Cols + 1) * tm.Rows)
	for y := 0; y < tm.Rows; y++ {
		for x := 0; x < tm.Cols; x++ {
			p := Point{X: x, Y: y}
			t := &tm.Tiles[tm.index(p)]
			switch m, ok := marks[p]; {
			case ok:
				sb.WriteByte(m)
			case t.Occupant != nil && t.Occupant.Label != "":
				r, _ := utf8.DecodeRuneInString(t.Occupant.Label)
				sb.WriteRune(r)
			default:
				sb.WriteByte(terrainGlyph(t))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
