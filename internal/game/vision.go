package game

import "github.com/zyedidia/generic/mapset"

// octantTransforms maps a point of the first octant (0 <= y <= x) onto all
// eight symmetric octants.
var octantTransforms = [8][4]int{
	{1, 0, 0, 1}, {0, 1, 1, 0}, {0, -1, 1, 0}, {-1, 0, 0, 1},
	{-1, 0, 0, -1}, {0, -1, -1, 0}, {0, 1, -1, 0}, {1, 0, 0, -1},
}

// sightTargets returns the ray targets for a sight radius n: the outer edge
// of every octant of the bounding square. Rays cast with traceLine to these
// targets touch every cell of the disk, which a bare circle outline does not.
func sightTargets(origin Point, n int) []Point {
	targets := make([]Point, 0, 8*(n+1))
	for i := 0; i <= n; i++ {
		for _, t := range octantTransforms {
			dx := n*t[0] + i*t[1]
			dy := n*t[2] + i*t[3]
			targets = append(targets, origin.Add(dx, dy))
		}
	}
	return targets
}

// VisibleTiles computes every cell a can currently see. The result is a
// fresh snapshot; perception modifiers (blindness and so on) are the
// caller's business.
func VisibleTiles(tm *TileMap, a *Actor) mapset.Set[Point] {
	seen := mapset.New[Point]()
	seen.Put(a.Pos)
	if a.Sight <= 0 {
		return seen
	}
	r := visionRadius(a)
	for _, target := range sightTargets(a.Pos, a.Sight) {
		traceLine(a.Pos, target, func(p Point) bool {
			if outOfSight(a.Pos, p, r) {
				return false
			}
			seen.Put(p)
			return !tm.IsOpaque(p)
		})
	}
	return seen
}

// VisibleActors returns the actors a can see, in world order.
func (w *World) VisibleActors(a *Actor) []*Actor {
	visible := VisibleTiles(w.Map, a)
	var out []*Actor
	for _, other := range w.actors {
		if other == a {
			continue
		}
		if visible.Has(other.Pos) {
			out = append(out, other)
		}
	}
	return out
}

// VisibleTiles computes the cells a can see on the world's map.
func (w *World) VisibleTiles(a *Actor) mapset.Set[Point] {
	visible := VisibleTiles(w.Map, a)
	w.Log.AddVerbose(w.Turn(), a.Label, "vision", "scan",
		"visible cells", float64(visible.Size()))
	return visible
}

// MarkSeen flags every on-map cell of cells as seen.
func (tm *TileMap) MarkSeen(cells mapset.Set[Point]) {
	cells.Each(func(p Point) {
		if tm.InBounds(p) {
			tm.Tiles[tm.index(p)].Flags |= TileFlagSeen
		}
	})
}

// LookAt returns the direction from a toward a transparent target in plain sight.
func (w *World) LookAt(a *Actor, target Point) Direction {
	return LookAt(w.Map, a, target)
}

// CanSee reports whether a has an unbroken line of sight to target.
func (w *World) CanSee(a *Actor, target Point) bool {
	return HasLineOfSight(w.Map, a, target)
}
