package game

import "math"

// Direction is one of the eight compass directions.
type Direction int8

const (
	DirectionInvalid Direction = iota - 1
	DirectionN
	DirectionNE
	DirectionE
	DirectionSE
	DirectionS
	DirectionSW
	DirectionW
	DirectionNW
)

// directionOffsets is indexed by Direction; y grows downward.
var directionOffsets = [8][2]int{
	DirectionN:  {0, -1},
	DirectionNE: {1, -1},
	DirectionE:  {1, 0},
	DirectionSE: {1, 1},
	DirectionS:  {0, 1},
	DirectionSW: {-1, 1},
	DirectionW:  {-1, 0},
	DirectionNW: {-1, -1},
}

var directionNames = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Valid reports whether d is one of the eight compass directions.
func (d Direction) Valid() bool {
	return d >= DirectionN && d <= DirectionNW
}

// Offset returns the (dx, dy) step for d, or (0, 0) if d is invalid.
func (d Direction) Offset() (int, int) {
	if !d.Valid() {
		return 0, 0
	}
	o := directionOffsets[d]
	return o[0], o[1]
}

func (d Direction) String() string {
	if !d.Valid() {
		return "invalid"
	}
	return directionNames[d]
}

// DirectionOf returns the compass direction of a one-cell step, or
// DirectionInvalid if (dx, dy) is not a king move.
func DirectionOf(dx, dy int) Direction {
	for d, o := range directionOffsets {
		if o[0] == dx && o[1] == dy {
			return Direction(d)
		}
	}
	return DirectionInvalid
}

// nearestDirection rounds the vector (dx, dy) to the closest compass
// direction. (0, 0) has no direction.
func nearestDirection(dx, dy int) Direction {
	if dx == 0 && dy == 0 {
		return DirectionInvalid
	}
	// Angle measured clockwise from north on a y-down grid.
	angle := math.Atan2(float64(dx), float64(-dy))
	octant := int(math.Round(angle/(math.Pi/4))+8) % 8
	return Direction(octant)
}

// traceLine walks the integer DDA line from from to to, calling visit for
// every cell after from, up to and including to. The walk stops early when
// visit returns false; traceLine reports whether it reached to.
func traceLine(from, to Point, visit func(Point) bool) bool {
	dx := absInt(to.X - from.X)
	dy := absInt(to.Y - from.Y)
	sx, sy := 1, 1
	if to.X < from.X {
		sx = -1
	}
	if to.Y < from.Y {
		sy = -1
	}
	p := from
	if dx >= dy {
		err := dx / 2
		for i := 0; i < dx; i++ {
			p.X += sx
			err -= dy
			if err < 0 {
				p.Y += sy
				err += dx
			}
			if !visit(p) {
				return false
			}
		}
		return true
	}
	err := dy / 2
	for i := 0; i < dy; i++ {
		p.Y += sy
		err -= dx
		if err < 0 {
			p.X += sx
			err += dy
		}
		if !visit(p) {
			return false
		}
	}
	return true
}

// visionRadius derives the soft sight radius from the actor's sight
// attribute. Cells further than radius+0.5 are out of sight.
func visionRadius(a *Actor) float64 {
	return float64(a.Sight) - 0.5
}

// outOfSight reports whether p lies beyond the soft radius r around origin.
func outOfSight(origin, p Point, r float64) bool {
	dx := float64(p.X - origin.X)
	dy := float64(p.Y - origin.Y)
	return math.Sqrt(dx*dx+dy*dy)-0.5 > r
}

// HasLineOfSight reports whether an unbroken, range-limited straight trace
// runs from a to target. Intermediate cells must be transparent; the target
// itself may be opaque (walls can be looked at).
func HasLineOfSight(tm *TileMap, a *Actor, target Point) bool {
	if target == a.Pos {
		return true
	}
	r := visionRadius(a)
	if outOfSight(a.Pos, target, r) {
		return false
	}
	return traceLine(a.Pos, target, func(p Point) bool {
		if outOfSight(a.Pos, p, r) {
			return false
		}
		return p == target || !tm.IsOpaque(p)
	})
}

// LookAt returns the compass direction from a toward target if every cell
// of the straight trace, target included, is transparent and in range, or
// DirectionInvalid otherwise. Unlike HasLineOfSight an opaque target fails.
func LookAt(tm *TileMap, a *Actor, target Point) Direction {
	if target == a.Pos || tm.IsOpaque(target) || !HasLineOfSight(tm, a, target) {
		return DirectionInvalid
	}
	return nearestDirection(target.X-a.Pos.X, target.Y-a.Pos.Y)
}
