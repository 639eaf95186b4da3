package game

import (
	"fmt"

	"github.com/zyedidia/generic/heap"
)

// Per-cell move costs.
const (
	costOrdinary        = 1
	costClosedDoor      = 2
	costRisky           = 10
	costOccupied        = 10
	costUnknown         = 13
	costHazardous       = 2000
	costKnownImpassable = 10000
	costSolid           = -1 // never entered

	// Priorities are fixed point so the fractional heuristic stays exact.
	prioScale       = 32
	heuristicCostly = prioScale / 8  // chebyshev/8 per cell for moves costing more than 2
	heuristicCheap  = prioScale / 32 // chebyshev/32 otherwise
	maxHops         = 255
)

type nodeState uint8

const (
	nodeUnvisited nodeState = iota
	nodeOpen
	nodeClosed
)

type pathNode struct {
	parent   Point
	cost     int
	priority int
	hops     uint8
	state    nodeState
}

// PathNode is the public view of a planned cell: its next step toward the
// goal, the cost of getting from here to the goal and the hop count.
type PathNode struct {
	Parent Point
	Cost   int
	Hops   int
	Closed bool // cost is final; open nodes only carry a provisional route
}

type openEntry struct {
	pos      Point
	cost     int
	priority int
}

func openLess(a, b openEntry) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.pos.Y != b.pos.Y {
		return a.pos.Y < b.pos.Y
	}
	return a.pos.X < b.pos.X
}

// Planner finds routes for one actor over one map. A planner keeps the node
// table of its last Plan call so that NodeAt/Route can serve every cell the
// search absorbed. Use one planner per concurrent caller.
type Planner struct {
	tm    *TileMap
	actor *Actor
	nodes map[Point]*pathNode
	open  *heap.Heap[openEntry]
	start Point
	goal  Point
	found bool
}

// NewPlanner returns a planner for a over tm. a may be nil, in which case
// the default passability rules and no occupancy exemption apply.
func NewPlanner(tm *TileMap, a *Actor) *Planner {
	return &Planner{
		tm:    tm,
		actor: a,
		nodes: make(map[Point]*pathNode),
	}
}

func (pl *Planner) passable(t Terrain) bool {
	if pl.actor != nil {
		return pl.actor.Passable(t)
	}
	return t.UsuallyPassable() || t.IsDoor()
}

// MoveCost returns the cost of stepping into p. p must be on the map.
func (pl *Planner) MoveCost(p Point) int {
	if !pl.tm.InBounds(p) {
		panic(fmt.Sprintf("game: move cost requested for off-map cell %v", p))
	}
	t := pl.tm.At(p)
	if t.Flags&TileFlagSeen == 0 {
		return costUnknown
	}
	// A hidden door looks like wall to everyone who has not found it.
	if t.Terrain.Solid() || t.Flags&TileFlagHidden != 0 {
		return costSolid
	}
	if !pl.passable(t.Terrain) || t.Flags&TileFlagLocked != 0 {
		return costKnownImpassable
	}
	var cost int
	switch {
	case t.Terrain.Hazardous():
		cost = costHazardous
	case t.Terrain.Risky():
		cost = costRisky
	case t.Terrain == TerrainDoorClosed:
		cost = costClosedDoor
	default:
		cost = costOrdinary
	}
	if t.Occupant != nil && t.Occupant != pl.actor {
		cost += costOccupied
	}
	return cost
}

// hopLimit bounds how deep the search may go.
func (pl *Planner) hopLimit() int {
	return min(2*max(pl.tm.Cols, pl.tm.Rows), maxHops)
}

// heuristic estimates the remaining cost from p to the search target.
func (pl *Planner) heuristic(p Point, stepCost int) int {
	d := chebyshev(p, pl.start)
	if stepCost > costClosedDoor {
		return d * heuristicCostly
	}
	return d * heuristicCheap
}

// Plan searches for a route from start to goal. The search runs backwards,
// from goal toward start, so that every cell it closes ends up with a
// queryable route to goal; one Plan call can serve several starting points.
func (pl *Planner) Plan(start, goal Point) bool {
	clear(pl.nodes)
	pl.open = heap.New[openEntry](openLess)
	pl.start, pl.goal, pl.found = start, goal, false

	if !pl.tm.InBounds(start) || !pl.tm.InBounds(goal) {
		return false
	}
	if pl.MoveCost(start) == costSolid || pl.MoveCost(goal) == costSolid {
		return false
	}

	limit := pl.hopLimit()
	root := &pathNode{parent: goal, state: nodeOpen}
	root.priority = pl.heuristic(goal, costOrdinary)
	pl.nodes[goal] = root
	pl.open.Push(openEntry{pos: goal, cost: 0, priority: root.priority})

	for pl.open.Size() > 0 {
		e, _ := pl.open.Pop()
		n := pl.nodes[e.pos]
		if n.state == nodeClosed || e.cost != n.cost {
			continue // stale entry
		}
		n.state = nodeClosed
		if e.pos == start {
			pl.found = true
			return true
		}
		if int(n.hops) >= limit {
			continue
		}
		// Every neighbour reaches n by stepping into it.
		step := pl.MoveCost(e.pos)
		for _, o := range directionOffsets {
			next := e.pos.Add(o[0], o[1])
			if !pl.tm.InBounds(next) {
				continue
			}
			if next != start && pl.MoveCost(next) == costSolid {
				continue
			}
			cost := n.cost + step
			m := pl.nodes[next]
			if m == nil {
				m = &pathNode{}
				pl.nodes[next] = m
			} else if m.state == nodeClosed || cost >= m.cost {
				continue
			}
			m.parent = e.pos
			m.cost = cost
			m.hops = uint8(min(int(n.hops)+1, maxHops)) // #nosec G115 -- capped at maxHops
			m.priority = cost*prioScale + pl.heuristic(next, step)
			m.state = nodeOpen
			pl.open.Push(openEntry{pos: next, cost: cost, priority: m.priority})
		}
	}
	return false
}

// Found reports whether the last Plan call reached its start.
func (pl *Planner) Found() bool {
	return pl.found
}

// Goal returns the goal of the last Plan call.
func (pl *Planner) Goal() Point {
	return pl.goal
}

// NodeAt returns the search node for p from the last Plan call.
func (pl *Planner) NodeAt(p Point) (PathNode, bool) {
	n, ok := pl.nodes[p]
	if !ok || n.state == nodeUnvisited {
		return PathNode{}, false
	}
	return PathNode{
		Parent: n.parent,
		Cost:   n.cost,
		Hops:   int(n.hops),
		Closed: n.state == nodeClosed,
	}, true
}

// NextStep returns the direction of the first step from p toward the goal.
// It fails for cells the last search did not close and for the goal itself.
func (pl *Planner) NextStep(p Point) (Direction, bool) {
	n, ok := pl.NodeAt(p)
	if !ok || !n.Closed || p == pl.goal {
		return DirectionInvalid, false
	}
	return DirectionOf(n.Parent.X-p.X, n.Parent.Y-p.Y), true
}

// Route returns the cells from p (exclusive) to the goal (inclusive), or nil
// if p was not closed by the last search.
func (pl *Planner) Route(p Point) []Point {
	n, ok := pl.NodeAt(p)
	if !ok || !n.Closed {
		return nil
	}
	var route []Point
	for cur := p; cur != pl.goal; {
		cur = pl.nodes[cur].parent
		route = append(route, cur)
		if len(route) > maxHops {
			panic(fmt.Sprintf("game: route from %v does not reach goal %v", p, pl.goal))
		}
	}
	return route
}

// Plan runs a fresh planner for a from its position to goal and logs the
// outcome.
func (w *World) Plan(a *Actor, goal Point) (*Planner, bool) {
	pl := NewPlanner(w.Map, a)
	ok := pl.Plan(a.Pos, goal)
	if !ok {
		w.Log.Add(w.Turn(), a.Label, "path", "no_route",
			fmt.Sprintf("%v → %v", a.Pos, goal), 0)
		return pl, false
	}
	n, _ := pl.NodeAt(a.Pos)
	w.Log.Add(w.Turn(), a.Label, "path", "plan",
		fmt.Sprintf("%v → %v cost=%d hops=%d", a.Pos, goal, n.Cost, n.Hops), float64(n.Cost))
	w.Log.AddVerbose(w.Turn(), a.Label, "path", "nodes",
		fmt.Sprintf("%d nodes", len(pl.nodes)), float64(len(pl.nodes)))
	return pl, true
}
