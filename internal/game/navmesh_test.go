package game

import (
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

func exploredMap(rows ...string) *TileMap {
	tm := ParseTileMap(rows...)
	tm.MarkAllSeen()
	return tm
}

// checkRoute verifies that route is a connected chain of king moves from
// start to goal.
func checkRoute(t *testing.T, start, goal Point, route []Point) {
	t.Helper()
	if len(route) == 0 {
		t.Fatal("empty route")
	}
	if route[len(route)-1] != goal {
		t.Fatalf("route ends at %v, want %v", route[len(route)-1], goal)
	}
	prev := start
	for _, p := range route {
		if chebyshev(prev, p) != 1 {
			t.Fatalf("route jumps from %v to %v: %v", prev, p, route)
		}
		prev = p
	}
}

func TestPlanner_StraightCorridor(t *testing.T) {
	tm := exploredMap(
		"#########",
		"#.......#",
		"#########",
	)
	pl := NewPlanner(tm, nil)
	start, goal := Point{X: 1, Y: 1}, Point{X: 7, Y: 1}
	if !pl.Plan(start, goal) {
		t.Fatal("expected a route along the corridor")
	}
	want := []Point{{2, 1}, {3, 1}, {4, 1}, {5, 1}, {6, 1}, {7, 1}}
	if diff := gocmp.Diff(want, pl.Route(start)); diff != "" {
		t.Fatalf("route mismatch (-want +got):\n%s", diff)
	}
	n, ok := pl.NodeAt(start)
	if !ok || !n.Closed || n.Cost != 6 || n.Hops != 6 {
		t.Fatalf("start node = %+v ok=%v, want cost 6 hops 6", n, ok)
	}
	if d, ok := pl.NextStep(start); !ok || d != DirectionE {
		t.Fatalf("first step = %s ok=%v, want E", d, ok)
	}
}

func TestPlanner_RouteFromIntermediateCell(t *testing.T) {
	tm := exploredMap(
		"#########",
		"#.......#",
		"#########",
	)
	pl := NewPlanner(tm, nil)
	goal := Point{X: 7, Y: 1}
	pl.Plan(Point{X: 1, Y: 1}, goal)
	// The backward search closed the cells between start and goal, so their
	// routes are available without another search.
	want := []Point{{5, 1}, {6, 1}, {7, 1}}
	if diff := gocmp.Diff(want, pl.Route(Point{X: 4, Y: 1})); diff != "" {
		t.Fatalf("route from (4,1) mismatch (-want +got):\n%s", diff)
	}
	if _, ok := pl.NextStep(goal); ok {
		t.Fatal("the goal has no next step")
	}
	if pl.Route(Point{X: 0, Y: 0}) != nil {
		t.Fatal("a wall was never closed and has no route")
	}
}

func TestPlanner_OpenRoomCost(t *testing.T) {
	tm := NewTileMap(12, 12)
	tm.MarkAllSeen()
	pl := NewPlanner(tm, nil)
	start, goal := Point{X: 1, Y: 2}, Point{X: 9, Y: 6}
	if !pl.Plan(start, goal) {
		t.Fatal("expected a route")
	}
	n, _ := pl.NodeAt(start)
	if n.Cost != chebyshev(start, goal) {
		t.Fatalf("cost=%d, want %d", n.Cost, chebyshev(start, goal))
	}
	checkRoute(t, start, goal, pl.Route(start))
}

func TestPlanner_Symmetric(t *testing.T) {
	tm := exploredMap(
		"############",
		"#....#.....#",
		"#.##.#.###.#",
		"#..#...#...#",
		"##.#####.#.#",
		"#..........#",
		"############",
	)
	pairs := [][2]Point{
		{{1, 1}, {10, 1}},
		{{1, 5}, {10, 3}},
		{{4, 2}, {8, 5}},
	}
	for _, pr := range pairs {
		fwd, back := NewPlanner(tm, nil), NewPlanner(tm, nil)
		if !fwd.Plan(pr[0], pr[1]) || !back.Plan(pr[1], pr[0]) {
			t.Fatalf("%v <-> %v: expected routes both ways", pr[0], pr[1])
		}
		a, _ := fwd.NodeAt(pr[0])
		b, _ := back.NodeAt(pr[1])
		if a.Cost != b.Cost {
			t.Fatalf("%v <-> %v: costs differ %d vs %d", pr[0], pr[1], a.Cost, b.Cost)
		}
		checkRoute(t, pr[0], pr[1], fwd.Route(pr[0]))
		checkRoute(t, pr[1], pr[0], back.Route(pr[1]))
	}
}

func TestPlanner_DisconnectedRegions(t *testing.T) {
	tm := exploredMap(
		"#########",
		"#...#...#",
		"#...#...#",
		"#########",
	)
	pl := NewPlanner(tm, nil)
	if pl.Plan(Point{X: 1, Y: 1}, Point{X: 7, Y: 2}) {
		t.Fatal("no route exists across a known wall")
	}
	if pl.Found() || pl.Route(Point{X: 1, Y: 1}) != nil {
		t.Fatal("failed plan should leave no route")
	}
}

func TestPlanner_UnknownCellsAreGuessed(t *testing.T) {
	tm := ParseTileMap(
		"#########",
		"#...#...#",
		"#...#...#",
		"#########",
	)
	// Nothing is seen: the wall might not be there, so the planner tries.
	pl := NewPlanner(tm, nil)
	start, goal := Point{X: 1, Y: 1}, Point{X: 7, Y: 1}
	if !pl.Plan(start, goal) {
		t.Fatal("expected an optimistic route through unknown cells")
	}
	n, _ := pl.NodeAt(start)
	if n.Cost != 6*costUnknown {
		t.Fatalf("cost=%d, want %d", n.Cost, 6*costUnknown)
	}
}

func TestPlanner_MoveCosts(t *testing.T) {
	tm := exploredMap(".+LS~-_&#<")
	swimmer := NewActor(1, "f", 100, 4)
	landlubber := NewActor(2, "d", 100, 4)
	landlubber.CanPass = func(t Terrain) bool {
		return t != TerrainShallowWater && (t.UsuallyPassable() || t.IsDoor())
	}
	cases := []struct {
		x          int
		want, land int
	}{
		{0, costOrdinary, costOrdinary},
		{1, costClosedDoor, costClosedDoor},
		{2, costKnownImpassable, costKnownImpassable}, // locked
		{3, costSolid, costSolid},                     // secret door looks like wall
		{4, costHazardous, costHazardous},
		{5, costRisky, costKnownImpassable},
		{6, costRisky, costRisky},
		{7, costHazardous, costHazardous},
		{8, costSolid, costSolid},
		{9, costOrdinary, costOrdinary},
	}
	sp, lp := NewPlanner(tm, swimmer), NewPlanner(tm, landlubber)
	for _, c := range cases {
		p := Point{X: c.x, Y: 0}
		if got := sp.MoveCost(p); got != c.want {
			t.Errorf("%v (%s): cost=%d, want %d", p, tm.TerrainAt(p), got, c.want)
		}
		if got := lp.MoveCost(p); got != c.land {
			t.Errorf("%v (%s) for landlubber: cost=%d, want %d", p, tm.TerrainAt(p), got, c.land)
		}
	}

	tm.ClearFlag(Point{X: 0, Y: 0}, TileFlagSeen)
	if got := sp.MoveCost(Point{X: 0, Y: 0}); got != costUnknown {
		t.Fatalf("unseen cell cost=%d, want %d", got, costUnknown)
	}
	tm.Tiles[9].Occupant = landlubber
	if got := sp.MoveCost(Point{X: 9, Y: 0}); got != costOrdinary+costOccupied {
		t.Fatalf("occupied cell cost=%d, want %d", got, costOrdinary+costOccupied)
	}
	if got := lp.MoveCost(Point{X: 9, Y: 0}); got != costOrdinary {
		t.Fatalf("own cell cost=%d, want %d", got, costOrdinary)
	}
}

func TestPlanner_MoveCostOffMapPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "off-map") {
			t.Fatalf("expected off-map panic, got %v", r)
		}
	}()
	NewPlanner(NewTileMap(3, 3), nil).MoveCost(Point{X: 3, Y: 3})
}

func TestPlanner_AvoidsOccupiedAndHazards(t *testing.T) {
	tm := exploredMap(
		"#######",
		"#.....#",
		"#..&..#",
		"#.....#",
		"#######",
	)
	pl := NewPlanner(tm, nil)
	start, goal := Point{X: 1, Y: 2}, Point{X: 5, Y: 2}
	if !pl.Plan(start, goal) {
		t.Fatal("expected a route around the lava")
	}
	route := pl.Route(start)
	for _, p := range route {
		if p == (Point{X: 3, Y: 2}) {
			t.Fatalf("route walks through lava: %v", route)
		}
	}
	if n, _ := pl.NodeAt(start); n.Cost != 4 {
		t.Fatalf("detour cost=%d, want 4", n.Cost)
	}

	tm.SetTerrain(Point{X: 3, Y: 2}, TerrainFloor)
	tm.Tiles[tm.index(Point{X: 3, Y: 2})].Occupant = NewActor(9, "o", 0, 0)
	pl.Plan(start, goal)
	for _, p := range pl.Route(start) {
		if p == (Point{X: 3, Y: 2}) {
			t.Fatalf("route walks through an occupied cell: %v", pl.Route(start))
		}
	}
}

func TestPlanner_PrefersDoorOverIce(t *testing.T) {
	tm := exploredMap(
		"#####",
		"#.+.#",
		"#.#.#",
		"#._.#",
		"#####",
	)
	pl := NewPlanner(tm, nil)
	start, goal := Point{X: 1, Y: 2}, Point{X: 3, Y: 2}
	if !pl.Plan(start, goal) {
		t.Fatal("expected a route")
	}
	// Either way is two steps; the door costs 2, the ice 10.
	if n, _ := pl.NodeAt(start); n.Cost != 3 {
		t.Fatalf("cost=%d, want 3 via the door: %v", n.Cost, pl.Route(start))
	}
	if r := pl.Route(start); r[0] != (Point{X: 2, Y: 1}) {
		t.Fatalf("expected to go through the door, got %v", r)
	}
}

func TestPlanner_HopLimit(t *testing.T) {
	row := "#" + strings.Repeat(".", 298) + "#"
	wall := strings.Repeat("#", len(row))
	tm := exploredMap(wall, row, wall)
	pl := NewPlanner(tm, nil)
	if got := pl.hopLimit(); got != maxHops {
		t.Fatalf("hop limit=%d, want %d", got, maxHops)
	}
	if !pl.Plan(Point{X: 1, Y: 1}, Point{X: 200, Y: 1}) {
		t.Fatal("199 hops is within the limit")
	}
	if pl.Plan(Point{X: 1, Y: 1}, Point{X: 298, Y: 1}) {
		t.Fatal("297 hops exceeds the limit")
	}

	small := NewPlanner(exploredMap("#######", "#.....#", "#######"), nil)
	if got := small.hopLimit(); got != 14 {
		t.Fatalf("small map hop limit=%d, want 14", got)
	}
}

func TestPlanner_BadEndpoints(t *testing.T) {
	tm := exploredMap(
		"#####",
		"#...#",
		"#####",
	)
	pl := NewPlanner(tm, nil)
	cases := [][2]Point{
		{{-1, 1}, {3, 1}},
		{{1, 1}, {5, 1}},
		{{1, 1}, {0, 1}}, // wall
		{{4, 1}, {1, 1}}, // wall
	}
	for _, c := range cases {
		if pl.Plan(c[0], c[1]) {
			t.Errorf("Plan(%v, %v) should fail", c[0], c[1])
		}
	}
	if !pl.Plan(Point{X: 2, Y: 1}, Point{X: 2, Y: 1}) {
		t.Fatal("start == goal is trivially reachable")
	}
	if r := pl.Route(Point{X: 2, Y: 1}); len(r) != 0 {
		t.Fatalf("route to self should be empty, got %v", r)
	}
}

func TestWorld_PlanLogs(t *testing.T) {
	td := NewTestDungeon(
		WithExplored(),
		WithActor("g", 1, 1, 100, 4, nil),
	)
	w := td.World
	if _, ok := w.Plan(td.Actor("g"), Point{X: 7, Y: 3}); !ok {
		t.Fatal("expected a route")
	}
	if _, ok := w.Plan(td.Actor("g"), Point{X: 0, Y: 0}); ok {
		t.Fatal("walls are not reachable")
	}
	e, ok := td.SimLog.LastOf("path", "plan")
	if !ok || e.Actor != "g" || e.NumVal != 6 {
		t.Fatalf("unexpected plan entry %+v ok=%v", e, ok)
	}
	if td.SimLog.CountCategory("path", "no_route") != 1 {
		t.Fatalf("expected one no_route entry, log:\n%s", td.SimLog.Format())
	}
}
