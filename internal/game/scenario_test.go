package game

import (
	"testing"

	gocmp "github.com/google/go-cmp/cmp"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, td *TestDungeon) {
	t.Helper()
	entries := td.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block and the final map.
func dumpSummary(t *testing.T, td *TestDungeon) {
	t.Helper()
	t.Log(td.SimLog.Summary(td.World))
	t.Log("\n" + td.Dump())
}

var openHall = []string{
	"###########",
	"#.........#",
	"#.........#",
	"#.........#",
	"#.........#",
	"#.........#",
	"###########",
}

var splitHall = []string{
	"###########",
	"#....#....#",
	"#....+....#",
	"#....#....#",
	"###########",
}

// --- Scenario: Hunter catches a patrol in the open ---

func TestScenario_ChaseInOpenHall(t *testing.T) {
	td := NewTestDungeon(
		WithMap(openHall...),
		WithExplored(),
		WithChaser("h", 1, 1, 100, 12, "p", 20),
		WithPatrol("p", 8, 4, 50, 4, 40, Point{X: 8, Y: 4}, Point{X: 8, Y: 1}),
	)
	tick := td.RunUntil(func(td *TestDungeon) bool {
		return td.SimLog.CountCategory("chase", "caught") > 0
	}, 30)
	if tick < 0 {
		dumpLog(t, td)
		dumpSummary(t, td)
		t.Fatal("hunter never caught the patrol")
	}
	h, p := td.Actor("h"), td.Actor("p")
	if chebyshev(h.Pos, p.Pos) != 1 {
		t.Fatalf("caught at distance %d", chebyshev(h.Pos, p.Pos))
	}
	if td.SimLog.CountCategory("path", "no_route") != 0 {
		t.Fatalf("open hall should always have routes, log:\n%s", td.SimLog.Format())
	}
}

// --- Scenario: Hunter hears footsteps through a closed door ---

func TestScenario_HearThroughDoor(t *testing.T) {
	td := NewTestDungeon(
		WithMap(splitHall...),
		WithExplored(),
		WithChaser("h", 1, 2, 100, 3, "p", 0),
		WithPatrol("p", 9, 1, 100, 3, 200, Point{X: 9, Y: 1}, Point{X: 9, Y: 3}),
	)
	h := td.Actor("h")
	if len(td.World.VisibleActors(h)) != 0 {
		t.Fatal("hunter should not see through the wall and door")
	}
	td.RunTicks(4)
	if !td.SimLog.HasEntry("sound", "heard", "footstep from p") {
		dumpLog(t, td)
		t.Fatal("hunter should hear the patrol's footsteps")
	}
	heard, _ := td.SimLog.LastOf("sound", "heard")
	if heard.Actor != "h" {
		t.Fatalf("unexpected listener %q", heard.Actor)
	}
	if h.Pos.X <= 1 {
		dumpSummary(t, td)
		t.Fatalf("hunter should head toward the noise, still at %v", h.Pos)
	}
}

// --- Scenario: nothing is heard on the surface ---

func TestScenario_OverworldIsQuiet(t *testing.T) {
	td := NewTestDungeon(
		WithMap(splitHall...),
		WithOverworld(),
		WithExplored(),
		WithChaser("h", 1, 2, 100, 3, "p", 0),
		WithPatrol("p", 9, 1, 100, 3, 200, Point{X: 9, Y: 1}, Point{X: 9, Y: 3}),
	)
	td.RunTicks(6)
	if n := td.SimLog.CountCategory("sound", "heard"); n != 0 {
		t.Fatalf("expected silence on an overworld level, %d noises heard", n)
	}
	if h := td.Actor("h"); h.Pos != (Point{X: 1, Y: 2}) {
		t.Fatalf("a hunter with no lead should stay put, moved to %v", h.Pos)
	}
}

// --- Scenario: patrol explores as it walks ---

func TestScenario_PatrolMarksSeen(t *testing.T) {
	td := NewTestDungeon(
		WithMap(openHall...),
		WithPatrol("p", 1, 3, 100, 3, 0, Point{X: 9, Y: 3}),
	)
	if td.World.Map.HasFlag(Point{X: 9, Y: 3}, TileFlagSeen) {
		t.Fatal("nothing should be seen before the first turn")
	}
	td.RunTicks(12)
	if !td.World.Map.HasFlag(Point{X: 9, Y: 3}, TileFlagSeen) {
		dumpSummary(t, td)
		t.Fatal("the far end of the hall should have been seen on the way")
	}
	if p := td.Actor("p"); p.Pos != (Point{X: 9, Y: 3}) {
		t.Fatalf("patrol should have reached its only waypoint, at %v", p.Pos)
	}
}

// --- Determinism: identical setups give identical runs ---

func TestScenario_Deterministic(t *testing.T) {
	run := func() (SimSnapshot, []SimLogEntry) {
		td := NewTestDungeon(
			WithMap(splitHall...),
			WithChaser("h", 1, 2, 80, 6, "p", 30),
			WithPatrol("p", 9, 1, 60, 4, 120, Point{X: 9, Y: 1}, Point{X: 6, Y: 3}, Point{X: 2, Y: 1}),
			WithActor("s", 4, 3, 0, 2, nil),
		)
		td.RunTicks(25)
		return td.Snapshot(), td.SimLog.Entries()
	}
	snapA, logA := run()
	snapB, logB := run()
	if diff := gocmp.Diff(snapA, snapB); diff != "" {
		t.Fatalf("snapshots differ (-first +second):\n%s", diff)
	}
	if diff := gocmp.Diff(logA, logB); diff != "" {
		t.Fatalf("logs differ (-first +second):\n%s", diff)
	}
}
