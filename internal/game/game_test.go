package game

import "testing"

func TestSimSpeedSteps(t *testing.T) {
	if got := fasterSpeed(0); got != 1 {
		t.Fatalf("faster from paused = %v, want 1", got)
	}
	if got := fasterSpeed(16); got != 16 {
		t.Fatalf("faster at top speed = %v, want 16", got)
	}
	if got := slowerSpeed(4); got != 2 {
		t.Fatalf("slower from 4 = %v, want 2", got)
	}
	if got := slowerSpeed(0); got != 0 {
		t.Fatalf("slower from paused = %v, want 0", got)
	}
}

func TestTileColor_HiddenDoorLooksLikeWall(t *testing.T) {
	wall := Tile{Terrain: TerrainWall, Flags: TileFlagSeen}
	secret := Tile{Terrain: TerrainDoorClosed, Flags: TileFlagSeen | TileFlagHidden}
	if tileColor(&secret) != tileColor(&wall) {
		t.Fatal("a hidden door must be drawn as wall")
	}
	unseen := Tile{Terrain: TerrainWall}
	if tileColor(&unseen) == tileColor(&wall) {
		t.Fatal("unseen cells should be dimmed")
	}
}

func TestNew_ViewerLevel(t *testing.T) {
	g := New()
	w, h := g.Layout(0, 0)
	tm := g.td.World.Map
	if tm.Cols != 40 || tm.Rows != 13 {
		t.Fatalf("viewer level is %dx%d", tm.Cols, tm.Rows)
	}
	if w <= tm.Cols*cellSize || h <= tm.Rows*cellSize {
		t.Fatalf("layout %dx%d too small for the level", w, h)
	}
	for _, a := range g.td.World.Actors() {
		if _, ok := a.Brain.(goalSeeker); !ok {
			t.Fatalf("%s has no goal to draw", a.Label)
		}
	}
	if g.selectedActor() == nil {
		t.Fatal("expected a selected actor")
	}
}

func TestViewerDungeon_PatrolExplores(t *testing.T) {
	td := newViewerDungeon()
	td.RunTicks(20)
	p := td.Actor("p")
	if p.Turns() == 0 {
		t.Fatal("patrol never acted")
	}
	if !td.World.Map.HasFlag(Point{X: 6, Y: 2}, TileFlagSeen) {
		t.Fatalf("patrol should have seen its starting room:\n%s", td.Dump())
	}
}
