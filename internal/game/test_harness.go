package game

import (
	"errors"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// TestDungeon is a headless harness shared by the tests and the headless
// report. It builds a World from map rows and actor options and drives it
// by environment ticks.
type TestDungeon struct {
	World  *World
	SimLog *SimLog
	Actors []*Actor

	rows     []string
	kind     LevelKind
	explored bool
	cfg      Config
	byLabel  map[string]*Actor
	nextID   int
	pending  []pendingBrain
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // map, config, verbose: applied first
	simOptActor                      // add actors: applied once the world exists
	simOptBrain                      // brains that refer to other actors
)

// SimOption is a builder function applied to a TestDungeon during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestDungeon)
}

// WithMap sets the level layout, one string per row, in ParseTileMap symbols.
func WithMap(rows ...string) SimOption {
	return SimOption{simOptInfra, func(td *TestDungeon) {
		td.rows = rows
	}}
}

// WithOverworld makes the level an overworld level (no sound).
func WithOverworld() SimOption {
	return SimOption{simOptInfra, func(td *TestDungeon) {
		td.kind = LevelOverworld
	}}
}

// WithExplored marks every tile as seen before any actor is placed.
func WithExplored() SimOption {
	return SimOption{simOptInfra, func(td *TestDungeon) {
		td.explored = true
	}}
}

// WithVerbose enables per-turn verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(td *TestDungeon) {
		td.cfg.Verbose = v
	}}
}

// WithSoundConfig overrides the sound constants.
func WithSoundConfig(c SoundConfig) SimOption {
	return SimOption{simOptInfra, func(td *TestDungeon) {
		td.cfg.Sound = c
	}}
}

// WithActor places an actor with an optional brain.
func WithActor(label string, x, y, speed, sight int, brain Brain) SimOption {
	return SimOption{simOptActor, func(td *TestDungeon) {
		a := td.addActor(label, x, y, speed, sight)
		a.Brain = brain
	}}
}

// WithChaser places an actor that hunts the actor labelled target, by sight
// and by the noises it makes. Its own footsteps carry footstep volume.
func WithChaser(label string, x, y, speed, sight int, target string, footstep int) SimOption {
	return SimOption{simOptActor, func(td *TestDungeon) {
		td.addActor(label, x, y, speed, sight)
		// The target may be declared after the chaser; bind in the brain pass.
		td.deferBrain(label, func(td *TestDungeon) Brain {
			return &Chaser{Target: td.Actor(target), Footstep: footstep}
		})
	}}
}

// WithPatrol places an actor that walks between waypoints in a loop, making
// footstep noise as it goes.
func WithPatrol(label string, x, y, speed, sight, footstep int, waypoints ...Point) SimOption {
	return SimOption{simOptActor, func(td *TestDungeon) {
		a := td.addActor(label, x, y, speed, sight)
		a.Brain = &Patrol{Waypoints: waypoints, Footstep: footstep}
	}}
}

// WithBrain replaces the brain of an already placed actor.
func WithBrain(label string, brain Brain) SimOption {
	return SimOption{simOptBrain, func(td *TestDungeon) {
		td.byLabel[label].Brain = brain
	}}
}

// deferBrain records a brain constructor to run in the brain pass.
func (td *TestDungeon) deferBrain(label string, mk func(*TestDungeon) Brain) {
	td.pending = append(td.pending, pendingBrain{label: label, mk: mk})
}

type pendingBrain struct {
	label string
	mk    func(*TestDungeon) Brain
}

// NewTestDungeon constructs a TestDungeon from the given options in ordered passes:
//  1. Infrastructure (map, config, verbose)
//  2. Build the World
//  3. Actors
//  4. Brains that refer to other actors
func NewTestDungeon(opts ...SimOption) *TestDungeon {
	td := &TestDungeon{
		rows: []string{
			"#########",
			"#.......#",
			"#.......#",
			"#.......#",
			"#########",
		},
		cfg:     DefaultConfig(),
		byLabel: make(map[string]*Actor),
		nextID:  1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(td)
		}
	}
	tm := ParseTileMap(td.rows...)
	tm.Kind = td.kind
	if td.explored {
		tm.MarkAllSeen()
	}
	td.World = NewWorld(tm, td.cfg)
	td.SimLog = td.World.Log
	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(td)
		}
	}
	for _, p := range td.pending {
		td.byLabel[p.label].Brain = p.mk(td)
	}
	td.pending = nil
	for _, o := range opts {
		if o.kind == simOptBrain {
			o.fn(td)
		}
	}
	return td
}

// addActor is the internal helper used by the actor options. A placement
// failure is a broken test fixture and panics.
func (td *TestDungeon) addActor(label string, x, y, speed, sight int) *Actor {
	a := NewActor(td.nextID, label, speed, sight)
	td.nextID++
	if err := td.World.AddActor(a, Point{X: x, Y: y}); err != nil {
		panic(fmt.Sprintf("test dungeon: %v", err))
	}
	td.Actors = append(td.Actors, a)
	td.byLabel[label] = a
	return a
}

// Actor returns the actor with the given label, or nil.
func (td *TestDungeon) Actor(label string) *Actor {
	return td.byLabel[label]
}

// CurrentTick returns the number of environment ticks so far.
func (td *TestDungeon) CurrentTick() int {
	return td.World.Turn()
}

// RunTicks advances the simulation n environment ticks. It stops early if no
// actor can act, since the clock only moves when someone is waiting for a
// turn. With only slow actors it may overshoot by the ticks that pass between
// two turns.
func (td *TestDungeon) RunTicks(n int) {
	end := td.World.Turn() + n
	for td.World.Turn() < end {
		if _, ok := td.World.Scheduler().Peek(); !ok {
			return
		}
		td.World.Simulate()
	}
}

// RunUntil advances the simulation up to maxTicks environment ticks, stopping
// early if predicate returns true after a batch. Returns the tick at which
// the predicate was satisfied, or -1.
func (td *TestDungeon) RunUntil(predicate func(*TestDungeon) bool, maxTicks int) int {
	end := td.World.Turn() + maxTicks
	for td.World.Turn() < end {
		if _, ok := td.World.Scheduler().Peek(); !ok {
			return -1
		}
		td.World.Simulate()
		if predicate(td) {
			return td.World.Turn()
		}
	}
	return -1
}

// Dump renders the level with every actor drawn by label.
func (td *TestDungeon) Dump() string {
	return td.World.Map.Dump(nil)
}

// ActorSnapshot is a lightweight copy of an actor's state at a tick.
type ActorSnapshot struct {
	ID    int
	Label string
	Pos   Point
	Turns int
	Timer int
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick   int
	Actors []ActorSnapshot
}

// Snapshot returns the current state of all actors still in the world.
func (td *TestDungeon) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: td.World.Turn()}
	for _, a := range td.World.Actors() {
		snap.Actors = append(snap.Actors, ActorSnapshot{
			ID:    a.ID,
			Label: a.Label,
			Pos:   a.Pos,
			Turns: a.Turns(),
			Timer: a.Timer(),
		})
	}
	return snap
}

// Chaser hunts one target. It heads for where it last saw or heard the
// target and gives up when it arrives there without a fresh lead.
type Chaser struct {
	Target   *Actor
	Footstep int

	lead    Point
	hasLead bool
}

// TakeTurn implements Brain.
func (c *Chaser) TakeTurn(w *World, a *Actor) {
	if c.Target != nil && c.Target.World() == w {
		if w.VisibleTiles(a).Has(c.Target.Pos) {
			if !c.hasLead || c.lead != c.Target.Pos {
				w.Log.Add(w.Turn(), a.Label, "chase", "spotted",
					fmt.Sprintf("%s at %v", c.Target.Label, c.Target.Pos), 0)
			}
			c.lead, c.hasLead = c.Target.Pos, true
		}
	}
	if !c.hasLead {
		return
	}
	if c.Target != nil && c.Target.Pos == c.lead && chebyshev(a.Pos, c.lead) <= 1 {
		w.Log.Add(w.Turn(), a.Label, "chase", "caught",
			fmt.Sprintf("%s at %v", c.Target.Label, c.lead), 0)
		return
	}
	if !walkToward(w, a, c.lead, c.Footstep) || a.Pos == c.lead {
		c.hasLead = false
	}
}

// Goal returns where the chaser is heading, if anywhere.
func (c *Chaser) Goal() (Point, bool) {
	return c.lead, c.hasLead
}

// HearNoise implements Listener: a noise made by the target is a lead.
func (c *Chaser) HearNoise(w *World, a *Actor, n Noise) {
	if n.Source == nil || n.Source != c.Target {
		return
	}
	c.lead, c.hasLead = n.Origin, true
}

// Patrol walks its waypoints in order, forever. The cells it has seen are
// folded into the level's seen flags, as a player would explore.
type Patrol struct {
	Waypoints []Point
	Footstep  int

	next int
}

// TakeTurn implements Brain.
func (p *Patrol) TakeTurn(w *World, a *Actor) {
	w.Map.MarkSeen(w.VisibleTiles(a))
	if len(p.Waypoints) == 0 {
		return
	}
	if a.Pos == p.Waypoints[p.next] {
		p.next = (p.next + 1) % len(p.Waypoints)
	}
	if !walkToward(w, a, p.Waypoints[p.next], p.Footstep) {
		// Unreachable waypoint: skip it rather than stall.
		p.next = (p.next + 1) % len(p.Waypoints)
	}
}

// Goal returns the waypoint the patrol is heading for.
func (p *Patrol) Goal() (Point, bool) {
	if len(p.Waypoints) == 0 {
		return Point{}, false
	}
	return p.Waypoints[p.next], true
}

// walkToward takes one planned step toward goal and makes footstep noise.
// It reports false when no route exists.
func walkToward(w *World, a *Actor, goal Point, footstep int) bool {
	if a.Pos == goal {
		return true
	}
	pl, ok := w.Plan(a, goal)
	if !ok {
		return false
	}
	d, ok := pl.NextStep(a.Pos)
	if !ok {
		return false
	}
	if err := w.Step(a, d); err != nil {
		w.Log.AddVerbose(w.Turn(), a.Label, "world", "blocked", err.Error(), 0)
		// Bumping into unseen rock reveals it; an occupant just costs a turn.
		if next := a.Pos.Step(d); errors.Is(err, ErrBlocked) && w.Map.InBounds(next) {
			w.Map.AddFlag(next, TileFlagSeen)
		}
		return true
	}
	if footstep > 0 {
		w.EmitFrom(a, NoiseFootstep, footstep)
	}
	return true
}

// countLabels returns the distinct actor labels recorded under category/key.
func countLabels(sl *SimLog, category, key string) int {
	labels := mapset.New[string]()
	for _, e := range sl.Filter(category, key) {
		labels.Put(e.Actor)
	}
	return labels.Size()
}

// Reached reports how many distinct actors logged category/key.
func (td *TestDungeon) Reached(category, key string) int {
	return countLabels(td.SimLog, category, key)
}
