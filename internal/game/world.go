package game

import (
	"errors"
	"fmt"
)

var (
	// ErrOccupied is returned when a cell already holds an actor.
	ErrOccupied = errors.New("cell is occupied")
	// ErrBlocked is returned when a cell cannot hold an actor at all.
	ErrBlocked = errors.New("cell is blocked")
	// ErrNotInWorld is returned for actors that were never added or were removed.
	ErrNotInWorld = errors.New("actor is not in this world")
)

// World ties one level to the actors on it and the engines that drive them.
// It is single-threaded: every method must be called from the goroutine that
// runs the simulation.
type World struct {
	Map *TileMap
	Log *SimLog

	cfg      Config
	actors   []*Actor
	sched    *Scheduler
	sound    *SoundPropagator
	envTicks int
	env      []func(*World)
}

// NewWorld wraps tm. An all-zero cfg.Sound takes the default constants; a
// partial one is kept as given apart from a non-positive HopLoss, which
// falls back to its default.
func NewWorld(tm *TileMap, cfg Config) *World {
	cfg.Sound = cfg.Sound.withDefaults()
	w := &World{
		Map:   tm,
		Log:   NewSimLog(cfg.Verbose),
		cfg:   cfg,
		sound: NewSoundPropagator(cfg.Sound),
	}
	w.sched = newScheduler(w)
	return w
}

// Config returns the world's configuration.
func (w *World) Config() Config {
	return w.cfg
}

// Scheduler exposes the turn scheduler for callers that drive turns
// themselves.
func (w *World) Scheduler() *Scheduler {
	return w.sched
}

// Turn returns the number of environment ticks so far.
func (w *World) Turn() int {
	return w.envTicks
}

// OnEnvironmentTick registers fn to run once per clock period (aging, decay
// and other environment effects live outside the kernel).
func (w *World) OnEnvironmentTick(fn func(*World)) {
	w.env = append(w.env, fn)
}

func (w *World) environmentTick() {
	w.envTicks++
	w.Log.Add(w.envTicks, "--", "clock", "environment",
		fmt.Sprintf("tick %d", w.envTicks), float64(w.envTicks))
	for _, fn := range w.env {
		fn(w)
	}
}

// Actors returns a snapshot of the actors in the world, in insertion order.
func (w *World) Actors() []*Actor {
	out := make([]*Actor, len(w.actors))
	copy(out, w.actors)
	return out
}

// ActorAt returns the actor standing on p, or nil.
func (w *World) ActorAt(p Point) *Actor {
	return w.Map.OccupantAt(p)
}

// placeable checks that a can stand on p.
func (w *World) placeable(a *Actor, p Point) error {
	if !w.Map.InBounds(p) || w.Map.TerrainAt(p).Solid() {
		return fmt.Errorf("place %s at %v: %w", a.Label, p, ErrBlocked)
	}
	if occ := w.Map.OccupantAt(p); occ != nil && occ != a {
		return fmt.Errorf("place %s at %v (held by %s): %w", a.Label, p, occ.Label, ErrOccupied)
	}
	return nil
}

// AddActor places a at pos and enrolls it with the scheduler.
func (w *World) AddActor(a *Actor, pos Point) error {
	if a.world != nil {
		return fmt.Errorf("add %s: already in a world", a.Label)
	}
	if err := w.placeable(a, pos); err != nil {
		return err
	}
	a.Pos = pos
	a.world = w
	w.Map.Tiles[w.Map.index(pos)].Occupant = a
	w.actors = append(w.actors, a)
	w.Log.Add(w.Turn(), a.Label, "world", "add", fmt.Sprintf("at %v", pos), 0)
	return nil
}

// RemoveActor takes a out of the world. A turn it has already been granted
// in the current batch is skipped.
func (w *World) RemoveActor(a *Actor) error {
	if a.world != w {
		return fmt.Errorf("remove %s: %w", a.Label, ErrNotInWorld)
	}
	for i, other := range w.actors {
		if other == a {
			w.actors = append(w.actors[:i], w.actors[i+1:]...)
			break
		}
	}
	if t := &w.Map.Tiles[w.Map.index(a.Pos)]; t.Occupant == a {
		t.Occupant = nil
	}
	a.world = nil
	w.sched.forget(a)
	w.Log.Add(w.Turn(), a.Label, "world", "remove", fmt.Sprintf("at %v", a.Pos), 0)
	return nil
}

// MoveActor moves a to an adjacent or distant cell. Terrain preferences are
// the caller's business; only solid cells and other occupants are refused.
func (w *World) MoveActor(a *Actor, to Point) error {
	if a.world != w {
		return fmt.Errorf("move %s: %w", a.Label, ErrNotInWorld)
	}
	if err := w.placeable(a, to); err != nil {
		return err
	}
	from := a.Pos
	w.Map.Tiles[w.Map.index(from)].Occupant = nil
	w.Map.Tiles[w.Map.index(to)].Occupant = a
	a.Pos = to
	w.Log.AddVerbose(w.Turn(), a.Label, "world", "move", fmt.Sprintf("%v → %v", from, to), 0)
	return nil
}

// Step moves a one cell in direction d.
func (w *World) Step(a *Actor, d Direction) error {
	if !d.Valid() {
		return fmt.Errorf("step %s: invalid direction", a.Label)
	}
	return w.MoveActor(a, a.Pos.Step(d))
}

// Planner returns a fresh path planner for a over the world's map.
func (w *World) Planner(a *Actor) *Planner {
	return NewPlanner(w.Map, a)
}
