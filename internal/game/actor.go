package game

// Turn timer constants. A timer that reaches turnThreshold grants one turn
// and loses exactly turnThreshold, carrying any remainder forward.
const (
	turnThreshold = 100
	maxSpeed      = 100
	maxStealth    = 100
)

// Brain decides what an actor does with its turn. Implementations live
// outside the kernel (AI, player input); the kernel only calls TakeTurn.
type Brain interface {
	TakeTurn(w *World, a *Actor)
}

// BrainFunc adapts a plain function to the Brain interface.
type BrainFunc func(w *World, a *Actor)

// TakeTurn calls f(w, a).
func (f BrainFunc) TakeTurn(w *World, a *Actor) { f(w, a) }

// Listener is implemented by brains that react to noise.
type Listener interface {
	HearNoise(w *World, a *Actor, n Noise)
}

// Actor holds the parts of a creature the kernel reads and writes. Attributes,
// equipment and effects belong to the external actor model.
type Actor struct {
	ID      int
	Label   string
	Pos     Point
	Sight   int // vision radius in cells
	Stealth int // 0 (loud) .. 100 (silent)
	Speed   int // 0 .. 100; 100 acts once per environment tick

	Brain Brain
	// CanPass is the actor's own passability predicate. nil means the actor
	// can enter anything usually passable, plus doors.
	CanPass func(Terrain) bool

	timer int // scaled; see Scheduler.accumulate
	turns int
	gen   uint64 // bumped on removal; stale queued turns are dropped
	world *World
}

// NewActor returns an actor with the given label, speed and sight.
func NewActor(id int, label string, speed, sight int) *Actor {
	return &Actor{
		ID:    id,
		Label: label,
		Speed: clampInt(speed, 0, maxSpeed),
		Sight: max(sight, 0),
	}
}

// Timer returns the turn timer in [0,100).
func (a *Actor) Timer() int {
	return a.timer / timerScale
}

// Turns returns how many turns the actor has taken.
func (a *Actor) Turns() int {
	return a.turns
}

// World returns the world the actor is in, or nil once removed.
func (a *Actor) World() *World {
	return a.world
}

// Passable applies the actor's passability predicate to t.
func (a *Actor) Passable(t Terrain) bool {
	if a.CanPass != nil {
		return a.CanPass(t)
	}
	return t.UsuallyPassable() || t.IsDoor()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
