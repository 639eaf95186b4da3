package game

import (
	"fmt"

	"github.com/zyedidia/generic/heap"
)

const (
	clockStep   = 10  // clock units per scheduler iteration
	clockPeriod = 100 // clock units per environment tick
	// Timers accumulate speed once per iteration, so they are kept in
	// 1/timerScale units: a speed-100 actor gets one turn per period.
	timerScale = clockPeriod / clockStep
	turnCost   = turnThreshold * timerScale
)

type readyEntry struct {
	actor     *Actor
	gen       uint64 // actor's enrolment generation when queued
	iteration uint64
	seq       uint64
}

func readyLess(a, b readyEntry) bool {
	if a.iteration != b.iteration {
		return a.iteration < b.iteration
	}
	return a.seq < b.seq
}

// Scheduler hands out turns. It never runs a turn itself: Next and Peek
// answer "who acts next", advancing the clock only as far as needed, and the
// caller decides what to do with the answer.
type Scheduler struct {
	world     *World
	clock     int
	iteration uint64
	seq       uint64
	ready     *heap.Heap[readyEntry]
}

func newScheduler(w *World) *Scheduler {
	return &Scheduler{
		world: w,
		ready: heap.New[readyEntry](readyLess),
	}
}

// Clock returns the clock position within the current period, in [0,100).
func (s *Scheduler) Clock() int {
	return s.clock
}

// Iterations returns how many clock steps have run.
func (s *Scheduler) Iterations() uint64 {
	return s.iteration
}

// Pending returns how many turns are queued in the current batch, including
// those of actors removed since they were queued.
func (s *Scheduler) Pending() int {
	return s.ready.Size()
}

// forget bumps a's generation so turns queued before its removal are
// skipped. Turns it earns after being added back carry the new generation.
func (s *Scheduler) forget(a *Actor) {
	a.gen++
}

// canProgress reports whether any actor will ever become ready.
func (s *Scheduler) canProgress() bool {
	for _, a := range s.world.actors {
		if a.Speed > 0 {
			return true
		}
	}
	return false
}

// advance steps the clock until at least one actor is ready.
func (s *Scheduler) advance() bool {
	if !s.canProgress() {
		return false
	}
	for s.ready.Size() == 0 {
		s.iteration++
		s.clock += clockStep
		if s.clock >= clockPeriod {
			s.clock -= clockPeriod
			s.world.environmentTick()
			if !s.canProgress() {
				return false
			}
		}
		for _, a := range s.world.actors {
			s.accumulate(a)
		}
	}
	return true
}

// accumulate adds one iteration's worth of speed to a's timer and queues a
// turn when the timer crosses the threshold.
func (s *Scheduler) accumulate(a *Actor) {
	a.timer += clampInt(a.Speed, 0, maxSpeed)
	if a.timer < turnCost {
		return
	}
	a.timer -= turnCost
	s.seq++
	s.ready.Push(readyEntry{actor: a, gen: a.gen, iteration: s.iteration, seq: s.seq})
	s.world.Log.AddVerbose(s.world.Turn(), a.Label, "turn", "ready",
		fmt.Sprintf("clock=%d timer=%d", s.clock, a.Timer()), float64(a.Timer()))
}

// headOfBatch returns the first live entry of the current batch, dropping
// entries queued before their actor was removed.
func (s *Scheduler) headOfBatch() (*Actor, bool) {
	for s.ready.Size() > 0 {
		e, _ := s.ready.Peek()
		if e.gen != e.actor.gen {
			s.ready.Pop()
			continue
		}
		return e.actor, true
	}
	return nil, false
}

// Peek returns the actor whose turn is next without consuming it, advancing
// the clock if the current batch is empty. It reports false when no actor
// can ever act.
func (s *Scheduler) Peek() (*Actor, bool) {
	for {
		if a, ok := s.headOfBatch(); ok {
			return a, true
		}
		if !s.advance() {
			return nil, false
		}
	}
}

// Next consumes and returns the actor whose turn is next.
func (s *Scheduler) Next() (*Actor, bool) {
	a, ok := s.Peek()
	if ok {
		s.ready.Pop()
	}
	return a, ok
}

// nextInBatch consumes the next turn of the current batch without advancing
// the clock.
func (s *Scheduler) nextInBatch() (*Actor, bool) {
	a, ok := s.headOfBatch()
	if ok {
		s.ready.Pop()
	}
	return a, ok
}

// Simulate advances the world until at least one actor has taken a turn,
// then lets every actor of that batch act in the order it became ready.
// With no actors (or none that can ever act) it returns at once.
func (w *World) Simulate() {
	a, ok := w.sched.Next()
	if !ok {
		return
	}
	w.takeTurn(a)
	for {
		a, ok = w.sched.nextInBatch()
		if !ok {
			return
		}
		w.takeTurn(a)
	}
}

// SimulateUntil runs turns until target's turn is about to start and returns
// true without running it. It returns false if target is not in the world,
// can never act, or leaves the world while waiting. Calls may nest: an inner
// wait only consumes turns that would have run anyway.
func (w *World) SimulateUntil(target *Actor) bool {
	if target == nil || target.world != w || target.Speed <= 0 {
		return false
	}
	for {
		a, ok := w.sched.Peek()
		if !ok {
			return false
		}
		if a == target {
			return true
		}
		w.sched.Next()
		w.takeTurn(a)
		if target.world != w {
			return false
		}
	}
}

// takeTurn runs one turn of a.
func (w *World) takeTurn(a *Actor) {
	a.turns++
	w.Log.Add(w.Turn(), a.Label, "turn", "act",
		fmt.Sprintf("turn %d at %v", a.turns, a.Pos), float64(a.turns))
	if a.Brain != nil {
		a.Brain.TakeTurn(w, a)
	}
}
