package game

import (
	"fmt"

	"github.com/zyedidia/generic/queue"
)

// NoiseCategory classifies a noise for the listener's benefit.
type NoiseCategory string

const (
	NoiseFootstep NoiseCategory = "footstep"
	NoiseSpeech   NoiseCategory = "speech"
	NoiseCombat   NoiseCategory = "combat"
	NoiseDoor     NoiseCategory = "door"
	NoiseSpell    NoiseCategory = "spell"
	NoiseOther    NoiseCategory = "other"
)

const maxVolume = 255

// Noise is what a listener is told about a sound that reached it.
type Noise struct {
	Origin    Point
	Source    *Actor // may be nil for environmental noise
	Category  NoiseCategory
	Volume    uint8 // volume at the origin
	Intensity uint8 // volume where the listener stands
}

// Heard records one actor reached by a noise.
type Heard struct {
	Actor     *Actor
	Intensity uint8
}

// SoundField holds per-cell intensities of the most recent noise written
// into it. Each in-flight propagation needs its own field.
type SoundField struct {
	cols, rows int
	v          []uint8
}

// NewSoundField allocates a field for a cols×rows level.
func NewSoundField(cols, rows int) *SoundField {
	return &SoundField{cols: cols, rows: rows, v: make([]uint8, cols*rows)}
}

// At returns the intensity at p; zero off the field.
func (f *SoundField) At(p Point) uint8 {
	if p.X < 0 || p.Y < 0 || p.X >= f.cols || p.Y >= f.rows {
		return 0
	}
	return f.v[p.Y*f.cols+p.X]
}

// Reset zeroes the field.
func (f *SoundField) Reset() {
	clear(f.v)
}

func (f *SoundField) set(p Point, v int) {
	f.v[p.Y*f.cols+p.X] = uint8(min(v, maxVolume)) // #nosec G115 -- clamped to byte range
}

// SoundPropagator floods noise across a level. It is a tuned, door-aware
// breadth-first fill, not an acoustic model.
type SoundPropagator struct {
	cfg SoundConfig
}

// NewSoundPropagator returns a propagator using cfg (zero value = defaults).
func NewSoundPropagator(cfg SoundConfig) *SoundPropagator {
	return &SoundPropagator{cfg: cfg.withDefaults()}
}

// Config returns the constants in use.
func (sp *SoundPropagator) Config() SoundConfig {
	return sp.cfg
}

// PropagateInto clears field and floods volume outward from origin. It
// reports false, leaving field untouched, when the noise is too quiet or the
// level does not model sound.
func (sp *SoundPropagator) PropagateInto(field *SoundField, tm *TileMap, origin Point, volume int) bool {
	if field.cols != tm.Cols || field.rows != tm.Rows {
		panic(fmt.Sprintf("game: sound field %dx%d does not match map %dx%d",
			field.cols, field.rows, tm.Cols, tm.Rows))
	}
	if volume < sp.cfg.MinVolume || !tm.Kind.ModelsSound() || !tm.InBounds(origin) {
		return false
	}
	field.Reset()
	field.set(origin, volume)

	frontier := queue.New[Point]()
	frontier.Enqueue(origin)
	for !frontier.Empty() {
		cur := frontier.Dequeue()
		v := int(field.At(cur)) - sp.cfg.HopLoss
		if v <= 0 {
			continue
		}
		for _, o := range directionOffsets {
			next := cur.Add(o[0], o[1])
			t := tm.TerrainAt(next)
			if !t.TransmitsSound() {
				continue
			}
			cand := v
			if t == TerrainDoorClosed {
				cand -= sp.cfg.DoorLoss
			}
			prev := int(field.At(next))
			if cand <= prev {
				continue
			}
			field.set(next, cand)
			if prev == 0 && cand <= sp.cfg.ContinueThreshold {
				continue
			}
			frontier.Enqueue(next)
		}
	}
	return true
}

// Propagate floods a noise through the world's reusable sound field and
// tells every other actor standing where it is still audible. The returned
// slice lists those actors in world order.
func (w *World) Propagate(origin Point, source *Actor, category NoiseCategory, volume int) []Heard {
	label := "--"
	if source != nil {
		label = source.Label
	}
	field := w.Map.Sound()
	if !w.sound.PropagateInto(field, w.Map, origin, volume) {
		w.Log.AddVerbose(w.Turn(), label, "sound", "skipped",
			fmt.Sprintf("%s volume=%d at %v", category, volume, origin), float64(volume))
		return nil
	}
	vol := uint8(clampInt(volume, 0, maxVolume)) // #nosec G115 -- clamped to byte range
	w.Log.Add(w.Turn(), label, "sound", "emit",
		fmt.Sprintf("%s volume=%d at %v", category, vol, origin), float64(vol))

	var heard []Heard
	for _, a := range w.Actors() {
		if a == source || a.world != w {
			continue
		}
		intensity := field.At(a.Pos)
		if intensity == 0 {
			continue
		}
		heard = append(heard, Heard{Actor: a, Intensity: intensity})
		w.Log.Add(w.Turn(), a.Label, "sound", "heard",
			fmt.Sprintf("%s from %s at %v intensity=%d", category, label, origin, intensity),
			float64(intensity))
		if l, ok := a.Brain.(Listener); ok {
			l.HearNoise(w, a, Noise{
				Origin:    origin,
				Source:    source,
				Category:  category,
				Volume:    vol,
				Intensity: intensity,
			})
		}
	}
	return heard
}

// EmitFrom propagates a noise made by a at its own position, muffled by its
// stealth: a fully stealthy actor makes no sound at all.
func (w *World) EmitFrom(a *Actor, category NoiseCategory, volume int) []Heard {
	scaled := volume * (maxStealth - clampInt(a.Stealth, 0, maxStealth)) / maxStealth
	return w.Propagate(a.Pos, a, category, scaled)
}
