package game

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded kernel event.
type SimLogEntry struct {
	Tick     int     // environment ticks elapsed when the event happened
	Actor    string  // label e.g. "g", "rat", or "--" for global events
	Category string  // turn, clock, sound, path, world, vision
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] rat  sound     heard            footstep from g at (3,4) intensity=70
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-9s %-16s %s",
		e.Tick, e.Actor, e.Category, e.Key, e.Value)
}

// SimLog collects structured events from a World. It is unbounded and
// machine-readable; callers that only want the recent past use Tail.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
}

// NewSimLog creates a SimLog. If verbose is true, per-turn detail entries are
// also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// Verbose reports whether verbose entries are being recorded.
func (sl *SimLog) Verbose() bool {
	return sl != nil && sl.verbose
}

// Add records a new entry. A nil log discards everything.
func (sl *SimLog) Add(tick int, actor, category, key, value string, numVal float64) {
	if sl == nil {
		return
	}
	sl.entries = append(sl.entries, SimLogEntry{
		Tick:     tick,
		Actor:    actor,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (sl *SimLog) AddVerbose(tick int, actor, category, key, value string, numVal float64) {
	if !sl.Verbose() {
		return
	}
	sl.Add(tick, actor, category, key, value, numVal)
}

// Entries returns all recorded entries.
func (sl *SimLog) Entries() []SimLogEntry {
	if sl == nil {
		return nil
	}
	return sl.entries
}

// Len returns the number of recorded entries.
func (sl *SimLog) Len() int {
	if sl == nil {
		return 0
	}
	return len(sl.entries)
}

// Tail returns the last n entries (fewer if the log is shorter).
func (sl *SimLog) Tail(n int) []SimLogEntry {
	if sl == nil || n <= 0 {
		return nil
	}
	if n > len(sl.entries) {
		n = len(sl.entries)
	}
	return sl.entries[len(sl.entries)-n:]
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterActor returns entries for a specific actor label.
func (sl *SimLog) FilterActor(label string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Actor == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (sl *SimLog) FilterTickRange(fromTick, toTick int) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.Entries() {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.Entries() {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	return formatEntries(sl.Entries())
}

// FormatRange returns a log string filtered to a tick range.
func (sl *SimLog) FormatRange(fromTick, toTick int) string {
	return formatEntries(sl.FilterTickRange(fromTick, toTick))
}

func formatEntries(entries []SimLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Summary returns a short human-readable account of a world: turn counts
// per actor and event totals.
func (sl *SimLog) Summary(w *World) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Summary at T=%03d ---\n", w.Turn())
	for _, a := range w.Actors() {
		fmt.Fprintf(&sb, "%-6s pos=%v speed=%d turns=%d timer=%d\n",
			a.Label, a.Pos, a.Speed, a.Turns(), a.Timer())
	}
	fmt.Fprintf(&sb, "Events: turns=%d noises=%d heard=%d plans=%d failed_plans=%d\n",
		sl.CountCategory("turn", "act"),
		sl.CountCategory("sound", "emit"),
		sl.CountCategory("sound", "heard"),
		sl.CountCategory("path", "plan"),
		sl.CountCategory("path", "no_route"))
	return sb.String()
}
