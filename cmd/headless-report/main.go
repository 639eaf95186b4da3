package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/AdamMil/Chrono-sub000/internal/game"
	"github.com/zyedidia/generic/mapset"
)

type runStats struct {
	runIndex    int
	hunterSpeed int

	firstSpotTick  int
	firstHeardTick int
	caughtTick     int

	turns    int
	noises   int
	heard    int
	plans    int
	noRoute  int
	blocked  int
	listened mapset.Set[string]

	summary string
	dump    string
}

// scenarios maps a scenario name to its level and patrol route.
var scenarios = map[string]struct {
	rows      []string
	overworld bool
	hunter    game.Point
	patrol    game.Point
	waypoints []game.Point
}{
	"open-hall": {
		rows: []string{
			"#################",
			"#...............#",
			"#...............#",
			"#...............#",
			"#...............#",
			"#...............#",
			"#################",
		},
		hunter:    game.Point{X: 1, Y: 1},
		patrol:    game.Point{X: 14, Y: 5},
		waypoints: []game.Point{{X: 14, Y: 5}, {X: 14, Y: 1}, {X: 8, Y: 3}},
	},
	"split-hall": {
		rows: []string{
			"#################",
			"#.......#.......#",
			"#.......+.......#",
			"#.......#.......#",
			"#################",
		},
		hunter:    game.Point{X: 1, Y: 2},
		patrol:    game.Point{X: 15, Y: 1},
		waypoints: []game.Point{{X: 15, Y: 1}, {X: 15, Y: 3}, {X: 10, Y: 2}},
	},
	"surface": {
		rows: []string{
			"#################",
			"#.......#.......#",
			"#.......'.......#",
			"#.......#.......#",
			"#################",
		},
		overworld: true,
		hunter:    game.Point{X: 1, Y: 2},
		patrol:    game.Point{X: 15, Y: 1},
		waypoints: []game.Point{{X: 15, Y: 1}, {X: 15, Y: 3}, {X: 10, Y: 2}},
	},
}

func scenarioNames() string {
	names := make([]string, 0, len(scenarios))
	for k := range scenarios {
		names = append(names, k)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var runs int
	var ticks int
	var speedBase int
	var speedStep int
	var scenario string
	var verbose bool
	var dump bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 60, "environment ticks per run")
	flag.IntVar(&speedBase, "speed-base", 60, "hunter speed for run 1")
	flag.IntVar(&speedStep, "speed-step", 10, "hunter speed increment between runs")
	flag.StringVar(&scenario, "scenario", "split-hall", "scenario name")
	flag.BoolVar(&verbose, "verbose", false, "record per-turn detail in the event log")
	flag.BoolVar(&dump, "dump", false, "print the final map of each run")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if _, ok := scenarios[scenario]; !ok {
		fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenario, scenarioNames())
		return
	}

	fmt.Printf("=== Headless Dungeon Report ===\n")
	fmt.Printf("scenario=%s runs=%d ticks=%d speed_base=%d speed_step=%d\n\n", scenario, runs, ticks, speedBase, speedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		speed := speedBase + i*speedStep
		stats := runScenario(scenario, i+1, speed, ticks, verbose)
		all = append(all, stats)
		printRun(stats, dump)
	}

	printAggregate(all)
}

func runScenario(name string, runIndex, hunterSpeed, ticks int, verbose bool) runStats {
	sc := scenarios[name]
	opts := []game.SimOption{
		game.WithMap(sc.rows...),
		game.WithExplored(),
		game.WithVerbose(verbose),
		game.WithChaser("h", sc.hunter.X, sc.hunter.Y, hunterSpeed, 5, "p", 20),
		game.WithPatrol("p", sc.patrol.X, sc.patrol.Y, 50, 5, 200, sc.waypoints...),
	}
	if sc.overworld {
		opts = append(opts, game.WithOverworld())
	}
	td := game.NewTestDungeon(opts...)
	td.RunUntil(func(td *game.TestDungeon) bool {
		return td.SimLog.CountCategory("chase", "caught") > 0
	}, ticks)

	entries := td.SimLog.Entries()
	listened := mapset.New[string]()
	for _, e := range td.SimLog.Filter("sound", "heard") {
		listened.Put(e.Actor)
	}
	return runStats{
		runIndex:       runIndex,
		hunterSpeed:    hunterSpeed,
		firstSpotTick:  firstTick(entries, "chase", "spotted", ""),
		firstHeardTick: firstTick(entries, "sound", "heard", "from p"),
		caughtTick:     firstTick(entries, "chase", "caught", ""),
		turns:          td.SimLog.CountCategory("turn", "act"),
		noises:         td.SimLog.CountCategory("sound", "emit"),
		heard:          td.SimLog.CountCategory("sound", "heard"),
		plans:          td.SimLog.CountCategory("path", "plan"),
		noRoute:        td.SimLog.CountCategory("path", "no_route"),
		blocked:        td.SimLog.CountCategory("world", "blocked"),
		listened:       listened,
		summary:        td.SimLog.Summary(td.World),
		dump:           td.Dump(),
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(rs runStats, dump bool) {
	fmt.Printf("--- Run %d (hunter_speed=%d) ---\n", rs.runIndex, rs.hunterSpeed)
	fmt.Printf("phase_markers: spotted=%d first_heard=%d caught=%d\n",
		rs.firstSpotTick, rs.firstHeardTick, rs.caughtTick)
	fmt.Printf("event_totals: turns=%d noises=%d heard=%d plans=%d no_route=%d blocked=%d\n",
		rs.turns, rs.noises, rs.heard, rs.plans, rs.noRoute, rs.blocked)
	fmt.Printf("listeners: %s\n", joinSet(rs.listened))
	fmt.Print(rs.summary)
	if dump {
		fmt.Print(rs.dump)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	var caught, heard []int
	totalTurns := 0
	totalNoises := 0
	totalPlans := 0
	totalNoRoute := 0
	for _, rs := range all {
		if rs.caughtTick >= 0 {
			caught = append(caught, rs.caughtTick)
		}
		if rs.firstHeardTick >= 0 {
			heard = append(heard, rs.firstHeardTick)
		}
		totalTurns += rs.turns
		totalNoises += rs.noises
		totalPlans += rs.plans
		totalNoRoute += rs.noRoute
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d caught=%d/%d avg_caught_tick=%s avg_first_heard_tick=%s\n",
		len(all), len(caught), len(all), avgTickString(caught), avgTickString(heard))
	fmt.Printf("avg_per_run: turns=%.1f noises=%.1f plans=%.1f no_route=%.1f\n",
		avg(totalTurns, len(all)), avg(totalNoises, len(all)),
		avg(totalPlans, len(all)), avg(totalNoRoute, len(all)))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func joinSet(s mapset.Set[string]) string {
	if s.Size() == 0 {
		return "none"
	}
	labels := make([]string, 0, s.Size())
	s.Each(func(k string) {
		labels = append(labels, k)
	})
	sort.Strings(labels)
	return strings.Join(labels, ",")
}
