package engine

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Config bounds one search run. Zero values are replaced with the documented
// defaults by normalize, so the engine is safe to invoke directly.
type Config struct {
	PopulationSize  int
	MutationRate    float64
	EliteRate       float64
	Generations     int
	StagnationLimit int
	TournamentSize  int

	// ConflictAwareRepair applies the same-individual conflict lookahead
	// used by initial construction to repair as well. Off by default:
	// greedy repair is cheaper and residual conflicts are priced by the
	// fitness function anyway.
	ConflictAwareRepair bool
}

func (c *Config) normalize() {
	if c.PopulationSize <= 0 {
		c.PopulationSize = 50
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		c.MutationRate = 0.1
	}
	if c.EliteRate < 0 || c.EliteRate > 1 {
		c.EliteRate = 0.1
	}
	if c.Generations <= 0 {
		c.Generations = 500
	}
	if c.StagnationLimit <= 0 {
		c.StagnationLimit = 200
	}
	if c.TournamentSize <= 0 {
		c.TournamentSize = 5
	}
}

// StopReason records which termination rule ended a run.
type StopReason string

const (
	StopEmpty     StopReason = "empty"
	StopConverged StopReason = "converged"
	StopStagnated StopReason = "stagnated"
	StopExhausted StopReason = "exhausted"
	StopCancelled StopReason = "cancelled"
)

// Result is the outcome of one run. Best is nil only for an empty catalog;
// Progression holds the running-best fitness after each completed generation,
// rounded to two decimals.
type Result struct {
	Best        Individual
	Fitness     float64
	Progression []float64
	Generations int
	Reason      StopReason
}

// Engine runs one genetic search over a catalog snapshot. It is not safe for
// concurrent use; create one per run.
type Engine struct {
	cfg  Config
	snap Snapshot
	rng  *rand.Rand
	log  *zap.Logger

	courseByID     map[string]Course
	roomByID       map[string]Room
	slotByID       map[string]Slot
	sectionByID    map[string]*Section
	searchSlots    []Slot
	slotsForCourse map[string][]Slot
	hasPostLunch   bool

	sessions []Session
	// requiredPerCourse maps each course demanded by the session catalog
	// to its weekly session requirement. Snapshot courses no section takes
	// do not appear and never gate convergence.
	requiredPerCourse map[string]int
}

// New prepares a run over the given snapshot. rng may be nil (a time-seeded
// source is used); inject a fixed-seed source to reproduce exact runs.
func New(snap Snapshot, cfg Config, rng *rand.Rand, log *zap.Logger) *Engine {
	cfg.normalize()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = zap.NewNop()
	}

	e := &Engine{
		cfg:            cfg,
		snap:           snap,
		rng:            rng,
		log:            log,
		courseByID:     make(map[string]Course, len(snap.Courses)),
		roomByID:       make(map[string]Room, len(snap.Rooms)),
		slotByID:       make(map[string]Slot, len(snap.Slots)),
		sectionByID:    make(map[string]*Section, len(snap.Sections)),
		slotsForCourse: make(map[string][]Slot, len(snap.Courses)),
	}
	available := make(map[string]bool, len(snap.Instructors))
	for _, in := range snap.Instructors {
		available[in.ID] = true
	}
	for _, c := range snap.Courses {
		// resolve the eligible set against available instructors once,
		// instead of re-checking inside every random pick
		eligible := make([]string, 0, len(c.Instructors))
		for _, id := range c.Instructors {
			if available[id] {
				eligible = append(eligible, id)
			}
		}
		sort.Strings(eligible)
		c.Instructors = eligible
		e.courseByID[c.ID] = c
	}
	for _, r := range snap.Rooms {
		e.roomByID[r.ID] = r
	}
	for i := range e.snap.Sections {
		sec := &e.snap.Sections[i]
		e.sectionByID[sec.ID] = sec
	}

	// Lunch slots and weekend days never enter the search grid.
	for _, s := range snap.Slots {
		e.slotByID[s.ID] = s
		if _, weekday := dayOrder[s.Day]; !weekday || s.Lunch {
			continue
		}
		e.searchSlots = append(e.searchSlots, s)
		if s.Start >= postLunchStart {
			e.hasPostLunch = true
		}
	}
	sortSlots(e.searchSlots)

	for _, c := range snap.Courses {
		e.slotsForCourse[c.ID] = suitableSlots(c, e.searchSlots)
	}

	e.sessions = buildSessions(e.snap, e.courseByID)
	e.requiredPerCourse = make(map[string]int)
	for _, s := range e.sessions {
		if _, ok := e.requiredPerCourse[s.CourseID]; ok {
			continue
		}
		required := e.courseByID[s.CourseID].WeeklySessions
		if required < 1 {
			required = 1
		}
		e.requiredPerCourse[s.CourseID] = required
	}

	e.log.Info("scheduler run prepared",
		zap.Int("sections", len(snap.Sections)),
		zap.Int("instructors", len(snap.Instructors)),
		zap.Int("rooms", len(snap.Rooms)),
		zap.Int("slots", len(e.searchSlots)),
		zap.Int("sessions", len(e.sessions)))
	return e
}

// Sessions returns the catalog the run will schedule, in genome order.
func (e *Engine) Sessions() []Session {
	out := make([]Session, len(e.sessions))
	copy(out, e.sessions)
	return out
}

// Evolve runs the generational loop and returns the best individual found.
// Cancellation is checked once per generation; a cancelled run returns the
// best individual so far with reason StopCancelled rather than an error.
func (e *Engine) Evolve(ctx context.Context) Result {
	if len(e.sessions) == 0 {
		e.log.Warn("no schedulable sessions for the requested filters")
		return Result{Fitness: 0, Progression: []float64{}, Reason: StopEmpty}
	}

	population := e.initialPopulation()

	var (
		best        Individual
		bestFitness float64
		bestFull    bool
		stagnant    int
		progression = make([]float64, 0, e.cfg.Generations)
		reason      = StopExhausted
		generation  int
	)

	for generation = 0; generation < e.cfg.Generations; generation++ {
		if ctx.Err() != nil {
			reason = StopCancelled
			break
		}

		fits := make([]float64, len(population))
		for i, ind := range population {
			fits[i] = e.evaluate(ind)
		}
		genBest := 0
		for i := 1; i < len(fits); i++ {
			if fits[i] > fits[genBest] {
				genBest = i
			}
		}
		currentFull := population[genBest].FullyAssigned()

		// Full assignment dominates raw score when the incumbent best
		// is still partial.
		if fits[genBest] > bestFitness || (currentFull && !bestFull) {
			bestFitness = fits[genBest]
			best = population[genBest].Clone()
			bestFull = currentFull
			stagnant = 0
		} else {
			stagnant++
		}
		progression = append(progression, math.Round(bestFitness*100)/100)

		if stagnant >= e.cfg.StagnationLimit {
			reason = StopStagnated
			generation++
			break
		}
		if currentFull && e.meetsWeeklyCounts(population[genBest]) {
			reason = StopConverged
			generation++
			break
		}

		pool := e.selectPool(population, fits)
		next := make([]Individual, 0, len(population)+1)

		eliteSize := int(float64(len(population)) * e.cfg.EliteRate)
		if eliteSize < 1 {
			eliteSize = 1
		}
		order := make([]int, len(fits))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool { return fits[order[i]] > fits[order[j]] })
		for _, i := range order[:eliteSize] {
			next = append(next, population[i].Clone())
		}

		for len(next) < len(population) {
			p1 := pool[e.rng.Intn(len(pool))]
			p2 := pool[e.rng.Intn(len(pool))]
			c1, c2 := e.crossover(p1, p2)
			e.mutate(c1)
			e.mutate(c2)
			e.repair(c1)
			e.repair(c2)
			next = append(next, c1, c2)
		}
		population = next[:len(population)]
	}

	if best != nil {
		e.repair(best)
	}

	e.log.Info("scheduler run finished",
		zap.Float64("fitness", bestFitness),
		zap.Int("generations", generation),
		zap.String("reason", string(reason)))
	return Result{
		Best:        best,
		Fitness:     bestFitness,
		Progression: progression,
		Generations: generation,
		Reason:      reason,
	}
}

// meetsWeeklyCounts reports whether every demanded course has at least its
// required number of fully assigned sessions. Courses with no assigned
// sessions count as unmet.
func (e *Engine) meetsWeeklyCounts(ind Individual) bool {
	counts := make(map[string]int, len(e.requiredPerCourse))
	for _, s := range ind {
		if s.Assigned() {
			counts[s.CourseID]++
		}
	}
	for id, required := range e.requiredPerCourse {
		if counts[id] < required {
			return false
		}
	}
	return true
}
