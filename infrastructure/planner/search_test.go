package planner

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"

	"github.com/felixgeelhaar/goap/domain/planning"
)

func survivalRequest(alg planning.Algorithm, mode planning.Mode, bound int) planning.Request {
	return planning.Request{
		Initial: planning.NewState(map[string]float64{
			"energy":            50,
			"health":            20,
			"num_apples":        2,
			"num_uncooked_meat": 0,
			"num_cooked_meat":   0,
		}),
		Goals: planning.GoalSet{
			{Property: "health", Target: 100, Kind: planning.GreaterThanOrEqualTo, Weight: 4},
			{Property: "energy", Target: 100, Kind: planning.GreaterThanOrEqualTo, Weight: 1},
		},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("rest", 8, map[string]float64{"energy": 20, "health": 15}),
			planning.MustNewAction("eat_apple", 2, map[string]float64{"num_apples": -1, "health": 20, "energy": 5}),
			planning.MustNewAction("gather", 6, map[string]float64{"num_apples": 2, "energy": -5}),
			planning.MustNewAction("hunt", 20, map[string]float64{"num_uncooked_meat": 2, "energy": -15, "health": -5}),
			planning.MustNewAction("cook", 4, map[string]float64{"num_uncooked_meat": -1, "num_cooked_meat": 1, "energy": -5}),
		),
		Algorithm: alg,
		Mode:      mode,
		Bound:     bound,
	}
}

func TestPlan_SurvivalTraditionalBest(t *testing.T) {
	t.Parallel()

	plan, err := Plan(survivalRequest(planning.Traditional, planning.Best, 10))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if plan.InitialDiscontentment != 370 {
		t.Errorf("InitialDiscontentment = %v, want 370", plan.InitialDiscontentment)
	}
	if plan.Discontentment() != 0 || !plan.Complete {
		t.Fatalf("Discontentment() = %v, Complete = %v, want 0 and true", plan.Discontentment(), plan.Complete)
	}

	want := []string{"eat_apple", "eat_apple", "eat_apple", "rest", "rest"}
	if got := plan.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}

	final := plan.Final()
	if final.Get("energy") != 105 || final.Get("health") != 110 {
		t.Errorf("final energy = %v, health = %v, want 105 and 110", final.Get("energy"), final.Get("health"))
	}
	if plan.Duration() != 22 {
		t.Errorf("Duration() = %v, want 22", plan.Duration())
	}
}

func TestPlan_StepsAccumulate(t *testing.T) {
	t.Parallel()

	req := survivalRequest(planning.Traditional, planning.Best, 10)
	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	state := req.Initial
	var duration float64
	for i, step := range plan.Steps {
		action, ok := req.Actions.Lookup(step.Action)
		if !ok {
			t.Fatalf("step %d: unknown action %q", i, step.Action)
		}
		state = state.Apply(action)
		duration += action.Duration()

		if !step.State.Equal(state) {
			t.Errorf("step %d: State = %v, want %v", i, step.State, state)
		}
		if step.Duration != duration {
			t.Errorf("step %d: Duration = %v, want %v", i, step.Duration, duration)
		}
		if d := req.Goals.Discontentment(state); step.Discontentment != d {
			t.Errorf("step %d: Discontentment = %v, want %v", i, step.Discontentment, d)
		}
	}
}

func TestPlan_EfficiencyFirstStepIsLocallyBest(t *testing.T) {
	t.Parallel()

	req := survivalRequest(planning.EfficiencyBased, planning.Fast, 10)
	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Len() == 0 {
		t.Fatal("Plan() returned no steps")
	}

	d0 := req.Goals.Discontentment(req.Initial)
	bestRatio := math.Inf(-1)
	for _, a := range req.Actions.Actions() {
		ratio := (d0 - req.Goals.Discontentment(req.Initial.Apply(a))) / a.Duration()
		bestRatio = max(bestRatio, ratio)
	}

	first, _ := req.Actions.Lookup(plan.Steps[0].Action)
	ratio := (d0 - plan.Steps[0].Discontentment) / first.Duration()
	if ratio != bestRatio {
		t.Errorf("first action %q ratio = %v, want maximal %v", first.Label(), ratio, bestRatio)
	}
	if first.Label() == "hunt" {
		t.Error("efficiency search chose hunt first")
	}
}

func TestPlan_AllCombinations(t *testing.T) {
	t.Parallel()

	for _, alg := range []planning.Algorithm{planning.Traditional, planning.EfficiencyBased, planning.Hybrid} {
		for _, mode := range []planning.Mode{planning.Fast, planning.Best} {
			t.Run(fmt.Sprintf("%s/%s", alg, mode), func(t *testing.T) {
				t.Parallel()

				req := survivalRequest(alg, mode, 10)
				plan, err := Plan(req)
				if err != nil {
					t.Fatalf("Plan() error = %v", err)
				}
				if plan.Algorithm != alg || plan.Mode != mode {
					t.Errorf("plan tagged %s/%s", plan.Algorithm, plan.Mode)
				}
				if plan.Len() > req.Bound {
					t.Errorf("Len() = %d exceeds bound %d", plan.Len(), req.Bound)
				}
				if plan.Discontentment() >= plan.InitialDiscontentment {
					t.Errorf("Discontentment() = %v, want below %v", plan.Discontentment(), plan.InitialDiscontentment)
				}
				if plan.Stats.Expanded == 0 || plan.Stats.Generated == 0 {
					t.Errorf("Stats = %+v, want work recorded", plan.Stats)
				}
			})
		}
	}
}

func TestPlan_TraditionalFastReachesGoal(t *testing.T) {
	t.Parallel()

	plan, err := Plan(survivalRequest(planning.Traditional, planning.Fast, 10))
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !plan.Complete {
		t.Errorf("Complete = false, discontentment %v", plan.Discontentment())
	}
}

func TestPlan_Failures(t *testing.T) {
	t.Parallel()

	noop := planning.MustNewAction("wait", 1, map[string]float64{"energy": -1})
	idle := planning.MustNewAction("idle", 1, nil)
	state := planning.NewState(map[string]float64{"energy": 10})
	goals := planning.GoalSet{{Property: "energy", Target: 20, Kind: planning.GreaterThanOrEqualTo, Weight: 1}}

	tests := []struct {
		name    string
		req     planning.Request
		wantErr error
	}{
		{
			name:    "empty catalogue",
			req:     planning.Request{Initial: state, Goals: goals, Bound: 3},
			wantErr: planning.ErrEmptyCatalogue,
		},
		{
			name: "empty catalogue in fast mode",
			req: planning.Request{
				Initial: state, Goals: goals, Bound: 3, Mode: planning.Fast,
			},
			wantErr: planning.ErrEmptyCatalogue,
		},
		{
			name: "fast mode without improvement",
			req: planning.Request{
				Initial: state, Goals: goals, Bound: 3, Mode: planning.Fast,
				Actions: planning.MustNewCatalogue(noop),
			},
			wantErr: planning.ErrNoImprovement,
		},
		{
			name: "greedy mode without improvement",
			req: planning.Request{
				Initial:   state,
				Goals:     goals,
				Actions:   planning.MustNewCatalogue(noop, idle),
				Bound:     3,
				Mode:      planning.Fast,
				Algorithm: planning.EfficiencyBased,
			},
			wantErr: planning.ErrNoImprovement,
		},
		{
			name: "zero bound",
			req: planning.Request{
				Initial: state, Goals: goals, Bound: 0,
				Actions: planning.MustNewCatalogue(noop),
			},
			wantErr: planning.ErrInvalidBound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := Plan(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Plan() error = %v, want %v", err, tt.wantErr)
			}
			if plan != nil {
				t.Errorf("Plan() = %+v, want nil", plan)
			}
		})
	}
}

func TestPlan_FailureCarriesDiagnostics(t *testing.T) {
	t.Parallel()

	req := planning.Request{
		Initial: planning.NewState(map[string]float64{"x": 0}),
		Goals:   planning.GoalSet{{Property: "x", Target: 5, Kind: planning.GreaterThanOrEqualTo, Weight: 1}},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("down", 1, map[string]float64{"x": -1}),
		),
		Mode:  planning.Fast,
		Bound: 4,
	}

	_, err := Plan(req)
	var failure *planning.Failure
	if !errors.As(err, &failure) {
		t.Fatalf("Plan() error = %v, want *planning.Failure", err)
	}
	if failure.Expanded != 4 || failure.MaxDepth != 4 {
		t.Errorf("Failure = %+v, want 4 expanded at depth 4", failure)
	}
}

func TestPlan_BestModeReturnsRootWhenNothingHelps(t *testing.T) {
	t.Parallel()

	req := planning.Request{
		Initial: planning.NewState(map[string]float64{"x": 1}),
		Goals:   planning.GoalSet{{Property: "x", Target: 0, Kind: planning.Minimize, Weight: 2}},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("grow", 1, map[string]float64{"x": 1}),
		),
		Bound: 3,
	}

	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Len() != 0 || plan.Discontentment() != 2 {
		t.Errorf("plan = %v steps at %v, want empty plan at 2", plan.Len(), plan.Discontentment())
	}
}

func TestPlan_SatisfiedInitialState(t *testing.T) {
	t.Parallel()

	for _, mode := range []planning.Mode{planning.Fast, planning.Best} {
		req := survivalRequest(planning.Traditional, mode, 5)
		req.Initial = planning.NewState(map[string]float64{"energy": 100, "health": 100})

		plan, err := Plan(req)
		if err != nil {
			t.Fatalf("%s: Plan() error = %v", mode, err)
		}
		if plan.Len() != 0 || !plan.Complete {
			t.Errorf("%s: plan = %v steps, Complete = %v", mode, plan.Len(), plan.Complete)
		}
	}
}

func TestPlan_ZeroEffectActionsTerminate(t *testing.T) {
	t.Parallel()

	req := planning.Request{
		Initial: planning.NewState(map[string]float64{"x": 0}),
		Goals:   planning.GoalSet{{Property: "y", Target: 1, Kind: planning.GreaterThanOrEqualTo, Weight: 1}},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("noop", 1, nil),
			planning.MustNewAction("wait", 1, map[string]float64{"x": 0}),
			planning.MustNewAction("up", 1, map[string]float64{"x": 1}),
			planning.MustNewAction("down", 1, map[string]float64{"x": -1}),
		),
		Bound: 1000,
	}

	for _, alg := range []planning.Algorithm{planning.Traditional, planning.EfficiencyBased, planning.Hybrid} {
		req.Algorithm = alg
		req.Mode = planning.Fast

		_, err := Plan(req)
		var failure *planning.Failure
		if !errors.As(err, &failure) {
			t.Fatalf("%s: Plan() error = %v, want failure", alg, err)
		}
		if !errors.Is(err, planning.ErrNoImprovement) {
			t.Errorf("%s: error = %v, want ErrNoImprovement", alg, err)
		}
		if failure.Expanded > req.Bound*req.Actions.Len() {
			t.Errorf("%s: Expanded = %d, want at most %d", alg, failure.Expanded, req.Bound*req.Actions.Len())
		}
	}
}

func TestPlan_StepCeiling(t *testing.T) {
	t.Parallel()

	req := survivalRequest(planning.Traditional, planning.Best, 10)
	req.MaxSteps = 3

	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.Stats.Expanded != 3 {
		t.Errorf("Stats.Expanded = %d, want 3", plan.Stats.Expanded)
	}
	if plan.Discontentment() >= plan.InitialDiscontentment {
		t.Errorf("Discontentment() = %v, want improvement", plan.Discontentment())
	}
}

func TestPlan_DuplicateGoalsAccumulate(t *testing.T) {
	t.Parallel()

	req := planning.Request{
		Initial: planning.NewState(map[string]float64{"x": 0}),
		Goals: planning.GoalSet{
			{Property: "x", Target: 2, Kind: planning.GreaterThanOrEqualTo, Weight: 1},
			{Property: "x", Target: 2, Kind: planning.GreaterThanOrEqualTo, Weight: 1},
		},
		Actions: planning.MustNewCatalogue(planning.MustNewAction("inc", 1, map[string]float64{"x": 1})),
		Bound:   5,
	}

	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if plan.InitialDiscontentment != 4 {
		t.Errorf("InitialDiscontentment = %v, want 4", plan.InitialDiscontentment)
	}
	if plan.Len() != 2 || !plan.Complete {
		t.Errorf("plan = %v, want two increments", plan.Labels())
	}
}

func TestPlan_IdenticalDeltasAreDistinctActions(t *testing.T) {
	t.Parallel()

	req := planning.Request{
		Initial: planning.NewState(map[string]float64{"x": 3}),
		Goals:   planning.GoalSet{{Property: "x", Target: 0, Kind: planning.LessThanOrEqualTo, Weight: 1}},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("wait", 1, map[string]float64{"x": -1}),
			planning.MustNewAction("sleep", 1, map[string]float64{"x": -1}),
		),
		Bound: 5,
	}

	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []string{"sleep", "sleep", "sleep"}
	if got := plan.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
}

func TestPlan_Concurrent(t *testing.T) {
	t.Parallel()

	req := survivalRequest(planning.Hybrid, planning.Best, 8)
	want, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Plan(req)
			if err != nil {
				errs <- err
				return
			}
			if !slices.Equal(got.Labels(), want.Labels()) {
				errs <- fmt.Errorf("labels = %v, want %v", got.Labels(), want.Labels())
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// randomRequest builds a small catalogue with integral deltas so that
// discontentment arithmetic is exact.
func randomRequest(r *rand.Rand) planning.Request {
	props := []string{"a", "b", "c"}
	initial := make(map[string]float64)
	for _, p := range props {
		initial[p] = float64(r.IntN(7) - 3)
	}

	kinds := []planning.Kind{planning.GreaterThanOrEqualTo, planning.LessThanOrEqualTo, planning.Equal, planning.Minimize}
	var goals planning.GoalSet
	for i := 0; i < 1+r.IntN(3); i++ {
		goals = append(goals, planning.Goal{
			Property: props[r.IntN(len(props))],
			Target:   float64(r.IntN(9) - 4),
			Kind:     kinds[r.IntN(len(kinds))],
			Weight:   float64(r.IntN(4)),
		})
	}

	var actions []planning.Action
	for i := 0; i < 2+r.IntN(3); i++ {
		deltas := make(map[string]float64)
		for _, p := range props {
			if r.IntN(2) == 0 {
				deltas[p] = float64(r.IntN(5) - 2)
			}
		}
		actions = append(actions, planning.MustNewAction(fmt.Sprintf("act%d", i), float64(1+r.IntN(5)), deltas))
	}

	return planning.Request{
		Initial: planning.NewState(initial),
		Goals:   goals,
		Actions: planning.MustNewCatalogue(actions...),
		Bound:   1 + r.IntN(4),
	}
}

// bruteForce returns the lowest discontentment over every action sequence
// of length at most bound, the empty sequence included.
func bruteForce(req planning.Request) float64 {
	actions := req.Actions.Actions()
	best := req.Goals.Discontentment(req.Initial)

	var walk func(s planning.State, depth int)
	walk = func(s planning.State, depth int) {
		if depth == req.Bound {
			return
		}
		for _, a := range actions {
			next := s.Apply(a)
			best = min(best, req.Goals.Discontentment(next))
			walk(next, depth+1)
		}
	}
	walk(req.Initial, 0)
	return best
}

func TestPlan_TraditionalBestIsOptimal(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 11))
	for i := range 200 {
		req := randomRequest(r)
		plan, err := Plan(req)
		if err != nil {
			t.Fatalf("case %d: Plan() error = %v", i, err)
		}
		if want := bruteForce(req); plan.Discontentment() != want {
			t.Errorf("case %d: Discontentment() = %v, want optimum %v (bound %d)", i, plan.Discontentment(), want, req.Bound)
		}
	}
}

// ranked is the exhaustive-search objective of one path, in the order the
// search compares results.
type ranked struct {
	rank     float64
	disc     float64
	depth    int
	duration float64
}

func (a ranked) better(b ranked) bool {
	switch {
	case a.rank != b.rank:
		return a.rank < b.rank
	case a.disc != b.disc:
		return a.disc < b.disc
	case a.depth != b.depth:
		return a.depth < b.depth
	}
	return a.duration < b.duration
}

func rankPath(st strategy, rootDisc, disc, duration float64, depth int) ranked {
	n := node{depth: depth, disc: disc, duration: duration}
	if depth > 0 {
		n.pathEff = (rootDisc - disc) / duration
	}
	return ranked{rank: st.bestRank(&n), disc: disc, depth: depth, duration: duration}
}

// bruteForceRanked returns the best objective over every action sequence of
// length at most bound, the empty sequence included.
func bruteForceRanked(req planning.Request) ranked {
	st := strategyFor(req)
	actions := req.Actions.Actions()
	root := req.Goals.Discontentment(req.Initial)
	best := rankPath(st, root, root, 0, 0)

	var walk func(s planning.State, depth int, duration float64)
	walk = func(s planning.State, depth int, duration float64) {
		if depth == req.Bound {
			return
		}
		for _, a := range actions {
			next := s.Apply(a)
			d := duration + a.Duration()
			if c := rankPath(st, root, req.Goals.Discontentment(next), d, depth+1); c.better(best) {
				best = c
			}
			walk(next, depth+1, d)
		}
	}
	walk(req.Initial, 0, 0)
	return best
}

func TestPlan_TimeFavouringBestIsOptimal(t *testing.T) {
	t.Parallel()

	for _, alg := range []planning.Algorithm{planning.EfficiencyBased, planning.Hybrid} {
		t.Run(alg.String(), func(t *testing.T) {
			t.Parallel()

			r := rand.New(rand.NewPCG(19, uint64(alg)))
			for i := range 300 {
				req := randomRequest(r)
				req.Algorithm = alg
				req.Mode = planning.Best
				if alg == planning.Hybrid && i%2 == 1 {
					req.Schedule = &planning.HybridSchedule{Alpha: float64(r.IntN(5)) / 4, Knee: float64(r.IntN(20))}
				}

				plan, err := Plan(req)
				if err != nil {
					t.Fatalf("case %d: Plan() error = %v", i, err)
				}
				got := rankPath(strategyFor(req), plan.InitialDiscontentment, plan.Discontentment(), plan.Duration(), plan.Len())
				if want := bruteForceRanked(req); got != want {
					t.Errorf("case %d: plan %v scores %+v, want %+v (bound %d)", i, plan.Labels(), got, want, req.Bound)
				}
			}
		})
	}
}

func TestPlan_EfficiencyBestKeepsFasterDeeperPath(t *testing.T) {
	t.Parallel()

	// big reaches x=2 in one slow step and would shadow small,small.
	req := planning.Request{
		Initial: planning.NewState(nil),
		Goals:   planning.GoalSet{{Property: "x", Target: 3, Kind: planning.GreaterThanOrEqualTo, Weight: 1}},
		Actions: planning.MustNewCatalogue(
			planning.MustNewAction("big", 10, map[string]float64{"x": 2}),
			planning.MustNewAction("small", 1, map[string]float64{"x": 1}),
		),
		Algorithm: planning.EfficiencyBased,
		Mode:      planning.Best,
		Bound:     3,
	}

	plan, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	want := []string{"small", "small", "small"}
	if got := plan.Labels(); !slices.Equal(got, want) {
		t.Errorf("Labels() = %v, want %v", got, want)
	}
	if plan.Discontentment() != 0 || plan.Duration() != 3 {
		t.Errorf("Discontentment() = %v, Duration() = %v, want 0 and 3", plan.Discontentment(), plan.Duration())
	}
}

func TestPlan_LargerBoundNeverWorse(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(3, 5))
	for i := range 100 {
		req := randomRequest(r)

		prev := math.Inf(1)
		for bound := 1; bound <= 5; bound++ {
			req.Bound = bound
			plan, err := Plan(req)
			if err != nil {
				t.Fatalf("case %d bound %d: Plan() error = %v", i, bound, err)
			}
			if plan.Discontentment() > prev {
				t.Errorf("case %d: bound %d gives %v, worse than %v", i, bound, plan.Discontentment(), prev)
			}
			prev = plan.Discontentment()
		}
	}
}

func TestPlan_FastNeverWorseThanInitial(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(13, 17))
	for i := range 200 {
		req := randomRequest(r)
		req.Mode = planning.Fast
		req.Algorithm = planning.Algorithm(i % 3)

		plan, err := Plan(req)
		if errors.Is(err, planning.ErrNoImprovement) {
			continue
		}
		if err != nil {
			t.Fatalf("case %d: Plan() error = %v", i, err)
		}
		if plan.Len() > 0 && plan.Discontentment() >= plan.InitialDiscontentment {
			t.Errorf("case %d: %s plan ends at %v, initial %v", i, req.Algorithm, plan.Discontentment(), plan.InitialDiscontentment)
		}
	}
}
