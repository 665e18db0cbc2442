package config

import (
	"math"
	"strings"
	"testing"

	"github.com/felixgeelhaar/goap/domain/planning"
)

func TestValidator_ValidDocument(t *testing.T) {
	t.Parallel()

	doc := survivalDocument()
	if errs := NewValidator().Validate(&doc); errs.HasErrors() {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestValidator_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Document)
		wantPath string
		wantMsg  string
	}{
		{
			name:     "no goals",
			mutate:   func(d *Document) { d.Goals = nil },
			wantPath: "goals",
			wantMsg:  "at least one goal",
		},
		{
			name:     "no actions",
			mutate:   func(d *Document) { d.Actions = nil },
			wantPath: "actions",
			wantMsg:  "at least one action",
		},
		{
			name:     "non-positive duration",
			mutate:   func(d *Document) { d.Actions["blink"] = ActionConfig{Duration: 0} },
			wantPath: "actions.blink.duration",
			wantMsg:  "must be positive",
		},
		{
			name:     "negative weight",
			mutate:   func(d *Document) { d.Goals["energy"] = GoalEntries{{Target: 1, Weight: weight(-3)}} },
			wantPath: "goals.energy.weight",
			wantMsg:  "must not be negative",
		},
		{
			name:     "unknown kind",
			mutate:   func(d *Document) { d.Goals["energy"] = GoalEntries{{Target: 1, Kind: "Roughly"}} },
			wantPath: "goals.energy.kind",
			wantMsg:  "unknown kind",
		},
		{
			name: "unknown kind in list",
			mutate: func(d *Document) {
				d.Goals["energy"] = GoalEntries{{Target: 1}, {Target: 2, Kind: "Roughly"}}
			},
			wantPath: "goals.energy[1].kind",
			wantMsg:  "unknown kind",
		},
		{
			name:     "empty goal list",
			mutate:   func(d *Document) { d.Goals["energy"] = GoalEntries{} },
			wantPath: "goals.energy",
			wantMsg:  "empty",
		},
		{
			name:     "duplicate label",
			mutate:   func(d *Document) { d.Actions["Rest"] = ActionConfig{Duration: 1} },
			wantPath: "actions.rest",
			wantMsg:  "duplicate action label",
		},
		{
			name:     "nan state",
			mutate:   func(d *Document) { d.State["energy"] = math.NaN() },
			wantPath: "state.energy",
			wantMsg:  "finite",
		},
		{
			name: "infinite delta",
			mutate: func(d *Document) {
				d.Actions["rest"] = ActionConfig{Duration: 1, Deltas: map[string]float64{"energy": math.Inf(1)}}
			},
			wantPath: "actions.rest.deltas.energy",
			wantMsg:  "finite",
		},
		{
			name:     "unknown algorithm",
			mutate:   func(d *Document) { d.Plan.Algorithm = "Genetic" },
			wantPath: "plan.algorithm",
			wantMsg:  "Traditional",
		},
		{
			name:     "unknown solution",
			mutate:   func(d *Document) { d.Plan.Solution = "Perfect" },
			wantPath: "plan.solution",
			wantMsg:  "Fast or Best",
		},
		{
			name:     "negative max depth",
			mutate:   func(d *Document) { d.Plan.MaxDepth = -1 },
			wantPath: "plan.max_depth",
			wantMsg:  "positive",
		},
		{
			name:     "negative max steps",
			mutate:   func(d *Document) { d.Plan.MaxSteps = -1 },
			wantPath: "plan.max_steps",
			wantMsg:  "negative",
		},
		{
			name:     "hybrid alpha out of range",
			mutate:   func(d *Document) { d.Plan.Hybrid = &planning.HybridSchedule{Alpha: 1.2} },
			wantPath: "plan.hybrid.alpha",
			wantMsg:  "between 0 and 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := survivalDocument()
			tt.mutate(&doc)

			errs := NewValidator().Validate(&doc)
			if !errs.HasErrors() {
				t.Fatal("Validate() returned no errors")
			}
			for _, e := range errs {
				if e.Path == tt.wantPath && strings.Contains(e.Message, tt.wantMsg) {
					return
				}
			}
			t.Errorf("Validate() = %v, want %s containing %q", errs, tt.wantPath, tt.wantMsg)
		})
	}
}

func TestValidator_AccumulatesErrors(t *testing.T) {
	t.Parallel()

	doc := Document{
		Actions: map[string]ActionConfig{"a": {Duration: -1}, "b": {Duration: 0}},
		Plan:    PlanConfig{MaxDepth: -1},
	}
	errs := NewValidator().Validate(&doc)
	if len(errs) != 4 {
		t.Errorf("len(Validate()) = %d, want 4: %v", len(errs), errs)
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  ValidationError
		want string
	}{
		{
			name: "with path",
			err:  ValidationError{Path: "plan.max_depth", Message: "must be positive"},
			want: "plan.max_depth: must be positive",
		},
		{
			name: "without path",
			err:  ValidationError{Path: "", Message: "general error"},
			want: "general error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		errs ValidationErrors
		want string
	}{
		{
			name: "no errors",
			errs: ValidationErrors{},
			want: "no validation errors",
		},
		{
			name: "single error",
			errs: ValidationErrors{{Path: "goals", Message: "at least one goal is required"}},
			want: "goals: at least one goal is required",
		},
		{
			name: "multiple errors",
			errs: ValidationErrors{
				{Path: "goals", Message: "at least one goal is required"},
				{Path: "actions", Message: "at least one action is required"},
			},
			want: "2 validation errors:\n  - goals: at least one goal is required\n  - actions: at least one action is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.errs.Error(); got != tt.want {
				t.Errorf("ValidationErrors.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
