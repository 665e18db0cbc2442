package planning

import (
	"testing"
)

func TestState_GetDefaultsToZero(t *testing.T) {
	t.Parallel()

	s := NewState(map[string]float64{"energy": 50})
	if got := s.Get("energy"); got != 50 {
		t.Errorf("Get(energy) = %v, want 50", got)
	}
	if got := s.Get("missing"); got != 0 {
		t.Errorf("Get(missing) = %v, want 0", got)
	}
	if s.Has("missing") {
		t.Error("Has(missing) = true")
	}
}

func TestState_EqualityUsesEffectiveValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b map[string]float64
		want bool
	}{
		{"identical", map[string]float64{"a": 1}, map[string]float64{"a": 1}, true},
		{"explicit zero", map[string]float64{"a": 1, "b": 0}, map[string]float64{"a": 1}, true},
		{"both empty", nil, map[string]float64{"x": 0}, true},
		{"different value", map[string]float64{"a": 1}, map[string]float64{"a": 2}, false},
		{"extra property", map[string]float64{"a": 1}, map[string]float64{"a": 1, "b": 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, b := NewState(tt.a), NewState(tt.b)
			if got := a.Equal(b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
			if got := a.Key() == b.Key(); got != tt.want {
				t.Errorf("Key() equality = %v, want %v (%q vs %q)", got, tt.want, a.Key(), b.Key())
			}
		})
	}
}

func TestState_ApplyIsAdditiveAndPure(t *testing.T) {
	t.Parallel()

	src := map[string]float64{"energy": 50, "health": 20}
	s := NewState(src)
	a := MustNewAction("hunt", 20, map[string]float64{"energy": -60, "meat": 2})

	next := s.Apply(a)

	if got := next.Get("energy"); got != -10 {
		t.Errorf("energy = %v, want -10", got)
	}
	if got := next.Get("meat"); got != 2 {
		t.Errorf("meat = %v, want 2", got)
	}
	if got := next.Get("health"); got != 20 {
		t.Errorf("health = %v, want 20", got)
	}
	if s.Get("energy") != 50 || s.Has("meat") {
		t.Errorf("receiver modified: %v", s)
	}

	src["energy"] = 0
	if s.Get("energy") != 50 {
		t.Error("state aliases the constructor map")
	}
}

func TestState_InverseRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewState(map[string]float64{"energy": 50, "health": 20, "num_apples": 2})
	eat := MustNewAction("eat_apple", 2, map[string]float64{"num_apples": -1, "health": 20, "energy": 5})
	vomit, err := eat.Inverse("vomit")
	if err != nil {
		t.Fatalf("Inverse() error = %v", err)
	}

	back := s.Apply(eat).Apply(vomit)
	if !back.Equal(s) {
		t.Errorf("round trip = %v, want %v", back, s)
	}
	if back.Key() != s.Key() {
		t.Errorf("round trip key = %q, want %q", back.Key(), s.Key())
	}
}

func TestState_Keys(t *testing.T) {
	t.Parallel()

	s := NewState(map[string]float64{"b": 1, "a": 0, "c": 2})
	got := s.Keys()
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if s.String() != "{a=0 b=1 c=2}" {
		t.Errorf("String() = %q", s.String())
	}
}
