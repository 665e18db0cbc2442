package planning

import "testing"

func TestHybridSchedule_Weight(t *testing.T) {
	t.Parallel()

	s := DefaultHybridSchedule()

	if w := s.Weight(0, 10, 0); w != 0 {
		t.Errorf("Weight at goal = %v, want 0", w)
	}
	if w := s.Weight(10, 10, 50); w != 0 {
		t.Errorf("Weight at bound = %v, want 0", w)
	}

	prev := s.Weight(0, 10, 100)
	for depth := 1; depth <= 10; depth++ {
		w := s.Weight(depth, 10, 100)
		if w > prev {
			t.Errorf("Weight(depth %d) = %v increased from %v", depth, w, prev)
		}
		prev = w
	}

	prev = s.Weight(2, 10, 400)
	for _, d := range []float64{200, 100, 10, 1, 0.1} {
		w := s.Weight(2, 10, d)
		if w > prev {
			t.Errorf("Weight(d %v) = %v increased from %v", d, w, prev)
		}
		prev = w
	}
}

func TestHybridSchedule_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s       HybridSchedule
		wantErr bool
	}{
		{DefaultHybridSchedule(), false},
		{HybridSchedule{Alpha: 0, Knee: 0}, false},
		{HybridSchedule{Alpha: 1.5, Knee: 1}, true},
		{HybridSchedule{Alpha: 0.5, Knee: -1}, true},
	}
	for _, tt := range tests {
		if err := tt.s.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.s, err, tt.wantErr)
		}
	}
}
