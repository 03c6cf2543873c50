package engine

import "testing"

func TestActiveWindow(t *testing.T) {
	end := 5.0
	tests := []struct {
		name   string
		window activeWindow
		t      float64
		want   bool
	}{
		{"before start", activeWindow{start: 2, end: &end}, 1.99, false},
		{"exactly at start", activeWindow{start: 2, end: &end}, 2.0, true},
		{"inside", activeWindow{start: 2, end: &end}, 3.5, true},
		{"exactly at end", activeWindow{start: 2, end: &end}, 5.0, false},
		{"after end", activeWindow{start: 2, end: &end}, 9.0, false},
		{"open ended", activeWindow{start: 2}, 1e6, true},
		{"open ended before start", activeWindow{start: 2}, 0, false},
		{"zero start", activeWindow{}, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.window.active(tc.t); got != tc.want {
				t.Errorf("active(%v) = %v, want %v", tc.t, got, tc.want)
			}
		})
	}
}

func TestActiveWindow_EndOrZero(t *testing.T) {
	if got := (activeWindow{start: 1}).endOrZero(); got != 0 {
		t.Errorf("open window endOrZero() = %v, want 0", got)
	}
	end := 7.5
	if got := (activeWindow{end: &end}).endOrZero(); got != 7.5 {
		t.Errorf("endOrZero() = %v, want 7.5", got)
	}
}
