package decay

import (
	"math"
	"math/rand"
	"testing"
)

func TestNearest(t *testing.T) {
	grid := []float64{0, 1, 2, 3}

	tests := []struct {
		name string
		pos  float64
		want int
	}{
		{name: "exact", pos: 2, want: 2},
		{name: "closer to lower", pos: 1.2, want: 1},
		{name: "closer to upper", pos: 1.7, want: 2},
		{name: "tie goes low", pos: 1.5, want: 1},
		{name: "below range", pos: -10, want: 0},
		{name: "above range", pos: 99, want: 3},
		{name: "nan", pos: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Nearest(grid, tt.pos); got != tt.want {
				t.Fatalf("Nearest(%v) = %d, want %d", tt.pos, got, tt.want)
			}
		})
	}

	if got := Nearest(nil, 1); got != 0 {
		t.Fatalf("Nearest(nil) = %d, want 0", got)
	}
}

func TestNearestMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	grid := make([]float64, 37)
	for i := range grid {
		grid[i] = 0.25 * float64(i)
	}

	for range 500 {
		pos := rng.Float64()*12 - 1
		best := 0
		for i := range grid {
			if math.Abs(grid[i]-pos) < math.Abs(grid[best]-pos) {
				best = i
			}
		}

		if got := Nearest(grid, pos); got != best {
			t.Fatalf("Nearest(%v) = %d, linear scan %d", pos, got, best)
		}
	}
}

func TestResolveWindow(t *testing.T) {
	grid := []float64{0, 1, 2, 3, 4, 5}

	tests := []struct {
		name       string
		pos1, pos2 float64
		want       Window
	}{
		{name: "ordered", pos1: 1.1, pos2: 3.9, want: Window{Lo: 1, Hi: 4}},
		{name: "equal", pos1: 2, pos2: 2, want: Window{Lo: 2, Hi: 2}},
		{name: "inverted collapses to upper", pos1: 4, pos2: 1, want: Window{Lo: 1, Hi: 1}},
		{name: "zero", pos1: 0, pos2: 0, want: Window{Lo: 0, Hi: 0}},
		{name: "outside", pos1: -5, pos2: 50, want: Window{Lo: 0, Hi: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveWindow(grid, tt.pos1, tt.pos2); got != tt.want {
				t.Fatalf("ResolveWindow(%v, %v) = %+v, want %+v", tt.pos1, tt.pos2, got, tt.want)
			}
		})
	}
}

func TestResolveWindowNeverInverted(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	grid := make([]float64, 64)
	for i := range grid {
		grid[i] = 1e-12 * float64(i)
	}

	for range 1000 {
		p1 := (rng.Float64()*1.2 - 0.1) * 64e-12
		p2 := (rng.Float64()*1.2 - 0.1) * 64e-12

		w := ResolveWindow(grid, p1, p2)
		if w.Lo > w.Hi || w.Lo < 0 || w.Hi >= len(grid) {
			t.Fatalf("ResolveWindow(%g, %g) = %+v", p1, p2, w)
		}

		if p1 == p2 && w.Lo != w.Hi {
			t.Fatalf("equal positions gave %+v", w)
		}
	}
}

func TestWindowLen(t *testing.T) {
	if got := (Window{Lo: 2, Hi: 2}).Len(); got != 1 {
		t.Fatalf("Len = %d, want 1", got)
	}
	if got := FullWindow(10); got != (Window{Lo: 0, Hi: 9}) || got.Len() != 10 {
		t.Fatalf("FullWindow(10) = %+v", got)
	}
	if got := FullWindow(0); got != (Window{}) {
		t.Fatalf("FullWindow(0) = %+v", got)
	}
}
