package decay

import (
	"math"
	"sort"
)

// Window is an inclusive sample-index range [Lo, Hi] on a time grid.
type Window struct {
	Lo int
	Hi int
}

// FullWindow spans all n samples. For n == 0 it returns the zero window.
func FullWindow(n int) Window {
	if n <= 0 {
		return Window{}
	}

	return Window{Lo: 0, Hi: n - 1}
}

// Len returns the number of samples covered by w.
func (w Window) Len() int {
	if w.Hi < w.Lo {
		return 0
	}

	return w.Hi - w.Lo + 1
}

// Nearest returns the index of the grid value closest to pos. Ties resolve to
// the lower index; positions beyond either end map to that end. NaN and an
// empty grid yield 0. The grid must be sorted ascending.
func Nearest(grid []float64, pos float64) int {
	n := len(grid)
	if n == 0 || math.IsNaN(pos) {
		return 0
	}

	// First index with grid[j] >= pos.
	j := sort.SearchFloat64s(grid, pos)
	if j == 0 {
		return 0
	}

	if j == n {
		return n - 1
	}

	if pos-grid[j-1] <= grid[j]-pos {
		return j - 1
	}

	return j
}

// ResolveWindow maps two boundary positions to an ordered window. Each
// position is resolved independently with [Nearest]; when the lower one ends
// up past the upper one it collapses onto the upper index.
func ResolveWindow(grid []float64, pos1, pos2 float64) Window {
	lo := Nearest(grid, pos1)
	hi := Nearest(grid, pos2)

	if lo > hi {
		lo = hi
	}

	return Window{Lo: lo, Hi: hi}
}
