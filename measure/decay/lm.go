package decay

import "math"

const (
	lambdaInit = 1e-3
	lambdaMin  = 1e-12
	lambdaMax  = 1e16
	// diagFloor keeps Marquardt scaling positive when a Jacobian column
	// vanishes, e.g. the rate column of a zero-amplitude model.
	diagFloor = 1e-12
)

// lmProblem holds the normalised fit problem
//
//	f(u) = a*exp(-k*u) + c,   u = (t-t0)/duration,  y' = y/scale
//
// which keeps all three parameters of order one regardless of the units of
// the time axis.
type lmProblem struct {
	u []float64
	y []float64

	maxIter int
	ftol    float64
	xtol    float64

	r []float64 // residuals of the current iterate
}

type lmResult struct {
	p          [3]float64 // a, k, c
	ssr        float64
	iterations int
	converged  bool
}

func (lp *lmProblem) residuals(p [3]float64, r []float64) float64 {
	a, k, c := p[0], p[1], p[2]

	var ssr float64
	for i, u := range lp.u {
		ri := lp.y[i] - (a*math.Exp(-k*u) + c)
		r[i] = ri
		ssr += ri * ri
	}

	return ssr
}

// solve runs Levenberg-Marquardt from p. It never returns a non-finite
// parameter vector with converged set.
func (lp *lmProblem) solve(p [3]float64) lmResult {
	n := len(lp.u)
	lp.r = make([]float64, n)
	trial := make([]float64, n)

	ssr := lp.residuals(p, lp.r)
	if !isFiniteVec(p) || math.IsNaN(ssr) || math.IsInf(ssr, 0) {
		return lmResult{p: p, ssr: ssr}
	}

	// An exact fit needs no refinement.
	exact := 1e-28 * float64(n)
	if ssr <= exact {
		return lmResult{p: p, ssr: ssr, converged: true}
	}

	lambda := lambdaInit
	stalls := 0

	for iter := 1; iter <= lp.maxIter; iter++ {
		var jtj [3][3]float64
		var g [3]float64

		a, k := p[0], p[1]
		for i, u := range lp.u {
			e := math.Exp(-k * u)
			j := [3]float64{e, -a * u * e, 1}
			for row := range 3 {
				g[row] += j[row] * lp.r[i]
				for col := row; col < 3; col++ {
					jtj[row][col] += j[row] * j[col]
				}
			}
		}

		jtj[1][0], jtj[2][0], jtj[2][1] = jtj[0][1], jtj[0][2], jtj[1][2]

		maxDiag := math.Max(jtj[0][0], math.Max(jtj[1][1], jtj[2][2]))

		accepted := false

		var step [3]float64

		var next [3]float64

		var nextSSR float64

		for lambda <= lambdaMax {
			sys := jtj
			for d := range 3 {
				sys[d][d] += lambda * math.Max(jtj[d][d], diagFloor*math.Max(maxDiag, 1))
			}

			var ok bool

			step, ok = solve3(sys, g)
			if ok {
				for d := range 3 {
					next[d] = p[d] + step[d]
				}

				nextSSR = lp.residuals(next, trial)
				if isFiniteVec(next) && !math.IsNaN(nextSSR) && nextSSR <= ssr {
					accepted = true
					break
				}
			}

			lambda *= 10
		}

		if !accepted {
			// No damped step lowers the cost: p is stationary.
			return lmResult{p: p, ssr: ssr, iterations: iter, converged: true}
		}

		reduction := ssr - nextSSR
		p = next
		ssr = nextSSR
		copy(lp.r, trial)
		lambda = math.Max(lambda/10, lambdaMin)

		if ssr <= exact {
			return lmResult{p: p, ssr: ssr, iterations: iter, converged: true}
		}

		// Require two consecutive small updates so a single heavily damped
		// step does not end the search early.
		if reduction <= lp.ftol*ssr || smallStep(step, p, lp.xtol) {
			stalls++
			if stalls >= 2 {
				return lmResult{p: p, ssr: ssr, iterations: iter, converged: true}
			}
		} else {
			stalls = 0
		}
	}

	return lmResult{p: p, ssr: ssr, iterations: lp.maxIter}
}

func smallStep(step, p [3]float64, xtol float64) bool {
	for d := range 3 {
		if math.Abs(step[d]) > xtol*(math.Abs(p[d])+xtol) {
			return false
		}
	}

	return true
}

func isFiniteVec(p [3]float64) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// solve3 solves the 3x3 system m*x = b by Gaussian elimination with partial
// pivoting.
func solve3(m [3][3]float64, b [3]float64) ([3]float64, bool) {
	var x [3]float64

	for col := range 3 {
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}

		if !(math.Abs(m[pivot][col]) > 1e-300) {
			return x, false
		}

		m[col], m[pivot] = m[pivot], m[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 3; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k < 3; k++ {
				m[row][k] -= f * m[col][k]
			}
			b[row] -= f * b[col]
		}
	}

	for row := 2; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < 3; k++ {
			sum -= m[row][k] * x[k]
		}
		x[row] = sum / m[row][row]
	}

	return x, isFiniteVec(x)
}
