// Package time computes time-domain statistics over sample windows: extrema
// used to scale decay-window views and the moments needed for goodness-of-fit.
package time

import "math"

// Stats holds time-domain window statistics.
type Stats struct {
	Length   int
	Mean     float64
	Variance float64 // population variance
	RMS      float64
	Max      float64
	MaxPos   int
	Min      float64
	MinPos   int
	Peak     float64 // max(|max|, |min|)
	Range    float64 // max - min
	Energy   float64 // sum of squares
}

// Calculate computes all statistics in a single pass using Welford's online
// algorithm for the variance.
func Calculate(signal []float64) Stats {
	n := len(signal)
	if n == 0 {
		return Stats{}
	}

	var (
		mean   float64
		m2     float64
		sumSq  float64
		maxVal = signal[0]
		maxPos int
		minVal = signal[0]
		minPos int
	)

	for i, x := range signal {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)

		sumSq += x * x

		if x > maxVal {
			maxVal = x
			maxPos = i
		}

		if x < minVal {
			minVal = x
			minPos = i
		}
	}

	nf := float64(n)

	return Stats{
		Length:   n,
		Mean:     mean,
		Variance: m2 / nf,
		RMS:      math.Sqrt(sumSq / nf),
		Max:      maxVal,
		MaxPos:   maxPos,
		Min:      minVal,
		MinPos:   minPos,
		Peak:     math.Max(math.Abs(maxVal), math.Abs(minVal)),
		Range:    maxVal - minVal,
		Energy:   sumSq,
	}
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(SumSquares(signal) / float64(len(signal)))
}

// SumSquares returns the sum of squared samples.
func SumSquares(signal []float64) float64 {
	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return sumSq
}

// Max returns the largest value and its first position. An empty signal
// yields (0, -1).
func Max(signal []float64) (float64, int) {
	if len(signal) == 0 {
		return 0, -1
	}

	maxVal, maxPos := signal[0], 0
	for i, x := range signal[1:] {
		if x > maxVal {
			maxVal = x
			maxPos = i + 1
		}
	}

	return maxVal, maxPos
}
