// Package telemetry summarizes generation fitness and writes per-run
// experiment output (CSV history plus the effective config).
package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the fitness distribution of one generation.
type Summary struct {
	Count  int
	Best   float64
	Worst  float64
	Mean   float64
	StdDev float64
	Median float64
	P10    float64
	P90    float64
}

// Summarize computes a Summary. An empty slice yields the zero Summary.
func Summarize(fitness []float64) Summary {
	n := len(fitness)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, fitness)
	sort.Float64s(sorted)

	s := Summary{
		Count:  n,
		Best:   floats.Max(sorted),
		Worst:  floats.Min(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P10:    stat.Quantile(0.1, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
	}
	// Sample standard deviation is undefined for a single value.
	if n > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}
