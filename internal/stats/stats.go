package stats

import (
	"math"
	"slices"
	"time"
)

// Sample holds the descriptive statistics for one solution's measured
// durations. All fields are derived from the same sorted sample, so
// Min <= Median <= Max always holds and Min <= Mean.
type Sample struct {
	Count  int
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	Median time.Duration
	Stdev  time.Duration
	P95    time.Duration
	P99    time.Duration
	Total  time.Duration
}

// Summarize reduces a non-empty duration sequence. The input is not
// modified. Returns the zero Sample for an empty input.
func Summarize(durations []time.Duration) Sample {
	if len(durations) == 0 {
		return Sample{}
	}

	sorted := slices.Clone(durations)
	slices.Sort(sorted)

	var total time.Duration
	for _, d := range sorted {
		total += d
	}
	mean := total / time.Duration(len(sorted))

	return Sample{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   mean,
		Median: median(sorted),
		Stdev:  stdev(sorted, mean),
		P95:    percentile(sorted, 0.95),
		P99:    percentile(sorted, 0.99),
		Total:  total,
	}
}

// median averages the two central values for even-length input.
func median(sorted []time.Duration) time.Duration {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// stdev is the population standard deviation.
func stdev(sorted []time.Duration, mean time.Duration) time.Duration {
	if len(sorted) < 2 {
		return 0
	}
	var sumSq float64
	for _, d := range sorted {
		diff := float64(d - mean)
		sumSq += diff * diff
	}
	return time.Duration(math.Sqrt(sumSq / float64(len(sorted))))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
