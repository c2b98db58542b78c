// Package score implements the finite non-negative floating-point score
// used to rank search frontiers, grounded on original_source/src/score.rs.
package score

import "math"

// Score is a finite, non-negative heuristic estimate. The zero value is
// the default score: Of maps invalid inputs to it.
type Score float64

// Of constructs a Score, clamping away NaN and negative values so the
// total order spec.md §3 requires always holds.
func Of(v float64) Score {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return Score(v)
}

// Less reports whether s sorts before other under the total order.
func (s Score) Less(other Score) bool { return s < other }

// Min returns the smaller of a and b.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}

// Mean returns the arithmetic mean of ss, or 0 for an empty slice.
func Mean(ss []Score) Score {
	if len(ss) == 0 {
		return 0
	}
	var sum Score
	for _, s := range ss {
		sum += s
	}
	return sum / Score(len(ss))
}
