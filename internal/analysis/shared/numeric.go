// Package shared holds the numeric guards every analysis stage relies on.
// Each helper tolerates NaN, Inf and empty input and resolves to a defined value.
package shared

import (
	"math"
	"slices"
)

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Finite returns a copy of values with every NaN and Inf removed.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))

	for _, v := range values {
		if IsFinite(v) {
			out = append(out, v)
		}
	}

	return out
}

// FiniteOr returns v, or fallback when v is not finite.
func FiniteOr(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}

	return fallback
}

// Clamp limits v to [lo, hi]. NaN resolves to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// Percentile returns the p-th percentile (0.0-1.0) of the finite values.
// The index is (n-1)*p clamped to [0, n-1], so small inputs never index out of range.
// Returns 0 when no finite value exists.
func Percentile(values []float64, p float64) float64 {
	sorted := Finite(values)
	if len(sorted) == 0 {
		return 0
	}

	slices.Sort(sorted)

	return percentileSorted(sorted, p)
}

// PercentileSpread returns Percentile(high) - Percentile(low) with a single sort.
func PercentileSpread(values []float64, low, high float64) float64 {
	sorted := Finite(values)
	if len(sorted) == 0 {
		return 0
	}

	slices.Sort(sorted)

	return percentileSorted(sorted, high) - percentileSorted(sorted, low)
}

func percentileSorted(sorted []float64, p float64) float64 {
	last := len(sorted) - 1
	idx := int(float64(last) * Clamp(p, 0, 1))
	idx = max(0, min(idx, last))

	return sorted[idx]
}

// PowerToDb converts a power ratio to dB, floored at FloorDb.
func PowerToDb(power float64) float64 {
	if !IsFinite(power) || power <= 0 {
		return FloorDb
	}

	return max(10*math.Log10(power), FloorDb)
}

// AmplitudeToDb converts a linear amplitude to dB, floored at FloorDb.
func AmplitudeToDb(amplitude float64) float64 {
	if !IsFinite(amplitude) || amplitude <= 0 {
		return FloorDb
	}

	return max(20*math.Log10(amplitude), FloorDb)
}

// DbToPower converts dB to a power ratio. Non-finite input maps to 0.
func DbToPower(db float64) float64 {
	if !IsFinite(db) {
		return 0
	}

	return math.Pow(10, db/10)
}

// DbToAmplitude converts dB to a linear amplitude. Non-finite input maps to 0.
func DbToAmplitude(db float64) float64 {
	if !IsFinite(db) {
		return 0
	}

	return math.Pow(10, db/20)
}
