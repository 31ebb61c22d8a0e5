package match

import "math"

type weightPoint struct {
	hz     float64
	weight float64
}

// Approximate equal-loudness sensitivity, normalized to 1 in the 250 Hz - 4 kHz region.
//
//nolint:gochecknoglobals // configuration data, effectively const
var loudnessCurve = []weightPoint{
	{20, 0.4},
	{63, 0.6},
	{250, 1.0},
	{4000, 1.0},
	{8000, 0.85},
	{16000, 0.6},
	{20000, 0.5},
}

// Weight returns the perceptual weight of a correction at hz.
// Values are interpolated on a log-frequency axis and held flat outside the curve.
func Weight(hz float64) float64 {
	first, last := loudnessCurve[0], loudnessCurve[len(loudnessCurve)-1]

	switch {
	case math.IsNaN(hz) || hz <= first.hz:
		return first.weight
	case hz >= last.hz:
		return last.weight
	}

	for i := 1; i < len(loudnessCurve); i++ {
		lo, hi := loudnessCurve[i-1], loudnessCurve[i]
		if hz > hi.hz {
			continue
		}

		t := math.Log(hz/lo.hz) / math.Log(hi.hz/lo.hz)

		return lo.weight + t*(hi.weight-lo.weight)
	}

	return last.weight
}
