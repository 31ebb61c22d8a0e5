package shared_test

import (
	"math"
	"testing"

	"github.com/farcloser/tonematch/internal/analysis/shared"
)

func TestPercentile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"empty", nil, 0.5, 0},
		{"only non-finite", []float64{math.NaN(), math.Inf(1)}, 0.5, 0},
		{"single", []float64{7}, 0.95, 7},
		{"unsorted", []float64{5, 1, 4, 2, 3}, 0.5, 3},
		{"p above one", []float64{1, 2, 3}, 2, 3},
		{"p below zero", []float64{1, 2, 3}, -1, 1},
		{"nan mixed in", []float64{1, math.NaN(), 3, 2}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := shared.Percentile(tt.values, tt.p); got != tt.want {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.values, tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentileSpread(t *testing.T) {
	t.Parallel()

	values := make([]float64, 28)
	for i := range values {
		values[i] = float64(i)
	}

	// (n-1)*p truncated: index 25 and index 2.
	if got := shared.PercentileSpread(values, 0.10, 0.95); got != 23 {
		t.Errorf("spread = %v, want 23", got)
	}

	if got := shared.PercentileSpread(nil, 0.10, 0.95); got != 0 {
		t.Errorf("empty spread = %v, want 0", got)
	}
}

func TestDbConversions(t *testing.T) {
	t.Parallel()

	if got := shared.AmplitudeToDb(1); got != 0 {
		t.Errorf("AmplitudeToDb(1) = %v", got)
	}

	if got := shared.PowerToDb(100); math.Abs(got-20) > 1e-12 {
		t.Errorf("PowerToDb(100) = %v", got)
	}

	for _, v := range []float64{0, -1, math.NaN(), math.Inf(-1), 1e-30} {
		if got := shared.AmplitudeToDb(v); got != shared.FloorDb {
			t.Errorf("AmplitudeToDb(%v) = %v, want floor", v, got)
		}
	}

	if got := shared.DbToPower(math.NaN()); got != 0 {
		t.Errorf("DbToPower(NaN) = %v", got)
	}

	if got := shared.DbToAmplitude(-6); math.Abs(got-0.501187) > 1e-6 {
		t.Errorf("DbToAmplitude(-6) = %v", got)
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	if got := shared.Clamp(math.NaN(), -1, 1); got != -1 {
		t.Errorf("Clamp(NaN) = %v, want lower bound", got)
	}

	if got := shared.Clamp(math.Inf(1), -1, 1); got != 1 {
		t.Errorf("Clamp(+Inf) = %v", got)
	}

	if got := shared.FiniteOr(math.Inf(-1), 3); got != 3 {
		t.Errorf("FiniteOr(-Inf) = %v", got)
	}
}
