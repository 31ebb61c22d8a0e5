package audio

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-dsp/dsp/resample"
)

var ErrInvalidRate = errors.New("sample rate must be positive")

// Resample converts samples from one rate to another with the highest quality filter.
// Same-rate input is returned unchanged.
func Resample(samples []float64, from, to int) ([]float64, error) {
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, from, to)
	}

	if from == to || len(samples) == 0 {
		return samples, nil
	}

	slog.Debug("audio.Resample", "from", from, "to", to, "samples", len(samples))

	r, err := resample.NewForRates(float64(from), float64(to), resample.WithQuality(resample.QualityBest))
	if err != nil {
		return nil, fmt.Errorf("resampling %d -> %d Hz: %w", from, to, err)
	}

	return r.Process(samples), nil
}
