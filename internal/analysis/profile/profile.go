// Package profile reduces a magnitude spectrum to a third-octave tonal profile.
package profile

import (
	"math"

	"github.com/cwbudde/algo-dsp/stats/frequency"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/tonematch/internal/analysis/shared"
	"github.com/farcloser/tonematch/internal/types"
)

const (
	rolloffFraction = 0.85
	drLow           = 0.10
	drHigh          = 0.95
	fullSupportBins = 3.0
	// Support granted when a band is narrower than one bin and borrows its nearest neighbor.
	nearestBinSupport = 1.0
)

// Options selects the band layout. Centers must be ascending.
type Options struct {
	Centers []float64
}

func DefaultOptions() Options {
	return Options{Centers: shared.ThirdOctaveCenters}
}

// Edges returns the lower and upper third-octave edges around fc.
func Edges(fc float64) (float64, float64) {
	ratio := math.Pow(2, 1.0/6)

	return fc / ratio, fc * ratio
}

type bandLevel struct {
	level      float64 // dB
	confidence float64
}

// Extract builds the profile of a spectrum. It never fails: bands without data
// come out at gain 0 with confidence 0 and empty statistics resolve to 0.
func Extract(spectrum *types.FrequencySpectrum, opts Options) *types.EQProfile {
	if len(opts.Centers) == 0 {
		opts = DefaultOptions()
	}

	profile := &types.EQProfile{
		Bands: make([]types.FrequencyBand, len(opts.Centers)),
	}

	n := spectrum.Len()

	var freqs, mags []float64
	if n > 0 {
		freqs = spectrum.Frequencies[:n]
		mags = spectrum.Magnitudes[:n]
	}

	levels := make([]bandLevel, len(opts.Centers))

	for i, fc := range opts.Centers {
		lower, upper := Edges(fc)
		profile.Bands[i] = types.FrequencyBand{
			Frequency: fc,
			Bandwidth: upper - lower,
		}
		levels[i] = measureBand(freqs, mags, fc, lower, upper)
	}

	// Normalize against the mean level of the bands that carry information.
	var (
		sum   float64
		count int
	)

	for _, l := range levels {
		if l.confidence > 0 {
			sum += l.level
			count++
		}
	}

	if count > 0 {
		mean := sum / float64(count)

		for i, l := range levels {
			if l.confidence > 0 {
				profile.Bands[i].GainDB = l.level - mean
				profile.Bands[i].Confidence = l.confidence
			}
		}
	}

	profile.OverallLoudness = loudness(mags)
	profile.DynamicRange = shared.PercentileSpread(audible(mags), drLow, drHigh)

	if n >= 2 && spectrum.SampleRate > 0 {
		amplitude := make([]float64, n)
		power := make([]float64, n)

		for i, m := range mags {
			if valid(m) {
				amplitude[i] = shared.DbToAmplitude(m)
				power[i] = shared.DbToPower(m)
			}
		}

		rate := float64(spectrum.SampleRate)
		profile.SpectralCentroid = shared.FiniteOr(frequency.Centroid(power, rate), 0)
		profile.SpectralRolloff = shared.FiniteOr(frequency.Rolloff(amplitude, rate, rolloffFraction), 0)
	}

	return profile
}

func valid(db float64) bool {
	return shared.IsFinite(db) && db > shared.SilenceFloorDb
}

// audible keeps the bins that carry energy.
func audible(mags []float64) []float64 {
	out := make([]float64, 0, len(mags))

	for _, m := range mags {
		if valid(m) {
			out = append(out, m)
		}
	}

	return out
}

// measureBand returns the energy-mean level of a band and how much it can be trusted.
func measureBand(freqs, mags []float64, fc, lower, upper float64) bandLevel {
	var (
		powers []float64
		total  int
	)

	for i, f := range freqs {
		if f < lower {
			continue
		}

		if f >= upper {
			break
		}

		total++

		if valid(mags[i]) {
			powers = append(powers, shared.DbToPower(mags[i]))
		}
	}

	if total == 0 {
		return nearestBand(freqs, mags, fc)
	}

	if len(powers) == 0 {
		return bandLevel{}
	}

	level := shared.PowerToDb(stat.Mean(powers, nil))
	coverage := float64(len(powers)) / float64(total)
	support := math.Min(1, float64(len(powers))/fullSupportBins)

	return bandLevel{
		level:      level,
		confidence: shared.Clamp(coverage*support*energyRamp(level), 0, 1),
	}
}

// nearestBand covers bands narrower than the bin spacing with the closest bin.
func nearestBand(freqs, mags []float64, fc float64) bandLevel {
	if len(freqs) == 0 || fc > freqs[len(freqs)-1] {
		return bandLevel{}
	}

	best := -1
	bestDist := math.Inf(1)

	for i, f := range freqs {
		if d := math.Abs(f - fc); d < bestDist {
			best, bestDist = i, d
		}
	}

	if best < 0 || !valid(mags[best]) {
		return bandLevel{}
	}

	level := mags[best]

	return bandLevel{
		level:      level,
		confidence: shared.Clamp(nearestBinSupport/fullSupportBins*energyRamp(level), 0, 1),
	}
}

// energyRamp is 0 at the silence floor and 1 from FullConfidentDb up.
func energyRamp(db float64) float64 {
	return shared.Clamp((db-shared.SilenceFloorDb)/(shared.FullConfidentDb-shared.SilenceFloorDb), 0, 1)
}

func loudness(mags []float64) float64 {
	var powers []float64

	for _, m := range mags {
		if valid(m) {
			powers = append(powers, shared.DbToPower(m))
		}
	}

	if len(powers) == 0 {
		return 0
	}

	return shared.PowerToDb(stat.Mean(powers, nil))
}
