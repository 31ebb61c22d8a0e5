// Package match computes the per-band correction that moves one tonal profile toward another.
package match

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/farcloser/tonematch/internal/analysis/shared"
	"github.com/farcloser/tonematch/internal/types"
)

var (
	ErrInvalidProfile     = errors.New("invalid profile")
	ErrBandLayoutMismatch = errors.New("band layout mismatch")
)

const (
	smoothingPasses     = 3 // mean passes at full smoothing
	maxPasses           = 64
	passTailMass        = 1e-12
	centerTolerance     = 0.01 // relative
	maxSlopeDbPerOctave = 6.0
	maxAggregateDb      = 30.0
	dynamicFloorRatio   = 0.8
	residualScaleDb     = 3.0
	warningPenalty      = 0.95
	bisectIterations    = 40
	spreadLow           = 0.10
	spreadHigh          = 0.95
)

// DefaultConfig is the balanced configuration.
func DefaultConfig() types.MatchConfig {
	return types.MatchConfig{
		Intensity:         0.7,
		MaxCorrection:     6,
		SmoothingFactor:   0.5,
		UsePsychoacoustic: true,
		PreserveDynamics:  true,
	}
}

// Match computes the correction that moves input toward reference.
// Only structural problems with the profiles are errors; everything else is reported as a warning.
// Sanitation notes about the config or the profiles are reported but do not lower the quality score.
func Match(reference, input *types.EQProfile, cfg types.MatchConfig) (*types.MatchResult, error) {
	if err := validate(reference, input); err != nil {
		return nil, err
	}

	var (
		warnings   []string
		corrective int
	)

	note := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	warn := func(format string, args ...any) {
		note(format, args...)
		corrective++
	}

	cfg = sanitizeConfig(cfg, note)

	count := len(reference.Bands)
	refGains := make([]float64, count)
	inGains := make([]float64, count)
	raw := make([]float64, count)
	naive := make([]float64, count)
	confidence := make([]float64, count)

	for i := range count {
		refBand, inBand := reference.Bands[i], input.Bands[i]

		refGains[i] = sanitizeGain(refBand, "reference", note)
		inGains[i] = sanitizeGain(inBand, "input", note)
		raw[i] = refGains[i] - inGains[i]

		naive[i] = raw[i] * cfg.Intensity
		if cfg.UsePsychoacoustic {
			naive[i] *= Weight(inBand.Frequency)
		}

		confidence[i] = math.Min(shared.Clamp(refBand.Confidence, 0, 1), shared.Clamp(inBand.Confidence, 0, 1))
	}

	kernel := smoothingKernel(count, cfg.SmoothingFactor)

	// The unlimited curve is what the match asks for; the residual against it scores the match.
	requested := shape(naive, confidence, kernel)

	limited := make([]float64, count)

	for i, v := range naive {
		limited[i] = shared.Clamp(v, -cfg.MaxCorrection, cfg.MaxCorrection)

		if limited[i] != v && confidence[i] > 0 {
			warn("band %s: requested correction %+.1f dB limited to ±%.1f dB",
				bandLabel(input.Bands[i].Frequency), v, cfg.MaxCorrection)
		}
	}

	inputDR := shared.FiniteOr(input.DynamicRange, 0)
	referenceDR := shared.FiniteOr(reference.DynamicRange, 0)
	scale := 1.0

	if cfg.PreserveDynamics {
		floor := math.Min(dynamicFloorRatio*referenceDR, inputDR)

		if estimated := estimateDynamicRange(inGains, limited, 1, inputDR); estimated < floor && estimated < inputDR {
			scale = preserveScale(inGains, limited, inputDR, floor)

			warn("dynamic range: correction scaled to %.0f%% to keep dynamic range above %.1f dB", scale*100, floor)
		}
	}

	corrections := shape(limited, confidence, kernel)
	for i := range corrections {
		corrections[i] *= scale
	}

	for i := 1; i < count; i++ {
		lo, hi := input.Bands[i-1].Frequency, input.Bands[i].Frequency
		if lo <= 0 || hi <= lo {
			continue
		}

		slope := math.Abs(corrections[i]-corrections[i-1]) / math.Log2(hi/lo)
		if slope > maxSlopeDbPerOctave {
			warn("bands %s and %s: correction slope %.1f dB/octave exceeds %.0f dB/octave",
				bandLabel(lo), bandLabel(hi), slope, maxSlopeDbPerOctave)
		}
	}

	var total float64
	for _, c := range corrections {
		total += math.Abs(c)
	}

	if total > maxAggregateDb {
		warn("aggregate correction %.1f dB exceeds %.0f dB, consider a lower intensity", total, maxAggregateDb)
	}

	result := &types.MatchResult{
		CorrectionProfile: types.EQProfile{
			Bands:            make([]types.FrequencyBand, count),
			OverallLoudness:  shared.FiniteOr(reference.OverallLoudness, 0) - shared.FiniteOr(input.OverallLoudness, 0),
			DynamicRange:     estimateDynamicRange(inGains, corrections, 1, inputDR),
			SpectralCentroid: shared.FiniteOr(input.SpectralCentroid, 0),
			SpectralRolloff:  shared.FiniteOr(input.SpectralRolloff, 0),
		},
		ReferenceNormalized: refGains,
		InputNormalized:     inGains,
		Warnings:            warnings,
	}

	for i, band := range input.Bands {
		result.CorrectionProfile.Bands[i] = types.FrequencyBand{
			Frequency:  band.Frequency,
			GainDB:     corrections[i],
			Bandwidth:  shared.FiniteOr(band.Bandwidth, 0),
			Confidence: confidence[i],
		}
	}

	result.QualityScore = quality(raw, requested, corrective)

	return result, nil
}

func validate(reference, input *types.EQProfile) error {
	if reference == nil || input == nil {
		return fmt.Errorf("%w: missing profile", ErrInvalidProfile)
	}

	if len(reference.Bands) != len(input.Bands) {
		return fmt.Errorf("%w: %d reference bands, %d input bands",
			ErrBandLayoutMismatch, len(reference.Bands), len(input.Bands))
	}

	for i := range reference.Bands {
		rf, in := reference.Bands[i].Frequency, input.Bands[i].Frequency

		if !shared.IsFinite(rf) || !shared.IsFinite(in) || rf <= 0 || in <= 0 {
			return fmt.Errorf("%w: band %d has no usable center frequency", ErrInvalidProfile, i)
		}

		if math.Abs(rf-in) > centerTolerance*math.Max(rf, in) {
			return fmt.Errorf("%w: band %d centered at %s in reference, %s in input",
				ErrBandLayoutMismatch, i, bandLabel(rf), bandLabel(in))
		}
	}

	return nil
}

func sanitizeConfig(cfg types.MatchConfig, warn func(string, ...any)) types.MatchConfig {
	defaults := DefaultConfig()

	cfg.Intensity = sanitizeField("intensity", cfg.Intensity, defaults.Intensity, 0, 1, warn)

	// +Inf leaves the correction unbounded.
	if !math.IsInf(cfg.MaxCorrection, 1) {
		cfg.MaxCorrection = sanitizeField("max correction", cfg.MaxCorrection, defaults.MaxCorrection, 0, math.MaxFloat64, warn)
	}

	cfg.SmoothingFactor = sanitizeField("smoothing factor", cfg.SmoothingFactor, defaults.SmoothingFactor, 0, 1, warn)

	return cfg
}

func sanitizeField(name string, value, fallback, lo, hi float64, warn func(string, ...any)) float64 {
	if math.IsNaN(value) {
		return fallback
	}

	if math.IsInf(value, 0) {
		warn("%s %v is not finite, using %g", name, value, fallback)

		return fallback
	}

	if value < lo || value > hi {
		clamped := shared.Clamp(value, lo, hi)
		warn("%s %g out of range, clamped to %g", name, value, clamped)

		return clamped
	}

	return value
}

func sanitizeGain(band types.FrequencyBand, side string, warn func(string, ...any)) float64 {
	if shared.IsFinite(band.GainDB) {
		return band.GainDB
	}

	warn("band %s: non-finite %s gain treated as 0 dB", bandLabel(band.Frequency), side)

	return 0
}

// Smooth diffuses values along the band axis with mirrored edges. The number of
// [1/4, 1/2, 1/4] passes is Poisson distributed with mean 3*factor, which makes
// Smooth(Smooth(v, a), b) equal Smooth(v, a+b) for a+b <= 1: a larger factor never
// widens the largest step between adjacent values. Fewer than three values are returned as is.
func Smooth(values []float64, factor float64) []float64 {
	out := make([]float64, len(values))

	if len(values) < 3 || !(factor > 0) {
		copy(out, values)

		return out
	}

	mean := smoothingPasses * math.Min(factor, 1)
	weight := math.Exp(-mean)
	last := len(values) - 1

	pass := make([]float64, len(values))
	next := make([]float64, len(values))
	copy(pass, values)

	var total float64

	for n := range maxPasses {
		for i, v := range pass {
			out[i] += weight * v
		}

		total += weight
		if 1-total < passTailMass {
			break
		}

		for i := range pass {
			next[i] = (pass[max(i-1, 0)] + 2*pass[i] + pass[min(i+1, last)]) / 4
		}

		pass, next = next, pass
		weight *= mean / float64(n+1)
	}

	// Renormalizing keeps every output a convex blend of the inputs.
	for i := range out {
		out[i] /= total
	}

	return out
}

// smoothingKernel returns k with k[i][j] the weight of value j in smoothed value i.
func smoothingKernel(count int, factor float64) [][]float64 {
	kernel := make([][]float64, count)
	for i := range kernel {
		kernel[i] = make([]float64, count)
	}

	impulse := make([]float64, count)

	for j := range count {
		impulse[j] = 1

		for i, w := range Smooth(impulse, factor) {
			kernel[i][j] = w
		}

		impulse[j] = 0
	}

	return kernel
}

// shape smooths values and applies band confidence. Band i blends its own value at
// full weight with its neighbors weighted by their confidence relative to the most
// confident other band, then scales the blend by its own confidence. Its result is
// therefore proportional to its confidence, and a uniformly confident curve is
// smoothed by the kernel unchanged.
func shape(values, confidence []float64, kernel [][]float64) []float64 {
	count := len(values)
	out := make([]float64, count)

	top, second, best := 0.0, 0.0, -1

	for i, c := range confidence {
		switch {
		case c > top:
			top, second, best = c, top, i
		case c > second:
			second = c
		}
	}

	for i := range count {
		others := top
		if i == best {
			others = second
		}

		var blend float64

		for j, w := range kernel[i] {
			switch {
			case j == i:
				blend += w * values[j]
			case w != 0 && others > 0:
				blend += w * values[j] * (confidence[j] / others)
			}
		}

		out[i] = confidence[i] * blend
	}

	return out
}

// estimateDynamicRange predicts the input dynamic range after applying k*corrections,
// from the change in spread of the band gains.
func estimateDynamicRange(gains, corrections []float64, k, inputDR float64) float64 {
	shifted := make([]float64, len(gains))
	for i := range gains {
		shifted[i] = gains[i] + k*corrections[i]
	}

	return inputDR + shared.PercentileSpread(shifted, spreadLow, spreadHigh) -
		shared.PercentileSpread(gains, spreadLow, spreadHigh)
}

// preserveScale finds the largest k in [0, 1] keeping the estimated dynamic range at floor.
func preserveScale(gains, corrections []float64, inputDR, floor float64) float64 {
	lo, hi := 0.0, 1.0

	for range bisectIterations {
		mid := (lo + hi) / 2
		if estimateDynamicRange(gains, corrections, mid, inputDR) >= floor {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo
}

func quality(raw, requested []float64, warnings int) float64 {
	var residual float64

	if len(raw) > 0 {
		for i := range raw {
			residual += math.Abs(raw[i] - requested[i])
		}

		residual /= float64(len(raw))
	}

	score := 1 / (1 + residual/residualScaleDb) * math.Pow(warningPenalty, float64(warnings))

	return shared.Clamp(score, 0, 1)
}

func bandLabel(hz float64) string {
	return strconv.FormatFloat(hz, 'f', -1, 64) + " Hz"
}
