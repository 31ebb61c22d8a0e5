//nolint:wrapcheck
package tonematch

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/farcloser/tonematch/internal/analysis/match"
	"github.com/farcloser/tonematch/internal/analysis/profile"
	"github.com/farcloser/tonematch/internal/analysis/spectrum"
	"github.com/farcloser/tonematch/internal/audio"
)

/*
Usage:

ref, err := tonematch.AnalyzeFile(ctx, "reference.flac", tonematch.DefaultAnalysisOptions())
in, err := tonematch.AnalyzeFile(ctx, "mix.wav", tonematch.DefaultAnalysisOptions())

result, err := tonematch.Match(ref.Profile, in.Profile, tonematch.DefaultMatchConfig())
fmt.Printf("[%s] %s\n", result.Severity, result.Summary)

// Preset-driven
cfg := tonematch.ConfigForPreset(tonematch.PresetGentle)
result, err := tonematch.Match(ref.Profile, in.Profile, cfg)

// Per-band corrections
for _, band := range result.CorrectionProfile.Bands {
    fmt.Printf("%8.1f Hz  %+5.1f dB\n", band.Frequency, band.GainDB)
}

*/

// AnalyzeSamples computes the spectrum and profile of a mono buffer.
// Samples are resampled to the target rate first so that every profile shares one resolution.
func AnalyzeSamples(samples []float64, sampleRate int, opts AnalysisOptions) (*Analysis, error) {
	applyDefaults(&opts)

	duration := 0.0
	if sampleRate > 0 {
		duration = float64(len(samples)) / float64(sampleRate)
	}

	resampled, err := audio.Resample(samples, sampleRate, opts.TargetSampleRate)
	if err != nil {
		return nil, err
	}

	spec, err := spectrum.Analyze(resampled, opts.TargetSampleRate, spectrum.Options{
		FFTSize:   opts.FFTSize,
		Overlap:   opts.Overlap,
		Window:    opts.Window,
		MaxFrames: opts.MaxFrames,
	})
	if err != nil {
		return nil, err
	}

	if spec.Diagnostics.Degenerate() {
		slog.Debug("tonematch.AnalyzeSamples", "stage", "degenerate input", "diagnostics", spec.Diagnostics)
	}

	return &Analysis{
		Profile:  profile.Extract(spec, profile.DefaultOptions()),
		Spectrum: spec,
		Duration: duration,
		Channels: 1,
	}, nil
}

// AnalyzeFile loads, resamples and analyzes an audio file.
func AnalyzeFile(ctx context.Context, path string, opts AnalysisOptions) (*Analysis, error) {
	samples, err := audio.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	analysis, err := AnalyzeSamples(samples.Samples, samples.SampleRate, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	analysis.Source = path
	analysis.Channels = samples.Channels

	slog.Debug("tonematch.AnalyzeFile", "file path", path, "duration", analysis.Duration,
		"frames", analysis.Spectrum.Diagnostics.FramesAnalyzed)

	return analysis, nil
}

// Match computes the correction that moves input toward reference, and grades it.
func Match(reference, input *EQProfile, cfg MatchConfig) (*Result, error) {
	res, err := match.Match(reference, input, cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{MatchResult: res}
	interpretResult(result, DefaultDeviationBands)

	return result, nil
}

func applyDefaults(opts *AnalysisOptions) {
	defaults := DefaultAnalysisOptions()

	if opts.FFTSize == 0 {
		opts.FFTSize = defaults.FFTSize
	}

	if opts.Overlap == 0 {
		opts.Overlap = defaults.Overlap
	}

	if opts.TargetSampleRate == 0 {
		opts.TargetSampleRate = defaults.TargetSampleRate
	}
}

func interpretResult(result *Result, bands Bands) {
	corrections := result.Corrections()

	var sum float64

	for i, c := range corrections {
		abs := math.Abs(c)
		sum += abs

		if abs > result.PeakCorrection {
			result.PeakCorrection = abs
			result.PeakFrequency = result.CorrectionProfile.Bands[i].Frequency
		}
	}

	if len(corrections) > 0 {
		result.MeanCorrection = sum / float64(len(corrections))
	}

	severity, detected := bands.Match(result.MeanCorrection)
	result.Severity = severity

	switch {
	case !detected:
		result.Summary = fmt.Sprintf("Close match: mean correction %.1f dB", result.MeanCorrection)
	case severity == SeveritySevere:
		result.Summary = fmt.Sprintf(
			"Large tonal difference: mean correction %.1f dB, peak %+.1f dB at %.0f Hz, %d warnings",
			result.MeanCorrection,
			peakSigned(result),
			result.PeakFrequency,
			len(result.Warnings),
		)
	default:
		result.Summary = fmt.Sprintf(
			"Mean correction %.1f dB, peak %+.1f dB at %.0f Hz",
			result.MeanCorrection,
			peakSigned(result),
			result.PeakFrequency,
		)
	}
}

func peakSigned(result *Result) float64 {
	for _, band := range result.CorrectionProfile.Bands {
		if band.Frequency == result.PeakFrequency {
			return band.GainDB
		}
	}

	return 0
}
