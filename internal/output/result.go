// Package output provides shared result serialization for tonematch JSON output.
package output

import (
	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/types"
)

// AnalysisToMap converts an analysis into the canonical map structure
// used for JSON and JSONL serialization.
func AnalysisToMap(analysis *tonematch.Analysis) map[string]any {
	meta := map[string]any{
		"duration": analysis.Duration,
		"channels": analysis.Channels,
		"profile":  ProfileToMap(analysis.Profile),
	}

	if spec := analysis.Spectrum; spec != nil {
		meta["spectrum"] = DiagnosticsToMap(spec)
	}

	return meta
}

// ProfileToMap converts a profile into its canonical map structure.
func ProfileToMap(profile *types.EQProfile) map[string]any {
	if profile == nil {
		return nil
	}

	return map[string]any{
		"overall_loudness":  profile.OverallLoudness,
		"dynamic_range":     profile.DynamicRange,
		"spectral_centroid": profile.SpectralCentroid,
		"spectral_rolloff":  profile.SpectralRolloff,
		"bands":             BandsToList(profile.Bands),
	}
}

// BandsToList converts bands into a list of maps, in band order.
func BandsToList(bands []types.FrequencyBand) []any {
	list := make([]any, 0, len(bands))

	for _, band := range bands {
		list = append(list, map[string]any{
			"frequency":  band.Frequency,
			"gain_db":    band.GainDB,
			"bandwidth":  band.Bandwidth,
			"confidence": band.Confidence,
		})
	}

	return list
}

// DiagnosticsToMap converts spectrum metadata and diagnostics, leaving out the bins themselves.
func DiagnosticsToMap(spec *types.FrequencySpectrum) map[string]any {
	d := spec.Diagnostics

	return map[string]any{
		"sample_rate":        spec.SampleRate,
		"fft_size":           spec.FFTSize,
		"bins":               spec.Len(),
		"frames_analyzed":    d.FramesAnalyzed,
		"frames_dropped":     d.FramesDropped,
		"silent_frames":      d.SilentFrames,
		"non_finite_samples": d.NonFiniteSamples,
		"zero_padded":        d.ZeroPadded,
	}
}

// ResultToMap converts a match result into the canonical map structure
// used for JSON and JSONL serialization.
func ResultToMap(result *tonematch.Result) map[string]any {
	warnings := make([]any, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, w)
	}

	return map[string]any{
		"summary": map[string]any{
			"severity":        result.Severity.String(),
			"summary":         result.Summary,
			"quality_score":   result.QualityScore,
			"mean_correction": result.MeanCorrection,
			"peak_correction": result.PeakCorrection,
			"peak_frequency":  result.PeakFrequency,
		},
		"warnings":             warnings,
		"correction_profile":   ProfileToMap(&result.CorrectionProfile),
		"reference_normalized": result.ReferenceNormalized,
		"input_normalized":     result.InputNormalized,
	}
}
