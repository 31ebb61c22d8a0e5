//nolint:wrapcheck
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/output"
)

// Corrections smaller than this are not worth listing to a person.
const audibleCorrectionDb = 0.5

func outputAnalysis(filePath string, analysis *tonematch.Analysis, formatName string, raw bool) error {
	var meta map[string]any
	if raw {
		meta = output.AnalysisToMap(analysis)
	} else {
		meta = buildFriendlyAnalysis(analysis)
	}

	return printData(filePath, meta, formatName)
}

func outputMatch(referencePath, inputPath string, result *tonematch.Result, formatName string, raw bool) error {
	var meta map[string]any
	if raw {
		meta = output.ResultToMap(result)
	} else {
		meta = buildFriendlyMatch(result)
	}

	return printData(inputPath+" -> "+referencePath, meta, formatName)
}

func printData(object string, meta map[string]any, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	data := &format.Data{
		Object: object,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

func buildFriendlyAnalysis(analysis *tonematch.Analysis) map[string]any {
	profile := analysis.Profile

	meta := map[string]any{
		"properties": map[string]any{
			"duration":          fmt.Sprintf("%.1f s (%d channels)", analysis.Duration, analysis.Channels),
			"loudness":          fmt.Sprintf("%.1f dB", profile.OverallLoudness),
			"dynamic_range":     fmt.Sprintf("%.1f dB", profile.DynamicRange),
			"spectral_centroid": fmt.Sprintf("%.0f Hz", profile.SpectralCentroid),
			"spectral_rolloff":  fmt.Sprintf("%.0f Hz", profile.SpectralRolloff),
		},
	}

	bands := make([]any, 0, len(profile.Bands))
	for _, band := range profile.Bands {
		bands = append(bands, fmt.Sprintf("%8.1f Hz  %+6.1f dB  (%.0f%% confidence)",
			band.Frequency, band.GainDB, band.Confidence*100))
	}

	meta["bands"] = bands

	if spec := analysis.Spectrum; spec != nil && spec.Diagnostics.Degenerate() {
		d := spec.Diagnostics
		meta["diagnostics"] = fmt.Sprintf(
			"%d of %d frames dropped, %d non-finite samples replaced, zero padded: %t",
			d.FramesDropped, d.FramesAnalyzed, d.NonFiniteSamples, d.ZeroPadded,
		)
	}

	return meta
}

func buildFriendlyMatch(result *tonematch.Result) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("[%s] %s", result.Severity, result.Summary),
		"quality": fmt.Sprintf("%.0f%%", result.QualityScore*100),
	}

	if gain := result.CorrectionProfile.OverallLoudness; math.Abs(gain) >= audibleCorrectionDb {
		meta["loudness"] = fmt.Sprintf("%+.1f dB to match the reference level", gain)
	}

	var corrections []any

	for _, band := range result.CorrectionProfile.Bands {
		if math.Abs(band.GainDB) < audibleCorrectionDb {
			continue
		}

		corrections = append(corrections, fmt.Sprintf("%8.1f Hz  %+5.1f dB  Q %.2f", band.Frequency, band.GainDB, band.Q()))
	}

	if len(corrections) > 0 {
		meta["corrections"] = corrections
	}

	if len(result.Warnings) > 0 {
		warnings := make([]any, 0, len(result.Warnings))
		for _, w := range result.Warnings {
			warnings = append(warnings, w)
		}

		meta["warnings"] = warnings
	}

	return meta
}
