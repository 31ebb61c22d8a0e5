//nolint:wrapcheck
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/analysis/spectrum"
)

// analysisFlags are shared by every command that analyzes audio.
func analysisFlags() []cli.Flag {
	defaults := tonematch.DefaultAnalysisOptions()

	return []cli.Flag{
		&cli.IntFlag{
			Name:  "fft-size",
			Usage: "Analysis frame length in samples",
			Value: defaults.FFTSize,
		},
		&cli.FloatFlag{
			Name:  "overlap",
			Usage: "Fraction of each frame shared with the next (0 to 0.95)",
			Value: defaults.Overlap,
		},
		&cli.StringFlag{
			Name:  "window",
			Usage: "Analysis window: blackman-harris, blackman, hann, hamming, flat-top, rectangular",
			Value: "blackman-harris",
		},
		&cli.IntFlag{
			Name:  "sample-rate",
			Usage: "Rate audio is resampled to before analysis, in Hz",
			Value: defaults.TargetSampleRate,
		},
		&cli.IntFlag{
			Name:  "max-frames",
			Usage: "Analyze at most this many evenly spaced frames (0 = all)",
		},
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: console, json, markdown",
		Value:   "console",
	}
}

func rawFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "raw",
		Usage: "Include all raw analysis data in output",
	}
}

func parseAnalysisOptions(cmd *cli.Command) (tonematch.AnalysisOptions, error) {
	win, err := spectrum.ParseWindow(cmd.String("window"))
	if err != nil {
		return tonematch.AnalysisOptions{}, fmt.Errorf("--window: %w", err)
	}

	return tonematch.AnalysisOptions{
		FFTSize:          cmd.Int("fft-size"),
		Overlap:          cmd.Float("overlap"),
		Window:           win,
		MaxFrames:        cmd.Int("max-frames"),
		TargetSampleRate: cmd.Int("sample-rate"),
	}, nil
}

// loadAnalysis analyzes an audio file, or reads a profile previously saved with analyze --output.
func loadAnalysis(ctx context.Context, path string, opts tonematch.AnalysisOptions) (*tonematch.Analysis, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return tonematch.AnalyzeFile(ctx, path, opts)
	}

	data, err := os.ReadFile(path) //nolint:gosec // CLI tool opens user-specified profile files
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var analysis tonematch.Analysis
	if err = json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("%s: decoding profile: %w", path, err)
	}

	// A bare profile, without the analysis envelope.
	if analysis.Profile == nil {
		var profile tonematch.EQProfile
		if err = json.Unmarshal(data, &profile); err != nil || len(profile.Bands) == 0 {
			return nil, fmt.Errorf("%s: %w", path, errNoProfile)
		}

		analysis.Profile = &profile
	}

	if analysis.Source == "" {
		analysis.Source = path
	}

	return &analysis, nil
}

func writeAnalysis(path string, analysis *tonematch.Analysis) error {
	saved := *analysis
	saved.Spectrum = nil

	data, err := json.MarshalIndent(&saved, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append(data, '\n'), 0o644) //nolint:gosec // profiles are not sensitive
}
