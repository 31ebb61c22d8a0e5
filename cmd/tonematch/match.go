//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/export"
)

func matchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "preset",
			Aliases: []string{"p"},
			Usage:   "Matching preset: balanced, gentle, aggressive",
			Value:   "balanced",
		},
		&cli.FloatFlag{
			Name:  "intensity",
			Usage: "Fraction of the difference to correct (0 to 1, overrides the preset)",
		},
		&cli.FloatFlag{
			Name:  "max-correction",
			Usage: "Largest per-band correction in dB (overrides the preset)",
		},
		&cli.FloatFlag{
			Name:  "smoothing",
			Usage: "Smoothing across neighboring bands (0 to 1, overrides the preset)",
		},
		&cli.BoolFlag{
			Name:  "no-psychoacoustic",
			Usage: "Disable equal-loudness weighting of corrections",
		},
		&cli.BoolFlag{
			Name:  "no-preserve-dynamics",
			Usage: "Allow corrections that flatten the input's dynamics",
		},
	}
}

func matchCommand() *cli.Command {
	flags := append(analysisFlags(), matchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"e"},
			Usage:   "Write the correction to this file",
		},
		&cli.StringFlag{
			Name:  "export-format",
			Usage: "Export format: text, json, parametric (default: from the export file extension)",
		},
		formatFlag(),
		rawFlag(),
	)

	return &cli.Command{
		Name:      "match",
		Usage:     "Compute the EQ correction that moves an input toward a reference",
		ArgsUsage: "<reference> <input>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return fmt.Errorf("%w: got %d", errMatchArgs, cmd.NArg())
			}

			opts, err := parseAnalysisOptions(cmd)
			if err != nil {
				return err
			}

			cfg, err := parseMatchConfig(cmd)
			if err != nil {
				return err
			}

			reference, err := loadAnalysis(ctx, cmd.Args().Get(0), opts)
			if err != nil {
				return fmt.Errorf("reference: %w", err)
			}

			input, err := loadAnalysis(ctx, cmd.Args().Get(1), opts)
			if err != nil {
				return fmt.Errorf("input: %w", err)
			}

			result, err := tonematch.Match(reference.Profile, input.Profile, cfg)
			if err != nil {
				return fmt.Errorf("matching failed: %w", err)
			}

			if path := cmd.String("export"); path != "" {
				if err = exportResult(path, cmd.String("export-format"), result.MatchResult); err != nil {
					return err
				}
			}

			return outputMatch(reference.Source, input.Source, result, cmd.String("format"), cmd.Bool("raw"))
		},
	}
}

func parseMatchConfig(cmd *cli.Command) (tonematch.MatchConfig, error) {
	preset, err := tonematch.ParsePreset(cmd.String("preset"))
	if err != nil {
		return tonematch.MatchConfig{}, err
	}

	cfg := tonematch.ConfigForPreset(preset)

	if cmd.IsSet("intensity") {
		cfg.Intensity = cmd.Float("intensity")
	}

	if cmd.IsSet("max-correction") {
		cfg.MaxCorrection = cmd.Float("max-correction")
	}

	if cmd.IsSet("smoothing") {
		cfg.SmoothingFactor = cmd.Float("smoothing")
	}

	if cmd.Bool("no-psychoacoustic") {
		cfg.UsePsychoacoustic = false
	}

	if cmd.Bool("no-preserve-dynamics") {
		cfg.PreserveDynamics = false
	}

	return cfg, nil
}

func exportResult(path, formatName string, result *tonematch.MatchResult) error {
	format := export.FormatFromPath(path)

	if formatName != "" {
		var err error
		if format, err = export.ParseFormat(formatName); err != nil {
			return err
		}
	}

	file, err := os.Create(path) //nolint:gosec // CLI tool writes user-specified export files
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer file.Close()

	if err = export.Write(file, format, result); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}

	return file.Close()
}
