//nolint:wrapcheck
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
)

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Extract the tonal profile of an audio file",
		ArgsUsage: "<file>",
		Flags: append(analysisFlags(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Save the profile as JSON, for later use as a match reference",
			},
			formatFlag(),
			rawFlag(),
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errAnalyzeArgs, cmd.NArg())
			}

			opts, err := parseAnalysisOptions(cmd)
			if err != nil {
				return err
			}

			filePath := cmd.Args().First()

			analysis, err := tonematch.AnalyzeFile(ctx, filePath, opts)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if out := cmd.String("output"); out != "" {
				if err = writeAnalysis(out, analysis); err != nil {
					return fmt.Errorf("saving profile: %w", err)
				}
			}

			return outputAnalysis(filePath, analysis, cmd.String("format"), cmd.Bool("raw"))
		},
	}
}
