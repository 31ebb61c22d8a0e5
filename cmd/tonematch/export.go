//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch/internal/export"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Convert a saved JSON match result into another export format",
		ArgsUsage: "<result.json>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "to",
				Aliases: []string{"t"},
				Usage:   "Export format: text, json, parametric",
				Value:   "parametric",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of stdout",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errExportArgs, cmd.NArg())
			}

			file, err := os.Open(cmd.Args().First()) //nolint:gosec // CLI tool opens user-specified result files
			if err != nil {
				return fmt.Errorf("opening result: %w", err)
			}
			defer file.Close()

			result, err := export.ReadJSON(file)
			if err != nil {
				return err
			}

			if path := cmd.String("output"); path != "" {
				return exportResult(path, cmd.String("to"), result)
			}

			format, err := export.ParseFormat(cmd.String("to"))
			if err != nil {
				return err
			}

			return export.Write(os.Stdout, format, result)
		},
	}
}
