//nolint:wrapcheck
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/cache"
)

// Editors and DAWs often write a file in several steps; wait for the burst to settle.
const settleDelay = 500 * time.Millisecond

func watchCommand() *cli.Command {
	flags := append(analysisFlags(), matchFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "export",
			Aliases: []string{"e"},
			Usage:   "Rewrite this file with the correction after every run",
		},
		&cli.StringFlag{
			Name:  "export-format",
			Usage: "Export format: text, json, parametric (default: from the export file extension)",
		},
		&cli.DurationFlag{
			Name:  "cache-ttl",
			Usage: "How long analyses are reused for unchanged files",
			Value: time.Hour,
		},
		formatFlag(),
	)

	return &cli.Command{
		Name:      "watch",
		Usage:     "Re-run the match every time the input file changes",
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

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			w := &watcher{
				reference:    cmd.Args().Get(0),
				input:        filepath.Clean(cmd.Args().Get(1)),
				opts:         opts,
				cfg:          cfg,
				exportPath:   cmd.String("export"),
				exportFormat: cmd.String("export-format"),
				formatName:   cmd.String("format"),
				analyses:     cache.New[*tonematch.Analysis](cmd.Duration("cache-ttl"), cache.SystemClock()),
			}

			return w.run(ctx)
		},
	}
}

type watcher struct {
	reference    string
	input        string
	opts         tonematch.AnalysisOptions
	cfg          tonematch.MatchConfig
	exportPath   string
	exportFormat string
	formatName   string
	analyses     *cache.Cache[*tonematch.Analysis]
	lastInput    string
}

func (w *watcher) run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err = fsw.Add(filepath.Dir(w.input)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.input), err)
	}

	w.matchOnce(ctx)

	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", w.input)

	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != w.input || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}

			slog.Debug("watch", "event", event.Op.String(), "file path", event.Name)

			settle = time.After(settleDelay)
		case <-settle:
			settle = nil

			w.matchOnce(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}

			slog.Error("watcher error", "error", err)
		}
	}
}

// matchOnce re-runs the match. Failures are reported and the watch goes on.
func (w *watcher) matchOnce(ctx context.Context) {
	inputKey, err := cache.FileKey(w.input, w.salt())
	if err != nil {
		slog.Error("reading input", "file path", w.input, "error", err)

		return
	}

	if inputKey == w.lastInput {
		slog.Debug("watch", "stage", "unchanged", "file path", w.input)

		return
	}

	reference, err := w.analyze(ctx, w.reference)
	if err != nil {
		slog.Error("analyzing reference", "file path", w.reference, "error", err)

		return
	}

	input, err := w.analyze(ctx, w.input)
	if err != nil {
		slog.Error("analyzing input", "file path", w.input, "error", err)

		return
	}

	result, err := tonematch.Match(reference.Profile, input.Profile, w.cfg)
	if err != nil {
		slog.Error("matching", "error", err)

		return
	}

	w.lastInput = inputKey

	if w.exportPath != "" {
		if err = exportResult(w.exportPath, w.exportFormat, result.MatchResult); err != nil {
			slog.Error("exporting", "file path", w.exportPath, "error", err)
		}
	}

	if err = outputMatch(w.reference, w.input, result, w.formatName, false); err != nil {
		slog.Error("printing result", "error", err)
	}
}

func (w *watcher) analyze(ctx context.Context, path string) (*tonematch.Analysis, error) {
	key, err := cache.FileKey(path, w.salt())
	if err != nil {
		return nil, err
	}

	if analysis, ok := w.analyses.Get(key); ok {
		return analysis, nil
	}

	analysis, err := loadAnalysis(ctx, path, w.opts)
	if err != nil {
		return nil, err
	}

	w.analyses.Put(key, analysis)
	w.analyses.Purge()

	return analysis, nil
}

// salt ties cached analyses to the options that produced them.
func (w *watcher) salt() string {
	return fmt.Sprintf("%+v", w.opts)
}
