//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/cache"
	"github.com/farcloser/tonematch/internal/output"
)

const outputFile = "tonematch-report.jsonl"

var (
	errReportArgs   = errors.New("expected exactly two arguments: reference file and folder path")
	errNotDirectory = errors.New("not a directory")
	errNoAudioFiles = errors.New("no audio files found")
)

//nolint:gochecknoglobals
var audioExtensions = []string{".wav", ".flac", ".m4a", ".mp3", ".ogg", ".opus", ".aiff", ".aif"}

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Match every audio file in a folder against a reference and write a JSONL report",
		ArgsUsage: "<reference> <folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "preset",
				Aliases: []string{"p"},
				Usage:   "Matching preset: balanced, gentle, aggressive",
				Value:   "balanced",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Report file path",
				Value:   outputFile,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return errReportArgs
			}

			preset, err := tonematch.ParsePreset(cmd.String("preset"))
			if err != nil {
				return err
			}

			return runReport(ctx, reportOptions{
				reference: cmd.Args().Get(0),
				folder:    cmd.Args().Get(1),
				output:    cmd.String("output"),
				redact:    cmd.Bool("redact-path"),
				workers:   max(cmd.Int("workers"), 1),
				config:    tonematch.ConfigForPreset(preset),
			})
		},
	}
}

type reportOptions struct {
	reference string
	folder    string
	output    string
	redact    bool
	workers   int
	config    tonematch.MatchConfig
}

// runner owns the state shared by the workers of one report run.
type runner struct {
	reference *tonematch.Analysis
	config    tonematch.MatchConfig
	options   tonematch.AnalysisOptions
	analyses  *cache.Cache[*tonematch.Analysis]
}

func runReport(ctx context.Context, opts reportOptions) error {
	info, err := os.Stat(opts.folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", opts.folder, errNotDirectory)
	}

	files, err := collectAudioFiles(opts.folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", opts.folder, errNoAudioFiles)
	}

	run := &runner{
		config:  opts.config,
		options: tonematch.DefaultAnalysisOptions(),
		// Entries live for the duration of the run; identical files are analyzed once.
		analyses: cache.New[*tonematch.Analysis](0, cache.SystemClock()),
	}

	run.reference, err = tonematch.AnalyzeFile(ctx, opts.reference, run.options)
	if err != nil {
		return fmt.Errorf("analyzing reference: %w", err)
	}

	// The reference often lives in the collection too.
	if key, err := cache.FileKey(opts.reference, run.salt()); err == nil {
		run.analyses.Put(key, run.reference)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to match against %s (%d workers)\n",
		len(files), filepath.Base(opts.reference), opts.workers)

	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	sem := make(chan struct{}, opts.workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = run.processFile(ctx, filePath)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
		}(idx, filePath)
	}

	waitGroup.Wait()

	out, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed, cached := 0, 0

	var totalHash, totalAnalyze, totalMatch time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalHash += millisToDuration(record.Timing.HashMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
			totalMatch += millisToDuration(record.Timing.MatchMs)

			if record.Timing.Cached {
				cached++
			}
		}

		if opts.redact {
			record.File = ""
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)
		}
	}

	out.Close()

	if err := compressFile(opts.output); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %dm %ds (%d failed, %d duplicates)\n",
		len(files), minutes, seconds, failed, cached)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", opts.output, opts.output)

	matched := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  hashing:     %s (cumulative)\n", totalHash.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative)\n", totalAnalyze.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  matching:    %s (cumulative)\n", totalMatch.Truncate(time.Millisecond))

	if matched > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s (hash: %s, analyze: %s, match: %s)\n",
			(totalHash+totalAnalyze+totalMatch)/time.Duration(matched),
			totalHash/time.Duration(matched),
			totalAnalyze/time.Duration(matched),
			totalMatch/time.Duration(matched),
		)
	}

	fmt.Fprintln(os.Stderr)

	return runDigest(opts.output, "")
}

func (r *runner) processFile(ctx context.Context, filePath string) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	hashStart := time.Now()

	key, err := cache.FileKey(filePath, r.salt())

	timing.HashMs = durationMs(time.Since(hashStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("read failed: %v", err), Timing: timing}
	}

	analysis, ok := r.analyses.Get(key)
	if ok {
		timing.Cached = true
	} else {
		analyzeStart := time.Now()

		analysis, err = tonematch.AnalyzeFile(ctx, filePath, r.options)

		timing.AnalyzeMs = durationMs(time.Since(analyzeStart))

		if err != nil {
			timing.TotalMs = durationMs(time.Since(fileStart))

			return Record{File: filePath, Error: fmt.Sprintf("analysis failed: %v", err), Timing: timing}
		}

		r.analyses.Put(key, analysis)
	}

	matchStart := time.Now()

	result, err := tonematch.Match(r.reference.Profile, analysis.Profile, r.config)

	timing.MatchMs = durationMs(time.Since(matchStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("match failed: %v", err), Timing: timing}
	}

	return Record{
		File:     filePath,
		Analysis: output.AnalysisToMap(analysis),
		Match:    output.ResultToMap(result),
		Timing:   timing,
	}
}

func (r *runner) salt() string {
	return fmt.Sprintf("%+v", r.options)
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func isAudioFile(path string) bool {
	return slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(path)))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if isAudioFile(path) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}
