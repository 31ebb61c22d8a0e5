package main

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/tonematch"
	"github.com/farcloser/tonematch/internal/analysis/match"
)

var (
	errDigestArgs  = errors.New("expected exactly one argument: path to report.jsonl")
	errUnknownKind  = errors.New("unknown warning kind")
)

func digestCommand() *cli.Command {
	return &cli.Command{
		Name:      "digest",
		Usage:     "Produce a summary digest from a tonematch JSONL report",
		ArgsUsage: "<report.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "warning",
				Usage: "Show files with a specific warning kind (" + strings.Join(match.Kinds(), ", ") + ")",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return errDigestArgs
			}

			return runDigest(cmd.Args().First(), cmd.String("warning"))
		},
	}
}

func runDigest(reportPath, kindFilter string) error {
	if kindFilter != "" && !slices.Contains(match.Kinds(), kindFilter) {
		return fmt.Errorf("%w %q (valid: %s)", errUnknownKind, kindFilter, strings.Join(match.Kinds(), ", "))
	}

	records, err := readRecords(reportPath)
	if err != nil {
		return err
	}

	printDigest(records)

	if kindFilter != "" {
		printWarningDetail(records, kindFilter)
	}

	return nil
}

func readRecords(path string) ([]digestRecord, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified report files
	if err != nil {
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer file.Close()

	var records []digestRecord

	scanner := bufio.NewScanner(file)

	const maxLineSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 0, maxLineSize), maxLineSize)

	for scanner.Scan() {
		var rec digestRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			records = append(records, digestRecord{Error: "parse error"})

			continue
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	return records, nil
}

func qualityBuckets() []qualityBucket {
	return []qualityBucket{
		{Label: "excellent (>= 0.90)", Low: 0.9, High: 1.01},
		{Label: "good (0.75 - 0.90)", Low: 0.75, High: 0.9},
		{Label: "fair (0.50 - 0.75)", Low: 0.5, High: 0.75},
		{Label: "poor (< 0.50)", Low: 0, High: 0.5},
	}
}

func printDigest(records []digestRecord) {
	total := len(records)
	failed := 0
	buckets := qualityBuckets()
	severities := []tonematch.Severity{
		tonematch.SeverityNone, tonematch.SeverityMild, tonematch.SeverityModerate, tonematch.SeveritySevere,
	}
	sevDist := map[string]int{}
	kindDist := map[string]int{}
	kindTracks := map[string]int{}
	warningDist := map[int]int{}

	var qualitySum float64

	for _, rec := range records {
		if rec.Error != "" || rec.Match == nil {
			failed++

			continue
		}

		summary := rec.Match.Summary
		qualitySum += summary.QualityScore
		sevDist[summary.Severity]++
		warningDist[len(rec.Match.Warnings)]++

		for i := range buckets {
			if summary.QualityScore >= buckets[i].Low && summary.QualityScore < buckets[i].High {
				buckets[i].Count++

				break
			}
		}

		seen := map[string]bool{}

		for _, warning := range rec.Match.Warnings {
			kind := match.Kind(warning)
			kindDist[kind]++

			if !seen[kind] {
				seen[kind] = true
				kindTracks[kind]++
			}
		}
	}

	matched := total - failed

	fmt.Println("=== Tonematch Report Digest ===")
	fmt.Println()
	fmt.Printf("Total tracks:  %d\n", total)
	fmt.Printf("Failed:        %d\n", failed)
	fmt.Printf("Matched:       %d\n", matched)

	if matched > 0 {
		fmt.Printf("Mean quality:  %.2f\n", qualitySum/float64(matched))
	}

	fmt.Println()

	fmt.Println("--- Quality ---")

	for _, bucket := range buckets {
		fmt.Printf("  %-20s %d\n", bucket.Label+":", bucket.Count)
	}

	fmt.Println()

	fmt.Println("--- Severity ---")

	for _, severity := range severities {
		fmt.Printf("  %-12s %d\n", severity.String()+":", sevDist[severity.String()])
	}

	fmt.Println()

	fmt.Println("--- Warnings Per Track ---")

	counts := make([]int, 0, len(warningDist))
	for k := range warningDist {
		counts = append(counts, k)
	}

	slices.Sort(counts)

	for _, k := range counts {
		fmt.Printf("  %d warnings:  %d tracks\n", k, warningDist[k])
	}

	fmt.Println()

	fmt.Println("--- Warnings By Kind ---")

	kinds := make([]string, 0, len(kindDist))
	for kind := range kindDist {
		kinds = append(kinds, kind)
	}

	slices.SortFunc(kinds, func(a, b string) int {
		return cmp.Or(kindDist[b]-kindDist[a], strings.Compare(a, b))
	})

	for _, kind := range kinds {
		fmt.Printf("  %s\n", kind)
		fmt.Printf("    warnings: %d  tracks: %d\n", kindDist[kind], kindTracks[kind])
	}
}

type warningEntry struct {
	file     string
	severity string
	summary  string
	quality  float64
	warnings []string
}

func printWarningDetail(records []digestRecord, kind string) {
	fmt.Println()

	var entries []warningEntry

	for _, rec := range records {
		if rec.Error != "" || rec.Match == nil {
			continue
		}

		var matching []string

		for _, warning := range rec.Match.Warnings {
			if match.Kind(warning) == kind {
				matching = append(matching, warning)
			}
		}

		if len(matching) == 0 {
			continue
		}

		entry := warningEntry{
			file:     rec.File,
			severity: rec.Match.Summary.Severity,
			summary:  rec.Match.Summary.Summary,
			quality:  rec.Match.Summary.QualityScore,
			warnings: matching,
		}

		if entry.file == "" {
			entry.file = "(redacted)"
		}

		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		fmt.Printf("No tracks with %s warnings\n", kind)

		return
	}

	// Worst matches first.
	slices.SortFunc(entries, func(a, b warningEntry) int {
		return cmp.Compare(a.quality, b.quality)
	})

	fmt.Printf("=== %s: %d tracks ===\n\n", kind, len(entries))

	for _, entry := range entries {
		fmt.Printf("  %s\n", entry.file)
		fmt.Printf("    severity: %s  quality: %.2f\n", entry.severity, entry.quality)
		fmt.Printf("    %s\n", entry.summary)

		for _, warning := range entry.warnings {
			fmt.Printf("    - %s\n", warning)
		}

		fmt.Println()
	}
}
