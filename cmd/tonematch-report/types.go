//nolint:tagliatelle
package main

// Record is a single line in the JSONL report file.
type Record struct {
	File     string         `json:"file,omitempty"`
	Analysis map[string]any `json:"analysis,omitempty"`
	Match    map[string]any `json:"match,omitempty"`
	Error    string         `json:"error,omitempty"`
	Timing   *RecordTiming  `json:"timing,omitempty"`
}

// RecordTiming captures per-file processing durations in milliseconds.
type RecordTiming struct {
	HashMs    float64 `json:"hash_ms"`
	AnalyzeMs float64 `json:"analyze_ms"`
	MatchMs   float64 `json:"match_ms"`
	TotalMs   float64 `json:"total_ms"`
	Cached    bool    `json:"cached,omitempty"`
}

// digestRecord holds the typed fields needed by the digest command.
type digestRecord struct {
	File  string       `json:"file,omitempty"`
	Match *digestMatch `json:"match,omitempty"`
	Error string       `json:"error,omitempty"`
}

type digestMatch struct {
	Summary  digestSummary `json:"summary"`
	Warnings []string      `json:"warnings"`
}

type digestSummary struct {
	Severity       string  `json:"severity"`
	Summary        string  `json:"summary"`
	QualityScore   float64 `json:"quality_score"`
	MeanCorrection float64 `json:"mean_correction"`
	PeakCorrection float64 `json:"peak_correction"`
	PeakFrequency  float64 `json:"peak_frequency"`
}

// qualityBucket counts records whose score falls in [Low, High).
type qualityBucket struct {
	Label string
	Low   float64
	High  float64
	Count int
}
