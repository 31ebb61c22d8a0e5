package tonematch

import (
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/window"

	"github.com/farcloser/tonematch/internal/analysis/match"
	"github.com/farcloser/tonematch/internal/types"
)

type (
	AudioSamples      = types.AudioSamples
	FrequencySpectrum = types.FrequencySpectrum
	FrequencyBand     = types.FrequencyBand
	EQProfile         = types.EQProfile
	MatchConfig       = types.MatchConfig
	MatchResult       = types.MatchResult
)

// DefaultTargetSampleRate is the rate every recording is resampled to before analysis,
// so that profiles of different sources share one bin layout.
const DefaultTargetSampleRate = 48000

// AnalysisOptions configures spectrum analysis.
type AnalysisOptions struct {
	// FFTSize is the analysis frame length in samples (default: 8192).
	FFTSize int

	// Overlap is the fraction shared between consecutive frames (default: 0.75).
	// Negative values select no overlap.
	Overlap float64

	// Window is the analysis window (default: 4-term Blackman-Harris).
	// It is not defaulted: the zero value selects a rectangular window.
	Window window.Type

	// MaxFrames bounds the number of analyzed frames (default: 0, all frames).
	MaxFrames int

	// TargetSampleRate is the rate samples are resampled to (default: 48000).
	TargetSampleRate int
}

// DefaultAnalysisOptions returns sensible defaults for spectrum analysis.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{
		FFTSize:          8192,
		Overlap:          0.75,
		Window:           window.TypeBlackmanHarris4Term,
		TargetSampleRate: DefaultTargetSampleRate,
	}
}

// Analysis is the spectrum of a recording and the profile extracted from it.
type Analysis struct {
	Profile  *EQProfile         `json:"profile"`
	Spectrum *FrequencySpectrum `json:"spectrum,omitempty"`
	Source   string             `json:"source,omitempty"`
	Duration float64            `json:"duration"` // seconds, before resampling
	Channels int                `json:"channels"`
}

// Severity indicates how far apart two recordings sound.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "close match"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Bands defines severity thresholds. Direction is implicit:
// if Mild < Severe, higher values are worse (ascending, e.g. dB of correction).
// If Mild > Severe, lower values are worse (descending, e.g. a quality score).
type Bands struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

// Match returns the severity for a value.
// Returns (SeverityNone, false) when the value is below detection (the Mild threshold).
func (b Bands) Match(value float64) (Severity, bool) {
	if b.Mild <= b.Severe {
		switch {
		case value >= b.Severe:
			return SeveritySevere, true
		case value >= b.Moderate:
			return SeverityModerate, true
		case value >= b.Mild:
			return SeverityMild, true
		}
	} else {
		switch {
		case value <= b.Severe:
			return SeveritySevere, true
		case value <= b.Moderate:
			return SeverityModerate, true
		case value <= b.Mild:
			return SeverityMild, true
		}
	}

	return SeverityNone, false
}

// DefaultDeviationBands grades the mean absolute correction, in dB.
//
//nolint:gochecknoglobals // configuration data, effectively const
var DefaultDeviationBands = Bands{Mild: 1, Moderate: 3, Severe: 6}

// Result is a match plus its interpretation.
type Result struct {
	*MatchResult

	// MeanCorrection is the mean absolute per-band correction, in dB.
	MeanCorrection float64
	// PeakCorrection is the largest absolute correction and where it applies.
	PeakCorrection float64
	PeakFrequency  float64

	Severity Severity
	Summary  string
}

// Preset is a named matching configuration.
type Preset int

const (
	PresetBalanced   Preset = iota // Default: moderate intensity, smoothed, dynamics preserved.
	PresetGentle                   // Subtle, heavily smoothed corrections.
	PresetAggressive               // Full-strength corrections with a wide range.
)

func (p Preset) String() string {
	switch p {
	case PresetBalanced:
		return "balanced"
	case PresetGentle:
		return "gentle"
	case PresetAggressive:
		return "aggressive"
	}

	return "unknown"
}

// ParsePreset converts a string to a Preset value.
func ParsePreset(s string) (Preset, error) {
	switch s {
	case "balanced", "":
		return PresetBalanced, nil
	case "gentle":
		return PresetGentle, nil
	case "aggressive":
		return PresetAggressive, nil
	default:
		return 0, fmt.Errorf("unknown preset %q (valid: balanced, gentle, aggressive)", s)
	}
}

// DefaultMatchConfig returns the balanced configuration.
func DefaultMatchConfig() MatchConfig {
	return match.DefaultConfig()
}

// GentleMatchConfig keeps corrections small and broad.
func GentleMatchConfig() MatchConfig {
	cfg := DefaultMatchConfig()
	cfg.Intensity = 0.4
	cfg.MaxCorrection = 3
	cfg.SmoothingFactor = 0.8

	return cfg
}

// AggressiveMatchConfig follows the reference closely.
// Dynamics are still preserved; the psychoacoustic curve is off so extremes get corrected too.
func AggressiveMatchConfig() MatchConfig {
	cfg := DefaultMatchConfig()
	cfg.Intensity = 1
	cfg.MaxCorrection = 12
	cfg.SmoothingFactor = 0.25
	cfg.UsePsychoacoustic = false

	return cfg
}

// ConfigForPreset returns the MatchConfig for the given preset.
func ConfigForPreset(preset Preset) MatchConfig {
	switch preset {
	case PresetGentle:
		return GentleMatchConfig()
	case PresetAggressive:
		return AggressiveMatchConfig()
	default:
		return DefaultMatchConfig()
	}
}
