// Package export serializes match results for people, programs and equalizers.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/farcloser/tonematch/internal/types"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export serialization.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatParametric
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatParametric:
		return "parametric"
	}

	return "unknown"
}

// ParseFormat converts a string to a Format value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "parametric", "apo", "eq":
		return FormatParametric, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: text, json, parametric)", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".eq", ".apo", ".cfg":
		return FormatParametric
	default:
		return FormatText
	}
}

// Write serializes result in the given format.
func Write(w io.Writer, format Format, result *types.MatchResult) error {
	switch format {
	case FormatText:
		return Text(w, result)
	case FormatJSON:
		return JSON(w, result)
	case FormatParametric:
		return Parametric(w, result)
	}

	return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
}

// ReadJSON decodes a result previously written with JSON.
func ReadJSON(r io.Reader) (*types.MatchResult, error) {
	var result types.MatchResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding match result: %w", err)
	}

	return &result, nil
}

// JSON writes the result as indented JSON.
func JSON(w io.Writer, result *types.MatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(result)
}

// Text writes a human-readable report.
func Text(w io.Writer, result *types.MatchResult) error {
	var b strings.Builder

	profile := result.CorrectionProfile

	b.WriteString("Tonal match correction\n")
	fmt.Fprintf(&b, "Quality score:      %.2f\n", result.QualityScore)
	fmt.Fprintf(&b, "Loudness offset:    %+.1f dB\n", profile.OverallLoudness)
	fmt.Fprintf(&b, "Dynamic range est.: %.1f dB\n", profile.DynamicRange)

	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")

		for _, warning := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}

	b.WriteString("\n  Frequency   Correction       Q  Confidence\n")

	for _, band := range profile.Bands {
		fmt.Fprintf(&b, "%8.1f Hz  %+8.2f dB  %6.2f  %9.0f%%\n",
			band.Frequency, band.GainDB, band.Q(), band.Confidence*100)
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// Negligible corrections are left out of parametric chains.
const minFilterGain = 0.05

// Parametric writes a peaking-filter chain in the Equalizer APO configuration syntax.
// The preamp leaves headroom for the largest boost.
func Parametric(w io.Writer, result *types.MatchResult) error {
	var (
		b        strings.Builder
		maxBoost float64
	)

	bands := result.CorrectionProfile.Bands

	for _, band := range bands {
		maxBoost = math.Max(maxBoost, band.GainDB)
	}

	// 0 - maxBoost keeps a flat chain from printing -0.0.
	fmt.Fprintf(&b, "Preamp: %.1f dB\n", 0-maxBoost)

	index := 1

	for _, band := range bands {
		if math.Abs(band.GainDB) < minFilterGain || band.Q() <= 0 {
			continue
		}

		fmt.Fprintf(&b, "Filter %d: ON PK Fc %g Hz Gain %.1f dB Q %.2f\n", index, band.Frequency, band.GainDB, band.Q())
		index++
	}

	_, err := io.WriteString(w, b.String())

	return err
}
