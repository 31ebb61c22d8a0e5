//nolint:tagliatelle
package types

// AudioSamples is a decoded, mono-summed sample buffer.
// Channels records how many channels the source had before summing.
type AudioSamples struct {
	Samples    []float64
	SampleRate int
	Channels   int
}

// Duration returns the buffer length in seconds.
func (a *AudioSamples) Duration() float64 {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}

	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// SpectrumDiagnostics records degenerate input the analyzer absorbed instead of failing.
type SpectrumDiagnostics struct {
	FramesAnalyzed   int  `json:"frames_analyzed"`
	FramesDropped    int  `json:"frames_dropped"`     // non-finite or silent frames excluded from the average
	SilentFrames     int  `json:"silent_frames"`      // subset of FramesDropped with zero energy
	NonFiniteSamples int  `json:"non_finite_samples"` // NaN/Inf input samples replaced with 0
	ZeroPadded       bool `json:"zero_padded"`        // input shorter than one frame
}

// Degenerate reports whether the analyzer had to fall back on defaults.
func (d SpectrumDiagnostics) Degenerate() bool {
	return d.NonFiniteSamples > 0 || d.ZeroPadded || d.FramesAnalyzed == d.FramesDropped
}

/*
FrequencySpectrum layout

| Field       | Unit | Notes                                          |
|-------------|------|------------------------------------------------|
| Frequencies | Hz   | bin i = i * SampleRate / FFTSize, DC..Nyquist  |
| Magnitudes  | dB   | window-compensated, floored, always finite     |

A full-scale sine reads close to 0 dB at its bin. Bins without usable data sit
at the floor (shared.FloorDb).
*/

// FrequencySpectrum is the aggregated magnitude spectrum of one recording.
type FrequencySpectrum struct {
	Frequencies []float64           `json:"frequencies"`
	Magnitudes  []float64           `json:"magnitudes"`
	SampleRate  int                 `json:"sample_rate"`
	FFTSize     int                 `json:"fft_size"`
	Diagnostics SpectrumDiagnostics `json:"diagnostics"`
}

// Len returns the number of bins.
func (s *FrequencySpectrum) Len() int {
	if s == nil {
		return 0
	}

	return min(len(s.Frequencies), len(s.Magnitudes))
}

// FrequencyBand is one named frequency region of a profile.
// In a correction profile GainDB holds the adjustment to apply, not a level.
type FrequencyBand struct {
	Frequency  float64 `json:"frequency"`  // center, Hz
	GainDB     float64 `json:"gain_db"`    // dB relative to the profile mean
	Bandwidth  float64 `json:"bandwidth"`  // Hz
	Confidence float64 `json:"confidence"` // 0.0-1.0
}

// Q returns the quality factor implied by the band's bandwidth.
func (b FrequencyBand) Q() float64 {
	if b.Bandwidth <= 0 {
		return 0
	}

	return b.Frequency / b.Bandwidth
}

// EQProfile is the compact tonal fingerprint of a recording.
type EQProfile struct {
	Bands            []FrequencyBand `json:"bands"`
	OverallLoudness  float64         `json:"overall_loudness"`  // dB
	DynamicRange     float64         `json:"dynamic_range"`     // dB, percentile spread
	SpectralCentroid float64         `json:"spectral_centroid"` // Hz
	SpectralRolloff  float64         `json:"spectral_rolloff"`  // Hz
}

// Gains returns the band gains in band order.
func (p *EQProfile) Gains() []float64 {
	if p == nil {
		return nil
	}

	gains := make([]float64, len(p.Bands))
	for i, band := range p.Bands {
		gains[i] = band.GainDB
	}

	return gains
}

// MatchConfig shapes the correction computed by the matcher.
type MatchConfig struct {
	Intensity         float64 `json:"intensity"`          // 0.0-1.0
	MaxCorrection     float64 `json:"max_correction"`     // dB, >= 0
	SmoothingFactor   float64 `json:"smoothing_factor"`   // 0.0-1.0
	UsePsychoacoustic bool    `json:"use_psychoacoustic"` // equal-loudness weighting
	PreserveDynamics  bool    `json:"preserve_dynamics"`  // attenuate corrections that flatten the input
}

// MatchResult is the outcome of matching an input profile against a reference.
type MatchResult struct {
	CorrectionProfile   EQProfile `json:"correction_profile"`
	ReferenceNormalized []float64 `json:"reference_normalized"`
	InputNormalized     []float64 `json:"input_normalized"`
	QualityScore        float64   `json:"quality_score"` // 0.0-1.0
	Warnings            []string  `json:"warnings"`
}

// Corrections returns the per-band correction in dB.
func (r *MatchResult) Corrections() []float64 {
	if r == nil {
		return nil
	}

	return r.CorrectionProfile.Gains()
}
