package spectrum

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-dsp/dsp/window"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/tonematch/internal/analysis/shared"
	"github.com/farcloser/tonematch/internal/types"
)

var (
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
	ErrInvalidFFTSize    = errors.New("fft size too small")
)

const minFFTSize = 16

type Options struct {
	FFTSize   int         // default 8192
	Overlap   float64     // fraction of a frame shared with the next one, default 0.75
	Window    window.Type // zero value is rectangular; DefaultOptions uses 4-term Blackman-Harris
	MaxFrames int         // 0 = all frames; otherwise evenly spaced subset
}

func DefaultOptions() Options {
	return Options{
		FFTSize: 8192,
		Overlap: 0.75,
		Window:  window.TypeBlackmanHarris4Term,
	}
}

//nolint:gochecknoglobals // configuration data, effectively const
var windowNames = map[string]window.Type{
	"blackman-harris": window.TypeBlackmanHarris4Term,
	"blackman":        window.TypeBlackman,
	"hann":            window.TypeHann,
	"hamming":         window.TypeHamming,
	"flat-top":        window.TypeFlatTop,
	"rectangular":     window.TypeRectangular,
}

// ParseWindow converts a window name to its type.
func ParseWindow(name string) (window.Type, error) {
	if name == "" {
		return DefaultOptions().Window, nil
	}

	t, ok := windowNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown window %q (valid: blackman-harris, blackman, hann, hamming, flat-top, rectangular)", name)
	}

	return t, nil
}

// Analyze computes the averaged magnitude spectrum of a mono buffer.
// Degenerate input (empty, shorter than a frame, NaN/Inf, silence) never fails:
// it is absorbed and recorded in the spectrum diagnostics.
func Analyze(samples []float64, sampleRate int, opts Options) (*types.FrequencySpectrum, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	defaults := DefaultOptions()
	if opts.FFTSize == 0 {
		opts.FFTSize = defaults.FFTSize
	}

	if opts.FFTSize < minFFTSize {
		return nil, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidFFTSize, opts.FFTSize, minFFTSize)
	}

	fftSize := opts.FFTSize
	overlap := shared.Clamp(opts.Overlap, 0, 0.95)
	hop := max(int(float64(fftSize)*(1-overlap)), 1)

	result := &types.FrequencySpectrum{
		SampleRate: sampleRate,
		FFTSize:    fftSize,
	}

	// Phase 1: sanitize. Non-finite samples become silence instead of poisoning every frame.
	clean, replaced := sanitize(samples)
	result.Diagnostics.NonFiniteSamples = replaced

	if len(clean) < fftSize {
		padded := make([]float64, fftSize)
		copy(padded, clean)
		clean = padded
		result.Diagnostics.ZeroPadded = true
	}

	// Phase 2: frame positions.
	positions := framePositions(len(clean), fftSize, hop, opts.MaxFrames)

	// Phase 3: windowed FFT per frame, accumulating power.
	coeffs := window.Generate(opts.Window, fftSize, window.WithPeriodic())
	binCount := fftSize/2 + 1
	powerSum := make([]float64, binCount)
	framePower := make([]float64, binCount)
	fft := fourier.NewFFT(fftSize)
	fftIn := make([]float64, fftSize)

	var spectrumOut []complex128

	kept := 0

	for _, pos := range positions {
		for i := range fftSize {
			fftIn[i] = clean[pos+i] * coeffs[i]
		}

		spectrumOut = fft.Coefficients(spectrumOut, fftIn)

		var total float64

		finite := true

		for i, c := range spectrumOut {
			p := real(c)*real(c) + imag(c)*imag(c)
			if !shared.IsFinite(p) {
				finite = false

				break
			}

			framePower[i] = p
			total += p
		}

		result.Diagnostics.FramesAnalyzed++

		switch {
		case !finite || !shared.IsFinite(total):
			result.Diagnostics.FramesDropped++

			continue
		case total == 0:
			result.Diagnostics.FramesDropped++
			result.Diagnostics.SilentFrames++

			continue
		}

		for i, p := range framePower {
			powerSum[i] += p
		}

		kept++
	}

	// Phase 4: average, compensate window gain, convert to dB.
	result.Frequencies = make([]float64, binCount)
	result.Magnitudes = make([]float64, binCount)

	binHz := float64(sampleRate) / float64(fftSize)
	scale := windowAmplitudeScale(coeffs)

	for i := range binCount {
		result.Frequencies[i] = float64(i) * binHz

		if kept == 0 {
			result.Magnitudes[i] = shared.FloorDb

			continue
		}

		amplitude := math.Sqrt(powerSum[i]/float64(kept)) * scale
		result.Magnitudes[i] = shared.AmplitudeToDb(amplitude)
	}

	return result, nil
}

// sanitize returns a copy of samples with NaN/Inf replaced by 0, and the replacement count.
func sanitize(samples []float64) ([]float64, int) {
	clean := make([]float64, len(samples))
	replaced := 0

	for i, s := range samples {
		if shared.IsFinite(s) {
			clean[i] = s
		} else {
			replaced++
		}
	}

	return clean, replaced
}

// framePositions returns frame start offsets, hop apart.
// With maxFrames > 0 an evenly spaced subset is kept.
func framePositions(total, fftSize, hop, maxFrames int) []int {
	if total < fftSize {
		return nil
	}

	count := (total-fftSize)/hop + 1

	if maxFrames <= 0 || count <= maxFrames {
		positions := make([]int, count)
		for i := range positions {
			positions[i] = i * hop
		}

		return positions
	}

	positions := make([]int, maxFrames)
	last := total - fftSize

	if maxFrames == 1 {
		positions[0] = last / 2

		return positions
	}

	for i := range positions {
		positions[i] = i * last / (maxFrames - 1)
	}

	return positions
}

// windowAmplitudeScale maps a windowed one-sided FFT magnitude back to the sine amplitude.
func windowAmplitudeScale(coeffs []float64) float64 {
	sum := floats.Sum(coeffs)
	if sum == 0 {
		return 0
	}

	return 2 / sum
}
