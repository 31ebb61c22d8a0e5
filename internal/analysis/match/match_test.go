package match_test

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/farcloser/tonematch/internal/analysis/match"
	"github.com/farcloser/tonematch/internal/analysis/shared"
	"github.com/farcloser/tonematch/internal/types"
)

const tolerance = 1e-6

// flatProfile returns a fully confident profile over the third-octave layout.
func flatProfile(dynamicRange float64) *types.EQProfile {
	p := &types.EQProfile{
		Bands:            make([]types.FrequencyBand, len(shared.ThirdOctaveCenters)),
		OverallLoudness:  -20,
		DynamicRange:     dynamicRange,
		SpectralCentroid: 2500,
		SpectralRolloff:  9000,
	}

	for i, fc := range shared.ThirdOctaveCenters {
		p.Bands[i] = types.FrequencyBand{Frequency: fc, Bandwidth: fc * 0.2316, Confidence: 1}
	}

	return p
}

func bandIndex(t *testing.T, hz float64) int {
	t.Helper()

	for i, fc := range shared.ThirdOctaveCenters {
		if fc == hz {
			return i
		}
	}

	t.Fatalf("no band at %v Hz", hz)

	return -1
}

// randomProfile returns a fully confident profile with normally distributed band gains.
func randomProfile(rng *rand.Rand, spread float64) *types.EQProfile {
	p := flatProfile(20 + 40*rng.Float64())
	for i := range p.Bands {
		p.Bands[i].GainDB = rng.NormFloat64() * spread
	}

	return p
}

func maxAdjacentDiff(values []float64) float64 {
	var out float64
	for i := 1; i < len(values); i++ {
		out = math.Max(out, math.Abs(values[i]-values[i-1]))
	}

	return out
}

func TestMatchIdentical(t *testing.T) {
	t.Parallel()

	p := flatProfile(40)
	for i := range p.Bands {
		p.Bands[i].GainDB = math.Sin(float64(i)) * 4
	}

	configs := map[string]types.MatchConfig{
		"default":    match.DefaultConfig(),
		"raw":        {Intensity: 1, MaxCorrection: 12},
		"everything": {Intensity: 1, MaxCorrection: 3, SmoothingFactor: 1, UsePsychoacoustic: true, PreserveDynamics: true},
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := match.Match(p, p, cfg)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}

			for i, c := range res.Corrections() {
				if c != 0 {
					t.Errorf("band %d: correction %v, want 0", i, c)
				}
			}

			if res.QualityScore != 1 {
				t.Errorf("quality = %v, want 1", res.QualityScore)
			}

			if len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func TestMatchFlatAgainstFlat(t *testing.T) {
	t.Parallel()

	res, err := match.Match(flatProfile(30), flatProfile(50), match.DefaultConfig())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if maxAdjacentDiff(res.Corrections()) != 0 || res.Corrections()[0] != 0 {
		t.Errorf("corrections = %v, want zeros", res.Corrections())
	}

	if res.QualityScore != 1 || len(res.Warnings) != 0 {
		t.Errorf("quality %v warnings %v", res.QualityScore, res.Warnings)
	}
}

func TestMatchIdenticalEdgeConfigs(t *testing.T) {
	t.Parallel()

	p := flatProfile(40)
	for i := range p.Bands {
		p.Bands[i].GainDB = math.Sin(float64(i)) * 4
		p.Bands[i].Confidence = 0.5 + 0.5*math.Cos(float64(i))
	}

	tests := []struct {
		name  string
		cfg   types.MatchConfig
		notes int
	}{
		{"unbounded", types.MatchConfig{Intensity: 1, MaxCorrection: math.Inf(1), SmoothingFactor: 0.5}, 0},
		{"zero limit", types.MatchConfig{Intensity: 1}, 0},
		{"nan", types.MatchConfig{
			Intensity: math.NaN(), MaxCorrection: math.NaN(), SmoothingFactor: math.NaN(), PreserveDynamics: true,
		}, 0},
		{"out of range", types.MatchConfig{
			Intensity: 4, MaxCorrection: -3, SmoothingFactor: 2, UsePsychoacoustic: true, PreserveDynamics: true,
		}, 3},
		{"infinite", types.MatchConfig{
			Intensity: math.Inf(-1), MaxCorrection: math.Inf(-1), SmoothingFactor: math.Inf(1),
		}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := match.Match(p, p, tt.cfg)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}

			for i, c := range res.Corrections() {
				if c != 0 {
					t.Errorf("band %d: correction %v, want 0", i, c)
				}
			}

			if res.QualityScore != 1 {
				t.Errorf("quality = %v, want 1", res.QualityScore)
			}

			if len(res.Warnings) != tt.notes {
				t.Errorf("got %d warnings, want %d: %v", len(res.Warnings), tt.notes, res.Warnings)
			}

			for _, w := range res.Warnings {
				if kind := match.Kind(w); kind != match.KindConfig {
					t.Errorf("warning %q is %s, want config", w, kind)
				}
			}
		})
	}
}

func TestMatchConfigNotesDoNotLowerQuality(t *testing.T) {
	t.Parallel()

	ref := flatProfile(40)
	ref.Bands[bandIndex(t, 1000)].GainDB = 3

	clean, err := match.Match(ref, flatProfile(40), types.MatchConfig{Intensity: 1, MaxCorrection: 12, SmoothingFactor: 0.5})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	noisy, err := match.Match(ref, flatProfile(40), types.MatchConfig{Intensity: 3, MaxCorrection: 12, SmoothingFactor: 0.5})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if len(clean.Warnings) != 0 || len(noisy.Warnings) != 1 {
		t.Fatalf("warnings %v / %v", clean.Warnings, noisy.Warnings)
	}

	if clean.QualityScore != noisy.QualityScore {
		t.Errorf("quality %v with a config note, %v without", noisy.QualityScore, clean.QualityScore)
	}
}

func TestMatchUnboundedCorrection(t *testing.T) {
	t.Parallel()

	k := bandIndex(t, 1000)
	input := flatProfile(40)
	input.Bands[k].GainDB = -30

	res, err := match.Match(flatProfile(40), input, types.MatchConfig{Intensity: 1, MaxCorrection: math.Inf(1)})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if got := res.Corrections()[k]; got != 30 {
		t.Errorf("correction = %v, want 30", got)
	}

	for _, w := range res.Warnings {
		if kind := match.Kind(w); kind == match.KindClamp || kind == match.KindConfig {
			t.Errorf("unexpected %s warning %q", kind, w)
		}
	}
}

func TestMatchSingleBandBoost(t *testing.T) {
	t.Parallel()

	ref := flatProfile(40)
	ref.Bands[bandIndex(t, 1000)].GainDB = 3

	res, err := match.Match(ref, flatProfile(40), match.DefaultConfig())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	c := res.Corrections()
	k := bandIndex(t, 1000)

	if c[k] <= 0 || c[k] >= 2.1 {
		t.Errorf("1 kHz correction = %v, want in (0, 2.1)", c[k])
	}

	if c[k-1] <= 0 || c[k-1] >= c[k] || math.Abs(c[k-1]-c[k+1]) > tolerance {
		t.Errorf("neighbors %v / %v should be smaller, positive and symmetric", c[k-1], c[k+1])
	}

	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	if res.QualityScore <= 0 || res.QualityScore >= 1 {
		t.Errorf("quality = %v, want in (0, 1)", res.QualityScore)
	}

	if res.ReferenceNormalized[k] != 3 || res.InputNormalized[k] != 0 {
		t.Errorf("normalized gains %v / %v", res.ReferenceNormalized[k], res.InputNormalized[k])
	}

	if res.CorrectionProfile.Bands[k].Frequency != 1000 || res.CorrectionProfile.Bands[k].Confidence != 1 {
		t.Errorf("correction band = %+v", res.CorrectionProfile.Bands[k])
	}
}

func TestMatchClamp(t *testing.T) {
	t.Parallel()

	ref := flatProfile(40)
	k := bandIndex(t, 1000)

	tests := []struct {
		name    string
		gain    float64
		want    float64
		warning string
	}{
		{"boost", 10, 6, "band 1000 Hz: requested correction +10.0 dB limited to ±6.0 dB"},
		{"cut", -10, -6, "band 1000 Hz: requested correction -10.0 dB limited to ±6.0 dB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			input := flatProfile(40)
			input.Bands[k].GainDB = -tt.gain

			res, err := match.Match(ref, input, types.MatchConfig{Intensity: 1, MaxCorrection: 6})
			if err != nil {
				t.Fatalf("Match: %v", err)
			}

			if got := res.Corrections()[k]; got != tt.want {
				t.Errorf("correction = %v, want %v", got, tt.want)
			}

			if !containsWarning(res.Warnings, tt.warning) {
				t.Errorf("no %q in %v", tt.warning, res.Warnings)
			}
		})
	}
}

func TestMatchNeverExceedsMax(t *testing.T) {
	t.Parallel()

	ref, input := flatProfile(40), flatProfile(40)
	for i := range ref.Bands {
		ref.Bands[i].GainDB = 20 * math.Sin(float64(i)*1.7)
		input.Bands[i].GainDB = -15 * math.Cos(float64(i)*0.9)
	}

	for _, limit := range []float64{0, 1, 3, 6, 12} {
		cfg := match.DefaultConfig()
		cfg.Intensity = 1
		cfg.MaxCorrection = limit

		res, err := match.Match(ref, input, cfg)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}

		for i, c := range res.Corrections() {
			if math.Abs(c) > limit+tolerance {
				t.Errorf("max %v: band %d correction %v", limit, i, c)
			}
		}

		if res.QualityScore < 0 || res.QualityScore > 1 {
			t.Errorf("quality = %v", res.QualityScore)
		}
	}
}

func TestMatchClampWarningNamesRequest(t *testing.T) {
	t.Parallel()

	ref := flatProfile(45)
	input := flatProfile(40)

	for i := range input.Bands {
		input.Bands[i].GainDB = 12
		if i%2 == 1 {
			input.Bands[i].GainDB = -12
		}
	}

	res, err := match.Match(ref, input, types.MatchConfig{Intensity: 1, MaxCorrection: 6, PreserveDynamics: true})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	// Limiting leaves 12 dB of the 24 dB flattening; the 36 dB floor allows a third of that.
	for i, c := range res.Corrections() {
		if math.Abs(math.Abs(c)-2) > 1e-3 {
			t.Errorf("band %d: correction %v, want magnitude 2", i, c)
		}
	}

	clamps := 0

	for _, w := range res.Warnings {
		if match.Kind(w) != match.KindClamp {
			continue
		}

		clamps++

		if !strings.Contains(w, "requested correction") || !strings.HasSuffix(w, "12.0 dB limited to ±6.0 dB") {
			t.Errorf("clamp warning %q does not describe the request", w)
		}
	}

	if clamps != len(input.Bands) {
		t.Errorf("got %d clamp warnings, want %d", clamps, len(input.Bands))
	}

	if !containsWarning(res.Warnings, "dynamic range") {
		t.Errorf("no dynamic range warning in %v", res.Warnings)
	}
}

func TestMatchSmoothingNeverSharpens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  types.MatchConfig
	}{
		{"plain", types.MatchConfig{Intensity: 1, MaxCorrection: 12}},
		{"limited", types.MatchConfig{Intensity: 1, MaxCorrection: 3}},
		{"dynamics", types.MatchConfig{Intensity: 1, MaxCorrection: 12, PreserveDynamics: true}},
		{"default", match.DefaultConfig()},
		{"unbounded", types.MatchConfig{Intensity: 0.8, MaxCorrection: math.Inf(1), UsePsychoacoustic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewPCG(1, 2))

			for trial := range 400 {
				ref, input := randomProfile(rng, 4), randomProfile(rng, 4)

				confidence := rng.Float64()
				for i := range input.Bands {
					input.Bands[i].Confidence = confidence
				}

				previous := math.Inf(1)

				for step := range 11 {
					cfg := tt.cfg
					cfg.SmoothingFactor = float64(step) / 10

					res, err := match.Match(ref, input, cfg)
					if err != nil {
						t.Fatalf("Match: %v", err)
					}

					got := maxAdjacentDiff(res.Corrections())
					if got > previous+tolerance {
						t.Fatalf("trial %d, smoothing %v: max adjacent difference %v grew from %v",
							trial, cfg.SmoothingFactor, got, previous)
					}

					previous = got
				}
			}
		})
	}
}

func TestMatchNeverExceedsMaxRandomConfigs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))

	for trial := range 500 {
		ref, input := randomProfile(rng, 10), randomProfile(rng, 10)
		for i := range ref.Bands {
			ref.Bands[i].Confidence = rng.Float64()
		}

		cfg := types.MatchConfig{
			Intensity:         rng.Float64(),
			MaxCorrection:     12 * rng.Float64(),
			SmoothingFactor:   rng.Float64(),
			UsePsychoacoustic: rng.IntN(2) == 0,
			PreserveDynamics:  rng.IntN(2) == 0,
		}

		res, err := match.Match(ref, input, cfg)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}

		for i, c := range res.Corrections() {
			if math.Abs(c) > cfg.MaxCorrection+tolerance {
				t.Errorf("trial %d: band %d correction %v exceeds %v", trial, i, c, cfg.MaxCorrection)
			}
		}

		if res.QualityScore < 0 || res.QualityScore > 1 {
			t.Errorf("trial %d: quality = %v", trial, res.QualityScore)
		}
	}
}

func TestMatchConfidenceScaling(t *testing.T) {
	t.Parallel()

	ref := flatProfile(40)
	k := bandIndex(t, 2000)
	ref.Bands[k].GainDB = 4

	previous := math.Inf(1)

	for _, confidence := range []float64{1, 0.75, 0.5, 0.25, 0} {
		input := flatProfile(40)
		input.Bands[k].Confidence = confidence

		res, err := match.Match(ref, input, types.MatchConfig{Intensity: 1, MaxCorrection: 12, SmoothingFactor: 0.5})
		if err != nil {
			t.Fatalf("Match: %v", err)
		}

		got := math.Abs(res.Corrections()[k])
		if got > previous+tolerance {
			t.Errorf("confidence %v: correction %v larger than %v", confidence, got, previous)
		}

		if res.CorrectionProfile.Bands[k].Confidence != confidence {
			t.Errorf("combined confidence = %v, want %v", res.CorrectionProfile.Bands[k].Confidence, confidence)
		}

		previous = got
	}

	if previous != 0 {
		t.Errorf("zero confidence still corrects by %v", previous)
	}
}

func TestMatchConfidenceAgainstOpposingNeighbors(t *testing.T) {
	t.Parallel()

	k := bandIndex(t, 1000)

	ref := flatProfile(45)
	for i := k - 3; i <= k+3; i++ {
		ref.Bands[i].GainDB = -4
	}

	ref.Bands[k].GainDB = 1

	raw := types.MatchConfig{Intensity: 1, MaxCorrection: 12, SmoothingFactor: 1}
	everything := raw
	everything.UsePsychoacoustic = true
	everything.PreserveDynamics = true

	configs := map[string]types.MatchConfig{"raw": raw, "everything": everything}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			previous := math.Inf(1)

			for _, confidence := range []float64{1, 0.9, 0.75, 0.5, 0.25, 0.1, 0} {
				input := flatProfile(40)
				input.Bands[k].Confidence = confidence

				res, err := match.Match(ref, input, cfg)
				if err != nil {
					t.Fatalf("Match: %v", err)
				}

				got := math.Abs(res.Corrections()[k])
				if got > previous+tolerance {
					t.Errorf("confidence %v: correction %v larger than %v", confidence, got, previous)
				}

				previous = got
			}

			if previous != 0 {
				t.Errorf("zero confidence still corrects by %v", previous)
			}
		})
	}
}

func TestMatchConfidenceDampensRandomProfiles(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))

	for trial := range 500 {
		ref, input := randomProfile(rng, 6), randomProfile(rng, 6)
		for i := range input.Bands {
			input.Bands[i].Confidence = rng.Float64()
		}

		cfg := types.MatchConfig{
			Intensity:         rng.Float64(),
			MaxCorrection:     12 * rng.Float64(),
			SmoothingFactor:   rng.Float64(),
			UsePsychoacoustic: rng.IntN(2) == 0,
			PreserveDynamics:  rng.IntN(2) == 0,
		}

		k := rng.IntN(len(input.Bands))
		previous := math.Inf(1)

		for _, confidence := range []float64{1, 0.8, 0.6, 0.4, 0.2, 0} {
			input.Bands[k].Confidence = confidence

			res, err := match.Match(ref, input, cfg)
			if err != nil {
				t.Fatalf("Match: %v", err)
			}

			got := math.Abs(res.Corrections()[k])
			if got > previous+tolerance {
				t.Fatalf("trial %d, band %d, confidence %v: correction %v larger than %v",
					trial, k, confidence, got, previous)
			}

			previous = got
		}

		if previous != 0 {
			t.Errorf("trial %d: zero confidence still corrects band %d by %v", trial, k, previous)
		}
	}
}

func TestMatchPreservesDynamics(t *testing.T) {
	t.Parallel()

	ref := flatProfile(45)
	input := flatProfile(40)

	for i := range input.Bands {
		input.Bands[i].GainDB = 4
		if i%2 == 1 {
			input.Bands[i].GainDB = -4
		}
	}

	cfg := types.MatchConfig{Intensity: 1, MaxCorrection: 10, PreserveDynamics: true}

	res, err := match.Match(ref, input, cfg)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	// Flattening the input would cost 8 dB of spread; the floor (36 dB) allows half of it.
	for i, c := range res.Corrections() {
		if math.Abs(math.Abs(c)-2) > 1e-3 {
			t.Errorf("band %d: correction %v, want magnitude 2", i, c)
		}
	}

	if math.Abs(res.CorrectionProfile.DynamicRange-36) > 1e-3 {
		t.Errorf("estimated dynamic range = %v, want 36", res.CorrectionProfile.DynamicRange)
	}

	if !containsWarning(res.Warnings, "dynamic range") {
		t.Errorf("no dynamic range warning in %v", res.Warnings)
	}

	cfg.PreserveDynamics = false

	res, err = match.Match(ref, input, cfg)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if got := math.Abs(res.Corrections()[0]); got != 4 {
		t.Errorf("without preservation correction = %v, want 4", got)
	}
}

func TestMatchSlopeAndAggregateWarnings(t *testing.T) {
	t.Parallel()

	ref := flatProfile(40)
	for i := range ref.Bands {
		if i >= 14 {
			ref.Bands[i].GainDB = 5
		}
	}

	res, err := match.Match(ref, flatProfile(40), types.MatchConfig{Intensity: 1, MaxCorrection: 6})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if !containsWarning(res.Warnings, "630 Hz and 800 Hz") {
		t.Errorf("no slope warning in %v", res.Warnings)
	}

	if !containsWarning(res.Warnings, "aggregate") {
		t.Errorf("no aggregate warning in %v", res.Warnings)
	}
}

func TestMatchErrors(t *testing.T) {
	t.Parallel()

	short := flatProfile(40)
	short.Bands = short.Bands[:10]

	shifted := flatProfile(40)
	shifted.Bands[3].Frequency *= 1.05

	broken := flatProfile(40)
	broken.Bands[0].Frequency = math.NaN()

	tests := []struct {
		name  string
		ref   *types.EQProfile
		input *types.EQProfile
		want  error
	}{
		{"nil reference", nil, flatProfile(40), match.ErrInvalidProfile},
		{"nil input", flatProfile(40), nil, match.ErrInvalidProfile},
		{"band count", flatProfile(40), short, match.ErrBandLayoutMismatch},
		{"band centers", flatProfile(40), shifted, match.ErrBandLayoutMismatch},
		{"nan center", broken, flatProfile(40), match.ErrInvalidProfile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := match.Match(tt.ref, tt.input, match.DefaultConfig()); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMatchDegenerateValues(t *testing.T) {
	t.Parallel()

	ref, input := flatProfile(math.NaN()), flatProfile(math.Inf(1))
	ref.Bands[4].GainDB = math.NaN()
	input.Bands[5].GainDB = math.Inf(-1)
	input.Bands[6].Confidence = math.NaN()
	input.OverallLoudness = math.Inf(-1)

	cfg := types.MatchConfig{
		Intensity:       math.NaN(),
		MaxCorrection:   math.Inf(-1),
		SmoothingFactor: 3,
	}

	res, err := match.Match(ref, input, cfg)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	values := append(res.Corrections(), res.QualityScore, res.CorrectionProfile.DynamicRange,
		res.CorrectionProfile.OverallLoudness)
	values = append(values, res.ReferenceNormalized...)
	values = append(values, res.InputNormalized...)

	for _, v := range values {
		if !shared.IsFinite(v) {
			t.Fatalf("non-finite value in result: %+v", res)
		}
	}

	for _, want := range []string{"reference gain", "input gain", "max correction", "smoothing factor"} {
		if !containsWarning(res.Warnings, want) {
			t.Errorf("no %q warning in %v", want, res.Warnings)
		}
	}
}

func TestMatchEmptyProfiles(t *testing.T) {
	t.Parallel()

	res, err := match.Match(&types.EQProfile{}, &types.EQProfile{}, match.DefaultConfig())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}

	if len(res.Corrections()) != 0 || res.QualityScore != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestSmoothShortInput(t *testing.T) {
	t.Parallel()

	in := []float64{1, -1}

	out := match.Smooth(in, 1)
	if out[0] != 1 || out[1] != -1 {
		t.Errorf("two bands smoothed to %v", out)
	}

	out[0] = 9
	if in[0] != 1 {
		t.Error("Smooth aliases its input")
	}
}

func TestSmoothComposes(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 8))

	for trial := range 200 {
		values := make([]float64, 28)
		for i := range values {
			values[i] = rng.NormFloat64() * 5
		}

		a, b := rng.Float64()/2, rng.Float64()/2

		once := match.Smooth(values, a+b)
		twice := match.Smooth(match.Smooth(values, a), b)

		lo, hi := slices.Min(values), slices.Max(values)

		for i := range once {
			if math.Abs(once[i]-twice[i]) > 1e-9 {
				t.Fatalf("trial %d, value %d: %v smoothed at once, %v in two steps", trial, i, once[i], twice[i])
			}

			if once[i] < lo-tolerance || once[i] > hi+tolerance {
				t.Errorf("trial %d: smoothed value %v outside [%v, %v]", trial, once[i], lo, hi)
			}
		}

		if maxAdjacentDiff(once) > maxAdjacentDiff(match.Smooth(values, a))+tolerance {
			t.Errorf("trial %d: smoothing by %v sharpened the curve smoothed by %v", trial, a+b, a)
		}
	}
}

func TestWeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hz   float64
		want float64
	}{
		{10, 0.4},
		{20, 0.4},
		{63, 0.6},
		{1000, 1.0},
		{4000, 1.0},
		{8000, 0.85},
		{30000, 0.5},
		{math.NaN(), 0.4},
	}

	for _, tt := range tests {
		if got := match.Weight(tt.hz); math.Abs(got-tt.want) > tolerance {
			t.Errorf("Weight(%v) = %v, want %v", tt.hz, got, tt.want)
		}
	}

	// Halfway between 4 kHz and 8 kHz on a log axis.
	if got := match.Weight(4000 * math.Sqrt2); math.Abs(got-0.925) > tolerance {
		t.Errorf("Weight(5657) = %v, want 0.925", got)
	}
}

func containsWarning(warnings []string, fragment string) bool {
	for _, w := range warnings {
		if strings.Contains(w, fragment) {
			return true
		}
	}

	return false
}
