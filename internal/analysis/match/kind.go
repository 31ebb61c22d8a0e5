package match

import "strings"

// Warning kinds, as reported by Kind.
const (
	KindClamp       = "clamp"
	KindSlope       = "slope"
	KindDynamics    = "dynamics"
	KindAggregate   = "aggregate"
	KindInvalidGain = "invalid-gain"
	KindConfig      = "config"
	KindOther       = "other"
)

// Kind classifies a warning produced by Match.
func Kind(warning string) string {
	switch {
	case strings.Contains(warning, "requested correction"):
		return KindClamp
	case strings.Contains(warning, "correction slope"):
		return KindSlope
	case strings.HasPrefix(warning, "dynamic range:"):
		return KindDynamics
	case strings.HasPrefix(warning, "aggregate correction"):
		return KindAggregate
	case strings.Contains(warning, "gain treated as 0 dB"):
		return KindInvalidGain
	case strings.Contains(warning, "out of range") || strings.Contains(warning, "is not finite"):
		return KindConfig
	}

	return KindOther
}

// Kinds lists every kind Kind can return.
func Kinds() []string {
	return []string{KindClamp, KindSlope, KindDynamics, KindAggregate, KindInvalidGain, KindConfig, KindOther}
}
