package shared

const (
	FloorDb         = -120.0 // level reported for bins without usable energy
	SilenceFloorDb  = -100.0 // bins at or below this carry no usable information
	FullConfidentDb = -80.0  // bands at or above this level get full energy confidence
)

// ThirdOctaveCenters is the ISO 266 third-octave center table used for every profile.
// Keeping a single table guarantees that any two profiles share one band layout.
//
//nolint:gochecknoglobals // configuration data, effectively const
var ThirdOctaveCenters = []float64{
	31.5, 40, 50, 63, 80, 100, 125, 160, 200, 250,
	315, 400, 500, 630, 800, 1000, 1250, 1600, 2000, 2500,
	3150, 4000, 5000, 6300, 8000, 10000, 12500, 16000,
}
