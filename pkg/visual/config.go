package visual

// Config holds the display-geometry and wave tuning for the mode mapper.
// All spatial values are normalized display fractions.
type Config struct {
	// Eye placement
	BaseLeftX  float64
	BaseRightX float64
	BaseY      float64

	// Gaze-driven displacement range around the base position.
	GazeRangeX float64
	GazeRangeY float64

	// Eye geometry. Width is constant; height scales with openness.
	EyeWidth     float64
	MaxEyeHeight float64

	// Openness mapping: EAR at which the eye counts as fully open, and
	// the floor below which the shape never collapses entirely.
	OpenEAR      float64
	MinOpenness  float64

	// Eyebrow-height window mapped linearly onto the [0,1] diagonal cut.
	BrowLow  float64
	BrowHigh float64

	// Amplitude-wave tuning.
	WaveSamples       int
	WaveBaseAmp       float64
	WaveMaxExtraAmp   float64
	WaveCarrier       float64 // radians per sample
	WavePhaseStep     float64 // radians per frame, fixed (never wall clock)
	WaveGazeShift     float64 // phase offset applied for left/right gaze
	WaveSmoothing     float64 // openness smoothing factor per frame
	WaveNoiseAmp      float64 // idle noise amplitude when no face is found
}

// DefaultConfig returns the display tuning matching the 128x64 device
// target.
func DefaultConfig() Config {
	return Config{
		BaseLeftX:  0.25,
		BaseRightX: 0.75,
		BaseY:      0.5,

		GazeRangeX: 0.15,
		GazeRangeY: 0.15,

		EyeWidth:     0.10,
		MaxEyeHeight: 0.25,

		OpenEAR:     0.35,
		MinOpenness: 0.08,

		BrowLow:  0.45,
		BrowHigh: 0.85,

		WaveSamples:     128,
		WaveBaseAmp:     0.06,
		WaveMaxExtraAmp: 0.70,
		WaveCarrier:     0.5,
		WavePhaseStep:   0.12,
		WaveGazeShift:   0.8,
		WaveSmoothing:   0.2,
		WaveNoiseAmp:    0.05,
	}
}
