package classify

// Config holds all tunable parameters for the temporal classifier.
type Config struct {
	// Thresholds on smoothed EAR. The wink threshold applies when only one
	// eye reads closed, so a unilateral closure has to be more decisive
	// than a bilateral one.
	BlinkThreshold float64
	WinkThreshold  float64

	// Debounce
	ConsecutiveFrames int // agreeing raw frames before a state flips
	EARHistorySize    int // smoothing ring size per eye

	// CoincidenceFrames is how many frames after a unilateral closure the
	// other eye may still close and have the pair reclassified as a blink.
	CoincidenceFrames int

	// Gaze
	GazeHistorySize int     // iris offset smoothing window
	GazeBandH       float64 // horizontal bucket threshold on [-1,1] offset
	GazeBandV       float64 // vertical bucket threshold

	// Eyebrow raise detection against a slow-moving baseline.
	EyebrowRaiseDelta    float64 // height above baseline that counts as raised
	EyebrowBaselineAlpha float64 // per-frame EMA factor for the baseline
	EyebrowWarmupFrames  int     // neutral frames needed before detection arms

	// DropoutResetFrames is how many consecutive missing frames clear all
	// classifier state. Shorter dropouts hold the last stable state.
	DropoutResetFrames int
}

// DefaultConfig returns the recommended configuration for webcam-rate input.
func DefaultConfig() Config {
	return Config{
		BlinkThreshold: 0.20,
		WinkThreshold:  0.18,

		ConsecutiveFrames: 2,
		EARHistorySize:    3,

		CoincidenceFrames: 2,

		GazeHistorySize: 3,
		GazeBandH:       0.16,
		GazeBandV:       0.16,

		EyebrowRaiseDelta:    0.15,
		EyebrowBaselineAlpha: 0.02,
		EyebrowWarmupFrames:  15,

		DropoutResetFrames: 30,
	}
}

// ResponsiveConfig trades noise immunity for latency: no smoothing lag and
// single-frame debounce. Useful for high-quality detectors.
func ResponsiveConfig() Config {
	cfg := DefaultConfig()
	cfg.ConsecutiveFrames = 1
	cfg.EARHistorySize = 1
	cfg.CoincidenceFrames = 1
	cfg.GazeHistorySize = 1
	return cfg
}

// ConservativeConfig suppresses more noise at the cost of slower reactions.
// Suited to jittery detectors or low frame rates.
func ConservativeConfig() Config {
	cfg := DefaultConfig()
	cfg.ConsecutiveFrames = 3
	cfg.EARHistorySize = 5
	cfg.CoincidenceFrames = 3
	cfg.GazeHistorySize = 5
	cfg.EyebrowWarmupFrames = 30
	return cfg
}
