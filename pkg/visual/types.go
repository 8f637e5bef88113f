// Package visual maps classifier output to renderer-agnostic draw
// instructions for the eye display. It decides what shape to draw and with
// which parameters; rasterization belongs to the display collaborator.
package visual

// Mode selects the display style.
type Mode string

const (
	Rectangles    Mode = "rectangles"
	Rounded       Mode = "rounded"
	AmplitudeWave Mode = "amplitudeWave"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case Rectangles, Rounded, AmplitudeWave:
		return true
	}
	return false
}

// Next cycles to the following mode, wrapping around.
func (m Mode) Next() Mode {
	switch m {
	case Rectangles:
		return Rounded
	case Rounded:
		return AmplitudeWave
	default:
		return Rectangles
	}
}

// EyeShape is the draw instruction for one eye in the rectangle modes. All
// coordinates and sizes are normalized to the display: x and y in [0,1],
// width and height as fractions of the display extent.
type EyeShape struct {
	CenterX float64 `json:"cx"`
	CenterY float64 `json:"cy"`
	Width   float64 `json:"w"`
	Height  float64 `json:"h"`

	// Openness is the EAR-derived open fraction the height was scaled by.
	Openness float64 `json:"openness"`

	// BrowCut is the eyebrow-driven diagonal cut fraction [0,1].
	BrowCut float64 `json:"browCut"`

	// Pupil displacement within the eye, [-1,1] per axis.
	PupilDX float64 `json:"pupilDx"`
	PupilDY float64 `json:"pupilDy"`

	Rounded bool `json:"rounded,omitempty"`
}

// Waveform is the draw instruction for the amplitude-wave mode: a sample
// sequence in [-1,1] representing the openness signal across the display
// width.
type Waveform struct {
	Phase    float64    `json:"phase"`
	Openness [2]float64 `json:"openness"` // left, right half
	Samples  []float64  `json:"samples"`

	// Noise marks the no-face idle waveform.
	Noise bool `json:"noise,omitempty"`
}

// Instruction is the per-frame draw instruction set. Exactly one of the
// shape pair or the waveform is populated, depending on the mode.
type Instruction struct {
	Mode  Mode      `json:"mode"`
	Left  *EyeShape `json:"left,omitempty"`
	Right *EyeShape `json:"right,omitempty"`
	Wave  *Waveform `json:"wave,omitempty"`
}

// WaveState is the amplitude-wave sub-state: phase advanced by a fixed
// per-frame increment and per-half openness smoothed toward the
// instantaneous value. It is a plain value type so concurrent sessions
// cannot share it by accident.
type WaveState struct {
	Phase    float64
	Openness [2]float64
}
