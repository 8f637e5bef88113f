package landmark

// IndexMap names the detector point ids this system depends on. It is a
// single versioned table shared by the adapter and any inspection tooling so
// debug and production paths can never disagree about which id means what.
//
// Contour order is the six-point EAR convention: p1 outer corner, p2/p3
// upper lid, p4 inner corner, p5/p6 lower lid.
type IndexMap struct {
	Version string `json:"version"`

	LeftEyeContour  [6]int `json:"leftEyeContour"`
	RightEyeContour [6]int `json:"rightEyeContour"`

	// Iris rings. Optional at runtime: detectors without iris refinement
	// omit these ids entirely.
	LeftIris  []int `json:"leftIris"`
	RightIris []int `json:"rightIris"`

	LeftEyebrow  []int `json:"leftEyebrow"`
	RightEyebrow []int `json:"rightEyebrow"`
}

// MediaPipeFaceMesh returns the index map for the MediaPipe Face Mesh model
// with iris refinement (478 points).
func MediaPipeFaceMesh() IndexMap {
	return IndexMap{
		Version: "mediapipe-facemesh/1",

		LeftEyeContour:  [6]int{33, 160, 158, 133, 153, 144},
		RightEyeContour: [6]int{362, 385, 387, 263, 373, 380},

		LeftIris:  []int{468, 469, 470, 471, 472},
		RightIris: []int{473, 474, 475, 476, 477},

		LeftEyebrow:  []int{70, 63, 105, 66, 107, 55, 65, 52, 53, 46},
		RightEyebrow: []int{296, 334, 293, 300, 276, 283, 282, 295, 285, 336},
	}
}

// Side identifies an eye.
type Side int

const (
	Left Side = iota
	Right
)

// String returns the side name used on the wire.
func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// contour returns the contour ids for a side.
func (m IndexMap) contour(s Side) [6]int {
	if s == Left {
		return m.LeftEyeContour
	}
	return m.RightEyeContour
}

// iris returns the iris ids for a side.
func (m IndexMap) iris(s Side) []int {
	if s == Left {
		return m.LeftIris
	}
	return m.RightIris
}

// eyebrow returns the eyebrow ids for a side.
func (m IndexMap) eyebrow(s Side) []int {
	if s == Left {
		return m.LeftEyebrow
	}
	return m.RightEyebrow
}
