// Package metrics computes per-frame ocular metrics from adapted landmarks:
// the eye aspect ratio (EAR), the normalized iris offset, and the eyebrow
// height. All functions are pure; the two eyes of one frame have no ordering
// dependency between them.
package metrics

import (
	"math"

	"github.com/oculab/go-ocular/pkg/landmark"
)

// epsilon guards the EAR denominator against coincident corner landmarks.
const epsilon = 1e-6

// Offset is an iris displacement normalized to [-1,1] per axis, relative to
// the eye bounding box center.
type Offset struct {
	DX, DY float64
}

// EyeMetrics holds the derived values for one eye in one frame.
type EyeMetrics struct {
	EAR    float64
	Center landmark.Point2

	IrisOffset Offset
	HasIris    bool

	EyebrowHeight float64

	// Degenerate flags an EAR outside the sane [0,1] window. The value is
	// still reported; consumers substitute a neutral reading and log it
	// rather than trusting it.
	Degenerate bool
}

// FrameMetrics pairs both eyes for one frame.
type FrameMetrics struct {
	Left, Right EyeMetrics
}

// EAR computes the eye aspect ratio from the six contour points in p1..p6
// order: (|p2-p6| + |p3-p5|) / (2*|p1-p4| + eps). Open eyes sit around
// 0.25-0.35, closed near 0.
func EAR(c [6]landmark.Point2) float64 {
	a := dist(c[1], c[5])
	b := dist(c[2], c[4])
	d := dist(c[0], c[3])
	return (a + b) / (2*d + epsilon)
}

// Sane reports whether an EAR value is inside the plausible range. Values
// outside it indicate a degenerate detection, not a real eye shape.
func Sane(ear float64) bool {
	return ear >= 0 && ear <= 1 && !math.IsNaN(ear) && !math.IsInf(ear, 0)
}

// IrisOffset normalizes the iris center within the eye bounding box to
// [-1,1] per axis, clamped to absorb detector noise at the lid edges.
func IrisOffset(iris landmark.Point2, box landmark.Rect) Offset {
	w := box.Width()
	h := box.Height()

	var dx, dy float64
	if w > epsilon {
		dx = (iris.X - (box.MinX + w/2)) / (w / 2)
	}
	if h > epsilon {
		dy = (iris.Y - (box.MinY + h/2)) / (h / 2)
	}

	return Offset{
		DX: clamp(dx, -1, 1),
		DY: clamp(dy, -1, 1),
	}
}

// EyebrowHeight returns the vertical brow-to-eye distance normalized by the
// eye's corner-to-corner width, making the value scale invariant. Typical
// neutral faces sit around 0.5-0.8.
func EyebrowHeight(brow, eyeCenter landmark.Point2, contour [6]landmark.Point2) float64 {
	width := dist(contour[0], contour[3])
	return math.Abs(brow.Y-eyeCenter.Y) / (width + epsilon)
}

// Compute derives the full metric set for one adapted eye.
func Compute(eye *landmark.AdaptedEye) EyeMetrics {
	m := EyeMetrics{
		EAR:           EAR(eye.Contour),
		Center:        eye.Center,
		EyebrowHeight: EyebrowHeight(eye.BrowRef, eye.Center, eye.Contour),
	}
	m.Degenerate = !Sane(m.EAR)

	if eye.HasIris {
		m.IrisOffset = IrisOffset(eye.IrisCenter, eye.Box)
		m.HasIris = true
	}
	return m
}

// ComputeFrame derives metrics for both eyes of an adapted face.
func ComputeFrame(face *landmark.AdaptedFace) FrameMetrics {
	return FrameMetrics{
		Left:  Compute(&face.Left),
		Right: Compute(&face.Right),
	}
}

func dist(a, b landmark.Point2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
