// Package landmark converts raw facial-landmark frames into named anatomical
// points using a versioned index mapping.
//
// A detector produces one Frame per camera image: a finite ordered set of
// labeled 2D/3D points. The adapter resolves the points an IndexMap names
// (eye contours, iris rings, eyebrow arcs) into an AdaptedFace that the
// metric calculator consumes. The detector itself is an external
// collaborator; this package never touches pixels.
package landmark

// Point is a single labeled landmark. Z is optional: iris-refined detectors
// emit it, plain face meshes do not.
type Point struct {
	ID   int
	X, Y float64
	Z    float64
	HasZ bool
}

// Point2 is a plain 2D coordinate, used for all derived anatomical points.
type Point2 struct {
	X, Y float64
}

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of the box.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Frame is one instant's worth of detector output. It is immutable once
// built; the pipeline invocation that created it owns it transiently.
type Frame struct {
	points []Point
	byID   map[int]int
}

// NewFrame builds a frame from an ordered point set. Later duplicates of an
// id win, matching detector behavior of re-emitting refined points.
func NewFrame(points []Point) *Frame {
	f := &Frame{
		points: points,
		byID:   make(map[int]int, len(points)),
	}
	for i, p := range points {
		f.byID[p.ID] = i
	}
	return f
}

// Lookup returns the point with the given id, if present.
func (f *Frame) Lookup(id int) (Point, bool) {
	i, ok := f.byID[id]
	if !ok {
		return Point{}, false
	}
	return f.points[i], true
}

// Len returns the number of points in the frame.
func (f *Frame) Len() int { return len(f.points) }

// Points returns the frame's point set in detector order. The slice is
// shared; callers must not mutate it.
func (f *Frame) Points() []Point { return f.points }

// centroid averages a point slice. Callers guarantee len > 0.
func centroid(pts []Point2) Point2 {
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point2{X: sx / n, Y: sy / n}
}

// boundingBox computes the axis-aligned box around a point slice.
func boundingBox(pts []Point2) Rect {
	r := Rect{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < r.MinX {
			r.MinX = p.X
		}
		if p.X > r.MaxX {
			r.MaxX = p.X
		}
		if p.Y < r.MinY {
			r.MinY = p.Y
		}
		if p.Y > r.MaxY {
			r.MaxY = p.Y
		}
	}
	return r
}
