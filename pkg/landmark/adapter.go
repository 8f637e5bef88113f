package landmark

import "fmt"

// AdaptedEye holds the named anatomical points for one eye.
type AdaptedEye struct {
	// Contour in p1..p6 EAR order.
	Contour [6]Point2

	// Center is the contour centroid.
	Center Point2

	// Box bounds the contour; iris offsets are normalized against it.
	Box Rect

	// IrisCenter is the centroid of the iris ring. Only valid when HasIris
	// is true (iris refinement may be disabled upstream).
	IrisCenter Point2
	HasIris    bool

	// BrowRef is the eyebrow arc centroid.
	BrowRef Point2
}

// AdaptedFace is the adapter output for one frame.
type AdaptedFace struct {
	Left, Right AdaptedEye
}

// Eye returns the adapted eye for a side.
func (f *AdaptedFace) Eye(s Side) *AdaptedEye {
	if s == Left {
		return &f.Left
	}
	return &f.Right
}

// Adapt resolves the points the index map names out of a raw frame. It is a
// pure transform.
//
// A missing contour or eyebrow point makes the frame unusable and returns a
// MissingLandmarkError with a zero face. Missing iris points are softer:
// the face is still returned with HasIris unset alongside the error, so the
// caller can report the condition and continue without gaze estimation.
func Adapt(frame *Frame, m IndexMap) (AdaptedFace, error) {
	var face AdaptedFace
	var irisErr error

	for _, side := range []Side{Left, Right} {
		eye := face.Eye(side)

		for i, id := range m.contour(side) {
			p, ok := frame.Lookup(id)
			if !ok {
				return AdaptedFace{}, &MissingLandmarkError{
					Name: fmt.Sprintf("%sEyeContour[%d]", side, i+1),
					ID:   id,
				}
			}
			eye.Contour[i] = Point2{X: p.X, Y: p.Y}
		}
		eye.Center = centroid(eye.Contour[:])
		eye.Box = boundingBox(eye.Contour[:])

		browIDs := m.eyebrow(side)
		brow := make([]Point2, 0, len(browIDs))
		for _, id := range browIDs {
			p, ok := frame.Lookup(id)
			if !ok {
				return AdaptedFace{}, &MissingLandmarkError{
					Name: side.String() + "Eyebrow",
					ID:   id,
				}
			}
			brow = append(brow, Point2{X: p.X, Y: p.Y})
		}
		eye.BrowRef = centroid(brow)

		iris := make([]Point2, 0, len(m.iris(side)))
		for _, id := range m.iris(side) {
			p, ok := frame.Lookup(id)
			if !ok {
				if irisErr == nil {
					irisErr = &MissingLandmarkError{
						Name: side.String() + "Iris",
						ID:   id,
					}
				}
				iris = nil
				break
			}
			iris = append(iris, Point2{X: p.X, Y: p.Y})
		}
		// The original implementation accepted a partial iris ring of at
		// least 3 points; a full break above means we never do partials,
		// which keeps the centroid stable.
		if len(iris) >= 3 {
			eye.IrisCenter = centroid(iris)
			eye.HasIris = true
		}
	}

	return face, irisErr
}
