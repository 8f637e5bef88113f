package landmark

import (
	"errors"
	"fmt"
)

// MissingLandmarkError reports that a frame lacked a point the index map
// requires. It is recoverable: depending on which point is missing the
// pipeline either skips the frame or continues without the dependent metric.
type MissingLandmarkError struct {
	Name string // semantic name, e.g. "leftIris"
	ID   int    // detector point id that was absent
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("missing landmark %s (id %d)", e.Name, e.ID)
}

// IsMissingLandmark reports whether err is (or wraps) a MissingLandmarkError.
func IsMissingLandmark(err error) bool {
	var m *MissingLandmarkError
	return errors.As(err, &m)
}
