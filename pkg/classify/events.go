package classify

import "fmt"

// EyeState is the debounced open/closed state of one eye.
type EyeState int

const (
	Open EyeState = iota
	Closed
)

// String returns the wire name used in recordings.
func (s EyeState) String() string {
	if s == Closed {
		return "closed"
	}
	return "open"
}

// EventType identifies a discrete ocular gesture.
type EventType string

const (
	BlinkStart   EventType = "blinkStart"
	BlinkEnd     EventType = "blinkEnd"
	WinkLeft     EventType = "winkLeft"
	WinkRight    EventType = "winkRight"
	EyebrowRaise EventType = "eyebrowRaise"
	Gaze         EventType = "gaze"
)

// GazeBucket is a discretized gaze direction. Composite directions join the
// horizontal and vertical components with a dash ("left-up").
type GazeBucket string

const (
	GazeCenter GazeBucket = "center"
	GazeLeft   GazeBucket = "left"
	GazeRight  GazeBucket = "right"
	GazeUp     GazeBucket = "up"
	GazeDown   GazeBucket = "down"
)

// Event is one discrete gesture produced by the classifier.
type Event struct {
	Type  EventType
	Frame uint64

	// Bucket is set for gaze events only.
	Bucket GazeBucket

	// Correction marks a blink that retroactively reclassifies a wink
	// already emitted for the same transition instant.
	Correction bool
}

// String renders the wire form: the event type, or "gaze:<bucket>".
func (e Event) String() string {
	if e.Type == Gaze {
		return fmt.Sprintf("gaze:%s", e.Bucket)
	}
	return string(e.Type)
}
