package session

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json is the session codec. Sessions run to thousands of frames, so the
// fast path matters more here than anywhere else in the system.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal serializes a recording to the interchange format.
func Marshal(rec *Recording) ([]byte, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal session %s: %w", rec.SessionID, err)
	}
	return data, nil
}

// Unmarshal parses and validates an interchange-format payload. Any
// structural violation rejects the whole session: a partially loaded track
// would replay garbage on the device.
func Unmarshal(data []byte) (*Recording, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSession, err)
	}
	if err := Validate(&rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks the session invariants: identity present, positive fps,
// strictly increasing frame indices, non-decreasing timestamps, recognized
// eye states.
func Validate(rec *Recording) error {
	if rec.SessionID == "" {
		return fmt.Errorf("%w: empty session id", ErrCorruptSession)
	}
	if rec.FPS <= 0 {
		return fmt.Errorf("%w: fps %v", ErrCorruptSession, rec.FPS)
	}

	for i, f := range rec.Frames {
		if i > 0 {
			prev := rec.Frames[i-1]
			if f.FrameIndex <= prev.FrameIndex {
				return fmt.Errorf("%w: frame index %d not increasing at position %d",
					ErrCorruptSession, f.FrameIndex, i)
			}
			if f.TimestampMs < prev.TimestampMs {
				return fmt.Errorf("%w: timestamp %dms regresses at position %d",
					ErrCorruptSession, f.TimestampMs, i)
			}
		}
		if !validState(f.LeftState) || !validState(f.RightState) {
			return fmt.Errorf("%w: unknown eye state at position %d", ErrCorruptSession, i)
		}
	}
	return nil
}

func validState(s string) bool {
	return s == "open" || s == "closed"
}
