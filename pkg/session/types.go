// Package session records per-frame ocular data into a compact,
// device-portable gesture track and replays stored tracks deterministically.
//
// A session is one continuous recording run. The serialized interchange
// format is JSON: one object per session with a nominal fps and the ordered
// frame list. Frame indices are strictly increasing and timestamps
// monotonically non-decreasing; loads that violate this are rejected whole.
package session

import (
	"time"

	"github.com/oculab/go-ocular/pkg/visual"
)

// RecordedFrame is one captured frame of the interchange format.
type RecordedFrame struct {
	FrameIndex  uint64 `json:"frameIndex"`
	TimestampMs int64  `json:"timestampMs"`

	LeftEAR  float64 `json:"leftEAR"`
	RightEAR float64 `json:"rightEAR"`

	LeftState  string `json:"leftState"`
	RightState string `json:"rightState"`

	Events []string `json:"events,omitempty"`

	Draw visual.Instruction `json:"draw"`
}

// Resolution is the nominal target display size, carried as metadata for
// the device-side renderer.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Recording is a finalized session.
type Recording struct {
	SessionID  string     `json:"sessionId"`
	FPS        float64    `json:"fps"`
	DurationMs int64      `json:"durationMs"`
	Resolution Resolution `json:"resolution"`

	Frames []RecordedFrame `json:"frames"`
}

// FrameInterval returns the pacing interval implied by the nominal fps.
func (r *Recording) FrameInterval() time.Duration {
	if r.FPS <= 0 {
		return time.Second / 30
	}
	return time.Duration(float64(time.Second) / r.FPS)
}

// Config holds recorder tuning.
type Config struct {
	// TargetFPS paces capture independently of the upstream camera rate.
	TargetFPS float64

	// MaxRecordingTime caps one session; exceeding it auto-stops the
	// recording and reports truncation.
	MaxRecordingTime time.Duration

	// Resolution stamped into the artifact.
	Resolution Resolution
}

// DefaultConfig matches the device target: 30 fps capture, 60 second cap,
// 128x64 display.
func DefaultConfig() Config {
	return Config{
		TargetFPS:        30,
		MaxRecordingTime: 60 * time.Second,
		Resolution:       Resolution{Width: 128, Height: 64},
	}
}
