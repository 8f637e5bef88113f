// Package protocol defines the WebSocket message types exchanged between
// landmark producers, the engine, and display clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oculab/go-ocular/pkg/landmark"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Producer → Engine messages
	TypeLandmarks MessageType = "landmarks" // One frame of facial landmarks
	TypeNoFace    MessageType = "noFace"    // Detector found no face this frame

	// Engine → Display messages
	TypeDraw   MessageType = "draw"   // Visualization instruction
	TypeEvents MessageType = "events" // Classified ocular events
	TypeStatus MessageType = "status" // Engine state snapshot

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Producer → Engine Message Types
// =============================================================================

// LandmarkPoint is one landmark in image coordinates.
type LandmarkPoint struct {
	ID int      `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	Z  *float64 `json:"z,omitempty"`
}

// LandmarksData carries one frame of facial landmarks from a detector.
type LandmarksData struct {
	FrameIndex int             `json:"frame_index"`
	Width      int             `json:"width"`  // Source image width in pixels
	Height     int             `json:"height"` // Source image height
	Points     []LandmarkPoint `json:"points"`
}

// ToFrame converts wire landmarks into the engine's frame representation.
func (l *LandmarksData) ToFrame() *landmark.Frame {
	pts := make([]landmark.Point, 0, len(l.Points))
	for _, p := range l.Points {
		pt := landmark.Point{ID: p.ID, X: p.X, Y: p.Y}
		if p.Z != nil {
			pt.Z = *p.Z
			pt.HasZ = true
		}
		pts = append(pts, pt)
	}
	return landmark.NewFrame(pts)
}

// FromFrame converts an engine frame back into wire landmarks.
func FromFrame(frameIndex, width, height int, f *landmark.Frame) LandmarksData {
	pts := make([]LandmarkPoint, 0, f.Len())
	for _, p := range f.Points() {
		lp := LandmarkPoint{ID: p.ID, X: p.X, Y: p.Y}
		if p.HasZ {
			z := p.Z
			lp.Z = &z
		}
		pts = append(pts, lp)
	}
	return LandmarksData{FrameIndex: frameIndex, Width: width, Height: height, Points: pts}
}

// =============================================================================
// Engine → Display Message Types
// =============================================================================

// EventsData carries the events classified on one frame.
type EventsData struct {
	FrameIndex int      `json:"frame_index"`
	Events     []string `json:"events"`
}

// StatusData is a snapshot of engine state.
type StatusData struct {
	Mode           string `json:"mode"`
	FaceFound      bool   `json:"face_found"`
	LeftState      string `json:"left_state"`
	RightState     string `json:"right_state"`
	GazeBucket     string `json:"gaze_bucket"`
	Blinks         int    `json:"blinks"`
	LeftWinks      int    `json:"left_winks"`
	RightWinks     int    `json:"right_winks"`
	LeftClosures   int    `json:"left_closures"`
	RightClosures  int    `json:"right_closures"`
	Recording      bool   `json:"recording"`
	SessionID      string `json:"session_id,omitempty"`
	FramesRecorded int    `json:"frames_recorded,omitempty"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
