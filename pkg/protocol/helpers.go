package protocol

import (
	"github.com/oculab/go-ocular/pkg/classify"
	"github.com/oculab/go-ocular/pkg/visual"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewLandmarksMessage creates a landmarks message from a wire frame
func NewLandmarksMessage(data LandmarksData) (*Message, error) {
	return NewMessage(TypeLandmarks, data)
}

// NewNoFaceMessage signals a frame on which the detector found no face
func NewNoFaceMessage(frameIndex int) (*Message, error) {
	return NewMessage(TypeNoFace, EventsData{FrameIndex: frameIndex})
}

// NewDrawMessage wraps a visualization instruction
func NewDrawMessage(inst visual.Instruction) (*Message, error) {
	return NewMessage(TypeDraw, inst)
}

// NewEventsMessage creates an events message from classified events
func NewEventsMessage(frameIndex int, events []classify.Event) (*Message, error) {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.String())
	}
	return NewMessage(TypeEvents, EventsData{FrameIndex: frameIndex, Events: names})
}

// NewStatusMessage creates a status snapshot message
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: 0, // Will be set by NewMessage
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetLandmarksData extracts landmark data from a message
func (m *Message) GetLandmarksData() (*LandmarksData, error) {
	var data LandmarksData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDrawData extracts a visualization instruction from a message
func (m *Message) GetDrawData() (*visual.Instruction, error) {
	var data visual.Instruction
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetEventsData extracts event data from a message
func (m *Message) GetEventsData() (*EventsData, error) {
	var data EventsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatusData extracts a status snapshot from a message
func (m *Message) GetStatusData() (*StatusData, error) {
	var data StatusData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
