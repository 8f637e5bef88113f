package web

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/hub"
	"github.com/oculab/go-ocular/pkg/pipeline"
	"github.com/oculab/go-ocular/pkg/protocol"
	"github.com/oculab/go-ocular/pkg/session"
	"github.com/oculab/go-ocular/pkg/visual"
)

// Publish is the engine sink: it fans each frame result out to the
// broadcast hubs. Wire it with engine.Run(ctx, queue, server.Publish).
func (s *Server) Publish(res pipeline.FrameResult) {
	if msg, err := protocol.NewDrawMessage(res.Draw); err == nil {
		if data, err := msg.Bytes(); err == nil {
			s.drawHub.Broadcast(hub.NewJSONMessage(data))
		}
	}

	if len(res.Events) > 0 {
		if msg, err := protocol.NewEventsMessage(int(res.FrameIndex), res.Events); err == nil {
			if data, err := msg.Bytes(); err == nil {
				s.eventHub.Broadcast(hub.NewJSONMessage(data))
			}
		}
	}

	if res.Finalized != nil {
		log.Info("recording auto-stopped at time cap",
			"session", res.Finalized.SessionID, "frames", len(res.Finalized.Frames))
	}
}

// statusData converts an engine snapshot to its wire form.
func (s *Server) statusData() protocol.StatusData {
	st := s.engine.Status()
	return protocol.StatusData{
		Mode:           string(st.Mode),
		FaceFound:      st.FaceFound,
		LeftState:      st.LeftState.String(),
		RightState:     st.RightState.String(),
		GazeBucket:     string(st.GazeBucket),
		Blinks:         st.Totals.Blinks,
		LeftWinks:      st.Totals.LeftWinks,
		RightWinks:     st.Totals.RightWinks,
		LeftClosures:   st.Totals.LeftClosures,
		RightClosures:  st.Totals.RightClosures,
		Recording:      st.Recording,
		SessionID:      st.SessionID,
		FramesRecorded: st.FramesRecorded,
	}
}

// handleStatus returns the engine state snapshot
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusData())
}

// handleGetMode returns the current visualization mode
func (s *Server) handleGetMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"mode": s.engine.Mode()})
}

// SetModeRequest is the request body for switching modes
type SetModeRequest struct {
	Mode string `json:"mode"`
}

// handleSetMode switches to a named visualization mode
func (s *Server) handleSetMode(c *fiber.Ctx) error {
	var req SetModeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}

	if err := s.engine.SetMode(visual.Mode(req.Mode)); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"mode": s.engine.Mode()})
}

// handleCycleMode advances to the next visualization mode
func (s *Server) handleCycleMode(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"mode": s.engine.CycleMode()})
}

// StartRecordingRequest is the request body for starting a recording
type StartRecordingRequest struct {
	SessionID string `json:"sessionId"`
}

// handleStartRecording begins a new session recording
func (s *Server) handleStartRecording(c *fiber.Ctx) error {
	var req StartRecordingRequest
	c.BodyParser(&req) // Empty body means a generated session id

	id, err := s.engine.StartRecording(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrRecordingActive) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sessionId": id})
}

// handleStopRecording finalizes and persists the active recording
func (s *Server) handleStopRecording(c *fiber.Ctx) error {
	rec, err := s.engine.StopRecording()
	if err != nil {
		if errors.Is(err, session.ErrNoRecording) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"sessionId":  rec.SessionID,
		"frames":     len(rec.Frames),
		"durationMs": rec.DurationMs,
	})
}

// handleListSessions returns the stored session ids
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(404).JSON(fiber.Map{"error": "no session store"})
	}
	ids, err := s.store.List()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sessions": ids})
}

// handleGetSession returns one stored session in interchange form
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(404).JSON(fiber.Map{"error": "no session store"})
	}
	rec, err := s.store.Load(c.Params("id"))
	if err != nil {
		if errors.Is(err, session.ErrCorruptSession) {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(404).JSON(fiber.Map{"error": "session not found"})
	}
	return c.JSON(rec)
}

// handleReset clears classifier state
func (s *Server) handleReset(c *fiber.Ctx) error {
	s.engine.Reset()
	return c.JSON(fiber.Map{"ok": true})
}

// handleLandmarksWS ingests frames from a landmark producer. One producer
// per connection; frames go through the bounded queue, so a slow engine
// never stalls the socket under the drop-oldest policy.
func (s *Server) handleLandmarksWS(c *websocket.Conn) {
	log.Info("landmark producer connected", "remote", c.RemoteAddr().String())
	defer log.Info("landmark producer disconnected")

	ctx := context.Background()
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("malformed producer message", "err", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeLandmarks:
			lm, err := msg.GetLandmarksData()
			if err != nil {
				log.Warn("bad landmarks payload", "err", err)
				continue
			}
			if err := s.queue.Push(ctx, pipeline.Item{Frame: lm.ToFrame()}); err != nil {
				return
			}

		case protocol.TypeNoFace:
			if err := s.queue.Push(ctx, pipeline.Item{Miss: true}); err != nil {
				return
			}

		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			pong, err := protocol.NewPongMessage(ping.ID, msg.Timestamp, time.Now().UnixMilli())
			if err != nil {
				continue
			}
			if data, err := pong.Bytes(); err == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}

		default:
			log.Warn("unexpected producer message", "type", msg.Type)
		}
	}
}

// handleDrawWS subscribes a display client to draw instructions
func (s *Server) handleDrawWS(c *websocket.Conn) {
	client := hub.NewClient(s.drawHub, c)
	client.Run() // Blocks until connection closes
}

// handleEventsWS subscribes a client to classified events
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	client.Run() // Blocks until connection closes
}
