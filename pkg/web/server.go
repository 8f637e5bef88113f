// Package web exposes the engine over HTTP and WebSocket: landmark
// producers stream frames in, display clients stream draw instructions
// out, and a small REST API controls mode and recording.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/hub"
	"github.com/oculab/go-ocular/pkg/pipeline"
	"github.com/oculab/go-ocular/pkg/session"
)

// Server is the engine's network front end.
type Server struct {
	app  *fiber.App
	port string

	engine *pipeline.Engine
	queue  *pipeline.FrameQueue
	store  *session.Store

	// Hubs for websocket broadcast (thread-safe)
	drawHub  *hub.Hub
	eventHub *hub.Hub
}

// NewServer wires the engine, frame queue, and session store into an HTTP
// application. The store may be nil; session endpoints then return 404.
func NewServer(port string, engine *pipeline.Engine, queue *pipeline.FrameQueue, store *session.Store) *Server {
	s := &Server{
		port:     port,
		engine:   engine,
		queue:    queue,
		store:    store,
		drawHub:  hub.New("draw"),
		eventHub: hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Ocular Engine",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/mode", s.handleGetMode)
	api.Post("/mode", s.handleSetMode)
	api.Post("/mode/cycle", s.handleCycleMode)
	api.Post("/recording/start", s.handleStartRecording)
	api.Post("/recording/stop", s.handleStopRecording)
	api.Get("/sessions", s.handleListSessions)
	api.Get("/sessions/:id", s.handleGetSession)
	api.Post("/reset", s.handleReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/landmarks", websocket.New(s.handleLandmarksWS))
	app.Get("/ws/draw", websocket.New(s.handleDrawWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// Start starts the server and its broadcast hubs. Blocks.
func (s *Server) Start() error {
	log.Info("web server listening", "port", s.port)

	go s.drawHub.Run()
	go s.eventHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "err", err)
		}
	}()
}

// DrawHub returns the draw broadcast hub for external use
func (s *Server) DrawHub() *hub.Hub {
	return s.drawHub
}

// EventHub returns the event broadcast hub for external use
func (s *Server) EventHub() *hub.Hub {
	return s.eventHub
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
