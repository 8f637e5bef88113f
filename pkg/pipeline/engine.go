// Package pipeline wires the per-frame stages together: adapt raw
// landmarks, compute metrics, classify events, map to draw instructions,
// and feed the session recorder. One engine per stream; stages run on a
// single goroutine so classifier state never needs internal locking.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/classify"
	"github.com/oculab/go-ocular/pkg/landmark"
	"github.com/oculab/go-ocular/pkg/metrics"
	"github.com/oculab/go-ocular/pkg/session"
	"github.com/oculab/go-ocular/pkg/visual"
)

// FrameResult is everything the engine derives from one frame.
type FrameResult struct {
	FrameIndex uint64
	FaceFound  bool

	Metrics metrics.FrameMetrics
	Events  []classify.Event
	Draw    visual.Instruction

	// Finalized is set when this frame's capture auto-stopped the
	// recording (time cap reached). The artifact has already been saved.
	Finalized *session.Recording
}

// Status is a point-in-time snapshot of engine state.
type Status struct {
	Mode       visual.Mode
	FaceFound  bool
	LeftState  classify.EyeState
	RightState classify.EyeState
	GazeBucket classify.GazeBucket
	Totals     classify.Totals
	Frame      uint64

	Recording      bool
	SessionID      string
	FramesRecorded int
}

// Sink receives each processed frame's result. Called on the engine
// goroutine; implementations must not block.
type Sink func(FrameResult)

// Engine owns the per-stream state machines.
type Engine struct {
	mu sync.Mutex

	imap       landmark.IndexMap
	classifier *classify.Classifier
	mapper     *visual.Mapper
	recorder   *session.Recorder
	store      *session.Store

	faceFound bool
}

// New creates an engine. The store may be nil, in which case finished
// recordings are returned to the caller but not persisted.
func New(cfg Config, store *session.Store) *Engine {
	return &Engine{
		imap:       landmark.MediaPipeFaceMesh(),
		classifier: classify.New(cfg.Classifier),
		mapper:     visual.NewMapper(cfg.Visual, cfg.Mode),
		recorder:   session.NewRecorder(cfg.Recording),
		store:      store,
	}
}

// ProcessFrame runs one landmark frame through the full pipeline. A frame
// with unusable eye landmarks is treated as a detector miss; the error
// reports what was missing.
func (e *Engine) ProcessFrame(frame *landmark.Frame) (FrameResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	face, err := landmark.Adapt(frame, e.imap)
	if err != nil && face == (landmark.AdaptedFace{}) {
		log.Warn("unusable landmark frame", "err", err)
		res := e.processMissLocked()
		return res, fmt.Errorf("adapt frame: %w", err)
	}
	if err != nil {
		// Iris refinement missing. Gaze stays suppressed for the frame;
		// everything else proceeds.
		log.Debug("frame without iris landmarks", "err", err)
	}

	m := metrics.ComputeFrame(&face)
	if m.Left.Degenerate || m.Right.Degenerate {
		log.Debug("degenerate eye metrics",
			"left_ear", m.Left.EAR, "right_ear", m.Right.EAR)
	}

	events := e.classifier.Classify(m)
	e.faceFound = true

	dx, dy := e.classifier.GazeOffset()
	in := visual.Input{
		FaceFound:  true,
		LeftState:  e.classifier.State(landmark.Left),
		RightState: e.classifier.State(landmark.Right),
		LeftEAR:    e.classifier.SmoothedEAR(landmark.Left),
		RightEAR:   e.classifier.SmoothedEAR(landmark.Right),
		GazeDX:     dx,
		GazeDY:     dy,
		Brow:       (m.Left.EyebrowHeight + m.Right.EyebrowHeight) / 2,
	}

	res := FrameResult{
		FrameIndex: e.classifier.Frame(),
		FaceFound:  true,
		Metrics:    m,
		Events:     events,
		Draw:       e.mapper.Map(in),
	}
	res.Finalized = e.recordLocked(&res)
	return res, nil
}

// ProcessMiss handles a frame on which the detector found no face.
func (e *Engine) ProcessMiss() FrameResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processMissLocked()
}

func (e *Engine) processMissLocked() FrameResult {
	e.classifier.NoFace()
	e.faceFound = false

	res := FrameResult{
		FrameIndex: e.classifier.Frame(),
		Draw:       e.mapper.Map(visual.Input{FaceFound: false}),
	}
	res.Finalized = e.recordLocked(&res)
	return res
}

// recordLocked captures the frame if a recording is active. Returns the
// finalized recording when the capture tripped the time cap.
func (e *Engine) recordLocked(res *FrameResult) *session.Recording {
	if !e.recorder.Active() {
		return nil
	}

	names := make([]string, 0, len(res.Events))
	for _, ev := range res.Events {
		names = append(names, ev.String())
	}

	rec, err := e.recorder.Capture(session.RecordedFrame{
		LeftEAR:    e.classifier.SmoothedEAR(landmark.Left),
		RightEAR:   e.classifier.SmoothedEAR(landmark.Right),
		LeftState:  e.classifier.State(landmark.Left).String(),
		RightState: e.classifier.State(landmark.Right).String(),
		Events:     names,
		Draw:       res.Draw,
	})
	if errors.Is(err, session.ErrRecordingTruncated) {
		e.persist(rec)
		return rec
	}
	if err != nil && !errors.Is(err, session.ErrNoRecording) {
		log.Error("frame capture failed", "err", err)
	}
	return nil
}

func (e *Engine) persist(rec *session.Recording) {
	if e.store == nil || rec == nil {
		return
	}
	if _, err := e.store.Save(rec); err != nil {
		log.Error("failed to save recording", "session", rec.SessionID, "err", err)
	}
}

// StartRecording begins capturing frames. Empty id means generate one.
func (e *Engine) StartRecording(sessionID string) (string, error) {
	return e.recorder.Start(sessionID)
}

// StopRecording finalizes and persists the active recording.
func (e *Engine) StopRecording() (*session.Recording, error) {
	rec, err := e.recorder.Stop()
	if err != nil {
		return nil, err
	}
	e.persist(rec)
	return rec, nil
}

// Mode returns the current visualization mode.
func (e *Engine) Mode() visual.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.Mode()
}

// SetMode switches the visualization mode. Unknown modes are rejected.
func (e *Engine) SetMode(mode visual.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown mode %q", mode)
	}
	e.mu.Lock()
	e.mapper.SetMode(mode)
	e.mu.Unlock()
	return nil
}

// CycleMode advances to the next visualization mode and returns it.
func (e *Engine) CycleMode() visual.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mapper.Cycle()
}

// Status snapshots the engine state for reporting.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, frames := e.recorder.Session()
	return Status{
		Mode:           e.mapper.Mode(),
		FaceFound:      e.faceFound,
		LeftState:      e.classifier.State(landmark.Left),
		RightState:     e.classifier.State(landmark.Right),
		GazeBucket:     e.classifier.Bucket(),
		Totals:         e.classifier.Totals(),
		Frame:          e.classifier.Frame(),
		Recording:      e.recorder.Active(),
		SessionID:      id,
		FramesRecorded: frames,
	}
}

// Reset clears classifier state, keeping mode and any active recording.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.classifier.Reset()
	e.faceFound = false
	e.mu.Unlock()
}

// Run consumes the queue until the context is cancelled, delivering each
// result to the sink. Adapt failures are logged inside ProcessFrame and do
// not stop the loop.
func (e *Engine) Run(ctx context.Context, queue *FrameQueue, sink Sink) error {
	log.Info("pipeline running", "queue_cap", queue.Cap(), "policy", queue.Policy())

	for {
		item, err := queue.Pop(ctx)
		if err != nil {
			return err
		}

		var res FrameResult
		if item.Miss || item.Frame == nil {
			res = e.ProcessMiss()
		} else {
			res, _ = e.ProcessFrame(item.Frame)
		}

		if sink != nil {
			sink(res)
		}
	}
}
