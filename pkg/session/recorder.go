package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oculab/go-ocular/internal/log"
)

// Recorder buffers per-frame data into a session. Capture is paced to the
// configured target fps regardless of how fast frames arrive, so recorded
// artifacts have a reproducible timeline.
//
// Stop hands the frame buffer off to the caller; the recorder never holds
// its lock across serialization or I/O.
type Recorder struct {
	cfg Config

	mu     sync.Mutex
	active *recState

	// now is the clock, injectable for tests.
	now func() time.Time
}

// recState is the in-progress recording owned by the recorder until Stop.
type recState struct {
	sessionID string
	startedAt time.Time
	lastAt    time.Time
	captured  bool

	nextIndex uint64
	lastTsMs  int64

	frames []RecordedFrame
}

// NewRecorder creates a recorder with the given configuration.
func NewRecorder(cfg Config) *Recorder {
	if cfg.TargetFPS <= 0 {
		cfg.TargetFPS = DefaultConfig().TargetFPS
	}
	return &Recorder{cfg: cfg, now: time.Now}
}

// Start begins a new recording. An empty sessionID gets a generated one.
// Returns the session id in use, or ErrRecordingActive.
func (r *Recorder) Start(sessionID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return "", ErrRecordingActive
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.active = &recState{
		sessionID: sessionID,
		startedAt: r.now(),
	}
	log.Info("recording started", "session", sessionID, "fps", r.cfg.TargetFPS)
	return sessionID, nil
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

// Session returns the active session id and captured frame count, or
// ("", 0) when idle.
func (r *Recorder) Session() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return "", 0
	}
	return r.active.sessionID, len(r.active.frames)
}

// Capture appends one frame, subject to pacing. Frames arriving faster than
// the target interval are skipped silently; that is the pacing contract, not
// a fault. When the session exceeds the time cap the recording auto-stops:
// Capture finalizes it internally and returns ErrRecordingTruncated together
// with the finalized recording.
func (r *Recorder) Capture(frame RecordedFrame) (*Recording, error) {
	r.mu.Lock()

	st := r.active
	if st == nil {
		r.mu.Unlock()
		return nil, ErrNoRecording
	}

	now := r.now()

	if now.Sub(st.startedAt) > r.cfg.MaxRecordingTime {
		rec := r.finalizeLocked()
		r.mu.Unlock()
		log.Warn("recording truncated",
			"session", rec.SessionID, "frames", len(rec.Frames),
			"cap", r.cfg.MaxRecordingTime)
		return rec, ErrRecordingTruncated
	}

	interval := time.Duration(float64(time.Second) / r.cfg.TargetFPS)
	if st.captured && now.Sub(st.lastAt) < interval {
		r.mu.Unlock()
		return nil, nil
	}

	// The recorder owns indices and timestamps: indices are issued
	// strictly increasing, timestamps clamped monotonically non-decreasing
	// even if the wall clock steps backwards.
	frame.FrameIndex = st.nextIndex
	st.nextIndex++

	ts := now.Sub(st.startedAt).Milliseconds()
	if ts < st.lastTsMs {
		ts = st.lastTsMs
	}
	frame.TimestampMs = ts
	st.lastTsMs = ts

	st.frames = append(st.frames, frame)
	st.lastAt = now
	st.captured = true

	r.mu.Unlock()
	return nil, nil
}

// Stop finalizes the active recording and transfers ownership of the frame
// buffer to the returned Recording.
func (r *Recorder) Stop() (*Recording, error) {
	r.mu.Lock()
	if r.active == nil {
		r.mu.Unlock()
		return nil, ErrNoRecording
	}
	rec := r.finalizeLocked()
	r.mu.Unlock()

	log.Info("recording stopped",
		"session", rec.SessionID, "frames", len(rec.Frames),
		"duration_ms", rec.DurationMs)
	return rec, nil
}

// finalizeLocked detaches the active state into a Recording. Caller holds mu.
func (r *Recorder) finalizeLocked() *Recording {
	st := r.active
	r.active = nil

	return &Recording{
		SessionID:  st.sessionID,
		FPS:        r.cfg.TargetFPS,
		DurationMs: st.lastTsMs,
		Resolution: r.cfg.Resolution,
		Frames:     st.frames,
	}
}
