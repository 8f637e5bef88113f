package session

import (
	"errors"
	"testing"
	"time"

	"github.com/oculab/go-ocular/pkg/visual"
)

// fakeClock advances a fixed amount per reading via step().
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) step(d time.Duration) { c.t = c.t.Add(d) }

func testFrame(ear float64) RecordedFrame {
	return RecordedFrame{
		LeftEAR:    ear,
		RightEAR:   ear,
		LeftState:  "open",
		RightState: "open",
		Draw:       visual.Instruction{Mode: visual.Rectangles},
	}
}

func TestRecorder_DoubleStartRejected(t *testing.T) {
	r := NewRecorder(DefaultConfig())

	id, err := r.Start("")
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if id == "" {
		t.Error("Start did not generate a session id")
	}

	if _, err := r.Start("other"); !errors.Is(err, ErrRecordingActive) {
		t.Errorf("Second Start error = %v, want ErrRecordingActive", err)
	}
}

func TestRecorder_CaptureWithoutStart(t *testing.T) {
	r := NewRecorder(DefaultConfig())

	if _, err := r.Capture(testFrame(0.3)); !errors.Is(err, ErrNoRecording) {
		t.Errorf("Capture error = %v, want ErrNoRecording", err)
	}
	if _, err := r.Stop(); !errors.Is(err, ErrNoRecording) {
		t.Errorf("Stop error = %v, want ErrNoRecording", err)
	}
}

func TestRecorder_MonotonicIndicesAndTimestamps(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(DefaultConfig())
	r.now = clock.now

	if _, err := r.Start("mono"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		clock.step(40 * time.Millisecond)
		if _, err := r.Capture(testFrame(0.3)); err != nil {
			t.Fatalf("Capture %d failed: %v", i, err)
		}
	}

	rec, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(rec.Frames) != 20 {
		t.Fatalf("Frame count = %d, want 20", len(rec.Frames))
	}

	for i := 1; i < len(rec.Frames); i++ {
		if rec.Frames[i].FrameIndex != rec.Frames[i-1].FrameIndex+1 {
			t.Errorf("Frame index not strictly increasing at %d", i)
		}
		if rec.Frames[i].TimestampMs < rec.Frames[i-1].TimestampMs {
			t.Errorf("Timestamp regresses at %d", i)
		}
	}
}

func TestRecorder_PacingSkipsFastFrames(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cfg := DefaultConfig() // 30 fps -> 33.3ms interval
	r := NewRecorder(cfg)
	r.now = clock.now

	if _, err := r.Start("pace"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// 100 frames arriving every 10ms over 1s: pacing must keep ~30.
	for i := 0; i < 100; i++ {
		clock.step(10 * time.Millisecond)
		if _, err := r.Capture(testFrame(0.3)); err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}

	rec, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if n := len(rec.Frames); n < 24 || n > 31 {
		t.Errorf("Paced frame count = %d, want about 30", n)
	}
}

func TestRecorder_TruncationAtTimeCap(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	cfg := DefaultConfig()
	cfg.MaxRecordingTime = time.Second
	r := NewRecorder(cfg)
	r.now = clock.now

	if _, err := r.Start("cap"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var truncated *Recording
	for i := 0; i < 90; i++ {
		clock.step(time.Second / 30)
		rec, err := r.Capture(testFrame(0.3))
		if errors.Is(err, ErrRecordingTruncated) {
			truncated = rec
			break
		}
		if err != nil {
			t.Fatalf("Capture failed: %v", err)
		}
	}

	if truncated == nil {
		t.Fatal("Recording never truncated at the time cap")
	}
	// maxRecordingTimeMs=1000 at 30fps: 30 frames, give or take one.
	if n := len(truncated.Frames); n < 29 || n > 31 {
		t.Errorf("Truncated frame count = %d, want 30 +/- 1", n)
	}
	if err := Validate(truncated); err != nil {
		t.Errorf("Truncated artifact invalid: %v", err)
	}
	if r.Active() {
		t.Error("Recorder still active after truncation")
	}
}

func TestRecorder_StopTransfersBuffer(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	r := NewRecorder(DefaultConfig())
	r.now = clock.now

	if _, err := r.Start("handoff"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	clock.step(40 * time.Millisecond)
	if _, err := r.Capture(testFrame(0.3)); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	rec, err := r.Stop()
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if len(rec.Frames) != 1 {
		t.Fatalf("Frame count = %d, want 1", len(rec.Frames))
	}

	// A fresh recording must not see the old buffer.
	if _, err := r.Start("next"); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}
	next, err := r.Stop()
	if err != nil {
		t.Fatalf("Second stop failed: %v", err)
	}
	if len(next.Frames) != 0 {
		t.Errorf("New recording inherited %d frames", len(next.Frames))
	}
}
