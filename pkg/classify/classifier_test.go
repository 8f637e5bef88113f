package classify

import (
	"testing"

	"github.com/oculab/go-ocular/pkg/landmark"
	"github.com/oculab/go-ocular/pkg/metrics"
)

// pairMetrics builds frame metrics with the given EARs and no iris data.
func pairMetrics(leftEAR, rightEAR float64) metrics.FrameMetrics {
	return metrics.FrameMetrics{
		Left:  metrics.EyeMetrics{EAR: leftEAR, EyebrowHeight: 0.6},
		Right: metrics.EyeMetrics{EAR: rightEAR, EyebrowHeight: 0.6},
	}
}

// withIris adds iris offsets to frame metrics.
func withIris(m metrics.FrameMetrics, dx, dy float64) metrics.FrameMetrics {
	m.Left.IrisOffset = metrics.Offset{DX: dx, DY: dy}
	m.Left.HasIris = true
	m.Right.IrisOffset = metrics.Offset{DX: dx, DY: dy}
	m.Right.HasIris = true
	return m
}

// rawConfig disables EAR smoothing so tests reason about raw sequences.
func rawConfig() Config {
	cfg := DefaultConfig()
	cfg.EARHistorySize = 1
	return cfg
}

// collect runs a bilateral EAR sequence and returns all events.
func collect(c *Classifier, ears []float64) []Event {
	var events []Event
	for _, e := range ears {
		events = append(events, c.Classify(pairMetrics(e, e))...)
	}
	return events
}

func TestDebounce_SingleNoisyFrameDoesNotFlip(t *testing.T) {
	c := New(rawConfig())

	// One isolated sub-threshold frame, not repeated.
	events := collect(c, []float64{0.30, 0.30, 0.12, 0.30, 0.30})

	if len(events) != 0 {
		t.Fatalf("Isolated noisy frame produced events: %v", events)
	}
	if c.State(landmark.Left) != Open {
		t.Error("Stable state flipped on a single noisy frame")
	}
}

func TestBlink_ConcreteScenario(t *testing.T) {
	c := New(rawConfig())

	// Two closed frames bracketed by opens, plus the trailing open frame
	// the symmetric debounce needs to commit the reopen.
	events := collect(c, []float64{0.30, 0.30, 0.12, 0.11, 0.30, 0.30})

	var starts, ends int
	for _, e := range events {
		switch e.Type {
		case BlinkStart:
			starts++
			if e.Frame != 4 {
				t.Errorf("BlinkStart at frame %d, want 4 (streak reaches 2 there)", e.Frame)
			}
		case BlinkEnd:
			ends++
		case WinkLeft, WinkRight:
			t.Errorf("Bilateral closure emitted a wink: %v", e)
		}
	}
	if starts != 1 || ends != 1 {
		t.Fatalf("Got %d BlinkStart / %d BlinkEnd, want exactly 1 each (events: %v)", starts, ends, events)
	}
	if got := c.Totals().Blinks; got != 1 {
		t.Errorf("Blink total = %d, want 1", got)
	}
}

func TestWink_LeftOnly(t *testing.T) {
	c := New(rawConfig())

	leftSeq := []float64{0.30, 0.10, 0.10, 0.10, 0.30, 0.30}
	var events []Event
	for _, l := range leftSeq {
		events = append(events, c.Classify(pairMetrics(l, 0.30))...)
	}

	var winks, blinks int
	for _, e := range events {
		switch e.Type {
		case WinkLeft:
			winks++
		case WinkRight:
			t.Errorf("Wrong side: %v", e)
		case BlinkStart, BlinkEnd:
			blinks++
		}
	}
	if winks != 1 {
		t.Errorf("WinkLeft count = %d, want 1 (events: %v)", winks, events)
	}
	if blinks != 0 {
		t.Errorf("Blink events = %d, want 0 (events: %v)", blinks, events)
	}
	if got := c.Totals().LeftWinks; got != 1 {
		t.Errorf("Left wink total = %d, want 1", got)
	}
}

func TestWink_StricterThresholdThanBlink(t *testing.T) {
	c := New(rawConfig())

	// 0.19 is below the blink threshold but above the wink threshold: a
	// unilateral closure this shallow must not register at all.
	for i := 0; i < 5; i++ {
		events := c.Classify(pairMetrics(0.19, 0.30))
		if len(events) != 0 {
			t.Fatalf("Shallow unilateral closure produced events: %v", events)
		}
	}
	if c.State(landmark.Left) != Open {
		t.Error("Shallow unilateral closure flipped state")
	}
}

func TestBlink_ExclusiveWithWinks(t *testing.T) {
	c := New(rawConfig())

	// Truly bilateral transition: exactly one event for the instant.
	events := collect(c, []float64{0.30, 0.10, 0.10})

	if len(events) != 1 || events[0].Type != BlinkStart {
		t.Fatalf("Bilateral transition events = %v, want exactly one BlinkStart", events)
	}
}

func TestBlink_RetroactiveCorrection(t *testing.T) {
	c := New(rawConfig())

	// Left leads by one frame; right follows inside the coincidence
	// window. The wink must stand corrected by a blink, never two winks
	// and never a double blink.
	frames := []struct{ l, r float64 }{
		{0.30, 0.30},
		{0.10, 0.30},
		{0.10, 0.10}, // left flips closed here -> wink
		{0.10, 0.10}, // right flips closed here -> correction
		{0.30, 0.30},
		{0.30, 0.30},
	}

	var events []Event
	for _, f := range frames {
		events = append(events, c.Classify(pairMetrics(f.l, f.r))...)
	}

	var winks, corrections, starts, ends int
	for _, e := range events {
		switch e.Type {
		case WinkLeft:
			winks++
		case BlinkStart:
			starts++
			if e.Correction {
				corrections++
			}
		case BlinkEnd:
			ends++
		}
	}

	if winks != 1 || starts != 1 || corrections != 1 || ends != 1 {
		t.Fatalf("winks=%d starts=%d corrections=%d ends=%d, want 1/1/1/1 (events: %v)",
			winks, starts, corrections, ends, events)
	}
	if tot := c.Totals(); tot.Blinks != 1 || tot.LeftWinks != 0 {
		t.Errorf("Totals = %+v, want 1 blink and the corrected wink withdrawn", tot)
	}
}

func TestGaze_SuppressedWhileClosed(t *testing.T) {
	c := New(rawConfig())

	// Close both eyes, then feed a hard-left iris offset.
	collect(c, []float64{0.30, 0.10, 0.10})

	for i := 0; i < 5; i++ {
		events := c.Classify(withIris(pairMetrics(0.10, 0.10), -0.9, 0))
		for _, e := range events {
			if e.Type == Gaze {
				t.Fatalf("Gaze event %v emitted while eyes closed", e)
			}
		}
	}
}

func TestGaze_BucketChange(t *testing.T) {
	cfg := rawConfig()
	cfg.GazeHistorySize = 1
	c := New(cfg)

	center := withIris(pairMetrics(0.30, 0.30), 0, 0)
	left := withIris(pairMetrics(0.30, 0.30), -0.5, 0)
	leftUp := withIris(pairMetrics(0.30, 0.30), -0.5, -0.5)

	var events []Event
	events = append(events, c.Classify(center)...) // center -> center: no event
	events = append(events, c.Classify(left)...)
	events = append(events, c.Classify(left)...) // unchanged: no event
	events = append(events, c.Classify(leftUp)...)
	events = append(events, c.Classify(center)...)

	want := []GazeBucket{GazeLeft, "left-up", GazeCenter}
	var got []GazeBucket
	for _, e := range events {
		if e.Type != Gaze {
			t.Fatalf("Unexpected non-gaze event %v", e)
		}
		got = append(got, e.Bucket)
	}

	if len(got) != len(want) {
		t.Fatalf("Gaze buckets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bucket %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEyebrowRaise(t *testing.T) {
	cfg := rawConfig()
	cfg.EyebrowWarmupFrames = 5
	c := New(cfg)

	neutral := pairMetrics(0.30, 0.30) // brow height 0.6
	raised := neutral
	raised.Left.EyebrowHeight = 0.85
	raised.Right.EyebrowHeight = 0.85

	var events []Event
	for i := 0; i < 10; i++ {
		events = append(events, c.Classify(neutral)...)
	}
	if len(events) != 0 {
		t.Fatalf("Neutral frames produced events: %v", events)
	}

	// Hold the raise: exactly one event despite many frames above delta.
	for i := 0; i < 10; i++ {
		events = append(events, c.Classify(raised)...)
	}
	var raises int
	for _, e := range events {
		if e.Type == EyebrowRaise {
			raises++
		}
	}
	if raises != 1 {
		t.Fatalf("EyebrowRaise count = %d, want 1 (events: %v)", raises, events)
	}

	// Return to neutral re-arms; a second raise fires again.
	for i := 0; i < 5; i++ {
		c.Classify(neutral)
	}
	events = nil
	for i := 0; i < 5; i++ {
		events = append(events, c.Classify(raised)...)
	}
	raises = 0
	for _, e := range events {
		if e.Type == EyebrowRaise {
			raises++
		}
	}
	if raises != 1 {
		t.Errorf("Re-armed EyebrowRaise count = %d, want 1", raises)
	}
}

func TestNoFace_PreservesStateThenResets(t *testing.T) {
	cfg := rawConfig()
	cfg.DropoutResetFrames = 5
	c := New(cfg)

	collect(c, []float64{0.30, 0.10, 0.10}) // close both eyes

	// Short dropout: state held.
	c.NoFace()
	c.NoFace()
	if c.State(landmark.Left) != Closed {
		t.Error("Short dropout cleared stable state")
	}

	// Long dropout: everything resets.
	for i := 0; i < 5; i++ {
		c.NoFace()
	}
	if c.State(landmark.Left) != Open {
		t.Error("Long dropout did not reset stable state")
	}
	if c.Totals().Blinks != 0 {
		t.Error("Long dropout did not clear totals")
	}
}

func TestSmoothing_RingMean(t *testing.T) {
	cfg := DefaultConfig() // history size 3
	c := New(cfg)

	// With a 3-frame mean, two closed readings after two open ones keep
	// the smoothed value above threshold: (0.30+0.12+0.12)/3 = 0.18 < 0.20
	// only on the second closed frame, so the flip needs one more frame
	// than in raw mode.
	events := collect(c, []float64{0.30, 0.30, 0.12, 0.12, 0.12, 0.12})

	var starts int
	for _, e := range events {
		if e.Type == BlinkStart {
			starts++
		}
	}
	if starts != 1 {
		t.Fatalf("Smoothed sequence BlinkStart count = %d, want 1 (events: %v)", starts, events)
	}
}

func TestDegenerateMetricSubstitution(t *testing.T) {
	c := New(rawConfig())

	c.Classify(pairMetrics(0.30, 0.30))

	// A degenerate reading must reuse the last good value, not flip state.
	bad := pairMetrics(9.5, 0.30)
	bad.Left.Degenerate = true
	for i := 0; i < 3; i++ {
		events := c.Classify(bad)
		if len(events) != 0 {
			t.Fatalf("Degenerate metric produced events: %v", events)
		}
	}
	if c.SmoothedEAR(landmark.Left) != 0.30 {
		t.Errorf("Smoothed EAR = %v, want last-known-good 0.30", c.SmoothedEAR(landmark.Left))
	}
}

func TestReset(t *testing.T) {
	c := New(rawConfig())
	collect(c, []float64{0.30, 0.10, 0.10, 0.30, 0.30})

	c.Reset()

	if c.Frame() != 0 || c.Totals().Blinks != 0 || c.State(landmark.Left) != Open {
		t.Error("Reset left residual state behind")
	}
}
