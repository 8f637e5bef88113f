// Package classify turns noisy per-frame ocular metrics into stable discrete
// gesture events: eye-state transitions, blinks, winks, gaze-direction
// buckets and eyebrow raises.
//
// The classifier is purely reactive and frame-synchronous: one Classify call
// per frame, no background timers, no blocking. All mutable per-eye state
// lives in an explicit struct owned by the classifier and is cleared by
// Reset.
package classify

import (
	"github.com/oculab/go-ocular/pkg/landmark"
	"github.com/oculab/go-ocular/pkg/metrics"
)

// neutralEAR substitutes for a degenerate reading when no last-known-good
// value exists yet. It corresponds to a comfortably open eye.
const neutralEAR = 0.3

// eyeState is the per-eye debounce state.
type eyeState struct {
	stable       EyeState
	candidate    EyeState
	hasCandidate bool
	streak       int

	history  *ring
	smoothed float64
	hasEAR   bool
}

func newEyeState(historySize int) *eyeState {
	return &eyeState{history: newRing(historySize)}
}

// observe pushes a raw EAR and returns the new smoothed value.
func (e *eyeState) observe(ear float64) float64 {
	e.history.push(ear)
	e.smoothed = e.history.mean()
	e.hasEAR = true
	return e.smoothed
}

// debounce applies one raw classification and reports whether the stable
// state flipped this frame.
func (e *eyeState) debounce(raw EyeState, required int) bool {
	if raw == e.stable {
		e.hasCandidate = false
		e.streak = 0
		return false
	}

	if e.hasCandidate && raw == e.candidate {
		e.streak++
	} else {
		e.candidate = raw
		e.hasCandidate = true
		e.streak = 1
	}

	if e.streak < required {
		return false
	}

	e.stable = raw
	e.hasCandidate = false
	e.streak = 0
	return true
}

// pendingWink tracks a just-emitted wink awaiting a possible late partner
// closure that would reclassify it as a blink.
type pendingWink struct {
	active bool
	side   landmark.Side
	age    int
}

// Totals are cumulative gesture counts for the session. Closure counters
// track every debounced eye closure regardless of how the transition was
// classified.
type Totals struct {
	Blinks     int
	LeftWinks  int
	RightWinks int

	LeftClosures  int
	RightClosures int
}

// Classifier is the temporal state machine. One instance per tracking
// session; not safe for concurrent use (the pipeline is single-threaded per
// frame by design).
type Classifier struct {
	cfg   Config
	frame uint64

	left, right *eyeState

	pending     pendingWink
	blinkActive bool

	gazeHist   *ringVec
	lastBucket GazeBucket
	gazeDX     float64
	gazeDY     float64

	browBaseline float64
	browSamples  int
	browStreak   int
	browRaised   bool

	misses int
	totals Totals
}

// New creates a classifier with the given configuration.
func New(cfg Config) *Classifier {
	c := &Classifier{cfg: cfg}
	c.reset()
	return c
}

// Reset clears all per-eye and session state, keeping the configuration.
// Used when switching sessions or after a long detector dropout.
func (c *Classifier) Reset() {
	c.reset()
}

func (c *Classifier) reset() {
	c.frame = 0
	c.left = newEyeState(c.cfg.EARHistorySize)
	c.right = newEyeState(c.cfg.EARHistorySize)
	c.pending = pendingWink{}
	c.blinkActive = false
	c.gazeHist = newRingVec(c.cfg.GazeHistorySize)
	c.lastBucket = GazeCenter
	c.gazeDX, c.gazeDY = 0, 0
	c.browBaseline = 0
	c.browSamples = 0
	c.browStreak = 0
	c.browRaised = false
	c.misses = 0
	c.totals = Totals{}
}

// Classify consumes one frame's metrics and returns the events it produced.
// The returned slice is valid until the next call.
func (c *Classifier) Classify(m metrics.FrameMetrics) []Event {
	c.frame++
	c.misses = 0

	var events []Event

	lEAR := c.sanitize(c.left, m.Left)
	rEAR := c.sanitize(c.right, m.Right)

	lSmooth := c.left.observe(lEAR)
	rSmooth := c.right.observe(rEAR)

	lRaw, rRaw := c.rawStates(lSmooth, rSmooth)

	if c.pending.active {
		c.pending.age++
		if c.pending.age > c.cfg.CoincidenceFrames {
			c.pending = pendingWink{}
		}
	}

	lFlip := c.left.debounce(lRaw, c.cfg.ConsecutiveFrames)
	rFlip := c.right.debounce(rRaw, c.cfg.ConsecutiveFrames)

	events = c.resolveTransitions(events, lFlip, rFlip)
	events = c.updateGaze(events, m)
	events = c.updateEyebrow(events, m)

	return events
}

// NoFace records a frame where the detector found no face: no events, last
// stable state preserved. A dropout longer than DropoutResetFrames clears
// all state.
func (c *Classifier) NoFace() {
	c.frame++
	c.misses++
	if c.misses >= c.cfg.DropoutResetFrames {
		frame := c.frame
		c.reset()
		c.frame = frame
	}
}

// sanitize substitutes the last-known-good (or neutral) EAR for a degenerate
// reading. The caller reports the condition; this keeps the pipeline moving.
func (c *Classifier) sanitize(e *eyeState, m metrics.EyeMetrics) float64 {
	if !m.Degenerate {
		return m.EAR
	}
	if e.hasEAR {
		return e.smoothed
	}
	return neutralEAR
}

// rawStates classifies both smoothed EARs, applying the stricter wink
// threshold to a closure that is unilateral in this frame.
func (c *Classifier) rawStates(l, r float64) (EyeState, EyeState) {
	lClosed := l < c.cfg.BlinkThreshold
	rClosed := r < c.cfg.BlinkThreshold

	if lClosed && !rClosed {
		lClosed = l < c.cfg.WinkThreshold
	}
	if rClosed && !lClosed {
		rClosed = r < c.cfg.WinkThreshold
	}

	toState := func(closed bool) EyeState {
		if closed {
			return Closed
		}
		return Open
	}
	return toState(lClosed), toState(rClosed)
}

// resolveTransitions maps this frame's stable-state flips to blink and wink
// events. A bilateral simultaneous closure is a blink; a unilateral closure
// is a wink; a closure of the second eye within the coincidence window
// upgrades an already-emitted wink to a blink via a correction event, never
// a double report.
func (c *Classifier) resolveTransitions(events []Event, lFlip, rFlip bool) []Event {
	lClosed := lFlip && c.left.stable == Closed
	rClosed := rFlip && c.right.stable == Closed
	lOpened := lFlip && c.left.stable == Open
	rOpened := rFlip && c.right.stable == Open

	if lClosed {
		c.totals.LeftClosures++
	}
	if rClosed {
		c.totals.RightClosures++
	}

	switch {
	case lClosed && rClosed:
		events = append(events, Event{Type: BlinkStart, Frame: c.frame})
		c.blinkActive = true
		c.pending = pendingWink{}
		c.totals.Blinks++

	case lClosed || rClosed:
		side := landmark.Left
		otherStable := c.right.stable
		if rClosed {
			side = landmark.Right
			otherStable = c.left.stable
		}

		if otherStable == Closed {
			// Second eye of the pair. Within the window this corrects
			// the wink into a blink; after it, the pair still ends up
			// bilateral and we report the blink without correction.
			ev := Event{Type: BlinkStart, Frame: c.frame}
			if c.pending.active {
				ev.Correction = true
				if c.pending.side == landmark.Left {
					c.totals.LeftWinks--
				} else {
					c.totals.RightWinks--
				}
				c.pending = pendingWink{}
			}
			events = append(events, ev)
			c.blinkActive = true
			c.totals.Blinks++
		} else {
			ev := Event{Type: WinkLeft, Frame: c.frame}
			if side == landmark.Right {
				ev.Type = WinkRight
				c.totals.RightWinks++
			} else {
				c.totals.LeftWinks++
			}
			events = append(events, ev)
			c.pending = pendingWink{active: true, side: side}
		}
	}

	// A reopening of the winking eye withdraws the pending reclassification.
	if c.pending.active {
		if (c.pending.side == landmark.Left && lOpened) ||
			(c.pending.side == landmark.Right && rOpened) {
			c.pending = pendingWink{}
		}
	}

	if c.blinkActive && c.left.stable == Open && c.right.stable == Open {
		events = append(events, Event{Type: BlinkEnd, Frame: c.frame})
		c.blinkActive = false
	}

	return events
}

// updateGaze buckets the smoothed iris offset. Gaze is only evaluated while
// both eyes are stable-open with iris data; iris positions under a closed
// lid are meaningless and must not produce events.
func (c *Classifier) updateGaze(events []Event, m metrics.FrameMetrics) []Event {
	if c.left.stable != Open || c.right.stable != Open {
		return events
	}
	if !m.Left.HasIris || !m.Right.HasIris {
		return events
	}

	dx := (m.Left.IrisOffset.DX + m.Right.IrisOffset.DX) / 2
	dy := (m.Left.IrisOffset.DY + m.Right.IrisOffset.DY) / 2
	c.gazeHist.push(dx, dy)
	c.gazeDX, c.gazeDY = c.gazeHist.mean()

	bucket := c.bucketFor(c.gazeDX, c.gazeDY)
	if bucket != c.lastBucket {
		c.lastBucket = bucket
		events = append(events, Event{Type: Gaze, Frame: c.frame, Bucket: bucket})
	}
	return events
}

// bucketFor discretizes a smoothed offset into one of nine directions.
func (c *Classifier) bucketFor(dx, dy float64) GazeBucket {
	var h, v GazeBucket
	switch {
	case dx < -c.cfg.GazeBandH:
		h = GazeLeft
	case dx > c.cfg.GazeBandH:
		h = GazeRight
	}
	switch {
	case dy < -c.cfg.GazeBandV:
		v = GazeUp
	case dy > c.cfg.GazeBandV:
		v = GazeDown
	}

	switch {
	case h == "" && v == "":
		return GazeCenter
	case h == "":
		return v
	case v == "":
		return h
	default:
		return h + "-" + v
	}
}

// updateEyebrow maintains the slow neutral baseline and flags raises that
// exceed it by the configured delta. The baseline only learns from presumed
// neutral frames (both eyes open, no raise in progress) so a held raise
// cannot absorb itself into the baseline.
func (c *Classifier) updateEyebrow(events []Event, m metrics.FrameMetrics) []Event {
	h := (m.Left.EyebrowHeight + m.Right.EyebrowHeight) / 2
	neutral := c.left.stable == Open && c.right.stable == Open && !c.browRaised

	if c.browSamples < c.cfg.EyebrowWarmupFrames {
		if neutral {
			c.browSamples++
			// Uniform running mean during warmup, EMA afterwards.
			c.browBaseline += (h - c.browBaseline) / float64(c.browSamples)
		}
		return events
	}

	switch {
	case h > c.browBaseline+c.cfg.EyebrowRaiseDelta:
		if !c.browRaised {
			c.browStreak++
			if c.browStreak >= c.cfg.ConsecutiveFrames {
				c.browRaised = true
				c.browStreak = 0
				events = append(events, Event{Type: EyebrowRaise, Frame: c.frame})
			}
		}
	case h < c.browBaseline+c.cfg.EyebrowRaiseDelta/2:
		// Hysteresis: re-arm only once the brow is clearly back down.
		c.browRaised = false
		c.browStreak = 0
	default:
		c.browStreak = 0
	}

	if neutral {
		c.browBaseline += c.cfg.EyebrowBaselineAlpha * (h - c.browBaseline)
	}
	return events
}

// State returns the debounced state of one eye.
func (c *Classifier) State(s landmark.Side) EyeState {
	if s == landmark.Left {
		return c.left.stable
	}
	return c.right.stable
}

// SmoothedEAR returns the smoothed EAR for one eye.
func (c *Classifier) SmoothedEAR(s landmark.Side) float64 {
	if s == landmark.Left {
		return c.left.smoothed
	}
	return c.right.smoothed
}

// GazeOffset returns the smoothed gaze offset used for bucketing. The mode
// mapper drives pupil displacement from it.
func (c *Classifier) GazeOffset() (dx, dy float64) {
	return c.gazeDX, c.gazeDY
}

// Bucket returns the current gaze bucket.
func (c *Classifier) Bucket() GazeBucket {
	return c.lastBucket
}

// Totals returns cumulative gesture counts since the last reset.
func (c *Classifier) Totals() Totals {
	return c.totals
}

// Frame returns the number of frames consumed since the last reset.
func (c *Classifier) Frame() uint64 {
	return c.frame
}
