package session

import (
	"context"
	"sync"
	"time"
)

// FrameCallback is invoked for each replayed frame. Return false to stop
// playback early.
type FrameCallback func(frame RecordedFrame) bool

// PlayOptions configures playback.
type PlayOptions struct {
	// Speed multiplier (1.0 = recorded pacing).
	Speed float64

	// Loop restarts from the first frame after the last.
	Loop bool
}

// DefaultPlayOptions returns normal single-pass playback.
func DefaultPlayOptions() PlayOptions {
	return PlayOptions{Speed: 1.0}
}

// Player replays a stored session at its recorded pacing. Playback is
// finite (unless looping), restartable, and deterministic: frames come back
// in capture order with their recorded contents untouched.
type Player struct {
	mu      sync.Mutex
	playing bool
	stopCh  chan struct{}
}

// NewPlayer creates an idle player.
func NewPlayer() *Player {
	return &Player{}
}

// Play replays the recording, calling fn once per frame at the session's
// nominal frame interval. Blocks until the last frame, cancellation, or an
// early stop. A second concurrent Play returns ErrAlreadyPlaying.
func (p *Player) Play(ctx context.Context, rec *Recording, fn FrameCallback) error {
	return p.PlayWithOptions(ctx, rec, fn, DefaultPlayOptions())
}

// PlayWithOptions replays with custom pacing options.
func (p *Player) PlayWithOptions(ctx context.Context, rec *Recording, fn FrameCallback, opts PlayOptions) error {
	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return ErrAlreadyPlaying
	}
	p.playing = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.playing = false
		p.mu.Unlock()
	}()

	if len(rec.Frames) == 0 {
		return nil
	}

	interval := rec.FrameInterval()
	if opts.Speed > 0 {
		interval = time.Duration(float64(interval) / opts.Speed)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	i := 0
	for {
		// Deliver before waiting so frame 0 plays immediately.
		if !fn(rec.Frames[i]) {
			return nil
		}
		i++
		if i >= len(rec.Frames) {
			if !opts.Loop {
				return nil
			}
			i = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
		}
	}
}

// StepThrough delivers every frame immediately, with no pacing and no
// player state. Intended for tests and offline analysis.
func StepThrough(rec *Recording, fn FrameCallback) {
	for _, f := range rec.Frames {
		if !fn(f) {
			return
		}
	}
}

// Stop halts an in-progress playback.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		close(p.stopCh)
		p.playing = false
	}
}

// Playing reports whether a playback is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
