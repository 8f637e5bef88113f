package pipeline

import (
	"context"
	"sync"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/landmark"
)

// OverflowPolicy decides what a full frame queue does with new frames.
type OverflowPolicy string

const (
	// DropOldest evicts the oldest queued frame to make room. Suited to
	// live preview, where a fresh frame is worth more than a stale one.
	DropOldest OverflowPolicy = "dropOldest"

	// Block makes Push wait for room. Suited to offline processing, where
	// every frame must be seen.
	Block OverflowPolicy = "block"
)

// Valid reports whether p is a known policy.
func (p OverflowPolicy) Valid() bool {
	return p == DropOldest || p == Block
}

// Item is one queued unit of work. Miss marks a frame on which the
// detector found no face; Frame is nil for those.
type Item struct {
	Frame *landmark.Frame
	Miss  bool
}

// FrameQueue is the bounded handoff between frame producers and the engine
// loop. The policy is switchable at runtime without draining the queue.
type FrameQueue struct {
	ch chan Item

	mu     sync.Mutex
	policy OverflowPolicy

	dropped uint64
}

// NewFrameQueue creates a queue with the given capacity and policy.
func NewFrameQueue(size int, policy OverflowPolicy) *FrameQueue {
	if size <= 0 {
		size = 8
	}
	if !policy.Valid() {
		policy = DropOldest
	}
	return &FrameQueue{
		ch:     make(chan Item, size),
		policy: policy,
	}
}

// Policy returns the current overflow policy.
func (q *FrameQueue) Policy() OverflowPolicy {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.policy
}

// SetPolicy switches the overflow policy. Unknown policies are ignored.
func (q *FrameQueue) SetPolicy(p OverflowPolicy) {
	if !p.Valid() {
		return
	}
	q.mu.Lock()
	q.policy = p
	q.mu.Unlock()
}

// Push enqueues an item. Under DropOldest a full queue evicts its oldest
// entry; under Block it waits for room or context cancellation.
func (q *FrameQueue) Push(ctx context.Context, item Item) error {
	if q.Policy() == Block {
		select {
		case q.ch <- item:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case q.ch <- item:
			return nil
		default:
		}

		select {
		case <-q.ch:
			q.mu.Lock()
			q.dropped++
			n := q.dropped
			q.mu.Unlock()
			if n%100 == 1 {
				log.Warn("frame queue overflow, dropping oldest", "dropped_total", n)
			}
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Consumer drained the queue between our two selects; retry.
		}
	}
}

// Pop dequeues the next item, waiting for one or for cancellation.
func (q *FrameQueue) Pop(ctx context.Context) (Item, error) {
	select {
	case item := <-q.ch:
		return item, nil
	case <-ctx.Done():
		return Item{}, ctx.Err()
	}
}

// Len returns the number of queued items.
func (q *FrameQueue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *FrameQueue) Cap() int { return cap(q.ch) }

// Dropped returns the total number of frames evicted by DropOldest.
func (q *FrameQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
