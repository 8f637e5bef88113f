package pipeline

import (
	"context"
	"testing"
	"time"
)

func TestQueue_DropOldest(t *testing.T) {
	q := NewFrameQueue(2, DropOldest)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := q.Push(ctx, Item{Frame: syntheticFrame(float64(i)/10, 0.3)}); err != nil {
			t.Fatalf("Push %d failed: %v", i, err)
		}
	}

	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
	if q.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", q.Dropped())
	}

	// The survivors are the two newest items.
	first, err := q.Pop(ctx)
	if err != nil {
		t.Fatalf("Pop failed: %v", err)
	}
	if first.Frame == nil {
		t.Fatal("Popped item has no frame")
	}
}

func TestQueue_BlockWaitsForRoom(t *testing.T) {
	q := NewFrameQueue(1, Block)
	ctx := context.Background()

	if err := q.Push(ctx, Item{Miss: true}); err != nil {
		t.Fatalf("First push failed: %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- q.Push(ctx, Item{Miss: true})
	}()

	select {
	case err := <-pushed:
		t.Fatalf("Push should have blocked, returned %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if _, err := q.Pop(ctx); err != nil {
		t.Fatalf("Pop failed: %v", err)
	}

	select {
	case err := <-pushed:
		if err != nil {
			t.Errorf("Blocked push failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Push did not unblock after Pop")
	}
}

func TestQueue_BlockPushCancellable(t *testing.T) {
	q := NewFrameQueue(1, Block)
	ctx, cancel := context.WithCancel(context.Background())

	if err := q.Push(ctx, Item{Miss: true}); err != nil {
		t.Fatalf("First push failed: %v", err)
	}

	pushed := make(chan error, 1)
	go func() {
		pushed <- q.Push(ctx, Item{Miss: true})
	}()

	cancel()
	select {
	case err := <-pushed:
		if err != context.Canceled {
			t.Errorf("Push returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Push did not return after cancel")
	}
}

func TestQueue_PolicySwitch(t *testing.T) {
	q := NewFrameQueue(1, Block)

	if q.Policy() != Block {
		t.Fatalf("Policy = %v, want %v", q.Policy(), Block)
	}

	q.SetPolicy(DropOldest)
	if q.Policy() != DropOldest {
		t.Errorf("Policy = %v, want %v", q.Policy(), DropOldest)
	}

	q.SetPolicy("bogus")
	if q.Policy() != DropOldest {
		t.Errorf("Unknown policy accepted: %v", q.Policy())
	}

	// After the switch a full queue no longer blocks producers.
	ctx := context.Background()
	if err := q.Push(ctx, Item{Miss: true}); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := q.Push(ctx, Item{Miss: true}); err != nil {
		t.Fatalf("Push after policy switch failed: %v", err)
	}
}

func TestQueue_PopCancellable(t *testing.T) {
	q := NewFrameQueue(1, Block)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := q.Pop(ctx); err != context.Canceled {
		t.Errorf("Pop returned %v, want context.Canceled", err)
	}
}
