package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// memoryJobCapacity bounds the in-memory job queue.
	memoryJobCapacity = 256

	// memorySubCapacity buffers each subscriber before events are dropped.
	memorySubCapacity = 16
)

// memorySub is one subscription on a MemoryBus.
type memorySub struct {
	types map[Type]struct{}
	ch    chan Event
}

// MemoryBus is an in-process Bus implementation. It backs tests and
// single-binary setups where no Redis is available. Slow subscribers
// drop events rather than stall publishers.
type MemoryBus struct {
	mu         sync.RWMutex
	subs       map[*memorySub]struct{}
	jobs       chan InspectJob
	popTimeout time.Duration
	closed     bool
}

// NewMemoryBus creates an in-process event bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		subs:       make(map[*memorySub]struct{}),
		jobs:       make(chan InspectJob, memoryJobCapacity),
		popTimeout: 5 * time.Second,
	}
}

// Publish delivers an event to every subscription covering its type.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := event.IsValid(); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}

	for sub := range b.subs {
		if _, ok := sub.types[event.Type]; !ok {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			// Subscriber buffer full, drop the event
		}
	}

	return nil
}

// Subscribe creates a subscription to one or more event types.
func (b *MemoryBus) Subscribe(ctx context.Context, types ...Type) (<-chan Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("at least one event type is required")
	}

	sub := &memorySub{
		types: make(map[Type]struct{}, len(types)),
		ch:    make(chan Event, memorySubCapacity),
	}
	for _, t := range types {
		if !t.IsValid() {
			return nil, fmt.Errorf("unknown event type: %s", t)
		}
		sub.types[t] = struct{}{}
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, fmt.Errorf("bus is closed")
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	out := make(chan Event)

	go func() {
		defer close(out)
		defer func() {
			b.mu.Lock()
			delete(b.subs, sub)
			b.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-sub.ch:
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// PushJob adds an inspection job to the in-memory queue.
func (b *MemoryBus) PushJob(ctx context.Context, job InspectJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return fmt.Errorf("bus is closed")
	}

	select {
	case b.jobs <- job:
		return nil
	default:
		return fmt.Errorf("job queue full (capacity %d)", memoryJobCapacity)
	}
}

// PopJob removes and returns a job from the queue. Blocks until a job is
// available, the pop timeout elapses (returning a nil job), or the
// context is cancelled.
func (b *MemoryBus) PopJob(ctx context.Context) (*InspectJob, error) {
	b.mu.RLock()
	closed := b.closed
	timeout := b.popTimeout
	b.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("bus is closed")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-b.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Ping reports whether the bus is still open.
func (b *MemoryBus) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}
	return nil
}

// Close shuts the bus down. Pending subscriptions end when their
// contexts are cancelled.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}
