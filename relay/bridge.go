// Package relay carries readings from the blocking ingest side to the
// subscriber fan-out side.
package relay

import (
	"context"
	"sync"

	"github.com/espstream/touchrelay/protocol"
)

// Event is one bridge entry: either a Reading or a terminal ingest error.
// Exactly one of the fields is set.
type Event struct {
	Reading *protocol.Reading
	Err     error
}

// Bridge is the ordered, unbounded handoff queue between the ingest worker
// goroutine and the broadcaster. Single producer, single consumer. Put never
// blocks; Get suspends until an item arrives or the context is cancelled.
type Bridge struct {
	mu     sync.Mutex
	items  []Event
	failed bool
	wake   chan struct{}
}

func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

// Put enqueues a Reading. It returns immediately regardless of consumer
// progress.
func (b *Bridge) Put(r *protocol.Reading) {
	b.push(Event{Reading: r})
}

// Fail enqueues the terminal ingest error. Only the first call per bridge
// has any effect; the ingest worker signals failure at most once and then
// terminates.
func (b *Bridge) Fail(err error) {
	b.mu.Lock()
	if b.failed {
		b.mu.Unlock()
		return
	}
	b.failed = true
	b.mu.Unlock()
	b.push(Event{Err: err})
}

func (b *Bridge) push(ev Event) {
	b.mu.Lock()
	b.items = append(b.items, ev)
	b.mu.Unlock()

	// Wake the consumer if it is parked. The 1-slot channel coalesces
	// signals; the consumer drains the queue before parking again.
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// Get returns the oldest queued event, suspending until one is available.
// It returns ctx.Err() once the context is cancelled.
func (b *Bridge) Get(ctx context.Context) (Event, error) {
	for {
		b.mu.Lock()
		if len(b.items) > 0 {
			ev := b.items[0]
			b.items = b.items[1:]
			b.mu.Unlock()
			return ev, nil
		}
		b.mu.Unlock()

		select {
		case <-b.wake:
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// Len reports the number of queued events.
func (b *Bridge) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
