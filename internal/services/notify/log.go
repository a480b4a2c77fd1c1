package notify

import (
	"context"
	"log"
	"sync"
)

// LogDispatcher writes events to the process log. It is the fallback when no
// broker is configured.
type LogDispatcher struct{}

// Dispatch logs one event.
func (LogDispatcher) Dispatch(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Printf("notify: recipient=%s type=%s entity=%s", event.RecipientID, event.Type, event.EntityID)
	return nil
}

// MemoryDispatcher records events for test assertions.
type MemoryDispatcher struct {
	mu     sync.Mutex
	events []Event

	// FailWith, when set, is returned from every Dispatch call.
	FailWith error
}

// Dispatch records one event.
func (d *MemoryDispatcher) Dispatch(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailWith != nil {
		return d.FailWith
	}
	d.events = append(d.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (d *MemoryDispatcher) Events() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

var (
	_ Dispatcher = LogDispatcher{}
	_ Dispatcher = (*MemoryDispatcher)(nil)
)
