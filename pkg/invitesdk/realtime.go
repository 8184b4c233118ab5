package invitesdk

import (
	"context"
	"sync"
	"time"
)

// Subscriber opens change streams. *Client implements it.
type Subscriber interface {
	Subscribe(ctx context.Context, orgID string) (*EventStream, error)
}

// RealtimeListener keeps one change stream open for the organization being
// watched and calls OnEvent for each event. A dropped stream is reopened
// with backoff, and a RESYNC event is delivered after every reconnect.
//
// The stream is only an invalidation signal. Pair it with a polling
// PendingTracker rather than relying on it alone.
type RealtimeListener struct {
	sub     Subscriber
	onEvent func(ChangeEvent)

	// MinBackoff and MaxBackoff bound the reconnect delay.
	MinBackoff time.Duration
	MaxBackoff time.Duration

	mu     sync.Mutex
	orgID  string
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRealtimeListener creates a listener that calls onEvent from its own
// goroutine. onEvent must not call Watch or Close.
func NewRealtimeListener(sub Subscriber, onEvent func(ChangeEvent)) *RealtimeListener {
	return &RealtimeListener{
		sub:        sub,
		onEvent:    onEvent,
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 30 * time.Second,
	}
}

// Watch switches the listener to orgID. The previous subscription is fully
// released before the new one is opened, so no event for the old
// organization is delivered after Watch returns. An empty orgID only
// releases.
func (l *RealtimeListener) Watch(orgID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.release()
	if orgID == "" {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.orgID, l.cancel, l.done = orgID, cancel, done

	go l.run(ctx, orgID, done)
}

// OrganizationID returns the organization being watched, or "".
func (l *RealtimeListener) OrganizationID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orgID
}

// Close releases the subscription and waits for the stream to shut down.
func (l *RealtimeListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.release()
}

// release must be called with l.mu held.
func (l *RealtimeListener) release() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.orgID, l.cancel, l.done = "", nil, nil
}

func (l *RealtimeListener) run(ctx context.Context, orgID string, done chan struct{}) {
	defer close(done)

	backoff := l.MinBackoff
	reconnect := false

	for {
		stream, err := l.sub.Subscribe(ctx, orgID)
		if err == nil {
			if reconnect {
				l.deliver(ctx, orgID, ChangeEvent{Op: OpResync, OrganizationID: orgID})
			}
			backoff = l.MinBackoff

			for ev := range stream.Events {
				l.deliver(ctx, orgID, ev)
			}
			stream.Close()
		}

		if ctx.Err() != nil {
			return
		}
		reconnect = true

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff = min(backoff*2, l.MaxBackoff)
	}
}

func (l *RealtimeListener) deliver(ctx context.Context, orgID string, ev ChangeEvent) {
	if ctx.Err() != nil {
		return
	}
	if ev.OrganizationID != "" && ev.OrganizationID != orgID {
		return
	}
	l.onEvent(ev)
}
