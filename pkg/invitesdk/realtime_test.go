package invitesdk

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	orgID  string
	stream *EventStream
	in     chan ChangeEvent
}

func (s *fakeStream) released() bool {
	select {
	case <-s.stream.done:
		return true
	default:
		return false
	}
}

type fakeSubscriber struct {
	mu       sync.Mutex
	failures int
	opened   chan *fakeStream
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{opened: make(chan *fakeStream, 16)}
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, orgID string) (*EventStream, error) {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return nil, errors.New("connection refused")
	}
	f.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	in := make(chan ChangeEvent)
	out := make(chan ChangeEvent)
	s := &EventStream{Events: out, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		defer close(out)
		for {
			select {
			case ev, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	fs := &fakeStream{orgID: orgID, stream: s, in: in}
	f.opened <- fs
	return s, nil
}

func nextStream(t *testing.T, f *fakeSubscriber) *fakeStream {
	t.Helper()
	select {
	case s := <-f.opened:
		return s
	case <-time.After(5 * time.Second):
		t.Fatal("no subscription opened")
		return nil
	}
}

func nextEvent(t *testing.T, ch <-chan ChangeEvent) ChangeEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("no event delivered")
		return ChangeEvent{}
	}
}

func newTestListener(sub Subscriber) (*RealtimeListener, chan ChangeEvent) {
	events := make(chan ChangeEvent, 16)
	l := NewRealtimeListener(sub, func(ev ChangeEvent) { events <- ev })
	l.MinBackoff = time.Millisecond
	l.MaxBackoff = 5 * time.Millisecond
	return l, events
}

func TestRealtimeListenerDelivers(t *testing.T) {
	t.Parallel()

	sub := newFakeSubscriber()
	l, events := newTestListener(sub)
	defer l.Close()

	l.Watch("org-1")
	s := nextStream(t, sub)
	require.Equal(t, "org-1", s.orgID)
	require.Equal(t, "org-1", l.OrganizationID())

	s.in <- ChangeEvent{Op: OpInsert, OrganizationID: "org-2", InvitationID: "x"}
	s.in <- ChangeEvent{Op: OpInsert, OrganizationID: "org-1", InvitationID: "inv-1"}
	s.in <- ChangeEvent{Op: OpDelete, OrganizationID: "org-1", InvitationID: "inv-1"}

	require.Equal(t, "inv-1", nextEvent(t, events).InvitationID)
	require.Equal(t, OpDelete, nextEvent(t, events).Op)
}

func TestRealtimeListenerWatchSwitch(t *testing.T) {
	t.Parallel()

	sub := newFakeSubscriber()
	l, events := newTestListener(sub)
	defer l.Close()

	l.Watch("org-1")
	first := nextStream(t, sub)

	l.Watch("org-2")
	require.True(t, first.released())

	second := nextStream(t, sub)
	require.Equal(t, "org-2", second.orgID)
	second.in <- ChangeEvent{Op: OpUpdate, OrganizationID: "org-2", InvitationID: "inv-2"}
	ev := nextEvent(t, events)
	require.Equal(t, "org-2", ev.OrganizationID)

	l.Watch("")
	require.True(t, second.released())
	require.Equal(t, "", l.OrganizationID())
}

func TestRealtimeListenerClose(t *testing.T) {
	t.Parallel()

	sub := newFakeSubscriber()
	l, events := newTestListener(sub)

	l.Watch("org-1")
	s := nextStream(t, sub)

	l.Close()
	require.True(t, s.released())
	l.Close()

	select {
	case ev := <-events:
		t.Fatalf("unexpected event after close: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
	require.Empty(t, sub.opened)
}

func TestRealtimeListenerReconnect(t *testing.T) {
	t.Parallel()

	t.Run("dropped stream resyncs", func(t *testing.T) {
		sub := newFakeSubscriber()
		l, events := newTestListener(sub)
		defer l.Close()

		l.Watch("org-1")
		first := nextStream(t, sub)
		close(first.in)

		second := nextStream(t, sub)
		require.Equal(t, "org-1", second.orgID)
		require.Equal(t, ChangeEvent{Op: OpResync, OrganizationID: "org-1"}, nextEvent(t, events))
	})

	t.Run("failed subscribe retries", func(t *testing.T) {
		sub := newFakeSubscriber()
		sub.failures = 2
		l, events := newTestListener(sub)
		defer l.Close()

		l.Watch("org-1")
		nextStream(t, sub)
		require.Equal(t, OpResync, nextEvent(t, events).Op)
	})
}
