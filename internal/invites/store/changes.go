package store

import (
	"errors"
	"sync"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

var ErrFeedClosed = errors.New("store: change feed closed")

// subscriptionBuffer bounds how far a slow subscriber may fall behind before
// events are collapsed into a resync.
const subscriptionBuffer = 32

// ChangeFeed delivers invitation change events scoped to one organization.
type ChangeFeed interface {
	// Subscribe opens a subscription. The caller MUST Close it.
	Subscribe(orgID string) (*Subscription, error)
}

// Hub fans change events out to per-organization subscribers. Drivers own
// one and publish into it; sqlite after commit, postgres from LISTEN.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscription]struct{})}
}

// Subscription receives events on C until Close is called or the hub closes,
// at which point C is closed.
type Subscription struct {
	C <-chan domain.ChangeEvent

	ch    chan domain.ChangeEvent
	org   string
	hub   *Hub
	stale bool // guarded by hub.mu
}

func (h *Hub) Subscribe(orgID string) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrFeedClosed
	}

	ch := make(chan domain.ChangeEvent, subscriptionBuffer)
	sub := &Subscription{C: ch, ch: ch, org: orgID, hub: h}

	set, ok := h.subs[orgID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[orgID] = set
	}
	set[sub] = struct{}{}
	return sub, nil
}

// Publish delivers ev to the subscribers of ev.OrganizationID. A resync
// without an organization goes to everyone. Publish never blocks: a
// subscriber whose buffer is full gets a resync once it has room.
func (h *Hub) Publish(ev domain.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ev.Op == domain.ChangeResync && ev.OrganizationID == "" {
		for org, set := range h.subs {
			for sub := range set {
				sub.send(domain.ChangeEvent{Op: domain.ChangeResync, OrganizationID: org})
			}
		}
		return
	}

	for sub := range h.subs[ev.OrganizationID] {
		sub.send(ev)
	}
}

func (s *Subscription) send(ev domain.ChangeEvent) {
	if s.stale {
		select {
		case s.ch <- domain.ChangeEvent{Op: domain.ChangeResync, OrganizationID: s.org}:
			s.stale = false
		default:
			return
		}
	}
	select {
	case s.ch <- ev:
	default:
		s.stale = true
	}
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[s.org]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	if len(set) == 0 {
		delete(h.subs, s.org)
	}
	close(s.ch)
}

// Subscribers returns the number of open subscriptions for orgID.
func (h *Hub) Subscribers(orgID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[orgID])
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for sub := range set {
			close(sub.ch)
		}
	}
	h.subs = make(map[string]map[*Subscription]struct{})
}
