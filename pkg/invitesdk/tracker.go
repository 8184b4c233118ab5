package invitesdk

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// DefaultPollInterval keeps expiry countdowns current without new events.
const DefaultPollInterval = 60 * time.Second

// ErrTrackerClosed is returned by Refresh after Close.
var ErrTrackerClosed = errors.New("invitesdk: tracker closed")

// PendingSource is the part of *Client a PendingTracker needs.
type PendingSource interface {
	ListPending(ctx context.Context, orgID string) (*ListPendingResponse, error)
	Cancel(ctx context.Context, orgID, invitationID string) error
	Resend(ctx context.Context, orgID, orgName, email, role string) (*SendInvitationsResponse, error)
}

// PendingTracker holds the last-fetched pending set of one organization.
//
// Refreshes may overlap (poll tick, change events, mutations). Each refresh
// takes a sequence number when it starts and its result is applied only if
// no newer refresh has been applied already, so the newest request wins and
// out-of-order completions are dropped.
type PendingTracker struct {
	src     PendingSource
	orgID   string
	orgName string

	// Interval between polls. Zero means DefaultPollInterval.
	Interval time.Duration

	// OnUpdate, if set, is called after a new set has been applied.
	OnUpdate func(pending []PendingInvitation)

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.RWMutex
	issued    uint64
	applied   uint64
	pending   []PendingInvitation
	byEmail   map[string]int
	fetchedAt time.Time
	err       error
	closed    bool
	started   bool

	// event-driven refresh in flight, and whether another is owed
	refreshing bool
	queued     bool

	wg       sync.WaitGroup
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewPendingTracker creates a tracker for orgID. orgName is passed on
// resends for the invitation email.
func NewPendingTracker(src PendingSource, orgID, orgName string) *PendingTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &PendingTracker{
		src:     src,
		orgID:   orgID,
		orgName: orgName,
		ctx:     ctx,
		cancel:  cancel,
		byEmail: map[string]int{},
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// OrganizationID returns the tracked organization.
func (t *PendingTracker) OrganizationID() string { return t.orgID }

// Start begins polling. The first refresh runs immediately.
func (t *PendingTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || t.started {
		return
	}
	t.started = true
	go t.poll()
}

func (t *PendingTracker) poll() {
	defer close(t.doneCh)

	interval := t.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	_ = t.Refresh(t.ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = t.Refresh(t.ctx)
		case <-t.stopCh:
			return
		}
	}
}

// Refresh fetches the pending set. The fetch is abandoned when either ctx
// or the tracker is closed. A failed fetch keeps the previous set and is
// reported by Err until a later refresh succeeds.
func (t *PendingTracker) Refresh(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTrackerClosed
	}
	t.issued++
	seq := t.issued
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.ctx, cancel)
	defer stop()

	resp, err := t.src.ListPending(ctx, t.orgID)

	t.mu.Lock()
	if t.closed || seq <= t.applied {
		t.mu.Unlock()
		return err
	}
	t.applied = seq
	if err != nil {
		t.err = err
		t.mu.Unlock()
		return err
	}

	t.err = nil
	t.fetchedAt = resp.FetchedAt
	t.pending = resp.Invitations
	t.byEmail = make(map[string]int, len(resp.Invitations))
	for i, inv := range resp.Invitations {
		t.byEmail[normalizeEmail(inv.Email)] = i
	}
	snapshot := append([]PendingInvitation(nil), t.pending...)
	onUpdate := t.OnUpdate
	t.mu.Unlock()

	if onUpdate != nil {
		onUpdate(snapshot)
	}
	return nil
}

// HandleChange schedules a refresh for a change event. It does not block;
// use it as a RealtimeListener callback. Bursts are coalesced: at most one
// event-driven refresh runs, and events arriving meanwhile queue one more.
func (t *PendingTracker) HandleChange(ev ChangeEvent) {
	if ev.OrganizationID != "" && ev.OrganizationID != t.orgID {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.refreshing {
		t.queued = true
		return
	}
	t.refreshing = true

	t.wg.Add(1)
	go t.drainChanges()
}

func (t *PendingTracker) drainChanges() {
	defer t.wg.Done()

	for {
		_ = t.Refresh(t.ctx)

		t.mu.Lock()
		if !t.queued || t.closed {
			t.refreshing, t.queued = false, false
			t.mu.Unlock()
			return
		}
		t.queued = false
		t.mu.Unlock()
	}
}

// Pending returns a copy of the last-fetched set.
func (t *PendingTracker) Pending() []PendingInvitation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]PendingInvitation(nil), t.pending...)
}

// FetchedAt is the server time of the last applied fetch.
func (t *PendingTracker) FetchedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fetchedAt
}

// Err returns the error of the newest applied refresh, or nil. When it is
// non-nil the set is stale, not empty.
func (t *PendingTracker) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// HasPendingInvitation reports whether email has a pending invitation in
// the last-fetched set. Emails match case-insensitively.
func (t *PendingTracker) HasPendingInvitation(email string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.byEmail[normalizeEmail(email)]
	return ok
}

// GetInvitationStatus returns the pending invitation for email, or nil when
// there is none.
func (t *PendingTracker) GetInvitationStatus(email string) *PendingInvitation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.byEmail[normalizeEmail(email)]
	if !ok {
		return nil
	}
	inv := t.pending[i]
	return &inv
}

// Cancel cancels an invitation and re-fetches the set. The set is
// re-fetched on failure too: a not_pending rejection means the cached row
// is already stale.
func (t *PendingTracker) Cancel(ctx context.Context, invitationID string) error {
	err := t.src.Cancel(ctx, t.orgID, invitationID)
	_ = t.Refresh(ctx)
	return err
}

// Resend re-issues an invitation and re-fetches the set. The set is
// re-fetched on failure too, since a partially failed resend may still have
// created the row.
func (t *PendingTracker) Resend(ctx context.Context, email, role string) (*SendInvitationsResponse, error) {
	resp, err := t.src.Resend(ctx, t.orgID, t.orgName, email, role)
	_ = t.Refresh(ctx)
	return resp, err
}

// Close stops polling, abandons in-flight refreshes and waits for them.
// No result is applied afterwards.
func (t *PendingTracker) Close() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		started := t.started
		t.mu.Unlock()

		t.cancel()
		close(t.stopCh)
		if started {
			<-t.doneCh
		}
	})

	t.wg.Wait()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
