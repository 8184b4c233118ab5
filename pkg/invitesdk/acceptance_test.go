package invitesdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeNavigator struct {
	path      string
	navigated []string
}

func (n *fakeNavigator) CurrentPath() string { return n.path }

func (n *fakeNavigator) Navigate(target string) { n.navigated = append(n.navigated, target) }

type fakeIdentity struct {
	outstanding []Invitation
	listErr     error
	acceptErr   error
	accepted    []string
}

func (f *fakeIdentity) Outstanding(context.Context) ([]Invitation, error) {
	return f.outstanding, f.listErr
}

func (f *fakeIdentity) AcceptInvitation(_ context.Context, id string) (*Invitation, error) {
	f.accepted = append(f.accepted, id)
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return &Invitation{ID: id, Status: "accepted"}, nil
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func newTestStash(clock *testClock) (*TicketStash, *MemorySessionStore) {
	store := NewMemorySessionStore()
	stash := NewTicketStash(store)
	stash.Now = clock.Now
	return stash, store
}

func TestTicketStash(t *testing.T) {
	t.Parallel()

	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	t.Run("single use", func(t *testing.T) {
		stash, _ := newTestStash(clock)
		require.NoError(t, stash.Put("abc"))

		ticket, err := stash.Take(MaxStashAge)
		require.NoError(t, err)
		require.Equal(t, "abc", ticket)

		_, err = stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrNoTicket)
	})

	t.Run("old ticket is cleared", func(t *testing.T) {
		c := &testClock{now: clock.now}
		stash, store := newTestStash(c)
		require.NoError(t, stash.Put("abc"))

		c.now = c.now.Add(11 * time.Minute)
		_, err := stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrStaleAcceptance)

		_, ok := store.Take(stash.Key)
		require.False(t, ok)
	})

	t.Run("ten minutes is already stale", func(t *testing.T) {
		c := &testClock{now: clock.now}
		stash, _ := newTestStash(c)
		require.NoError(t, stash.Put("abc"))

		c.now = c.now.Add(MaxStashAge)
		_, err := stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrStaleAcceptance)
	})

	t.Run("unreadable entry is cleared", func(t *testing.T) {
		stash, store := newTestStash(clock)
		store.Put(stash.Key, "{not json")

		_, err := stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrStaleAcceptance)
		_, err = stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrNoTicket)
	})

	t.Run("empty ticket", func(t *testing.T) {
		stash, _ := newTestStash(clock)
		require.ErrorIs(t, stash.Put(""), ErrNoTicket)
	})
}

func TestAcceptanceRedirectorStash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stale stash clears without navigating", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, store := newTestStash(clock)
		require.NoError(t, stash.Put("abc"))
		clock.now = clock.now.Add(11 * time.Minute)

		nav := &fakeNavigator{path: "/"}
		id := &fakeIdentity{}
		r := NewAcceptanceRedirector(id, nav, stash)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateIdle, state)
		require.Empty(t, nav.navigated)

		_, ok := store.Take(stash.Key)
		require.False(t, ok)
	})

	t.Run("cleared stash ends stash handling until next sign-in", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, _ := newTestStash(clock)
		require.NoError(t, stash.Put("old"))
		clock.now = clock.now.Add(11 * time.Minute)

		nav := &fakeNavigator{path: "/"}
		r := NewAcceptanceRedirector(&fakeIdentity{}, nav, stash)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateIdle, state)

		require.NoError(t, stash.Put("new"))
		require.Equal(t, StateIdle, r.CheckStash())
		require.Empty(t, nav.navigated)

		state, err = r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateRedirectingToAccept, state)
		require.Equal(t, []string{"/invitations/accept?ticket=new"}, nav.navigated)
	})

	t.Run("stale stash still allows auto-accept", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, _ := newTestStash(clock)
		require.NoError(t, stash.Put("old"))
		clock.now = clock.now.Add(11 * time.Minute)

		nav := &fakeNavigator{path: "/"}
		id := &fakeIdentity{outstanding: []Invitation{{ID: "inv-1", OrganizationID: "org-1"}}}
		r := NewAcceptanceRedirector(id, nav, stash)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateRedirecting, state)
		require.Equal(t, []string{"inv-1"}, id.accepted)
	})

	t.Run("fresh stash forwards ticket once", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, _ := newTestStash(clock)
		require.NoError(t, stash.Put("tk/1+2"))
		clock.now = clock.now.Add(9 * time.Minute)

		nav := &fakeNavigator{path: "/sign-in"}
		id := &fakeIdentity{outstanding: []Invitation{{ID: "inv-1", OrganizationID: "org-1"}}}
		r := NewAcceptanceRedirector(id, nav, stash)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateRedirectingToAccept, state)
		require.Equal(t, []string{"/invitations/accept?ticket=tk%2F1%2B2"}, nav.navigated)
		require.Empty(t, id.accepted)

		// terminal until the next sign-in
		require.NoError(t, stash.Put("another"))
		require.Equal(t, StateRedirectingToAccept, r.CheckStash())
		require.Len(t, nav.navigated, 1)
	})

	t.Run("already on accept page", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, _ := newTestStash(clock)
		require.NoError(t, stash.Put("abc"))

		nav := &fakeNavigator{path: "/invitations/accept/?ticket=abc"}
		r := NewAcceptanceRedirector(&fakeIdentity{}, nav, stash)

		require.Equal(t, StateIdle, r.CheckStash())
		require.Empty(t, nav.navigated)

		_, err := stash.Take(MaxStashAge)
		require.ErrorIs(t, err, ErrNoTicket)

		nav.path = "/"
		require.NoError(t, stash.Put("abc"))
		require.Equal(t, StateIdle, r.CheckStash())
		require.Empty(t, nav.navigated)
	})

	t.Run("check stash between sign-ins", func(t *testing.T) {
		clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
		stash, _ := newTestStash(clock)
		nav := &fakeNavigator{path: "/"}
		r := NewAcceptanceRedirector(&fakeIdentity{}, nav, stash)

		require.Equal(t, StateIdle, r.CheckStash())
		require.NoError(t, stash.Put("abc"))
		require.Equal(t, StateRedirectingToAccept, r.CheckStash())
		require.Len(t, nav.navigated, 1)

		r.Reset()
		require.Equal(t, StateIdle, r.State())
	})
}

func TestAcceptanceRedirectorAutoAccept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newRedirector := func(id *fakeIdentity, nav *fakeNavigator) *AcceptanceRedirector {
		stash, _ := newTestStash(&testClock{now: time.Now()})
		return NewAcceptanceRedirector(id, nav, stash)
	}

	t.Run("accepts only the first", func(t *testing.T) {
		id := &fakeIdentity{outstanding: []Invitation{
			{ID: "inv-1", OrganizationID: "org-1"},
			{ID: "inv-2", OrganizationID: "org-2"},
		}}
		nav := &fakeNavigator{path: "/"}
		r := newRedirector(id, nav)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateRedirecting, state)
		require.Equal(t, []string{"inv-1"}, id.accepted)
		require.Equal(t, []string{"/?invited=1&organization=org-1"}, nav.navigated)

		require.Equal(t, StateRedirecting, r.CheckStash())
		require.Len(t, id.accepted, 1)
	})

	t.Run("nothing outstanding", func(t *testing.T) {
		id := &fakeIdentity{}
		nav := &fakeNavigator{path: "/"}
		r := newRedirector(id, nav)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateIdle, state)
		require.Empty(t, nav.navigated)
	})

	t.Run("lost race with the sweeper is a no-op", func(t *testing.T) {
		lost := &MutationFailure{Op: "accept", InvitationID: "inv-1", Err: &APIError{
			StatusCode: 409,
			Code:       ErrorCodeNotPending,
		}}
		id := &fakeIdentity{
			outstanding: []Invitation{{ID: "inv-1", OrganizationID: "org-1"}},
			acceptErr:   lost,
		}
		nav := &fakeNavigator{path: "/"}
		r := newRedirector(id, nav)

		state, err := r.OnSignIn(ctx)
		require.NoError(t, err)
		require.Equal(t, StateIdle, state)
		require.Empty(t, nav.navigated)
	})

	t.Run("errors leave it idle", func(t *testing.T) {
		boom := errors.New("unavailable")

		id := &fakeIdentity{listErr: boom}
		r := newRedirector(id, &fakeNavigator{})
		state, err := r.OnSignIn(ctx)
		require.ErrorIs(t, err, boom)
		require.Equal(t, StateIdle, state)

		id = &fakeIdentity{outstanding: []Invitation{{ID: "inv-1"}}, acceptErr: boom}
		r = newRedirector(id, &fakeNavigator{})
		state, err = r.OnSignIn(ctx)
		require.ErrorIs(t, err, boom)
		require.Equal(t, StateIdle, state)
	})
}

type blockingIdentity struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingIdentity) Outstanding(ctx context.Context) ([]Invitation, error) {
	close(b.entered)
	<-b.release
	return []Invitation{{ID: "inv-1", OrganizationID: "org-1"}}, nil
}

func (b *blockingIdentity) AcceptInvitation(_ context.Context, id string) (*Invitation, error) {
	return &Invitation{ID: id, Status: "accepted"}, nil
}

func TestAcceptanceRedirectorUnlockedCalls(t *testing.T) {
	t.Parallel()

	newBlocked := func() (*AcceptanceRedirector, *blockingIdentity, *fakeNavigator) {
		id := &blockingIdentity{entered: make(chan struct{}), release: make(chan struct{})}
		nav := &fakeNavigator{path: "/"}
		stash, _ := newTestStash(&testClock{now: time.Now()})
		return NewAcceptanceRedirector(id, nav, stash), id, nav
	}

	t.Run("state readable during sign-in", func(t *testing.T) {
		r, id, nav := newBlocked()

		done := make(chan RedirectState, 1)
		go func() {
			state, _ := r.OnSignIn(context.Background())
			done <- state
		}()
		<-id.entered

		got := make(chan RedirectState, 1)
		go func() { got <- r.State() }()
		select {
		case state := <-got:
			require.Equal(t, StateIdle, state)
		case <-time.After(5 * time.Second):
			t.Fatal("State blocked on the identity provider")
		}

		close(id.release)
		require.Equal(t, StateRedirecting, <-done)
		require.Len(t, nav.navigated, 1)
	})

	t.Run("reset abandons an in-flight sign-in", func(t *testing.T) {
		r, id, nav := newBlocked()

		done := make(chan RedirectState, 1)
		go func() {
			state, _ := r.OnSignIn(context.Background())
			done <- state
		}()
		<-id.entered

		r.Reset()
		close(id.release)
		require.Equal(t, StateIdle, <-done)
		require.Empty(t, nav.navigated)
	})
}
