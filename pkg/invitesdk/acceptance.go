package invitesdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

// MaxStashAge is how long a stashed ticket stays usable.
const MaxStashAge = 10 * time.Minute

// ============================================================================
// TicketStash
// ============================================================================

// SessionStore is per-session key/value storage surviving a sign-in
// redirect. Take must read and delete in one step.
type SessionStore interface {
	Put(key, value string)
	Take(key string) (string, bool)
}

// MemorySessionStore is an in-memory SessionStore.
type MemorySessionStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{values: map[string]string{}}
}

func (s *MemorySessionStore) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemorySessionStore) Take(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	delete(s.values, key)
	return v, ok
}

type stashedTicket struct {
	Ticket    string    `json:"ticket"`
	StashedAt time.Time `json:"stashedAt"`
}

// TicketStash carries an acceptance ticket across the sign-in redirect as a
// single-use token with a timestamp.
type TicketStash struct {
	Store SessionStore
	Key   string
	Now   func() time.Time
}

// NewTicketStash creates a stash under the default key.
func NewTicketStash(store SessionStore) *TicketStash {
	return &TicketStash{Store: store, Key: "invitesdk.ticket"}
}

func (s *TicketStash) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Put stashes ticket, replacing anything stashed before.
func (s *TicketStash) Put(ticket string) error {
	if ticket == "" {
		return ErrNoTicket
	}
	b, err := json.Marshal(stashedTicket{Ticket: ticket, StashedAt: s.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to encode ticket: %w", err)
	}
	s.Store.Put(s.Key, string(b))
	return nil
}

// Take removes the stashed ticket and returns it if it is younger than
// maxAge. The stash is empty afterwards whatever the outcome: an
// unreadable or old entry yields ErrStaleAcceptance, an empty stash
// ErrNoTicket.
func (s *TicketStash) Take(maxAge time.Duration) (string, error) {
	raw, ok := s.Store.Take(s.Key)
	if !ok {
		return "", ErrNoTicket
	}

	var st stashedTicket
	if err := json.Unmarshal([]byte(raw), &st); err != nil || st.Ticket == "" {
		return "", ErrStaleAcceptance
	}
	if s.now().Sub(st.StashedAt) >= maxAge {
		return "", ErrStaleAcceptance
	}
	return st.Ticket, nil
}

// ============================================================================
// AcceptanceRedirector
// ============================================================================

// RedirectState is the state of an AcceptanceRedirector.
type RedirectState string

const (
	StateIdle                RedirectState = "idle"
	StateAutoAccepting       RedirectState = "auto-accepting"
	StateRedirecting         RedirectState = "redirecting"
	StateRedirectingToAccept RedirectState = "redirecting-to-accept"
)

// IdentityProvider reports and accepts the signed-in user's invitations.
// *Client implements it.
type IdentityProvider interface {
	Outstanding(ctx context.Context) ([]Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID string) (*Invitation, error)
}

// Navigator is the host application's router.
type Navigator interface {
	CurrentPath() string
	Navigate(target string)
}

// AcceptanceRedirector completes at most one invitation acceptance per
// sign-in. A stashed ticket is forwarded to AcceptPath; otherwise the first
// outstanding invitation is accepted and the user is sent to LandingPath
// with LandingFlag set. Once it has navigated, or has cleared a stash it
// could not use, it does nothing more until the next OnSignIn.
type AcceptanceRedirector struct {
	Identity  IdentityProvider
	Navigator Navigator
	Stash     *TicketStash

	AcceptPath  string
	LandingPath string
	LandingFlag string
	MaxStashAge time.Duration

	mu    sync.Mutex
	state RedirectState
	done  bool
	gen   uint64 // bumped per sign-in and Reset; stale runs drop their result
}

// NewAcceptanceRedirector creates a redirector with the default paths.
func NewAcceptanceRedirector(identity IdentityProvider, nav Navigator, stash *TicketStash) *AcceptanceRedirector {
	return &AcceptanceRedirector{
		Identity:    identity,
		Navigator:   nav,
		Stash:       stash,
		AcceptPath:  "/invitations/accept",
		LandingPath: "/",
		LandingFlag: "invited",
		MaxStashAge: MaxStashAge,
		state:       StateIdle,
	}
}

// State returns the current state.
func (r *AcceptanceRedirector) State() RedirectState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Reset returns to idle, e.g. on sign-out. A sign-in still in flight will
// not navigate.
func (r *AcceptanceRedirector) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state, r.done = StateIdle, false
}

// OnSignIn runs the redirector for a new sign-in. A stashed ticket takes
// precedence over outstanding invitations. Failures leave the redirector
// idle; an invitation that is no longer pending is skipped without error.
// The identity provider is called without holding the redirector's lock.
func (r *AcceptanceRedirector) OnSignIn(ctx context.Context) (RedirectState, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state, r.done = StateIdle, false
	if r.checkStash() {
		state := r.state
		r.mu.Unlock()
		return state, nil
	}
	r.mu.Unlock()

	outstanding, err := r.Identity.Outstanding(ctx)
	if err != nil {
		return r.settle(gen, StateIdle), fmt.Errorf("failed to list outstanding invitations: %w", err)
	}
	if len(outstanding) == 0 {
		return r.settle(gen, StateIdle), nil
	}

	first := outstanding[0]
	if !r.transition(gen, StateIdle, StateAutoAccepting) {
		return r.State(), nil
	}

	if _, err := r.Identity.AcceptInvitation(ctx, first.ID); err != nil {
		state := r.settle(gen, StateIdle)
		if IsNotPending(err) {
			return state, nil
		}
		return state, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen || r.state != StateAutoAccepting {
		return r.state, nil
	}

	q := url.Values{}
	q.Set(r.LandingFlag, "1")
	q.Set("organization", first.OrganizationID)
	r.Navigator.Navigate(r.LandingPath + "?" + q.Encode())
	r.state, r.done = StateRedirecting, true
	return r.state, nil
}

// transition moves from one state to another if the sign-in gen is still
// current and nothing else has moved the redirector meanwhile.
func (r *AcceptanceRedirector) transition(gen uint64, from, to RedirectState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen || r.state != from {
		return false
	}
	r.state = to
	return true
}

// settle sets state when gen is still current, and returns the state.
func (r *AcceptanceRedirector) settle(gen uint64, state RedirectState) RedirectState {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen == gen && r.state == StateAutoAccepting {
		r.state = state
	}
	return r.state
}

// CheckStash forwards a stashed ticket to the acceptance page. It is meant
// for page loads between sign-ins and is a no-op once the redirector has
// navigated or cleared a stash.
func (r *AcceptanceRedirector) CheckStash() RedirectState {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.done {
		r.checkStash()
	}
	return r.state
}

// checkStash must be called with r.mu held. It reports whether it
// navigated. Clearing an unusable stash ends the session's stash handling.
func (r *AcceptanceRedirector) checkStash() bool {
	if r.Stash == nil {
		return false
	}
	ticket, err := r.Stash.Take(r.MaxStashAge)
	if errors.Is(err, ErrNoTicket) {
		return false
	}
	if err != nil || r.onAcceptPage() {
		r.done = true
		return false
	}

	q := url.Values{}
	q.Set("ticket", ticket)
	r.Navigator.Navigate(r.AcceptPath + "?" + q.Encode())
	r.state, r.done = StateRedirectingToAccept, true
	return true
}

func (r *AcceptanceRedirector) onAcceptPage() bool {
	current := r.Navigator.CurrentPath()
	if u, err := url.Parse(current); err == nil {
		current = u.Path
	}
	return strings.TrimSuffix(current, "/") == strings.TrimSuffix(r.AcceptPath, "/")
}
