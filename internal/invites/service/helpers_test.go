package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock { return &clock{now: t0} }

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu        sync.Mutex
	notices   []InvitationNotice
	reminders []domain.Invitation
	failFor   map[string]bool // email -> fail
}

func (n *recordingNotifier) SendInvitation(_ context.Context, notice InvitationNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[notice.Invitation.Email] {
		return errors.New("smtp unavailable")
	}
	n.notices = append(n.notices, notice)
	return nil
}

func (n *recordingNotifier) SendExpiryReminder(_ context.Context, inv domain.Invitation) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[inv.Email] {
		return errors.New("smtp unavailable")
	}
	n.reminders = append(n.reminders, inv)
	return nil
}

// ticketFor pulls the raw ticket out of the last link sent to email.
func (n *recordingNotifier) ticketFor(t *testing.T, email string) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.notices) - 1; i >= 0; i-- {
		if n.notices[i].Invitation.Email == email {
			u, err := url.Parse(n.notices[i].AcceptURL)
			require.NoError(t, err)
			return u.Query().Get("ticket")
		}
	}
	t.Fatalf("no invitation sent to %s", email)
	return ""
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestService(t *testing.T) (*InvitationService, *recordingNotifier, *clock) {
	t.Helper()
	c := newClock()
	n := &recordingNotifier{failFor: map[string]bool{}}
	svc := &InvitationService{
		Store:         newTestStore(t),
		Notifier:      n,
		AcceptBaseURL: "https://app.example.com/accept",
		Now:           c.Now,
	}
	return svc, n, c
}

func issue(t *testing.T, svc *InvitationService, orgID string, resend bool, emails ...string) domain.IssueResult {
	t.Helper()
	items := make([]domain.IssueItem, 0, len(emails))
	for _, e := range emails {
		items = append(items, domain.IssueItem{Email: e, Role: "editor"})
	}
	res, err := svc.Issue(context.Background(), domain.IssueRequest{
		OrganizationID:   orgID,
		OrganizationName: "Acme",
		InvitedBy:        "user-admin",
		Invitations:      items,
		IsResend:         resend,
	})
	require.NoError(t, err)
	return res
}

var testLogger = slogx.Discard()
