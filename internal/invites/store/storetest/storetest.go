// Package storetest is a contract suite every store driver runs from its
// own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/pkg/cryptox"
	"github.com/aussiebroadwan/brandhub/pkg/idx"
)

// Factory returns a migrated, empty store. Cleanup is the factory's job.
type Factory func(t *testing.T) store.Store

// Base is the fixed clock the suite works against.
var Base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// NewInvitation builds a pending invitation created at Base.
func NewInvitation(orgID, email string, ttl time.Duration) domain.Invitation {
	_, fingerprint, err := cryptox.NewTicket()
	if err != nil {
		panic(err)
	}
	return domain.Invitation{
		ID:             idx.New().String(),
		OrganizationID: orgID,
		Email:          email,
		Role:           domain.RoleEditor,
		InvitedBy:      "user-admin",
		Status:         domain.StatusPending,
		TicketHash:     fingerprint,
		CreatedAt:      Base,
		ExpiresAt:      Base.Add(ttl),
	}
}

// Run exercises the store.Store contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, newStore(t)) })
	t.Run("DuplicateTicket", func(t *testing.T) { testDuplicateTicket(t, newStore(t)) })
	t.Run("ListPending", func(t *testing.T) { testListPending(t, newStore(t)) })
	t.Run("Cancel", func(t *testing.T) { testCancel(t, newStore(t)) })
	t.Run("Accept", func(t *testing.T) { testAccept(t, newStore(t)) })
	t.Run("Sweep", func(t *testing.T) { testSweep(t, newStore(t)) })
	t.Run("ExpiringSoon", func(t *testing.T) { testExpiringSoon(t, newStore(t)) })
	t.Run("Outstanding", func(t *testing.T) { testOutstanding(t, newStore(t)) })
	t.Run("Members", func(t *testing.T) { testMembers(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
}

func testCreateAndGet(t *testing.T, s store.Store) {
	ctx := context.Background()

	inv := NewInvitation("org-1", "Ada@Example.com", 48*time.Hour)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	got, err := s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", got.Email)
	require.Equal(t, domain.StatusPending, got.Status)
	require.Equal(t, domain.RoleEditor, got.Role)
	require.True(t, got.ExpiresAt.Equal(inv.ExpiresAt))
	require.Nil(t, got.AcceptedBy)

	byTicket, err := s.Invitations().GetPendingInvitationByTicketHash(ctx, inv.TicketHash, Base)
	require.NoError(t, err)
	require.Equal(t, inv.ID, byTicket.ID)

	_, err = s.Invitations().GetPendingInvitationByTicketHash(ctx, inv.TicketHash, Base.Add(49*time.Hour))
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Invitations().GetInvitationByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testDuplicateTicket(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewInvitation("org-1", "a@x.com", time.Hour)
	b := NewInvitation("org-1", "b@x.com", time.Hour)
	b.TicketHash = a.TicketHash

	require.NoError(t, s.Invitations().CreateInvitation(ctx, a))
	require.ErrorIs(t, s.Invitations().CreateInvitation(ctx, b), store.ErrAlreadyExists)
}

func testListPending(t *testing.T, s store.Store) {
	ctx := context.Background()

	soon := NewInvitation("org-1", "soon@x.com", 30*time.Hour)
	later := NewInvitation("org-1", "later@x.com", 7*24*time.Hour)
	other := NewInvitation("org-2", "other@x.com", 7*24*time.Hour)
	gone := NewInvitation("org-1", "gone@x.com", 7*24*time.Hour)
	for _, inv := range []domain.Invitation{later, soon, other, gone} {
		require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))
	}
	n, err := s.Invitations().CancelInvitation(ctx, "org-1", gone.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	now := Base.Add(8 * time.Hour) // soon has 22h left
	rows, err := s.Invitations().ListPendingInvitations(ctx, "org-1", now)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, soon.ID, rows[0].ID)
	require.True(t, rows[0].IsExpiringSoon)
	require.Equal(t, 22, rows[0].HoursUntilExpiration)

	require.Equal(t, later.ID, rows[1].ID)
	require.False(t, rows[1].IsExpiringSoon)
	require.Equal(t, 7*24-8, rows[1].HoursUntilExpiration)

	empty, err := s.Invitations().ListPendingInvitations(ctx, "org-none", now)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func testCancel(t *testing.T, s store.Store) {
	ctx := context.Background()

	inv := NewInvitation("org-1", "a@x.com", time.Hour)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	// Another tenant cannot cancel it.
	n, err := s.Invitations().CancelInvitation(ctx, "org-2", inv.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.Invitations().CancelInvitation(ctx, "org-1", inv.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// Terminal: a second cancel is a no-op.
	n, err = s.Invitations().CancelInvitation(ctx, "org-1", inv.ID)
	require.NoError(t, err)
	require.Zero(t, n)

	got, err := s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusCancelled, got.Status)
}

func testAccept(t *testing.T, s store.Store) {
	ctx := context.Background()

	inv := NewInvitation("org-1", "a@x.com", time.Hour)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))

	n, err := s.Invitations().AcceptInvitation(ctx, inv.ID, "user-a", Base.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusAccepted, got.Status)
	require.NotNil(t, got.AcceptedBy)
	require.Equal(t, "user-a", *got.AcceptedBy)
	require.NotNil(t, got.AcceptedAt)

	n, err = s.Invitations().AcceptInvitation(ctx, inv.ID, "user-b", Base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Zero(t, n)

	// Past expiry, even while still pending, acceptance affects nothing.
	late := NewInvitation("org-1", "late@x.com", time.Hour)
	require.NoError(t, s.Invitations().CreateInvitation(ctx, late))
	n, err = s.Invitations().AcceptInvitation(ctx, late.ID, "user-a", Base.Add(time.Hour))
	require.NoError(t, err)
	require.Zero(t, n)
}

func testSweep(t *testing.T, s store.Store) {
	ctx := context.Background()

	stale := NewInvitation("org-1", "stale@x.com", time.Hour)
	edge := NewInvitation("org-1", "edge@x.com", 2*time.Hour)
	cancelled := NewInvitation("org-1", "cancelled@x.com", time.Hour)
	accepted := NewInvitation("org-2", "accepted@x.com", time.Hour)
	fresh := NewInvitation("org-2", "fresh@x.com", 48*time.Hour)
	for _, inv := range []domain.Invitation{stale, edge, cancelled, accepted, fresh} {
		require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))
	}

	_, err := s.Invitations().CancelInvitation(ctx, "org-1", cancelled.ID)
	require.NoError(t, err)
	_, err = s.Invitations().AcceptInvitation(ctx, accepted.ID, "user-x", Base.Add(time.Minute))
	require.NoError(t, err)

	now := Base.Add(2 * time.Hour) // edge expires exactly now
	n, err := s.Invitations().MarkExpiredInvitations(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	for id, want := range map[string]domain.Status{
		stale.ID:     domain.StatusExpired,
		edge.ID:      domain.StatusExpired,
		cancelled.ID: domain.StatusCancelled,
		accepted.ID:  domain.StatusAccepted,
		fresh.ID:     domain.StatusPending,
	} {
		got, err := s.Invitations().GetInvitationByID(ctx, id)
		require.NoError(t, err)
		require.Equal(t, want, got.Status, id)
	}

	// Only status changes on a swept row.
	got, err := s.Invitations().GetInvitationByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, stale.Email, got.Email)
	require.Equal(t, stale.TicketHash, got.TicketHash)
	require.True(t, got.ExpiresAt.Equal(stale.ExpiresAt))
	require.True(t, got.CreatedAt.Equal(stale.CreatedAt))
	require.Nil(t, got.AcceptedAt)

	// Idempotent.
	n, err = s.Invitations().MarkExpiredInvitations(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n)
}

func testExpiringSoon(t *testing.T, s store.Store) {
	ctx := context.Background()

	in := NewInvitation("org-1", "in@x.com", 20*time.Hour)
	boundary := NewInvitation("org-1", "boundary@x.com", 24*time.Hour)
	out := NewInvitation("org-2", "out@x.com", 25*time.Hour)
	for _, inv := range []domain.Invitation{in, boundary, out} {
		require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))
	}

	rows, err := s.Invitations().ListExpiringSoon(ctx, Base, domain.ExpiringSoonWindow)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, in.ID, rows[0].ID)
	require.Equal(t, boundary.ID, rows[1].ID)

	rows, err = s.Invitations().ListExpiringSoon(ctx, Base.Add(30*time.Hour), domain.ExpiringSoonWindow)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func testOutstanding(t *testing.T, s store.Store) {
	ctx := context.Background()

	first := NewInvitation("org-1", "Ada@x.com", 48*time.Hour)
	second := NewInvitation("org-2", "ada@x.com", 48*time.Hour)
	second.CreatedAt = Base.Add(time.Minute)
	someoneElse := NewInvitation("org-1", "bob@x.com", 48*time.Hour)
	for _, inv := range []domain.Invitation{second, first, someoneElse} {
		require.NoError(t, s.Invitations().CreateInvitation(ctx, inv))
	}

	rows, err := s.Invitations().ListOutstandingInvitationsForEmail(ctx, "ADA@X.COM", Base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, first.ID, rows[0].ID)
	require.Equal(t, second.ID, rows[1].ID)

	found, err := s.Invitations().FindPendingInvitation(ctx, "org-2", "ADA@x.com")
	require.NoError(t, err)
	require.Equal(t, second.ID, found.ID)

	_, err = s.Invitations().FindPendingInvitation(ctx, "org-3", "ada@x.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testMembers(t *testing.T, s store.Store) {
	ctx := context.Background()

	m := domain.Member{OrganizationID: "org-1", UserID: "u1", Email: "A@x.com", Role: domain.RoleViewer, CreatedAt: Base}
	require.NoError(t, s.Members().UpsertMember(ctx, m))

	m.Role = domain.RoleAdmin
	require.NoError(t, s.Members().UpsertMember(ctx, m))

	got, err := s.Members().GetMember(ctx, "org-1", "u1")
	require.NoError(t, err)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, "a@x.com", got.Email)

	list, err := s.Members().ListMembers(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = s.Members().GetMember(ctx, "org-1", "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	inv := NewInvitation("org-1", "a@x.com", time.Hour)
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Invitations().CreateInvitation(ctx, inv)
	}))
	_, err = s.Invitations().GetInvitationByID(ctx, inv.ID)
	require.NoError(t, err)
}
