package invites_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
)

func TestInvitationLifecycle(t *testing.T) {
	svc := setupInvitesContainer(t, nil)

	admin := svc.clientFor(t, "admin-1", "admin@acme.test", map[string]string{"org-acme": "admin"})
	viewer := svc.clientFor(t, "viewer-1", "viewer@acme.test", map[string]string{"org-acme": "viewer"})
	outsider := svc.clientFor(t, "admin-2", "admin@globex.test", map[string]string{"org-globex": "admin"})

	t.Run("issue reports every email", func(t *testing.T) {
		resp, err := admin.SendInvitations(t.Context(), invitesdk.SendInvitationsRequest{
			OrganizationID:   "org-acme",
			OrganizationName: "Acme",
			Invitations: []invitesdk.InvitationItem{
				{Email: "Alice@Example.com", Role: "editor"},
				{Email: "bob@example.com", Role: "viewer"},
				{Email: "not-an-email", Role: "viewer"},
				{Email: "carol@example.com", Role: "owner"},
			},
		})
		require.NotNil(t, resp)
		require.False(t, resp.Success)
		require.Len(t, resp.Results, 2)
		require.Len(t, resp.Errors, 2)
		require.Equal(t, "2 of 4 invitations sent", resp.Message)

		var partial *invitesdk.PartialInviteFailure
		require.ErrorAs(t, err, &partial)
	})

	t.Run("non admin cannot issue", func(t *testing.T) {
		_, err := viewer.SendInvitations(t.Context(), invitesdk.SendInvitationsRequest{
			OrganizationID: "org-acme",
			Invitations:    []invitesdk.InvitationItem{{Email: "dave@example.com", Role: "viewer"}},
		})
		assertAPIError(t, err, http.StatusForbidden, invitesdk.ErrorCodeForbidden)
	})

	t.Run("members see pending", func(t *testing.T) {
		tracker := invitesdk.NewPendingTracker(viewer, "org-acme", "Acme")
		defer tracker.Close()

		require.NoError(t, tracker.Refresh(t.Context()))
		require.True(t, tracker.HasPendingInvitation("alice@example.com"))
		require.Nil(t, tracker.GetInvitationStatus("carol@example.com"))

		alice := tracker.GetInvitationStatus("ALICE@example.com")
		require.NotNil(t, alice)
		require.Equal(t, "editor", alice.Role)
		require.False(t, alice.IsExpiringSoon)
		require.GreaterOrEqual(t, alice.HoursUntilExpiration, 166)
	})

	t.Run("other organizations cannot read or cancel", func(t *testing.T) {
		_, err := outsider.ListPending(t.Context(), "org-acme")
		var qf *invitesdk.QueryFailure
		require.ErrorAs(t, err, &qf)
		assertAPIError(t, err, http.StatusForbidden, invitesdk.ErrorCodeForbidden)

		pending, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)
		require.NotEmpty(t, pending.Invitations)

		// admin of org-globex naming its own org with org-acme's row
		err = outsider.Cancel(t.Context(), "org-globex", pending.Invitations[0].ID)
		require.True(t, invitesdk.IsNotPending(err))

		still, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)
		require.Len(t, still.Invitations, len(pending.Invitations))
	})

	t.Run("duplicate and resend", func(t *testing.T) {
		resp, err := admin.SendInvitations(t.Context(), invitesdk.SendInvitationsRequest{
			OrganizationID: "org-acme",
			Invitations:    []invitesdk.InvitationItem{{Email: "bob@example.com", Role: "viewer"}},
		})
		require.Error(t, err)
		require.Len(t, resp.Errors, 1)
		require.Contains(t, resp.Errors[0].Error, "already exists")

		before, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)

		resent, err := admin.Resend(t.Context(), "org-acme", "Acme", "bob@example.com", "viewer")
		require.NoError(t, err)
		require.Len(t, resent.Results, 1)
		require.Empty(t, resent.Errors)

		after, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)
		require.Len(t, after.Invitations, len(before.Invitations))
	})

	t.Run("invitee accepts one outstanding", func(t *testing.T) {
		alice := svc.clientFor(t, "alice-1", "alice@example.com", nil)

		out, err := alice.Outstanding(t.Context())
		require.NoError(t, err)
		require.Len(t, out, 1)

		inv, err := alice.AcceptInvitation(t.Context(), out[0].ID)
		require.NoError(t, err)
		require.Equal(t, "accepted", inv.Status)
		require.Equal(t, "org-acme", inv.OrganizationID)

		_, err = alice.AcceptInvitation(t.Context(), out[0].ID)
		require.True(t, invitesdk.IsNotPending(err))

		out, err = alice.Outstanding(t.Context())
		require.NoError(t, err)
		require.Empty(t, out)
	})

	t.Run("someone else cannot accept", func(t *testing.T) {
		pending, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)
		require.NotEmpty(t, pending.Invitations)

		mallory := svc.clientFor(t, "mallory-1", "mallory@example.com", nil)
		_, err = mallory.AcceptInvitation(t.Context(), pending.Invitations[0].ID)
		assertAPIError(t, err, http.StatusForbidden, invitesdk.ErrorCodeEmailMismatch)
	})

	t.Run("admin cancels", func(t *testing.T) {
		tracker := invitesdk.NewPendingTracker(admin, "org-acme", "Acme")
		defer tracker.Close()
		require.NoError(t, tracker.Refresh(t.Context()))

		bob := tracker.GetInvitationStatus("bob@example.com")
		require.NotNil(t, bob)
		require.NoError(t, tracker.Cancel(t.Context(), bob.ID))
		require.False(t, tracker.HasPendingInvitation("bob@example.com"))

		err := admin.Cancel(t.Context(), "org-acme", bob.ID)
		require.True(t, invitesdk.IsNotPending(err))
	})
}

func TestSweepTrigger(t *testing.T) {
	svc := setupInvitesContainer(t, map[string]string{
		"INVITATION_TTL": "2s",
	})
	admin := svc.clientFor(t, "admin-1", "admin@acme.test", map[string]string{"org-acme": "admin"})

	_, err := admin.SendInvitations(t.Context(), invitesdk.SendInvitationsRequest{
		OrganizationID: "org-acme",
		Invitations: []invitesdk.InvitationItem{
			{Email: "a@example.com", Role: "viewer"},
			{Email: "b@example.com", Role: "viewer"},
		},
	})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := admin.TriggerSweep(t.Context(), "nope")
		assertAPIError(t, err, http.StatusUnauthorized, invitesdk.ErrorCodeUnauthorized)
	})

	t.Run("expires overdue rows", func(t *testing.T) {
		time.Sleep(3 * time.Second)

		resp, err := admin.TriggerSweep(t.Context(), sweepSecret)
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.EqualValues(t, 2, resp.Expired)

		again, err := admin.TriggerSweep(t.Context(), sweepSecret)
		require.NoError(t, err)
		require.EqualValues(t, 0, again.Expired)

		pending, err := admin.ListPending(t.Context(), "org-acme")
		require.NoError(t, err)
		require.Empty(t, pending.Invitations)
	})

	t.Run("resend after expiry", func(t *testing.T) {
		resp, err := admin.Resend(t.Context(), "org-acme", "Acme", "a@example.com", "viewer")
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
		require.Equal(t, 1, len(resp.Results)+len(resp.Errors))
	})
}

func TestRealtimeEvents(t *testing.T) {
	svc := setupInvitesContainer(t, nil)
	admin := svc.clientFor(t, "admin-1", "admin@acme.test", map[string]string{"org-acme": "admin"})

	tracker := invitesdk.NewPendingTracker(admin, "org-acme", "Acme")
	tracker.Interval = time.Hour
	tracker.Start()
	defer tracker.Close()

	listener := invitesdk.NewRealtimeListener(admin, tracker.HandleChange)
	listener.Watch("org-acme")
	defer listener.Close()

	// Give the stream time to connect before the insert.
	time.Sleep(500 * time.Millisecond)

	_, err := admin.SendInvitations(t.Context(), invitesdk.SendInvitationsRequest{
		OrganizationID: "org-acme",
		Invitations:    []invitesdk.InvitationItem{{Email: "live@example.com", Role: "viewer"}},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return tracker.HasPendingInvitation("live@example.com")
	}, 10*time.Second, 50*time.Millisecond)

	listener.Close()
	require.Equal(t, "", listener.OrganizationID())
}
