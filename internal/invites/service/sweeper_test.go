package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

func TestExpirySweeper(t *testing.T) {
	t.Run("expires overdue rows and reports expiring soon", func(t *testing.T) {
		svc, n, c := newTestService(t)
		ctx := context.Background()

		svc.TTL = 2 * time.Hour
		issue(t, svc, "org-1", false, "old@example.com")
		svc.TTL = 0
		c.Advance(time.Hour)
		issue(t, svc, "org-1", false, "soon@example.com")
		c.Advance(6*24*time.Hour + 2*time.Hour)
		issue(t, svc, "org-1", false, "fresh@example.com")

		sweeper := NewExpirySweeper(svc.Store, n, testLogger, time.Hour)
		sweeper.Now = c.Now

		sum, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, sum.Expired)
		require.Equal(t, 1, sum.ExpiringSoon)
		require.Equal(t, 1, sum.RemindersSent)
		require.Len(t, n.reminders, 1)
		require.Equal(t, "soon@example.com", n.reminders[0].Email)

		// A second pass finds nothing new and does not remind twice.
		sum, err = sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Zero(t, sum.Expired)
		require.Equal(t, 1, sum.ExpiringSoon)
		require.Zero(t, sum.RemindersSent)
		require.Len(t, n.reminders, 1)

		pending, err := svc.ListPending(ctx, "org-1")
		require.NoError(t, err)
		require.Len(t, pending, 2)
	})

	t.Run("reminder failures do not fail the sweep", func(t *testing.T) {
		svc, n, c := newTestService(t)
		ctx := context.Background()

		issue(t, svc, "org-1", false, "ada@example.com")
		n.failFor["ada@example.com"] = true
		c.Advance(6*24*time.Hour + time.Hour)

		sweeper := NewExpirySweeper(svc.Store, n, testLogger, time.Hour)
		sweeper.Now = c.Now

		sum, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, sum.ExpiringSoon)
		require.Equal(t, 1, sum.RemindersFailed)

		// Failed reminders are retried on the next pass.
		n.failFor["ada@example.com"] = false
		sum, err = sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, sum.RemindersSent)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		svc, n, c := newTestService(t)
		ctx := context.Background()
		res := issue(t, svc, "org-1", false, "ada@example.com")

		c.Advance(domain.DefaultInvitationTTL - time.Second)
		sweeper := NewExpirySweeper(svc.Store, n, testLogger, time.Hour)
		sweeper.Now = c.Now

		sum, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Zero(t, sum.Expired)

		c.Advance(time.Second)
		sum, err = sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.EqualValues(t, 1, sum.Expired)

		inv, err := svc.Store.Invitations().GetInvitationByID(ctx, res.Results[0].InvitationID)
		require.NoError(t, err)
		require.Equal(t, domain.StatusExpired, inv.Status)
		require.Equal(t, res.Results[0].Email, inv.Email)
	})

	t.Run("start sweeps immediately and stop is idempotent", func(t *testing.T) {
		svc, n, c := newTestService(t)
		issue(t, svc, "org-1", false, "ada@example.com")
		c.Advance(8 * 24 * time.Hour)

		sweeper := NewExpirySweeper(svc.Store, n, testLogger, time.Hour)
		sweeper.Now = c.Now
		sweeper.Start()

		require.Eventually(t, func() bool {
			pending, err := svc.Store.Invitations().FindPendingInvitation(context.Background(), "org-1", "ada@example.com")
			return err != nil && pending.ID == ""
		}, time.Second, 10*time.Millisecond)

		sweeper.Stop()
		sweeper.Stop()
	})

	t.Run("defaults interval", func(t *testing.T) {
		s := NewExpirySweeper(nil, nil, testLogger, 0)
		require.Equal(t, time.Hour, s.Interval)
	})
}
