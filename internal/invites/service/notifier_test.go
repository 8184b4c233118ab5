package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

func TestAcceptURL(t *testing.T) {
	require.Equal(t, "https://app.example.com/accept?ticket=abc", AcceptURL("https://app.example.com/accept", "abc"))
	require.Equal(t, "https://app.example.com/join?org=1&ticket=a%2Bb", AcceptURL("https://app.example.com/join?org=1", "a+b"))
	require.Equal(t, "?ticket=abc", AcceptURL("", "abc"))
}

func TestWebhookNotifier(t *testing.T) {
	inv := domain.Invitation{
		ID:             "01J0000000000000000000000A",
		OrganizationID: "org-1",
		Email:          "ada@example.com",
		Role:           domain.RoleViewer,
		ExpiresAt:      t0,
	}

	t.Run("posts the event with the shared secret", func(t *testing.T) {
		var got webhookEvent
		var secret string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			secret = r.Header.Get("X-Webhook-Secret")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		n := WebhookNotifier{URL: srv.URL, Secret: "s3cret", Client: srv.Client()}
		err := n.SendInvitation(context.Background(), InvitationNotice{
			Invitation:       inv,
			OrganizationName: "Acme",
			AcceptURL:        "https://app.example.com/accept?ticket=abc",
		})
		require.NoError(t, err)
		require.Equal(t, "s3cret", secret)
		require.Equal(t, "invitation.issued", got.Type)
		require.Equal(t, inv.ID, got.InvitationID)
		require.Equal(t, "Acme", got.OrganizationName)
		require.Equal(t, "viewer", got.Role)

		got = webhookEvent{}
		require.NoError(t, n.SendExpiryReminder(context.Background(), inv))
		require.Equal(t, "invitation.expiring", got.Type)
		require.Empty(t, got.AcceptURL)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		n := WebhookNotifier{URL: srv.URL, Client: srv.Client()}
		err := n.SendExpiryReminder(context.Background(), inv)
		require.ErrorContains(t, err, "502")
	})
}

func TestLogNotifier(t *testing.T) {
	n := LogNotifier{Logger: testLogger}
	require.NoError(t, n.SendInvitation(context.Background(), InvitationNotice{}))
	require.NoError(t, n.SendExpiryReminder(context.Background(), domain.Invitation{}))
}
