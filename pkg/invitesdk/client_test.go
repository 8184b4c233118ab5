package invitesdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", StaticToken("tok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientListPending(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v1/organizations/org-1/invitations/pending", r.URL.Path)
			require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, ListPendingResponse{
				Invitations: []PendingInvitation{{
					Invitation:           Invitation{ID: "inv-1", Email: "a@x.com", Status: "pending"},
					IsExpiringSoon:       true,
					HoursUntilExpiration: 5,
				}},
			})
		}))

		resp, err := c.ListPending(context.Background(), "org-1")
		require.NoError(t, err)
		require.Len(t, resp.Invitations, 1)
		require.True(t, resp.Invitations[0].IsExpiringSoon)
		require.Equal(t, 5, resp.Invitations[0].HoursUntilExpiration)
	})

	t.Run("forbidden is a query failure", func(t *testing.T) {
		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorCodeForbidden, ErrorDescription: "not a member"})
		}))

		resp, err := c.ListPending(context.Background(), "org-1")
		require.Nil(t, resp)

		var qf *QueryFailure
		require.ErrorAs(t, err, &qf)
		require.Equal(t, "org-1", qf.OrganizationID)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, ErrorCodeForbidden, apiErr.Code)
	})
}

func TestClientCancel(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		switch r.URL.Path {
		case "/v1/organizations/org-1/invitations/inv-1/cancel":
			writeJSON(w, http.StatusOK, CancelResponse{ID: "inv-1", Status: "cancelled"})
		default:
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorCodeNotPending, ErrorDescription: "invitation is not pending"})
		}
	}))

	require.NoError(t, c.Cancel(context.Background(), "org-1", "inv-1"))

	err := c.Cancel(context.Background(), "org-1", "inv-2")
	var mf *MutationFailure
	require.ErrorAs(t, err, &mf)
	require.Equal(t, "cancel", mf.Op)
	require.Equal(t, "inv-2", mf.InvitationID)
	require.True(t, IsNotPending(err))
}

func TestClientSendInvitations(t *testing.T) {
	t.Parallel()

	var last atomic.Pointer[SendInvitationsRequest]
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/invitations/send", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var got SendInvitationsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		last.Store(&got)

		resp := SendInvitationsResponse{}
		for _, item := range got.Invitations {
			if item.Email == "bounce@x.com" {
				resp.Errors = append(resp.Errors, InviteError{
					Email:        item.Email,
					Error:        "invitation created but email delivery failed: mailbox full",
					InvitationID: "inv-b",
				})
				continue
			}
			resp.Results = append(resp.Results, InviteResult{Email: item.Email, Status: "sent", InvitationID: "inv-" + item.Email})
		}
		resp.Success = len(resp.Errors) == 0
		resp.Message = fmt.Sprintf("%d of %d invitations sent", len(resp.Results), len(got.Invitations))
		writeJSON(w, http.StatusOK, resp)
	}))

	t.Run("all delivered", func(t *testing.T) {
		resp, err := c.SendInvitations(context.Background(), SendInvitationsRequest{
			OrganizationID: "org-1",
			Invitations:    []InvitationItem{{Email: "a@x.com", Role: "viewer"}},
		})
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Len(t, resp.Results, 1)
		require.False(t, last.Load().IsResend)
	})

	t.Run("partial failure reports every email", func(t *testing.T) {
		resp, err := c.SendInvitations(context.Background(), SendInvitationsRequest{
			OrganizationID: "org-1",
			Invitations: []InvitationItem{
				{Email: "a@x.com", Role: "viewer"},
				{Email: "bounce@x.com", Role: "viewer"},
			},
		})
		require.NotNil(t, resp)
		require.Len(t, resp.Results, 1)
		require.Len(t, resp.Errors, 1)

		var partial *PartialInviteFailure
		require.ErrorAs(t, err, &partial)
		require.Len(t, partial.Failed(), 1)
		require.Equal(t, "inv-b", partial.Failed()[0].InvitationID)
		require.Equal(t, "1 of 2 invitations failed", partial.Error())
	})

	t.Run("resend carries upstream detail", func(t *testing.T) {
		resp, err := c.Resend(context.Background(), "org-1", "Acme", "bounce@x.com", "editor")
		got := last.Load()
		require.True(t, got.IsResend)
		require.Equal(t, "Acme", got.OrganizationName)
		require.Equal(t, []InvitationItem{{Email: "bounce@x.com", Role: "editor"}}, got.Invitations)
		require.NotNil(t, resp)

		var rf *ResendFailure
		require.ErrorAs(t, err, &rf)
		require.Equal(t, "bounce@x.com", rf.Email)
		require.Contains(t, rf.Detail, "mailbox full")

		var partial *PartialInviteFailure
		require.ErrorAs(t, err, &partial)
	})

	t.Run("resend success", func(t *testing.T) {
		resp, err := c.Resend(context.Background(), "org-1", "", "a@x.com", "editor")
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)
	})
}

func TestClientAccept(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/invitations/outstanding":
			writeJSON(w, http.StatusOK, OutstandingResponse{Invitations: []Invitation{{ID: "inv-1"}, {ID: "inv-2"}}})
		case "/v1/invitations/inv-1/accept":
			writeJSON(w, http.StatusOK, AcceptResponse{Invitation: Invitation{ID: "inv-1", Status: "accepted"}})
		case "/v1/invitations/accept":
			var req AcceptTicketRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Ticket != "good" {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: ErrorCodeNotFound})
				return
			}
			writeJSON(w, http.StatusOK, AcceptResponse{Invitation: Invitation{ID: "inv-3", Status: "accepted"}})
		default:
			writeJSON(w, http.StatusConflict, ErrorResponse{Error: ErrorCodeNotPending})
		}
	}))
	ctx := context.Background()

	out, err := c.Outstanding(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)

	inv, err := c.AcceptInvitation(ctx, "inv-1")
	require.NoError(t, err)
	require.Equal(t, "accepted", inv.Status)

	_, err = c.AcceptInvitation(ctx, "inv-9")
	require.True(t, IsNotPending(err))

	inv, err = c.AcceptTicket(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "inv-3", inv.ID)

	_, err = c.AcceptTicket(ctx, "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeNotFound, apiErr.Code)
}

func TestClientTriggerSweep(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/invitations/sweep", r.URL.Path)
		if r.Header.Get("X-Sweep-Secret") != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: ErrorCodeUnauthorized})
			return
		}
		if fail.Load() {
			writeJSON(w, http.StatusInternalServerError, SweepErrorResponse{Error: "database unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, SweepResponse{Success: true, Expired: 3, ExpiringSoon: 1, Message: "ok"})
	}))
	ctx := context.Background()

	resp, err := c.TriggerSweep(ctx, "s3cret")
	require.NoError(t, err)
	require.EqualValues(t, 3, resp.Expired)
	require.Equal(t, 1, resp.ExpiringSoon)

	_, err = c.TriggerSweep(ctx, "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeUnauthorized, apiErr.Code)

	fail.Store(true)
	_, err = c.TriggerSweep(ctx, "s3cret")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
	require.Equal(t, "database unavailable", apiErr.Description)
}

func TestClientSubscribe(t *testing.T) {
	t.Parallel()

	released := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/organizations/org-1/invitations/events" {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: ErrorCodeForbidden})
			return
		}
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "retry: 3000\n\n: ping\n\n")
		fmt.Fprint(w, "event: change\ndata: {\"op\":\"INSERT\",\"organization_id\":\"org-1\",\"id\":\"inv-1\",\"status\":\"pending\"}\n\n")
		fmt.Fprint(w, "event: change\ndata: not json\n\n")
		fmt.Fprint(w, "event: change\ndata: {\"op\":\"UPDATE\",\"organization_id\":\"org-1\",\"id\":\"inv-1\",\"status\":\"cancelled\"}\n\n")
		w.(http.Flusher).Flush()

		<-r.Context().Done()
		close(released)
	}))

	stream, err := c.Subscribe(context.Background(), "org-1")
	require.NoError(t, err)

	first := <-stream.Events
	require.Equal(t, ChangeEvent{Op: OpInsert, OrganizationID: "org-1", InvitationID: "inv-1", Status: "pending"}, first)
	second := <-stream.Events
	require.Equal(t, OpUpdate, second.Op)
	require.Equal(t, "cancelled", second.Status)

	stream.Close()
	_, open := <-stream.Events
	require.False(t, open)
	require.NoError(t, stream.Err())

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the stream close")
	}

	_, err = c.Subscribe(context.Background(), "org-2")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}
