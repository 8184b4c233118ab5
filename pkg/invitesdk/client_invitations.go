package invitesdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

func orgPath(orgID, suffix string) string {
	return "/v1/organizations/" + url.PathEscape(orgID) + "/invitations" + suffix
}

// ListPending returns the organization's pending invitations. Any failure
// is a *QueryFailure.
func (c *Client) ListPending(ctx context.Context, orgID string) (*ListPendingResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, orgPath(orgID, "/pending"), nil, nil)
	if err != nil {
		return nil, &QueryFailure{OrganizationID: orgID, Err: err}
	}

	var out ListPendingResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, &QueryFailure{OrganizationID: orgID, Err: err}
	}
	return &out, nil
}

// Cancel cancels a pending invitation. An invitation that is not pending in
// orgID is reported as a *MutationFailure wrapping a not_pending *APIError.
func (c *Client) Cancel(ctx context.Context, orgID, invitationID string) error {
	path := orgPath(orgID, "/"+url.PathEscape(invitationID)+"/cancel")
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return &MutationFailure{Op: "cancel", InvitationID: invitationID, Err: err}
	}

	var out CancelResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return &MutationFailure{Op: "cancel", InvitationID: invitationID, Err: err}
	}
	return nil
}

// SendInvitations issues invitations. When some emails failed the response
// is returned together with a *PartialInviteFailure.
func (c *Client) SendInvitations(ctx context.Context, req SendInvitationsRequest) (*SendInvitationsResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/invitations/send", req, nil)
	if err != nil {
		return nil, err
	}

	var out SendInvitationsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return &out, &PartialInviteFailure{Response: out}
	}
	return &out, nil
}

// Resend issues a fresh invitation for email, replacing any pending one.
// Every failure, including a created-but-undelivered invitation, is a
// *ResendFailure carrying the upstream detail.
func (c *Client) Resend(ctx context.Context, orgID, orgName, email, role string) (*SendInvitationsResponse, error) {
	out, err := c.SendInvitations(ctx, SendInvitationsRequest{
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Invitations:      []InvitationItem{{Email: email, Role: role}},
		IsResend:         true,
	})
	if err == nil {
		return out, nil
	}

	var partial *PartialInviteFailure
	if errors.As(err, &partial) && len(partial.Response.Errors) > 0 {
		return out, &ResendFailure{Email: email, Detail: partial.Response.Errors[0].Error, Err: err}
	}
	return nil, &ResendFailure{Email: email, Detail: err.Error(), Err: err}
}

// Outstanding returns the pending invitations addressed to the signed-in
// user's email.
func (c *Client) Outstanding(ctx context.Context) ([]Invitation, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/invitations/outstanding", nil, nil)
	if err != nil {
		return nil, err
	}

	var out OutstandingResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Invitations, nil
}

// AcceptInvitation accepts one of the signed-in user's outstanding
// invitations.
func (c *Client) AcceptInvitation(ctx context.Context, invitationID string) (*Invitation, error) {
	path := "/v1/invitations/" + url.PathEscape(invitationID) + "/accept"
	resp, err := c.doRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return nil, &MutationFailure{Op: "accept", InvitationID: invitationID, Err: err}
	}

	var out AcceptResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, &MutationFailure{Op: "accept", InvitationID: invitationID, Err: err}
	}
	return &out.Invitation, nil
}

// AcceptTicket accepts the invitation an emailed link's ticket points at.
func (c *Client) AcceptTicket(ctx context.Context, ticket string) (*Invitation, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/invitations/accept", AcceptTicketRequest{Ticket: ticket}, nil)
	if err != nil {
		return nil, &MutationFailure{Op: "accept", Err: err}
	}

	var out AcceptResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, &MutationFailure{Op: "accept", Err: err}
	}
	return &out.Invitation, nil
}

// TriggerSweep runs the expiry sweep. It is what an external scheduler
// calls; secret is the service's sweep secret.
func (c *Client) TriggerSweep(ctx context.Context, secret string) (*SweepResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/invitations/sweep", nil, map[string]string{
		"X-Sweep-Secret": secret,
	})
	if err != nil {
		return nil, err
	}

	var out SweepResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
