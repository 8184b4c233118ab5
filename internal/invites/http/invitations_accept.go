package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/idx"
	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

type OutstandingHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Outstanding invitations for the caller
//	@Description	Pending, unexpired invitations addressed to the email in the caller's token, across all organizations, oldest first.
//	@Tags			Acceptance
//	@Produce		json
//	@Success		200	{object}	invitesdk.OutstandingResponse	"invitations"
//	@Failure		400	{object}	invitesdk.ErrorResponse			"token carries no email"
//	@Failure		401	{object}	invitesdk.ErrorResponse			"error, error_description"
//	@Failure		500	{object}	invitesdk.ErrorResponse			"query_failure"
//	@Security		BearerAuth
//	@Router			/v1/invitations/outstanding [get].
func (h *OutstandingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, _ := httpx.ClaimsFromContext(ctx)
	if claims.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Token carries no email")
		return
	}

	rows, err := h.InvitationService.Outstanding(ctx, domain.NormalizeEmail(claims.Email))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "query_failure", "Failed to load invitations")
		return
	}

	resp := invitesdk.OutstandingResponse{Invitations: make([]invitesdk.Invitation, len(rows))}
	for i, inv := range rows {
		resp.Invitations[i] = toInvitation(inv)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type AcceptHandler struct {
	InvitationService *service.InvitationService
}

// HandleAcceptByID godoc
//
//	@Summary		Accept an outstanding invitation
//	@Description	Accepts an invitation addressed to the caller's email and grants its role in the organization.
//	@Tags			Acceptance
//	@Produce		json
//	@Param			id	path		string						true	"Invitation ID"
//	@Success		200	{object}	invitesdk.AcceptResponse	"invitation"
//	@Failure		400	{object}	invitesdk.ErrorResponse		"malformed invitation id"
//	@Failure		401	{object}	invitesdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	invitesdk.ErrorResponse		"email_mismatch"
//	@Failure		404	{object}	invitesdk.ErrorResponse		"not_found"
//	@Failure		409	{object}	invitesdk.ErrorResponse		"not_pending"
//	@Security		BearerAuth
//	@Router			/v1/invitations/{id}/accept [post].
func (h *AcceptHandler) HandleAcceptByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := httpx.ClaimsFromContext(ctx)

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed invitation id")
		return
	}

	inv, err := h.InvitationService.AcceptByID(ctx, id.String(), claims.Subject, claims.Email)
	if err != nil {
		writeAcceptError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, invitesdk.AcceptResponse{Invitation: toInvitation(inv)})
}

// HandleAcceptTicket godoc
//
//	@Summary		Accept an invitation by ticket
//	@Description	Accepts the invitation an emailed acceptance link points at. The signed-in email must match the invitation.
//	@Tags			Acceptance
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.AcceptTicketRequest	true	"Ticket from the invitation link"
//	@Success		200		{object}	invitesdk.AcceptResponse		"invitation"
//	@Failure		400		{object}	invitesdk.ErrorResponse			"invalid_request"
//	@Failure		401		{object}	invitesdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	invitesdk.ErrorResponse			"email_mismatch"
//	@Failure		404		{object}	invitesdk.ErrorResponse			"not_found"
//	@Failure		409		{object}	invitesdk.ErrorResponse			"not_pending"
//	@Security		BearerAuth
//	@Router			/v1/invitations/accept [post].
func (h *AcceptHandler) HandleAcceptTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims, _ := httpx.ClaimsFromContext(ctx)

	var req invitesdk.AcceptTicketRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Ticket == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "ticket is required")
		return
	}

	inv, err := h.InvitationService.AcceptTicket(ctx, req.Ticket, claims.Subject, claims.Email)
	if err != nil {
		writeAcceptError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, invitesdk.AcceptResponse{Invitation: toInvitation(inv)})
}

func writeAcceptError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvitationNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not_found", "Invitation not found or expired")
	case errors.Is(err, service.ErrInvitationEmailMismatch):
		httpx.WriteError(w, http.StatusForbidden, "email_mismatch", "Invitation was issued to a different email")
	case errors.Is(err, service.ErrInvitationNotPending):
		httpx.WriteError(w, http.StatusConflict, "not_pending", "Invitation is no longer pending")
	default:
		slogx.FromContext(r.Context()).Error("accept failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "mutation_failure", "Failed to accept invitation")
	}
}
