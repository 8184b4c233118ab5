package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/idx"
	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

type ListPendingHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		List pending invitations
//	@Description	Pending, unexpired invitations of the organization, soonest expiry first, enriched with isExpiringSoon and hoursUntilExpiration against the server clock.
//	@Tags			Invitations
//	@Produce		json
//	@Param			orgID	path		string							true	"Organization ID"
//	@Success		200		{object}	invitesdk.ListPendingResponse	"invitations"
//	@Failure		401		{object}	invitesdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	invitesdk.ErrorResponse			"not a member of the organization"
//	@Failure		500		{object}	invitesdk.ErrorResponse			"query_failure"
//	@Security		BearerAuth
//	@Router			/v1/organizations/{orgID}/invitations/pending [get].
func (h *ListPendingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rows, err := h.InvitationService.ListPending(ctx, r.PathValue("orgID"))
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "query_failure", "Failed to load pending invitations")
		return
	}

	resp := invitesdk.ListPendingResponse{
		Invitations: make([]invitesdk.PendingInvitation, len(rows)),
		FetchedAt:   time.Now().UTC(),
	}
	for i, p := range rows {
		resp.Invitations[i] = toPending(p)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

type CancelHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Cancel an invitation
//	@Description	Moves a pending invitation of the organization to cancelled. An invitation of another organization, or one that is no longer pending, is left untouched and reported as 409.
//	@Tags			Invitations
//	@Produce		json
//	@Param			orgID	path		string						true	"Organization ID"
//	@Param			id		path		string						true	"Invitation ID"
//	@Success		200		{object}	invitesdk.CancelResponse	"id, status"
//	@Failure		400		{object}	invitesdk.ErrorResponse		"malformed invitation id"
//	@Failure		401		{object}	invitesdk.ErrorResponse		"error, error_description"
//	@Failure		403		{object}	invitesdk.ErrorResponse		"admin role required"
//	@Failure		409		{object}	invitesdk.ErrorResponse		"not_pending"
//	@Failure		500		{object}	invitesdk.ErrorResponse		"mutation_failure"
//	@Security		BearerAuth
//	@Router			/v1/organizations/{orgID}/invitations/{id}/cancel [post].
func (h *CancelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed invitation id")
		return
	}

	err = h.InvitationService.Cancel(ctx, r.PathValue("orgID"), id.String())
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, invitesdk.CancelResponse{ID: id.String(), Status: string(domain.StatusCancelled)})
	case errors.Is(err, service.ErrInvitationNotPending):
		httpx.WriteError(w, http.StatusConflict, "not_pending", "Invitation is not pending in this organization")
	default:
		slogx.FromContext(ctx).Error("cancel failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "mutation_failure", "Failed to cancel invitation")
	}
}
