package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/service"
	"github.com/aussiebroadwan/brandhub/pkg/httpx"
	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
	"github.com/aussiebroadwan/brandhub/pkg/slogx"
)

type SendInvitationsHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Issue invitations
//	@Description	Creates one invitation per email and sends the invitation emails. Every requested email appears exactly once in results or errors.
//	@Description	With isResend an existing pending invitation for the email is cancelled and replaced.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		invitesdk.SendInvitationsRequest	true	"Invitations to issue"
//	@Success		200		{object}	invitesdk.SendInvitationsResponse	"success, results, errors, message"
//	@Failure		400		{object}	invitesdk.ErrorResponse				"invalid_request"
//	@Failure		401		{object}	invitesdk.ErrorResponse				"error, error_description"
//	@Failure		403		{object}	invitesdk.ErrorResponse				"admin role required"
//	@Failure		500		{object}	invitesdk.ErrorResponse				"server_error"
//	@Security		BearerAuth
//	@Router			/v1/invitations/send [post].
func (h *SendInvitationsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req invitesdk.SendInvitationsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.OrganizationID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "organizationId is required")
		return
	}

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	if role, ok := claims.RoleIn(req.OrganizationID); !ok || role != string(domain.RoleAdmin) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "Admin role required in this organization")
		return
	}

	items := make([]domain.IssueItem, len(req.Invitations))
	for i, it := range req.Invitations {
		items[i] = domain.IssueItem{Email: it.Email, Role: it.Role}
	}

	res, err := h.InvitationService.Issue(ctx, domain.IssueRequest{
		OrganizationID:   req.OrganizationID,
		OrganizationName: req.OrganizationName,
		InvitedBy:        claims.Subject,
		Invitations:      items,
		IsResend:         req.IsResend,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidIssueRequest) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		log.Error("failed to issue invitations", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to issue invitations")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSendResponse(res))
}
