package http

import (
	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/pkg/invitesdk"
)

func toInvitation(inv domain.Invitation) invitesdk.Invitation {
	return invitesdk.Invitation{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		Email:          inv.Email,
		Role:           string(inv.Role),
		InvitedBy:      inv.InvitedBy,
		Status:         string(inv.Status),
		CreatedAt:      inv.CreatedAt,
		ExpiresAt:      inv.ExpiresAt,
		AcceptedBy:     inv.AcceptedBy,
		AcceptedAt:     inv.AcceptedAt,
	}
}

func toPending(p domain.PendingInvitation) invitesdk.PendingInvitation {
	return invitesdk.PendingInvitation{
		Invitation:           toInvitation(p.Invitation),
		IsExpiringSoon:       p.IsExpiringSoon,
		HoursUntilExpiration: p.HoursUntilExpiration,
	}
}

func toSendResponse(res domain.IssueResult) invitesdk.SendInvitationsResponse {
	out := invitesdk.SendInvitationsResponse{
		Success: len(res.Errors) == 0,
		Results: make([]invitesdk.InviteResult, len(res.Results)),
		Errors:  make([]invitesdk.InviteError, len(res.Errors)),
		Message: res.Message,
	}
	for i, r := range res.Results {
		out.Results[i] = invitesdk.InviteResult{
			Email:        r.Email,
			Status:       string(r.Status),
			InvitationID: r.InvitationID,
		}
	}
	for i, e := range res.Errors {
		out.Errors[i] = invitesdk.InviteError{
			Email:        e.Email,
			Error:        e.Error,
			InvitationID: e.InvitationID,
		}
	}
	return out
}
