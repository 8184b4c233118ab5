package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite/gen"
)

type invitationsRepo struct {
	q       *gen.Queries
	publish func(domain.ChangeEvent)
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	err := r.q.CreateInvitation(ctx, gen.CreateInvitationParams{
		ID:             inv.ID,
		OrganizationID: inv.OrganizationID,
		Email:          domain.NormalizeEmail(inv.Email),
		Role:           string(inv.Role),
		InvitedBy:      inv.InvitedBy,
		TicketHash:     inv.TicketHash,
		CreatedAt:      inv.CreatedAt.UTC(),
		ExpiresAt:      inv.ExpiresAt.UTC(),
	})
	if err != nil {
		return mapConstraint(err)
	}

	r.publish(domain.ChangeEvent{
		Op:             domain.ChangeInsert,
		OrganizationID: inv.OrganizationID,
		InvitationID:   inv.ID,
		Status:         domain.StatusPending,
	})
	return nil
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row, err := r.q.GetInvitationByID(ctx, id)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return mapInvitation(row), nil
}

func (r *invitationsRepo) GetPendingInvitationByTicketHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Invitation, error) {
	row, err := r.q.GetPendingInvitationByTicketHash(ctx, gen.GetPendingInvitationByTicketHashParams{
		TicketHash: hash,
		Now:        now.UTC(),
	})
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return mapInvitation(row), nil
}

// ListPendingInvitations derives the read-time fields in Go; the postgres
// driver gets them from get_pending_invitations().
func (r *invitationsRepo) ListPendingInvitations(
	ctx context.Context,
	orgID string,
	now time.Time,
) ([]domain.PendingInvitation, error) {
	rows, err := r.q.ListPendingInvitations(ctx, gen.ListPendingInvitationsParams{
		OrganizationID: orgID,
		Now:            now.UTC(),
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.PendingInvitation, len(rows))
	for i, row := range rows {
		out[i] = domain.NewPendingInvitation(mapInvitation(row), now)
	}
	return out, nil
}

func (r *invitationsRepo) FindPendingInvitation(ctx context.Context, orgID, email string) (domain.Invitation, error) {
	row, err := r.q.FindPendingInvitation(ctx, gen.FindPendingInvitationParams{
		OrganizationID: orgID,
		Email:          domain.NormalizeEmail(email),
	})
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return mapInvitation(row), nil
}

func (r *invitationsRepo) ListOutstandingInvitationsForEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]domain.Invitation, error) {
	rows, err := r.q.ListOutstandingInvitationsForEmail(ctx, gen.ListOutstandingInvitationsForEmailParams{
		Email: domain.NormalizeEmail(email),
		Now:   now.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return mapInvitations(rows), nil
}

func (r *invitationsRepo) CancelInvitation(ctx context.Context, orgID, id string) (int64, error) {
	n, err := r.q.CancelInvitation(ctx, gen.CancelInvitationParams{ID: id, OrganizationID: orgID})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.publish(domain.ChangeEvent{
			Op:             domain.ChangeUpdate,
			OrganizationID: orgID,
			InvitationID:   id,
			Status:         domain.StatusCancelled,
		})
	}
	return n, nil
}

func (r *invitationsRepo) AcceptInvitation(ctx context.Context, id, userID string, now time.Time) (int64, error) {
	n, err := r.q.AcceptInvitation(ctx, gen.AcceptInvitationParams{
		AcceptedBy: mapStringNull(userID),
		Now:        now.UTC(),
		ID:         id,
	})
	if err != nil || n == 0 {
		return n, err
	}

	// The event needs the owning organization.
	row, err := r.q.GetInvitationByID(ctx, id)
	if err != nil {
		return n, err
	}
	r.publish(domain.ChangeEvent{
		Op:             domain.ChangeUpdate,
		OrganizationID: row.OrganizationID,
		InvitationID:   id,
		Status:         domain.StatusAccepted,
	})
	return n, nil
}

func (r *invitationsRepo) MarkExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	rows, err := r.q.MarkExpiredInvitations(ctx, now.UTC())
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		r.publish(domain.ChangeEvent{
			Op:             domain.ChangeUpdate,
			OrganizationID: row.OrganizationID,
			InvitationID:   row.ID,
			Status:         domain.StatusExpired,
		})
	}
	return int64(len(rows)), nil
}

func (r *invitationsRepo) ListExpiringSoon(
	ctx context.Context,
	now time.Time,
	window time.Duration,
) ([]domain.Invitation, error) {
	rows, err := r.q.ListExpiringSoon(ctx, gen.ListExpiringSoonParams{
		Now:     now.UTC(),
		Horizon: now.Add(window).UTC(),
	})
	if err != nil {
		return nil, err
	}
	return mapInvitations(rows), nil
}
