package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

type invitationsRepo struct {
	q querier
}

const invitationColumns = `id, organization_id, email, role, invited_by, status, ticket_hash,
	created_at, expires_at, accepted_by, accepted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row rowScanner, extra ...any) (domain.Invitation, error) {
	var (
		inv        domain.Invitation
		role       string
		status     string
		acceptedBy sql.NullString
		acceptedAt sql.NullTime
	)
	dest := []any{
		&inv.ID, &inv.OrganizationID, &inv.Email, &role, &inv.InvitedBy, &status, &inv.TicketHash,
		&inv.CreatedAt, &inv.ExpiresAt, &acceptedBy, &acceptedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Invitation{}, err
	}

	inv.Role = domain.Role(role)
	inv.Status = domain.Status(status)
	inv.CreatedAt = inv.CreatedAt.UTC()
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	if acceptedBy.Valid {
		v := acceptedBy.String
		inv.AcceptedBy = &v
	}
	if acceptedAt.Valid {
		v := acceptedAt.Time.UTC()
		inv.AcceptedAt = &v
	}
	return inv, nil
}

func collectInvitations(rows *sql.Rows, err error) ([]domain.Invitation, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO team_invitations
			(id, organization_id, email, role, invited_by, status, ticket_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8)`,
		inv.ID, inv.OrganizationID, domain.NormalizeEmail(inv.Email), string(inv.Role),
		inv.InvitedBy, inv.TicketHash, inv.CreatedAt.UTC(), inv.ExpiresAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM team_invitations WHERE id = $1`, id)
	inv, err := scanInvitation(row)
	return inv, mapNotFound(err)
}

func (r *invitationsRepo) GetPendingInvitationByTicketHash(
	ctx context.Context,
	hash string,
	now time.Time,
) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations
		WHERE ticket_hash = $1 AND status = 'pending' AND expires_at > $2`,
		hash, now.UTC())
	inv, err := scanInvitation(row)
	return inv, mapNotFound(err)
}

func (r *invitationsRepo) ListPendingInvitations(
	ctx context.Context,
	orgID string,
	now time.Time,
) ([]domain.PendingInvitation, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+invitationColumns+`, is_expiring_soon, hours_until_expiration
		 FROM get_pending_invitations($1, $2)`,
		orgID, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.PendingInvitation{}
	for rows.Next() {
		var p domain.PendingInvitation
		inv, err := scanInvitation(rows, &p.IsExpiringSoon, &p.HoursUntilExpiration)
		if err != nil {
			return nil, err
		}
		p.Invitation = inv
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) FindPendingInvitation(ctx context.Context, orgID, email string) (domain.Invitation, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations
		WHERE organization_id = $1 AND email = $2 AND status = 'pending'
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		orgID, domain.NormalizeEmail(email))
	inv, err := scanInvitation(row)
	return inv, mapNotFound(err)
}

func (r *invitationsRepo) ListOutstandingInvitationsForEmail(
	ctx context.Context,
	email string,
	now time.Time,
) ([]domain.Invitation, error) {
	return collectInvitations(r.q.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations
		WHERE email = $1 AND status = 'pending' AND expires_at > $2
		ORDER BY created_at ASC, id ASC`,
		domain.NormalizeEmail(email), now.UTC()))
}

func (r *invitationsRepo) CancelInvitation(ctx context.Context, orgID, id string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE team_invitations SET status = 'cancelled'
		WHERE id = $1 AND organization_id = $2 AND status = 'pending'`,
		id, orgID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationsRepo) AcceptInvitation(ctx context.Context, id, userID string, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE team_invitations
		SET status = 'accepted', accepted_by = $2, accepted_at = $3
		WHERE id = $1 AND status = 'pending' AND expires_at > $3`,
		id, userID, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *invitationsRepo) MarkExpiredInvitations(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx, `SELECT mark_expired_invitations($1)`, now.UTC()).Scan(&n)
	return n, err
}

func (r *invitationsRepo) ListExpiringSoon(
	ctx context.Context,
	now time.Time,
	window time.Duration,
) ([]domain.Invitation, error) {
	return collectInvitations(r.q.QueryContext(ctx, `
		SELECT `+invitationColumns+` FROM team_invitations
		WHERE status = 'pending' AND expires_at > $1 AND expires_at <= $2
		ORDER BY expires_at ASC, id ASC`,
		now.UTC(), now.Add(window).UTC()))
}
