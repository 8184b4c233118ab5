package postgres

import (
	"context"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

type membersRepo struct {
	q querier
}

func (r *membersRepo) UpsertMember(ctx context.Context, m domain.Member) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO organization_members (organization_id, user_id, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (organization_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, email = EXCLUDED.email`,
		m.OrganizationID, m.UserID, domain.NormalizeEmail(m.Email), string(m.Role), m.CreatedAt.UTC())
	return err
}

func (r *membersRepo) GetMember(ctx context.Context, orgID, userID string) (domain.Member, error) {
	var (
		m    domain.Member
		role string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT organization_id, user_id, email, role, created_at
		FROM organization_members WHERE organization_id = $1 AND user_id = $2`,
		orgID, userID,
	).Scan(&m.OrganizationID, &m.UserID, &m.Email, &role, &m.CreatedAt)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	m.Role = domain.Role(role)
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

func (r *membersRepo) ListMembers(ctx context.Context, orgID string) ([]domain.Member, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT organization_id, user_id, email, role, created_at
		FROM organization_members WHERE organization_id = $1
		ORDER BY created_at ASC, user_id ASC`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []domain.Member{}
	for rows.Next() {
		var (
			m    domain.Member
			role string
		)
		if err := rows.Scan(&m.OrganizationID, &m.UserID, &m.Email, &role, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Role = domain.Role(role)
		m.CreatedAt = m.CreatedAt.UTC()
		members = append(members, m)
	}
	return members, rows.Err()
}
