package sqlite

import (
	"context"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite/gen"
)

type membersRepo struct {
	q *gen.Queries
}

func (r *membersRepo) UpsertMember(ctx context.Context, m domain.Member) error {
	return r.q.UpsertMember(ctx, gen.UpsertMemberParams{
		OrganizationID: m.OrganizationID,
		UserID:         m.UserID,
		Email:          domain.NormalizeEmail(m.Email),
		Role:           string(m.Role),
		CreatedAt:      m.CreatedAt.UTC(),
	})
}

func (r *membersRepo) GetMember(ctx context.Context, orgID, userID string) (domain.Member, error) {
	row, err := r.q.GetMember(ctx, gen.GetMemberParams{OrganizationID: orgID, UserID: userID})
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return mapMember(row), nil
}

func (r *membersRepo) ListMembers(ctx context.Context, orgID string) ([]domain.Member, error) {
	rows, err := r.q.ListMembers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	members := make([]domain.Member, len(rows))
	for i, row := range rows {
		members[i] = mapMember(row)
	}
	return members, nil
}
