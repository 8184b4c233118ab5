package postgres

import (
	"context"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

// Truncate empties every table so tests sharing a container start clean.
func Truncate(ctx context.Context, s *Store) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE team_invitations, organization_members`)
	return err
}

// ForceStatus writes a status without the pending guard in the WHERE
// clause, so only the trigger stands in the way.
func ForceStatus(ctx context.Context, s *Store, id string, status domain.Status) error {
	_, err := s.db.ExecContext(ctx, `UPDATE team_invitations SET status = $2 WHERE id = $1`, id, string(status))
	return err
}
