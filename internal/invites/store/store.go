package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx can't start another transaction.
type Store interface {
	Invitations() Invitations
	Members() Members

	// Changes is the change feed for invitation rows.
	Changes() ChangeFeed

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Invitations interface {
	// CreateInvitation inserts a pending invitation. The id and ticket hash
	// are provided by the caller. A duplicate ticket hash is ErrAlreadyExists.
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	// GetInvitationByID returns an invitation in any status.
	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	// GetPendingInvitationByTicketHash returns a pending, unexpired
	// invitation by the fingerprint of its ticket.
	GetPendingInvitationByTicketHash(ctx context.Context, hash string, now time.Time) (domain.Invitation, error)

	// ListPendingInvitations returns the organization's pending, unexpired
	// invitations enriched against now, soonest expiry first.
	ListPendingInvitations(ctx context.Context, orgID string, now time.Time) ([]domain.PendingInvitation, error)

	// FindPendingInvitation returns the newest pending invitation for an
	// email in an organization, expired or not.
	FindPendingInvitation(ctx context.Context, orgID, email string) (domain.Invitation, error)

	// ListOutstandingInvitationsForEmail returns pending, unexpired
	// invitations addressed to email across all organizations, oldest first.
	ListOutstandingInvitationsForEmail(ctx context.Context, email string, now time.Time) ([]domain.Invitation, error)

	// CancelInvitation moves a pending invitation of orgID to cancelled.
	// It returns the number of rows affected: 0 when the invitation belongs
	// to another organization or is no longer pending.
	CancelInvitation(ctx context.Context, orgID, id string) (int64, error)

	// AcceptInvitation moves a pending, unexpired invitation to accepted.
	// It returns 0 rows when another transition won the race.
	AcceptInvitation(ctx context.Context, id, userID string, now time.Time) (int64, error)

	// MarkExpiredInvitations moves every pending invitation with
	// expires_at <= now to expired in one statement and returns the count.
	MarkExpiredInvitations(ctx context.Context, now time.Time) (int64, error)

	// ListExpiringSoon returns pending invitations with
	// now < expires_at <= now+window.
	ListExpiringSoon(ctx context.Context, now time.Time, window time.Duration) ([]domain.Invitation, error)
}

type Members interface {
	// UpsertMember creates the membership or updates its role.
	UpsertMember(ctx context.Context, m domain.Member) error

	GetMember(ctx context.Context, orgID, userID string) (domain.Member, error)

	// ListMembers returns an organization's members, oldest first.
	ListMembers(ctx context.Context, orgID string) ([]domain.Member, error)
}
