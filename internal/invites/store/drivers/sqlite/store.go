package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite/gen"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	hub *store.Hub
	dsn string
}

// NewStore opens a sqlite database. Timestamps are always written in the
// sqlite text format so range predicates compare correctly.
func NewStore(dsn string) (*Store, error) {
	dsn = withTimeFormat(dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is its own database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		hub: store.NewHub(),
		dsn: dsn,
	}, nil
}

func withTimeFormat(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_time_format=sqlite"
	}
	return dsn + "?_time_format=sqlite"
}

func (s *Store) Close() error {
	s.hub.Close()
	return s.db.Close()
}

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.hub), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Invitations() store.Invitations {
	return &invitationsRepo{q: s.q, publish: s.hub.Publish}
}
func (s *Store) Members() store.Members    { return &membersRepo{q: s.q} }
func (s *Store) Changes() store.ChangeFeed { return s.hub }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapConstraint(err error) error {
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	return err
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapInvitation(row gen.TeamInvitation) domain.Invitation {
	return domain.Invitation{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		Email:          row.Email,
		Role:           domain.Role(row.Role),
		InvitedBy:      row.InvitedBy,
		Status:         domain.Status(row.Status),
		TicketHash:     row.TicketHash,
		CreatedAt:      row.CreatedAt.UTC(),
		ExpiresAt:      row.ExpiresAt.UTC(),
		AcceptedBy:     mapNullStringPtr(row.AcceptedBy),
		AcceptedAt:     mapNullTimePtr(row.AcceptedAt),
	}
}

func mapInvitations(rows []gen.TeamInvitation) []domain.Invitation {
	out := make([]domain.Invitation, len(rows))
	for i, row := range rows {
		out[i] = mapInvitation(row)
	}
	return out
}

func mapMember(row gen.OrganizationMember) domain.Member {
	return domain.Member{
		OrganizationID: row.OrganizationID,
		UserID:         row.UserID,
		Email:          row.Email,
		Role:           domain.Role(row.Role),
		CreatedAt:      row.CreatedAt.UTC(),
	}
}
