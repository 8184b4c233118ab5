// Package postgres is the PostgreSQL store driver. Invitation changes are
// published by a row trigger through NOTIFY and fanned out to subscribers
// from a pq.Listener.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/aussiebroadwan/brandhub/internal/invites/store"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db     *sql.DB
	dsn    string
	hub    *store.Hub
	logger *slog.Logger

	listenOnce sync.Once
	listener   *listener
	listenErr  error
}

// NewStore opens a connection pool for dsn. The LISTEN connection is only
// opened on the first Subscribe.
func NewStore(dsn string, logger *slog.Logger) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &Store{
		db:     db,
		dsn:    dsn,
		hub:    store.NewHub(),
		logger: logger.With("component", "postgres_store"),
	}, nil
}

func (s *Store) Close() error {
	if s.listener != nil {
		s.listener.close()
	}
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
	return &txStore{tx: tx, parent: s}, nil
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

func (s *Store) Invitations() store.Invitations { return &invitationsRepo{q: s.db} }
func (s *Store) Members() store.Members         { return &membersRepo{q: s.db} }
func (s *Store) Changes() store.ChangeFeed      { return (*changeFeed)(s) }

// changeFeed starts LISTEN lazily so stores that never serve the event
// stream hold no extra connection.
type changeFeed Store

func (f *changeFeed) Subscribe(orgID string) (*store.Subscription, error) {
	s := (*Store)(f)
	s.listenOnce.Do(func() {
		s.listener, s.listenErr = startListener(s.dsn, s.hub, s.logger)
	})
	if s.listenErr != nil {
		return nil, s.listenErr
	}
	return s.hub.Subscribe(orgID)
}

type txStore struct {
	tx     *sql.Tx
	parent *Store
}

// NOTIFY is delivered on commit, so the tx needs no event buffering.
func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }
func (t *txStore) Close() error    { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{q: t.tx} }
func (t *txStore) Members() store.Members         { return &membersRepo{q: t.tx} }
func (t *txStore) Changes() store.ChangeFeed      { return t.parent.Changes() }

func (t *txStore) ApplyMigrations() error { return nil }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

const uniqueViolation = "23505"

func mapConstraint(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrAlreadyExists
	}
	return err
}
