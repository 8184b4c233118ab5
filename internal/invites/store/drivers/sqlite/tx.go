package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/aussiebroadwan/brandhub/internal/invites/domain"
	"github.com/aussiebroadwan/brandhub/internal/invites/store"
	"github.com/aussiebroadwan/brandhub/internal/invites/store/drivers/sqlite/gen"
)

// txStore buffers change events until Commit so subscribers never see a
// change that was rolled back.
type txStore struct {
	tx  *sql.Tx
	q   *gen.Queries
	hub *store.Hub

	mu      sync.Mutex
	pending []domain.ChangeEvent
}

func newTx(tx *sql.Tx, hub *store.Hub) *txStore {
	return &txStore{
		tx:  tx,
		q:   gen.New(tx),
		hub: hub,
	}
}

func (t *txStore) buffer(ev domain.ChangeEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = append(t.pending, ev)
}

func (t *txStore) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}

	t.mu.Lock()
	events := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, ev := range events {
		t.hub.Publish(ev)
	}
	return nil
}

func (t *txStore) Rollback() error {
	t.mu.Lock()
	t.pending = nil
	t.mu.Unlock()
	return t.tx.Rollback()
}

func (t *txStore) Close() error { return nil } // caller commits or rolls back; the DB stays open

// Ping is a no-op for transactions.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Invitations() store.Invitations {
	return &invitationsRepo{q: t.q, publish: t.buffer}
}
func (t *txStore) Members() store.Members    { return &membersRepo{q: t.q} }
func (t *txStore) Changes() store.ChangeFeed { return t.hub }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations run before any tx
