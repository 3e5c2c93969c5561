package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/dds2/internal/api/store"
)

type txStore struct {
	tx *sql.Tx
	q  dbtx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx, q: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

// Ping is a no-op; the transaction already holds a live connection.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{q: t.q} }
func (t *txStore) Profiles() store.Profiles           { return &profilesRepo{q: t.q} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: t.q} }
func (t *txStore) Tenants() store.Tenants             { return &tenantsRepo{q: t.q} }
func (t *txStore) Roles() store.Roles                 { return &rolesRepo{q: t.q} }
func (t *txStore) Tags() store.Tags                   { return &tagsRepo{q: t.q} }
func (t *txStore) StorageCredentials() store.StorageCredentials {
	return &storageCredentialsRepo{q: t.q}
}
func (t *txStore) Domains() store.Domains               { return &domainsRepo{q: t.q} }
func (t *txStore) Senders() store.Senders               { return &sendersRepo{q: t.q} }
func (t *txStore) Attachments() store.Attachments       { return &attachmentsRepo{q: t.q} }
func (t *txStore) Broadcasts() store.Broadcasts         { return &broadcastsRepo{q: t.q} }
func (t *txStore) DataSets() store.DataSets             { return &dataSetsRepo{q: t.q} }
func (t *txStore) BalanceEntries() store.BalanceEntries { return &balanceEntriesRepo{q: t.q} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
