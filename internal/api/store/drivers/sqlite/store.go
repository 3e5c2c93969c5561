package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryDSN opens a private in-memory database, used by tests.
const MemoryDSN = ":memory:"

// dbtx is satisfied by both *sql.DB and *sql.Tx so every repository runs
// unchanged inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	q   dbtx
	dsn string
}

// FileDSN builds the DSN for a database file with WAL, a busy timeout,
// foreign keys and immediate write transactions.
func FileDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		path,
	)
}

// NewStore opens dsn. MemoryDSN gets a single connection, since every
// connection to :memory: would otherwise see its own empty database.
func NewStore(dsn string) (*Store, error) {
	memory := dsn == MemoryDSN
	if memory {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs even when the DSN did not ask for it.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, q: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, committing on a nil return.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{q: s.q} }
func (s *Store) Profiles() store.Profiles           { return &profilesRepo{q: s.q} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{q: s.q} }
func (s *Store) Tenants() store.Tenants             { return &tenantsRepo{q: s.q} }
func (s *Store) Roles() store.Roles                 { return &rolesRepo{q: s.q} }
func (s *Store) Tags() store.Tags                   { return &tagsRepo{q: s.q} }
func (s *Store) StorageCredentials() store.StorageCredentials {
	return &storageCredentialsRepo{q: s.q}
}
func (s *Store) Domains() store.Domains               { return &domainsRepo{q: s.q} }
func (s *Store) Senders() store.Senders               { return &sendersRepo{q: s.q} }
func (s *Store) Attachments() store.Attachments       { return &attachmentsRepo{q: s.q} }
func (s *Store) Broadcasts() store.Broadcasts         { return &broadcastsRepo{q: s.q} }
func (s *Store) DataSets() store.DataSets             { return &dataSetsRepo{q: s.q} }
func (s *Store) BalanceEntries() store.BalanceEntries { return &balanceEntriesRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint translates SQLite constraint failures into store errors,
// keeping the driver message for logs.
func mapConstraint(err error) error {
	if err == nil {
		return nil
	}
	var se *msqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", store.ErrAlreadyExists, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", store.ErrInvalidReference, se.Error())
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", store.ErrInvalidReference, msg)
	}
	return err
}

// requireAffected turns a zero-row update or delete into ErrNotFound.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// inClause returns "?,?,?" and the args for ids.
func inClause(ids []string) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?,", len(ids)), ","), args
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func fromNullString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// listIDs reads a single-column id list, e.g. a join table.
func listIDs(ctx context.Context, q dbtx, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// replaceLinks rewrites a join table's rows for owner.
func replaceLinks(ctx context.Context, q dbtx, table, ownerCol, linkCol, owner string, links []string) error {
	// Table and column names come from this package, never from input.
	if _, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE `+ownerCol+` = ?`, owner); err != nil {
		return err
	}
	for _, l := range links {
		_, err := q.ExecContext(ctx,
			`INSERT INTO `+table+` (`+ownerCol+`, `+linkCol+`) VALUES (?, ?) ON CONFLICT DO NOTHING`, owner, l)
		if err != nil {
			return mapConstraint(err)
		}
	}
	return nil
}

func encodeStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func decodeStrings(s string) ([]string, error) {
	out := []string{}
	if s == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(s), &out)
	return out, err
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// queryList runs query and scans every row with scan.
func queryList[T any](ctx context.Context, q dbtx, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

const auditColumns = `created_at, modified_at, created_by, modified_by`

// auditDest returns scan targets matching auditColumns.
func auditDest(a *domain.Audit) []any {
	return []any{&a.CreatedAt, &a.ModifiedAt, &a.CreatedBy, &a.ModifiedBy}
}

func auditArgs(a domain.Audit) []any {
	return []any{a.CreatedAt.UTC(), a.ModifiedAt.UTC(), a.CreatedBy, a.ModifiedBy}
}

// tenantFilter returns " WHERE tenant_id IN (...)" for ids. ok is false when
// ids is empty and the caller should return no rows.
func tenantFilter(ids []string) (clause string, args []any, ok bool) {
	if len(ids) == 0 {
		return "", nil, false
	}
	in, args := inClause(ids)
	return ` WHERE tenant_id IN (` + in + `)`, args, true
}
