package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type balanceEntriesRepo struct {
	q dbtx
}

const balanceEntrySelect = `SELECT id, tenant_id, channel_type, qty, balance, origin_type, origin_id, ` +
	auditColumns + ` FROM balance_entries`

func scanBalanceEntry(s scanner) (domain.BalanceEntry, error) {
	var e domain.BalanceEntry
	dest := []any{&e.ID, &e.TenantID, &e.ChannelType, &e.Qty, &e.Balance, &e.OriginType, &e.OriginID}
	err := s.Scan(append(dest, auditDest(&e.Audit)...)...)
	return e, err
}

func (r *balanceEntriesRepo) GetBalanceEntry(ctx context.Context, id string) (domain.BalanceEntry, error) {
	e, err := scanBalanceEntry(r.q.QueryRowContext(ctx, balanceEntrySelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.BalanceEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *balanceEntriesRepo) ListBalanceEntries(ctx context.Context, tenantIDs []string) ([]domain.BalanceEntry, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.BalanceEntry{}, nil
	}
	return queryList(ctx, r.q, scanBalanceEntry,
		balanceEntrySelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

// LatestBalanceEntry follows insertion order, which survives clock skew.
func (r *balanceEntriesRepo) LatestBalanceEntry(ctx context.Context, tenantID string, channel domain.ChannelType) (domain.BalanceEntry, error) {
	e, err := scanBalanceEntry(r.q.QueryRowContext(ctx,
		balanceEntrySelect+` WHERE tenant_id = ? AND channel_type = ? ORDER BY rowid DESC LIMIT 1`,
		tenantID, channel))
	if err != nil {
		return domain.BalanceEntry{}, mapNotFound(err)
	}
	return e, nil
}

func (r *balanceEntriesRepo) CreateBalanceEntry(ctx context.Context, e domain.BalanceEntry) error {
	args := []any{e.ID, e.TenantID, e.ChannelType, e.Qty, e.Balance, e.OriginType, e.OriginID}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO balance_entries (id, tenant_id, channel_type, qty, balance, origin_type, origin_id, `+
			auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(e.Audit)...)...,
	)
	return mapConstraint(err)
}
