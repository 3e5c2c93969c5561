package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type domainsRepo struct {
	q dbtx
}

const domainSelect = `SELECT id, tenant_id, name, verified, ` + auditColumns + ` FROM domains`

func scanDomain(s scanner) (domain.Domain, error) {
	var d domain.Domain
	err := s.Scan(append([]any{&d.ID, &d.TenantID, &d.Name, &d.Verified}, auditDest(&d.Audit)...)...)
	return d, err
}

func (r *domainsRepo) GetDomain(ctx context.Context, id string) (domain.Domain, error) {
	d, err := scanDomain(r.q.QueryRowContext(ctx, domainSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Domain{}, mapNotFound(err)
	}
	return d, nil
}

func (r *domainsRepo) ListDomains(ctx context.Context, tenantIDs []string) ([]domain.Domain, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Domain{}, nil
	}
	return queryList(ctx, r.q, scanDomain, domainSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *domainsRepo) CreateDomain(ctx context.Context, d domain.Domain) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO domains (id, tenant_id, name, verified, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{d.ID, d.TenantID, d.Name, d.Verified}, auditArgs(d.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *domainsRepo) UpdateDomain(ctx context.Context, d domain.Domain) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE domains SET name = ?, verified = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		d.Name, d.Verified, d.ModifiedAt.UTC(), d.ModifiedBy, d.ID,
	))
}

func (r *domainsRepo) DeleteDomain(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM domains WHERE id = ?`, id))
}
