package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type tenantsRepo struct {
	q dbtx
}

const tenantSelect = `SELECT id, name, description, ` + auditColumns + ` FROM tenants`

func scanTenant(s scanner) (domain.Tenant, error) {
	var t domain.Tenant
	err := s.Scan(append([]any{&t.ID, &t.Name, &t.Description}, auditDest(&t.Audit)...)...)
	return t, err
}

func (r *tenantsRepo) GetTenant(ctx context.Context, id string) (domain.Tenant, error) {
	t, err := scanTenant(r.q.QueryRowContext(ctx, tenantSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Tenant{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tenantsRepo) ListTenants(ctx context.Context, ids []string) ([]domain.Tenant, error) {
	if len(ids) == 0 {
		return []domain.Tenant{}, nil
	}
	in, args := inClause(ids)
	return queryList(ctx, r.q, scanTenant,
		tenantSelect+` WHERE id IN (`+in+`) ORDER BY created_at DESC, id DESC`, args...)
}

func (r *tenantsRepo) ListAllTenants(ctx context.Context) ([]domain.Tenant, error) {
	return queryList(ctx, r.q, scanTenant, tenantSelect+` ORDER BY created_at DESC, id DESC`)
}

func (r *tenantsRepo) CreateTenant(ctx context.Context, t domain.Tenant) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tenants (id, name, description, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		append([]any{t.ID, t.Name, t.Description}, auditArgs(t.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *tenantsRepo) UpdateTenant(ctx context.Context, t domain.Tenant) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE tenants SET name = ?, description = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		t.Name, t.Description, t.ModifiedAt.UTC(), t.ModifiedBy, t.ID,
	))
}

func (r *tenantsRepo) DeleteTenant(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM tenants WHERE id = ?`, id))
}
