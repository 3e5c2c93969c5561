package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type rolesRepo struct {
	q dbtx
}

const roleSelect = `SELECT id, tenant_id, role, ` + auditColumns + ` FROM roles`

func scanRole(s scanner) (domain.Role, error) {
	var r domain.Role
	err := s.Scan(append([]any{&r.ID, &r.TenantID, &r.Role}, auditDest(&r.Audit)...)...)
	return r, err
}

func (r *rolesRepo) GetRole(ctx context.Context, id string) (domain.Role, error) {
	role, err := scanRole(r.q.QueryRowContext(ctx, roleSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Role{}, mapNotFound(err)
	}
	return role, nil
}

func (r *rolesRepo) ListRoles(ctx context.Context, tenantIDs []string) ([]domain.Role, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Role{}, nil
	}
	return queryList(ctx, r.q, scanRole, roleSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO roles (id, tenant_id, role, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		append([]any{role.ID, role.TenantID, role.Role}, auditArgs(role.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *rolesRepo) UpdateRole(ctx context.Context, role domain.Role) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE roles SET role = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		role.Role, role.ModifiedAt.UTC(), role.ModifiedBy, role.ID,
	))
}

func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id))
}
