package service

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

const msgRoleExists = "role already exists for this tenant"

type RoleService struct {
	Base
}

func (s *RoleService) List(ctx context.Context, ident Identity) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx, ident.TenantIDs())
}

func (s *RoleService) Get(ctx context.Context, ident Identity, id string) (domain.Role, error) {
	return getVisible(ctx, ident, s.Store.Roles().GetRole, id)
}

func (s *RoleService) Create(ctx context.Context, ident Identity, r domain.Role) (domain.Role, error) {
	if err := ident.Writable(r.TenantID); err != nil {
		return domain.Role{}, err
	}
	if err := validateRole(r); err != nil {
		return domain.Role{}, err
	}
	r.ID = idx.NewString()
	stampCreate(&r.Audit, ident.UserID, s.now())
	if err := s.Store.Roles().CreateRole(ctx, r); err != nil {
		return domain.Role{}, mapStoreErr(err, "role", msgRoleExists)
	}
	return r, nil
}

func (s *RoleService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Role) error) (domain.Role, error) {
	var out domain.Role
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Roles().GetRole, id)
		if err != nil {
			return err
		}
		r := before
		if err := apply(&r); err != nil {
			return err
		}
		r.ID, r.Audit = before.ID, before.Audit
		if err := checkTenantUnchanged(before.TenantID, r.TenantID); err != nil {
			return err
		}
		if err := validateRole(r); err != nil {
			return err
		}
		stampUpdate(&r.Audit, ident.UserID, s.now())
		if err := tx.Roles().UpdateRole(ctx, r); err != nil {
			return mapStoreErr(err, "role", msgRoleExists)
		}
		out = r
		return nil
	})
	return out, err
}

func (s *RoleService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.Roles().GetRole, id); err != nil {
			return err
		}
		return mapStoreErr(tx.Roles().DeleteRole(ctx, id), "", "")
	})
}

func validateRole(r domain.Role) error {
	var v validator
	v.check(r.Role.Valid(), "role", `"`+string(r.Role)+`" is not a valid choice.`)
	return v.err()
}
