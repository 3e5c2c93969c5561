package service

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

type TenantService struct {
	Base
}

// List returns every tenant to staff and the caller's own tenants otherwise.
func (s *TenantService) List(ctx context.Context, ident Identity) ([]domain.Tenant, error) {
	if ident.Staff {
		return s.Store.Tenants().ListAllTenants(ctx)
	}
	return s.Store.Tenants().ListTenants(ctx, ident.TenantIDs())
}

func (s *TenantService) Get(ctx context.Context, ident Identity, id string) (domain.Tenant, error) {
	return s.get(ctx, s.Store, ident, id)
}

func (s *TenantService) get(ctx context.Context, st store.Store, ident Identity, id string) (domain.Tenant, error) {
	if !ident.Staff {
		if err := ident.Visible(id); err != nil {
			return domain.Tenant{}, err
		}
	}
	t, err := st.Tenants().GetTenant(ctx, id)
	if err != nil {
		return domain.Tenant{}, mapStoreErr(err, "", "")
	}
	return t, nil
}

func (s *TenantService) Create(ctx context.Context, ident Identity, t domain.Tenant) (domain.Tenant, error) {
	if err := ident.RequireStaff(); err != nil {
		return domain.Tenant{}, err
	}
	if err := validateTenant(t); err != nil {
		return domain.Tenant{}, err
	}
	t.ID = idx.NewString()
	stampCreate(&t.Audit, ident.UserID, s.now())
	if err := s.Store.Tenants().CreateTenant(ctx, t); err != nil {
		return domain.Tenant{}, mapStoreErr(err, "name", "tenant with this name already exists")
	}
	return t, nil
}

func (s *TenantService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Tenant) error) (domain.Tenant, error) {
	if err := ident.RequireStaff(); err != nil {
		return domain.Tenant{}, err
	}
	var out domain.Tenant
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := s.get(ctx, tx, ident, id)
		if err != nil {
			return err
		}
		t := before
		if err := apply(&t); err != nil {
			return err
		}
		t.ID, t.Audit = before.ID, before.Audit
		if err := validateTenant(t); err != nil {
			return err
		}
		stampUpdate(&t.Audit, ident.UserID, s.now())
		if err := tx.Tenants().UpdateTenant(ctx, t); err != nil {
			return mapStoreErr(err, "name", "tenant with this name already exists")
		}
		out = t
		return nil
	})
	return out, err
}

// Delete removes the tenant and everything it owns.
func (s *TenantService) Delete(ctx context.Context, ident Identity, id string) error {
	if err := ident.RequireStaff(); err != nil {
		return err
	}
	return mapStoreErr(s.Store.Tenants().DeleteTenant(ctx, id), "", "")
}

func validateTenant(t domain.Tenant) error {
	var v validator
	v.length(t.Name, 128, "name")
	v.maxLen(t.Description, 256, "description")
	return v.err()
}
