package service

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
)

// Base carries what every resource service needs.
type Base struct {
	Store store.Store

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (b Base) now() time.Time {
	if b.Clock != nil {
		return b.Clock().UTC()
	}
	return time.Now().UTC()
}

func stampCreate(a *domain.Audit, actor string, now time.Time) {
	*a = domain.Audit{CreatedAt: now, ModifiedAt: now, CreatedBy: actor}
}

func stampUpdate(a *domain.Audit, actor string, now time.Time) {
	a.ModifiedAt = now
	a.ModifiedBy = actor
}

type tenantOwned interface {
	Tenant() string
}

// getVisible loads a row and hides it unless the caller's tenants own it.
func getVisible[T tenantOwned](ctx context.Context, ident Identity, get func(context.Context, string) (T, error), id string) (T, error) {
	var zero T
	v, err := get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	if err := ident.Visible(v.Tenant()); err != nil {
		return zero, err
	}
	return v, nil
}

// checkTenantUnchanged rejects moving a row to another tenant.
func checkTenantUnchanged(before, after string) error {
	if before != after {
		return FieldError("tenant", MsgTenantReadOnly)
	}
	return nil
}

// checkRef validates an optional reference to another tenant-owned row:
// it must exist, be visible to the caller and share owner's tenant.
func checkRef[T tenantOwned](ctx context.Context, v *validator, ident Identity, get func(context.Context, string) (T, error), field, id, owner string) error {
	if id == "" {
		return nil
	}
	ref, err := get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		v.add(field, MsgDoesNotExist)
		return nil
	}
	if err != nil {
		return err
	}
	switch {
	case ident.Visible(ref.Tenant()) != nil:
		v.add(field, MsgDoesNotExist)
	case ref.Tenant() != owner:
		v.add(field, MsgSameTenant)
	}
	return nil
}

func checkRefs[T tenantOwned](ctx context.Context, v *validator, ident Identity, get func(context.Context, string) (T, error), field string, ids []string, owner string) error {
	for _, id := range ids {
		if err := checkRef(ctx, v, ident, get, field, id, owner); err != nil {
			return err
		}
	}
	return nil
}

// dedupe keeps the first occurrence of each id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
