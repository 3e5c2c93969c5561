package service

import (
	"context"
	"errors"
	"sort"

	"github.com/aussiebroadwan/dds2/internal/api/store"
)

// TenantSet is the set of tenant ids a user belongs to.
type TenantSet map[string]struct{}

func NewTenantSet(ids ...string) TenantSet {
	s := make(TenantSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s TenantSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s TenantSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TenantResolver maps a user to the tenants its profile grants.
type TenantResolver struct {
	Store store.Store
}

// Resolve returns the user's tenant set. A user without a profile belongs to
// no tenants.
func (r *TenantResolver) Resolve(ctx context.Context, userID string) (TenantSet, error) {
	p, err := r.Store.Profiles().GetProfileByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return TenantSet{}, nil
	}
	if err != nil {
		return nil, err
	}
	return NewTenantSet(p.TenantIDs...), nil
}

// Identify builds the caller's Identity. Missing or inactive users are
// ErrUnauthenticated.
func (r *TenantResolver) Identify(ctx context.Context, userID string) (Identity, error) {
	u, err := r.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ErrUnauthenticated
	}
	if err != nil {
		return Identity{}, err
	}
	if !u.IsActive {
		return Identity{}, ErrUnauthenticated
	}

	tenants, err := r.Resolve(ctx, u.ID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: u.ID, Username: u.Username, Staff: u.IsStaff, Tenants: tenants}, nil
}

// Identity is the authenticated caller as seen by every service.
type Identity struct {
	UserID   string
	Username string
	Staff    bool
	Tenants  TenantSet
}

// Visible hides rows of foreign tenants behind ErrNotFound.
func (i Identity) Visible(tenantID string) error {
	if !i.Tenants.Has(tenantID) {
		return ErrNotFound
	}
	return nil
}

// Writable rejects a tenant reference outside the caller's set.
func (i Identity) Writable(tenantID string) error {
	if tenantID == "" {
		return FieldError("tenant", MsgRequired)
	}
	if !i.Tenants.Has(tenantID) {
		return FieldError("tenant", MsgDoesNotExist)
	}
	return nil
}

// TenantIDs is the filter for list queries.
func (i Identity) TenantIDs() []string { return i.Tenants.IDs() }

func (i Identity) RequireStaff() error {
	if !i.Staff {
		return ErrPermissionDenied
	}
	return nil
}

type identityKey struct{}

// WithIdentity stores the caller on ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
