package service

import (
	"context"
	"errors"
	"slices"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

const msgProfileExists = "profile for this user already exists"

type ProfileService struct {
	Base
}

// List returns every profile to staff. Others see their own profile and the
// profiles sharing one of their tenants.
func (s *ProfileService) List(ctx context.Context, ident Identity) ([]domain.Profile, error) {
	if ident.Staff {
		return s.Store.Profiles().ListAllProfiles(ctx)
	}
	return s.Store.Profiles().ListProfiles(ctx, ident.TenantIDs(), ident.UserID)
}

func (s *ProfileService) Get(ctx context.Context, ident Identity, id string) (domain.Profile, error) {
	return loadProfile(ctx, s.Store, ident, id)
}

// loadProfile hides profiles the caller cannot see behind ErrNotFound.
func loadProfile(ctx context.Context, st store.Store, ident Identity, id string) (domain.Profile, error) {
	p, err := st.Profiles().GetProfileByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if !profileVisible(ident, p) {
		return domain.Profile{}, ErrNotFound
	}
	return p, nil
}

func profileVisible(ident Identity, p domain.Profile) bool {
	if ident.Staff || p.UserID == ident.UserID {
		return true
	}
	return slices.ContainsFunc(p.TenantIDs, ident.Tenants.Has)
}

// Create is staff only. It grants the user its tenant memberships.
func (s *ProfileService) Create(ctx context.Context, ident Identity, p domain.Profile) (domain.Profile, error) {
	if err := ident.RequireStaff(); err != nil {
		return domain.Profile{}, err
	}
	p.ID = idx.NewString()
	p.VerifiedNumber, p.Enable2FA, p.TOTPSecret = false, false, ""
	p.TenantIDs, p.RoleIDs = dedupe(p.TenantIDs), dedupe(p.RoleIDs)

	var out domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var v validator
		v.required(p.UserID, "user")
		if p.UserID != "" {
			if _, err := tx.Users().GetUserByID(ctx, p.UserID); errors.Is(err, store.ErrNotFound) {
				v.add("user", MsgDoesNotExist)
			} else if err != nil {
				return err
			}
		}
		if err := validateProfile(ctx, tx, &v, p); err != nil {
			return err
		}
		if err := v.err(); err != nil {
			return err
		}
		if err := tx.Profiles().CreateProfile(ctx, p); err != nil {
			return mapStoreErr(err, "user", msgProfileExists)
		}
		created, err := tx.Profiles().GetProfileByID(ctx, p.ID)
		out = created
		return err
	})
	return out, err
}

// Update lets staff edit any visible profile. Other users may edit their own
// contact details but not their tenants or roles.
func (s *ProfileService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Profile) error) (domain.Profile, error) {
	var out domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := loadProfile(ctx, tx, ident, id)
		if err != nil {
			return err
		}
		if !ident.Staff && before.UserID != ident.UserID {
			return ErrPermissionDenied
		}
		p := before
		if err := apply(&p); err != nil {
			return err
		}
		p.ID, p.Username = before.ID, before.Username
		p.VerifiedNumber, p.Enable2FA, p.TOTPSecret = before.VerifiedNumber, before.Enable2FA, before.TOTPSecret
		p.TenantIDs, p.RoleIDs = dedupe(p.TenantIDs), dedupe(p.RoleIDs)
		if p.UserID != before.UserID {
			return FieldError("user", "user cannot be changed")
		}
		if !ident.Staff && (!sameSet(p.TenantIDs, before.TenantIDs) || !sameSet(p.RoleIDs, before.RoleIDs)) {
			return ErrPermissionDenied
		}

		var v validator
		if err := validateProfile(ctx, tx, &v, p); err != nil {
			return err
		}
		if err := v.err(); err != nil {
			return err
		}
		if err := tx.Profiles().UpdateProfile(ctx, p); err != nil {
			return mapStoreErr(err, "user", msgProfileExists)
		}
		out, err = tx.Profiles().GetProfileByID(ctx, p.ID)
		return err
	})
	return out, err
}

func (s *ProfileService) Delete(ctx context.Context, ident Identity, id string) error {
	if err := ident.RequireStaff(); err != nil {
		return err
	}
	return mapStoreErr(s.Store.Profiles().DeleteProfile(ctx, id), "", "")
}

// validateProfile checks referenced tenants exist and every role belongs to
// one of them.
func validateProfile(ctx context.Context, tx store.Store, v *validator, p domain.Profile) error {
	v.maxLen(p.MobileNumber, 20, "mobile_number")

	tenants := NewTenantSet(p.TenantIDs...)
	for _, id := range p.TenantIDs {
		_, err := tx.Tenants().GetTenant(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			v.add("tenants", MsgDoesNotExist)
			continue
		}
		if err != nil {
			return err
		}
	}
	for _, id := range p.RoleIDs {
		r, err := tx.Roles().GetRole(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			v.add("roles", MsgDoesNotExist)
			continue
		}
		if err != nil {
			return err
		}
		v.check(tenants.Has(r.TenantID), "roles", "role must belong to one of the profile's tenants")
	}
	return nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := NewTenantSet(a...)
	for _, x := range b {
		if !set.Has(x) {
			return false
		}
	}
	return true
}
