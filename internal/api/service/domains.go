package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

const msgDomainExists = "domain already exists for this tenant"

var hostLabel = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

type DomainService struct {
	Base
}

func (s *DomainService) List(ctx context.Context, ident Identity) ([]domain.Domain, error) {
	return s.Store.Domains().ListDomains(ctx, ident.TenantIDs())
}

func (s *DomainService) Get(ctx context.Context, ident Identity, id string) (domain.Domain, error) {
	return getVisible(ctx, ident, s.Store.Domains().GetDomain, id)
}

// Create stores a domain. Only staff may mark it verified.
func (s *DomainService) Create(ctx context.Context, ident Identity, d domain.Domain) (domain.Domain, error) {
	if err := ident.Writable(d.TenantID); err != nil {
		return domain.Domain{}, err
	}
	if d.Verified && !ident.Staff {
		return domain.Domain{}, ErrPermissionDenied
	}
	d.Name = strings.ToLower(strings.TrimSpace(d.Name))
	if err := validateDomain(d); err != nil {
		return domain.Domain{}, err
	}
	d.ID = idx.NewString()
	stampCreate(&d.Audit, ident.UserID, s.now())
	if err := s.Store.Domains().CreateDomain(ctx, d); err != nil {
		return domain.Domain{}, mapStoreErr(err, "name", msgDomainExists)
	}
	return d, nil
}

func (s *DomainService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Domain) error) (domain.Domain, error) {
	var out domain.Domain
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Domains().GetDomain, id)
		if err != nil {
			return err
		}
		d := before
		if err := apply(&d); err != nil {
			return err
		}
		d.ID, d.Audit = before.ID, before.Audit
		if err := checkTenantUnchanged(before.TenantID, d.TenantID); err != nil {
			return err
		}
		if d.Verified != before.Verified && !ident.Staff {
			return ErrPermissionDenied
		}
		d.Name = strings.ToLower(strings.TrimSpace(d.Name))
		if err := validateDomain(d); err != nil {
			return err
		}
		stampUpdate(&d.Audit, ident.UserID, s.now())
		if err := tx.Domains().UpdateDomain(ctx, d); err != nil {
			return mapStoreErr(err, "name", msgDomainExists)
		}
		out = d
		return nil
	})
	return out, err
}

func (s *DomainService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.Domains().GetDomain, id); err != nil {
			return err
		}
		return mapStoreErr(tx.Domains().DeleteDomain(ctx, id), "", "")
	})
}

func validateDomain(d domain.Domain) error {
	var v validator
	v.length(d.Name, 253, "name")
	if d.Name != "" {
		v.check(isHostname(d.Name), "name", "Enter a valid domain name.")
	}
	return v.err()
}

// isHostname accepts dotted DNS names with at least two labels.
func isHostname(s string) bool {
	labels := strings.Split(strings.TrimSuffix(s, "."), ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if !hostLabel.MatchString(l) {
			return false
		}
	}
	return true
}
