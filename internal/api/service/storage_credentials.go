package service

import (
	"context"
	"net/url"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

const msgCredentialExists = "storage credential with this name already exists"

type StorageCredentialService struct {
	Base
}

func (s *StorageCredentialService) List(ctx context.Context, ident Identity) ([]domain.StorageCredential, error) {
	return s.Store.StorageCredentials().ListStorageCredentials(ctx, ident.TenantIDs())
}

func (s *StorageCredentialService) Get(ctx context.Context, ident Identity, id string) (domain.StorageCredential, error) {
	return getVisible(ctx, ident, s.Store.StorageCredentials().GetStorageCredential, id)
}

func (s *StorageCredentialService) Create(ctx context.Context, ident Identity, c domain.StorageCredential) (domain.StorageCredential, error) {
	if err := ident.Writable(c.TenantID); err != nil {
		return domain.StorageCredential{}, err
	}
	if err := validateStorageCredential(c); err != nil {
		return domain.StorageCredential{}, err
	}
	c.ID = idx.NewString()
	stampCreate(&c.Audit, ident.UserID, s.now())
	if err := s.Store.StorageCredentials().CreateStorageCredential(ctx, c); err != nil {
		return domain.StorageCredential{}, mapStoreErr(err, "name", msgCredentialExists)
	}
	return c, nil
}

// Update applies changes. Key material the caller leaves untouched is kept.
func (s *StorageCredentialService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.StorageCredential) error) (domain.StorageCredential, error) {
	var out domain.StorageCredential
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.StorageCredentials().GetStorageCredential, id)
		if err != nil {
			return err
		}
		c := before
		if err := apply(&c); err != nil {
			return err
		}
		c.ID, c.Audit = before.ID, before.Audit
		if err := checkTenantUnchanged(before.TenantID, c.TenantID); err != nil {
			return err
		}
		if err := validateStorageCredential(c); err != nil {
			return err
		}
		stampUpdate(&c.Audit, ident.UserID, s.now())
		if err := tx.StorageCredentials().UpdateStorageCredential(ctx, c); err != nil {
			return mapStoreErr(err, "name", msgCredentialExists)
		}
		out = c
		return nil
	})
	return out, err
}

func (s *StorageCredentialService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.StorageCredentials().GetStorageCredential, id); err != nil {
			return err
		}
		return mapStoreErr(tx.StorageCredentials().DeleteStorageCredential(ctx, id), "", "")
	})
}

func validateStorageCredential(c domain.StorageCredential) error {
	var v validator
	v.length(c.Name, 40, "name")
	v.check(c.SType.Valid(), "stype", `"`+string(c.SType)+`" is not a valid choice.`)
	v.maxLen(c.AccessKeyID, 128, "access_key_id")
	v.maxLen(c.SecretAccessKey, 256, "secret_access_key")
	v.maxLen(c.Endpoint, 200, "endpoint")
	if c.Endpoint != "" {
		v.check(isHTTPURL(c.Endpoint), "endpoint", "Enter a valid URL.")
	}
	v.maxLen(c.Bucket, 128, "bucket")
	v.maxLen(c.Region, 64, "region")
	return v.err()
}

// isHTTPURL reports whether s is an absolute http or https URL.
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
