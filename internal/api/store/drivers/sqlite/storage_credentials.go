package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type storageCredentialsRepo struct {
	q dbtx
}

const storageCredentialSelect = `SELECT id, tenant_id, name, stype, access_key_id, secret_access_key,
	endpoint, bucket, region, ` + auditColumns + ` FROM storage_credentials`

func scanStorageCredential(s scanner) (domain.StorageCredential, error) {
	var c domain.StorageCredential
	dest := []any{&c.ID, &c.TenantID, &c.Name, &c.SType, &c.AccessKeyID, &c.SecretAccessKey,
		&c.Endpoint, &c.Bucket, &c.Region}
	err := s.Scan(append(dest, auditDest(&c.Audit)...)...)
	return c, err
}

func (r *storageCredentialsRepo) GetStorageCredential(ctx context.Context, id string) (domain.StorageCredential, error) {
	c, err := scanStorageCredential(r.q.QueryRowContext(ctx, storageCredentialSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.StorageCredential{}, mapNotFound(err)
	}
	return c, nil
}

func (r *storageCredentialsRepo) ListStorageCredentials(ctx context.Context, tenantIDs []string) ([]domain.StorageCredential, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.StorageCredential{}, nil
	}
	return queryList(ctx, r.q, scanStorageCredential,
		storageCredentialSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *storageCredentialsRepo) CreateStorageCredential(ctx context.Context, c domain.StorageCredential) error {
	args := []any{c.ID, c.TenantID, c.Name, c.SType, c.AccessKeyID, c.SecretAccessKey, c.Endpoint, c.Bucket, c.Region}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO storage_credentials (id, tenant_id, name, stype, access_key_id, secret_access_key,
		 endpoint, bucket, region, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(c.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *storageCredentialsRepo) UpdateStorageCredential(ctx context.Context, c domain.StorageCredential) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE storage_credentials SET name = ?, stype = ?, access_key_id = ?, secret_access_key = ?,
		 endpoint = ?, bucket = ?, region = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		c.Name, c.SType, c.AccessKeyID, c.SecretAccessKey, c.Endpoint, c.Bucket, c.Region,
		c.ModifiedAt.UTC(), c.ModifiedBy, c.ID,
	))
}

func (r *storageCredentialsRepo) DeleteStorageCredential(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM storage_credentials WHERE id = ?`, id))
}
