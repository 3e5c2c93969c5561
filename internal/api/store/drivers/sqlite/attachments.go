package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type attachmentsRepo struct {
	q dbtx
}

const attachmentSelect = `SELECT id, tenant_id, description, source, url, storage_key, storage_credential_id,
	naming, url_param, filename_template, unzip, file, ` + auditColumns + ` FROM attachments`

func scanAttachment(s scanner) (domain.Attachment, error) {
	var (
		a    domain.Attachment
		cred sql.NullString
	)
	dest := []any{&a.ID, &a.TenantID, &a.Description, &a.Source, &a.URL, &a.StorageKey, &cred,
		&a.Naming, &a.URLParam, &a.FilenameTemplate, &a.Unzip, &a.File}
	if err := s.Scan(append(dest, auditDest(&a.Audit)...)...); err != nil {
		return domain.Attachment{}, err
	}
	a.StorageCredentialID = fromNullString(cred)
	return a, nil
}

func (r *attachmentsRepo) GetAttachment(ctx context.Context, id string) (domain.Attachment, error) {
	a, err := scanAttachment(r.q.QueryRowContext(ctx, attachmentSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Attachment{}, mapNotFound(err)
	}
	return a, nil
}

func (r *attachmentsRepo) ListAttachments(ctx context.Context, tenantIDs []string) ([]domain.Attachment, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Attachment{}, nil
	}
	return queryList(ctx, r.q, scanAttachment,
		attachmentSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
}

func (r *attachmentsRepo) CreateAttachment(ctx context.Context, a domain.Attachment) error {
	args := []any{a.ID, a.TenantID, a.Description, a.Source, a.URL, a.StorageKey,
		nullString(a.StorageCredentialID), a.Naming, a.URLParam, a.FilenameTemplate, a.Unzip, a.File}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO attachments (id, tenant_id, description, source, url, storage_key, storage_credential_id,
		 naming, url_param, filename_template, unzip, file, `+auditColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(a.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *attachmentsRepo) UpdateAttachment(ctx context.Context, a domain.Attachment) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE attachments SET description = ?, source = ?, url = ?, storage_key = ?, storage_credential_id = ?,
		 naming = ?, url_param = ?, filename_template = ?, unzip = ?, file = ?, modified_at = ?, modified_by = ?
		 WHERE id = ?`,
		a.Description, a.Source, a.URL, a.StorageKey, nullString(a.StorageCredentialID),
		a.Naming, a.URLParam, a.FilenameTemplate, a.Unzip, a.File, a.ModifiedAt.UTC(), a.ModifiedBy, a.ID,
	))
}

func (r *attachmentsRepo) DeleteAttachment(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id))
}
