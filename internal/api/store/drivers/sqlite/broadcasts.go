package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type broadcastsRepo struct {
	q dbtx
}

const broadcastSelect = `SELECT id, tenant_id, name, channel_type, domain_id, sender_id, storage_credential_id,
	status, email_subject, email_body, ` + auditColumns + ` FROM broadcasts`

func scanBroadcast(s scanner) (domain.Broadcast, error) {
	var (
		b                 domain.Broadcast
		dom, sender, cred sql.NullString
	)
	dest := []any{&b.ID, &b.TenantID, &b.Name, &b.ChannelType, &dom, &sender, &cred,
		&b.Status, &b.EmailSubject, &b.EmailBody}
	if err := s.Scan(append(dest, auditDest(&b.Audit)...)...); err != nil {
		return domain.Broadcast{}, err
	}
	b.DomainID = fromNullString(dom)
	b.SenderID = fromNullString(sender)
	b.StorageCredentialID = fromNullString(cred)
	return b, nil
}

func (r *broadcastsRepo) loadLinks(ctx context.Context, b *domain.Broadcast) error {
	var err error
	b.TagIDs, err = listIDs(ctx, r.q,
		`SELECT tag_id FROM broadcast_tags WHERE broadcast_id = ? ORDER BY tag_id`, b.ID)
	if err != nil {
		return err
	}
	b.AttachmentIDs, err = listIDs(ctx, r.q,
		`SELECT attachment_id FROM broadcast_attachments WHERE broadcast_id = ? ORDER BY attachment_id`, b.ID)
	return err
}

func (r *broadcastsRepo) GetBroadcast(ctx context.Context, id string) (domain.Broadcast, error) {
	b, err := scanBroadcast(r.q.QueryRowContext(ctx, broadcastSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Broadcast{}, mapNotFound(err)
	}
	if err := r.loadLinks(ctx, &b); err != nil {
		return domain.Broadcast{}, err
	}
	return b, nil
}

func (r *broadcastsRepo) ListBroadcasts(ctx context.Context, tenantIDs []string) ([]domain.Broadcast, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Broadcast{}, nil
	}
	out, err := queryList(ctx, r.q, scanBroadcast,
		broadcastSelect+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := r.loadLinks(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *broadcastsRepo) CreateBroadcast(ctx context.Context, b domain.Broadcast) error {
	args := []any{b.ID, b.TenantID, b.Name, b.ChannelType, nullString(b.DomainID), nullString(b.SenderID),
		nullString(b.StorageCredentialID), b.Status, b.EmailSubject, b.EmailBody}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO broadcasts (id, tenant_id, name, channel_type, domain_id, sender_id, storage_credential_id,
		 status, email_subject, email_body, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(args, auditArgs(b.Audit)...)...,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.writeLinks(ctx, b)
}

func (r *broadcastsRepo) UpdateBroadcast(ctx context.Context, b domain.Broadcast) error {
	err := requireAffected(r.q.ExecContext(ctx,
		`UPDATE broadcasts SET name = ?, channel_type = ?, domain_id = ?, sender_id = ?, storage_credential_id = ?,
		 status = ?, email_subject = ?, email_body = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		b.Name, b.ChannelType, nullString(b.DomainID), nullString(b.SenderID), nullString(b.StorageCredentialID),
		b.Status, b.EmailSubject, b.EmailBody, b.ModifiedAt.UTC(), b.ModifiedBy, b.ID,
	))
	if err != nil {
		return err
	}
	return r.writeLinks(ctx, b)
}

func (r *broadcastsRepo) writeLinks(ctx context.Context, b domain.Broadcast) error {
	if err := replaceLinks(ctx, r.q, "broadcast_tags", "broadcast_id", "tag_id", b.ID, b.TagIDs); err != nil {
		return err
	}
	return replaceLinks(ctx, r.q, "broadcast_attachments", "broadcast_id", "attachment_id", b.ID, b.AttachmentIDs)
}

func (r *broadcastsRepo) DeleteBroadcast(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM broadcasts WHERE id = ?`, id))
}
