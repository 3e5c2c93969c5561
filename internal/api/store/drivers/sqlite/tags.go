package sqlite

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

type tagsRepo struct {
	q dbtx
}

const tagSelect = `SELECT id, tenant_id, tag, slug, ` + auditColumns + ` FROM tags`

func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	err := s.Scan(append([]any{&t.ID, &t.TenantID, &t.Tag, &t.Slug}, auditDest(&t.Audit)...)...)
	return t, err
}

func (r *tagsRepo) GetTag(ctx context.Context, id string) (domain.Tag, error) {
	t, err := scanTag(r.q.QueryRowContext(ctx, tagSelect+` WHERE id = ?`, id))
	if err != nil {
		return domain.Tag{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tagsRepo) GetTagBySlug(ctx context.Context, tenantID, slug string) (domain.Tag, error) {
	t, err := scanTag(r.q.QueryRowContext(ctx, tagSelect+` WHERE tenant_id = ? AND slug = ?`, tenantID, slug))
	if err != nil {
		return domain.Tag{}, mapNotFound(err)
	}
	return t, nil
}

func (r *tagsRepo) ListTags(ctx context.Context, tenantIDs []string) ([]domain.Tag, error) {
	where, args, ok := tenantFilter(tenantIDs)
	if !ok {
		return []domain.Tag{}, nil
	}
	return queryList(ctx, r.q, scanTag, tagSelect+where+` ORDER BY slug, id`, args...)
}

func (r *tagsRepo) CreateTag(ctx context.Context, t domain.Tag) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tags (id, tenant_id, tag, slug, `+auditColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{t.ID, t.TenantID, t.Tag, t.Slug}, auditArgs(t.Audit)...)...,
	)
	return mapConstraint(err)
}

func (r *tagsRepo) UpdateTag(ctx context.Context, t domain.Tag) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE tags SET tag = ?, slug = ?, modified_at = ?, modified_by = ? WHERE id = ?`,
		t.Tag, t.Slug, t.ModifiedAt.UTC(), t.ModifiedBy, t.ID,
	))
}

func (r *tagsRepo) DeleteTag(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id))
}
