package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/slugx"
)

const maxTagLen = 32

type TagService struct {
	Base
}

func (s *TagService) List(ctx context.Context, ident Identity) ([]domain.Tag, error) {
	return s.Store.Tags().ListTags(ctx, ident.TenantIDs())
}

func (s *TagService) Get(ctx context.Context, ident Identity, id string) (domain.Tag, error) {
	return getVisible(ctx, ident, s.Store.Tags().GetTag, id)
}

func (s *TagService) Create(ctx context.Context, ident Identity, t domain.Tag) (domain.Tag, error) {
	if err := ident.Writable(t.TenantID); err != nil {
		return domain.Tag{}, err
	}
	t.ID = idx.NewString()
	stampCreate(&t.Audit, ident.UserID, s.now())

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := checkSlug(ctx, tx, &t); err != nil {
			return err
		}
		return mapStoreErr(tx.Tags().CreateTag(ctx, t), "tag", MsgTagExists)
	})
	if err != nil {
		return domain.Tag{}, err
	}
	return t, nil
}

func (s *TagService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Tag) error) (domain.Tag, error) {
	var out domain.Tag
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Tags().GetTag, id)
		if err != nil {
			return err
		}
		t := before
		if err := apply(&t); err != nil {
			return err
		}
		t.ID, t.Audit = before.ID, before.Audit
		if err := checkTenantUnchanged(before.TenantID, t.TenantID); err != nil {
			return err
		}
		if err := checkSlug(ctx, tx, &t); err != nil {
			return err
		}
		stampUpdate(&t.Audit, ident.UserID, s.now())
		if err := mapStoreErr(tx.Tags().UpdateTag(ctx, t), "tag", MsgTagExists); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (s *TagService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.Tags().GetTag, id); err != nil {
			return err
		}
		return mapStoreErr(tx.Tags().DeleteTag(ctx, id), "", "")
	})
}

// checkSlug derives t.Slug and rejects it when another tag in the tenant
// already holds it. The unique index catches a concurrent writer.
func checkSlug(ctx context.Context, tx store.Store, t *domain.Tag) error {
	var v validator
	v.length(t.Tag, maxTagLen, "tag")
	t.Slug = slugx.Make(t.Tag)
	if t.Tag != "" {
		v.check(t.Slug != "", "tag", "tag must contain letters or digits")
		v.maxLen(t.Slug, maxTagLen, "tag")
	}
	if err := v.err(); err != nil {
		return err
	}

	existing, err := tx.Tags().GetTagBySlug(ctx, t.TenantID, t.Slug)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != t.ID:
		return FieldError("tag", MsgTagExists)
	}
	return nil
}
