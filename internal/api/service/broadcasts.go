package service

import (
	"context"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
)

type BroadcastService struct {
	Base
}

func (s *BroadcastService) List(ctx context.Context, ident Identity) ([]domain.Broadcast, error) {
	return s.Store.Broadcasts().ListBroadcasts(ctx, ident.TenantIDs())
}

func (s *BroadcastService) Get(ctx context.Context, ident Identity, id string) (domain.Broadcast, error) {
	return getVisible(ctx, ident, s.Store.Broadcasts().GetBroadcast, id)
}

func (s *BroadcastService) Create(ctx context.Context, ident Identity, b domain.Broadcast) (domain.Broadcast, error) {
	if err := ident.Writable(b.TenantID); err != nil {
		return domain.Broadcast{}, err
	}
	if b.Status == "" {
		b.Status = domain.BroadcastDraft
	}
	b.ID = idx.NewString()
	b.TagIDs, b.AttachmentIDs = dedupe(b.TagIDs), dedupe(b.AttachmentIDs)
	stampCreate(&b.Audit, ident.UserID, s.now())

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := validateBroadcast(ctx, tx, ident, b); err != nil {
			return err
		}
		return mapStoreErr(tx.Broadcasts().CreateBroadcast(ctx, b), "name", "broadcast already exists")
	})
	if err != nil {
		return domain.Broadcast{}, err
	}
	return b, nil
}

func (s *BroadcastService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Broadcast) error) (domain.Broadcast, error) {
	var out domain.Broadcast
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Broadcasts().GetBroadcast, id)
		if err != nil {
			return err
		}
		b := before
		if err := apply(&b); err != nil {
			return err
		}
		b.ID, b.Audit = before.ID, before.Audit
		if err := checkTenantUnchanged(before.TenantID, b.TenantID); err != nil {
			return err
		}
		if b.Status == "" {
			b.Status = domain.BroadcastDraft
		}
		b.TagIDs, b.AttachmentIDs = dedupe(b.TagIDs), dedupe(b.AttachmentIDs)
		if err := validateBroadcast(ctx, tx, ident, b); err != nil {
			return err
		}
		stampUpdate(&b.Audit, ident.UserID, s.now())
		if err := tx.Broadcasts().UpdateBroadcast(ctx, b); err != nil {
			return mapStoreErr(err, "name", "broadcast already exists")
		}
		out = b
		return nil
	})
	return out, err
}

func (s *BroadcastService) Delete(ctx context.Context, ident Identity, id string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := getVisible(ctx, ident, tx.Broadcasts().GetBroadcast, id); err != nil {
			return err
		}
		return mapStoreErr(tx.Broadcasts().DeleteBroadcast(ctx, id), "", "")
	})
}

func validateBroadcast(ctx context.Context, tx store.Store, ident Identity, b domain.Broadcast) error {
	var v validator
	v.length(b.Name, 128, "name")
	v.check(b.ChannelType.Valid(), "channel_type", `"`+string(b.ChannelType)+`" is not a valid choice.`)
	v.check(b.Status.Valid(), "status", `"`+string(b.Status)+`" is not a valid choice.`)
	v.maxLen(b.EmailSubject, 255, "email_subject")

	owner := b.TenantID
	checks := []func() error{
		func() error { return checkRef(ctx, &v, ident, tx.Domains().GetDomain, "domain", b.DomainID, owner) },
		func() error { return checkRef(ctx, &v, ident, tx.Senders().GetSender, "sender", b.SenderID, owner) },
		func() error {
			return checkRef(ctx, &v, ident, tx.StorageCredentials().GetStorageCredential, "storage_credential", b.StorageCredentialID, owner)
		},
		func() error { return checkRefs(ctx, &v, ident, tx.Tags().GetTag, "tags", b.TagIDs, owner) },
		func() error {
			return checkRefs(ctx, &v, ident, tx.Attachments().GetAttachment, "attachments", b.AttachmentIDs, owner)
		},
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return v.err()
}
