package service

import (
	"context"
	"io"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
)

const msgAttachmentExists = "attachment with this description already exists"

type AttachmentService struct {
	Base
	Blobs   blobx.Store
	Metrics *metricsx.Metrics
}

func (s *AttachmentService) List(ctx context.Context, ident Identity) ([]domain.Attachment, error) {
	return s.Store.Attachments().ListAttachments(ctx, ident.TenantIDs())
}

func (s *AttachmentService) Get(ctx context.Context, ident Identity, id string) (domain.Attachment, error) {
	return getVisible(ctx, ident, s.Store.Attachments().GetAttachment, id)
}

// Create stores the attachment definition. Files arrive through Upload.
func (s *AttachmentService) Create(ctx context.Context, ident Identity, a domain.Attachment) (domain.Attachment, error) {
	if err := ident.Writable(a.TenantID); err != nil {
		return domain.Attachment{}, err
	}
	a.ID = idx.NewString()
	a.File = ""
	stampCreate(&a.Audit, ident.UserID, s.now())

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := validateAttachment(ctx, tx, ident, a); err != nil {
			return err
		}
		return mapStoreErr(tx.Attachments().CreateAttachment(ctx, a), "description", msgAttachmentExists)
	})
	if err != nil {
		return domain.Attachment{}, err
	}
	return a, nil
}

func (s *AttachmentService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.Attachment) error) (domain.Attachment, error) {
	var out domain.Attachment
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.Attachments().GetAttachment, id)
		if err != nil {
			return err
		}
		a := before
		if err := apply(&a); err != nil {
			return err
		}
		a.ID, a.Audit, a.File = before.ID, before.Audit, before.File
		if err := checkTenantUnchanged(before.TenantID, a.TenantID); err != nil {
			return err
		}
		if err := validateAttachment(ctx, tx, ident, a); err != nil {
			return err
		}
		stampUpdate(&a.Audit, ident.UserID, s.now())
		if err := tx.Attachments().UpdateAttachment(ctx, a); err != nil {
			return mapStoreErr(err, "description", msgAttachmentExists)
		}
		out = a
		return nil
	})
	return out, err
}

// Delete removes the attachment and its stored file.
func (s *AttachmentService) Delete(ctx context.Context, ident Identity, id string) error {
	var key string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		a, err := getVisible(ctx, ident, tx.Attachments().GetAttachment, id)
		if err != nil {
			return err
		}
		key = a.File
		return mapStoreErr(tx.Attachments().DeleteAttachment(ctx, id), "", "")
	})
	if err != nil {
		return err
	}
	removeBlob(ctx, s.Blobs, key)
	return nil
}

// Upload stores a file under a fresh key and points the row at it once the
// update commits. The previous file is removed only after that.
func (s *AttachmentService) Upload(ctx context.Context, ident Identity, id string, up Upload) (domain.Attachment, error) {
	name, err := cleanFilename(up.Filename)
	if err != nil {
		return domain.Attachment{}, err
	}
	a, err := s.Get(ctx, ident, id)
	if err != nil {
		return domain.Attachment{}, err
	}

	key := domain.AttachmentKey(a.TenantID, a.ID, idx.NewString(), name)
	n, err := s.Blobs.Put(ctx, key, up.Body, up.ContentType)
	if err != nil {
		return domain.Attachment{}, err
	}
	s.Metrics.Uploaded("attachment", n)

	var previous string
	var out domain.Attachment
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := getVisible(ctx, ident, tx.Attachments().GetAttachment, id)
		if err != nil {
			return err
		}
		previous = cur.File
		cur.File = key
		stampUpdate(&cur.Audit, ident.UserID, s.now())
		if err := tx.Attachments().UpdateAttachment(ctx, cur); err != nil {
			return mapStoreErr(err, "", "")
		}
		out = cur
		return nil
	})
	if err != nil {
		discardUpload(ctx, s.Blobs, key, a.File)
		return domain.Attachment{}, err
	}
	discardUpload(ctx, s.Blobs, previous, key)
	return out, nil
}

// Open streams the stored file back with its original filename.
func (s *AttachmentService) Open(ctx context.Context, ident Identity, id string) (io.ReadCloser, FileInfo, error) {
	a, err := s.Get(ctx, ident, id)
	if err != nil {
		return nil, FileInfo{}, err
	}
	return openStored(ctx, s.Blobs, a.File)
}

func validateAttachment(ctx context.Context, tx store.Store, ident Identity, a domain.Attachment) error {
	var v validator
	v.length(a.Description, 80, "description")
	v.check(a.Source.Valid(), "source", `"`+string(a.Source)+`" is not a valid choice.`)
	v.check(a.Naming.Valid(), "naming", `"`+string(a.Naming)+`" is not a valid choice.`)
	v.maxLen(a.URL, 2048, "url")
	v.maxLen(a.StorageKey, 1024, "storage_key")
	v.maxLen(a.URLParam, 64, "url_param")
	v.maxLen(a.FilenameTemplate, 255, "filename_template")

	switch a.Source {
	case domain.SourceURL:
		v.required(a.URL, "url")
		if a.URL != "" {
			v.check(isHTTPURL(a.URL), "url", "Enter a valid URL.")
		}
	case domain.SourceStorage:
		v.required(a.StorageKey, "storage_key")
		v.required(a.StorageCredentialID, "storage_credential")
	}

	switch a.Naming {
	case domain.NamingURLParam:
		v.required(a.URLParam, "url_param")
		v.check(a.Source == domain.SourceURL, "naming", "URL_PARAM naming requires a URL source.")
	case domain.NamingSpecified:
		v.required(a.FilenameTemplate, "filename_template")
		if a.FilenameTemplate != "" {
			if _, err := domain.ParseFilenameTemplate(a.FilenameTemplate); err != nil {
				v.add("filename_template", err.Error())
			}
		}
	}

	if err := checkRef(ctx, &v, ident, tx.StorageCredentials().GetStorageCredential,
		"storage_credential", a.StorageCredentialID, a.TenantID); err != nil {
		return err
	}
	return v.err()
}
