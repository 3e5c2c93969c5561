package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/stretchr/testify/require"
)

func newAttachmentService(t *testing.T, e *env) (*AttachmentService, *blobx.FSStore) {
	t.Helper()
	blobs, err := blobx.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return &AttachmentService{Base: e.base, Blobs: blobs}, blobs
}

func TestAttachmentService_Validation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "editor", false, e.tenantA.ID, e.tenantB.ID)
	svc, _ := newAttachmentService(t, e)

	base := func() domain.Attachment {
		return domain.Attachment{
			Description: "Statement",
			Source:      domain.SourceUpload,
			Naming:      domain.NamingContentDisposition,
			Owned:       domain.Owned{TenantID: e.tenantA.ID},
		}
	}

	tests := []struct {
		name   string
		mutate func(*domain.Attachment)
		field  string
	}{
		{"url source needs url", func(a *domain.Attachment) { a.Source = domain.SourceURL }, "url"},
		{"url must be http", func(a *domain.Attachment) { a.Source, a.URL = domain.SourceURL, "ftp://example.com/x" }, "url"},
		{"storage source needs key", func(a *domain.Attachment) { a.Source = domain.SourceStorage }, "storage_key"},
		{"url param naming needs param", func(a *domain.Attachment) {
			a.Source, a.URL, a.Naming = domain.SourceURL, "https://example.com/x", domain.NamingURLParam
		}, "url_param"},
		{"url param naming needs url source", func(a *domain.Attachment) {
			a.Naming, a.URLParam = domain.NamingURLParam, "file"
		}, "naming"},
		{"specified naming needs template", func(a *domain.Attachment) { a.Naming = domain.NamingSpecified }, "filename_template"},
		{"template placeholders are checked", func(a *domain.Attachment) {
			a.Naming, a.FilenameTemplate = domain.NamingSpecified, "{nope}.pdf"
		}, "filename_template"},
		{"unknown source", func(a *domain.Attachment) { a.Source = "FTP" }, "source"},
		{"description required", func(a *domain.Attachment) { a.Description = "" }, "description"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := base()
			tc.mutate(&a)
			_, err := svc.Create(ctx, ident, a)
			requireField(t, err, tc.field, "")
		})
	}

	t.Run("storage credential from another tenant", func(t *testing.T) {
		creds := &StorageCredentialService{Base: e.base}
		cred, err := creds.Create(ctx, ident, domain.StorageCredential{
			Name: "bucket-b", SType: domain.StorageAWSS3, AccessKeyID: "AKIA", SecretAccessKey: "s", Bucket: "b",
			Owned: domain.Owned{TenantID: e.tenantB.ID},
		})
		require.NoError(t, err)

		a := base()
		a.Source, a.StorageKey, a.StorageCredentialID = domain.SourceStorage, "reports/x.pdf", cred.ID
		_, err = svc.Create(ctx, ident, a)
		requireField(t, err, "storage_credential", MsgSameTenant)
	})

	t.Run("description unique per tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, ident, base())
		require.NoError(t, err)
		_, err = svc.Create(ctx, ident, base())
		requireField(t, err, "description", msgAttachmentExists)

		other := base()
		other.TenantID = e.tenantB.ID
		_, err = svc.Create(ctx, ident, other)
		require.NoError(t, err)
	})
}

func TestAttachmentService_Files(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "editor", false, e.tenantA.ID)
	outsider := e.user(t, "outsider", false, e.tenantB.ID)
	svc, blobs := newAttachmentService(t, e)

	a, err := svc.Create(ctx, ident, domain.Attachment{
		Description: "Terms",
		Source:      domain.SourceUpload,
		Naming:      domain.NamingContentDisposition,
		Owned:       domain.Owned{TenantID: e.tenantA.ID},
	})
	require.NoError(t, err)

	t.Run("nothing uploaded yet", func(t *testing.T) {
		_, _, err := svc.Open(ctx, ident, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})

	first, err := svc.Upload(ctx, ident, a.ID, Upload{
		Filename: `C:\docs\Terms & Conditions.pdf`, ContentType: "application/pdf", Body: strings.NewReader("v1"),
	})
	require.NoError(t, err)
	name, err := domain.OriginalFilename(first)
	require.NoError(t, err)
	require.Equal(t, "Terms & Conditions.pdf", name)

	t.Run("download", func(t *testing.T) {
		rc, info, err := svc.Open(ctx, ident, a.ID)
		require.NoError(t, err)
		defer rc.Close()
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.Equal(t, "v1", string(body))
		require.Equal(t, "Terms & Conditions.pdf", info.Filename)
		require.EqualValues(t, 2, info.Size)
	})

	t.Run("other tenants cannot see it", func(t *testing.T) {
		_, _, err := svc.Open(ctx, outsider, a.ID)
		require.ErrorIs(t, err, ErrNotFound)
		_, err = svc.Upload(ctx, outsider, a.ID, Upload{Filename: "x.pdf", Body: strings.NewReader("x")})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("replacement removes the old file", func(t *testing.T) {
		second, err := svc.Upload(ctx, ident, a.ID, Upload{Filename: "terms-v2.pdf", Body: strings.NewReader("v2")})
		require.NoError(t, err)
		require.NotEqual(t, first.File, second.File)

		_, _, err = blobs.Get(ctx, first.File)
		require.ErrorIs(t, err, blobx.ErrNotFound)
	})

	t.Run("same name replacement gets its own key", func(t *testing.T) {
		cur, err := svc.Get(ctx, ident, a.ID)
		require.NoError(t, err)
		name, err := domain.OriginalFilename(cur)
		require.NoError(t, err)

		next, err := svc.Upload(ctx, ident, a.ID, Upload{Filename: name, Body: strings.NewReader("v3")})
		require.NoError(t, err)
		require.NotEqual(t, cur.File, next.File)

		_, _, err = blobs.Get(ctx, cur.File)
		require.ErrorIs(t, err, blobx.ErrNotFound)
		rc, _, err := svc.Open(ctx, ident, a.ID)
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		require.Equal(t, "v3", string(body))
	})

	t.Run("update keeps the file", func(t *testing.T) {
		got, err := svc.Update(ctx, ident, a.ID, func(a *domain.Attachment) error {
			a.Description = "Terms v2"
			a.File = "attachments/forged"
			return nil
		})
		require.NoError(t, err)
		require.Contains(t, got.File, a.ID)
	})

	t.Run("missing filename", func(t *testing.T) {
		_, err := svc.Upload(ctx, ident, a.ID, Upload{Filename: "", Body: strings.NewReader("x")})
		requireField(t, err, "file", "")
	})

	t.Run("delete removes the file", func(t *testing.T) {
		cur, err := svc.Get(ctx, ident, a.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, ident, a.ID))
		_, _, err = blobs.Get(ctx, cur.File)
		require.ErrorIs(t, err, blobx.ErrNotFound)
	})
}

func TestAttachmentService_CorruptKey(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "editor", false, e.tenantA.ID)
	svc, _ := newAttachmentService(t, e)

	a, err := svc.Create(ctx, ident, domain.Attachment{
		Description: "Broken",
		Source:      domain.SourceUpload,
		Naming:      domain.NamingContentDisposition,
		Owned:       domain.Owned{TenantID: e.tenantA.ID},
	})
	require.NoError(t, err)

	a.File = "attachments/" + a.TenantID + "/" + a.ID + "/%%%"
	require.NoError(t, e.base.Store.Attachments().UpdateAttachment(ctx, a))

	_, _, err = svc.Open(ctx, ident, a.ID)
	require.ErrorIs(t, err, ErrDataIntegrity)

	got, err := svc.Get(ctx, ident, a.ID)
	require.NoError(t, err)
	_, err = domain.OriginalFilename(got)
	require.ErrorIs(t, err, domain.ErrCorruptFilename)
}
