package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func newDataSetService(t *testing.T, e *env) (*DataSetService, *blobx.FSStore) {
	t.Helper()
	blobs, err := blobx.NewFSStore(t.TempDir())
	require.NoError(t, err)
	return &DataSetService{Base: e.base, Blobs: blobs}, blobs
}

func TestDataSetService_Defaults(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "analyst", false, e.tenantA.ID)
	svc, _ := newDataSetService(t, e)

	d, err := svc.Create(ctx, ident, domain.DataSet{Name: "Customers", Owned: domain.Owned{TenantID: e.tenantA.ID}})
	require.NoError(t, err)
	require.Equal(t, "utf-8", d.Encoding)
	require.Equal(t, ",", d.Delimiter)
	require.Equal(t, `"`, d.Quotechar)
	require.Empty(t, d.File)

	t.Run("invalid parse settings", func(t *testing.T) {
		_, err := svc.Create(ctx, ident, domain.DataSet{
			Name: "Bad", Encoding: "klingon", Delimiter: ";;", Quotechar: ";;",
			Owned: domain.Owned{TenantID: e.tenantA.ID},
		})
		requireField(t, err, "encoding", "")
		requireField(t, err, "delimiter", "")
		requireField(t, err, "quotechar", "")
	})

	t.Run("blank field names", func(t *testing.T) {
		_, err := svc.Create(ctx, ident, domain.DataSet{
			Name: "Blank", Fields: []string{"email", " "},
			Owned: domain.Owned{TenantID: e.tenantA.ID},
		})
		requireField(t, err, "fields", "")
	})
}

func TestDataSetService_Upload(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "analyst", false, e.tenantA.ID)
	svc, blobs := newDataSetService(t, e)

	create := func(t *testing.T, d domain.DataSet) domain.DataSet {
		t.Helper()
		d.TenantID = e.tenantA.ID
		out, err := svc.Create(ctx, ident, d)
		require.NoError(t, err)
		return out
	}
	upload := func(id, name string, body []byte) (domain.DataSet, error) {
		return svc.Upload(ctx, ident, id, Upload{Filename: name, ContentType: "text/csv", Body: bytes.NewReader(body)})
	}

	t.Run("header fills fields", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Header", HasHeader: true})
		got, err := upload(d.ID, "list.csv", []byte("\ufeff email , name\nbob@example.com,Bob\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"email", "name"}, got.Fields)

		name, err := domain.DataSetFilename(got)
		require.NoError(t, err)
		require.Equal(t, "list.csv", name)

		stored, err := svc.Get(ctx, ident, d.ID)
		require.NoError(t, err)
		require.Equal(t, got.Fields, stored.Fields)
	})

	t.Run("declared fields are kept", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Declared", HasHeader: true, Fields: []string{"a", "b"}})
		got, err := upload(d.ID, "list.csv", []byte("x,y\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, got.Fields)
	})

	t.Run("width mismatch", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Mismatch", Fields: []string{"email"}})
		_, err := upload(d.ID, "list.csv", []byte("a,b,c\n"))
		requireField(t, err, "fields", "")

		cur, err := svc.Get(ctx, ident, d.ID)
		require.NoError(t, err)
		require.Empty(t, cur.File)
	})

	t.Run("custom quote and delimiter", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Custom", HasHeader: true, Delimiter: ";", Quotechar: "'"})
		got, err := upload(d.ID, "list.txt", []byte("'last;first';email\n"))
		require.NoError(t, err)
		require.Equal(t, []string{"last;first", "email"}, got.Fields)
	})

	t.Run("legacy encoding", func(t *testing.T) {
		body, err := charmap.Windows1252.NewEncoder().Bytes([]byte("café,naïve\n"))
		require.NoError(t, err)

		d := create(t, domain.DataSet{Name: "Latin", HasHeader: true, Encoding: "windows-1252"})
		got, err := upload(d.ID, "latin.csv", body)
		require.NoError(t, err)
		require.Equal(t, []string{"café", "naïve"}, got.Fields)
	})

	t.Run("wrong encoding", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Wrong", HasHeader: true})
		_, err := upload(d.ID, "latin.csv", []byte{'c', 'a', 'f', 0xe9, '\n'})
		requireField(t, err, "file", "")
	})

	t.Run("empty file", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Empty", HasHeader: true})
		_, err := upload(d.ID, "empty.csv", nil)
		requireField(t, err, "file", "")
	})

	t.Run("replacement and download", func(t *testing.T) {
		d := create(t, domain.DataSet{Name: "Replace", HasHeader: true})
		first, err := upload(d.ID, "v1.csv", []byte("a\n"))
		require.NoError(t, err)
		second, err := upload(d.ID, "v2.csv", []byte("a\n1\n"))
		require.NoError(t, err)

		_, _, err = blobs.Get(ctx, first.File)
		require.ErrorIs(t, err, blobx.ErrNotFound)

		rc, info, err := svc.Open(ctx, ident, second.ID)
		require.NoError(t, err)
		defer rc.Close()
		require.Equal(t, "v2.csv", info.Filename)
		require.EqualValues(t, len("a\n1\n"), info.Size)
	})
}

func TestParseFirstRecord_Quoted(t *testing.T) {
	t.Parallel()
	d := domain.DataSet{Encoding: "utf-8", Delimiter: ",", Quotechar: `"`}
	rec, err := parseFirstRecord(strings.NewReader(`"a ""b""",c`), d)
	require.NoError(t, err)
	require.Equal(t, []string{`a "b"`, "c"}, rec)
}

func TestDataSetService_RejectedReplacementKeepsFile(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "analyst", false, e.tenantA.ID)
	svc, blobs := newDataSetService(t, e)

	d, err := svc.Create(ctx, ident, domain.DataSet{
		Name: "Contacts", HasHeader: true, Owned: domain.Owned{TenantID: e.tenantA.ID},
	})
	require.NoError(t, err)

	live, err := svc.Upload(ctx, ident, d.ID, Upload{Filename: "contacts.csv", Body: strings.NewReader("email,name\n")})
	require.NoError(t, err)

	for _, body := range []string{"a,b,c\n", ""} {
		_, err = svc.Upload(ctx, ident, d.ID, Upload{Filename: "contacts.csv", Body: strings.NewReader(body)})
		require.Error(t, err)

		cur, err := svc.Get(ctx, ident, d.ID)
		require.NoError(t, err)
		require.Equal(t, live.File, cur.File)
		require.Equal(t, []string{"email", "name"}, cur.Fields)

		rc, _, err := blobs.Get(ctx, cur.File)
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, rc.Close())
		require.NoError(t, err)
		require.Equal(t, "email,name\n", string(data))
	}

	t.Run("accepted replacement under the same name gets a new key", func(t *testing.T) {
		next, err := svc.Upload(ctx, ident, d.ID, Upload{Filename: "contacts.csv", Body: strings.NewReader("email,name\nx@y.test,X\n")})
		require.NoError(t, err)
		require.NotEqual(t, live.File, next.File)

		_, _, err = blobs.Get(ctx, live.File)
		require.ErrorIs(t, err, blobx.ErrNotFound)
	})
}
