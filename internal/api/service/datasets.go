package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

type DataSetService struct {
	Base
	Blobs   blobx.Store
	Metrics *metricsx.Metrics
}

func (s *DataSetService) List(ctx context.Context, ident Identity) ([]domain.DataSet, error) {
	return s.Store.DataSets().ListDataSets(ctx, ident.TenantIDs())
}

func (s *DataSetService) Get(ctx context.Context, ident Identity, id string) (domain.DataSet, error) {
	return getVisible(ctx, ident, s.Store.DataSets().GetDataSet, id)
}

// Create stores the dataset definition with parsing defaults filled in.
func (s *DataSetService) Create(ctx context.Context, ident Identity, d domain.DataSet) (domain.DataSet, error) {
	if err := ident.Writable(d.TenantID); err != nil {
		return domain.DataSet{}, err
	}
	applyDataSetDefaults(&d)
	if err := validateDataSet(d); err != nil {
		return domain.DataSet{}, err
	}
	d.ID = idx.NewString()
	d.File = ""
	d.Fields = normalizeFields(d.Fields)
	stampCreate(&d.Audit, ident.UserID, s.now())
	if err := s.Store.DataSets().CreateDataSet(ctx, d); err != nil {
		return domain.DataSet{}, mapStoreErr(err, "name", "dataset already exists")
	}
	return d, nil
}

func (s *DataSetService) Update(ctx context.Context, ident Identity, id string, apply func(*domain.DataSet) error) (domain.DataSet, error) {
	var out domain.DataSet
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		before, err := getVisible(ctx, ident, tx.DataSets().GetDataSet, id)
		if err != nil {
			return err
		}
		d := before
		if err := apply(&d); err != nil {
			return err
		}
		d.ID, d.Audit, d.File = before.ID, before.Audit, before.File
		if err := checkTenantUnchanged(before.TenantID, d.TenantID); err != nil {
			return err
		}
		applyDataSetDefaults(&d)
		if err := validateDataSet(d); err != nil {
			return err
		}
		d.Fields = normalizeFields(d.Fields)
		stampUpdate(&d.Audit, ident.UserID, s.now())
		if err := tx.DataSets().UpdateDataSet(ctx, d); err != nil {
			return mapStoreErr(err, "name", "dataset already exists")
		}
		out = d
		return nil
	})
	return out, err
}

func (s *DataSetService) Delete(ctx context.Context, ident Identity, id string) error {
	var key string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		d, err := getVisible(ctx, ident, tx.DataSets().GetDataSet, id)
		if err != nil {
			return err
		}
		key = d.File
		return mapStoreErr(tx.DataSets().DeleteDataSet(ctx, id), "", "")
	})
	if err != nil {
		return err
	}
	removeBlob(ctx, s.Blobs, key)
	return nil
}

// Upload stages the file under a fresh key, then checks its first record
// against the declared encoding, delimiter and quote character. A header
// fills empty fields. The row only moves to the new file once that passes
// and the update commits.
func (s *DataSetService) Upload(ctx context.Context, ident Identity, id string, up Upload) (domain.DataSet, error) {
	name, err := cleanFilename(up.Filename)
	if err != nil {
		return domain.DataSet{}, err
	}
	d, err := s.Get(ctx, ident, id)
	if err != nil {
		return domain.DataSet{}, err
	}

	key := domain.DataSetKey(d.TenantID, d.ID, idx.NewString(), name)
	n, err := s.Blobs.Put(ctx, key, up.Body, up.ContentType)
	if err != nil {
		return domain.DataSet{}, err
	}
	s.Metrics.Uploaded("dataset", n)

	first, err := s.firstRecord(ctx, key, d)
	if err != nil {
		discardUpload(ctx, s.Blobs, key, d.File)
		return domain.DataSet{}, err
	}

	var previous string
	var out domain.DataSet
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := getVisible(ctx, ident, tx.DataSets().GetDataSet, id)
		if err != nil {
			return err
		}
		if err := matchFields(&cur, first); err != nil {
			return err
		}
		previous = cur.File
		cur.File = key
		stampUpdate(&cur.Audit, ident.UserID, s.now())
		if err := tx.DataSets().UpdateDataSet(ctx, cur); err != nil {
			return mapStoreErr(err, "", "")
		}
		out = cur
		return nil
	})
	if err != nil {
		discardUpload(ctx, s.Blobs, key, d.File)
		return domain.DataSet{}, err
	}
	discardUpload(ctx, s.Blobs, previous, key)
	return out, nil
}

func (s *DataSetService) firstRecord(ctx context.Context, key string, d domain.DataSet) ([]string, error) {
	rc, _, err := s.Blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return parseFirstRecord(rc, d)
}

// Open streams the stored file back with its original filename.
func (s *DataSetService) Open(ctx context.Context, ident Identity, id string) (io.ReadCloser, FileInfo, error) {
	d, err := s.Get(ctx, ident, id)
	if err != nil {
		return nil, FileInfo{}, err
	}
	return openStored(ctx, s.Blobs, d.File)
}

// parseFirstRecord decodes r with the dataset's encoding and reads one record.
func parseFirstRecord(r io.Reader, d domain.DataSet) ([]string, error) {
	enc, err := lookupEncoding(d.Encoding)
	if err != nil {
		return nil, FieldError("encoding", err.Error())
	}
	delim, _ := utf8.DecodeRuneInString(d.Delimiter)
	quote, _ := utf8.DecodeRuneInString(d.Quotechar)

	br := bufio.NewReader(transform.NewReader(r, enc.NewDecoder()))
	if c, _, err := br.ReadRune(); err == nil && c != '\uFEFF' {
		_ = br.UnreadRune()
	}

	rec, err := readRecord(br, delim, quote)
	if errors.Is(err, io.EOF) {
		return nil, FieldError("file", "The submitted file is empty.")
	}
	if err != nil {
		return nil, FieldError("file", "Could not parse the first record: "+err.Error()+".")
	}
	for _, f := range rec {
		if strings.ContainsRune(f, utf8.RuneError) {
			return nil, FieldError("file", "The file is not valid "+d.Encoding+" text.")
		}
	}
	return rec, nil
}

// matchFields fills Fields from a header row, or checks the record width
// against declared fields.
func matchFields(d *domain.DataSet, first []string) error {
	if len(d.Fields) == 0 {
		if d.HasHeader {
			d.Fields = normalizeFields(first)
		}
		return nil
	}
	if len(d.Fields) != len(first) {
		return FieldError("fields", "The number of fields does not match the number of columns in the file.")
	}
	return nil
}

func normalizeFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimSpace(f))
	}
	return out
}

func lookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil || enc == nil {
		return nil, errors.New(`"` + label + `" is not a supported encoding.`)
	}
	return enc, nil
}

func applyDataSetDefaults(d *domain.DataSet) {
	if d.Encoding == "" {
		d.Encoding = domain.DefaultEncoding
	}
	if d.Delimiter == "" {
		d.Delimiter = domain.DefaultDelimiter
	}
	if d.Quotechar == "" {
		d.Quotechar = domain.DefaultQuotechar
	}
}

func validateDataSet(d domain.DataSet) error {
	var v validator
	v.length(d.Name, 128, "name")
	if _, err := lookupEncoding(d.Encoding); err != nil {
		v.add("encoding", err.Error())
	}
	v.check(utf8.RuneCountInString(d.Delimiter) == 1, "delimiter", "Ensure this field has exactly 1 character.")
	v.check(utf8.RuneCountInString(d.Quotechar) == 1, "quotechar", "Ensure this field has exactly 1 character.")
	v.check(d.Delimiter != d.Quotechar, "quotechar", "Delimiter and quote character must differ.")
	for _, c := range d.Delimiter + d.Quotechar {
		v.check(c != '\n' && c != '\r', "delimiter", "Line breaks cannot be used as delimiter or quote character.")
	}
	for _, f := range d.Fields {
		v.check(strings.TrimSpace(f) != "", "fields", "Field names cannot be blank.")
	}
	return v.err()
}
