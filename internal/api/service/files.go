package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/blobx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// FileInfo describes a stored file being served back.
type FileInfo struct {
	Filename    string
	ContentType string
	Size        int64
}

// Upload is an incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// cleanFilename keeps only the final path element of a client filename.
func cleanFilename(name string) (string, error) {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	name = path.Base(name)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", FieldError("file", "No file was submitted.")
	}
	if len(name) > 255 {
		return "", FieldError("file", "Ensure this filename has at most 255 characters.")
	}
	return name, nil
}

// openStored opens key and recovers its filename. A key that does not
// decode is a data integrity failure, not a validation problem.
func openStored(ctx context.Context, blobs blobx.Store, key string) (io.ReadCloser, FileInfo, error) {
	if key == "" {
		return nil, FileInfo{}, ErrNotFound
	}
	name, err := domain.DecodeFilename(key)
	if err != nil {
		return nil, FileInfo{}, fmt.Errorf("%w: %v", ErrDataIntegrity, err)
	}
	rc, obj, err := blobs.Get(ctx, key)
	if errors.Is(err, blobx.ErrNotFound) {
		return nil, FileInfo{}, ErrNotFound
	}
	if err != nil {
		return nil, FileInfo{}, err
	}
	ct := obj.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return rc, FileInfo{Filename: name, ContentType: ct, Size: obj.Size}, nil
}

// removeBlob deletes key, logging rather than failing; the row change that
// orphaned it has already committed.
func removeBlob(ctx context.Context, blobs blobx.Store, key string) {
	if key == "" {
		return
	}
	if err := blobs.Delete(ctx, key); err != nil {
		slogx.FromContext(ctx).Warn("failed to delete stored file", slog.String("key", key), slog.Any("error", err))
	}
}

// discardUpload removes key unless it is the file a row points at.
func discardUpload(ctx context.Context, blobs blobx.Store, key, current string) {
	if key == current {
		return
	}
	removeBlob(ctx, blobs, key)
}
