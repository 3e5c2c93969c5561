// Package blobx stores uploaded files behind a small key/value interface so
// the API can run against a local directory or an S3-compatible bucket.
package blobx

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("blobx: object not found")

// ErrInvalidKey is returned for keys that are empty, absolute, or escape the
// store root.
var ErrInvalidKey = errors.New("blobx: invalid key")

// Object describes a stored blob.
type Object struct {
	Key         string
	Size        int64
	ContentType string
}

// Store is the storage backend for attachment and dataset files.
type Store interface {
	// Put writes r under key, replacing any existing object, and returns the
	// number of bytes stored.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (int64, error)

	// Get opens the object under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, Object, error)

	// Delete removes the object under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping checks the backend is reachable, for readiness probes.
	Ping(ctx context.Context) error
}

// Key joins parts into a slash separated object key.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

// CleanKey validates key and returns its canonical form.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	c := path.Clean(key)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", ErrInvalidKey
	}
	return c, nil
}
