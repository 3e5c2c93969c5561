package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrCorruptFilename means a stored object key does not decode to a filename.
var ErrCorruptFilename = errors.New("stored filename is not validly encoded")

type Attachment struct {
	ID                  string
	Description         string
	Source              AttachmentSource
	URL                 string
	StorageKey          string
	StorageCredentialID string // optional
	Naming              AttachmentNaming
	URLParam            string
	FilenameTemplate    string
	Unzip               bool
	File                string // blob key, empty until uploaded
	Owned
	Audit
}

// OriginalFilename recovers the uploaded filename from the stored key.
func OriginalFilename(a Attachment) (string, error) {
	return storedFilename(a.File)
}

func storedFilename(key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return DecodeFilename(key)
}

// EncodeFilename turns a filename into a URL-safe token for use as the last
// segment of a storage key.
func EncodeFilename(name string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(name))
}

// DecodeFilename reverses EncodeFilename on the final segment of key.
func DecodeFilename(key string) (string, error) {
	seg := key
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		seg = key[i+1:]
	}
	if seg == "" {
		return "", fmt.Errorf("%w: empty segment in %q", ErrCorruptFilename, key)
	}
	b, err := base64.RawURLEncoding.Strict().DecodeString(seg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorruptFilename, err)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: not UTF-8", ErrCorruptFilename)
	}
	return string(b), nil
}

// AttachmentKey is the blob key for one upload of an attachment's file.
// uploadID keeps every upload under its own key, so a replacement never
// overwrites the object the row still points at.
func AttachmentKey(tenantID, attachmentID, uploadID, filename string) string {
	return "attachments/" + tenantID + "/" + attachmentID + "/" + uploadID + "/" + EncodeFilename(filename)
}

// Placeholders accepted in a SPECIFIED filename template.
var templatePlaceholders = map[string]bool{
	"date":        true,
	"time":        true,
	"tenant":      true,
	"description": true,
	"ext":         true,
}

// ErrFilenameTemplate is returned for malformed filename templates.
var ErrFilenameTemplate = errors.New("invalid filename template")

// ParseFilenameTemplate splits tpl into literal text and {placeholder}
// tokens. Braces cannot nest or appear unmatched.
func ParseFilenameTemplate(tpl string) ([]TemplatePart, error) {
	var parts []TemplatePart
	for len(tpl) > 0 {
		open := strings.IndexAny(tpl, "{}")
		if open < 0 {
			parts = append(parts, TemplatePart{Text: tpl})
			break
		}
		if tpl[open] == '}' {
			return nil, fmt.Errorf("%w: unmatched '}'", ErrFilenameTemplate)
		}
		if open > 0 {
			parts = append(parts, TemplatePart{Text: tpl[:open]})
		}
		rest := tpl[open+1:]
		end := strings.IndexAny(rest, "{}")
		if end < 0 || rest[end] == '{' {
			return nil, fmt.Errorf("%w: unmatched '{'", ErrFilenameTemplate)
		}
		name := rest[:end]
		if !templatePlaceholders[name] {
			return nil, fmt.Errorf("%w: unknown placeholder {%s}", ErrFilenameTemplate, name)
		}
		parts = append(parts, TemplatePart{Placeholder: name})
		tpl = rest[end+1:]
	}
	return parts, nil
}

// TemplatePart is either literal Text or a Placeholder name.
type TemplatePart struct {
	Text        string
	Placeholder string
}
