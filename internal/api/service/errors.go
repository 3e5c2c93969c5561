package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aussiebroadwan/dds2/internal/api/store"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrDataIntegrity means stored data could not be interpreted, such as
	// an object key whose filename does not decode.
	ErrDataIntegrity = errors.New("data integrity error")
)

// Messages shared between services and tests.
const (
	MsgRequired       = "This field is required."
	MsgDoesNotExist   = "object does not exist"
	MsgTagExists      = "tag already exists"
	MsgSameTenant     = "must belong to the same tenant"
	MsgTenantReadOnly = "tenant cannot be changed"
)

// ValidationError is a rejected input. Fields maps field names to messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// FieldError builds a ValidationError for a single field.
func FieldError(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{field: msg}}
}

// validator collects field errors; the first message per field wins.
type validator struct {
	fields map[string]string
}

func (v *validator) add(field, msg string) {
	if v.fields == nil {
		v.fields = map[string]string{}
	}
	if _, ok := v.fields[field]; !ok {
		v.fields[field] = msg
	}
}

func (v *validator) check(ok bool, field, msg string) {
	if !ok {
		v.add(field, msg)
	}
}

func (v *validator) required(s, field string) {
	v.check(strings.TrimSpace(s) != "", field, MsgRequired)
}

func (v *validator) maxLen(s string, n int, field string) {
	v.check(len([]rune(s)) <= n, field, fmt.Sprintf("Ensure this field has no more than %d characters.", n))
}

// length checks 1..n characters.
func (v *validator) length(s string, n int, field string) {
	v.required(s, field)
	v.maxLen(s, n, field)
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Message: "invalid input", Fields: v.fields}
}

// mapStoreErr converts store errors into service errors. field names the
// input that a uniqueness violation is reported against.
func mapStoreErr(err error, field, exists string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return FieldError(field, exists)
	case errors.Is(err, store.ErrInvalidReference):
		return &ValidationError{Message: "invalid reference", Fields: map[string]string{"non_field_errors": MsgDoesNotExist}}
	}
	return err
}
