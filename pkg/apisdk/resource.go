package apisdk

import (
	"context"
	"net/http"
	"net/url"
)

// Resource is the CRUD surface shared by every /api/<name>/ collection.
// T is the representation and In the write payload.
type Resource[T, In any] struct {
	c    *Client
	path string
}

func newResource[T, In any](c *Client, name string) Resource[T, In] {
	return Resource[T, In]{c: c, path: "/api/" + name + "/"}
}

func (r Resource[T, In]) item(id string) string {
	return r.path + url.PathEscape(id) + "/"
}

// List returns the collection visible to the caller.
func (r Resource[T, In]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, true, http.MethodGet, r.path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[T, In]) Get(ctx context.Context, id string) (*T, error) {
	var out T
	if err := r.c.do(ctx, true, http.MethodGet, r.item(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T, In]) Create(ctx context.Context, in In) (*T, error) {
	var out T
	if err := r.c.do(ctx, true, http.MethodPost, r.path, in, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces every writable field (PUT).
func (r Resource[T, In]) Update(ctx context.Context, id string, in In) (*T, error) {
	var out T
	if err := r.c.do(ctx, true, http.MethodPut, r.item(id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patch changes only the non-nil fields of in.
func (r Resource[T, In]) Patch(ctx context.Context, id string, in In) (*T, error) {
	var out T
	if err := r.c.do(ctx, true, http.MethodPatch, r.item(id), in, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T, In]) Delete(ctx context.Context, id string) error {
	return r.c.do(ctx, true, http.MethodDelete, r.item(id), nil, nil, http.StatusNoContent)
}

func (c *Client) Tenants() Resource[Tenant, TenantInput] { return newResource[Tenant, TenantInput](c, "tenant") }
func (c *Client) Profiles() Resource[Profile, ProfileInput] {
	return newResource[Profile, ProfileInput](c, "profile")
}
func (c *Client) Roles() Resource[Role, RoleInput] { return newResource[Role, RoleInput](c, "role") }
func (c *Client) Tags() Resource[Tag, TagInput]    { return newResource[Tag, TagInput](c, "tag") }
func (c *Client) StorageCredentials() Resource[StorageCredential, StorageCredentialInput] {
	return newResource[StorageCredential, StorageCredentialInput](c, "storage-credential")
}
func (c *Client) Domains() Resource[Domain, DomainInput] { return newResource[Domain, DomainInput](c, "domain") }
func (c *Client) Senders() Resource[Sender, SenderInput] { return newResource[Sender, SenderInput](c, "sender") }
func (c *Client) Attachments() Resource[Attachment, AttachmentInput] {
	return newResource[Attachment, AttachmentInput](c, "attachment")
}
func (c *Client) Broadcasts() Resource[Broadcast, BroadcastInput] {
	return newResource[Broadcast, BroadcastInput](c, "broadcast")
}
func (c *Client) DataSets() Resource[DataSet, DataSetInput] {
	return newResource[DataSet, DataSetInput](c, "dataset")
}

// BalanceEntries is append-only: Update, Patch and Delete are rejected by
// the server with 405.
func (c *Client) BalanceEntries() Resource[BalanceEntry, BalanceEntryInput] {
	return newResource[BalanceEntry, BalanceEntryInput](c, "balance-entry")
}

// Users is staff only.
func (c *Client) Users() Resource[UserCreated, UserInput] { return newResource[UserCreated, UserInput](c, "user") }
