package domain

import "time"

// Audit records who created and last modified a row. It is never settable
// from requests; the service layer stamps it.
type Audit struct {
	CreatedAt  time.Time
	ModifiedAt time.Time
	CreatedBy  string // user id, empty when unknown
	ModifiedBy string
}

// Owned ties a row to its tenant. The tenant cannot change after creation.
type Owned struct {
	TenantID string
}

// Tenant returns the owning tenant id.
func (o Owned) Tenant() string { return o.TenantID }
