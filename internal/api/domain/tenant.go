package domain

// Tenant is the isolation boundary; every other resource belongs to one.
type Tenant struct {
	ID          string
	Name        string
	Description string
	Audit
}

type Role struct {
	ID   string
	Role RoleName
	Owned
	Audit
}

// Tag is a tenant-scoped label. Slug is derived from Tag on every save and
// is unique per tenant.
type Tag struct {
	ID   string
	Tag  string
	Slug string
	Owned
	Audit
}
