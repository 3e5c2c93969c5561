package domain

// StorageCredential holds access material for an external store. The key
// fields are write-only at the API.
type StorageCredential struct {
	ID              string
	Name            string
	SType           StorageType
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	Region          string
	Owned
	Audit
}

// HasSecret reports whether secret key material is stored.
func (c StorageCredential) HasSecret() bool { return c.SecretAccessKey != "" }
