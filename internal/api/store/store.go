package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrInvalidReference is returned when a foreign key names a row that
	// does not exist.
	ErrInvalidReference = errors.New("store: invalid reference")
)

// Store is the root data access interface. Sub-repositories hang off it so a
// transaction can hand out the same repositories bound to the tx.
type Store interface {
	Users() Users
	Profiles() Profiles
	RefreshTokens() RefreshTokens
	Tenants() Tenants
	Roles() Roles
	Tags() Tags
	StorageCredentials() StorageCredentials
	Domains() Domains
	Senders() Senders
	Attachments() Attachments
	Broadcasts() Broadcasts
	DataSets() DataSets
	BalanceEntries() BalanceEntries

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller must Commit or Rollback.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-bound Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tenant-owned repositories share the same shape: List filters by the given
// tenant ids and never returns rows outside them.

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, u domain.User) error
	UpdatePasswordHash(ctx context.Context, userID, hash string, now time.Time) error

	// DeleteUser cascades to the profile and refresh tokens.
	DeleteUser(ctx context.Context, id string) error

	// IsEmpty reports whether no users exist, for bootstrap.
	IsEmpty(ctx context.Context) (bool, error)
}

type Profiles interface {
	GetProfileByID(ctx context.Context, id string) (domain.Profile, error)
	GetProfileByUserID(ctx context.Context, userID string) (domain.Profile, error)

	// ListProfiles returns profiles sharing at least one tenant with
	// tenantIDs, plus the profile of userID.
	ListProfiles(ctx context.Context, tenantIDs []string, userID string) ([]domain.Profile, error)
	ListAllProfiles(ctx context.Context) ([]domain.Profile, error)

	CreateProfile(ctx context.Context, p domain.Profile) error

	// UpdateProfile writes scalar fields and replaces tenant and role sets.
	UpdateProfile(ctx context.Context, p domain.Profile) error
	DeleteProfile(ctx context.Context, id string) error
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, hash string, now time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID string, now time.Time) error

	// DeleteExpiredRefreshTokens removes tokens expired or revoked before
	// now and returns how many were deleted.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}

type Tenants interface {
	GetTenant(ctx context.Context, id string) (domain.Tenant, error)
	ListTenants(ctx context.Context, ids []string) ([]domain.Tenant, error)
	ListAllTenants(ctx context.Context) ([]domain.Tenant, error)
	CreateTenant(ctx context.Context, t domain.Tenant) error
	UpdateTenant(ctx context.Context, t domain.Tenant) error

	// DeleteTenant cascades to every row the tenant owns.
	DeleteTenant(ctx context.Context, id string) error
}

type Roles interface {
	GetRole(ctx context.Context, id string) (domain.Role, error)
	ListRoles(ctx context.Context, tenantIDs []string) ([]domain.Role, error)
	CreateRole(ctx context.Context, r domain.Role) error
	UpdateRole(ctx context.Context, r domain.Role) error
	DeleteRole(ctx context.Context, id string) error
}

type Tags interface {
	GetTag(ctx context.Context, id string) (domain.Tag, error)

	// GetTagBySlug backs the per-tenant slug uniqueness check.
	GetTagBySlug(ctx context.Context, tenantID, slug string) (domain.Tag, error)

	// ListTags is ordered by slug.
	ListTags(ctx context.Context, tenantIDs []string) ([]domain.Tag, error)
	CreateTag(ctx context.Context, t domain.Tag) error
	UpdateTag(ctx context.Context, t domain.Tag) error
	DeleteTag(ctx context.Context, id string) error
}

type StorageCredentials interface {
	GetStorageCredential(ctx context.Context, id string) (domain.StorageCredential, error)
	ListStorageCredentials(ctx context.Context, tenantIDs []string) ([]domain.StorageCredential, error)
	CreateStorageCredential(ctx context.Context, c domain.StorageCredential) error
	UpdateStorageCredential(ctx context.Context, c domain.StorageCredential) error
	DeleteStorageCredential(ctx context.Context, id string) error
}

type Domains interface {
	GetDomain(ctx context.Context, id string) (domain.Domain, error)
	ListDomains(ctx context.Context, tenantIDs []string) ([]domain.Domain, error)
	CreateDomain(ctx context.Context, d domain.Domain) error
	UpdateDomain(ctx context.Context, d domain.Domain) error
	DeleteDomain(ctx context.Context, id string) error
}

type Senders interface {
	GetSender(ctx context.Context, id string) (domain.Sender, error)
	ListSenders(ctx context.Context, tenantIDs []string) ([]domain.Sender, error)
	CreateSender(ctx context.Context, s domain.Sender) error
	UpdateSender(ctx context.Context, s domain.Sender) error
	DeleteSender(ctx context.Context, id string) error
}

type Attachments interface {
	GetAttachment(ctx context.Context, id string) (domain.Attachment, error)
	ListAttachments(ctx context.Context, tenantIDs []string) ([]domain.Attachment, error)
	CreateAttachment(ctx context.Context, a domain.Attachment) error
	UpdateAttachment(ctx context.Context, a domain.Attachment) error
	DeleteAttachment(ctx context.Context, id string) error
}

type Broadcasts interface {
	GetBroadcast(ctx context.Context, id string) (domain.Broadcast, error)
	ListBroadcasts(ctx context.Context, tenantIDs []string) ([]domain.Broadcast, error)
	CreateBroadcast(ctx context.Context, b domain.Broadcast) error

	// UpdateBroadcast writes scalar fields and replaces tag and attachment sets.
	UpdateBroadcast(ctx context.Context, b domain.Broadcast) error
	DeleteBroadcast(ctx context.Context, id string) error
}

type DataSets interface {
	GetDataSet(ctx context.Context, id string) (domain.DataSet, error)
	ListDataSets(ctx context.Context, tenantIDs []string) ([]domain.DataSet, error)
	CreateDataSet(ctx context.Context, d domain.DataSet) error
	UpdateDataSet(ctx context.Context, d domain.DataSet) error
	DeleteDataSet(ctx context.Context, id string) error
}

// BalanceEntries is append-only: there is no update or delete.
type BalanceEntries interface {
	GetBalanceEntry(ctx context.Context, id string) (domain.BalanceEntry, error)

	// ListBalanceEntries is ordered newest first.
	ListBalanceEntries(ctx context.Context, tenantIDs []string) ([]domain.BalanceEntry, error)

	// LatestBalanceEntry returns the most recently appended entry for the
	// tenant and channel, or ErrNotFound.
	LatestBalanceEntry(ctx context.Context, tenantID string, channel domain.ChannelType) (domain.BalanceEntry, error)
	CreateBalanceEntry(ctx context.Context, e domain.BalanceEntry) error
}
