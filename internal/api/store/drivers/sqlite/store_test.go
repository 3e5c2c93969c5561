package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func audit(at time.Time) domain.Audit {
	return domain.Audit{CreatedAt: at, ModifiedAt: at, CreatedBy: "u1", ModifiedBy: "u1"}
}

func seedTenant(t *testing.T, s store.Store, id string, at time.Time) domain.Tenant {
	t.Helper()
	tn := domain.Tenant{ID: id, Name: "tenant-" + id, Audit: audit(at)}
	require.NoError(t, s.Tenants().CreateTenant(context.Background(), tn))
	return tn
}

func TestMigrations_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())
	require.NoError(t, s.Ping(context.Background()))
}

func TestTenants_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	seedTenant(t, s, "a", t0)
	seedTenant(t, s, "b", t0.Add(time.Minute))
	seedTenant(t, s, "c", t0.Add(2*time.Minute))

	all, err := s.Tenants().ListAllTenants(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "c", all[0].ID)
	require.True(t, t0.Add(2*time.Minute).Equal(all[0].CreatedAt))

	some, err := s.Tenants().ListTenants(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	require.Equal(t, "b", some[0].ID)

	none, err := s.Tenants().ListTenants(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = s.Tenants().GetTenant(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Tenants().CreateTenant(ctx, domain.Tenant{ID: "d", Name: "tenant-a", Audit: audit(t0)})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestTags_SlugUniquePerTenant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)
	seedTenant(t, s, "t2", t0)

	require.NoError(t, s.Tags().CreateTag(ctx, domain.Tag{ID: "g1", Tag: "VIP", Slug: "vip", Owned: domain.Owned{TenantID: "t1"}, Audit: audit(t0)}))
	require.NoError(t, s.Tags().CreateTag(ctx, domain.Tag{ID: "g2", Tag: "VIP", Slug: "vip", Owned: domain.Owned{TenantID: "t2"}, Audit: audit(t0)}))

	err := s.Tags().CreateTag(ctx, domain.Tag{ID: "g3", Tag: "vip!", Slug: "vip", Owned: domain.Owned{TenantID: "t1"}, Audit: audit(t0)})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Tags().GetTagBySlug(ctx, "t2", "vip")
	require.NoError(t, err)
	require.Equal(t, "g2", got.ID)

	list, err := s.Tags().ListTags(ctx, []string{"t1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "g1", list[0].ID)
}

func TestForeignKeys_InvalidReference(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.Domains().CreateDomain(ctx, domain.Domain{ID: "d1", Name: "example.com", Owned: domain.Owned{TenantID: "nope"}, Audit: audit(t0)})
	require.ErrorIs(t, err, store.ErrInvalidReference)
}

func TestProfiles_LinksAndVisibility(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)
	seedTenant(t, s, "t2", t0)

	for _, u := range []string{"alice", "bob", "carol"} {
		require.NoError(t, s.Users().CreateUser(ctx, domain.User{ID: u, Username: u, PasswordHash: "h", IsActive: true, CreatedAt: t0, UpdatedAt: t0}))
	}
	require.NoError(t, s.Roles().CreateRole(ctx, domain.Role{ID: "r1", Role: domain.RoleAdmin, Owned: domain.Owned{TenantID: "t1"}, Audit: audit(t0)}))

	require.NoError(t, s.Profiles().CreateProfile(ctx, domain.Profile{ID: "pa", UserID: "alice", TenantIDs: []string{"t1"}, RoleIDs: []string{"r1"}}))
	require.NoError(t, s.Profiles().CreateProfile(ctx, domain.Profile{ID: "pb", UserID: "bob", TenantIDs: []string{"t1", "t2"}}))
	require.NoError(t, s.Profiles().CreateProfile(ctx, domain.Profile{ID: "pc", UserID: "carol", TenantIDs: []string{"t2"}}))

	p, err := s.Profiles().GetProfileByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", p.Username)
	require.Equal(t, []string{"t1"}, p.TenantIDs)
	require.Equal(t, []string{"r1"}, p.RoleIDs)

	visible, err := s.Profiles().ListProfiles(ctx, []string{"t1"}, "alice")
	require.NoError(t, err)
	require.Len(t, visible, 2)
	require.Equal(t, "alice", visible[0].Username)
	require.Equal(t, "bob", visible[1].Username)

	p.TenantIDs = []string{"t1", "t2"}
	p.RoleIDs = nil
	require.NoError(t, s.Profiles().UpdateProfile(ctx, p))

	p, err = s.Profiles().GetProfileByID(ctx, "pa")
	require.NoError(t, err)
	require.Equal(t, []string{"t1", "t2"}, p.TenantIDs)
	require.Empty(t, p.RoleIDs)

	// Deleting the user cascades to the profile.
	require.NoError(t, s.Users().DeleteUser(ctx, "alice"))
	_, err = s.Profiles().GetProfileByID(ctx, "pa")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestBroadcasts_OptionalRefsAndLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)

	owned := domain.Owned{TenantID: "t1"}
	require.NoError(t, s.Domains().CreateDomain(ctx, domain.Domain{ID: "d1", Name: "example.com", Owned: owned, Audit: audit(t0)}))
	require.NoError(t, s.Tags().CreateTag(ctx, domain.Tag{ID: "g1", Tag: "a", Slug: "a", Owned: owned, Audit: audit(t0)}))

	b := domain.Broadcast{
		ID: "b1", Name: "Launch", ChannelType: domain.ChannelEmail, DomainID: "d1",
		Status: domain.BroadcastDraft, TagIDs: []string{"g1"}, Owned: owned, Audit: audit(t0),
	}
	require.NoError(t, s.Broadcasts().CreateBroadcast(ctx, b))

	got, err := s.Broadcasts().GetBroadcast(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, "d1", got.DomainID)
	require.Empty(t, got.SenderID)
	require.Equal(t, []string{"g1"}, got.TagIDs)
	require.Empty(t, got.AttachmentIDs)

	// Removing the domain nulls the reference rather than deleting the broadcast.
	require.NoError(t, s.Domains().DeleteDomain(ctx, "d1"))
	got, err = s.Broadcasts().GetBroadcast(ctx, "b1")
	require.NoError(t, err)
	require.Empty(t, got.DomainID)

	got.TagIDs = []string{"missing"}
	require.ErrorIs(t, s.Broadcasts().UpdateBroadcast(ctx, got), store.ErrInvalidReference)
}

func TestDataSets_Fields(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)

	d := domain.DataSet{
		ID: "ds1", Name: "contacts", Encoding: domain.DefaultEncoding, Delimiter: ",", Quotechar: `"`,
		HasHeader: true, Fields: []string{"email", "name"}, Owned: domain.Owned{TenantID: "t1"}, Audit: audit(t0),
	}
	require.NoError(t, s.DataSets().CreateDataSet(ctx, d))

	got, err := s.DataSets().GetDataSet(ctx, "ds1")
	require.NoError(t, err)
	require.Equal(t, []string{"email", "name"}, got.Fields)

	got.Fields = nil
	require.NoError(t, s.DataSets().UpdateDataSet(ctx, got))
	got, err = s.DataSets().GetDataSet(ctx, "ds1")
	require.NoError(t, err)
	require.Empty(t, got.Fields)
}

func TestBalanceEntries_AppendOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)

	_, err := s.BalanceEntries().LatestBalanceEntry(ctx, "t1", domain.ChannelEmail)
	require.ErrorIs(t, err, store.ErrNotFound)

	entries := []domain.BalanceEntry{
		{ID: "e1", ChannelType: domain.ChannelEmail, Qty: 10, Balance: 10},
		{ID: "e2", ChannelType: domain.ChannelEmail, Qty: -3, Balance: 7},
		{ID: "e3", ChannelType: domain.ChannelSMS, Qty: 5, Balance: 5},
	}
	for _, e := range entries {
		e.OriginType = domain.OriginPayment
		e.OriginID = "pay-" + e.ID
		e.TenantID = "t1"
		e.Audit = audit(t0) // same instant; insertion order decides
		require.NoError(t, s.BalanceEntries().CreateBalanceEntry(ctx, e))
	}

	latest, err := s.BalanceEntries().LatestBalanceEntry(ctx, "t1", domain.ChannelEmail)
	require.NoError(t, err)
	require.Equal(t, "e2", latest.ID)
	require.InDelta(t, 7.0, latest.Balance, domain.BalanceTolerance)

	list, err := s.BalanceEntries().ListBalanceEntries(ctx, []string{"t1"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "e3", list[0].ID)
	require.Equal(t, "e1", list[2].ID)

	_, err = s.db.ExecContext(ctx, `UPDATE balance_entries SET qty = 0 WHERE id = 'e1'`)
	require.Error(t, err)
}

func TestBalanceEntries_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedTenant(t, s, "t1", t0)

	// Inserted out of created_at order, with a tie between e2 and e4 and a
	// fractional second on e5.
	inserts := []struct {
		id string
		at time.Time
	}{
		{"e1", t0.Add(time.Hour)},
		{"e2", t0},
		{"e3", t0.Add(3 * time.Hour)},
		{"e4", t0},
		{"e5", t0.Add(time.Hour + 500*time.Millisecond)},
	}
	for i, in := range inserts {
		e := domain.BalanceEntry{
			ID: in.id, ChannelType: domain.ChannelEmail, Qty: 1, Balance: float64(i + 1),
			OriginType: domain.OriginPayment, OriginID: "pay-" + in.id,
			Owned: domain.Owned{TenantID: "t1"}, Audit: audit(in.at),
		}
		require.NoError(t, s.BalanceEntries().CreateBalanceEntry(ctx, e))
	}

	list, err := s.BalanceEntries().ListBalanceEntries(ctx, []string{"t1"})
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.ID
	}
	require.Equal(t, []string{"e3", "e5", "e1", "e4", "e2"}, ids)

	// The ledger head still follows insertion order.
	latest, err := s.BalanceEntries().LatestBalanceEntry(ctx, "t1", domain.ChannelEmail)
	require.NoError(t, err)
	require.Equal(t, "e5", latest.ID)
}

func TestRefreshTokens_RevokeAndPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Users().CreateUser(ctx, domain.User{ID: "u", Username: "u", PasswordHash: "h", IsActive: true, CreatedAt: t0, UpdatedAt: t0}))

	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: "r1", UserID: "u", TokenHash: "h1", ExpiresAt: t0.Add(time.Hour), CreatedAt: t0, UpdatedAt: t0,
	}))
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID: "r2", UserID: "u", TokenHash: "h2", ExpiresAt: t0.Add(-time.Hour), CreatedAt: t0, UpdatedAt: t0,
	}))

	require.NoError(t, s.RefreshTokens().RevokeRefreshToken(ctx, "h1", t0))
	require.ErrorIs(t, s.RefreshTokens().RevokeRefreshToken(ctx, "h1", t0), store.ErrNotFound)

	tok, err := s.RefreshTokens().GetRefreshTokenByHash(ctx, "h1")
	require.NoError(t, err)
	require.True(t, tok.Revoked)

	n, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, t0.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Tenants().CreateTenant(ctx, domain.Tenant{ID: "x", Name: "x", Audit: audit(t0)}))
		require.ErrorIs(t, tx.WithTx(ctx, func(store.Tx) error { return nil }), sql.ErrTxDone)
		return store.ErrAlreadyExists
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Tenants().GetTenant(ctx, "x")
	require.ErrorIs(t, err, store.ErrNotFound)
}
