package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestTenantResolver(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	r := &TenantResolver{Store: e.base.Store}

	t.Run("no profile means no tenants", func(t *testing.T) {
		u, _, err := newUser("loner", "password123", false, fixedNow)
		require.NoError(t, err)
		require.NoError(t, e.base.Store.Users().CreateUser(ctx, u))

		set, err := r.Resolve(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, set)

		ident, err := r.Identify(ctx, u.ID)
		require.NoError(t, err)
		require.Empty(t, ident.TenantIDs())
	})

	t.Run("profile tenants", func(t *testing.T) {
		ident := e.user(t, "member", false, e.tenantA.ID, e.tenantB.ID)
		require.ElementsMatch(t, []string{e.tenantA.ID, e.tenantB.ID}, ident.TenantIDs())
		require.False(t, ident.Staff)
		require.Equal(t, "member", ident.Username)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := r.Identify(ctx, idx.NewString())
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("inactive user", func(t *testing.T) {
		u, _, err := newUser("inactive", "password123", false, fixedNow)
		require.NoError(t, err)
		u.IsActive = false
		require.NoError(t, e.base.Store.Users().CreateUser(ctx, u))

		_, err = r.Identify(ctx, u.ID)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestIdentity_Guards(t *testing.T) {
	t.Parallel()
	ident := Identity{UserID: "u", Tenants: NewTenantSet("t1")}

	require.NoError(t, ident.Visible("t1"))
	require.ErrorIs(t, ident.Visible("t2"), ErrNotFound)

	require.NoError(t, ident.Writable("t1"))
	requireField(t, ident.Writable("t2"), "tenant", MsgDoesNotExist)
	requireField(t, ident.Writable(""), "tenant", MsgRequired)

	require.ErrorIs(t, ident.RequireStaff(), ErrPermissionDenied)
	require.NoError(t, Identity{Staff: true}.RequireStaff())

	require.Empty(t, Identity{}.TenantIDs())
}

func TestIdentity_Context(t *testing.T) {
	t.Parallel()
	_, ok := IdentityFromContext(context.Background())
	require.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u"})
	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "u", got.UserID)
}

func TestAuditStamping(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.user(t, "alice", false, e.tenantA.ID)
	bob := e.user(t, "bob", false, e.tenantA.ID)
	svc := &TagService{Base: e.base}

	tag, err := svc.Create(ctx, alice, domain.Tag{Tag: "News", Owned: domain.Owned{TenantID: e.tenantA.ID}})
	require.NoError(t, err)
	require.Equal(t, alice.UserID, tag.CreatedBy)
	require.Empty(t, tag.ModifiedBy)
	require.Equal(t, fixedNow, tag.CreatedAt)

	later := fixedNow.Add(time.Hour)
	svc.Clock = func() time.Time { return later }
	tag, err = svc.Update(ctx, bob, tag.ID, func(t *domain.Tag) error {
		t.Tag = "Breaking News"
		t.CreatedBy = "forged"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, alice.UserID, tag.CreatedBy)
	require.Equal(t, bob.UserID, tag.ModifiedBy)
	require.Equal(t, later, tag.ModifiedAt)
	require.Equal(t, fixedNow, tag.CreatedAt)
}
