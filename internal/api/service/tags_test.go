package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/stretchr/testify/require"
)

func TestTagService_SlugUniqueness(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "editor", false, e.tenantA.ID, e.tenantB.ID)
	svc := &TagService{Base: e.base}
	inA := domain.Owned{TenantID: e.tenantA.ID}

	vip, err := svc.Create(ctx, ident, domain.Tag{Tag: "VIP Client", Owned: inA})
	require.NoError(t, err)
	require.Equal(t, "vip-client", vip.Slug)

	t.Run("same slug in the same tenant", func(t *testing.T) {
		_, err := svc.Create(ctx, ident, domain.Tag{Tag: "vip client", Owned: inA})
		requireField(t, err, "tag", MsgTagExists)

		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "tag already exists", ve.Message)

		list, err := svc.List(ctx, ident)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("same slug in another tenant", func(t *testing.T) {
		other, err := svc.Create(ctx, ident, domain.Tag{Tag: "VIP client", Owned: domain.Owned{TenantID: e.tenantB.ID}})
		require.NoError(t, err)
		require.Equal(t, "vip-client", other.Slug)
	})

	t.Run("re-saving the same label", func(t *testing.T) {
		got, err := svc.Update(ctx, ident, vip.ID, func(t *domain.Tag) error { return nil })
		require.NoError(t, err)
		require.Equal(t, vip.Slug, got.Slug)
	})

	t.Run("update onto an existing slug", func(t *testing.T) {
		news, err := svc.Create(ctx, ident, domain.Tag{Tag: "News", Owned: inA})
		require.NoError(t, err)

		_, err = svc.Update(ctx, ident, news.ID, func(t *domain.Tag) error {
			t.Tag = "VIP---client"
			return nil
		})
		requireField(t, err, "tag", MsgTagExists)

		got, err := svc.Get(ctx, ident, news.ID)
		require.NoError(t, err)
		require.Equal(t, "news", got.Slug)
	})

	t.Run("label without slug characters", func(t *testing.T) {
		_, err := svc.Create(ctx, ident, domain.Tag{Tag: "!!!", Owned: inA})
		requireField(t, err, "tag", "")
	})

	t.Run("list is ordered by slug", func(t *testing.T) {
		list, err := svc.List(ctx, ident)
		require.NoError(t, err)
		for i := 1; i < len(list); i++ {
			require.LessOrEqual(t, list[i-1].Slug, list[i].Slug)
		}
	})
}

func TestTagService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	alice := e.user(t, "alice", false, e.tenantA.ID)
	bob := e.user(t, "bob", false, e.tenantB.ID)
	svc := &TagService{Base: e.base}

	tag, err := svc.Create(ctx, alice, domain.Tag{Tag: "Secret", Owned: domain.Owned{TenantID: e.tenantA.ID}})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, tag.ID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(ctx, bob, tag.ID, func(*domain.Tag) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, bob, tag.ID), ErrNotFound)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = svc.Create(ctx, bob, domain.Tag{Tag: "Sneaky", Owned: domain.Owned{TenantID: e.tenantA.ID}})
	requireField(t, err, "tenant", MsgDoesNotExist)

	_, err = svc.Update(ctx, alice, tag.ID, func(t *domain.Tag) error {
		t.TenantID = e.tenantB.ID
		return nil
	})
	requireField(t, err, "tenant", MsgTenantReadOnly)

	require.NoError(t, svc.Delete(ctx, alice, tag.ID))
	_, err = svc.Get(ctx, alice, tag.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
