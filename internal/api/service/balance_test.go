package service

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/stretchr/testify/require"
)

func TestBalanceService_Append(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "billing", false, e.tenantA.ID, e.tenantB.ID)
	svc := &BalanceService{Base: e.base, Metrics: metricsx.New()}

	entry := func(tenant string, ch domain.ChannelType, qty float64) domain.BalanceEntry {
		return domain.BalanceEntry{
			ChannelType: ch, Qty: qty, OriginType: domain.OriginPayment, OriginID: "pay-1",
			Owned: domain.Owned{TenantID: tenant},
		}
	}

	first, err := svc.Append(ctx, ident, entry(e.tenantA.ID, domain.ChannelEmail, 100), nil)
	require.NoError(t, err)
	require.InDelta(t, 100, first.Balance, domain.BalanceTolerance)

	second, err := svc.Append(ctx, ident, entry(e.tenantA.ID, domain.ChannelEmail, -30.5), nil)
	require.NoError(t, err)
	require.InDelta(t, 69.5, second.Balance, domain.BalanceTolerance)

	t.Run("channels and tenants are independent", func(t *testing.T) {
		sms, err := svc.Append(ctx, ident, entry(e.tenantA.ID, domain.ChannelSMS, 5), nil)
		require.NoError(t, err)
		require.InDelta(t, 5, sms.Balance, domain.BalanceTolerance)

		other, err := svc.Append(ctx, ident, entry(e.tenantB.ID, domain.ChannelEmail, 1), nil)
		require.NoError(t, err)
		require.InDelta(t, 1, other.Balance, domain.BalanceTolerance)
	})

	t.Run("supplied balance must match", func(t *testing.T) {
		wrong := 1000.0
		_, err := svc.Append(ctx, ident, entry(e.tenantA.ID, domain.ChannelEmail, 10), &wrong)
		requireField(t, err, "balance", "")

		right := 79.5 + 1e-12
		got, err := svc.Append(ctx, ident, entry(e.tenantA.ID, domain.ChannelEmail, 10), &right)
		require.NoError(t, err)
		require.InDelta(t, 79.5, got.Balance, domain.BalanceTolerance)
	})

	t.Run("list is newest first", func(t *testing.T) {
		list, err := svc.List(ctx, ident)
		require.NoError(t, err)
		require.Len(t, list, 5)
		for i := 1; i < len(list); i++ {
			require.Greater(t, list[i-1].ID, list[i].ID)
		}
	})

	t.Run("validation", func(t *testing.T) {
		bad := entry(e.tenantA.ID, "FAX", 1)
		bad.OriginType = "GIFT"
		bad.OriginID = ""
		_, err := svc.Append(ctx, ident, bad, nil)
		requireField(t, err, "channel_type", "")
		requireField(t, err, "origin_type", "")
		requireField(t, err, "origin_id", MsgRequired)
	})

	t.Run("append only", func(t *testing.T) {
		require.ErrorIs(t, svc.Update(ctx, ident, first.ID), ErrMethodNotAllowed)
		require.ErrorIs(t, svc.Delete(ctx, ident, first.ID), ErrMethodNotAllowed)
	})

	t.Run("foreign tenant", func(t *testing.T) {
		outsider := e.user(t, "outsider", false)
		_, err := svc.Get(ctx, outsider, first.ID)
		require.ErrorIs(t, err, ErrNotFound)

		_, err = svc.Append(ctx, outsider, entry(e.tenantA.ID, domain.ChannelEmail, 1), nil)
		requireField(t, err, "tenant", MsgDoesNotExist)
	})
}

func TestBalanceService_ListOrdersByCreatedAt(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	ident := e.user(t, "billing", false, e.tenantA.ID)

	// Entries are appended with clocks that run out of order.
	stamps := []time.Time{
		fixedNow.Add(2 * time.Hour),
		fixedNow,
		fixedNow.Add(time.Hour),
		fixedNow,
		fixedNow.Add(90 * time.Minute),
	}
	next := 0
	svc := &BalanceService{Base: Base{Store: e.base.Store, Clock: func() time.Time {
		at := stamps[next]
		next++
		return at
	}}}

	var appended []domain.BalanceEntry
	for range stamps {
		got, err := svc.Append(ctx, ident, domain.BalanceEntry{
			ChannelType: domain.ChannelSMS, Qty: 1, OriginType: domain.OriginPayment, OriginID: "pay-1",
			Owned: domain.Owned{TenantID: e.tenantA.ID},
		}, nil)
		require.NoError(t, err)
		appended = append(appended, got)
	}
	require.InDelta(t, 5, appended[4].Balance, domain.BalanceTolerance)

	list, err := svc.List(ctx, ident)
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, entry := range list {
		ids[i] = entry.ID
	}
	// Ties on created_at fall back to id, newest first.
	require.Equal(t, []string{
		appended[0].ID,
		appended[4].ID,
		appended[2].ID,
		appended[3].ID,
		appended[1].ID,
	}, ids)
}
