package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/aussiebroadwan/dds2/internal/api/domain"
	"github.com/aussiebroadwan/dds2/internal/api/store"
	"github.com/aussiebroadwan/dds2/pkg/idx"
	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/aussiebroadwan/dds2/pkg/slogx"
)

// BalanceService appends to the per-tenant, per-channel ledger.
type BalanceService struct {
	Base
	Metrics *metricsx.Metrics
}

// List returns visible entries newest first.
func (s *BalanceService) List(ctx context.Context, ident Identity) ([]domain.BalanceEntry, error) {
	return s.Store.BalanceEntries().ListBalanceEntries(ctx, ident.TenantIDs())
}

func (s *BalanceService) Get(ctx context.Context, ident Identity, id string) (domain.BalanceEntry, error) {
	return getVisible(ctx, ident, s.Store.BalanceEntries().GetBalanceEntry, id)
}

// Append stores e with Balance set to the previous balance plus Qty. When
// supplied is non-nil it must match that total.
func (s *BalanceService) Append(ctx context.Context, ident Identity, e domain.BalanceEntry, supplied *float64) (domain.BalanceEntry, error) {
	if err := ident.Writable(e.TenantID); err != nil {
		return domain.BalanceEntry{}, err
	}
	if err := validateBalanceEntry(e); err != nil {
		return domain.BalanceEntry{}, err
	}
	e.ID = idx.NewString()
	stampCreate(&e.Audit, ident.UserID, s.now())

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var previous float64
		last, err := tx.BalanceEntries().LatestBalanceEntry(ctx, e.TenantID, e.ChannelType)
		switch {
		case err == nil:
			previous = last.Balance
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		expected := previous + e.Qty
		if supplied != nil && math.Abs(*supplied-expected) > domain.BalanceTolerance {
			return FieldError("balance", fmt.Sprintf("Balance must equal the previous balance plus qty (%g).", expected))
		}
		e.Balance = expected
		return mapStoreErr(tx.BalanceEntries().CreateBalanceEntry(ctx, e), "origin_id", "entry already exists")
	})
	if err != nil {
		return domain.BalanceEntry{}, err
	}

	s.Metrics.LedgerEntry(string(e.ChannelType))
	slogx.FromContext(ctx).Info("ledger entry appended",
		slog.String("tenant_id", e.TenantID),
		slog.String("channel", string(e.ChannelType)),
		slog.Float64("qty", e.Qty),
		slog.Float64("balance", e.Balance),
	)
	return e, nil
}

// Update and Delete exist so callers get a uniform answer: the ledger is
// append-only.
func (s *BalanceService) Update(context.Context, Identity, string) error { return ErrMethodNotAllowed }
func (s *BalanceService) Delete(context.Context, Identity, string) error { return ErrMethodNotAllowed }

func validateBalanceEntry(e domain.BalanceEntry) error {
	var v validator
	v.check(e.ChannelType.Valid(), "channel_type", `"`+string(e.ChannelType)+`" is not a valid choice.`)
	v.check(e.OriginType.Valid(), "origin_type", `"`+string(e.OriginType)+`" is not a valid choice.`)
	v.length(e.OriginID, 40, "origin_id")
	v.check(!math.IsNaN(e.Qty) && !math.IsInf(e.Qty, 0), "qty", "A valid number is required.")
	return v.err()
}
