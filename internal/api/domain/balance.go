package domain

// BalanceTolerance is how far a caller-supplied balance may differ from the
// computed running total.
const BalanceTolerance = 1e-9

// BalanceEntry is one immutable ledger row. Balance is the running total
// for (tenant, channel) after applying Qty.
type BalanceEntry struct {
	ID          string
	ChannelType ChannelType
	Qty         float64
	Balance     float64
	OriginType  OriginType
	OriginID    string
	Owned
	Audit
}
