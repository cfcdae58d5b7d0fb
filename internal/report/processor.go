package report

import (
	"sort"
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// Processor holds the pure per-report aggregation functions. Given identical
// inputs each function produces identical output: no I/O, no mutation of
// inputs, deterministic ordering everywhere.
type Processor struct{}

// Raw data bundles joined by the orchestrator before processing.

// BalanceSheetData feeds the balance sheet processor.
type BalanceSheetData struct {
	PoolSnapshots    []models.PoolSnapshot
	TrancheSnapshots []models.TrancheSnapshot
}

// CashflowData feeds the cashflow and profit-and-loss processors.
type CashflowData struct {
	PoolSnapshots    []models.PoolSnapshot
	PoolFeeSnapshots []models.PoolFeeSnapshot
	Metadata         *models.PoolMetadata
}

// InvestorTransactionsData feeds the investor transactions processor.
type InvestorTransactionsData struct {
	Transactions []models.InvestorTransaction
}

// AssetTransactionsData feeds the asset transactions processor.
type AssetTransactionsData struct {
	Transactions []models.AssetTransaction
}

// FeeTransactionsData feeds the fee transactions processor.
type FeeTransactionsData struct {
	Transactions []models.PoolFeeTransaction
}

// TokenPriceData feeds the token price processor.
type TokenPriceData struct {
	TrancheSnapshots []models.TrancheSnapshot
}

// Timestamp accessors for the generic bucketing helper.
func poolSnapshotTime(s models.PoolSnapshot) time.Time       { return s.Timestamp }
func trancheSnapshotTime(s models.TrancheSnapshot) time.Time { return s.Timestamp }
func feeSnapshotTime(s models.PoolFeeSnapshot) time.Time     { return s.Timestamp }

func trancheSnapshotID(s models.TrancheSnapshot) string { return s.TrancheID }

// assetClass resolves the report subtype from pool metadata; pools without
// metadata default to private credit, which populates no optional fields.
func assetClass(metadata *models.PoolMetadata) types.AssetClass {
	if metadata != nil && types.AssetClass(metadata.AssetClass) == types.AssetClassPublicCredit {
		return types.AssetClassPublicCredit
	}
	return types.AssetClassPrivateCredit
}

// latestPerEntity reduces a bucket's records to the latest record per entity,
// returned in ascending entity-id order for deterministic output. Records
// must already be in chronological order.
func latestPerEntity[T any](records []T, entityID func(T) string) []T {
	latest := make(map[string]T, len(records))
	for _, r := range records {
		latest[entityID(r)] = r
	}

	ids := make([]string, 0, len(latest))
	for id := range latest {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, latest[id])
	}
	return out
}

// feeRows sums one bucket's fee snapshot amounts per fee, in ascending fee-id
// order, stamping each sub-row with the parent bucket timestamp.
func feeRows(
	snapshots []models.PoolFeeSnapshot,
	bucketTS time.Time,
	amount func(models.PoolFeeSnapshot) fixed.Currency,
) []FeeAmountRow {
	type feeAgg struct {
		name string
		sum  fixed.Currency
	}
	sums := make(map[string]feeAgg, len(snapshots))
	for _, s := range snapshots {
		agg, ok := sums[s.FeeID]
		if !ok {
			agg = feeAgg{name: s.FeeName, sum: fixed.Zero(s.PoolCurrency.Decimals)}
		}
		agg.sum = agg.sum.Add(amount(s))
		sums[s.FeeID] = agg
	}

	ids := make([]string, 0, len(sums))
	for id := range sums {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]FeeAmountRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, FeeAmountRow{
			FeeID:     id,
			Name:      sums[id].name,
			Timestamp: bucketTS,
			Amount:    sums[id].sum,
		})
	}
	return rows
}

// sumFeeRows totals the fee sub-rows of one bucket.
func sumFeeRows(rows []FeeAmountRow, decimals uint8) fixed.Currency {
	total := fixed.Zero(decimals)
	for _, r := range rows {
		total = total.Add(r.Amount)
	}
	return total
}
