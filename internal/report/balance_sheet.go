package report

import (
	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// BalanceSheet builds one row per populated bucket from the latest pool
// snapshot in that bucket, attaching one sub-row per tranche active in the
// bucket. Buckets without a pool snapshot emit no row; a tranche missing
// from a bucket is simply absent from that row's sub-rows.
func (Processor) BalanceSheet(data BalanceSheetData, f Filter) []BalanceSheetRow {
	poolBuckets := groupByBucket(data.PoolSnapshots, poolSnapshotTime, f.GroupBy)
	trancheBuckets := make(map[int64][]models.TrancheSnapshot)
	for _, g := range groupByBucket(data.TrancheSnapshots, trancheSnapshotTime, f.GroupBy) {
		trancheBuckets[g.start.Unix()] = g.records
	}

	rows := make([]BalanceSheetRow, 0, len(poolBuckets))
	for _, bucket := range poolBuckets {
		latest := bucket.records[len(bucket.records)-1]
		decimals := latest.PoolCurrency.Decimals

		row := BalanceSheetRow{
			Type:           types.ReportBalanceSheet,
			Timestamp:      bucket.start,
			AssetValuation: latest.PortfolioValuation,
			OnchainReserve: latest.TotalReserve,
			OffchainCash:   latest.OffchainCashValue,
			AccruedFees:    latest.SumPoolFeesPendingAmount,
		}
		// Composite fields derive from already-selected components in a
		// declared order so totals never drift from their parts.
		row.NetAssetValue = row.AssetValuation.
			Add(row.OnchainReserve).
			Add(row.OffchainCash).
			Sub(row.AccruedFees)

		totalCapital := fixed.Zero(decimals)
		for _, snap := range latestPerEntity(trancheBuckets[bucket.start.Unix()], trancheSnapshotID) {
			value := fixed.Zero(decimals)
			if snap.TokenPrice != nil {
				value = snap.TokenSupply.MulPrice(*snap.TokenPrice).SetDecimals(decimals)
			}
			row.Tranches = append(row.Tranches, TrancheBalanceRow{
				TokenID:      snap.TrancheID,
				Timestamp:    bucket.start,
				TokenSupply:  snap.TokenSupply,
				TokenPrice:   snap.TokenPrice,
				TrancheValue: value,
			})
			totalCapital = totalCapital.Add(value)
		}
		row.TotalCapital = totalCapital

		rows = append(rows, row)
	}
	return rows
}
