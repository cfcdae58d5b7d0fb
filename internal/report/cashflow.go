package report

import (
	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// Cashflow builds one row per populated bucket. Flow fields are the sum of
// the pool snapshots' per-period deltas within the bucket; the end cash
// balance is point-in-time state from the latest snapshot in the bucket.
// RealizedPL is only reported for public-credit pools.
func (Processor) Cashflow(data CashflowData, f Filter) []CashflowRow {
	subtype := assetClass(data.Metadata)
	poolBuckets := groupByBucket(data.PoolSnapshots, poolSnapshotTime, f.GroupBy)
	feeBuckets := make(map[int64][]models.PoolFeeSnapshot)
	for _, g := range groupByBucket(data.PoolFeeSnapshots, feeSnapshotTime, f.GroupBy) {
		feeBuckets[g.start.Unix()] = g.records
	}

	rows := make([]CashflowRow, 0, len(poolBuckets))
	for _, bucket := range poolBuckets {
		latest := bucket.records[len(bucket.records)-1]
		decimals := latest.PoolCurrency.Decimals

		principal := fixed.Zero(decimals)
		interest := fixed.Zero(decimals)
		borrowed := fixed.Zero(decimals)
		realized := fixed.Zero(decimals)
		invested := fixed.Zero(decimals)
		redeemed := fixed.Zero(decimals)
		for _, snap := range bucket.records {
			principal = principal.Add(snap.SumPrincipalRepaidAmountByPeriod)
			interest = interest.Add(snap.SumInterestRepaidAmountByPeriod)
			borrowed = borrowed.Add(snap.SumBorrowedAmountByPeriod)
			realized = realized.Add(snap.SumRealizedProfitFifoByPeriod)
			invested = invested.Add(snap.SumInvestedAmountByPeriod)
			redeemed = redeemed.Add(snap.SumRedeemedAmountByPeriod)
		}

		row := CashflowRow{
			Type:              types.ReportCashflow,
			Subtype:           subtype,
			Timestamp:         bucket.start,
			PrincipalPayments: principal,
			InterestPayments:  interest,
			AssetAcquisitions: borrowed.Neg(),
			Investments:       invested,
			Redemptions:       redeemed.Neg(),
			Fees:              feeRows(feeBuckets[bucket.start.Unix()], bucket.start, feePaidAmount),
			EndCashBalance:    latest.TotalReserve.Add(latest.OffchainCashValue),
		}

		// Derived totals compose already-aggregated fields in a declared
		// order; they are never re-derived from the raw records.
		row.NetCashflowAsset = row.PrincipalPayments.
			Add(row.InterestPayments).
			Add(row.AssetAcquisitions)
		if subtype == types.AssetClassPublicCredit {
			row.RealizedPL = &realized
			row.NetCashflowAsset = row.NetCashflowAsset.Add(realized)
		}
		row.NetCashflowAfterFees = row.NetCashflowAsset.Sub(sumFeeRows(row.Fees, decimals))
		row.ActivitiesCashflow = row.Investments.Add(row.Redemptions)
		row.TotalCashflow = row.NetCashflowAfterFees.Add(row.ActivitiesCashflow)

		rows = append(rows, row)
	}
	return rows
}

func feePaidAmount(s models.PoolFeeSnapshot) fixed.Currency {
	return s.SumPaidAmountByPeriod
}
