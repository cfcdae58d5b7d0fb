package report

import (
	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// ProfitAndLoss builds one row per populated bucket from the pool snapshots'
// per-period deltas. Public-credit pools report mark-to-market profit and a
// total income line; private-credit pools report accrual-based profit with
// interest accrued and write-offs broken out.
func (Processor) ProfitAndLoss(data CashflowData, f Filter) []ProfitAndLossRow {
	subtype := assetClass(data.Metadata)
	poolBuckets := groupByBucket(data.PoolSnapshots, poolSnapshotTime, f.GroupBy)
	feeBuckets := make(map[int64][]models.PoolFeeSnapshot)
	for _, g := range groupByBucket(data.PoolFeeSnapshots, feeSnapshotTime, f.GroupBy) {
		feeBuckets[g.start.Unix()] = g.records
	}

	rows := make([]ProfitAndLossRow, 0, len(poolBuckets))
	for _, bucket := range poolBuckets {
		decimals := bucket.records[0].PoolCurrency.Decimals

		interestRepaid := fixed.Zero(decimals)
		unscheduledRepaid := fixed.Zero(decimals)
		realized := fixed.Zero(decimals)
		unrealized := fixed.Zero(decimals)
		interestAccrued := fixed.Zero(decimals)
		writtenOff := fixed.Zero(decimals)
		for _, snap := range bucket.records {
			interestRepaid = interestRepaid.Add(snap.SumInterestRepaidAmountByPeriod)
			unscheduledRepaid = unscheduledRepaid.Add(snap.SumUnscheduledRepaidAmountByPeriod)
			realized = realized.Add(snap.SumRealizedProfitFifoByPeriod)
			unrealized = unrealized.Add(snap.SumUnrealizedProfitByPeriod)
			interestAccrued = interestAccrued.Add(snap.SumInterestAccruedByPeriod)
			writtenOff = writtenOff.Add(snap.SumDebtWrittenOffByPeriod)
		}

		row := ProfitAndLossRow{
			Type:             types.ReportProfitAndLoss,
			Subtype:          subtype,
			Timestamp:        bucket.start,
			InterestPayments: interestRepaid,
			OtherPayments:    unscheduledRepaid,
			Fees:             feeRows(feeBuckets[bucket.start.Unix()], bucket.start, feeAccruedAmount),
		}
		row.TotalExpenses = sumFeeRows(row.Fees, decimals)

		switch subtype {
		case types.AssetClassPublicCredit:
			row.ProfitAndLossFromAsset = realized.Add(unrealized)
			totalIncome := row.ProfitAndLossFromAsset.
				Add(row.InterestPayments).
				Add(row.OtherPayments)
			row.TotalIncome = &totalIncome
		default:
			row.ProfitAndLossFromAsset = interestAccrued.Sub(writtenOff)
			row.InterestAccrued = &interestAccrued
			row.AssetWriteOffs = &writtenOff
		}

		row.TotalProfitAndLoss = row.ProfitAndLossFromAsset.
			Add(row.InterestPayments).
			Add(row.OtherPayments).
			Sub(row.TotalExpenses)

		rows = append(rows, row)
	}
	return rows
}

func feeAccruedAmount(s models.PoolFeeSnapshot) fixed.Currency {
	return s.SumAccruedAmountByPeriod
}
