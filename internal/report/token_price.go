package report

import (
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// TokenPrice builds one row per populated bucket from the latest tranche
// snapshot per tranche in that bucket. A tokenId filter narrows the raw
// snapshots before bucketing.
func (Processor) TokenPrice(data TokenPriceData, f Filter) []TokenPriceRow {
	snapshots := data.TrancheSnapshots
	if f.TokenID != "" {
		filtered := make([]models.TrancheSnapshot, 0, len(snapshots))
		for _, s := range snapshots {
			if s.TrancheID == f.TokenID {
				filtered = append(filtered, s)
			}
		}
		snapshots = filtered
	}

	buckets := groupByBucket(snapshots, trancheSnapshotTime, f.GroupBy)
	rows := make([]TokenPriceRow, 0, len(buckets))
	for _, bucket := range buckets {
		row := TokenPriceRow{
			Type:      types.ReportTokenPrice,
			Timestamp: bucket.start,
		}
		for _, snap := range latestPerEntity(bucket.records, trancheSnapshotID) {
			row.Tranches = append(row.Tranches, TokenPriceTrancheRow{
				TokenID:   snap.TrancheID,
				Timestamp: bucket.start,
				Price:     snap.TokenPrice,
				Supply:    snap.TokenSupply,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
