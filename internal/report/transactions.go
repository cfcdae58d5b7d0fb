package report

import (
	"strings"
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// Transaction-based reports aggregate flow: each bucket's row is the sum of
// the transactions whose timestamp falls inside the bucket. Narrowing
// filters are applied to the raw records before bucketing, never to rows.

// InvestorTransactions sums investor activity per bucket, optionally narrowed
// by account address, settlement network, tranche token and transaction type.
func (Processor) InvestorTransactions(data InvestorTransactionsData, f Filter) []InvestorTransactionsRow {
	filtered := make([]models.InvestorTransaction, 0, len(data.Transactions))
	for _, tx := range data.Transactions {
		if f.Address != "" && !strings.EqualFold(tx.Account, f.Address) {
			continue
		}
		if f.Network != "" && tx.ChainID != f.Network {
			continue
		}
		if f.TokenID != "" && tx.TrancheID != f.TokenID {
			continue
		}
		if f.TransactionType != "" && tx.Type != types.InvestorTransactionType(f.TransactionType) {
			continue
		}
		filtered = append(filtered, tx)
	}

	buckets := groupByBucket(filtered, investorTxTime, f.GroupBy)
	rows := make([]InvestorTransactionsRow, 0, len(buckets))
	for _, bucket := range buckets {
		decimals := bucket.records[0].CurrencyAmount.Decimals()
		row := InvestorTransactionsRow{
			Type:           types.ReportInvestorTransactions,
			Timestamp:      bucket.start,
			Count:          len(bucket.records),
			CurrencyAmount: fixed.Zero(decimals),
			TokenAmount:    fixed.Zero(bucket.records[0].TokenAmount.Decimals()),
		}
		for _, tx := range bucket.records {
			row.CurrencyAmount = row.CurrencyAmount.Add(tx.CurrencyAmount)
			row.TokenAmount = row.TokenAmount.Add(tx.TokenAmount)
		}
		rows = append(rows, row)
	}
	return rows
}

// AssetTransactions sums asset financing activity per bucket, optionally
// narrowed by asset and transaction type.
func (Processor) AssetTransactions(data AssetTransactionsData, f Filter) []AssetTransactionsRow {
	filtered := make([]models.AssetTransaction, 0, len(data.Transactions))
	for _, tx := range data.Transactions {
		if f.AssetID != "" && tx.AssetID != f.AssetID {
			continue
		}
		if f.TransactionType != "" && tx.Type != types.AssetTransactionType(f.TransactionType) {
			continue
		}
		filtered = append(filtered, tx)
	}

	buckets := groupByBucket(filtered, assetTxTime, f.GroupBy)
	rows := make([]AssetTransactionsRow, 0, len(buckets))
	for _, bucket := range buckets {
		decimals := bucket.records[0].PrincipalAmount.Decimals()
		row := AssetTransactionsRow{
			Type:            types.ReportAssetTransactions,
			Timestamp:       bucket.start,
			Count:           len(bucket.records),
			PrincipalAmount: fixed.Zero(decimals),
			InterestAmount:  fixed.Zero(decimals),
		}
		for _, tx := range bucket.records {
			row.PrincipalAmount = row.PrincipalAmount.Add(tx.PrincipalAmount)
			row.InterestAmount = row.InterestAmount.Add(tx.InterestAmount)
		}
		row.TotalAmount = row.PrincipalAmount.Add(row.InterestAmount)
		rows = append(rows, row)
	}
	return rows
}

// FeeTransactions sums fee activity per bucket, optionally narrowed by
// transaction type.
func (Processor) FeeTransactions(data FeeTransactionsData, f Filter) []FeeTransactionsRow {
	filtered := make([]models.PoolFeeTransaction, 0, len(data.Transactions))
	for _, tx := range data.Transactions {
		if f.TransactionType != "" && tx.Type != types.FeeTransactionType(f.TransactionType) {
			continue
		}
		filtered = append(filtered, tx)
	}

	buckets := groupByBucket(filtered, feeTxTime, f.GroupBy)
	rows := make([]FeeTransactionsRow, 0, len(buckets))
	for _, bucket := range buckets {
		row := FeeTransactionsRow{
			Type:      types.ReportFeeTransactions,
			Timestamp: bucket.start,
			Count:     len(bucket.records),
			Amount:    fixed.Zero(bucket.records[0].Amount.Decimals()),
		}
		for _, tx := range bucket.records {
			row.Amount = row.Amount.Add(tx.Amount)
		}
		rows = append(rows, row)
	}
	return rows
}

func investorTxTime(tx models.InvestorTransaction) time.Time { return tx.Timestamp }
func assetTxTime(tx models.AssetTransaction) time.Time       { return tx.Timestamp }
func feeTxTime(tx models.PoolFeeTransaction) time.Time       { return tx.Timestamp }
