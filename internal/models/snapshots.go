// Package models defines the normalized record shapes exchanged between the
// indexer transport and the report engine.
package models

import (
	"time"

	"github.com/pool-reporter/internal/fixed"
)

// CurrencyInfo describes the denomination of a pool's currency.
type CurrencyInfo struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// PoolSnapshot is a daily point-in-time record of a pool's balances plus the
// flow deltas accumulated since the previous snapshot ("ByPeriod" fields).
// The upstream indexer produces at most one snapshot per pool per day; gaps
// are possible and must be tolerated.
type PoolSnapshot struct {
	ID        string    `json:"id"`
	PoolID    string    `json:"poolId"`
	Timestamp time.Time `json:"timestamp"`

	PoolCurrency CurrencyInfo `json:"poolCurrency"`

	// Point-in-time state.
	PortfolioValuation       fixed.Currency `json:"portfolioValuation"`
	TotalReserve             fixed.Currency `json:"totalReserve"`
	OffchainCashValue        fixed.Currency `json:"offchainCashValue"`
	SumPoolFeesPendingAmount fixed.Currency `json:"sumPoolFeesPendingAmount"`
	NetAssetValue            fixed.Currency `json:"netAssetValue"`

	// Flow deltas since the previous snapshot.
	SumPrincipalRepaidAmountByPeriod   fixed.Currency `json:"sumPrincipalRepaidAmountByPeriod"`
	SumInterestRepaidAmountByPeriod    fixed.Currency `json:"sumInterestRepaidAmountByPeriod"`
	SumUnscheduledRepaidAmountByPeriod fixed.Currency `json:"sumUnscheduledRepaidAmountByPeriod"`
	SumBorrowedAmountByPeriod          fixed.Currency `json:"sumBorrowedAmountByPeriod"`
	SumInvestedAmountByPeriod          fixed.Currency `json:"sumInvestedAmountByPeriod"`
	SumRedeemedAmountByPeriod          fixed.Currency `json:"sumRedeemedAmountByPeriod"`
	SumRealizedProfitFifoByPeriod      fixed.Currency `json:"sumRealizedProfitFifoByPeriod"`
	SumUnrealizedProfitByPeriod        fixed.Currency `json:"sumUnrealizedProfitByPeriod"`
	SumInterestAccruedByPeriod         fixed.Currency `json:"sumInterestAccruedByPeriod"`
	SumDebtWrittenOffByPeriod          fixed.Currency `json:"sumDebtWrittenOffByPeriod"`
}

// TrancheSnapshot is a daily point-in-time record of one tranche token's
// supply, price and order fulfilment. Token amounts are normalized to the
// pool currency's decimals by the indexer post-processing.
type TrancheSnapshot struct {
	ID        string    `json:"id"`
	TrancheID string    `json:"trancheId"`
	PoolID    string    `json:"poolId"`
	Timestamp time.Time `json:"timestamp"`

	PoolCurrency CurrencyInfo `json:"poolCurrency"`

	TokenSupply fixed.Currency `json:"tokenSupply"`
	// TokenPrice is nil when the indexer has no price for the day.
	TokenPrice *fixed.Price `json:"tokenPrice"`

	OutstandingInvestOrders fixed.Currency `json:"outstandingInvestOrders"`
	OutstandingRedeemOrders fixed.Currency `json:"outstandingRedeemOrders"`
	FulfilledInvestOrders   fixed.Currency `json:"fulfilledInvestOrders"`
	FulfilledRedeemOrders   fixed.Currency `json:"fulfilledRedeemOrders"`
}

// PoolFeeSnapshot is a daily point-in-time record of one pool fee's accrual
// state plus the amounts paid and accrued since the previous snapshot.
type PoolFeeSnapshot struct {
	ID        string    `json:"id"`
	FeeID     string    `json:"feeId"`
	PoolID    string    `json:"poolId"`
	FeeName   string    `json:"feeName"`
	Timestamp time.Time `json:"timestamp"`

	PoolCurrency CurrencyInfo `json:"poolCurrency"`

	PendingAmount            fixed.Currency `json:"pendingAmount"`
	SumPaidAmountByPeriod    fixed.Currency `json:"sumPaidAmountByPeriod"`
	SumAccruedAmountByPeriod fixed.Currency `json:"sumAccruedAmountByPeriod"`
}

// PoolMetadata describes the pool attributes needed to shape reports.
type PoolMetadata struct {
	PoolID     string           `json:"poolId"`
	Name       string           `json:"name"`
	AssetClass string           `json:"assetClass"`
	Currency   CurrencyInfo     `json:"currency"`
	Tranches   []TrancheDetails `json:"tranches"`
}

// TrancheDetails names a tranche token within pool metadata.
type TrancheDetails struct {
	TrancheID string `json:"trancheId"`
	Name      string `json:"name"`
}
