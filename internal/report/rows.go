package report

import (
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/types"
)

// Report rows are tagged variants: one flat struct per report type, each
// carrying its Type discriminant and the canonical start timestamp of its
// bucket. Rows are ordered ascending and one row exists per populated bucket.
// Callers must treat returned rows as read-only; cached results are shared.

// TrancheBalanceRow is one tranche's sub-row within a balance sheet bucket.
type TrancheBalanceRow struct {
	TokenID     string         `json:"tokenId"`
	Name        string         `json:"name,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
	TokenSupply fixed.Currency `json:"tokenSupply"`
	// TokenPrice is nil when the indexer recorded no price for the bucket.
	TokenPrice   *fixed.Price   `json:"tokenPrice"`
	TrancheValue fixed.Currency `json:"trancheValue"`
}

// BalanceSheetRow is one bucket of the balance sheet report.
type BalanceSheetRow struct {
	Type           types.ReportType    `json:"type"`
	Timestamp      time.Time           `json:"timestamp"`
	AssetValuation fixed.Currency      `json:"assetValuation"`
	OnchainReserve fixed.Currency      `json:"onchainReserve"`
	OffchainCash   fixed.Currency      `json:"offchainCash"`
	AccruedFees    fixed.Currency      `json:"accruedFees"`
	NetAssetValue  fixed.Currency      `json:"netAssetValue"`
	Tranches       []TrancheBalanceRow `json:"tranches"`
	TotalCapital   fixed.Currency      `json:"totalCapital"`
}

// FeeAmountRow is one fee's sub-row within a cashflow or profit-and-loss
// bucket.
type FeeAmountRow struct {
	FeeID     string         `json:"feeId"`
	Name      string         `json:"name"`
	Timestamp time.Time      `json:"timestamp"`
	Amount    fixed.Currency `json:"amount"`
}

// CashflowRow is one bucket of the cashflow report. RealizedPL is populated
// only for public-credit pools (Subtype publicCredit).
type CashflowRow struct {
	Type                 types.ReportType `json:"type"`
	Subtype              types.AssetClass `json:"subtype"`
	Timestamp            time.Time        `json:"timestamp"`
	PrincipalPayments    fixed.Currency   `json:"principalPayments"`
	InterestPayments     fixed.Currency   `json:"interestPayments"`
	AssetAcquisitions    fixed.Currency   `json:"assetAcquisitions"`
	RealizedPL           *fixed.Currency  `json:"realizedPL,omitempty"`
	NetCashflowAsset     fixed.Currency   `json:"netCashflowAsset"`
	Fees                 []FeeAmountRow   `json:"fees"`
	NetCashflowAfterFees fixed.Currency   `json:"netCashflowAfterFees"`
	Investments          fixed.Currency   `json:"investments"`
	Redemptions          fixed.Currency   `json:"redemptions"`
	ActivitiesCashflow   fixed.Currency   `json:"activitiesCashflow"`
	TotalCashflow        fixed.Currency   `json:"totalCashflow"`
	EndCashBalance       fixed.Currency   `json:"endCashBalance"`
}

// ProfitAndLossRow is one bucket of the profit-and-loss report. TotalIncome
// is populated for public-credit pools; InterestAccrued and AssetWriteOffs
// for private-credit pools.
type ProfitAndLossRow struct {
	Type                   types.ReportType `json:"type"`
	Subtype                types.AssetClass `json:"subtype"`
	Timestamp              time.Time        `json:"timestamp"`
	ProfitAndLossFromAsset fixed.Currency   `json:"profitAndLossFromAsset"`
	InterestPayments       fixed.Currency   `json:"interestPayments"`
	OtherPayments          fixed.Currency   `json:"otherPayments"`
	TotalExpenses          fixed.Currency   `json:"totalExpenses"`
	TotalProfitAndLoss     fixed.Currency   `json:"totalProfitAndLoss"`
	Fees                   []FeeAmountRow   `json:"fees"`
	TotalIncome            *fixed.Currency  `json:"totalIncome,omitempty"`
	InterestAccrued        *fixed.Currency  `json:"interestAccrued,omitempty"`
	AssetWriteOffs         *fixed.Currency  `json:"assetWriteOffs,omitempty"`
}

// InvestorTransactionsRow is one bucket of summed investor activity.
type InvestorTransactionsRow struct {
	Type           types.ReportType `json:"type"`
	Timestamp      time.Time        `json:"timestamp"`
	Count          int              `json:"count"`
	CurrencyAmount fixed.Currency   `json:"currencyAmount"`
	TokenAmount    fixed.Currency   `json:"tokenAmount"`
}

// AssetTransactionsRow is one bucket of summed asset financing activity.
type AssetTransactionsRow struct {
	Type            types.ReportType `json:"type"`
	Timestamp       time.Time        `json:"timestamp"`
	Count           int              `json:"count"`
	PrincipalAmount fixed.Currency   `json:"principalAmount"`
	InterestAmount  fixed.Currency   `json:"interestAmount"`
	TotalAmount     fixed.Currency   `json:"totalAmount"`
}

// FeeTransactionsRow is one bucket of summed fee activity.
type FeeTransactionsRow struct {
	Type      types.ReportType `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Count     int              `json:"count"`
	Amount    fixed.Currency   `json:"amount"`
}

// TokenPriceTrancheRow is one tranche's sub-row within a token price bucket.
type TokenPriceTrancheRow struct {
	TokenID   string         `json:"tokenId"`
	Timestamp time.Time      `json:"timestamp"`
	Price     *fixed.Price   `json:"price"`
	Supply    fixed.Currency `json:"supply"`
}

// TokenPriceRow is one bucket of the token price history report.
type TokenPriceRow struct {
	Type      types.ReportType       `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Tranches  []TokenPriceTrancheRow `json:"tranches"`
}
