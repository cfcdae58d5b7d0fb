// Package types provides common type definitions for the pool reporter system.
package types

// ReportType identifies one of the supported report derivations
type ReportType string

const (
	// ReportBalanceSheet represents the point-in-time balance sheet report
	ReportBalanceSheet ReportType = "balanceSheet"
	// ReportCashflow represents the cashflow report
	ReportCashflow ReportType = "cashflow"
	// ReportProfitAndLoss represents the profit-and-loss report
	ReportProfitAndLoss ReportType = "profitAndLoss"
	// ReportInvestorTransactions represents the investor transaction ledger
	ReportInvestorTransactions ReportType = "investorTransactions"
	// ReportAssetTransactions represents the asset transaction ledger
	ReportAssetTransactions ReportType = "assetTransactions"
	// ReportFeeTransactions represents the fee transaction ledger
	ReportFeeTransactions ReportType = "feeTransactions"
	// ReportTokenPrice represents the token price history report
	ReportTokenPrice ReportType = "tokenPrice"
)

// GroupBy represents the bucket granularity for report rows
type GroupBy string

const (
	// GroupByDay buckets rows by calendar day
	GroupByDay GroupBy = "day"
	// GroupByMonth buckets rows by calendar month
	GroupByMonth GroupBy = "month"
	// GroupByQuarter buckets rows by calendar quarter
	GroupByQuarter GroupBy = "quarter"
	// GroupByYear buckets rows by calendar year
	GroupByYear GroupBy = "year"
)

// Valid reports whether the granularity is one of the supported buckets
func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByMonth, GroupByQuarter, GroupByYear:
		return true
	}
	return false
}

// AssetClass classifies a pool's investment strategy
type AssetClass string

const (
	// AssetClassPublicCredit represents pools invested in public credit
	AssetClassPublicCredit AssetClass = "publicCredit"
	// AssetClassPrivateCredit represents pools invested in private credit
	AssetClassPrivateCredit AssetClass = "privateCredit"
)

// InvestorTransactionType discriminates investor transaction records
type InvestorTransactionType string

const (
	// InvestOrderUpdate represents a pending investment order change
	InvestOrderUpdate InvestorTransactionType = "INVEST_ORDER_UPDATE"
	// RedeemOrderUpdate represents a pending redemption order change
	RedeemOrderUpdate InvestorTransactionType = "REDEEM_ORDER_UPDATE"
	// InvestExecution represents an executed investment
	InvestExecution InvestorTransactionType = "INVEST_EXECUTION"
	// RedeemExecution represents an executed redemption
	RedeemExecution InvestorTransactionType = "REDEEM_EXECUTION"
	// TransferIn represents tokens transferred into an account
	TransferIn InvestorTransactionType = "TRANSFER_IN"
	// TransferOut represents tokens transferred out of an account
	TransferOut InvestorTransactionType = "TRANSFER_OUT"
)

// AssetTransactionType discriminates asset transaction records
type AssetTransactionType string

const (
	// AssetCreated represents an asset being originated in the pool
	AssetCreated AssetTransactionType = "CREATED"
	// AssetBorrowed represents principal drawn against an asset
	AssetBorrowed AssetTransactionType = "BORROWED"
	// AssetRepaid represents principal or interest repaid on an asset
	AssetRepaid AssetTransactionType = "REPAID"
	// AssetClosed represents an asset being closed out
	AssetClosed AssetTransactionType = "CLOSED"
)

// FeeTransactionType discriminates pool fee transaction records
type FeeTransactionType string

const (
	// FeeAccrued represents a fee accrual event
	FeeAccrued FeeTransactionType = "ACCRUED"
	// FeePaid represents a fee payment event
	FeePaid FeeTransactionType = "PAID"
	// FeeCharged represents a one-off fee charge
	FeeCharged FeeTransactionType = "CHARGED"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
