package models

import (
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/types"
)

// InvestorTransaction is an investment or redemption event for one investor
// account against one tranche token.
type InvestorTransaction struct {
	ID          string                        `json:"id"`
	PoolID      string                        `json:"poolId"`
	TrancheID   string                        `json:"trancheId"`
	EpochNumber uint32                        `json:"epochNumber"`
	Timestamp   time.Time                     `json:"timestamp"`
	Type        types.InvestorTransactionType `json:"type"`

	// Account is the investor address; EVM accounts are hex, native accounts
	// are SS58 strings.
	Account string `json:"account"`
	// ChainID is the network the transaction settled on; "0" marks the
	// pool's native chain.
	ChainID string `json:"chainId"`

	CurrencyAmount fixed.Currency `json:"currencyAmount"`
	TokenAmount    fixed.Currency `json:"tokenAmount"`
	TokenPrice     *fixed.Price   `json:"tokenPrice"`
	Hash           string         `json:"hash"`
}

// AssetTransaction is a financing event against one asset in the pool.
type AssetTransaction struct {
	ID        string                     `json:"id"`
	PoolID    string                     `json:"poolId"`
	AssetID   string                     `json:"assetId"`
	Timestamp time.Time                  `json:"timestamp"`
	Type      types.AssetTransactionType `json:"type"`

	PrincipalAmount fixed.Currency `json:"principalAmount"`
	InterestAmount  fixed.Currency `json:"interestAmount"`
	Hash            string         `json:"hash"`
}

// PoolFeeTransaction is an accrual or payment event for one pool fee.
type PoolFeeTransaction struct {
	ID          string                   `json:"id"`
	FeeID       string                   `json:"feeId"`
	PoolID      string                   `json:"poolId"`
	EpochNumber uint32                   `json:"epochNumber"`
	Timestamp   time.Time                `json:"timestamp"`
	Type        types.FeeTransactionType `json:"type"`

	Amount fixed.Currency `json:"amount"`
}

// TimestampRange bounds a raw sub-query; either side may be nil. The upper
// bound is inclusive, matching the indexer's lessThanOrEqualTo predicate.
type TimestampRange struct {
	GreaterThan       *time.Time `json:"greaterThan,omitempty"`
	LessThanOrEqualTo *time.Time `json:"lessThanOrEqualTo,omitempty"`
}

// Contains reports whether t falls inside the range.
func (r TimestampRange) Contains(t time.Time) bool {
	if r.GreaterThan != nil && !t.After(*r.GreaterThan) {
		return false
	}
	if r.LessThanOrEqualTo != nil && t.After(*r.LessThanOrEqualTo) {
		return false
	}
	return true
}

// RawFilter scopes a raw sub-query to one pool and a timestamp range.
type RawFilter struct {
	PoolID    string         `json:"poolId"`
	Timestamp TimestampRange `json:"timestamp"`
}
