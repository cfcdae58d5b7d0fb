// Package report derives time-bucketed financial reports for one investment
// pool from raw indexer records, memoizing results by request parameters.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// Error taxonomy for report derivation. All failures surface to the caller;
// nothing is retried here and failed derivations never populate the cache.
var (
	// ErrUnsupportedReportType is returned before any sub-query is issued.
	ErrUnsupportedReportType = errors.New("unsupported report type")
	// ErrInvalidFilter marks a malformed date range or groupBy value.
	ErrInvalidFilter = errors.New("invalid report filter")
	// ErrSourceQuery wraps any raw sub-query failure.
	ErrSourceQuery = errors.New("raw source query failed")
)

// Filter narrows a report request. From/To bound the date range (To is
// inclusive through the end of its calendar day), GroupBy selects the bucket
// granularity, and the remaining fields are optional narrowing predicates
// recognized by specific report types.
type Filter struct {
	From    *time.Time    `json:"from,omitempty"`
	To      *time.Time    `json:"to,omitempty"`
	GroupBy types.GroupBy `json:"groupBy,omitempty"`

	Address         string `json:"address,omitempty"`
	Network         string `json:"network,omitempty"`
	TokenID         string `json:"tokenId,omitempty"`
	TransactionType string `json:"transactionType,omitempty"`
	AssetID         string `json:"assetId,omitempty"`
}

// validate checks the filter before any sub-query is issued.
func (f Filter) validate() error {
	if f.GroupBy != "" && !f.GroupBy.Valid() {
		return fmt.Errorf("%w: unknown groupBy %q", ErrInvalidFilter, f.GroupBy)
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: from %s is after to %s", ErrInvalidFilter,
			f.From.Format(time.RFC3339), f.To.Format(time.RFC3339))
	}
	if strings.HasPrefix(f.Address, "0x") && !common.IsHexAddress(f.Address) {
		return fmt.Errorf("%w: malformed address %q", ErrInvalidFilter, f.Address)
	}
	return nil
}

// normalized defaults GroupBy to the finest granularity the raw data
// supports (day).
func (f Filter) normalized() Filter {
	if f.GroupBy == "" {
		f.GroupBy = types.GroupByDay
	}
	return f
}

// dateRange derives the shared raw-query predicate: From is an exclusive
// lower bound, To is widened to the end of its calendar day.
func (f Filter) dateRange() models.TimestampRange {
	r := models.TimestampRange{GreaterThan: f.From}
	if f.To != nil {
		end := endOfDay(f.To.UTC())
		r.LessThanOrEqualTo = &end
	}
	return r
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}

// cacheKeyParams is the canonical identity of a report request. Two requests
// with value-equal parameters hash to the same key regardless of argument
// identity.
type cacheKeyParams struct {
	Type            types.ReportType `json:"type"`
	From            string           `json:"from"`
	To              string           `json:"to"`
	GroupBy         types.GroupBy    `json:"groupBy"`
	Address         string           `json:"address"`
	Network         string           `json:"network"`
	TokenID         string           `json:"tokenId"`
	TransactionType string           `json:"transactionType"`
	AssetID         string           `json:"assetId"`
}

// cacheKey hashes the request parameters into the cache/single-flight key.
func cacheKey(typ types.ReportType, f Filter) string {
	params := cacheKeyParams{
		Type:            typ,
		GroupBy:         f.GroupBy,
		Address:         strings.ToLower(f.Address),
		Network:         f.Network,
		TokenID:         f.TokenID,
		TransactionType: f.TransactionType,
		AssetID:         f.AssetID,
	}
	if f.From != nil {
		params.From = f.From.UTC().Format(time.RFC3339Nano)
	}
	if f.To != nil {
		params.To = f.To.UTC().Format(time.RFC3339Nano)
	}
	data, _ := json.Marshal(params)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
