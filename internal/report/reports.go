package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pool-reporter/internal/logging"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// DefaultCacheTTL matches the indexer's snapshot cadence closely enough that
// serving a memoized report for two minutes never hides a new snapshot day.
const DefaultCacheTTL = 120 * time.Second

// RawQuerier is the raw query layer consumed by the report engine. Each
// method issues one independent sub-query against the indexing service and
// returns normalized records; the transport may cache these, this engine
// does not.
type RawQuerier interface {
	PoolSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolSnapshot, error)
	TrancheSnapshots(ctx context.Context, f models.RawFilter) ([]models.TrancheSnapshot, error)
	PoolFeeSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolFeeSnapshot, error)
	InvestorTransactions(ctx context.Context, f models.RawFilter) ([]models.InvestorTransaction, error)
	AssetTransactions(ctx context.Context, f models.RawFilter) ([]models.AssetTransaction, error)
	PoolFeeTransactions(ctx context.Context, f models.RawFilter) ([]models.PoolFeeTransaction, error)
	PoolMetadata(ctx context.Context, poolID string) (*models.PoolMetadata, error)
}

// processorAPI is the set of pure aggregation functions the orchestrator
// dispatches to. It exists so tests can count and intercept invocations.
type processorAPI interface {
	BalanceSheet(data BalanceSheetData, f Filter) []BalanceSheetRow
	Cashflow(data CashflowData, f Filter) []CashflowRow
	ProfitAndLoss(data CashflowData, f Filter) []ProfitAndLossRow
	InvestorTransactions(data InvestorTransactionsData, f Filter) []InvestorTransactionsRow
	AssetTransactions(data AssetTransactionsData, f Filter) []AssetTransactionsRow
	FeeTransactions(data FeeTransactionsData, f Filter) []FeeTransactionsRow
	TokenPrice(data TokenPriceData, f Filter) []TokenPriceRow
}

// rawSource identifies one independent raw sub-query.
type rawSource uint8

const (
	srcPoolSnapshots rawSource = iota
	srcTrancheSnapshots
	srcPoolFeeSnapshots
	srcInvestorTransactions
	srcAssetTransactions
	srcPoolFeeTransactions
	srcMetadata
)

// requiredSources is the static mapping from report type to the minimal set
// of raw sub-queries its processor needs. A type missing from this map is
// unsupported and fails before any sub-query is issued.
var requiredSources = map[types.ReportType][]rawSource{
	types.ReportBalanceSheet:         {srcPoolSnapshots, srcTrancheSnapshots},
	types.ReportCashflow:             {srcPoolSnapshots, srcPoolFeeSnapshots, srcMetadata},
	types.ReportProfitAndLoss:        {srcPoolSnapshots, srcPoolFeeSnapshots, srcMetadata},
	types.ReportInvestorTransactions: {srcInvestorTransactions, srcMetadata},
	types.ReportAssetTransactions:    {srcAssetTransactions, srcMetadata},
	types.ReportFeeTransactions:      {srcPoolFeeTransactions},
	types.ReportTokenPrice:           {srcTrancheSnapshots},
}

// Reports derives reports for one pool, bound at construction. The request
// cache and the single-flight registry are the only shared mutable state;
// identical concurrent requests coalesce into one derivation per key.
type Reports struct {
	poolID  string
	querier RawQuerier
	proc    processorAPI
	cache   *resultCache
	logger  *logging.Logger

	inflightMu sync.Mutex
	inflight   map[string]*inflightCall
}

// inflightCall broadcasts one derivation's outcome to every waiter. The done
// channel is closed exactly once after rows/err are set.
type inflightCall struct {
	done chan struct{}
	rows any
	err  error
}

// Option configures a Reports instance.
type Option func(*Reports)

// WithCacheTTL overrides the result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Reports) { r.cache.ttl = ttl }
}

// WithClock injects the cache clock for TTL tests.
func WithClock(now func() time.Time) Option {
	return func(r *Reports) { r.cache.now = now }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Reports) { r.logger = logger }
}

// NewReports creates a report engine for one pool on top of a raw query
// layer.
func NewReports(poolID string, querier RawQuerier, opts ...Option) *Reports {
	r := &Reports{
		poolID:   poolID,
		querier:  querier,
		proc:     Processor{},
		cache:    newResultCache(DefaultCacheTTL, time.Now),
		logger:   logging.NewLogger(logging.LevelInfo, logging.FormatJSON),
		inflight: make(map[string]*inflightCall),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BalanceSheet derives the balance sheet report.
func (r *Reports) BalanceSheet(ctx context.Context, f Filter) ([]BalanceSheetRow, error) {
	rows, err := r.generate(ctx, types.ReportBalanceSheet, f)
	if err != nil {
		return nil, err
	}
	return rows.([]BalanceSheetRow), nil
}

// Cashflow derives the cashflow report.
func (r *Reports) Cashflow(ctx context.Context, f Filter) ([]CashflowRow, error) {
	rows, err := r.generate(ctx, types.ReportCashflow, f)
	if err != nil {
		return nil, err
	}
	return rows.([]CashflowRow), nil
}

// ProfitAndLoss derives the profit-and-loss report.
func (r *Reports) ProfitAndLoss(ctx context.Context, f Filter) ([]ProfitAndLossRow, error) {
	rows, err := r.generate(ctx, types.ReportProfitAndLoss, f)
	if err != nil {
		return nil, err
	}
	return rows.([]ProfitAndLossRow), nil
}

// InvestorTransactions derives the investor transaction ledger.
func (r *Reports) InvestorTransactions(ctx context.Context, f Filter) ([]InvestorTransactionsRow, error) {
	rows, err := r.generate(ctx, types.ReportInvestorTransactions, f)
	if err != nil {
		return nil, err
	}
	return rows.([]InvestorTransactionsRow), nil
}

// AssetTransactions derives the asset transaction ledger.
func (r *Reports) AssetTransactions(ctx context.Context, f Filter) ([]AssetTransactionsRow, error) {
	rows, err := r.generate(ctx, types.ReportAssetTransactions, f)
	if err != nil {
		return nil, err
	}
	return rows.([]AssetTransactionsRow), nil
}

// FeeTransactions derives the fee transaction ledger.
func (r *Reports) FeeTransactions(ctx context.Context, f Filter) ([]FeeTransactionsRow, error) {
	rows, err := r.generate(ctx, types.ReportFeeTransactions, f)
	if err != nil {
		return nil, err
	}
	return rows.([]FeeTransactionsRow), nil
}

// TokenPrice derives the token price history report.
func (r *Reports) TokenPrice(ctx context.Context, f Filter) ([]TokenPriceRow, error) {
	rows, err := r.generate(ctx, types.ReportTokenPrice, f)
	if err != nil {
		return nil, err
	}
	return rows.([]TokenPriceRow), nil
}

// Generate derives a report by type name. The typed methods above are the
// primary surface; this entry point serves callers that dispatch on a
// request parameter, like the HTTP layer.
func (r *Reports) Generate(ctx context.Context, typ types.ReportType, f Filter) (any, error) {
	return r.generate(ctx, typ, f)
}

func (r *Reports) generate(ctx context.Context, typ types.ReportType, f Filter) (any, error) {
	sources, ok := requiredSources[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, typ)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	f = f.normalized()
	key := cacheKey(typ, f)

	if rows, ok := r.cache.get(key); ok {
		return rows, nil
	}

	call, leader := r.joinInflight(key)
	if !leader {
		select {
		case <-call.done:
			return call.rows, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	rows, err := r.derive(ctx, typ, f, sources)
	if err == nil {
		r.cache.set(key, rows)
	}

	// Tear down the registry entry before broadcasting so a failed key is
	// immediately eligible for a fresh attempt.
	r.inflightMu.Lock()
	delete(r.inflight, key)
	r.inflightMu.Unlock()

	call.rows = rows
	call.err = err
	close(call.done)

	return rows, err
}

// joinInflight returns the in-flight call for key, creating it when absent.
// The second return is true for the caller that owns the derivation. The
// cache is re-checked under the lock so a derivation that completed between
// the caller's cache miss and here is not repeated.
func (r *Reports) joinInflight(key string) (*inflightCall, bool) {
	r.inflightMu.Lock()
	defer r.inflightMu.Unlock()

	if call, ok := r.inflight[key]; ok {
		return call, false
	}
	if rows, ok := r.cache.get(key); ok {
		call := &inflightCall{done: make(chan struct{}), rows: rows}
		close(call.done)
		return call, false
	}

	call := &inflightCall{done: make(chan struct{})}
	r.inflight[key] = call
	return call, true
}

// rawData is the joined result of one derivation's sub-queries. Fields a
// report type does not require stay zero.
type rawData struct {
	poolSnapshots        []models.PoolSnapshot
	trancheSnapshots     []models.TrancheSnapshot
	poolFeeSnapshots     []models.PoolFeeSnapshot
	investorTransactions []models.InvestorTransaction
	assetTransactions    []models.AssetTransaction
	poolFeeTransactions  []models.PoolFeeTransaction
	metadata             *models.PoolMetadata
}

func (r *Reports) derive(ctx context.Context, typ types.ReportType, f Filter, sources []rawSource) (any, error) {
	rawFilter := models.RawFilter{
		PoolID:    r.poolID,
		Timestamp: f.dateRange(),
	}

	started := time.Now()
	data, err := r.fetchAll(ctx, rawFilter, sources)
	if err != nil {
		return nil, err
	}

	var rows any
	switch typ {
	case types.ReportBalanceSheet:
		rows = r.proc.BalanceSheet(BalanceSheetData{
			PoolSnapshots:    data.poolSnapshots,
			TrancheSnapshots: data.trancheSnapshots,
		}, f)
	case types.ReportCashflow:
		rows = r.proc.Cashflow(CashflowData{
			PoolSnapshots:    data.poolSnapshots,
			PoolFeeSnapshots: data.poolFeeSnapshots,
			Metadata:         data.metadata,
		}, f)
	case types.ReportProfitAndLoss:
		rows = r.proc.ProfitAndLoss(CashflowData{
			PoolSnapshots:    data.poolSnapshots,
			PoolFeeSnapshots: data.poolFeeSnapshots,
			Metadata:         data.metadata,
		}, f)
	case types.ReportInvestorTransactions:
		rows = r.proc.InvestorTransactions(InvestorTransactionsData{
			Transactions: data.investorTransactions,
		}, f)
	case types.ReportAssetTransactions:
		rows = r.proc.AssetTransactions(AssetTransactionsData{
			Transactions: data.assetTransactions,
		}, f)
	case types.ReportFeeTransactions:
		rows = r.proc.FeeTransactions(FeeTransactionsData{
			Transactions: data.poolFeeTransactions,
		}, f)
	case types.ReportTokenPrice:
		rows = r.proc.TokenPrice(TokenPriceData{
			TrancheSnapshots: data.trancheSnapshots,
		}, f)
	}

	r.logger.WithFields(map[string]interface{}{
		"pool":     r.poolID,
		"report":   string(typ),
		"duration": time.Since(started).String(),
	}).Debug("Report derived")

	return rows, nil
}

// fetchAll issues the required sub-queries concurrently and waits for all of
// them. Any failure fails the whole derivation; partial results from sibling
// queries are discarded.
func (r *Reports) fetchAll(ctx context.Context, f models.RawFilter, sources []rawSource) (*rawData, error) {
	data := &rawData{}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%w: %s: %v", ErrSourceQuery, name, err)
		}
	}

	for _, src := range sources {
		wg.Add(1)
		go func(src rawSource) {
			defer wg.Done()
			switch src {
			case srcPoolSnapshots:
				records, err := r.querier.PoolSnapshots(ctx, f)
				data.poolSnapshots = records
				record("poolSnapshots", err)
			case srcTrancheSnapshots:
				records, err := r.querier.TrancheSnapshots(ctx, f)
				data.trancheSnapshots = records
				record("trancheSnapshots", err)
			case srcPoolFeeSnapshots:
				records, err := r.querier.PoolFeeSnapshots(ctx, f)
				data.poolFeeSnapshots = records
				record("poolFeeSnapshots", err)
			case srcInvestorTransactions:
				records, err := r.querier.InvestorTransactions(ctx, f)
				data.investorTransactions = records
				record("investorTransactions", err)
			case srcAssetTransactions:
				records, err := r.querier.AssetTransactions(ctx, f)
				data.assetTransactions = records
				record("assetTransactions", err)
			case srcPoolFeeTransactions:
				records, err := r.querier.PoolFeeTransactions(ctx, f)
				data.poolFeeTransactions = records
				record("poolFeeTransactions", err)
			case srcMetadata:
				metadata, err := r.querier.PoolMetadata(ctx, r.poolID)
				data.metadata = metadata
				record("metadata", err)
			}
		}(src)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return data, nil
}
