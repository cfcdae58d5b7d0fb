package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// Fixtures model the reference pool: two tranches with one snapshot per day
// at midnight UTC from 2024-11-02 through 2024-11-10.

const (
	testPoolID   = "1615768079"
	testDecimals = uint8(6)
)

var testCurrency = models.CurrencyInfo{Symbol: "USDC", Decimals: testDecimals}

func day(d int) time.Time {
	return time.Date(2024, time.November, d, 0, 0, 0, 0, time.UTC)
}

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func fixturePoolSnapshots() []models.PoolSnapshot {
	snapshots := make([]models.PoolSnapshot, 0, 9)
	for d := 2; d <= 10; d++ {
		snapshots = append(snapshots, models.PoolSnapshot{
			ID:           fmt.Sprintf("pool-snap-%d", d),
			PoolID:       testPoolID,
			Timestamp:    day(d),
			PoolCurrency: testCurrency,

			PortfolioValuation:       fixed.FromFloat(100, testDecimals),
			TotalReserve:             fixed.FromFloat(10, testDecimals),
			OffchainCashValue:        fixed.FromFloat(5, testDecimals),
			SumPoolFeesPendingAmount: fixed.FromFloat(1, testDecimals),
			NetAssetValue:            fixed.FromFloat(114, testDecimals),

			SumPrincipalRepaidAmountByPeriod:   fixed.FromFloat(2, testDecimals),
			SumInterestRepaidAmountByPeriod:    fixed.FromFloat(1, testDecimals),
			SumUnscheduledRepaidAmountByPeriod: fixed.FromFloat(0.1, testDecimals),
			SumBorrowedAmountByPeriod:          fixed.FromFloat(3, testDecimals),
			SumInvestedAmountByPeriod:          fixed.FromFloat(4, testDecimals),
			SumRedeemedAmountByPeriod:          fixed.FromFloat(2, testDecimals),
			SumRealizedProfitFifoByPeriod:      fixed.FromFloat(0.5, testDecimals),
			SumUnrealizedProfitByPeriod:        fixed.FromFloat(0.25, testDecimals),
			SumInterestAccruedByPeriod:         fixed.FromFloat(1.2, testDecimals),
			SumDebtWrittenOffByPeriod:          fixed.FromFloat(0.05, testDecimals),
		})
	}
	return snapshots
}

func fixtureTrancheSnapshots() []models.TrancheSnapshot {
	tranches := []struct {
		id     string
		price  float64
		supply float64
	}{
		{id: "senior", price: 1.00, supply: 1000},
		{id: "junior", price: 1.12, supply: 500},
	}

	snapshots := make([]models.TrancheSnapshot, 0, 18)
	for d := 2; d <= 10; d++ {
		for _, tr := range tranches {
			price := fixed.PriceFromFloat(tr.price)
			snapshots = append(snapshots, models.TrancheSnapshot{
				ID:           fmt.Sprintf("%s-snap-%d", tr.id, d),
				TrancheID:    tr.id,
				PoolID:       testPoolID,
				Timestamp:    day(d),
				PoolCurrency: testCurrency,
				TokenSupply:  fixed.FromFloat(tr.supply, testDecimals),
				TokenPrice:   &price,
			})
		}
	}
	return snapshots
}

func fixtureFeeSnapshots() []models.PoolFeeSnapshot {
	snapshots := make([]models.PoolFeeSnapshot, 0, 9)
	for d := 2; d <= 10; d++ {
		snapshots = append(snapshots, models.PoolFeeSnapshot{
			ID:           fmt.Sprintf("fee-snap-%d", d),
			FeeID:        "fee-1",
			PoolID:       testPoolID,
			FeeName:      "Management Fee",
			Timestamp:    day(d),
			PoolCurrency: testCurrency,

			PendingAmount:            fixed.FromFloat(1, testDecimals),
			SumPaidAmountByPeriod:    fixed.FromFloat(0.25, testDecimals),
			SumAccruedAmountByPeriod: fixed.FromFloat(0.3, testDecimals),
		})
	}
	return snapshots
}

func fixtureMetadata(class types.AssetClass) *models.PoolMetadata {
	return &models.PoolMetadata{
		PoolID:     testPoolID,
		Name:       "NS3 Pool",
		AssetClass: string(class),
		Currency:   testCurrency,
		Tranches: []models.TrancheDetails{
			{TrancheID: "senior", Name: "Senior"},
			{TrancheID: "junior", Name: "Junior"},
		},
	}
}

// mockQuerier serves fixtures, applying the timestamp range the way the real
// indexer does, and counts the sub-queries issued per source.
type mockQuerier struct {
	mu    sync.Mutex
	calls map[string]int

	poolSnapshots        []models.PoolSnapshot
	trancheSnapshots     []models.TrancheSnapshot
	poolFeeSnapshots     []models.PoolFeeSnapshot
	investorTransactions []models.InvestorTransaction
	assetTransactions    []models.AssetTransaction
	poolFeeTransactions  []models.PoolFeeTransaction
	metadata             *models.PoolMetadata

	// failSource makes the named source fail its query.
	failSource string
	// delay simulates indexer latency on every query.
	delay time.Duration
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{
		calls:            make(map[string]int),
		poolSnapshots:    fixturePoolSnapshots(),
		trancheSnapshots: fixtureTrancheSnapshots(),
		poolFeeSnapshots: fixtureFeeSnapshots(),
		metadata:         fixtureMetadata(types.AssetClassPublicCredit),
	}
}

func (m *mockQuerier) callCount(source string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[source]
}

func (m *mockQuerier) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.calls {
		total += n
	}
	return total
}

func (m *mockQuerier) enter(ctx context.Context, source string) error {
	m.mu.Lock()
	m.calls[source]++
	fail := m.failSource == source
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return fmt.Errorf("indexer unavailable")
	}
	return nil
}

func (m *mockQuerier) PoolSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolSnapshot, error) {
	if err := m.enter(ctx, "poolSnapshots"); err != nil {
		return nil, err
	}
	var out []models.PoolSnapshot
	for _, s := range m.poolSnapshots {
		if s.PoolID == f.PoolID && f.Timestamp.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockQuerier) TrancheSnapshots(ctx context.Context, f models.RawFilter) ([]models.TrancheSnapshot, error) {
	if err := m.enter(ctx, "trancheSnapshots"); err != nil {
		return nil, err
	}
	var out []models.TrancheSnapshot
	for _, s := range m.trancheSnapshots {
		if s.PoolID == f.PoolID && f.Timestamp.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockQuerier) PoolFeeSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolFeeSnapshot, error) {
	if err := m.enter(ctx, "poolFeeSnapshots"); err != nil {
		return nil, err
	}
	var out []models.PoolFeeSnapshot
	for _, s := range m.poolFeeSnapshots {
		if s.PoolID == f.PoolID && f.Timestamp.Contains(s.Timestamp) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockQuerier) InvestorTransactions(ctx context.Context, f models.RawFilter) ([]models.InvestorTransaction, error) {
	if err := m.enter(ctx, "investorTransactions"); err != nil {
		return nil, err
	}
	var out []models.InvestorTransaction
	for _, tx := range m.investorTransactions {
		if tx.PoolID == f.PoolID && f.Timestamp.Contains(tx.Timestamp) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockQuerier) AssetTransactions(ctx context.Context, f models.RawFilter) ([]models.AssetTransaction, error) {
	if err := m.enter(ctx, "assetTransactions"); err != nil {
		return nil, err
	}
	var out []models.AssetTransaction
	for _, tx := range m.assetTransactions {
		if tx.PoolID == f.PoolID && f.Timestamp.Contains(tx.Timestamp) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockQuerier) PoolFeeTransactions(ctx context.Context, f models.RawFilter) ([]models.PoolFeeTransaction, error) {
	if err := m.enter(ctx, "poolFeeTransactions"); err != nil {
		return nil, err
	}
	var out []models.PoolFeeTransaction
	for _, tx := range m.poolFeeTransactions {
		if tx.PoolID == f.PoolID && f.Timestamp.Contains(tx.Timestamp) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (m *mockQuerier) PoolMetadata(ctx context.Context, poolID string) (*models.PoolMetadata, error) {
	if err := m.enter(ctx, "metadata"); err != nil {
		return nil, err
	}
	return m.metadata, nil
}

// countingProcessor counts processor invocations for the cache tests.
type countingProcessor struct {
	Processor
	mu    sync.Mutex
	calls map[types.ReportType]int
}

func newCountingProcessor() *countingProcessor {
	return &countingProcessor{calls: make(map[types.ReportType]int)}
}

func (p *countingProcessor) count(typ types.ReportType) {
	p.mu.Lock()
	p.calls[typ]++
	p.mu.Unlock()
}

func (p *countingProcessor) callCount(typ types.ReportType) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[typ]
}

func (p *countingProcessor) BalanceSheet(data BalanceSheetData, f Filter) []BalanceSheetRow {
	p.count(types.ReportBalanceSheet)
	return p.Processor.BalanceSheet(data, f)
}

func (p *countingProcessor) Cashflow(data CashflowData, f Filter) []CashflowRow {
	p.count(types.ReportCashflow)
	return p.Processor.Cashflow(data, f)
}

func (p *countingProcessor) ProfitAndLoss(data CashflowData, f Filter) []ProfitAndLossRow {
	p.count(types.ReportProfitAndLoss)
	return p.Processor.ProfitAndLoss(data, f)
}

func (p *countingProcessor) InvestorTransactions(data InvestorTransactionsData, f Filter) []InvestorTransactionsRow {
	p.count(types.ReportInvestorTransactions)
	return p.Processor.InvestorTransactions(data, f)
}

func (p *countingProcessor) AssetTransactions(data AssetTransactionsData, f Filter) []AssetTransactionsRow {
	p.count(types.ReportAssetTransactions)
	return p.Processor.AssetTransactions(data, f)
}

func (p *countingProcessor) FeeTransactions(data FeeTransactionsData, f Filter) []FeeTransactionsRow {
	p.count(types.ReportFeeTransactions)
	return p.Processor.FeeTransactions(data, f)
}

func (p *countingProcessor) TokenPrice(data TokenPriceData, f Filter) []TokenPriceRow {
	p.count(types.ReportTokenPrice)
	return p.Processor.TokenPrice(data, f)
}
