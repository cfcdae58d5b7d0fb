package indexer

import (
	"fmt"
	"time"

	"github.com/pool-reporter/internal/fixed"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/types"
)

// The wire structs mirror the indexer's GraphQL payloads. All monetary
// fields arrive as scaled integer strings; post-processing parses them at
// the pool currency's decimals (prices always at 18).

type currencyNode struct {
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

func (n currencyNode) toModel() models.CurrencyInfo {
	return models.CurrencyInfo{Symbol: n.Symbol, Decimals: n.Decimals}
}

// amountParser converts wire strings into fixed-point values, remembering
// the first failure so node conversions stay flat instead of threading an
// error through every field.
type amountParser struct {
	err error
}

func (p *amountParser) currency(s string, decimals uint8) fixed.Currency {
	c, err := fixed.ParseCurrency(s, decimals)
	if err != nil && p.err == nil {
		p.err = err
	}
	return c
}

func (p *amountParser) price(s *string) *fixed.Price {
	if s == nil || *s == "" {
		return nil
	}
	v, err := fixed.ParsePrice(*s)
	if err != nil {
		if p.err == nil {
			p.err = err
		}
		return nil
	}
	return &v
}

type poolSnapshotNode struct {
	ID           string       `json:"id"`
	PoolID       string       `json:"poolId"`
	Timestamp    time.Time    `json:"timestamp"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	PortfolioValuation       string `json:"portfolioValuation"`
	TotalReserve             string `json:"totalReserve"`
	OffchainCashValue        string `json:"offchainCashValue"`
	SumPoolFeesPendingAmount string `json:"sumPoolFeesPendingAmount"`
	NetAssetValue            string `json:"netAssetValue"`

	SumPrincipalRepaidAmountByPeriod   string `json:"sumPrincipalRepaidAmountByPeriod"`
	SumInterestRepaidAmountByPeriod    string `json:"sumInterestRepaidAmountByPeriod"`
	SumUnscheduledRepaidAmountByPeriod string `json:"sumUnscheduledRepaidAmountByPeriod"`
	SumBorrowedAmountByPeriod          string `json:"sumBorrowedAmountByPeriod"`
	SumInvestedAmountByPeriod          string `json:"sumInvestedAmountByPeriod"`
	SumRedeemedAmountByPeriod          string `json:"sumRedeemedAmountByPeriod"`
	SumRealizedProfitFifoByPeriod      string `json:"sumRealizedProfitFifoByPeriod"`
	SumUnrealizedProfitByPeriod        string `json:"sumUnrealizedProfitByPeriod"`
	SumInterestAccruedByPeriod         string `json:"sumInterestAccruedByPeriod"`
	SumDebtWrittenOffByPeriod          string `json:"sumDebtWrittenOffByPeriod"`
}

func (n poolSnapshotNode) toModel() (models.PoolSnapshot, error) {
	p := &amountParser{}
	d := n.PoolCurrency.Decimals
	s := models.PoolSnapshot{
		ID:           n.ID,
		PoolID:       n.PoolID,
		Timestamp:    n.Timestamp.UTC(),
		PoolCurrency: n.PoolCurrency.toModel(),

		PortfolioValuation:       p.currency(n.PortfolioValuation, d),
		TotalReserve:             p.currency(n.TotalReserve, d),
		OffchainCashValue:        p.currency(n.OffchainCashValue, d),
		SumPoolFeesPendingAmount: p.currency(n.SumPoolFeesPendingAmount, d),
		NetAssetValue:            p.currency(n.NetAssetValue, d),

		SumPrincipalRepaidAmountByPeriod:   p.currency(n.SumPrincipalRepaidAmountByPeriod, d),
		SumInterestRepaidAmountByPeriod:    p.currency(n.SumInterestRepaidAmountByPeriod, d),
		SumUnscheduledRepaidAmountByPeriod: p.currency(n.SumUnscheduledRepaidAmountByPeriod, d),
		SumBorrowedAmountByPeriod:          p.currency(n.SumBorrowedAmountByPeriod, d),
		SumInvestedAmountByPeriod:          p.currency(n.SumInvestedAmountByPeriod, d),
		SumRedeemedAmountByPeriod:          p.currency(n.SumRedeemedAmountByPeriod, d),
		SumRealizedProfitFifoByPeriod:      p.currency(n.SumRealizedProfitFifoByPeriod, d),
		SumUnrealizedProfitByPeriod:        p.currency(n.SumUnrealizedProfitByPeriod, d),
		SumInterestAccruedByPeriod:         p.currency(n.SumInterestAccruedByPeriod, d),
		SumDebtWrittenOffByPeriod:          p.currency(n.SumDebtWrittenOffByPeriod, d),
	}
	if p.err != nil {
		return models.PoolSnapshot{}, fmt.Errorf("pool snapshot %s: %w", n.ID, p.err)
	}
	return s, nil
}

type trancheSnapshotNode struct {
	ID           string       `json:"id"`
	TrancheID    string       `json:"trancheId"`
	PoolID       string       `json:"poolId"`
	Timestamp    time.Time    `json:"timestamp"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	TokenSupply string  `json:"tokenSupply"`
	TokenPrice  *string `json:"tokenPrice"`

	OutstandingInvestOrders string `json:"outstandingInvestOrders"`
	OutstandingRedeemOrders string `json:"outstandingRedeemOrders"`
	FulfilledInvestOrders   string `json:"fulfilledInvestOrders"`
	FulfilledRedeemOrders   string `json:"fulfilledRedeemOrders"`
}

func (n trancheSnapshotNode) toModel() (models.TrancheSnapshot, error) {
	p := &amountParser{}
	d := n.PoolCurrency.Decimals
	s := models.TrancheSnapshot{
		ID:           n.ID,
		TrancheID:    n.TrancheID,
		PoolID:       n.PoolID,
		Timestamp:    n.Timestamp.UTC(),
		PoolCurrency: n.PoolCurrency.toModel(),

		TokenSupply: p.currency(n.TokenSupply, d),
		TokenPrice:  p.price(n.TokenPrice),

		OutstandingInvestOrders: p.currency(n.OutstandingInvestOrders, d),
		OutstandingRedeemOrders: p.currency(n.OutstandingRedeemOrders, d),
		FulfilledInvestOrders:   p.currency(n.FulfilledInvestOrders, d),
		FulfilledRedeemOrders:   p.currency(n.FulfilledRedeemOrders, d),
	}
	if p.err != nil {
		return models.TrancheSnapshot{}, fmt.Errorf("tranche snapshot %s: %w", n.ID, p.err)
	}
	return s, nil
}

type poolFeeSnapshotNode struct {
	ID           string       `json:"id"`
	FeeID        string       `json:"feeId"`
	PoolID       string       `json:"poolId"`
	FeeName      string       `json:"feeName"`
	Timestamp    time.Time    `json:"timestamp"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	PendingAmount            string `json:"pendingAmount"`
	SumPaidAmountByPeriod    string `json:"sumPaidAmountByPeriod"`
	SumAccruedAmountByPeriod string `json:"sumAccruedAmountByPeriod"`
}

func (n poolFeeSnapshotNode) toModel() (models.PoolFeeSnapshot, error) {
	p := &amountParser{}
	d := n.PoolCurrency.Decimals
	s := models.PoolFeeSnapshot{
		ID:           n.ID,
		FeeID:        n.FeeID,
		PoolID:       n.PoolID,
		FeeName:      n.FeeName,
		Timestamp:    n.Timestamp.UTC(),
		PoolCurrency: n.PoolCurrency.toModel(),

		PendingAmount:            p.currency(n.PendingAmount, d),
		SumPaidAmountByPeriod:    p.currency(n.SumPaidAmountByPeriod, d),
		SumAccruedAmountByPeriod: p.currency(n.SumAccruedAmountByPeriod, d),
	}
	if p.err != nil {
		return models.PoolFeeSnapshot{}, fmt.Errorf("pool fee snapshot %s: %w", n.ID, p.err)
	}
	return s, nil
}

type investorTransactionNode struct {
	ID           string       `json:"id"`
	PoolID       string       `json:"poolId"`
	TrancheID    string       `json:"trancheId"`
	EpochNumber  uint32       `json:"epochNumber"`
	Timestamp    time.Time    `json:"timestamp"`
	Type         string       `json:"type"`
	Account      string       `json:"account"`
	ChainID      string       `json:"chainId"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	CurrencyAmount string  `json:"currencyAmount"`
	TokenAmount    string  `json:"tokenAmount"`
	TokenPrice     *string `json:"tokenPrice"`
	Hash           string  `json:"hash"`
}

func (n investorTransactionNode) toModel() (models.InvestorTransaction, error) {
	p := &amountParser{}
	d := n.PoolCurrency.Decimals
	tx := models.InvestorTransaction{
		ID:          n.ID,
		PoolID:      n.PoolID,
		TrancheID:   n.TrancheID,
		EpochNumber: n.EpochNumber,
		Timestamp:   n.Timestamp.UTC(),
		Type:        types.InvestorTransactionType(n.Type),
		Account:     n.Account,
		ChainID:     n.ChainID,

		CurrencyAmount: p.currency(n.CurrencyAmount, d),
		TokenAmount:    p.currency(n.TokenAmount, d),
		TokenPrice:     p.price(n.TokenPrice),
		Hash:           n.Hash,
	}
	if p.err != nil {
		return models.InvestorTransaction{}, fmt.Errorf("investor transaction %s: %w", n.ID, p.err)
	}
	return tx, nil
}

type assetTransactionNode struct {
	ID           string       `json:"id"`
	PoolID       string       `json:"poolId"`
	AssetID      string       `json:"assetId"`
	Timestamp    time.Time    `json:"timestamp"`
	Type         string       `json:"type"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	PrincipalAmount string `json:"principalAmount"`
	InterestAmount  string `json:"interestAmount"`
	Hash            string `json:"hash"`
}

func (n assetTransactionNode) toModel() (models.AssetTransaction, error) {
	p := &amountParser{}
	d := n.PoolCurrency.Decimals
	tx := models.AssetTransaction{
		ID:        n.ID,
		PoolID:    n.PoolID,
		AssetID:   n.AssetID,
		Timestamp: n.Timestamp.UTC(),
		Type:      types.AssetTransactionType(n.Type),

		PrincipalAmount: p.currency(n.PrincipalAmount, d),
		InterestAmount:  p.currency(n.InterestAmount, d),
		Hash:            n.Hash,
	}
	if p.err != nil {
		return models.AssetTransaction{}, fmt.Errorf("asset transaction %s: %w", n.ID, p.err)
	}
	return tx, nil
}

type poolFeeTransactionNode struct {
	ID           string       `json:"id"`
	FeeID        string       `json:"feeId"`
	PoolID       string       `json:"poolId"`
	EpochNumber  uint32       `json:"epochNumber"`
	Timestamp    time.Time    `json:"timestamp"`
	Type         string       `json:"type"`
	PoolCurrency currencyNode `json:"poolCurrency"`

	Amount string `json:"amount"`
}

func (n poolFeeTransactionNode) toModel() (models.PoolFeeTransaction, error) {
	p := &amountParser{}
	tx := models.PoolFeeTransaction{
		ID:          n.ID,
		FeeID:       n.FeeID,
		PoolID:      n.PoolID,
		EpochNumber: n.EpochNumber,
		Timestamp:   n.Timestamp.UTC(),
		Type:        types.FeeTransactionType(n.Type),

		Amount: p.currency(n.Amount, n.PoolCurrency.Decimals),
	}
	if p.err != nil {
		return models.PoolFeeTransaction{}, fmt.Errorf("pool fee transaction %s: %w", n.ID, p.err)
	}
	return tx, nil
}

type poolNode struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	AssetClass string       `json:"assetClass"`
	Currency   currencyNode `json:"currency"`
	Tranches   struct {
		Nodes []struct {
			TrancheID string `json:"trancheId"`
			Name      string `json:"name"`
		} `json:"nodes"`
	} `json:"tranches"`
}

func (n poolNode) toModel() *models.PoolMetadata {
	m := &models.PoolMetadata{
		PoolID:     n.ID,
		Name:       n.Name,
		AssetClass: n.AssetClass,
		Currency:   n.Currency.toModel(),
	}
	for _, t := range n.Tranches.Nodes {
		m.Tranches = append(m.Tranches, models.TrancheDetails{TrancheID: t.TrancheID, Name: t.Name})
	}
	return m
}

// connection is the nodes envelope every list query returns.
type connection[T any] struct {
	Nodes []T `json:"nodes"`
}
