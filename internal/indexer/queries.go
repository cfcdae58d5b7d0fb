package indexer

// GraphQL documents for the raw sub-queries. Every list query is scoped to
// one pool and an optional timestamp window with an exclusive lower bound
// and an inclusive upper bound, ordered ascending so downstream bucketing
// receives chronological records.

const poolSnapshotsQuery = `
query poolSnapshots($poolId: String!, $timestamp: TimestampFilter) {
  poolSnapshots(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      poolId
      timestamp
      poolCurrency { symbol decimals }
      portfolioValuation
      totalReserve
      offchainCashValue
      sumPoolFeesPendingAmount
      netAssetValue
      sumPrincipalRepaidAmountByPeriod
      sumInterestRepaidAmountByPeriod
      sumUnscheduledRepaidAmountByPeriod
      sumBorrowedAmountByPeriod
      sumInvestedAmountByPeriod
      sumRedeemedAmountByPeriod
      sumRealizedProfitFifoByPeriod
      sumUnrealizedProfitByPeriod
      sumInterestAccruedByPeriod
      sumDebtWrittenOffByPeriod
    }
  }
}`

const trancheSnapshotsQuery = `
query trancheSnapshots($poolId: String!, $timestamp: TimestampFilter) {
  trancheSnapshots(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      trancheId
      poolId
      timestamp
      poolCurrency { symbol decimals }
      tokenSupply
      tokenPrice
      outstandingInvestOrders
      outstandingRedeemOrders
      fulfilledInvestOrders
      fulfilledRedeemOrders
    }
  }
}`

const poolFeeSnapshotsQuery = `
query poolFeeSnapshots($poolId: String!, $timestamp: TimestampFilter) {
  poolFeeSnapshots(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      feeId
      poolId
      feeName
      timestamp
      poolCurrency { symbol decimals }
      pendingAmount
      sumPaidAmountByPeriod
      sumAccruedAmountByPeriod
    }
  }
}`

const investorTransactionsQuery = `
query investorTransactions($poolId: String!, $timestamp: TimestampFilter) {
  investorTransactions(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      poolId
      trancheId
      epochNumber
      timestamp
      type
      account
      chainId
      poolCurrency { symbol decimals }
      currencyAmount
      tokenAmount
      tokenPrice
      hash
    }
  }
}`

const assetTransactionsQuery = `
query assetTransactions($poolId: String!, $timestamp: TimestampFilter) {
  assetTransactions(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      poolId
      assetId
      timestamp
      type
      poolCurrency { symbol decimals }
      principalAmount
      interestAmount
      hash
    }
  }
}`

const poolFeeTransactionsQuery = `
query poolFeeTransactions($poolId: String!, $timestamp: TimestampFilter) {
  poolFeeTransactions(
    filter: { poolId: { equalTo: $poolId }, timestamp: $timestamp }
    orderBy: TIMESTAMP_ASC
  ) {
    nodes {
      id
      feeId
      poolId
      epochNumber
      timestamp
      type
      poolCurrency { symbol decimals }
      amount
    }
  }
}`

const poolMetadataQuery = `
query poolMetadata($poolId: String!) {
  pool(id: $poolId) {
    id
    name
    assetClass
    currency { symbol decimals }
    tranches {
      nodes { trancheId name }
    }
  }
}`
