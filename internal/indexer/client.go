// Package indexer implements the raw query layer over the pool indexing
// service's GraphQL API. One Client serves all sub-queries the report engine
// needs, with rate limiting, retries with exponential backoff, a circuit
// breaker, and an optional Redis cache for raw response bodies.
package indexer

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pool-reporter/internal/circuitbreaker"
	"github.com/pool-reporter/internal/config"
	"github.com/pool-reporter/internal/logging"
	"github.com/pool-reporter/internal/models"
	"github.com/pool-reporter/internal/retry"
)

// ErrGraphQL marks an error returned by the indexer inside a well-formed
// GraphQL response. These are not retried.
var ErrGraphQL = errors.New("indexer graphql error")

// Client queries the indexing service. Safe for concurrent use.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	retry   *retry.Config
	breaker *circuitbreaker.CircuitBreaker
	logger  *logging.Logger

	cache    RawCache
	cacheTTL time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithRawCache caches raw response bodies in the given store.
func WithRawCache(cache RawCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithLogger overrides the global logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(cfg *retry.Config) Option {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates an indexer client from configuration.
func NewClient(cfg config.IndexerConfig, opts ...Option) *Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.MaxRetries

	c := &Client{
		url:     cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		retry:   retryCfg,
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig("indexer"), nil),
		logger:  logging.GetGlobalLogger().WithField("component", "indexer"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// graphqlRequest is the POST body of every query.
type graphqlRequest struct {
	OperationName string `json:"operationName"`
	Query         string `json:"query"`
	Variables     any    `json:"variables"`
}

// graphqlResponse is the standard GraphQL envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// listVariables are the variables of every list query.
type listVariables struct {
	PoolID    string                 `json:"poolId"`
	Timestamp *models.TimestampRange `json:"timestamp,omitempty"`
}

func listVars(f models.RawFilter) listVariables {
	v := listVariables{PoolID: f.PoolID}
	if f.Timestamp.GreaterThan != nil || f.Timestamp.LessThanOrEqualTo != nil {
		ts := f.Timestamp
		v.Timestamp = &ts
	}
	return v
}

// query runs one GraphQL operation and decodes the data envelope into out.
// The HTTP exchange is wrapped in rate limiting, retries and the circuit
// breaker; GraphQL-level errors are surfaced after a successful exchange and
// never retried.
func (c *Client) query(ctx context.Context, operation, document string, variables any, out any) error {
	payload, err := json.Marshal(graphqlRequest{
		OperationName: operation,
		Query:         document,
		Variables:     variables,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	key := cacheKey(operation, payload)
	if c.cache != nil {
		if body, err := c.cache.Get(ctx, key); err == nil {
			return decodeEnvelope(operation, body, out)
		} else if !errors.Is(err, ErrCacheMiss) {
			c.logger.WithError(err).WithField("operation", operation).Warn("Raw cache read failed")
		}
	}

	var body []byte
	err = retry.Do(ctx, c.retry, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		return c.breaker.Execute(ctx, func() error {
			b, err := c.post(ctx, payload)
			if err != nil {
				return err
			}
			body = b
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if err := decodeEnvelope(operation, body, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("operation", operation).Warn("Raw cache write failed")
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("indexer returned status %d", resp.StatusCode)
	}
	return body, nil
}

func decodeEnvelope(operation string, body []byte, out any) error {
	var envelope graphqlResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("%w: %s: %s", ErrGraphQL, operation, strings.Join(messages, "; "))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", operation, err)
	}
	return nil
}

// cacheKey fingerprints the full request payload so distinct variables never
// collide.
func cacheKey(operation string, payload []byte) string {
	sum := sha256.Sum256(payload)
	return "indexer:raw:" + operation + ":" + hex.EncodeToString(sum[:])
}

// PoolSnapshots returns the pool's daily snapshots within the range.
func (c *Client) PoolSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolSnapshot, error) {
	var data struct {
		PoolSnapshots connection[poolSnapshotNode] `json:"poolSnapshots"`
	}
	if err := c.query(ctx, "poolSnapshots", poolSnapshotsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.PoolSnapshot, 0, len(data.PoolSnapshots.Nodes))
	for _, n := range data.PoolSnapshots.Nodes {
		s, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// TrancheSnapshots returns the pool's daily tranche snapshots within the range.
func (c *Client) TrancheSnapshots(ctx context.Context, f models.RawFilter) ([]models.TrancheSnapshot, error) {
	var data struct {
		TrancheSnapshots connection[trancheSnapshotNode] `json:"trancheSnapshots"`
	}
	if err := c.query(ctx, "trancheSnapshots", trancheSnapshotsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.TrancheSnapshot, 0, len(data.TrancheSnapshots.Nodes))
	for _, n := range data.TrancheSnapshots.Nodes {
		s, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// PoolFeeSnapshots returns the pool's daily fee snapshots within the range.
func (c *Client) PoolFeeSnapshots(ctx context.Context, f models.RawFilter) ([]models.PoolFeeSnapshot, error) {
	var data struct {
		PoolFeeSnapshots connection[poolFeeSnapshotNode] `json:"poolFeeSnapshots"`
	}
	if err := c.query(ctx, "poolFeeSnapshots", poolFeeSnapshotsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.PoolFeeSnapshot, 0, len(data.PoolFeeSnapshots.Nodes))
	for _, n := range data.PoolFeeSnapshots.Nodes {
		s, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// InvestorTransactions returns investor transactions within the range.
func (c *Client) InvestorTransactions(ctx context.Context, f models.RawFilter) ([]models.InvestorTransaction, error) {
	var data struct {
		InvestorTransactions connection[investorTransactionNode] `json:"investorTransactions"`
	}
	if err := c.query(ctx, "investorTransactions", investorTransactionsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.InvestorTransaction, 0, len(data.InvestorTransactions.Nodes))
	for _, n := range data.InvestorTransactions.Nodes {
		tx, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// AssetTransactions returns asset transactions within the range.
func (c *Client) AssetTransactions(ctx context.Context, f models.RawFilter) ([]models.AssetTransaction, error) {
	var data struct {
		AssetTransactions connection[assetTransactionNode] `json:"assetTransactions"`
	}
	if err := c.query(ctx, "assetTransactions", assetTransactionsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.AssetTransaction, 0, len(data.AssetTransactions.Nodes))
	for _, n := range data.AssetTransactions.Nodes {
		tx, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// PoolFeeTransactions returns fee transactions within the range.
func (c *Client) PoolFeeTransactions(ctx context.Context, f models.RawFilter) ([]models.PoolFeeTransaction, error) {
	var data struct {
		PoolFeeTransactions connection[poolFeeTransactionNode] `json:"poolFeeTransactions"`
	}
	if err := c.query(ctx, "poolFeeTransactions", poolFeeTransactionsQuery, listVars(f), &data); err != nil {
		return nil, err
	}
	out := make([]models.PoolFeeTransaction, 0, len(data.PoolFeeTransactions.Nodes))
	for _, n := range data.PoolFeeTransactions.Nodes {
		tx, err := n.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// PoolMetadata returns the pool's descriptive metadata.
func (c *Client) PoolMetadata(ctx context.Context, poolID string) (*models.PoolMetadata, error) {
	var data struct {
		Pool *poolNode `json:"pool"`
	}
	vars := struct {
		PoolID string `json:"poolId"`
	}{PoolID: poolID}
	if err := c.query(ctx, "poolMetadata", poolMetadataQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Pool == nil {
		return nil, fmt.Errorf("pool %s not found", poolID)
	}
	return data.Pool.toModel(), nil
}
