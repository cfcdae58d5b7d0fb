package api

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pool-reporter/internal/config"
	"github.com/pool-reporter/internal/report"
	"github.com/pool-reporter/internal/types"
)

const testPoolID = "1615768079"

// mockGenerator records the last request and returns canned rows or an error.
type mockGenerator struct {
	lastType   types.ReportType
	lastFilter report.Filter
	rows       any
	err        error
}

func (m *mockGenerator) Generate(ctx context.Context, typ types.ReportType, f report.Filter) (any, error) {
	m.lastType = typ
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return m.rows, nil
}

func newTestServer(gen *mockGenerator, rps int) *Server {
	cfg := &config.ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   5 * time.Second,
		IdleTimeout:    5 * time.Second,
		RequestsPerSec: rps,
	}
	return NewServer(cfg, testPoolID, gen, nil)
}

func doRequest(s *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&mockGenerator{}, 100)

	w := doRequest(s, "GET", "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReportHappyPath(t *testing.T) {
	gen := &mockGenerator{rows: []map[string]string{{"timestamp": "2024-11-03T00:00:00Z"}}}
	s := newTestServer(gen, 100)

	w := doRequest(s, "GET", "/v1/pools/"+testPoolID+"/reports/balanceSheet")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.ReportBalanceSheet, gen.lastType)

	var resp struct {
		PoolID     string           `json:"poolId"`
		ReportType string           `json:"reportType"`
		Rows       []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, testPoolID, resp.PoolID)
	assert.Equal(t, "balanceSheet", resp.ReportType)
	require.Len(t, resp.Rows, 1)
}

func TestReportFilterParsing(t *testing.T) {
	gen := &mockGenerator{rows: []string{}}
	s := newTestServer(gen, 100)

	w := doRequest(s, "GET", "/v1/pools/"+testPoolID+"/reports/investorTransactions"+
		"?from=2024-11-02&to=2024-11-06T22:11:29Z&groupBy=month"+
		"&address=0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B&network=1&tokenId=senior")
	require.Equal(t, http.StatusOK, w.Code)

	f := gen.lastFilter
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2024, 11, 6, 22, 11, 29, 0, time.UTC), *f.To)
	assert.Equal(t, types.GroupByMonth, f.GroupBy)
	assert.Equal(t, "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B", f.Address)
	assert.Equal(t, "1", f.Network)
	assert.Equal(t, "senior", f.TokenID)
}

func TestReportInvalidTimeParam(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestServer(gen, 100)

	w := doRequest(s, "GET", "/v1/pools/"+testPoolID+"/reports/cashflow?from=yesterday")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ErrCodeInvalidInput, resp.Error.Code)
}

func TestReportUnknownPool(t *testing.T) {
	gen := &mockGenerator{}
	s := newTestServer(gen, 100)

	w := doRequest(s, "GET", "/v1/pools/999/reports/cashflow")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid filter", report.ErrInvalidFilter, http.StatusBadRequest, ErrCodeInvalidInput},
		{"unsupported type", report.ErrUnsupportedReportType, http.StatusNotFound, ErrCodeNotFound},
		{"source failure", report.ErrSourceQuery, http.StatusBadGateway, ErrCodeUpstreamError},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&mockGenerator{err: tt.err}, 100)

			w := doRequest(s, "GET", "/v1/pools/"+testPoolID+"/reports/balanceSheet")
			assert.Equal(t, tt.wantStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestRateLimitExceeded(t *testing.T) {
	s := newTestServer(&mockGenerator{rows: []string{}}, 1)

	var limited bool
	for i := 0; i < 15; i++ {
		req := httptest.NewRequest("GET", "/v1/pools/"+testPoolID+"/reports/cashflow", nil)
		req.Header.Set("X-Client-ID", "client-1")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, ErrCodeRateLimitExceeded, resp.Error.Code)
			break
		}
	}
	assert.True(t, limited, "expected a 429 after exhausting the burst")
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(&mockGenerator{}, 100)

	w := doRequest(s, "GET", "/health")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestGzipCompression(t *testing.T) {
	s := newTestServer(&mockGenerator{}, 100)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	gz, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	defer gz.Close()

	body, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Contains(t, string(body), "healthy")
}

func TestCORSHeaders(t *testing.T) {
	s := newTestServer(&mockGenerator{}, 100)

	w := doRequest(s, "GET", "/health")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
