package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pool-reporter/internal/logging"
	"github.com/pool-reporter/internal/report"
	"github.com/pool-reporter/internal/types"
)

// ReportResponse wraps the rows of one derived report.
type ReportResponse struct {
	PoolID     string           `json:"poolId"`
	ReportType types.ReportType `json:"reportType"`
	Rows       any              `json:"rows"`
}

// handleReport derives one report for the configured pool.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	poolID := vars["poolId"]
	reportType := types.ReportType(vars["reportType"])

	if poolID != s.poolID {
		respondError(w, http.StatusNotFound, ErrCodeNotFound,
			fmt.Sprintf("pool %s is not served by this instance", poolID), nil)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	rows, err := s.reports.Generate(r.Context(), reportType, filter)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).WithFields(map[string]interface{}{
			"reportType": reportType,
		}).Warn("Report derivation failed")
		status, code, message := mapReportError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, ReportResponse{
		PoolID:     poolID,
		ReportType: reportType,
		Rows:       rows,
	})
}

// parseFilter builds a report filter from query parameters. Timestamps
// accept RFC 3339 or bare dates.
func parseFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{
		GroupBy:         types.GroupBy(q.Get("groupBy")),
		Address:         q.Get("address"),
		Network:         q.Get("network"),
		TokenID:         q.Get("tokenId"),
		TransactionType: q.Get("transactionType"),
		AssetID:         q.Get("assetId"),
	}

	from, err := parseTimeParam(q.Get("from"))
	if err != nil {
		return report.Filter{}, fmt.Errorf("invalid from parameter: %w", err)
	}
	f.From = from

	to, err := parseTimeParam(q.Get("to"))
	if err != nil {
		return report.Filter{}, fmt.Errorf("invalid to parameter: %w", err)
	}
	f.To = to

	return f, nil
}

func parseTimeParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	t = t.UTC()
	return &t, nil
}
