package metricsx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/dds2/pkg/metricsx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RecordsPattern(t *testing.T) {
	m := metricsx.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tag/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := m.Middleware(mux)

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tag/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	expected := `
# HELP dds_http_requests_total HTTP requests by route pattern, method and status code.
# TYPE dds_http_requests_total counter
dds_http_requests_total{method="GET",path="GET /api/tag/{id}",status="404"} 3
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "dds_http_requests_total"))
}

func TestDomainCounters(t *testing.T) {
	m := metricsx.New()
	m.LedgerEntry("sms")
	m.LedgerEntry("sms")
	m.Uploaded("attachment", 128)
	m.TokenRefreshed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	require.Contains(t, body, `dds_ledger_entries_total{channel="sms"} 2`)
	require.Contains(t, body, `dds_upload_bytes_total{kind="attachment"} 128`)
	require.Contains(t, body, `dds_token_refreshes_total 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metricsx.Metrics
	require.NotPanics(t, func() {
		m.LedgerEntry("email")
		m.Uploaded("dataset", 1)
		m.TokenRefreshed()
	})
}
