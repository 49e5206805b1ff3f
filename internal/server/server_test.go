package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Port: 0, APIKey: "test-key"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.Stop()
		}
	})
	return s
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "127.0.0.1:54321"
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleStatistics(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid sample", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/statistics", `{"prices": [100, 200, 300]}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var stats map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
		assert.Equal(t, float64(3), stats["sample_size"])
		assert.Equal(t, 200.0, stats["mean"])
	})

	t.Run("empty sample fails validation", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/statistics", `{"prices": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/statistics", `{"prices": `)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlePercentile(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid query", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/percentile", `{"prices": [100, 200, 300, 400, 500], "percentile": 50}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 300.0, result["value"])
	})

	t.Run("percentile out of range", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/percentile", `{"prices": [100], "percentile": 150}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecommendation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/recommendation",
		`{"cost_price": 100, "competitor_prices": [200, 300, 400], "target_margin_percent": 30}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result["recommended_price"])
	assert.NotEmpty(t, result["reasoning"])
}

func TestHandleFees(t *testing.T) {
	s := newTestServer(t)

	t.Run("valid scenario", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/fees", `{"selling_price": 1000, "cost_of_goods": 400}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, 279.0, result["net_profit"])
	})

	t.Run("missing selling price", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/fees", `{"cost_of_goods": 400}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown listing type", func(t *testing.T) {
		rec := doRequest(s, http.MethodPost, "/fees", `{"selling_price": 1000, "listing_type": "Gold"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRunHistoryRequiresDatabase(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodGet, "/runs", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doRequest(s, http.MethodGet, "/runs/0b96dd70-0000-0000-0000-000000000000", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyzeValidation(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodPost, "/analyze", `{"reference_price": 100}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed")
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, http.MethodOptions, "/analyze", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Result().Header.Get("Access-Control-Allow-Origin"))
}
