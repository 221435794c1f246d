package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/history"
	testingpkg "github.com/aristath/qualitycore/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHandler(t *testing.T, tracked ...string) (chi.Router, *history.Store) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	store := history.NewStore(testingpkg.NewMemoryDB(t, "history"), logger)
	router := chi.NewRouter()
	router.Route("/api", NewHandler(store, tracked, logger).RegisterRoutes)
	return router, store
}

func do(t *testing.T, router chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotNil(t, resp["metadata"])
	}
	return w, resp
}

func TestHandleUpsertPrices(t *testing.T) {
	router, store := setupTestHandler(t)

	w, resp := do(t, router, http.MethodPost, "/api/history/prices", `{"prices": [
		{"date": "2024-01-02", "ticker": "AAPL", "currency": "USD", "close": 185.5, "volume": 1000},
		{"date": "2024-01-03", "ticker": "AAPL", "currency": "USD", "close": 184.2, "dividend": 0.24}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, float64(2), resp["data"].(map[string]interface{})["upserted"])

	prices, err := store.GetPrices(context.Background(), history.PriceQuery{Tickers: []string{"AAPL"}})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-01-02", prices[0].Date.Format(domain.DateLayout))
	assert.Equal(t, domain.CurrencyUSD, prices[0].Currency)
	assert.InDelta(t, 0.24, prices[1].Dividend, 1e-9)
}

func TestHandleUpsertReports(t *testing.T) {
	router, store := setupTestHandler(t)

	w, _ := do(t, router, http.MethodPost, "/api/history/reports", `{"reports": [
		{"report_date": "2023-12-31", "ticker": "AAPL", "period_type": "annual", "currency": "USD",
		 "revenue": 500, "diluted_eps": 4}
	]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reports, err := store.GetReports(context.Background(), domain.PeriodAnnual, []string{"AAPL"})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "2023-12-31", reports[0].ReportDate.Format(domain.DateLayout))
	require.NotNil(t, reports[0].Revenue)
	assert.InDelta(t, 500, *reports[0].Revenue, 1e-9)
	assert.Nil(t, reports[0].NetIncome)
}

func TestHandleUpsert_RejectsInvalidBodies(t *testing.T) {
	router, _ := setupTestHandler(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"not json", "/api/history/prices", `{"prices": [`},
		{"empty prices", "/api/history/prices", `{"prices": []}`},
		{"bad date", "/api/history/prices", `{"prices": [{"date": "02/01/2024", "ticker": "A", "currency": "USD", "close": 1}]}`},
		{"missing ticker", "/api/history/prices", `{"prices": [{"date": "2024-01-02", "currency": "USD", "close": 1}]}`},
		{"zero close", "/api/history/prices", `{"prices": [{"date": "2024-01-02", "ticker": "A", "currency": "USD", "close": 0}]}`},
		{"bad period", "/api/history/reports", `{"reports": [{"report_date": "2023-12-31", "ticker": "A", "period_type": "monthly", "currency": "USD"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestHandleGetPrices(t *testing.T) {
	router, store := setupTestHandler(t)
	require.NoError(t, store.UpsertPrices(context.Background(), testingpkg.NewPriceFixtures()))

	w, resp := do(t, router, http.MethodGet, "/api/history/prices/AAPL?from=2023-01-02&to=2023-01-06", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(5), resp["data"].(map[string]interface{})["count"])

	w, _ = do(t, router, http.MethodGet, "/api/history/prices/AAPL?from=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetTickers(t *testing.T) {
	router, store := setupTestHandler(t, "AAPL", "MSFT")
	require.NoError(t, store.UpsertPrices(context.Background(), testingpkg.NewPriceFixtures()))

	w, resp := do(t, router, http.MethodGet, "/api/history/tickers", "")
	require.Equal(t, http.StatusOK, w.Code)

	d := resp["data"].(map[string]interface{})
	assert.Equal(t, []interface{}{"AAPL", "ASML", "EURUSD=X"}, d["tickers"])
	assert.Equal(t, []interface{}{"MSFT"}, d["missing"])
}
