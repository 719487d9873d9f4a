package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/glbter/stock-portfolio/entities"
	"github.com/glbter/stock-portfolio/history"
	"github.com/glbter/stock-portfolio/portfolio"
	"github.com/glbter/stock-portfolio/strategy"
)

type stubQuotes struct {
	prices map[entities.StockTicker]float64
	panic  bool
}

func (s stubQuotes) Quotes(_ context.Context, tickers []entities.StockTicker) ([]*entities.Quote, error) {
	if s.panic {
		panic("provider exploded")
	}

	res := make([]*entities.Quote, len(tickers))
	for i, t := range tickers {
		if p, ok := s.prices[t]; ok {
			res[i] = &entities.Quote{Symbol: t, Price: p}
		}
	}
	return res, nil
}

type halfSource struct{}

func (halfSource) Float64() float64 { return 0.5 }

func newTestRouter(t *testing.T, q portfolio.QuoteClient) http.Handler {
	t.Helper()

	clock := func() time.Time { return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC) }
	svc := portfolio.NewService(strategy.DefaultCatalog(), q, history.NewStore(halfSource{}), zap.NewNop(), portfolio.WithClock(clock))

	return NewRouter(PortfolioHandler{Logger: zap.NewNop(), Service: svc}, []string{"http://localhost:3000"})
}

func indexQuotes() stubQuotes {
	return stubQuotes{prices: map[entities.StockTicker]float64{"VOO": 400, "VTI": 150, "ILTB": 90}}
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(t, indexQuotes()), http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestStrategies(t *testing.T) {
	rec := do(t, newTestRouter(t, indexQuotes()), http.MethodGet, "/api/strategies", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"strategies":["Ethical Investing","Growth Investing","Index Investing","Quality Investing","Value Investing"]}`, rec.Body.String())
}

func TestGeneratePortfolio(t *testing.T) {
	rec := do(t, newTestRouter(t, indexQuotes()), http.MethodPost, "/api/portfolio", `{"strategies":["Index Investing"],"amount":10000}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[entities.PortfolioResp](t, rec)
	assert.Equal(t, 10000.0, resp.Input.Amount)
	assert.Equal(t, []entities.StrategyName{"Index Investing"}, resp.Input.Strategies)
	assert.Equal(t, []float64{5000, 3000, 2000}, resp.Allocation.Amounts)

	require.Len(t, resp.Results, 1)
	stocks := resp.Results[0].Stocks
	require.Len(t, stocks, 3)
	assert.Equal(t, entities.StockTicker("VOO"), stocks[0].Symbol)
	assert.Equal(t, 12.5, stocks[0].Shares)
	assert.Equal(t, 20.0, stocks[1].Shares)
	assert.InDelta(t, 22.222, stocks[2].Shares, 0.001)
	assert.InDelta(t, 10000, resp.Results[0].StrategyValue, 1e-9)

	assert.Equal(t, "10000_Index Investing", resp.PortfolioID)
	require.Len(t, resp.History, 5)
	assert.Equal(t, "2024-03-15", resp.History[4].Date)
	assert.Equal(t, resp.TotalValue, resp.History[4].Value)
}

func TestGeneratePortfolio_ResponseShape(t *testing.T) {
	rec := do(t, newTestRouter(t, indexQuotes()), http.MethodPost, "/api/portfolio", `{"strategies":["Index Investing"],"amount":10000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	raw := decode[map[string]any](t, rec)
	for _, key := range []string{"input", "allocation", "results", "portfolio_id", "total_value", "history"} {
		assert.Contains(t, raw, key)
	}

	stock := raw["results"].([]any)[0].(map[string]any)["stocks"].([]any)[0].(map[string]any)
	for _, key := range []string{"symbol", "price", "shares", "allocated_amount", "current_value"} {
		assert.Contains(t, stock, key)
	}
}

func TestGeneratePortfolio_ValidationErrors(t *testing.T) {
	h := newTestRouter(t, indexQuotes())

	tests := []struct {
		name string
		body string
		msg  string
	}{
		{"invalid json", `{`, "Invalid JSON data"},
		{"missing fields", `{"amount":10000}`, "Strategies and amount are required"},
		{"empty list", `{"strategies":[],"amount":10000}`, "Strategies and amount are required"},
		{"low amount", `{"strategies":["Index Investing"],"amount":4999}`, "Amount must be a number at least 5000"},
		{"too many", `{"strategies":["Index Investing","Value Investing","Growth Investing"],"amount":10000}`, "Strategies must be a list with at most 2 items"},
		{"unknown", `{"strategies":["Crypto Investing"],"amount":10000}`, "Invalid strategy: Crypto Investing"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/portfolio", tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.msg, decode[errorResp](t, rec).Error)
		})
	}
}

func TestGeneratePortfolio_ZeroPriceIsInternalError(t *testing.T) {
	q := stubQuotes{prices: map[entities.StockTicker]float64{"VOO": 0, "VTI": 150, "ILTB": 90}}
	rec := do(t, newTestRouter(t, q), http.MethodPost, "/api/portfolio", `{"strategies":["Index Investing"],"amount":10000}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An internal server error occurred"}`, rec.Body.String())
}

func TestGeneratePortfolio_PanicIsInternalError(t *testing.T) {
	rec := do(t, newTestRouter(t, stubQuotes{panic: true}), http.MethodPost, "/api/portfolio", `{"strategies":["Index Investing"],"amount":10000}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An internal server error occurred"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "exploded")
}

func TestHistory(t *testing.T) {
	h := newTestRouter(t, indexQuotes())

	rec := do(t, h, http.MethodGet, "/api/portfolio/history/unknown-id", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/portfolio", `{"strategies":["Index Investing"],"amount":10000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	generated := decode[entities.PortfolioResp](t, rec)

	rec = do(t, h, http.MethodGet, "/api/portfolio/history/"+url.PathEscape(generated.PortfolioID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	got := decode[struct {
		History []entities.HistoryPoint `json:"history"`
	}](t, rec)
	assert.Equal(t, generated.History, got.History)
}

func TestCORS(t *testing.T) {
	h := newTestRouter(t, indexQuotes())

	req := httptest.NewRequest(http.MethodOptions, "/api/portfolio", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNotFound(t *testing.T) {
	rec := do(t, newTestRouter(t, indexQuotes()), http.MethodGet, "/api/unknown", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
