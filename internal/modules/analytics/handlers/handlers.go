// Package handlers exposes the analytics engines and portfolio reporting over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/metrics"
	"github.com/aristath/qualitycore/internal/modules/performance"
	"github.com/aristath/qualitycore/internal/modules/snapshots"
	"github.com/aristath/qualitycore/internal/modules/ttm"
	"github.com/aristath/qualitycore/internal/services"
	"github.com/aristath/qualitycore/internal/utils"
	"github.com/rs/zerolog"
)

// defaultGrowthMetrics are reported when the metrics parameter is absent
var defaultGrowthMetrics = []domain.Field{domain.FieldRevenue, domain.FieldNetIncome}

// Analytics is the service surface the handlers need
type Analytics interface {
	Portfolios() []domain.Portfolio
	Portfolio(name string) (*domain.Portfolio, error)
	Valuation(ctx context.Context, ticker string, years int) ([]metrics.ValuationRecord, error)
	Fundamentals(ctx context.Context, ticker string, period domain.PeriodType) ([]metrics.FundamentalRecord, error)
	TTM(ctx context.Context, ticker string) ([]ttm.Record, error)
	Growth(ctx context.Context, ticker string, fields []domain.Field, period int) ([]metrics.GrowthRecord, error)
	Convert(ctx context.Context, amount float64, date time.Time, currency domain.Currency) (float64, error)
	Currencies(ctx context.Context) ([]domain.Currency, error)
	PortfolioHistory(ctx context.Context, name string) ([]performance.Record, error)
	PortfolioKPIs(ctx context.Context, name string) (performance.KPIs, error)
}

// SnapshotReader reads stored KPI snapshots
type SnapshotReader interface {
	Latest(ctx context.Context, portfolio string) (*snapshots.Snapshot, error)
	List(ctx context.Context, portfolio string, limit int) ([]snapshots.Snapshot, error)
}

// portfolioSummary is the list view of a configured portfolio
type portfolioSummary struct {
	Name        string               `json:"name"`
	Label       string               `json:"label"`
	Description string               `json:"description,omitempty"`
	Type        domain.PortfolioType `json:"type"`
	StartDate   string               `json:"start_date,omitempty"`
	Tickers     []string             `json:"tickers"`
}

// Handler handles analytics HTTP requests
type Handler struct {
	analytics Analytics
	snapshots SnapshotReader
	log       zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(analytics Analytics, snapshotReader SnapshotReader, log zerolog.Logger) *Handler {
	return &Handler{
		analytics: analytics,
		snapshots: snapshotReader,
		log:       log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleGetValuation handles GET /api/analytics/valuation/{ticker}
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request, ticker string) {
	years := 0
	if s := r.URL.Query().Get("years"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed <= 0 {
			http.Error(w, "years must be a positive integer", http.StatusBadRequest)
			return
		}
		years = parsed
	}

	rows, err := h.analytics.Valuation(r.Context(), ticker, years)
	if err != nil {
		h.writeError(w, err, "Failed to calculate valuation", ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"ticker":    ticker,
		"valuation": rows,
		"count":     len(rows),
	}))
}

// HandleGetFundamentals handles GET /api/analytics/fundamentals/{ticker}
func (h *Handler) HandleGetFundamentals(w http.ResponseWriter, r *http.Request, ticker string) {
	period := domain.PeriodAnnual
	switch p := r.URL.Query().Get("period"); p {
	case "", string(domain.PeriodAnnual):
	case string(domain.PeriodQuarterly):
		period = domain.PeriodQuarterly
	default:
		http.Error(w, "period must be annual or quarterly", http.StatusBadRequest)
		return
	}

	rows, err := h.analytics.Fundamentals(r.Context(), ticker, period)
	if err != nil {
		h.writeError(w, err, "Failed to calculate fundamentals", ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"ticker":       ticker,
		"period":       period,
		"fundamentals": rows,
		"count":        len(rows),
	}))
}

// HandleGetTTM handles GET /api/analytics/ttm/{ticker}
func (h *Handler) HandleGetTTM(w http.ResponseWriter, r *http.Request, ticker string) {
	rows, err := h.analytics.TTM(r.Context(), ticker)
	if err != nil {
		h.writeError(w, err, "Failed to calculate TTM history", ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"ticker": ticker,
		"ttm":    rows,
		"count":  len(rows),
	}))
}

// HandleGetGrowth handles GET /api/analytics/growth/{ticker}
func (h *Handler) HandleGetGrowth(w http.ResponseWriter, r *http.Request, ticker string) {
	query := r.URL.Query()

	fields := defaultGrowthMetrics
	if names := utils.Unique(utils.ParseCSV(query.Get("metrics"))); len(names) > 0 {
		fields = make([]domain.Field, 0, len(names))
		for _, name := range names {
			f, err := domain.ParseField(name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			fields = append(fields, f)
		}
	}

	period := 1
	if s := query.Get("period"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed < 1 {
			http.Error(w, "period must be a positive integer", http.StatusBadRequest)
			return
		}
		period = parsed
	}

	rows, err := h.analytics.Growth(r.Context(), ticker, fields, period)
	if err != nil {
		h.writeError(w, err, "Failed to calculate growth", ticker)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"ticker":  ticker,
		"metrics": fields,
		"period":  period,
		"growth":  rows,
		"count":   len(rows),
	}))
}

// HandleConvert handles GET /api/analytics/fx/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	amount, err := strconv.ParseFloat(query.Get("amount"), 64)
	if err != nil {
		http.Error(w, "amount must be a number", http.StatusBadRequest)
		return
	}
	date, err := time.Parse(domain.DateLayout, query.Get("date"))
	if err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	currency := domain.Currency(strings.TrimSpace(query.Get("currency")))
	if currency == "" {
		http.Error(w, "currency is required", http.StatusBadRequest)
		return
	}

	converted, err := h.analytics.Convert(r.Context(), amount, date, currency)
	if err != nil {
		h.writeError(w, err, "Failed to convert amount", string(currency))
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"amount":    amount,
		"currency":  currency,
		"date":      date.Format(domain.DateLayout),
		"converted": converted,
	}))
}

// HandleGetCurrencies handles GET /api/analytics/fx/currencies
func (h *Handler) HandleGetCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.analytics.Currencies(r.Context())
	if err != nil {
		h.writeError(w, err, "Failed to get exchange rate coverage", "fx")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"currencies": currencies,
		"count":      len(currencies),
	}))
}

// HandleListPortfolios handles GET /api/portfolios
func (h *Handler) HandleListPortfolios(w http.ResponseWriter, r *http.Request) {
	portfolios := h.analytics.Portfolios()
	summaries := make([]portfolioSummary, len(portfolios))
	for i := range portfolios {
		p := &portfolios[i]
		summaries[i] = portfolioSummary{
			Name:        p.Name,
			Label:       p.Label(),
			Description: p.Description,
			Type:        p.Type,
			StartDate:   p.StartDate,
			Tickers:     p.Tickers(),
		}
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"portfolios": summaries,
		"count":      len(summaries),
	}))
}

// HandleGetPortfolioHistory handles GET /api/portfolios/{name}/history
func (h *Handler) HandleGetPortfolioHistory(w http.ResponseWriter, r *http.Request, name string) {
	records, err := h.analytics.PortfolioHistory(r.Context(), name)
	if err != nil {
		h.writeError(w, err, "Failed to calculate portfolio history", name)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"portfolio": name,
		"history":   records,
		"totals":    performance.AggregateTotalValue(performance.FilterCompleteDates(records)),
		"count":     len(records),
	}))
}

// HandleGetPortfolioKPIs handles GET /api/portfolios/{name}/kpis
func (h *Handler) HandleGetPortfolioKPIs(w http.ResponseWriter, r *http.Request, name string) {
	kpis, err := h.analytics.PortfolioKPIs(r.Context(), name)
	if err != nil {
		h.writeError(w, err, "Failed to calculate portfolio KPIs", name)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"portfolio": name,
		"kpis":      kpis,
	}))
}

// HandleGetLatestSnapshot handles GET /api/portfolios/{name}/snapshots/latest
func (h *Handler) HandleGetLatestSnapshot(w http.ResponseWriter, r *http.Request, name string) {
	if _, err := h.analytics.Portfolio(name); err != nil {
		h.writeError(w, err, "Failed to get portfolio", name)
		return
	}

	snapshot, err := h.snapshots.Latest(r.Context(), name)
	if err != nil {
		h.writeError(w, err, "Failed to get latest snapshot", name)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(snapshot))
}

// HandleListSnapshots handles GET /api/portfolios/{name}/snapshots
func (h *Handler) HandleListSnapshots(w http.ResponseWriter, r *http.Request, name string) {
	limit := 30
	if s := r.URL.Query().Get("limit"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	if _, err := h.analytics.Portfolio(name); err != nil {
		h.writeError(w, err, "Failed to get portfolio", name)
		return
	}

	list, err := h.snapshots.List(r.Context(), name, limit)
	if err != nil {
		h.writeError(w, err, "Failed to list snapshots", name)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"portfolio": name,
		"snapshots": list,
		"count":     len(list),
	}))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// writeError maps not-found errors to 404 and everything else to 500
func (h *Handler) writeError(w http.ResponseWriter, err error, msg string, subject string) {
	if errors.Is(err, services.ErrPortfolioNotFound) || errors.Is(err, snapshots.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.log.Error().Err(err).Str("subject", subject).Msg(msg)
	http.Error(w, msg, http.StatusInternalServerError)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
