// Package handlers provides HTTP handlers for loading and reading market history.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/history"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds a single ingest request
const maxBodyBytes = 32 << 20

// Store is the history storage the handlers read and write
type Store interface {
	UpsertPrices(ctx context.Context, prices []domain.PriceObservation) error
	UpsertReports(ctx context.Context, reports []domain.FinancialReport) error
	GetPrices(ctx context.Context, q history.PriceQuery) ([]domain.PriceObservation, error)
	Tickers(ctx context.Context) ([]string, error)
}

// Handler handles history HTTP requests
type Handler struct {
	store    Store
	tracked  []string
	validate *validator.Validate
	log      zerolog.Logger
}

// NewHandler creates a history handler. tracked lists the tickers the
// configured portfolios need, used to report coverage gaps.
func NewHandler(store Store, tracked []string, log zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		tracked:  tracked,
		validate: validator.New(),
		log:      log.With().Str("handler", "history").Logger(),
	}
}

type priceRow struct {
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Ticker   string  `json:"ticker" validate:"required"`
	Currency string  `json:"currency" validate:"required"`
	Open     float64 `json:"open" validate:"gte=0"`
	High     float64 `json:"high" validate:"gte=0"`
	Low      float64 `json:"low" validate:"gte=0"`
	Close    float64 `json:"close" validate:"gt=0"`
	AdjClose float64 `json:"adj_close" validate:"gte=0"`
	Volume   int64   `json:"volume" validate:"gte=0"`
	Dividend float64 `json:"dividend" validate:"gte=0"`
}

// reportRow takes the figures from the embedded report; the outer fields
// shadow the identity columns so dates can be sent as YYYY-MM-DD.
type reportRow struct {
	domain.FinancialReport
	ReportDate string `json:"report_date" validate:"required,datetime=2006-01-02"`
	Ticker     string `json:"ticker" validate:"required"`
	PeriodType string `json:"period_type" validate:"required,oneof=annual quarterly"`
	Currency   string `json:"currency" validate:"required"`
}

type pricesRequest struct {
	Prices []priceRow `json:"prices" validate:"required,min=1,dive"`
}

type reportsRequest struct {
	Reports []reportRow `json:"reports" validate:"required,min=1,dive"`
}

// HandleUpsertPrices handles POST /api/history/prices
func (h *Handler) HandleUpsertPrices(w http.ResponseWriter, r *http.Request) {
	var req pricesRequest
	if !h.decode(w, r, &req) {
		return
	}

	prices := make([]domain.PriceObservation, len(req.Prices))
	for i, row := range req.Prices {
		date, _ := time.Parse(domain.DateLayout, row.Date)
		prices[i] = domain.PriceObservation{
			Date:     date,
			Ticker:   row.Ticker,
			Currency: domain.Currency(row.Currency),
			Open:     row.Open,
			High:     row.High,
			Low:      row.Low,
			Close:    row.Close,
			AdjClose: row.AdjClose,
			Volume:   row.Volume,
			Dividend: row.Dividend,
		}
	}

	if err := h.store.UpsertPrices(r.Context(), prices); err != nil {
		h.log.Error().Err(err).Int("rows", len(prices)).Msg("Failed to store prices")
		http.Error(w, "Failed to store prices", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("rows", len(prices)).Msg("Stored daily prices")
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"upserted": len(prices),
	}))
}

// HandleUpsertReports handles POST /api/history/reports
func (h *Handler) HandleUpsertReports(w http.ResponseWriter, r *http.Request) {
	var req reportsRequest
	if !h.decode(w, r, &req) {
		return
	}

	reports := make([]domain.FinancialReport, len(req.Reports))
	for i, row := range req.Reports {
		date, _ := time.Parse(domain.DateLayout, row.ReportDate)
		report := row.FinancialReport
		report.ReportDate = date
		report.Ticker = row.Ticker
		report.PeriodType = domain.PeriodType(row.PeriodType)
		report.Currency = domain.Currency(row.Currency)
		reports[i] = report
	}

	if err := h.store.UpsertReports(r.Context(), reports); err != nil {
		h.log.Error().Err(err).Int("rows", len(reports)).Msg("Failed to store reports")
		http.Error(w, "Failed to store reports", http.StatusInternalServerError)
		return
	}

	h.log.Info().Int("rows", len(reports)).Msg("Stored financial reports")
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"upserted": len(reports),
	}))
}

// HandleGetPrices handles GET /api/history/prices/{ticker}
func (h *Handler) HandleGetPrices(w http.ResponseWriter, r *http.Request, ticker string) {
	query := history.PriceQuery{Tickers: []string{ticker}}
	for param, dst := range map[string]*time.Time{"from": &query.From, "to": &query.To} {
		s := r.URL.Query().Get(param)
		if s == "" {
			continue
		}
		t, err := time.Parse(domain.DateLayout, s)
		if err != nil {
			http.Error(w, fmt.Sprintf("%s must be YYYY-MM-DD", param), http.StatusBadRequest)
			return
		}
		*dst = t
	}

	prices, err := h.store.GetPrices(r.Context(), query)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get daily prices")
		http.Error(w, "Failed to get daily prices", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"ticker": ticker,
		"prices": prices,
		"count":  len(prices),
	}))
}

// HandleGetTickers handles GET /api/history/tickers.
// missing lists portfolio tickers without any stored price.
func (h *Handler) HandleGetTickers(w http.ResponseWriter, r *http.Request) {
	tickers, err := h.store.Tickers(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get tickers")
		http.Error(w, "Failed to get tickers", http.StatusInternalServerError)
		return
	}

	stored := make(map[string]struct{}, len(tickers))
	for _, t := range tickers {
		stored[t] = struct{}{}
	}
	missing := make([]string, 0)
	for _, t := range h.tracked {
		if _, ok := stored[t]; !ok {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"tickers": tickers,
		"count":   len(tickers),
		"missing": missing,
	}))
}

// decode reads and validates a JSON body, writing a 400 on failure
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
