// Package portfolio simulates daily portfolio values from price history.
//
// Three strategies are supported: absolute (fixed share counts), weighted
// (buy-and-hold from an initial capital allocation) and watchlist (raw price
// tracking). Every calculation is a pure function of its inputs.
package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/aristath/qualitycore/internal/utils"
	"github.com/rs/zerolog"
)

// Converter converts an amount dated date from source into the reporting currency.
// *fx.Engine satisfies it.
type Converter interface {
	ConvertAmount(amount float64, date time.Time, source domain.Currency) float64
}

// HistoryRecord is one ticker's position on one day, in the ticker's native currency
type HistoryRecord struct {
	Date                time.Time       `json:"date"`
	Ticker              string          `json:"ticker"`
	Currency            domain.Currency `json:"currency"`
	PositionValue       *float64        `json:"position_value"`
	PositionDividendYoY *float64        `json:"position_dividend_yoy"`
	Shares              *float64        `json:"shares,omitempty"`
	ImpliedShares       *float64        `json:"implied_shares,omitempty"`
	Weight              *float64        `json:"weight,omitempty"`
	Group               string          `json:"group"`
}

func (h HistoryRecord) Key() string   { return h.Ticker }
func (h HistoryRecord) At() time.Time { return h.Date }

// Engine calculates portfolio history
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a portfolio engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "portfolio").Logger(),
	}
}

// CalculateHistory returns daily position values for p, ordered by (ticker, date).
// Prices are restricted to the portfolio's tickers and to dates on or after
// p.StartDate. conv may be nil; when set, weighted entry prices are converted
// before allocating capital. Only configuration mistakes return an error;
// missing data yields an empty result.
func (e *Engine) CalculateHistory(p *domain.Portfolio, prices []domain.TrackedPrice, conv Converter) ([]HistoryRecord, error) {
	log := e.log.With().Str("portfolio", p.Name).Str("type", string(p.Type)).Logger()
	log.Debug().Strs("tickers", p.Tickers()).Msg("Calculating portfolio history")

	filtered, err := filterPrices(p, prices)
	if err != nil {
		return nil, err
	}
	if len(filtered) == 0 {
		log.Warn().Msg("No price data found for portfolio")
		return []HistoryRecord{}, nil
	}

	var history []HistoryRecord
	switch p.Type {
	case domain.PortfolioAbsolute:
		history = calculateAbsolute(p, filtered)
	case domain.PortfolioWeighted:
		history, err = e.calculateWeighted(p, filtered, conv, log)
		if err != nil {
			return nil, err
		}
	case domain.PortfolioWatchlist:
		history = calculateWatchlist(filtered)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownPortfolioType, p.Type)
	}

	groups := make(map[string]string, len(p.Positions))
	for _, pos := range p.Positions {
		groups[pos.Ticker] = pos.GroupOrDefault()
	}
	for i := range history {
		if g, ok := groups[history[i].Ticker]; ok {
			history[i].Group = g
		} else {
			history[i].Group = domain.DefaultGroup
		}
	}

	log.Debug().Int("records", len(history)).Msg("Calculated portfolio history")
	return history, nil
}

func filterPrices(p *domain.Portfolio, prices []domain.TrackedPrice) ([]domain.TrackedPrice, error) {
	tickers := make(map[string]struct{}, len(p.Positions))
	for _, t := range p.Tickers() {
		tickers[t] = struct{}{}
	}

	var start time.Time
	if p.StartDate != "" {
		s, ok := p.Start()
		if !ok {
			return nil, fmt.Errorf("invalid start_date %q for portfolio %s", p.StartDate, p.Name)
		}
		start = s
	}

	out := make([]domain.TrackedPrice, 0, len(prices))
	for _, price := range prices {
		if _, ok := tickers[price.Ticker]; !ok {
			continue
		}
		if price.Date.Before(start) {
			continue
		}
		out = append(out, price)
	}
	return timeseries.Sorted(out), nil
}

func calculateAbsolute(p *domain.Portfolio, prices []domain.TrackedPrice) []HistoryRecord {
	shares := make(map[string]float64, len(p.Positions))
	for _, pos := range p.Positions {
		shares[pos.Ticker] = utils.OrZero(pos.Shares)
	}

	out := make([]HistoryRecord, 0, len(prices))
	for _, price := range prices {
		n := utils.Float(shares[price.Ticker])
		out = append(out, HistoryRecord{
			Date:                price.Date,
			Ticker:              price.Ticker,
			Currency:            price.Currency,
			PositionValue:       utils.Mul(n, utils.Float(price.Close)),
			PositionDividendYoY: utils.Mul(n, price.RollingDividendSum),
			Shares:              n,
		})
	}
	return out
}

func (e *Engine) calculateWeighted(p *domain.Portfolio, prices []domain.TrackedPrice, conv Converter, log zerolog.Logger) ([]HistoryRecord, error) {
	if p.StartDate == "" {
		return nil, fmt.Errorf("portfolio %s: %w", p.Name, domain.ErrMissingStartDate)
	}
	if p.InitialCapital == nil {
		return nil, fmt.Errorf("portfolio %s: %w", p.Name, domain.ErrMissingInitialCapital)
	}

	weights, err := NormalizeWeights(p.Positions)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", p.Name, err)
	}

	// prices are sorted by (ticker, date): the first row per ticker is the entry
	entries := make(map[string]domain.TrackedPrice)
	for _, price := range prices {
		if _, ok := entries[price.Ticker]; !ok {
			entries[price.Ticker] = price
		}
	}

	implied := make(map[string]*float64, len(weights))
	for ticker, w := range weights {
		entry, ok := entries[ticker]
		if !ok {
			log.Warn().Str("ticker", ticker).Msg("No entry price on or after start date")
			continue
		}
		entryPrice := entry.Close
		if conv != nil {
			entryPrice = conv.ConvertAmount(entryPrice, entry.Date, entry.Currency)
		}
		allocation := w * *p.InitialCapital
		implied[ticker] = utils.Div(utils.Float(allocation), utils.Float(entryPrice))
	}
	if len(implied) == 0 {
		log.Warn().Str("start_date", p.StartDate).Msg("No entry prices found for weighted portfolio")
		return []HistoryRecord{}, nil
	}

	out := make([]HistoryRecord, 0, len(prices))
	for _, price := range prices {
		n := implied[price.Ticker]
		out = append(out, HistoryRecord{
			Date:                price.Date,
			Ticker:              price.Ticker,
			Currency:            price.Currency,
			PositionValue:       utils.Mul(n, utils.Float(price.Close)),
			PositionDividendYoY: utils.Mul(n, price.RollingDividendSum),
			ImpliedShares:       n,
			Weight:              utils.Float(weights[price.Ticker]),
		})
	}
	return out, nil
}

func calculateWatchlist(prices []domain.TrackedPrice) []HistoryRecord {
	out := make([]HistoryRecord, 0, len(prices))
	for _, price := range prices {
		out = append(out, HistoryRecord{
			Date:                price.Date,
			Ticker:              price.Ticker,
			Currency:            price.Currency,
			PositionValue:       utils.Float(price.Close),
			PositionDividendYoY: price.RollingDividendSum,
		})
	}
	return out
}

// NormalizeWeights scales position weights to sum to 1.0, so configs can use
// ratios such as 2:1:1. Missing weights count as 0; repeated tickers add up.
func NormalizeWeights(positions []domain.Position) (map[string]float64, error) {
	raw := make(map[string]float64, len(positions))
	total := 0.0
	for _, pos := range positions {
		w := utils.OrZero(pos.Weight)
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight for %s", domain.ErrInvalidWeights, pos.Ticker)
		}
		raw[pos.Ticker] += w
		total += w
	}
	if total <= 0 {
		return nil, domain.ErrInvalidWeights
	}
	for t, w := range raw {
		raw[t] = w / total
	}
	return raw, nil
}

// TotalValue is the summed position value of a portfolio on one day
type TotalValue struct {
	Date       time.Time `json:"date"`
	TotalValue float64   `json:"total_value"`
}

// AggregateTotalValue sums native position values per date, ordered by date.
// Callers mixing currencies should convert first.
func AggregateTotalValue(history []HistoryRecord) []TotalValue {
	sums := make(map[time.Time]float64)
	dates := make([]time.Time, 0)
	for _, h := range history {
		if _, ok := sums[h.Date]; !ok {
			dates = append(dates, h.Date)
		}
		sums[h.Date] += utils.OrZero(h.PositionValue)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]TotalValue, 0, len(dates))
	for _, d := range dates {
		out = append(out, TotalValue{Date: d, TotalValue: sums[d]})
	}
	return out
}
