// Package fx converts amounts from their native currency into the reporting
// currency using historical EUR cross rates found in the price table.
package fx

import (
	"fmt"
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/rs/zerolog"
)

// SupportedCurrencyTickers maps a currency to the price ticker quoting EUR in that currency.
// A close of 1.10 on EURUSD=X means 1 EUR = 1.10 USD.
var SupportedCurrencyTickers = map[domain.Currency]string{
	domain.CurrencyUSD: "EURUSD=X",
	domain.CurrencyCHF: "EURCHF=X",
	domain.CurrencyGBP: "EURGBP=X",
	domain.CurrencyJPY: "EURJPY=X",
	domain.CurrencyDKK: "EURDKK=X",
	domain.CurrencySEK: "EURSEK=X",
}

// rate is a single cross-rate observation
type rate struct {
	currency domain.Currency
	date     time.Time
	value    float64
}

func (r rate) Key() string   { return string(r.currency) }
func (r rate) At() time.Time { return r.date }

// Engine holds date-ordered rate series per supported currency.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	target domain.Currency
	rates  map[domain.Currency][]rate
	log    zerolog.Logger
}

// NewEngine extracts rate series from prices. Only EUR is supported as target;
// any other value is a configuration error.
func NewEngine(prices []domain.PriceObservation, target domain.Currency, log zerolog.Logger) (*Engine, error) {
	if target != domain.CurrencyEUR {
		return nil, fmt.Errorf("%w: %q (only %s is implemented)", domain.ErrUnsupportedTargetCurrency, target, domain.CurrencyEUR)
	}

	byTicker := make(map[string]domain.Currency, len(SupportedCurrencyTickers))
	for currency, ticker := range SupportedCurrencyTickers {
		byTicker[ticker] = currency
	}

	rates := make(map[domain.Currency][]rate)
	for _, p := range prices {
		currency, ok := byTicker[p.Ticker]
		if !ok || p.Close <= 0 {
			continue
		}
		rates[currency] = append(rates[currency], rate{currency: currency, date: p.Date, value: p.Close})
	}
	for _, series := range rates {
		timeseries.SortByDate(series)
	}

	e := &Engine{
		target: target,
		rates:  rates,
		log:    log.With().Str("component", "fx").Logger(),
	}

	e.log.Debug().
		Int("currencies", len(rates)).
		Str("target", string(target)).
		Msg("FX engine initialized")

	return e, nil
}

// Target returns the reporting currency
func (e *Engine) Target() domain.Currency {
	return e.target
}

// Currencies returns the currencies with at least one rate, sorted
func (e *Engine) Currencies() []domain.Currency {
	out := make([]domain.Currency, 0, len(e.rates))
	for c := range e.rates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supports reports whether rates exist for currency
func (e *Engine) Supports(currency domain.Currency) bool {
	_, ok := e.rates[currency]
	return ok
}

// RateAsOf returns the most recent rate dated on or before date
func (e *Engine) RateAsOf(currency domain.Currency, date time.Time) (float64, bool) {
	series, ok := e.rates[currency]
	if !ok {
		return 0, false
	}
	i := timeseries.AsofBackward(series, date)
	if i < 0 {
		return 0, false
	}
	return series[i].value, true
}

// ConvertAmount converts a single amount dated date from source into the target currency.
// Missing rates pass the amount through unconverted.
func (e *Engine) ConvertAmount(amount float64, date time.Time, source domain.Currency) float64 {
	if source == e.target {
		return amount
	}

	if !e.Supports(source) {
		e.log.Warn().
			Str("currency", string(source)).
			Str("target", string(e.target)).
			Msg("No FX rate available, returning original amount")
		return amount
	}

	r, ok := e.RateAsOf(source, date)
	if !ok {
		e.log.Warn().
			Str("currency", string(source)).
			Str("date", date.Format(domain.DateLayout)).
			Msg("No FX rate found on or before date, returning original amount")
		return amount
	}

	// 100 USD / 1.10 USD per EUR = 90.91 EUR
	return amount / r
}
