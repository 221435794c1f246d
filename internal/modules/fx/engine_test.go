package fx

import (
	"errors"
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ratePrices() []domain.PriceObservation {
	return []domain.PriceObservation{
		{Ticker: "EURUSD=X", Date: day(2024, 2, 1), Close: 1.05},
		{Ticker: "EURUSD=X", Date: day(2024, 1, 1), Close: 1.10},
		{Ticker: "AAPL", Date: day(2024, 1, 1), Close: 180, Currency: domain.CurrencyUSD},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(ratePrices(), domain.CurrencyEUR, zerolog.Nop())
	require.NoError(t, err)
	return e
}

func TestNewEngine_RejectsNonEURTarget(t *testing.T) {
	_, err := NewEngine(ratePrices(), domain.CurrencyUSD, zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedTargetCurrency))
}

func TestNewEngine_OnlyCurrenciesWithData(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, []domain.Currency{domain.CurrencyUSD}, e.Currencies())
	assert.True(t, e.Supports(domain.CurrencyUSD))
	assert.False(t, e.Supports(domain.CurrencyCHF))
	assert.Equal(t, domain.CurrencyEUR, e.Target())
}

func TestConvertAmount(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		amount   float64
		date     time.Time
		currency domain.Currency
		want     float64
	}{
		{"uses latest rate on or before date", 100, day(2024, 1, 15), domain.CurrencyUSD, 100 / 1.10},
		{"exact rate date", 105, day(2024, 2, 1), domain.CurrencyUSD, 100},
		{"target currency is identity", 100, day(2024, 1, 15), domain.CurrencyEUR, 100},
		{"unsupported currency passes through", 100, day(2024, 1, 15), domain.CurrencyCHF, 100},
		{"before first rate passes through", 100, day(2023, 12, 1), domain.CurrencyUSD, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ConvertAmount(tt.amount, tt.date, tt.currency)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	assert.InDelta(t, 90.91, e.ConvertAmount(100, day(2024, 1, 15), domain.CurrencyUSD), 0.01)
}

func TestRateAsOf(t *testing.T) {
	e := newTestEngine(t)

	r, ok := e.RateAsOf(domain.CurrencyUSD, day(2024, 3, 1))
	require.True(t, ok)
	assert.Equal(t, 1.05, r)

	_, ok = e.RateAsOf(domain.CurrencyUSD, day(2023, 1, 1))
	assert.False(t, ok)
}

func TestNewEngine_SkipsNonPositiveRates(t *testing.T) {
	prices := append(ratePrices(), domain.PriceObservation{Ticker: "EURUSD=X", Date: day(2024, 1, 20), Close: 0})
	e, err := NewEngine(prices, domain.CurrencyEUR, zerolog.Nop())
	require.NoError(t, err)

	r, ok := e.RateAsOf(domain.CurrencyUSD, day(2024, 1, 25))
	require.True(t, ok)
	assert.Equal(t, 1.10, r)
}
