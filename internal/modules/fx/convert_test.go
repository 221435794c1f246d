package fx

import (
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type holding struct {
	date      time.Time
	currency  domain.Currency
	value     *float64
	converted *float64
}

var valueColumn = Column[holding]{
	Name:     "value",
	Date:     func(h holding) time.Time { return h.date },
	Currency: func(h holding) domain.Currency { return h.currency },
	Amount:   func(h holding) *float64 { return h.value },
	Set:      func(h *holding, v *float64) { h.converted = v },
}

func f(v float64) *float64 { return &v }

func TestConvertToTarget(t *testing.T) {
	e := newTestEngine(t)

	rows := []holding{
		{date: day(2024, 2, 5), currency: domain.CurrencyUSD, value: f(210)},
		{date: day(2024, 1, 15), currency: domain.CurrencyEUR, value: f(50)},
		{date: day(2024, 1, 15), currency: domain.CurrencyUSD, value: f(110)},
		{date: day(2024, 1, 16), currency: domain.CurrencySEK, value: f(1000)},
		{date: day(2024, 1, 17), currency: domain.CurrencyUSD, value: nil},
	}

	out := ConvertToTarget(e, rows, valueColumn)

	require.Len(t, out, 5)
	// ordered by date, stable for equal dates
	assert.Equal(t, domain.CurrencyEUR, out[0].currency)
	assert.InDelta(t, 50, *out[0].converted, 1e-9)
	assert.InDelta(t, 100, *out[1].converted, 1e-9)
	assert.InDelta(t, 1000, *out[2].converted, 1e-9, "unsupported currency kept in original")
	assert.Nil(t, out[3].converted)
	assert.InDelta(t, 200, *out[4].converted, 1e-9)

	// input untouched
	assert.Nil(t, rows[0].converted)
	assert.Equal(t, day(2024, 2, 5), rows[0].date)
}

func TestConvertToTarget_Empty(t *testing.T) {
	e := newTestEngine(t)
	out := ConvertToTarget(e, nil, valueColumn)
	assert.Empty(t, out)
}
