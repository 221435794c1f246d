package performance

import (
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/fx"
	"github.com/aristath/qualitycore/internal/modules/portfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func converted(ticker string, date time.Time, value float64, dividend *float64) Record {
	return Record{
		HistoryRecord: portfolio.HistoryRecord{
			Date:          date,
			Ticker:        ticker,
			Currency:      domain.CurrencyEUR,
			PositionValue: f(value),
		},
		TargetCurrency:      domain.CurrencyEUR,
		PositionValueTarget: f(value),
		DividendYoYTarget:   dividend,
	}
}

func TestConvertHistory(t *testing.T) {
	engine, err := fx.NewEngine([]domain.PriceObservation{
		{Ticker: "EURUSD=X", Date: day(2024, 1, 1), Close: 1.25},
	}, domain.CurrencyEUR, zerolog.Nop())
	require.NoError(t, err)

	history := []portfolio.HistoryRecord{
		{Date: day(2024, 1, 3), Ticker: "A", Currency: domain.CurrencyUSD, PositionValue: f(125), PositionDividendYoY: f(5)},
		{Date: day(2024, 1, 2), Ticker: "B", Currency: domain.CurrencyEUR, PositionValue: f(80)},
	}

	out := ConvertHistory(history, engine)

	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].Ticker, "ordered by date")
	assert.InDelta(t, 80, *out[0].PositionValueTarget, 1e-9)
	assert.Nil(t, out[0].DividendYoYTarget)
	assert.InDelta(t, 100, *out[1].PositionValueTarget, 1e-9)
	assert.InDelta(t, 4, *out[1].DividendYoYTarget, 1e-9)
	assert.InDelta(t, 125, *out[1].PositionValue, 1e-9, "native value kept")
	assert.Equal(t, domain.CurrencyEUR, out[1].TargetCurrency)
}

func TestAttachYearOverYear(t *testing.T) {
	records := []Record{
		converted("A", day(2023, 1, 2), 100, nil),
		converted("B", day(2023, 1, 2), 10, nil),
		converted("A", day(2023, 6, 1), 150, nil),
		converted("A", day(2024, 1, 2), 120, f(5)),
		converted("B", day(2023, 12, 29), 20, nil),
	}

	out := AttachYearOverYear(records)

	require.Len(t, out, 5)
	assert.Nil(t, out[0].YoYReturnPct)
	assert.Nil(t, out[2].YoYReturnPct, "less than a year of history")
	require.NotNil(t, out[3].YoYReturnPct)
	assert.InDelta(t, 20, *out[3].YoYReturnPct, 1e-9)
	assert.InDelta(t, 25, *out[3].YoYTotalReturnPct, 1e-9)
	assert.Nil(t, out[4].YoYReturnPct, "never compared against another ticker")
	assert.Nil(t, records[3].YoYReturnPct)
}

func TestAttachYearOverYear_LeapDay(t *testing.T) {
	records := []Record{
		converted("A", day(2024, 2, 29), 100, nil),
		converted("A", day(2025, 2, 28), 110, nil),
	}

	out := AttachYearOverYear(records)

	require.NotNil(t, out[1].YoYReturnPct, "Feb 29 matches Feb 28 of the next year")
	assert.InDelta(t, 10, *out[1].YoYReturnPct, 1e-9)
}

func TestAddYear(t *testing.T) {
	assert.Equal(t, day(2025, 2, 28), addYear(day(2024, 2, 29)))
	assert.Equal(t, day(2025, 3, 1), addYear(day(2024, 3, 1)))
	assert.Equal(t, day(2029, 2, 28), addYear(day(2028, 2, 28)))
}

func TestFilterCompleteDates(t *testing.T) {
	records := []Record{
		converted("A", day(2024, 1, 2), 1, nil),
		converted("B", day(2024, 1, 2), 1, nil),
		converted("A", day(2024, 1, 3), 1, nil),
	}

	out := FilterCompleteDates(records)

	require.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, day(2024, 1, 2), r.Date)
	}
}

func TestAggregateTotalValue(t *testing.T) {
	out := AggregateTotalValue([]Record{
		converted("A", day(2024, 1, 3), 5, f(1)),
		converted("A", day(2024, 1, 2), 2, nil),
		converted("B", day(2024, 1, 3), 7, f(2)),
	})

	require.Len(t, out, 2)
	assert.Equal(t, day(2024, 1, 2), out[0].Date)
	assert.InDelta(t, 2, out[0].TotalValue, 1e-9)
	assert.InDelta(t, 12, out[1].TotalValue, 1e-9)
	assert.InDelta(t, 3, out[1].TotalDividendYoY, 1e-9)
}

func TestCalculateKPIs(t *testing.T) {
	records := []Record{
		converted("A", day(2022, 1, 3), 1000, nil),
		converted("A", day(2023, 1, 2), 800, nil),
		converted("A", day(2023, 1, 4), 1000, nil),
		converted("A", day(2024, 1, 3), 1200, f(50)),
	}

	k := CalculateKPIs(records)

	assert.InDelta(t, 1200, k.CurrentValue, 1e-9)
	assert.InDelta(t, 50, k.CurrentYoYDividendValue, 1e-9)
	assert.InDelta(t, 1000, k.StartValue, 1e-9)
	assert.InDelta(t, 20, k.TotalReturnPct, 1e-9)
	assert.InDelta(t, 25, k.YoYReturnPct, 1e-9, "(1200 - 1000 + 50) / 1000")
	assert.Equal(t, "2022-01-03", k.StartDate)
	assert.Equal(t, "2024-01-03", k.LatestDate)
	require.NotNil(t, k.MaxDrawdown)
	assert.InDelta(t, 0.2, *k.MaxDrawdown, 1e-9)
	assert.Greater(t, k.AnnualizedVolatility, 0.0)
	require.NotNil(t, k.SharpeRatio)
	assert.Greater(t, *k.SharpeRatio, 0.0)
	require.NotNil(t, k.CAGRPct)
	assert.InDelta(t, 9.5, *k.CAGRPct, 0.1)
}

func TestCalculateKPIs_SkipsIncompleteDates(t *testing.T) {
	records := []Record{
		converted("A", day(2024, 1, 2), 100, nil),
		converted("B", day(2024, 1, 2), 100, nil),
		converted("A", day(2024, 1, 3), 110, nil),
		converted("A", day(2024, 1, 4), 120, nil),
		converted("B", day(2024, 1, 4), 90, nil),
	}

	k := CalculateKPIs(records)

	assert.InDelta(t, 210, k.CurrentValue, 1e-9)
	assert.InDelta(t, 200, k.StartValue, 1e-9)
	assert.InDelta(t, 0.0, *k.MaxDrawdown, 1e-9, "holiday gap on B is not a drawdown")
}

func TestCalculateKPIs_Empty(t *testing.T) {
	k := CalculateKPIs(nil)

	assert.Equal(t, NotAvailable, k.StartDate)
	assert.Equal(t, NotAvailable, k.LatestDate)
	assert.Zero(t, k.CurrentValue)
	assert.Zero(t, k.YoYReturnPct)
	assert.Nil(t, k.MaxDrawdown)
	assert.Nil(t, k.SharpeRatio)
}
