package metrics

import (
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annualReport(ticker string, date time.Time, eps float64) domain.FinancialReport {
	return domain.FinancialReport{
		Ticker:               ticker,
		ReportDate:           date,
		PeriodType:           domain.PeriodAnnual,
		Currency:             domain.CurrencyUSD,
		DilutedEPS:           f(eps),
		Revenue:              f(1000),
		FreeCashFlow:         f(100),
		DilutedAverageShares: f(100),
		CashDividendsPaid:    f(-50),
	}
}

func quarterlyReports(ticker string) []domain.FinancialReport {
	dates := []time.Time{day(2023, 3, 31), day(2023, 6, 30), day(2023, 9, 30), day(2023, 12, 31)}
	out := make([]domain.FinancialReport, 0, len(dates))
	for _, d := range dates {
		out = append(out, domain.FinancialReport{
			Ticker:      ticker,
			ReportDate:  d,
			PeriodType:  domain.PeriodQuarterly,
			Currency:    domain.CurrencyUSD,
			Revenue:     f(300),
			NetIncome:   f(30),
			DilutedEPS:  f(0.5),
			ShareIssued: f(200),
		})
	}
	return out
}

func TestCalculateValuationMetrics_AnnualOnly(t *testing.T) {
	e := newTestEngine()
	prices := []domain.PriceObservation{
		price("AAPL", day(2023, 1, 10), 50),
		price("AAPL", day(2022, 6, 1), 40),
	}
	annual := []domain.FinancialReport{annualReport("AAPL", day(2022, 12, 31), 5)}

	out := e.CalculateValuationMetrics(prices, annual, nil)

	require.Len(t, out, 2)
	before, after := out[0], out[1]

	assert.Equal(t, day(2022, 6, 1), before.Date, "sorted by date")
	assert.Equal(t, SourceNone, before.ValuationSource, "no look-ahead")
	assert.Nil(t, before.EPS)
	assert.Nil(t, before.PERatio)
	assert.Nil(t, before.DataLagDays)

	assert.Equal(t, SourceAnnual, after.ValuationSource)
	assert.InDelta(t, 5, *after.EPS, 1e-9)
	assert.InDelta(t, 10, *after.PERatio, 1e-9)
	assert.InDelta(t, 5, *after.PSRatio, 1e-9, "50 / (1000/100)")
	assert.InDelta(t, 0.02, *after.FCFYield, 1e-9, "(100/100)/50")
	assert.InDelta(t, 0.01, *after.DivYieldCalc, 1e-9, "50/100/50")
	assert.InDelta(t, 50, *after.DividendAnnual, 1e-9)
	require.NotNil(t, after.DataLagDays)
	assert.Equal(t, 10, *after.DataLagDays)
	assert.Equal(t, day(2022, 12, 31), *after.MetricDate)
}

func TestCalculateValuationMetrics_TTMPrecedence(t *testing.T) {
	e := newTestEngine()
	prices := []domain.PriceObservation{price("AAPL", day(2024, 2, 1), 40)}
	annual := []domain.FinancialReport{annualReport("AAPL", day(2023, 12, 31), 5)}

	out := e.CalculateValuationMetrics(prices, annual, quarterlyReports("AAPL"))

	require.Len(t, out, 1)
	rec := out[0]
	assert.Equal(t, SourceTTM, rec.ValuationSource)
	require.NotNil(t, rec.EPSTTM)
	assert.InDelta(t, 2, *rec.EPSTTM, 1e-9)
	assert.InDelta(t, 2, *rec.EPS, 1e-9, "ttm eps, not annual")
	assert.InDelta(t, 5, *rec.EPSAnnual, 1e-9)
	assert.InDelta(t, 20, *rec.PERatio, 1e-9)
	assert.InDelta(t, 200, *rec.Shares, 1e-9, "share_issued preferred")
	assert.InDelta(t, 1200, *rec.RevenueTTM, 1e-9)
	assert.InDelta(t, 120, *rec.NetIncomeTTM, 1e-9)
	assert.Equal(t, day(2023, 12, 31), *rec.MetricDate)
}

func TestCalculateValuationMetrics_GroupsByTicker(t *testing.T) {
	e := newTestEngine()
	prices := []domain.PriceObservation{
		price("MSFT", day(2023, 6, 1), 100),
		price("AAPL", day(2023, 6, 1), 100),
	}
	annual := []domain.FinancialReport{annualReport("MSFT", day(2022, 12, 31), 4)}

	out := e.CalculateValuationMetrics(prices, annual, nil)

	require.Len(t, out, 2)
	assert.Equal(t, "AAPL", out[0].Ticker)
	assert.Equal(t, SourceNone, out[0].ValuationSource, "MSFT report must not leak to AAPL")
	assert.Equal(t, "MSFT", out[1].Ticker)
	assert.Equal(t, SourceAnnual, out[1].ValuationSource)
}

func TestCalculateValuationMetrics_DataLagNeverNegative(t *testing.T) {
	e := newTestEngine()
	var prices []domain.PriceObservation
	for d := day(2022, 1, 1); d.Before(day(2024, 6, 1)); d = d.AddDate(0, 0, 7) {
		prices = append(prices, price("AAPL", d, 100))
	}
	annual := []domain.FinancialReport{
		annualReport("AAPL", day(2022, 12, 31), 5),
		annualReport("AAPL", day(2023, 12, 31), 6),
	}

	out := e.CalculateValuationMetrics(prices, annual, quarterlyReports("AAPL"))

	require.Len(t, out, len(prices))
	for _, r := range out {
		if r.MetricDate == nil {
			continue
		}
		require.NotNil(t, r.DataLagDays)
		assert.GreaterOrEqual(t, *r.DataLagDays, 0, r.Date)
	}
}

func TestCalculateValuationMetrics_RollingDividends(t *testing.T) {
	e := newTestEngine()
	p1 := price("KO", day(2023, 1, 2), 50)
	p1.Dividend = 0.5
	p2 := price("KO", day(2023, 7, 3), 50)
	p2.Dividend = 0.5
	p3 := price("KO", day(2024, 1, 2), 50)
	p3.Dividend = 0.5
	p4 := price("KO", day(2024, 1, 3), 50)

	out := e.CalculateValuationMetrics([]domain.PriceObservation{p1, p2, p3, p4}, nil, nil)

	require.Len(t, out, 4)
	assert.InDelta(t, 0.5, *out[0].RollingDividendSum, 1e-9)
	assert.InDelta(t, 1.0, *out[1].RollingDividendSum, 1e-9)
	assert.InDelta(t, 1.0, *out[2].RollingDividendSum, 1e-9, "2023-01-02 is exactly one year back and excluded")
	assert.InDelta(t, 1.0, *out[3].RollingDividendSum, 1e-9)
	assert.InDelta(t, 0.02, *out[3].DividendYield, 1e-9)
	assert.Equal(t, SourceNone, out[0].ValuationSource)
}

func TestCalculateValuationMetrics_PenceFix(t *testing.T) {
	e := newTestEngine()
	p := price("VOD.L", day(2024, 1, 2), 7000)
	p.Currency = domain.CurrencyPence

	out := e.CalculateValuationMetrics([]domain.PriceObservation{p}, nil, nil)

	require.Len(t, out, 1)
	assert.InDelta(t, 70, out[0].Close, 1e-9)
	assert.Equal(t, domain.CurrencyGBP, out[0].Currency)
}

func TestCalculateValuationMetrics_Empty(t *testing.T) {
	e := newTestEngine()
	assert.Empty(t, e.CalculateValuationMetrics(nil, nil, nil))
}

func TestValuationRecord_Tracked(t *testing.T) {
	rec := ValuationRecord{PriceObservation: price("A", day(2024, 1, 1), 10), RollingDividendSum: f(1)}
	tp := rec.Tracked()
	assert.Equal(t, "A", tp.Ticker)
	assert.InDelta(t, 1, *tp.RollingDividendSum, 1e-9)
}
