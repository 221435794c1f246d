package performance

import (
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/pkg/formulas"
)

// NotAvailable is reported for dates of an empty history
const NotAvailable = "N/A"

// yoyLookbackDays is the trailing period of the year-over-year KPI
const yoyLookbackDays = 365

// KPIs are the headline figures of a portfolio
type KPIs struct {
	CurrentValue            float64  `json:"current_value"`
	CurrentYoYDividendValue float64  `json:"current_yoy_dividend_value"`
	StartValue              float64  `json:"start_value"`
	TotalReturnPct          float64  `json:"total_return_pct"`
	YoYReturnPct            float64  `json:"yoy_return_pct"`
	CAGRPct                 *float64 `json:"cagr_pct,omitempty"`
	AnnualizedVolatility    float64  `json:"annualized_volatility"`
	SharpeRatio             *float64 `json:"sharpe_ratio,omitempty"`
	MaxDrawdown             *float64 `json:"max_drawdown,omitempty"`
	StartDate               string   `json:"start_date"`
	LatestDate              string   `json:"latest_date"`
}

// CalculateKPIs summarizes converted history. Only dates with complete ticker
// coverage are considered. The year-over-year return covers the last 365 days
// and includes trailing dividends. Empty history yields zero KPIs.
func CalculateKPIs(records []Record) KPIs {
	daily := AggregateTotalValue(FilterCompleteDates(records))
	if len(daily) == 0 {
		return KPIs{StartDate: NotAvailable, LatestDate: NotAvailable}
	}

	first, last := daily[0], daily[len(daily)-1]
	k := KPIs{
		CurrentValue:            last.TotalValue,
		CurrentYoYDividendValue: last.TotalDividendYoY,
		StartValue:              first.TotalValue,
		StartDate:               first.Date.Format(domain.DateLayout),
		LatestDate:              last.Date.Format(domain.DateLayout),
	}

	if k.StartValue != 0 {
		k.TotalReturnPct = (k.CurrentValue - k.StartValue) / k.StartValue * 100
	}

	oneYearAgo := last.Date.AddDate(0, 0, -yoyLookbackDays)
	k.YoYReturnPct = k.TotalReturnPct
	for _, d := range daily {
		if d.Date.Before(oneYearAgo) {
			continue
		}
		if d.TotalValue != 0 {
			k.YoYReturnPct = (k.CurrentValue - d.TotalValue + k.CurrentYoYDividendValue) / d.TotalValue * 100
		} else {
			k.YoYReturnPct = 0
		}
		break
	}

	values := make([]float64, len(daily))
	for i, d := range daily {
		values[i] = d.TotalValue
	}
	returns := formulas.CalculateReturns(values)
	k.AnnualizedVolatility = formulas.AnnualizedVolatility(returns)
	// risk-free rate of zero
	k.SharpeRatio = formulas.SharpeRatio(returns, 0, formulas.TradingDaysPerYear)
	k.MaxDrawdown = formulas.MaxDrawdown(values)

	years := last.Date.Sub(first.Date).Hours() / 24 / 365.25
	if cagr := formulas.CAGR(k.StartValue, k.CurrentValue, years); cagr != nil {
		pct := *cagr * 100
		k.CAGRPct = &pct
	}
	return k
}
