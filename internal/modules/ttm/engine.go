// Package ttm turns quarterly filings into trailing-twelve-month figures.
package ttm

import (
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/aristath/qualitycore/internal/utils"
	"github.com/rs/zerolog"
)

// Quarters is the number of quarterly reports a TTM figure is built from
const Quarters = 4

// DefaultWindow covers four quarter-ends with slack for late filings
var DefaultWindow = timeseries.Window{Days: 395, MinCount: Quarters}

// FlowFields accumulate over a period; their TTM value is the sum of the last four quarters.
var FlowFields = []domain.Field{
	domain.FieldRevenue,
	domain.FieldGrossProfit,
	domain.FieldEBIT,
	domain.FieldNetIncome,
	domain.FieldOperatingCashFlow,
	domain.FieldCapitalExpenditure,
	domain.FieldFreeCashFlow,
	domain.FieldInterestExpense,
	domain.FieldCashDividendsPaid,
	domain.FieldDilutedEPS,
}

// PointFields are balance sheet snapshots; their TTM value is the latest quarter's.
var PointFields = []domain.Field{
	domain.FieldTotalAssets,
	domain.FieldTotalCurrentLiabilities,
	domain.FieldTotalEquity,
	domain.FieldLongTermDebt,
	domain.FieldShortTermDebt,
	domain.FieldTotalDebt,
	domain.FieldCashAndEquivalents,
	domain.FieldBasicAverageShares,
	domain.FieldDilutedAverageShares,
	domain.FieldShareIssued,
	domain.FieldGoodwill,
	domain.FieldIntangibleAssets,
	domain.FieldGoodwillAndIntangibleAssets,
}

// Record is a TTM figure set dated at the last contributing quarter.
// Fields outside FlowFields and PointFields are left nil.
type Record struct {
	domain.FinancialReport
	Quarters int `json:"quarters"`
}

// Engine calculates TTM history
type Engine struct {
	window timeseries.Window
	log    zerolog.Logger
}

// NewEngine creates a TTM engine using DefaultWindow
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		window: DefaultWindow,
		log:    log.With().Str("component", "ttm").Logger(),
	}
}

// CalculateHistory returns one Record per quarter-end that has at least four
// quarterly rows in its trailing window, ordered by (ticker, report_date).
// Rows without revenue and net income are ignored. The input is not modified.
func (e *Engine) CalculateHistory(quarterly []domain.FinancialReport) []Record {
	if len(quarterly) == 0 {
		e.log.Warn().Msg("TTM engine received no quarterly reports")
		return []Record{}
	}

	clean := make([]domain.FinancialReport, 0, len(quarterly))
	for _, r := range quarterly {
		if r.Revenue == nil && r.NetIncome == nil {
			continue
		}
		clean = append(clean, r)
	}
	if dropped := len(quarterly) - len(clean); dropped > 0 {
		e.log.Info().
			Int("dropped", dropped).
			Msg("Dropped quarterly rows without P&L data, balance sheet only rows cannot contribute to TTM")
	}
	if len(clean) == 0 {
		e.log.Warn().Msg("No valid quarterly data available for TTM calculation")
		return []Record{}
	}

	tickers, groups := timeseries.GroupByKey(clean)
	e.log.Debug().Int("tickers", len(tickers)).Msg("Calculating TTM metrics")

	out := make([]Record, 0, len(clean))
	for _, ticker := range tickers {
		reports := groups[ticker]
		frames := timeseries.Rolling(reports, e.window)
		if len(frames) == 0 {
			e.log.Warn().
				Str("ticker", ticker).
				Int("quarters", len(reports)).
				Msg("Not enough quarterly coverage for TTM")
			continue
		}
		for _, frame := range frames {
			out = append(out, aggregate(frame))
		}
	}
	return out
}

func aggregate(frame timeseries.Frame[domain.FinancialReport]) Record {
	last := frame.Rows[len(frame.Rows)-1]
	rec := Record{
		FinancialReport: domain.FinancialReport{
			Ticker:     last.Ticker,
			ReportDate: frame.End.ReportDate,
			PeriodType: last.PeriodType,
			Currency:   last.Currency,
		},
		Quarters: len(frame.Rows),
	}

	for _, f := range FlowFields {
		rec.SetValue(f, sumLast(frame.Rows, f, Quarters))
	}
	for _, f := range PointFields {
		rec.SetValue(f, last.Value(f))
	}
	return rec
}

// sumLast sums field f over the last n rows, skipping absent values.
// Returns nil when all n values are absent.
func sumLast(rows []domain.FinancialReport, f domain.Field, n int) *float64 {
	if len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	var sum *float64
	for _, r := range rows {
		v := r.Value(f)
		if v == nil {
			continue
		}
		sum = utils.Add(utils.ZeroIfNil(sum), v)
	}
	return sum
}
