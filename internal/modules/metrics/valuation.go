package metrics

import (
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/ttm"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/aristath/qualitycore/internal/utils"
)

// dividendWindow is the trailing window for the rolling dividend sum
var dividendWindow = timeseries.Window{Years: 1, MinCount: 1}

// ValuationRecord is a price row with the fundamentals known on that day
// attached and the valuation ratios derived from them.
type ValuationRecord struct {
	domain.PriceObservation

	// Latest annual report on or before Date
	ReportDate     *time.Time `json:"report_date,omitempty"`
	EPSAnnual      *float64   `json:"eps_annual,omitempty"`
	RevenueAnnual  *float64   `json:"revenue_annual,omitempty"`
	FCFAnnual      *float64   `json:"fcf_annual,omitempty"`
	SharesAnnual   *float64   `json:"shares_annual,omitempty"`
	DividendAnnual *float64   `json:"dividend_annual,omitempty"`

	// Latest TTM figure on or before Date
	ReportDateTTM *time.Time `json:"report_date_ttm,omitempty"`
	EPSTTM        *float64   `json:"eps_ttm,omitempty"`
	RevenueTTM    *float64   `json:"revenue_ttm,omitempty"`
	FCFTTM        *float64   `json:"fcf_ttm,omitempty"`
	NetIncomeTTM  *float64   `json:"net_income_ttm,omitempty"`
	SharesTTM     *float64   `json:"shares_ttm,omitempty"`

	EPS             *float64   `json:"eps,omitempty"`
	Shares          *float64   `json:"shares,omitempty"`
	MetricDate      *time.Time `json:"metric_date,omitempty"`
	PERatio         *float64   `json:"pe_ratio,omitempty"`
	PSRatio         *float64   `json:"ps_ratio,omitempty"`
	FCFYield        *float64   `json:"fcf_yield,omitempty"`
	DivYieldCalc    *float64   `json:"div_yield_calc,omitempty"`
	ValuationSource string     `json:"valuation_source"`
	DataLagDays     *int       `json:"data_lag_days,omitempty"`

	RollingDividendSum *float64 `json:"rolling_dividend_sum"`
	DividendYield      *float64 `json:"dividend_yield"`

	// Set by CalculateFairValueHistory
	MedianPE   *float64 `json:"median_pe,omitempty"`
	ImpliedEPS *float64 `json:"implied_eps,omitempty"`
	FairValue  *float64 `json:"fair_value,omitempty"`
}

// Tracked projects the record onto the portfolio engine input
func (v ValuationRecord) Tracked() domain.TrackedPrice {
	return domain.TrackedPrice{
		PriceObservation:   v.PriceObservation,
		RollingDividendSum: v.RollingDividendSum,
	}
}

type annualProjection struct {
	ticker     string
	reportDate time.Time
	eps        *float64
	revenue    *float64
	fcf        *float64
	shares     *float64
	dividend   *float64
}

func (a annualProjection) Key() string   { return a.ticker }
func (a annualProjection) At() time.Time { return a.reportDate }

type ttmProjection struct {
	ticker     string
	reportDate time.Time
	eps        *float64
	revenue    *float64
	fcf        *float64
	netIncome  *float64
	shares     *float64
}

func (p ttmProjection) Key() string   { return p.ticker }
func (p ttmProjection) At() time.Time { return p.reportDate }

func projectAnnual(reports []domain.FinancialReport) []annualProjection {
	out := make([]annualProjection, 0, len(reports))
	for _, r := range reports {
		r = FixPenceReport(r)
		out = append(out, annualProjection{
			ticker:     r.Ticker,
			reportDate: r.ReportDate,
			eps:        r.DilutedEPS,
			revenue:    r.Revenue,
			fcf:        r.FreeCashFlow,
			// diluted for a conservative valuation
			shares:   utils.Coalesce(r.DilutedAverageShares, r.BasicAverageShares),
			dividend: utils.Abs(r.CashDividendsPaid),
		})
	}
	return out
}

func projectTTM(records []ttm.Record) []ttmProjection {
	out := make([]ttmProjection, 0, len(records))
	for _, r := range records {
		out = append(out, ttmProjection{
			ticker:     r.Ticker,
			reportDate: r.ReportDate,
			eps:        r.DilutedEPS,
			revenue:    r.Revenue,
			fcf:        r.FreeCashFlow,
			netIncome:  r.NetIncome,
			shares:     utils.Coalesce(r.ShareIssued, r.DilutedAverageShares, r.BasicAverageShares),
		})
	}
	return out
}

// CalculateValuationMetrics merges annual and TTM fundamentals onto daily prices.
// Each price row sees only reports dated on or before it. TTM figures take
// precedence; annual figures fill in when no TTM figure is known. quarterly may
// be nil. The result is ordered by (ticker, date).
func (e *Engine) CalculateValuationMetrics(
	prices []domain.PriceObservation,
	annual []domain.FinancialReport,
	quarterly []domain.FinancialReport,
) []ValuationRecord {
	if len(prices) == 0 {
		e.log.Warn().Msg("No price rows, skipping valuation metrics")
		return []ValuationRecord{}
	}

	done := utils.OperationTimer("valuation_metrics", e.log)

	var annualIdx *timeseries.AsofIndex[annualProjection]
	if len(annual) > 0 {
		annualIdx = timeseries.NewAsofIndex(projectAnnual(annual))
	}

	var ttmIdx *timeseries.AsofIndex[ttmProjection]
	if len(quarterly) > 0 {
		ttmIdx = timeseries.NewAsofIndex(projectTTM(e.ttm.CalculateHistory(quarterly)))
	}

	fixed := make([]domain.PriceObservation, len(prices))
	for i, p := range prices {
		fixed[i] = FixPencePrice(p)
	}
	tickers, groups := timeseries.GroupByKey(fixed)

	out := make([]ValuationRecord, 0, len(prices))
	for _, ticker := range tickers {
		series := groups[ticker]
		frames := timeseries.Rolling(series, dividendWindow)

		for i, p := range series {
			rec := ValuationRecord{PriceObservation: p}

			if a, ok := annualIdx.Lookup(ticker, p.Date); ok {
				rec.ReportDate = timePtr(a.reportDate)
				rec.EPSAnnual = a.eps
				rec.RevenueAnnual = a.revenue
				rec.FCFAnnual = a.fcf
				rec.SharesAnnual = a.shares
				rec.DividendAnnual = a.dividend
			}
			if t, ok := ttmIdx.Lookup(ticker, p.Date); ok {
				rec.ReportDateTTM = timePtr(t.reportDate)
				rec.EPSTTM = t.eps
				rec.RevenueTTM = t.revenue
				rec.FCFTTM = t.fcf
				rec.NetIncomeTTM = t.netIncome
				rec.SharesTTM = t.shares
			}

			deriveValuation(&rec)
			rec.RollingDividendSum = sumDividends(frames[i].Rows)
			rec.DividendYield = utils.Div(rec.RollingDividendSum, utils.Float(p.Close))

			out = append(out, rec)
		}
	}

	e.log.Debug().
		Int("prices", len(prices)).
		Int("annual_reports", annualIdx.Len()).
		Int("ttm_records", ttmIdx.Len()).
		Msg("Calculated valuation metrics")
	done(len(out))
	return out
}

func deriveValuation(rec *ValuationRecord) {
	closePrice := utils.Float(rec.Close)

	rec.EPS = utils.Coalesce(rec.EPSTTM, rec.EPSAnnual)
	rec.Shares = utils.Coalesce(rec.SharesTTM, rec.SharesAnnual)
	rec.MetricDate = rec.ReportDateTTM
	if rec.MetricDate == nil {
		rec.MetricDate = rec.ReportDate
	}

	revenue := utils.Coalesce(rec.RevenueTTM, rec.RevenueAnnual)
	fcf := utils.Coalesce(rec.FCFTTM, rec.FCFAnnual)

	rec.PERatio = utils.Div(closePrice, rec.EPS)
	rec.PSRatio = utils.Div(closePrice, utils.Div(revenue, rec.Shares))
	rec.FCFYield = utils.Div(utils.Div(fcf, rec.Shares), closePrice)
	rec.DivYieldCalc = utils.Div(utils.Div(rec.DividendAnnual, rec.Shares), closePrice)

	switch {
	case rec.EPSTTM != nil:
		rec.ValuationSource = SourceTTM
	case rec.EPSAnnual != nil:
		rec.ValuationSource = SourceAnnual
	default:
		rec.ValuationSource = SourceNone
	}

	if rec.MetricDate != nil {
		lag := int(rec.Date.Sub(*rec.MetricDate).Hours() / 24)
		rec.DataLagDays = &lag
	}
}

func sumDividends(rows []domain.PriceObservation) *float64 {
	sum := 0.0
	for _, r := range rows {
		sum += r.Dividend
	}
	return utils.Float(sum)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
