package metrics

import (
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/utils"
)

// FundamentalRecord is a report enriched with capital efficiency, leverage and
// margin metrics. FreeCashFlow on the embedded report holds the final value:
// the reported figure when present, else FCFCalculated.
type FundamentalRecord struct {
	domain.FinancialReport

	Debt                    *float64 `json:"debt,omitempty"`
	Intangibles             *float64 `json:"intangibles,omitempty"`
	CapitalEmployed         *float64 `json:"capital_employed,omitempty"`
	TangibleCapitalEmployed *float64 `json:"tangible_capital_employed,omitempty"`
	NetDebt                 *float64 `json:"net_debt,omitempty"`
	FCFCalculated           *float64 `json:"fcf_calculated,omitempty"`

	ROCE                *float64 `json:"roce,omitempty"`
	ROTCE               *float64 `json:"rotce,omitempty"`
	NetDebtToEBIT       *float64 `json:"net_debt_to_ebit,omitempty"`
	InterestCoverage    *float64 `json:"interest_coverage,omitempty"`
	NetProfitMargin     *float64 `json:"net_profit_margin,omitempty"`
	GrossMargin         *float64 `json:"gross_margin,omitempty"`
	EBITMargin          *float64 `json:"ebit_margin,omitempty"`
	CashConversionRatio *float64 `json:"cash_conversion_ratio,omitempty"`
}

// CalculateFundamentalMetrics enriches every report with derived ratios.
// The pence correction is applied first. Input order is kept.
func (e *Engine) CalculateFundamentalMetrics(reports []domain.FinancialReport) []FundamentalRecord {
	if len(reports) == 0 {
		e.log.Warn().Msg("No financial reports, skipping fundamental metrics")
		return []FundamentalRecord{}
	}

	done := utils.OperationTimer("fundamental_metrics", e.log)
	out := make([]FundamentalRecord, len(reports))
	for i, r := range reports {
		out[i] = Fundamentals(FixPenceReport(r))
	}
	done(len(out))
	return out
}

// Fundamentals derives the metric set for a single report
func Fundamentals(r domain.FinancialReport) FundamentalRecord {
	zero := utils.ZeroIfNil

	debt := utils.Coalesce(
		r.TotalDebt,
		utils.Add(zero(r.LongTermDebt), zero(r.ShortTermDebt)),
	)
	intangibles := utils.Coalesce(
		r.GoodwillAndIntangibleAssets,
		utils.Add(zero(r.Goodwill), zero(r.IntangibleAssets)),
	)
	cash := zero(r.CashAndEquivalents)

	capitalEmployed := utils.Sub(r.TotalAssets, r.TotalCurrentLiabilities)
	tangible := utils.Sub(utils.Sub(utils.Add(r.TotalEquity, debt), cash), intangibles)
	netDebt := utils.Sub(debt, cash)

	fcfCalculated := utils.Sub(r.OperatingCashFlow, utils.Abs(r.CapitalExpenditure))
	fcf := utils.Coalesce(r.FreeCashFlow, fcfCalculated)

	rec := FundamentalRecord{
		FinancialReport:         r,
		Debt:                    debt,
		Intangibles:             intangibles,
		CapitalEmployed:         capitalEmployed,
		TangibleCapitalEmployed: tangible,
		NetDebt:                 netDebt,
		FCFCalculated:           fcfCalculated,

		ROCE:                utils.Div(r.EBIT, capitalEmployed),
		NetDebtToEBIT:       utils.Div(netDebt, r.EBIT),
		InterestCoverage:    utils.Div(r.EBIT, utils.Abs(r.InterestExpense)),
		NetProfitMargin:     utils.Div(r.NetIncome, r.Revenue),
		GrossMargin:         utils.Div(r.GrossProfit, r.Revenue),
		EBITMargin:          utils.Div(r.EBIT, r.Revenue),
		CashConversionRatio: utils.Div(fcf, r.NetIncome),
	}
	if tangible != nil && *tangible > 0 {
		rec.ROTCE = utils.Div(r.EBIT, tangible)
	}
	rec.FreeCashFlow = fcf
	return rec
}
