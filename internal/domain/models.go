// Package domain provides the core data model consumed and produced by the analytics engines.
package domain

import "time"

// Currency represents an ISO currency code (or a vendor quirk such as "GBp")
type Currency string

const (
	CurrencyEUR   Currency = "EUR"
	CurrencyUSD   Currency = "USD"
	CurrencyGBP   Currency = "GBP"
	CurrencyPence Currency = "GBp" // London listings quoted in pence
	CurrencyCHF   Currency = "CHF"
	CurrencyJPY   Currency = "JPY"
	CurrencyDKK   Currency = "DKK"
	CurrencySEK   Currency = "SEK"
)

// PeriodType distinguishes annual (10-K) from quarterly (10-Q) reports
type PeriodType string

const (
	PeriodAnnual    PeriodType = "annual"
	PeriodQuarterly PeriodType = "quarterly"
)

// DateLayout is the ISO date format used for dates on every external surface
const DateLayout = "2006-01-02"

// PriceObservation is one trading day for one ticker.
// Unique per (Ticker, Date). Dividend is 0 on days without a distribution.
type PriceObservation struct {
	Date     time.Time `json:"date"`
	Ticker   string    `json:"ticker"`
	Currency Currency  `json:"currency"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
	Dividend float64   `json:"dividend"`
}

// TrackedPrice is a price row annotated with its trailing 12-month dividend sum.
// RollingDividendSum is nil when dividends were never evaluated for the row.
type TrackedPrice struct {
	PriceObservation
	RollingDividendSum *float64 `json:"rolling_dividend_sum,omitempty"`
}

// FinancialReport is an immutable point-in-time filing.
// Unique per (Ticker, ReportDate, PeriodType). Every figure may be absent (nil).
type FinancialReport struct {
	ReportDate time.Time  `json:"report_date"`
	Ticker     string     `json:"ticker"`
	PeriodType PeriodType `json:"period_type"`
	Currency   Currency   `json:"currency"`

	// Income statement
	Revenue         *float64 `json:"revenue,omitempty"`
	GrossProfit     *float64 `json:"gross_profit,omitempty"`
	EBIT            *float64 `json:"ebit,omitempty"`
	NetIncome       *float64 `json:"net_income,omitempty"`
	TaxProvision    *float64 `json:"tax_provision,omitempty"`
	InterestExpense *float64 `json:"interest_expense,omitempty"`

	// Per share
	DilutedEPS *float64 `json:"diluted_eps,omitempty"`
	BasicEPS   *float64 `json:"basic_eps,omitempty"`

	// Cash flow
	OperatingCashFlow  *float64 `json:"operating_cash_flow,omitempty"`
	CapitalExpenditure *float64 `json:"capital_expenditure,omitempty"`
	FreeCashFlow       *float64 `json:"free_cash_flow,omitempty"`
	CashDividendsPaid  *float64 `json:"cash_dividends_paid,omitempty"`

	// Shares
	BasicAverageShares   *float64 `json:"basic_average_shares,omitempty"`
	DilutedAverageShares *float64 `json:"diluted_average_shares,omitempty"`
	ShareIssued          *float64 `json:"share_issued,omitempty"`

	// Balance sheet (snapshot at ReportDate)
	TotalAssets                 *float64 `json:"total_assets,omitempty"`
	TotalCurrentLiabilities     *float64 `json:"total_current_liabilities,omitempty"`
	TotalEquity                 *float64 `json:"total_equity,omitempty"`
	LongTermDebt                *float64 `json:"long_term_debt,omitempty"`
	ShortTermDebt               *float64 `json:"short_term_debt,omitempty"`
	TotalDebt                   *float64 `json:"total_debt,omitempty"`
	CashAndEquivalents          *float64 `json:"cash_and_equivalents,omitempty"`
	Goodwill                    *float64 `json:"goodwill,omitempty"`
	IntangibleAssets            *float64 `json:"intangible_assets,omitempty"`
	GoodwillAndIntangibleAssets *float64 `json:"goodwill_and_intangible_assets,omitempty"`
}

// Key returns the ticker
func (p PriceObservation) Key() string { return p.Ticker }

// At returns the trading date
func (p PriceObservation) At() time.Time { return p.Date }

// Key returns the ticker
func (r FinancialReport) Key() string { return r.Ticker }

// At returns the report date
func (r FinancialReport) At() time.Time { return r.ReportDate }
