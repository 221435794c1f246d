// Package performance turns raw portfolio history into reporting-currency
// series, year-over-year returns and headline KPIs.
package performance

import (
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/fx"
	"github.com/aristath/qualitycore/internal/modules/portfolio"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/aristath/qualitycore/internal/utils"
)

// Record is a portfolio history row with reporting-currency values and
// year-over-year returns attached
type Record struct {
	portfolio.HistoryRecord

	TargetCurrency      domain.Currency `json:"target_currency"`
	PositionValueTarget *float64        `json:"position_value_target"`
	DividendYoYTarget   *float64        `json:"position_dividend_yoy_target"`

	YoYReturnPct      *float64 `json:"yoy_return_pct"`
	YoYTotalReturnPct *float64 `json:"yoy_total_return_pct"`
}

// DailyTotal is the portfolio value summed over tickers for one day
type DailyTotal struct {
	Date             time.Time `json:"date"`
	TotalValue       float64   `json:"total_value"`
	TotalDividendYoY float64   `json:"total_dividend_yoy"`
}

var positionValueColumn = fx.Column[Record]{
	Name:     "position_value",
	Date:     func(r Record) time.Time { return r.Date },
	Currency: func(r Record) domain.Currency { return r.Currency },
	Amount:   func(r Record) *float64 { return r.PositionValue },
	Set:      func(r *Record, v *float64) { r.PositionValueTarget = v },
}

var dividendColumn = fx.Column[Record]{
	Name:     "position_dividend_yoy",
	Date:     func(r Record) time.Time { return r.Date },
	Currency: func(r Record) domain.Currency { return r.Currency },
	Amount:   func(r Record) *float64 { return r.PositionDividendYoY },
	Set:      func(r *Record, v *float64) { r.DividendYoYTarget = v },
}

// ConvertHistory converts position and dividend values into the engine's
// target currency. The result is ordered by date.
func ConvertHistory(history []portfolio.HistoryRecord, e *fx.Engine) []Record {
	out := make([]Record, len(history))
	for i, h := range history {
		out[i] = Record{HistoryRecord: h, TargetCurrency: e.Target()}
	}
	out = fx.ConvertToTarget(e, out, positionValueColumn)
	return fx.ConvertToTarget(e, out, dividendColumn)
}

// yearAgo indexes a row by the date it becomes the year-ago comparison for
type yearAgo struct {
	ticker string
	match  time.Time
	value  *float64
}

func (y yearAgo) Key() string   { return y.ticker }
func (y yearAgo) At() time.Time { return y.match }

// addYear shifts t one calendar year, clamping to the end of the month so
// Feb 29 becomes Feb 28 instead of rolling over into March
func addYear(t time.Time) time.Time {
	next := t.AddDate(1, 0, 0)
	if next.Day() != t.Day() {
		// day 0 is the last day of the previous month
		return time.Date(next.Year(), next.Month(), 0, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return next
}

// AttachYearOverYear compares every row with the same ticker's latest row dated
// at least one year earlier. Rows without such a match, or with a zero base,
// get nil returns. Dividends over the trailing year count towards the total
// return. Input order is kept.
func AttachYearOverYear(records []Record) []Record {
	shifted := make([]yearAgo, 0, len(records))
	for _, r := range records {
		shifted = append(shifted, yearAgo{
			ticker: r.Ticker,
			match:  addYear(r.Date),
			value:  r.PositionValueTarget,
		})
	}
	idx := timeseries.NewAsofIndex(shifted)
	hundred := utils.Float(100)

	out := make([]Record, len(records))
	copy(out, records)
	for i := range out {
		r := &out[i]
		prev, ok := idx.Lookup(r.Ticker, r.Date)
		if !ok {
			continue
		}
		r.YoYReturnPct = utils.Mul(utils.Div(utils.Sub(r.PositionValueTarget, prev.value), prev.value), hundred)

		withDividends := utils.Add(r.PositionValueTarget, utils.ZeroIfNil(r.DividendYoYTarget))
		r.YoYTotalReturnPct = utils.Mul(utils.Div(utils.Sub(withDividends, prev.value), prev.value), hundred)
	}
	return out
}

// FilterCompleteDates keeps only the dates on which every ticker in records has
// a row, so exchange holidays do not show up as artificial value drops.
func FilterCompleteDates(records []Record) []Record {
	tickers := make(map[string]struct{})
	perDate := make(map[time.Time]map[string]struct{})
	for _, r := range records {
		tickers[r.Ticker] = struct{}{}
		if perDate[r.Date] == nil {
			perDate[r.Date] = make(map[string]struct{})
		}
		perDate[r.Date][r.Ticker] = struct{}{}
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if len(perDate[r.Date]) == len(tickers) {
			out = append(out, r)
		}
	}
	return out
}

// AggregateTotalValue sums reporting-currency values per date, ordered by date
func AggregateTotalValue(records []Record) []DailyTotal {
	totals := make(map[time.Time]*DailyTotal)
	for _, r := range records {
		t, ok := totals[r.Date]
		if !ok {
			t = &DailyTotal{Date: r.Date}
			totals[r.Date] = t
		}
		t.TotalValue += utils.OrZero(r.PositionValueTarget)
		t.TotalDividendYoY += utils.OrZero(r.DividendYoYTarget)
	}

	out := make([]DailyTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
