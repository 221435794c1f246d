package metrics

import (
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/timeseries"
	"github.com/aristath/qualitycore/internal/utils"
)

// GrowthRecord is a report with period-over-period growth rates per requested field
type GrowthRecord struct {
	domain.FinancialReport
	Growth map[domain.Field]*float64 `json:"growth"`
}

// CalculateGrowthMetrics computes value[t]/value[t-period] - 1 for each field,
// per ticker in report date order. The first period rows of every ticker have
// nil growth. Output is ordered by (ticker, report_date).
func (e *Engine) CalculateGrowthMetrics(reports []domain.FinancialReport, fields []domain.Field, period int) []GrowthRecord {
	if period < 1 {
		period = 1
	}

	tickers, groups := timeseries.GroupByKey(reports)
	out := make([]GrowthRecord, 0, len(reports))
	for _, ticker := range tickers {
		series := groups[ticker]
		for i := range series {
			rec := GrowthRecord{
				FinancialReport: series[i],
				Growth:          make(map[domain.Field]*float64, len(fields)),
			}
			for _, f := range fields {
				if i < period {
					rec.Growth[f] = nil
					continue
				}
				ratio := utils.Div(series[i].Value(f), series[i-period].Value(f))
				rec.Growth[f] = utils.Sub(ratio, utils.Float(1))
			}
			out = append(out, rec)
		}
	}
	return out
}
