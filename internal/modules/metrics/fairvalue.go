package metrics

import (
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/utils"
	"github.com/aristath/qualitycore/pkg/formulas"
)

// CalculateFairValueHistory attaches a P/E based fair value to every row:
// the ticker's median P/E over the trailing years (measured from the latest
// date in rows) multiplied by the row's implied EPS. Ratios outside
// (0, MaxFairValuePE) are ignored for the median. Returns a copy of rows;
// rows without any valid date are returned without fair values.
func (e *Engine) CalculateFairValueHistory(rows []ValuationRecord, years int) []ValuationRecord {
	out := make([]ValuationRecord, len(rows))
	copy(out, rows)

	var maxDate time.Time
	for _, r := range out {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	if maxDate.IsZero() {
		e.log.Warn().Msg("Valuation rows have no valid dates, skipping fair value")
		return out
	}
	if years <= 0 {
		years = DefaultFairValueYears
	}
	start := maxDate.AddDate(0, 0, -years*365)

	samples := make(map[string][]float64)
	for _, r := range out {
		if r.Date.Before(start) || r.PERatio == nil {
			continue
		}
		if pe := *r.PERatio; pe > 0 && pe < MaxFairValuePE {
			samples[r.Ticker] = append(samples[r.Ticker], pe)
		}
	}

	medians := make(map[string]*float64, len(samples))
	for ticker, pes := range samples {
		if m, ok := formulas.Median(pes); ok {
			medians[ticker] = utils.Float(m)
		}
	}

	missing := 0
	for i := range out {
		r := &out[i]
		r.MedianPE = medians[r.Ticker]
		r.ImpliedEPS = utils.Div(utils.Float(r.Close), r.PERatio)
		r.FairValue = utils.Mul(r.ImpliedEPS, r.MedianPE)
		if r.FairValue == nil {
			missing++
		}
	}

	e.log.Debug().
		Int("rows", len(out)).
		Int("tickers_with_median", len(medians)).
		Int("rows_without_fair_value", missing).
		Str("window_start", start.Format(domain.DateLayout)).
		Msg("Calculated fair value history")
	return out
}
