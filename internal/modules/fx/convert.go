package fx

import (
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
)

// Column describes an amount column of row type T to convert.
// Set receives the converted value; nil amounts stay nil.
type Column[T any] struct {
	Name     string
	Date     func(T) time.Time
	Currency func(T) domain.Currency
	Amount   func(T) *float64
	Set      func(*T, *float64)
}

// ConvertToTarget returns a copy of rows, ordered by date, with col converted
// into the engine's target currency. Rows already in the target currency are
// copied unchanged. Rows whose currency has no rate on or before the row date
// keep their original amount.
func ConvertToTarget[T any](e *Engine, rows []T, col Column[T]) []T {
	out := make([]T, len(rows))
	copy(out, rows)

	foreign := make(map[domain.Currency]int)
	gaps := make(map[domain.Currency]int)

	for i := range out {
		amount := col.Amount(out[i])
		currency := col.Currency(out[i])
		if amount == nil || currency == e.target {
			col.Set(&out[i], amount)
			continue
		}

		foreign[currency]++
		r, ok := e.RateAsOf(currency, col.Date(out[i]))
		if !ok {
			gaps[currency]++
			col.Set(&out[i], amount)
			continue
		}
		v := *amount / r
		col.Set(&out[i], &v)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return col.Date(out[i]).Before(col.Date(out[j]))
	})

	if len(foreign) > 0 {
		e.log.Debug().
			Str("column", col.Name).
			Interface("currencies", foreign).
			Msg("Converting currencies")
	}
	for currency, n := range gaps {
		if e.Supports(currency) {
			e.log.Warn().
				Str("column", col.Name).
				Str("currency", string(currency)).
				Int("rows", n).
				Msg("No FX rate on or before row date, values kept in original currency")
			continue
		}
		e.log.Warn().
			Str("column", col.Name).
			Str("currency", string(currency)).
			Str("target", string(e.target)).
			Int("rows", n).
			Msg("No FX rate available, values kept in original currency")
	}

	return out
}
