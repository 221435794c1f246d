package metrics

import (
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/rs/zerolog"
)

func f(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestEngine() *Engine {
	return NewEngine(nil, zerolog.Nop())
}

func price(ticker string, date time.Time, closePrice float64) domain.PriceObservation {
	return domain.PriceObservation{
		Ticker:   ticker,
		Date:     date,
		Currency: domain.CurrencyUSD,
		Open:     closePrice,
		High:     closePrice,
		Low:      closePrice,
		Close:    closePrice,
		AdjClose: closePrice,
	}
}
