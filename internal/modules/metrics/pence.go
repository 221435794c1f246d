package metrics

import (
	"strings"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/utils"
)

// LondonSuffix marks tickers listed on the London Stock Exchange
const LondonSuffix = ".L"

// penceReportFields are the report fields the vendor quotes in pence for London listings
var penceReportFields = []domain.Field{domain.FieldCashDividendsPaid}

func isPenceListing(ticker string, currency domain.Currency) bool {
	return currency == domain.CurrencyPence && strings.HasSuffix(ticker, LondonSuffix)
}

func fixCurrency(c domain.Currency) domain.Currency {
	if c == domain.CurrencyPence {
		return domain.CurrencyGBP
	}
	return c
}

// FixPencePrice converts a London price row quoted in pence into pounds,
// dividend included. Any "GBp" currency code is rewritten to "GBP".
func FixPencePrice(p domain.PriceObservation) domain.PriceObservation {
	if isPenceListing(p.Ticker, p.Currency) {
		p.Open /= 100
		p.High /= 100
		p.Low /= 100
		p.Close /= 100
		p.AdjClose /= 100
		p.Dividend /= 100
	}
	p.Currency = fixCurrency(p.Currency)
	return p
}

// FixPenceReport applies the pence correction to a financial report
func FixPenceReport(r domain.FinancialReport) domain.FinancialReport {
	if isPenceListing(r.Ticker, r.Currency) {
		for _, f := range penceReportFields {
			r.SetValue(f, utils.Scale(r.Value(f), 0.01))
		}
	}
	r.Currency = fixCurrency(r.Currency)
	return r
}
