package testing

import (
	"time"

	"github.com/aristath/qualitycore/internal/domain"
)

// FixtureStart is the first trading day of the price fixtures
var FixtureStart = time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

// NewPriceFixtures returns two years of weekday prices for AAPL (USD), ASML (EUR)
// and the EURUSD=X cross, with AAPL growing linearly and ASML flat.
func NewPriceFixtures() []domain.PriceObservation {
	prices := make([]domain.PriceObservation, 0)
	end := FixtureStart.AddDate(2, 0, 0)
	i := 0
	for d := FixtureStart; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		aapl := 100 + float64(i)*0.1
		prices = append(prices,
			newPrice("AAPL", domain.CurrencyUSD, d, aapl),
			newPrice("ASML", domain.CurrencyEUR, d, 600),
			newPrice("EURUSD=X", domain.CurrencyUSD, d, 1.1),
		)
		i++
	}

	// quarterly dividend on ASML
	for idx := range prices {
		p := &prices[idx]
		if p.Ticker == "ASML" && p.Date.Day() <= 7 && p.Date.Weekday() == time.Monday && int(p.Date.Month())%3 == 2 {
			p.Dividend = 1.5
		}
	}
	return prices
}

func newPrice(ticker string, currency domain.Currency, date time.Time, closePrice float64) domain.PriceObservation {
	return domain.PriceObservation{
		Date:     date,
		Ticker:   ticker,
		Currency: currency,
		Open:     closePrice,
		High:     closePrice,
		Low:      closePrice,
		Close:    closePrice,
		AdjClose: closePrice,
		Volume:   1000,
	}
}

// NewQuarterlyReportFixtures returns eight quarters of AAPL reports in USD
func NewQuarterlyReportFixtures() []domain.FinancialReport {
	reports := make([]domain.FinancialReport, 0, 8)
	for q := 0; q < 8; q++ {
		// day 0 of the following month is the quarter end
		date := time.Date(2022, time.Month(3*(q+1)+1), 0, 0, 0, 0, 0, time.UTC)
		reports = append(reports, domain.FinancialReport{
			ReportDate:              date,
			Ticker:                  "AAPL",
			PeriodType:              domain.PeriodQuarterly,
			Currency:                domain.CurrencyUSD,
			Revenue:                 floatPtr(100 + float64(q)*10),
			GrossProfit:             floatPtr(40),
			EBIT:                    floatPtr(30),
			NetIncome:               floatPtr(20),
			InterestExpense:         floatPtr(2),
			DilutedEPS:              floatPtr(1),
			OperatingCashFlow:       floatPtr(25),
			CapitalExpenditure:      floatPtr(-5),
			CashDividendsPaid:       floatPtr(-4),
			DilutedAverageShares:    floatPtr(20),
			TotalAssets:             floatPtr(1000),
			TotalCurrentLiabilities: floatPtr(300),
			TotalEquity:             floatPtr(400),
			TotalDebt:               floatPtr(200),
			CashAndEquivalents:      floatPtr(50),
		})
	}
	return reports
}

// NewAnnualReportFixtures returns two annual AAPL reports in USD
func NewAnnualReportFixtures() []domain.FinancialReport {
	reports := make([]domain.FinancialReport, 0, 2)
	for y := 0; y < 2; y++ {
		reports = append(reports, domain.FinancialReport{
			ReportDate:              time.Date(2022+y, time.December, 31, 0, 0, 0, 0, time.UTC),
			Ticker:                  "AAPL",
			PeriodType:              domain.PeriodAnnual,
			Currency:                domain.CurrencyUSD,
			Revenue:                 floatPtr(400 + float64(y)*100),
			EBIT:                    floatPtr(120),
			NetIncome:               floatPtr(80),
			DilutedEPS:              floatPtr(4),
			DilutedAverageShares:    floatPtr(20),
			TotalAssets:             floatPtr(1000),
			TotalCurrentLiabilities: floatPtr(300),
			TotalEquity:             floatPtr(400),
			TotalDebt:               floatPtr(200),
			CashAndEquivalents:      floatPtr(50),
		})
	}
	return reports
}

// NewPortfolioFixture returns a weighted EUR 10,000 portfolio over AAPL and ASML
func NewPortfolioFixture() *domain.Portfolio {
	return &domain.Portfolio{
		Name:           "core",
		DisplayName:    "Core",
		Type:           domain.PortfolioWeighted,
		StartDate:      FixtureStart.Format(domain.DateLayout),
		InitialCapital: floatPtr(10000),
		Positions:      []domain.Position{
			{Ticker: "AAPL", Weight: floatPtr(1), Group: "US"},
			{Ticker: "ASML", Weight: floatPtr(1), Group: "EU"},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
