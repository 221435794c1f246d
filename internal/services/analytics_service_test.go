package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/history"
	testingpkg "github.com/aristath/qualitycore/internal/testing"
	"github.com/aristath/qualitycore/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore serves fixtures the way the sqlite store does
type memoryStore struct {
	prices  []domain.PriceObservation
	reports []domain.FinancialReport
	err     error
}

func (m *memoryStore) GetPrices(_ context.Context, q history.PriceQuery) ([]domain.PriceObservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[string]bool, len(q.Tickers))
	for _, t := range q.Tickers {
		wanted[t] = true
	}
	out := make([]domain.PriceObservation, 0)
	for _, p := range m.prices {
		if len(wanted) > 0 && !wanted[p.Ticker] {
			continue
		}
		if !q.From.IsZero() && p.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && p.Date.After(q.To) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryStore) GetReports(_ context.Context, period domain.PeriodType, tickers []string) ([]domain.FinancialReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.FinancialReport, 0)
	for _, r := range m.reports {
		if r.PeriodType != period {
			continue
		}
		if len(tickers) > 0 && r.Ticker != tickers[0] {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func newTestService(t *testing.T, store HistoryReader) *AnalyticsService {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return NewAnalyticsService(store, []domain.Portfolio{*testingpkg.NewPortfolioFixture()}, Options{}, log)
}

func fixtureStore() *memoryStore {
	reports := append(testingpkg.NewQuarterlyReportFixtures(), testingpkg.NewAnnualReportFixtures()...)
	return &memoryStore{prices: testingpkg.NewPriceFixtures(), reports: reports}
}

func TestAnalyticsService_PortfolioLookup(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	portfolios := svc.Portfolios()
	require.Len(t, portfolios, 1)
	assert.Equal(t, "core", portfolios[0].Name)

	_, err := svc.Portfolio("missing")
	assert.ErrorIs(t, err, ErrPortfolioNotFound)
}

func TestAnalyticsService_Valuation(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	rows, err := svc.Valuation(context.Background(), "AAPL", 0)
	require.NoError(t, err)
	require.NotEmpty(t, rows)

	last := rows[len(rows)-1]
	assert.Equal(t, "AAPL", last.Ticker)
	require.NotNil(t, last.EPS)
	// TTM diluted EPS is the sum of four quarters of 1.0
	assert.InDelta(t, 4.0, *last.EPS, 1e-9)
	assert.NotNil(t, last.PERatio)
	assert.NotNil(t, last.FairValue)
}

func TestAnalyticsService_TTMAndFundamentals(t *testing.T) {
	svc := newTestService(t, fixtureStore())
	ctx := context.Background()

	records, err := svc.TTM(ctx, "AAPL")
	require.NoError(t, err)
	require.Len(t, records, 5)
	require.NotNil(t, records[0].Revenue)
	assert.InDelta(t, 100+110+120+130, *records[0].Revenue, 1e-9)

	fundamentals, err := svc.Fundamentals(ctx, "AAPL", domain.PeriodAnnual)
	require.NoError(t, err)
	require.Len(t, fundamentals, 2)
	assert.NotNil(t, fundamentals[0].ROCE)
}

func TestAnalyticsService_Growth(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	rows, err := svc.Growth(context.Background(), "AAPL", []domain.Field{domain.FieldRevenue}, 1)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[0].Growth[domain.FieldRevenue])
	require.NotNil(t, rows[1].Growth[domain.FieldRevenue])
	assert.InDelta(t, 0.25, *rows[1].Growth[domain.FieldRevenue], 1e-9)
}

func TestAnalyticsService_Convert(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	got, err := svc.Convert(context.Background(), 100, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), domain.CurrencyUSD)
	require.NoError(t, err)
	assert.InDelta(t, 90.91, got, 0.01)
}

func TestAnalyticsService_Currencies(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	got, err := svc.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Currency{domain.CurrencyUSD}, got)
}

func TestAnalyticsService_PortfolioKPIs(t *testing.T) {
	svc := newTestService(t, fixtureStore())

	kpis, err := svc.PortfolioKPIs(context.Background(), "core")
	require.NoError(t, err)
	assert.InDelta(t, 10000, kpis.StartValue, 1e-6)
	assert.Greater(t, kpis.CurrentValue, kpis.StartValue)
	assert.Equal(t, testingpkg.FixtureStart.Format(domain.DateLayout), kpis.StartDate)
}

func TestAnalyticsService_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	svc := newTestService(t, &memoryStore{err: boom})

	_, err := svc.Valuation(context.Background(), "AAPL", 5)
	assert.ErrorIs(t, err, boom)

	_, err = svc.PortfolioHistory(context.Background(), "core")
	assert.ErrorIs(t, err, boom)
}
