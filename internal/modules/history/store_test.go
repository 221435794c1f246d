package history

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	testingpkg "github.com/aristath/qualitycore/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	db, cleanup := testingpkg.NewTestDB(t, "history")
	t.Cleanup(cleanup)
	return NewStore(db.Conn(), zerolog.Nop())
}

func TestStore_PricesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	prices := testingpkg.NewPriceFixtures()
	require.NoError(t, store.UpsertPrices(ctx, prices))

	got, err := store.GetPrices(ctx, PriceQuery{Tickers: []string{"AAPL"}})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, p := range got {
		assert.Equal(t, "AAPL", p.Ticker)
		assert.Equal(t, domain.CurrencyUSD, p.Currency)
		if i > 0 {
			assert.True(t, p.Date.After(got[i-1].Date))
		}
	}
	assert.Equal(t, testingpkg.FixtureStart, got[0].Date)
	assert.InDelta(t, 100.0, got[0].Close, 1e-9)
}

func TestStore_PricesDateRange(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertPrices(ctx, testingpkg.NewPriceFixtures()))

	from := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC)
	got, err := store.GetPrices(ctx, PriceQuery{Tickers: []string{"ASML", "AAPL"}, From: from, To: to})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, p := range got {
		assert.False(t, p.Date.Before(from))
		assert.False(t, p.Date.After(to))
	}
	// ordered by ticker first
	assert.Equal(t, "AAPL", got[0].Ticker)
	assert.Equal(t, "ASML", got[len(got)-1].Ticker)
}

func TestStore_UpsertReplacesExistingPrice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	p := domain.PriceObservation{Date: day, Ticker: "X", Currency: domain.CurrencyEUR, Close: 1, AdjClose: 1}
	require.NoError(t, store.UpsertPrices(ctx, []domain.PriceObservation{p}))
	p.Close = 2
	require.NoError(t, store.UpsertPrices(ctx, []domain.PriceObservation{p}))

	got, err := store.GetPrices(ctx, PriceQuery{Tickers: []string{"X"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Close)
}

func TestStore_ReportsKeepNulls(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertReports(ctx, testingpkg.NewQuarterlyReportFixtures()))
	require.NoError(t, store.UpsertReports(ctx, testingpkg.NewAnnualReportFixtures()))

	quarterly, err := store.GetReports(ctx, domain.PeriodQuarterly, nil)
	require.NoError(t, err)
	require.Len(t, quarterly, 8)

	first := quarterly[0]
	assert.Equal(t, domain.PeriodQuarterly, first.PeriodType)
	require.NotNil(t, first.Revenue)
	assert.Equal(t, 100.0, *first.Revenue)
	assert.Nil(t, first.Goodwill)
	assert.Nil(t, first.TaxProvision)

	annual, err := store.GetReports(ctx, domain.PeriodAnnual, []string{"AAPL"})
	require.NoError(t, err)
	assert.Len(t, annual, 2)

	none, err := store.GetReports(ctx, domain.PeriodAnnual, []string{"MSFT"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Tickers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.UpsertPrices(ctx, testingpkg.NewPriceFixtures()))

	tickers, err := store.Tickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "ASML", "EURUSD=X"}, tickers)
}

func TestStore_EmptyUpsertIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.UpsertPrices(context.Background(), nil))
	assert.NoError(t, store.UpsertReports(context.Background(), nil))
}
