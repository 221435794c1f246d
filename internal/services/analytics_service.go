// Package services wires the history store to the analytics engines.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/fx"
	"github.com/aristath/qualitycore/internal/modules/history"
	"github.com/aristath/qualitycore/internal/modules/metrics"
	"github.com/aristath/qualitycore/internal/modules/performance"
	"github.com/aristath/qualitycore/internal/modules/portfolio"
	"github.com/aristath/qualitycore/internal/modules/ttm"
	"github.com/rs/zerolog"
)

// ErrPortfolioNotFound is returned for a portfolio name that is not configured
var ErrPortfolioNotFound = errors.New("portfolio not found")

// HistoryReader is the read side of the history store
type HistoryReader interface {
	GetPrices(ctx context.Context, q history.PriceQuery) ([]domain.PriceObservation, error)
	GetReports(ctx context.Context, period domain.PeriodType, tickers []string) ([]domain.FinancialReport, error)
}

// Options configures AnalyticsService
type Options struct {
	TargetCurrency domain.Currency
	FairValueYears int
}

// AnalyticsService loads inputs from the history store and runs the engines on them
type AnalyticsService struct {
	store      HistoryReader
	portfolios map[string]*domain.Portfolio
	names      []string
	opts       Options

	ttm       *ttm.Engine
	metrics   *metrics.Engine
	portfolio *portfolio.Engine
	log       zerolog.Logger
}

// NewAnalyticsService creates the service. portfolios must already be validated.
func NewAnalyticsService(store HistoryReader, portfolios []domain.Portfolio, opts Options, log zerolog.Logger) *AnalyticsService {
	if opts.TargetCurrency == "" {
		opts.TargetCurrency = domain.CurrencyEUR
	}
	if opts.FairValueYears <= 0 {
		opts.FairValueYears = metrics.DefaultFairValueYears
	}

	byName := make(map[string]*domain.Portfolio, len(portfolios))
	names := make([]string, 0, len(portfolios))
	for i := range portfolios {
		p := portfolios[i]
		byName[p.Name] = &p
		names = append(names, p.Name)
	}
	sort.Strings(names)

	ttmEngine := ttm.NewEngine(log)
	return &AnalyticsService{
		store:      store,
		portfolios: byName,
		names:      names,
		opts:       opts,
		ttm:        ttmEngine,
		metrics:    metrics.NewEngine(ttmEngine, log),
		portfolio:  portfolio.NewEngine(log),
		log:        log.With().Str("service", "analytics").Logger(),
	}
}

// Portfolios returns the configured portfolios ordered by name
func (s *AnalyticsService) Portfolios() []domain.Portfolio {
	out := make([]domain.Portfolio, 0, len(s.names))
	for _, name := range s.names {
		out = append(out, *s.portfolios[name])
	}
	return out
}

// Portfolio returns one configured portfolio
func (s *AnalyticsService) Portfolio(name string) (*domain.Portfolio, error) {
	p, ok := s.portfolios[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPortfolioNotFound, name)
	}
	return p, nil
}

// Valuation returns daily valuation metrics for a ticker with fair value over
// the trailing years (years <= 0 uses the configured default)
func (s *AnalyticsService) Valuation(ctx context.Context, ticker string, years int) ([]metrics.ValuationRecord, error) {
	if years <= 0 {
		years = s.opts.FairValueYears
	}

	tickers := []string{ticker}
	prices, err := s.store.GetPrices(ctx, history.PriceQuery{Tickers: tickers})
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for %s: %w", ticker, err)
	}
	annual, quarterly, err := s.loadReports(ctx, tickers)
	if err != nil {
		return nil, err
	}

	rows := s.metrics.CalculateValuationMetrics(prices, annual, quarterly)
	return s.metrics.CalculateFairValueHistory(rows, years), nil
}

// Fundamentals returns enriched fundamental ratios of one period type
func (s *AnalyticsService) Fundamentals(ctx context.Context, ticker string, period domain.PeriodType) ([]metrics.FundamentalRecord, error) {
	reports, err := s.store.GetReports(ctx, period, []string{ticker})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s reports for %s: %w", period, ticker, err)
	}
	return s.metrics.CalculateFundamentalMetrics(reports), nil
}

// TTM returns the trailing-twelve-month history of a ticker
func (s *AnalyticsService) TTM(ctx context.Context, ticker string) ([]ttm.Record, error) {
	reports, err := s.store.GetReports(ctx, domain.PeriodQuarterly, []string{ticker})
	if err != nil {
		return nil, fmt.Errorf("failed to load quarterly reports for %s: %w", ticker, err)
	}
	return s.ttm.CalculateHistory(reports), nil
}

// Growth returns period-over-period growth of the given fields on annual reports
func (s *AnalyticsService) Growth(ctx context.Context, ticker string, fields []domain.Field, period int) ([]metrics.GrowthRecord, error) {
	reports, err := s.store.GetReports(ctx, domain.PeriodAnnual, []string{ticker})
	if err != nil {
		return nil, fmt.Errorf("failed to load annual reports for %s: %w", ticker, err)
	}
	return s.metrics.CalculateGrowthMetrics(reports, fields, period), nil
}

// Convert converts a single amount into the target currency as of date
func (s *AnalyticsService) Convert(ctx context.Context, amount float64, date time.Time, currency domain.Currency) (float64, error) {
	engine, err := s.fxEngine(ctx, time.Time{}, date)
	if err != nil {
		return 0, err
	}
	return engine.ConvertAmount(amount, date, currency), nil
}

// Currencies returns the currencies with stored exchange rates
func (s *AnalyticsService) Currencies(ctx context.Context) ([]domain.Currency, error) {
	engine, err := s.fxEngine(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return engine.Currencies(), nil
}

// PortfolioHistory returns the converted daily history of a portfolio with
// year-over-year returns attached
func (s *AnalyticsService) PortfolioHistory(ctx context.Context, name string) ([]performance.Record, error) {
	p, err := s.Portfolio(name)
	if err != nil {
		return nil, err
	}

	tickers := p.Tickers()
	prices, err := s.store.GetPrices(ctx, history.PriceQuery{Tickers: tickers})
	if err != nil {
		return nil, fmt.Errorf("failed to load prices for portfolio %s: %w", name, err)
	}
	tracked := s.trackPrices(prices)

	engine, err := s.fxEngine(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	raw, err := s.portfolio.CalculateHistory(p, tracked, engine)
	if err != nil {
		return nil, err
	}
	return performance.AttachYearOverYear(performance.ConvertHistory(raw, engine)), nil
}

// PortfolioKPIs returns the headline KPIs of a portfolio and the latest date they cover
func (s *AnalyticsService) PortfolioKPIs(ctx context.Context, name string) (performance.KPIs, error) {
	records, err := s.PortfolioHistory(ctx, name)
	if err != nil {
		return performance.KPIs{}, err
	}
	return performance.CalculateKPIs(records), nil
}

func (s *AnalyticsService) loadReports(ctx context.Context, tickers []string) (annual, quarterly []domain.FinancialReport, err error) {
	annual, err = s.store.GetReports(ctx, domain.PeriodAnnual, tickers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load annual reports: %w", err)
	}
	quarterly, err = s.store.GetReports(ctx, domain.PeriodQuarterly, tickers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load quarterly reports: %w", err)
	}
	return annual, quarterly, nil
}

// trackPrices attaches the trailing one-year dividend sum to every price row
func (s *AnalyticsService) trackPrices(prices []domain.PriceObservation) []domain.TrackedPrice {
	rows := s.metrics.CalculateValuationMetrics(prices, nil, nil)
	tracked := make([]domain.TrackedPrice, len(rows))
	for i, r := range rows {
		tracked[i] = r.Tracked()
	}
	return tracked
}

func (s *AnalyticsService) fxEngine(ctx context.Context, from, to time.Time) (*fx.Engine, error) {
	tickers := make([]string, 0, len(fx.SupportedCurrencyTickers))
	for _, t := range fx.SupportedCurrencyTickers {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	rates, err := s.store.GetPrices(ctx, history.PriceQuery{Tickers: tickers, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	engine, err := fx.NewEngine(rates, s.opts.TargetCurrency, s.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create fx engine: %w", err)
	}
	return engine, nil
}
