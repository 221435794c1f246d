// Package history persists the raw market data (daily prices and financial
// reports) that feeds the analytics engines.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/qualitycore/internal/database"
	"github.com/aristath/qualitycore/internal/domain"
	"github.com/rs/zerolog"
)

// Store reads and writes the history database
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStore creates a history store on an already migrated connection
func NewStore(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "history_store").Logger(),
	}
}

// dates are stored as unix seconds at UTC midnight
func toUnix(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

// inClause returns " AND <column> IN (?,?,...)" and its args, or nothing for no values
func inClause(column string, values []string) (string, []interface{}) {
	if len(values) == 0 {
		return "", nil
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return fmt.Sprintf(" AND %s IN (%s)", column, strings.TrimSuffix(strings.Repeat("?,", len(values)), ",")), args
}

// UpsertPrices inserts or replaces price rows keyed by (ticker, date)
func (s *Store) UpsertPrices(ctx context.Context, prices []domain.PriceObservation) error {
	if len(prices) == 0 {
		return nil
	}

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO daily_prices
			(ticker, date, currency, open, high, low, close, adj_close, volume, dividend)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare price insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range prices {
			_, err := stmt.ExecContext(ctx,
				p.Ticker, toUnix(p.Date), string(p.Currency),
				p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume, p.Dividend,
			)
			if err != nil {
				return fmt.Errorf("failed to insert price %s %s: %w", p.Ticker, p.Date.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("rows", len(prices)).Msg("Upserted daily prices")
	return nil
}

// PriceQuery filters GetPrices. Zero values mean no filter.
type PriceQuery struct {
	Tickers []string
	From    time.Time
	To      time.Time
}

// GetPrices returns price rows ordered by (ticker, date)
func (s *Store) GetPrices(ctx context.Context, q PriceQuery) ([]domain.PriceObservation, error) {
	query := `
		SELECT ticker, date, currency, open, high, low, close, adj_close, volume, dividend
		FROM daily_prices
		WHERE 1 = 1`
	clause, args := inClause("ticker", q.Tickers)
	query += clause
	if !q.From.IsZero() {
		query += " AND date >= ?"
		args = append(args, toUnix(q.From))
	}
	if !q.To.IsZero() {
		query += " AND date <= ?"
		args = append(args, toUnix(q.To))
	}
	query += " ORDER BY ticker, date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	prices := make([]domain.PriceObservation, 0)
	for rows.Next() {
		var p domain.PriceObservation
		var date int64
		var currency string
		if err := rows.Scan(&p.Ticker, &date, &currency, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume, &p.Dividend); err != nil {
			return nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		p.Date = fromUnix(date)
		p.Currency = domain.Currency(currency)
		prices = append(prices, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily prices: %w", err)
	}
	return prices, nil
}

// Tickers returns every ticker with price data, sorted
func (s *Store) Tickers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT ticker FROM daily_prices ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to query tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}
