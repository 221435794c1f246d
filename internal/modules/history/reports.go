package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aristath/qualitycore/internal/database"
	"github.com/aristath/qualitycore/internal/domain"
)

// column names come from the field registry so the schema and the domain type stay in one place
func reportColumns() []string {
	cols := []string{"ticker", "report_date", "period_type", "currency"}
	for _, f := range domain.AllFields {
		cols = append(cols, string(f))
	}
	return cols
}

// UpsertReports inserts or replaces reports keyed by (ticker, report_date, period_type)
func (s *Store) UpsertReports(ctx context.Context, reports []domain.FinancialReport) error {
	if len(reports) == 0 {
		return nil
	}

	cols := reportColumns()
	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO financial_reports (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "),
	)

	err := database.WithTransaction(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare report insert: %w", err)
		}
		defer stmt.Close()

		for i := range reports {
			r := &reports[i]
			args := make([]interface{}, 0, len(cols))
			args = append(args, r.Ticker, toUnix(r.ReportDate), string(r.PeriodType), string(r.Currency))
			for _, f := range domain.AllFields {
				if v := r.Value(f); v != nil {
					args = append(args, *v)
				} else {
					args = append(args, nil)
				}
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("failed to insert report %s %s: %w", r.Ticker, r.ReportDate.Format(domain.DateLayout), err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug().Int("rows", len(reports)).Msg("Upserted financial reports")
	return nil
}

// GetReports returns reports of one period type ordered by (ticker, report_date)
func (s *Store) GetReports(ctx context.Context, period domain.PeriodType, tickers []string) ([]domain.FinancialReport, error) {
	query := fmt.Sprintf("SELECT %s FROM financial_reports WHERE period_type = ?", strings.Join(reportColumns(), ", "))
	args := []interface{}{string(period)}
	clause, tickerArgs := inClause("ticker", tickers)
	query += clause + " ORDER BY ticker, report_date"
	args = append(args, tickerArgs...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query financial reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.FinancialReport, 0)
	for rows.Next() {
		var r domain.FinancialReport
		var date int64
		var periodType, currency string
		values := make([]sql.NullFloat64, len(domain.AllFields))

		dest := []interface{}{&r.Ticker, &date, &periodType, &currency}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan financial report: %w", err)
		}

		r.ReportDate = fromUnix(date)
		r.PeriodType = domain.PeriodType(periodType)
		r.Currency = domain.Currency(currency)
		for i, f := range domain.AllFields {
			if values[i].Valid {
				v := values[i].Float64
				r.SetValue(f, &v)
			}
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial reports: %w", err)
	}
	return reports, nil
}
