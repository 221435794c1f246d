// Package snapshots persists point-in-time KPI sets for configured portfolios.
package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/qualitycore/internal/modules/performance"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrNotFound is returned when a portfolio has no stored snapshot
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one stored KPI set
type Snapshot struct {
	ID        string           `json:"id"`
	Portfolio string           `json:"portfolio"`
	AsOf      time.Time        `json:"as_of"`
	CreatedAt time.Time        `json:"created_at"`
	KPIs      performance.KPIs `json:"kpis"`
}

// Repository stores snapshots in the snapshots database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

// Save encodes the KPIs and appends a new snapshot. The returned snapshot carries its id.
func (r *Repository) Save(ctx context.Context, portfolio string, asOf time.Time, kpis performance.KPIs) (*Snapshot, error) {
	payload, err := msgpack.Marshal(&kpis)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot for %s: %w", portfolio, err)
	}

	s := &Snapshot{
		ID:        uuid.New().String(),
		Portfolio: portfolio,
		AsOf:      asOf.UTC(),
		CreatedAt: time.Now().UTC(),
		KPIs:      kpis,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO portfolio_snapshots (id, portfolio, as_of, created_at, payload)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Portfolio, s.AsOf.Unix(), s.CreatedAt.UnixNano(), payload)
	if err != nil {
		return nil, fmt.Errorf("failed to insert snapshot for %s: %w", portfolio, err)
	}

	r.log.Debug().Str("portfolio", portfolio).Str("id", s.ID).Msg("Saved snapshot")
	return s, nil
}

// Latest returns the most recently created snapshot of a portfolio
func (r *Repository) Latest(ctx context.Context, portfolio string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, portfolio, as_of, created_at, payload
		FROM portfolio_snapshots
		WHERE portfolio = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, portfolio)

	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot for %s: %w", portfolio, err)
	}
	return s, nil
}

// List returns up to limit snapshots of a portfolio, newest first. limit <= 0 means all.
func (r *Repository) List(ctx context.Context, portfolio string, limit int) ([]Snapshot, error) {
	query := `
		SELECT id, portfolio, as_of, created_at, payload
		FROM portfolio_snapshots
		WHERE portfolio = ?
		ORDER BY created_at DESC`
	args := []interface{}{portfolio}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for %s: %w", portfolio, err)
	}
	defer rows.Close()

	result := make([]Snapshot, 0)
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(sc scanner) (*Snapshot, error) {
	var s Snapshot
	var asOf, createdAt int64
	var payload []byte
	if err := sc.Scan(&s.ID, &s.Portfolio, &asOf, &createdAt, &payload); err != nil {
		return nil, err
	}
	if err := msgpack.Unmarshal(payload, &s.KPIs); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.ID, err)
	}
	s.AsOf = time.Unix(asOf, 0).UTC()
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	return &s, nil
}
