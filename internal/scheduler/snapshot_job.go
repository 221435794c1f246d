package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/aristath/qualitycore/internal/modules/performance"
	"github.com/aristath/qualitycore/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// snapshotTimeout bounds one run over all portfolios
const snapshotTimeout = 5 * time.Minute

// KPISource computes portfolio KPIs
type KPISource interface {
	Portfolios() []domain.Portfolio
	PortfolioKPIs(ctx context.Context, name string) (performance.KPIs, error)
}

// SnapshotWriter persists KPI snapshots
type SnapshotWriter interface {
	Save(ctx context.Context, portfolio string, asOf time.Time, kpis performance.KPIs) (*snapshots.Snapshot, error)
}

// SnapshotJob computes and stores KPIs for every configured portfolio
type SnapshotJob struct {
	source KPISource
	writer SnapshotWriter
	log    zerolog.Logger
}

// NewSnapshotJob creates a new SnapshotJob
func NewSnapshotJob(source KPISource, writer SnapshotWriter, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		source: source,
		writer: writer,
		log:    log.With().Str("job", "portfolio_snapshots").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "portfolio_snapshots"
}

// Run snapshots each portfolio. A failing portfolio does not stop the others;
// all failures are returned joined.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	var errs []error
	saved := 0
	for _, p := range j.source.Portfolios() {
		kpis, err := j.source.PortfolioKPIs(ctx, p.Name)
		if err != nil {
			j.log.Error().Err(err).Str("portfolio", p.Name).Msg("Failed to calculate KPIs")
			errs = append(errs, fmt.Errorf("portfolio %s: %w", p.Name, err))
			continue
		}
		if kpis.LatestDate == performance.NotAvailable {
			j.log.Warn().Str("portfolio", p.Name).Msg("No history, skipping snapshot")
			continue
		}

		asOf, err := time.Parse(domain.DateLayout, kpis.LatestDate)
		if err != nil {
			errs = append(errs, fmt.Errorf("portfolio %s: failed to parse latest date: %w", p.Name, err))
			continue
		}
		if _, err := j.writer.Save(ctx, p.Name, asOf, kpis); err != nil {
			j.log.Error().Err(err).Str("portfolio", p.Name).Msg("Failed to save snapshot")
			errs = append(errs, err)
			continue
		}
		saved++
	}

	j.log.Info().Int("saved", saved).Int("failed", len(errs)).Msg("Portfolio snapshots completed")
	return errors.Join(errs...)
}
