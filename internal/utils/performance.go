package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// slowComputation is the duration above which a batch computation is reported at warn level
const slowComputation = 5 * time.Second

// OperationTimer provides a defer-friendly way to measure how long a batch
// computation took. The returned func accepts the number of rows produced.
//
// Usage:
//
//	done := utils.OperationTimer("valuation_metrics", log)
//	defer func() { done(len(out)) }()
func OperationTimer(operation string, log zerolog.Logger) func(rows int) {
	start := time.Now()

	return func(rows int) {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Int("rows", rows).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if duration > slowComputation {
			log.Warn().
				Str("operation", operation).
				Int("rows", rows).
				Dur("duration", duration).
				Msg("Slow operation detected")
		}
	}
}
