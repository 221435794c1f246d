// Package metrics derives fundamental ratios and daily valuation metrics from
// raw prices and financial reports.
//
// Missing inputs never fail a calculation: the affected field is left nil.
package metrics

import (
	"github.com/aristath/qualitycore/internal/modules/ttm"
	"github.com/rs/zerolog"
)

// Valuation source labels
const (
	SourceTTM    = "TTM"
	SourceAnnual = "Annual"
	SourceNone   = "N/A"
)

// DefaultFairValueYears is the trailing window used for the median P/E
const DefaultFairValueYears = 5

// P/E ratios outside (0, MaxFairValuePE) are excluded from the median
const MaxFairValuePE = 250.0

// Engine calculates fundamental and valuation metrics
type Engine struct {
	ttm *ttm.Engine
	log zerolog.Logger
}

// NewEngine creates a metrics engine. A nil ttmEngine gets a default one.
func NewEngine(ttmEngine *ttm.Engine, log zerolog.Logger) *Engine {
	if ttmEngine == nil {
		ttmEngine = ttm.NewEngine(log)
	}
	return &Engine{
		ttm: ttmEngine,
		log: log.With().Str("component", "metrics").Logger(),
	}
}
