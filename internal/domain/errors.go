package domain

import "errors"

// Configuration errors. These are the only failures the engines report;
// missing or sparse data degrades to nil fields and empty results instead.
var (
	ErrUnsupportedTargetCurrency = errors.New("unsupported target currency")
	ErrMissingStartDate          = errors.New("start_date is required for weighted portfolios")
	ErrMissingInitialCapital     = errors.New("initial_capital is required for weighted portfolios")
	ErrInvalidWeights            = errors.New("portfolio weights must sum to a positive value")
	ErrUnknownPortfolioType      = errors.New("unknown portfolio type")
)
