package domain

import (
	"sort"
	"time"
)

// PortfolioType selects the valuation strategy
type PortfolioType string

const (
	PortfolioAbsolute  PortfolioType = "absolute"
	PortfolioWeighted  PortfolioType = "weighted"
	PortfolioWatchlist PortfolioType = "watchlist"
)

// DefaultGroup is assigned to positions without a group label
const DefaultGroup = "N/A"

// Position is a single holding in a portfolio.
// Absolute portfolios use Shares, weighted portfolios use Weight.
type Position struct {
	Ticker string   `yaml:"ticker" json:"ticker" validate:"required"`
	Shares *float64 `yaml:"shares,omitempty" json:"shares,omitempty" validate:"omitempty,gt=0"`
	Weight *float64 `yaml:"weight,omitempty" json:"weight,omitempty" validate:"omitempty,gte=0"`
	Group  string   `yaml:"group,omitempty" json:"group,omitempty"`
}

// GroupOrDefault returns the group label, DefaultGroup when unset
func (p Position) GroupOrDefault() string {
	if p.Group == "" {
		return DefaultGroup
	}
	return p.Group
}

// Portfolio is the external portfolio configuration consumed by the valuation engine
type Portfolio struct {
	Name           string        `yaml:"-" json:"name" validate:"required"`
	DisplayName    string        `yaml:"display_name,omitempty" json:"display_name,omitempty"`
	Description    string        `yaml:"description,omitempty" json:"description,omitempty"`
	Type           PortfolioType `yaml:"type" json:"type" validate:"required,oneof=absolute weighted watchlist"`
	StartDate      string        `yaml:"start_date,omitempty" json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	InitialCapital *float64      `yaml:"initial_capital,omitempty" json:"initial_capital,omitempty" validate:"omitempty,gt=0"`
	Positions      []Position    `yaml:"positions" json:"positions" validate:"required,min=1,dive"`
}

// Tickers returns the unique position tickers, sorted
func (p *Portfolio) Tickers() []string {
	seen := make(map[string]struct{}, len(p.Positions))
	tickers := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		if _, ok := seen[pos.Ticker]; ok {
			continue
		}
		seen[pos.Ticker] = struct{}{}
		tickers = append(tickers, pos.Ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// Start parses StartDate. ok is false when StartDate is empty or malformed.
func (p *Portfolio) Start() (time.Time, bool) {
	if p.StartDate == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, p.StartDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Label returns DisplayName, falling back to Name
func (p *Portfolio) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Name
}
