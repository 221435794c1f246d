package portfolio

import (
	"fmt"
	"os"
	"sort"

	"github.com/aristath/qualitycore/internal/domain"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// File is the on-disk portfolio configuration. Portfolio names come from the map keys.
type File struct {
	Portfolios map[string]*domain.Portfolio `yaml:"portfolios"`
}

var validate = validator.New()

// LoadPortfolios reads and validates the portfolio configuration at path.
// Portfolios are returned sorted by name.
func LoadPortfolios(path string) ([]domain.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio config: %w", err)
	}
	return ParsePortfolios(data)
}

// ParsePortfolios decodes and validates a YAML portfolio configuration
func ParsePortfolios(data []byte) ([]domain.Portfolio, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio config: %w", err)
	}

	names := make([]string, 0, len(file.Portfolios))
	for name := range file.Portfolios {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.Portfolio, 0, len(names))
	for _, name := range names {
		p := file.Portfolios[name]
		if p == nil {
			return nil, fmt.Errorf("portfolio %s: empty definition", name)
		}
		p.Name = name
		if err := Validate(p); err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Validate checks field constraints and strategy-specific requirements
func Validate(p *domain.Portfolio) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid portfolio %s: %w", p.Name, err)
	}

	switch p.Type {
	case domain.PortfolioWeighted:
		if p.StartDate == "" {
			return fmt.Errorf("invalid portfolio %s: %w", p.Name, domain.ErrMissingStartDate)
		}
		if p.InitialCapital == nil {
			return fmt.Errorf("invalid portfolio %s: %w", p.Name, domain.ErrMissingInitialCapital)
		}
		for _, pos := range p.Positions {
			if pos.Weight == nil {
				return fmt.Errorf("invalid portfolio %s: all positions must have weights in weighted portfolios (%s)", p.Name, pos.Ticker)
			}
		}
		if _, err := NormalizeWeights(p.Positions); err != nil {
			return fmt.Errorf("invalid portfolio %s: %w", p.Name, err)
		}
	case domain.PortfolioAbsolute:
		for _, pos := range p.Positions {
			if pos.Shares == nil {
				return fmt.Errorf("invalid portfolio %s: all positions must have shares in absolute portfolios (%s)", p.Name, pos.Ticker)
			}
		}
	case domain.PortfolioWatchlist:
	default:
		return fmt.Errorf("invalid portfolio %s: %w", p.Name, domain.ErrUnknownPortfolioType)
	}
	return nil
}

// AllTickers returns the unique tickers across portfolios, sorted
func AllTickers(portfolios []domain.Portfolio) []string {
	seen := make(map[string]struct{})
	for i := range portfolios {
		for _, t := range portfolios[i].Tickers() {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
