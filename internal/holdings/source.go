// Package holdings loads fund constituents and aggregates their price changes
// into a weighted report.
package holdings

import (
	"context"
	"fmt"
	"strings"
)

// Source produces {ticker -> percent weight string} for a fund.
type Source interface {
	Holdings(ctx context.Context, fund string) (map[string]string, error)
	Name() string
}

// StaticSource serves holdings listed in the configuration file.
type StaticSource struct {
	Funds map[string]map[string]string
}

// NewStaticSource creates a StaticSource. Fund keys are matched case-insensitively.
func NewStaticSource(funds map[string]map[string]string) *StaticSource {
	normalized := make(map[string]map[string]string, len(funds))
	for fund, weights := range funds {
		normalized[strings.ToUpper(fund)] = weights
	}
	return &StaticSource{Funds: normalized}
}

func (s *StaticSource) Name() string { return "static" }

// Holdings returns a copy of the configured weights for fund.
func (s *StaticSource) Holdings(_ context.Context, fund string) (map[string]string, error) {
	weights, ok := s.Funds[strings.ToUpper(fund)]
	if !ok {
		return nil, fmt.Errorf("no holdings configured for fund %s", fund)
	}
	out := make(map[string]string, len(weights))
	for symbol, w := range weights {
		out[strings.ToUpper(strings.TrimSpace(symbol))] = w
	}
	return out, nil
}
