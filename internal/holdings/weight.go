package holdings

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"HoldingsWatch/internal/model"
)

// ParseWeight reads a percent weight such as "5.23%" or " 5.23 ".
func ParseWeight(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("empty weight %q", s)
	}
	w, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid weight %q: %w", s, err)
	}
	if w.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative weight %q", s)
	}
	return w, nil
}

// ParseHoldings turns a {ticker -> weight string} map into holdings.
// Entries with an unreadable weight are logged and dropped.
func ParseHoldings(raw map[string]string) []model.Holding {
	out := make([]model.Holding, 0, len(raw))
	for symbol, ws := range raw {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		w, err := ParseWeight(ws)
		if err != nil {
			log.Printf("[WARN] skipping holding %s: %v", symbol, err)
			continue
		}
		out = append(out, model.Holding{Symbol: symbol, WeightRaw: ws, Weight: w})
	}
	return out
}
