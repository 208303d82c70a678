// Package report builds the holdings-weighted change report for a fund.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"HoldingsWatch/internal/calendar"
	"HoldingsWatch/internal/holdings"
	"HoldingsWatch/internal/model"
)

// Mode selects where per-holding changes come from.
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeRealtime   Mode = "realtime"
)

// ParseMode validates a mode name. An empty name means historical.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeHistorical, nil
	case ModeHistorical, ModeRealtime:
		return m, nil
	default:
		return "", fmt.Errorf("unknown data mode %q", s)
	}
}

// ErrNoHoldings is returned when a fund resolves to no usable holdings.
var ErrNoHoldings = errors.New("no holdings")

// ChangeProvider is satisfied by collector.Collector.
type ChangeProvider interface {
	Change(ctx context.Context, symbol string) (model.Change, bool)
	Quote(ctx context.Context, symbol string) (model.Change, bool)
}

// Runner fetches holdings and one change per holding, one symbol at a time.
type Runner struct {
	Source   holdings.Source
	Changes  ChangeProvider
	Mode     Mode
	Calendar *calendar.Calendar
}

// NewRunner creates a Runner.
func NewRunner(source holdings.Source, changes ChangeProvider, mode Mode, cal *calendar.Calendar) *Runner {
	return &Runner{Source: source, Changes: changes, Mode: mode, Calendar: cal}
}

// Run builds the report for fund. It fails only when the holdings cannot be
// loaded; symbols without data are reported as missing.
func (r *Runner) Run(ctx context.Context, fund string) (*model.Report, error) {
	fund = strings.ToUpper(strings.TrimSpace(fund))
	runID := uuid.NewString()
	log.Printf("[INFO] report %s for %s (%s mode, %s holdings)", runID, fund, r.Mode, r.Source.Name())

	raw, err := r.Source.Holdings(ctx, fund)
	if err != nil {
		return nil, fmt.Errorf("load holdings for %s: %w", fund, err)
	}
	hs := holdings.ParseHoldings(raw)
	if len(hs) == 0 {
		return nil, fmt.Errorf("%s: %w", fund, ErrNoHoldings)
	}

	changes := make(map[string]model.Change, len(hs))
	for _, h := range hs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ch, ok := r.change(ctx, h.Symbol); ok {
			changes[h.Symbol] = ch
		}
	}

	rep := holdings.Aggregate(fund, hs, changes)
	rep.RunID = runID
	rep.TradingDay = r.Calendar.MostRecent()
	rep.GeneratedAt = time.Now()
	log.Printf("[INFO] report %s: %d/%d holdings priced, weighted change %+.4f%%",
		runID, len(rep.Rows), len(hs), rep.WeightedChange)
	return rep, nil
}

func (r *Runner) change(ctx context.Context, symbol string) (model.Change, bool) {
	if r.Mode == ModeRealtime {
		return r.Changes.Quote(ctx, symbol)
	}
	return r.Changes.Change(ctx, symbol)
}
