package collector

import (
	"context"
	"fmt"
	"log"

	"HoldingsWatch/internal/calculator"
	"HoldingsWatch/internal/calendar"
	"HoldingsWatch/internal/model"
)

// Collector keeps one Stock per symbol for the life of the process and
// refreshes it at most once per calendar day.
type Collector struct {
	Series   SeriesFetcher
	Quotes   QuoteFetcher
	Calendar *calendar.Calendar

	stocks map[string]*model.Stock
}

// NewCollector creates a new Collector. Either fetcher may be nil.
func NewCollector(series SeriesFetcher, quotes QuoteFetcher, cal *calendar.Calendar) *Collector {
	return &Collector{
		Series:   series,
		Quotes:   quotes,
		Calendar: cal,
		stocks:   make(map[string]*model.Stock),
	}
}

// Stock returns the stock for symbol, fetching its series and computing
// day-over-day changes unless it was already refreshed today. A failed fetch
// leaves the stock without data.
func (c *Collector) Stock(ctx context.Context, symbol string) *model.Stock {
	symbol = NormalizeSymbol(symbol)
	st, ok := c.stocks[symbol]
	if !ok {
		st = &model.Stock{Symbol: symbol}
		c.stocks[symbol] = st
	}

	today := c.Calendar.Today()
	if !st.LastUpdated.IsZero() && st.LastUpdated.Equal(today) {
		return st
	}
	if c.Series == nil {
		return st
	}

	series, err := c.Series.FetchDailySeries(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] no %s data for %s this run: %v", c.Series.Name(), symbol, err)
		return st
	}
	calculator.ComputeChanges(series)
	st.Daily = series
	st.LastUpdated = today
	return st
}

// Change returns the historical change of symbol on the most recent trading day.
func (c *Collector) Change(ctx context.Context, symbol string) (model.Change, bool) {
	st := c.Stock(ctx, symbol)
	if !st.HasData() {
		return model.Change{}, false
	}
	return calculator.ChangeOn(st.Daily, c.Calendar.MostRecent())
}

// Quote returns the realtime change of symbol, with the provider fraction
// converted to percent units. A quote without both change fields is absent:
// a zero previous close leaves the fraction null, so such a holding is
// reported as missing even when the absolute move is known.
func (c *Collector) Quote(ctx context.Context, symbol string) (model.Change, bool) {
	if c.Quotes == nil {
		return model.Change{}, false
	}
	q, err := c.Quotes.FetchQuote(ctx, symbol)
	if err != nil {
		log.Printf("[WARN] no %s quote for %s: %v", c.Quotes.Name(), symbol, err)
		return model.Change{}, false
	}
	if !q.ChangeAmount.Valid || !q.ChangeFraction.Valid {
		return model.Change{}, false
	}
	return model.Change{
		Absolute: q.ChangeAmount.Float64,
		Percent:  q.ChangeFraction.Float64 * 100,
		Close:    q.CurrentPrice,
		Source:   model.SourceRealtime,
	}, true
}

func (c *Collector) String() string {
	var series, quotes string
	if c.Series != nil {
		series = c.Series.Name()
	}
	if c.Quotes != nil {
		quotes = c.Quotes.Name()
	}
	return fmt.Sprintf("collector(series=%s, quotes=%s)", series, quotes)
}
