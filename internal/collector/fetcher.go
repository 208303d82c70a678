package collector

import (
	"context"

	"HoldingsWatch/internal/model"
)

// SeriesFetcher returns the daily historical series for a symbol.
type SeriesFetcher interface {
	FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error)
	Name() string
}

// QuoteFetcher returns a real-time quote for a symbol.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}
