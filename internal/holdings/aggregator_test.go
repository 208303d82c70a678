package holdings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoldingsWatch/internal/model"
)

func holding(symbol, weight string) model.Holding {
	return model.Holding{Symbol: symbol, WeightRaw: weight + "%", Weight: decimal.RequireFromString(weight)}
}

func TestAggregate(t *testing.T) {
	hs := []model.Holding{
		holding("MSFT", "6"),
		holding("AAPL", "10"),
		holding("TSLA", "4"),
	}
	changes := map[string]model.Change{
		"AAPL": {Absolute: 3, Percent: 3, Close: 103},
		"MSFT": {Absolute: -2, Percent: -1, Close: 198},
	}

	r := Aggregate("QQQ", hs, changes)

	assert.Equal(t, "QQQ", r.Fund)
	require.Len(t, r.Rows, 2)
	assert.Equal(t, "AAPL", r.Rows[0].Symbol, "rows sorted by weight")
	assert.InDelta(t, 0.3, r.Rows[0].Contribution, 1e-9)
	assert.InDelta(t, -0.06, r.Rows[1].Contribution, 1e-9)
	assert.InDelta(t, 0.24, r.WeightedChange, 1e-9)

	require.Len(t, r.Missing, 1)
	assert.Equal(t, "TSLA", r.Missing[0].Symbol)
	assert.Equal(t, "16", r.CoveredWeight.String())
	assert.Equal(t, "20", r.TotalWeight.String())
}

func TestAggregate_NoChanges(t *testing.T) {
	r := Aggregate("SPY", []model.Holding{holding("AAPL", "5"), holding("MSFT", "5")}, nil)
	assert.Empty(t, r.Rows)
	assert.Len(t, r.Missing, 2)
	assert.Equal(t, "AAPL", r.Missing[0].Symbol, "ties ordered by symbol")
	assert.Zero(t, r.WeightedChange)
	assert.True(t, r.CoveredWeight.IsZero())
}
