package notifier

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoldingsWatch/internal/model"
)

func sampleReport() *model.Report {
	aapl := model.Holding{Symbol: "AAPL", WeightRaw: "10%", Weight: decimal.NewFromInt(10)}
	msft := model.Holding{Symbol: "MSFT", WeightRaw: "6%", Weight: decimal.NewFromInt(6)}
	tsla := model.Holding{Symbol: "TSLA", WeightRaw: "4%", Weight: decimal.NewFromInt(4)}
	return &model.Report{
		RunID:       "run-1",
		Fund:        "QQQ",
		TradingDay:  time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		GeneratedAt: time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC),
		Rows: []model.HoldingChange{
			{Holding: aapl, Change: model.Change{Absolute: 3, Percent: 3, Close: 103, Volume: 62303300, Source: model.SourceHistorical}, Contribution: 0.3},
			{Holding: msft, Change: model.Change{Absolute: -2, Percent: -1, Close: 198, Source: model.SourceRealtime}, Contribution: -0.06},
		},
		Missing:        []model.Holding{tsla},
		WeightedChange: 0.24,
		CoveredWeight:  decimal.NewFromInt(16),
		TotalWeight:    decimal.NewFromInt(20),
	}
}

func TestFormatReport(t *testing.T) {
	out := FormatReport(sampleReport())

	assert.Contains(t, out, "QQQ holdings report | trading day 2024-01-05")
	assert.Contains(t, out, "run run-1")
	assert.Contains(t, out, "62,303,300")
	assert.Contains(t, out, "+3.00%")
	assert.Contains(t, out, "-1.00%")
	assert.Contains(t, out, "+0.3000")
	assert.Contains(t, out, "Weighted change: +0.2400% (covering 16.00% of 20.00% weight)")
	assert.Contains(t, out, "No data: TSLA (4.00%)")
}

func TestFormatReport_Empty(t *testing.T) {
	out := FormatReport(&model.Report{Fund: "SPY"})
	assert.Contains(t, out, "SPY holdings report")
	assert.NotContains(t, out, "No data")
	assert.NotContains(t, out, "run ")
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsole(&buf).Notify(context.Background(), "hello"))
	assert.Equal(t, "hello\n", buf.String())
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, string) error {
	f.calls++
	return errors.New("down")
}

func TestMulti_DeliversToAll(t *testing.T) {
	var buf bytes.Buffer
	bad := &failingNotifier{}
	err := Multi{bad, NewConsole(&buf)}.Notify(context.Background(), "x")
	assert.EqualError(t, err, "down")
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, "x\n", buf.String())
}
