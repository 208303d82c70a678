package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HoldingsWatch/internal/model"
)

func series(closes map[string]float64) model.DailySeries {
	s := make(model.DailySeries, len(closes))
	for d, c := range closes {
		s[d] = &model.DailyBar{Date: d, Close: c}
	}
	return s
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeChanges_Example(t *testing.T) {
	s := series(map[string]float64{"2024-01-02": 100, "2024-01-03": 103})
	ComputeChanges(s)

	bar := s["2024-01-03"]
	require.True(t, bar.ChangeAbsolute.Valid)
	assert.InDelta(t, 3.0, bar.ChangeAbsolute.Float64, 1e-9)
	require.True(t, bar.ChangePercent.Valid)
	assert.InDelta(t, 3.0, bar.ChangePercent.Float64, 1e-9)

	oldest := s["2024-01-02"]
	assert.False(t, oldest.ChangeAbsolute.Valid)
	assert.False(t, oldest.ChangePercent.Valid)
}

func TestComputeChanges_PercentUnits(t *testing.T) {
	s := series(map[string]float64{"2024-01-02": 103, "2024-01-03": 106})
	ComputeChanges(s)
	// 3 / 103 * 100
	assert.InDelta(t, 2.9126, s["2024-01-03"].ChangePercent.Float64, 1e-4)
}

func TestComputeChanges_WeekendLookback(t *testing.T) {
	// Friday -> Monday spans three calendar days.
	s := series(map[string]float64{"2024-01-05": 50, "2024-01-08": 55})
	ComputeChanges(s)
	assert.InDelta(t, 5.0, s["2024-01-08"].ChangeAbsolute.Float64, 1e-9)
	assert.InDelta(t, 10.0, s["2024-01-08"].ChangePercent.Float64, 1e-9)
}

func TestComputeChanges_NearestPriorWins(t *testing.T) {
	s := series(map[string]float64{
		"2024-01-01": 10, // D-4
		"2024-01-03": 20, // D-2
		"2024-01-05": 30, // D
	})
	ComputeChanges(s)
	assert.InDelta(t, 10.0, s["2024-01-05"].ChangeAbsolute.Float64, 1e-9)
}

func TestComputeChanges_LookbackLimit(t *testing.T) {
	tests := []struct {
		name   string
		prior  string
		expect bool
	}{
		{"four days back is found", "2024-01-06", true},
		{"five days back is out of range", "2024-01-05", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := series(map[string]float64{tt.prior: 10, "2024-01-10": 12})
			ComputeChanges(s)
			assert.Equal(t, tt.expect, s["2024-01-10"].ChangeAbsolute.Valid)
		})
	}
}

func TestComputeChanges_ZeroPriorClose(t *testing.T) {
	s := series(map[string]float64{"2024-01-02": 0, "2024-01-03": 5})
	ComputeChanges(s)
	bar := s["2024-01-03"]
	assert.True(t, bar.ChangeAbsolute.Valid)
	assert.InDelta(t, 5.0, bar.ChangeAbsolute.Float64, 1e-9)
	assert.False(t, bar.ChangePercent.Valid)
}

func TestComputeChanges_SkipsBadKeys(t *testing.T) {
	s := series(map[string]float64{"not-a-date": 1, "2024-01-03": 2})
	s["2024-01-04"] = nil
	assert.NotPanics(t, func() { ComputeChanges(s) })
	assert.False(t, s["not-a-date"].ChangeAbsolute.Valid)
}

func TestLastChange(t *testing.T) {
	s := series(map[string]float64{"2024-01-02": 100, "2024-01-03": 103})
	ComputeChanges(s)

	abs, ok := LastChange(s, day("2024-01-03"), false)
	require.True(t, ok)
	assert.InDelta(t, 3.0, abs, 1e-9)

	pct, ok := LastChange(s, day("2024-01-03"), true)
	require.True(t, ok)
	assert.InDelta(t, 3.0, pct, 1e-9)

	_, ok = LastChange(s, day("2024-01-02"), false)
	assert.False(t, ok, "never computed")

	_, ok = LastChange(s, day("2024-01-04"), true)
	assert.False(t, ok, "date not present")
}

func TestChangeOn(t *testing.T) {
	s := series(map[string]float64{"2024-01-02": 100, "2024-01-03": 103})
	s["2024-01-03"].Volume = 1200
	ComputeChanges(s)

	ch, ok := ChangeOn(s, day("2024-01-03"))
	require.True(t, ok)
	assert.Equal(t, model.SourceHistorical, ch.Source)
	assert.InDelta(t, 103.0, ch.Close, 1e-9)
	assert.InDelta(t, 1200.0, ch.Volume, 1e-9)

	_, ok = ChangeOn(s, day("2024-01-02"))
	assert.False(t, ok)
}
