package calculator

import (
	"time"

	"github.com/guregu/null/v5"

	"HoldingsWatch/internal/calendar"
	"HoldingsWatch/internal/model"
)

// MaxLookbackDays is how far back ComputeChanges searches for the prior trading day.
const MaxLookbackDays = 4

// ComputeChanges fills ChangeAbsolute and ChangePercent for every bar that
// has a prior bar within MaxLookbackDays calendar days. Bars without one keep
// null change fields.
func ComputeChanges(series model.DailySeries) {
	for date, bar := range series {
		if bar == nil {
			continue
		}
		day, err := calendar.Parse(date)
		if err != nil {
			continue
		}
		prev, ok := priorBar(series, day)
		if !ok {
			continue
		}
		diff := bar.Close - prev.Close
		bar.ChangeAbsolute = null.FloatFrom(diff)
		if prev.Close != 0 {
			bar.ChangePercent = null.FloatFrom(diff / prev.Close * 100)
		}
	}
}

// priorBar returns the nearest bar before day, checking D-1 first.
func priorBar(series model.DailySeries, day time.Time) (*model.DailyBar, bool) {
	for i := 1; i <= MaxLookbackDays; i++ {
		if prev, ok := series[calendar.Format(day.AddDate(0, 0, -i))]; ok && prev != nil {
			return prev, true
		}
	}
	return nil, false
}

// LastChange returns the change computed for day, in percent units when
// asPercent is set. ok is false if the day is missing or was never computed.
func LastChange(series model.DailySeries, day time.Time, asPercent bool) (float64, bool) {
	bar, ok := series[calendar.Format(day)]
	if !ok || bar == nil {
		return 0, false
	}
	field := bar.ChangeAbsolute
	if asPercent {
		field = bar.ChangePercent
	}
	if !field.Valid {
		return 0, false
	}
	return field.Float64, true
}

// ChangeOn returns the full change for day. Both fields must be set.
func ChangeOn(series model.DailySeries, day time.Time) (model.Change, bool) {
	bar, ok := series[calendar.Format(day)]
	if !ok || bar == nil || !bar.ChangeAbsolute.Valid || !bar.ChangePercent.Valid {
		return model.Change{}, false
	}
	return model.Change{
		Absolute: bar.ChangeAbsolute.Float64,
		Percent:  bar.ChangePercent.Float64,
		Close:    bar.Close,
		Volume:   bar.Volume,
		Source:   model.SourceHistorical,
	}, true
}
