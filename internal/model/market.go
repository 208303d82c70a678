package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// DailyBar is one day of a historical series, keyed by its ISO date.
type DailyBar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	// Set by the change engine. ChangePercent is in percentage units (1.5 == 1.5%).
	ChangeAbsolute null.Float
	ChangePercent  null.Float
}

// DailySeries maps "YYYY-MM-DD" to the bar for that day.
type DailySeries map[string]*DailyBar

// Stock holds the historical series for one symbol during a run.
type Stock struct {
	Symbol      string
	Daily       DailySeries
	LastUpdated time.Time // zero until the first successful fetch
}

// HasData reports whether the stock carries any bars.
func (s *Stock) HasData() bool {
	return s != nil && len(s.Daily) > 0
}

// CacheRecord is the on-disk shape of a historical provider response.
type CacheRecord struct {
	MetaData   map[string]string            `json:"Meta Data"`
	TimeSeries map[string]map[string]string `json:"Time Series (Daily)"`
}

// LastRefreshedKey is the provider's metadata field for the latest bar date.
const LastRefreshedKey = "3. Last Refreshed"

// LastRefreshed returns the provider-reported last refresh date, or "".
func (r *CacheRecord) LastRefreshed() string {
	if r == nil || r.MetaData == nil {
		return ""
	}
	return r.MetaData[LastRefreshedKey]
}
