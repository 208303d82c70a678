package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChangeSource tells which provider a Change was derived from.
type ChangeSource string

const (
	SourceHistorical ChangeSource = "historical"
	SourceRealtime   ChangeSource = "realtime"
)

// Change is a day-over-day move with the percentage already in percent units.
type Change struct {
	Absolute float64
	Percent  float64
	Close    float64
	Volume   float64
	Source   ChangeSource
}

// Holding is one fund constituent and its weight in percent.
type Holding struct {
	Symbol    string
	WeightRaw string
	Weight    decimal.Decimal
}

// HoldingChange is a holding joined with its price change.
type HoldingChange struct {
	Holding
	Change       Change
	Contribution float64 // weight% * change% / 100, in percentage points of the fund
}

// Report is the holdings-weighted change report for one fund.
type Report struct {
	RunID          string
	Fund           string
	TradingDay     time.Time
	GeneratedAt    time.Time
	Rows           []HoldingChange
	Missing        []Holding
	WeightedChange float64
	CoveredWeight  decimal.Decimal
	TotalWeight    decimal.Decimal
}
