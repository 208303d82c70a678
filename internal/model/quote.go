package model

import (
	"time"

	"github.com/guregu/null/v5"
)

// Quote is a real-time price snapshot. It is never cached.
type Quote struct {
	Symbol        string
	CurrentPrice  float64
	PreviousClose float64
	ChangeAmount  null.Float
	// ChangeFraction follows the realtime provider: 0.0123 means 1.23%.
	ChangeFraction null.Float
	FetchedAt      time.Time
}
