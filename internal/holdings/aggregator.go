package holdings

import (
	"sort"

	"github.com/shopspring/decimal"

	"HoldingsWatch/internal/model"
)

// Aggregate joins holdings with their changes. Each row contributes
// weight × change% / 100 percentage points to the fund. Holdings without a
// change are listed in Missing and left out of the weighted total.
func Aggregate(fund string, holdings []model.Holding, changes map[string]model.Change) *model.Report {
	report := &model.Report{
		Fund:          fund,
		CoveredWeight: decimal.Zero,
		TotalWeight:   decimal.Zero,
	}

	for _, h := range holdings {
		report.TotalWeight = report.TotalWeight.Add(h.Weight)
		ch, ok := changes[h.Symbol]
		if !ok {
			report.Missing = append(report.Missing, h)
			continue
		}
		contribution := h.Weight.InexactFloat64() * ch.Percent / 100
		report.Rows = append(report.Rows, model.HoldingChange{
			Holding:      h,
			Change:       ch,
			Contribution: contribution,
		})
		report.WeightedChange += contribution
		report.CoveredWeight = report.CoveredWeight.Add(h.Weight)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		return byWeight(report.Rows[i].Holding, report.Rows[j].Holding)
	})
	sort.SliceStable(report.Missing, func(i, j int) bool {
		return byWeight(report.Missing[i], report.Missing[j])
	})
	return report
}

// byWeight orders by weight descending, then symbol.
func byWeight(a, b model.Holding) bool {
	if c := a.Weight.Cmp(b.Weight); c != 0 {
		return c > 0
	}
	return a.Symbol < b.Symbol
}
