package notifier

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"HoldingsWatch/internal/model"
)

// FormatReport renders the holdings report as a plain-text table.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s holdings report | trading day %s\n",
		r.Fund, r.TradingDay.Format("2006-01-02")))
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("run %s, generated %s\n", r.RunID, r.GeneratedAt.Format("2006-01-02 15:04:05")))
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tWEIGHT\tCLOSE\tCHANGE\tCHANGE %\tCONTRIB\tVOLUME\t")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s%%\t%.2f\t%+.2f\t%+.2f%%\t%+.4f\t%s\t\n",
			row.Symbol,
			row.Weight.StringFixed(2),
			row.Change.Close,
			row.Change.Absolute,
			row.Change.Percent,
			row.Contribution,
			formatVolume(row.Change),
		)
	}
	tw.Flush()

	b.WriteString(fmt.Sprintf("\nWeighted change: %+.4f%% (covering %s%% of %s%% weight)\n",
		r.WeightedChange, r.CoveredWeight.StringFixed(2), r.TotalWeight.StringFixed(2)))

	if len(r.Missing) > 0 {
		symbols := make([]string, 0, len(r.Missing))
		for _, h := range r.Missing {
			symbols = append(symbols, fmt.Sprintf("%s (%s%%)", h.Symbol, h.Weight.StringFixed(2)))
		}
		b.WriteString(fmt.Sprintf("No data: %s\n", strings.Join(symbols, ", ")))
	}
	return b.String()
}

// formatVolume prints the traded volume with thousands separators. Realtime
// quotes carry no volume.
func formatVolume(ch model.Change) string {
	if ch.Source == model.SourceRealtime || ch.Volume <= 0 {
		return "-"
	}
	return humanize.Comma(int64(ch.Volume))
}
