// Package renderer turns report structs into markdown, and the
// profitability series into an HTML chart. It holds no calculation logic.
package renderer

import (
	"fmt"
	"strings"

	tinvest "github.com/Semihal/tcs-invest-analysis"
)

// AllocationMarkdown renders the allocation by asset type.
func AllocationMarkdown(r *tinvest.AllocationReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Allocation by Asset Type on %s\n\n", r.On)
	fmt.Fprintln(&b, "| Type | Invested | Share |")
	fmt.Fprintln(&b, "|:---|---:|---:|")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", row.AssetType, row.Invested, row.Percent)
	}
	fmt.Fprintf(&b, "| **Total** | **%s** | |\n", r.Total)
	return b.String()
}

// TypeProfitMarkdown renders the per-type profitability aggregates.
func TypeProfitMarkdown(r *tinvest.TypeProfitReport) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Profit by Asset Type\n\n")
	fmt.Fprintln(&b, "| Type | Min | Max | Last | Period |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
	for _, row := range r.Types {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %dd |\n",
			row.AssetType,
			row.Min.SignedString(),
			row.Max.SignedString(),
			row.Last.SignedString(),
			row.Days,
		)
	}
	return b.String()
}

// CorrelationMarkdown renders the pairwise profit correlations.
func CorrelationMarkdown(r *tinvest.CorrelationReport) string {
	var b strings.Builder
	fmt.Fprint(&b, "# Profit Correlation between Asset Types\n\n")
	if len(r.Pairs) == 0 {
		fmt.Fprintln(&b, "Not enough overlapping history to correlate.")
		return b.String()
	}
	fmt.Fprintln(&b, "| Type 1 | Type 2 | Correlation |")
	fmt.Fprintln(&b, "|:---|:---|---:|")
	for _, pair := range r.Pairs {
		fmt.Fprintf(&b, "| %s | %s | %.2f |\n", pair.Type1, pair.Type2, pair.Correlation)
	}
	return b.String()
}

// TickerMarkdown renders the summary of currently held tickers.
func TickerMarkdown(r *tinvest.TickerReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Held Positions on %s\n\n", r.On)
	fmt.Fprintln(&b, "| Ticker | Count | Invested | Avg Cost | Min | Max | Last | Held |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|")
	for _, row := range r.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %dd |\n",
			row.Ticker,
			row.Held,
			row.Invested,
			row.AvgCost,
			row.MinProfit.SignedString(),
			row.MaxProfit.SignedString(),
			row.LastProfit.SignedString(),
			row.Days,
		)
	}
	return b.String()
}
