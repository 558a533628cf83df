package tinvest

import (
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// TickerSummary aggregates the history of one currently held ticker.
type TickerSummary struct {
	Ticker     string
	Held       Quantity
	Invested   Money
	AvgCost    Money
	MinProfit  Percent
	MaxProfit  Percent
	LastProfit Percent
	Days       int // calendar days since the first valued day
}

// TickerReport summarizes every ticker still held on the last valued day,
// largest investment first.
type TickerReport struct {
	On   date.Date
	Rows []TickerSummary
}

// CalculateTickerSummaries builds the per-ticker summary of the currently
// held positions. Tickers fully disposed before the last valued day are
// excluded. Days without a defined profit percentage (zero cost basis) do
// not contribute to the min/max/last profit figures.
func CalculateTickerSummaries(records []ValuationRecord) *TickerReport {
	var last date.Date
	for _, rec := range records {
		if rec.On.After(last) {
			last = rec.On
		}
	}

	// Tickers with an open position on the last day.
	active := make(map[string]bool)
	for _, rec := range records {
		if rec.On == last && rec.Held.IsPositive() {
			active[tickerOf(rec)] = true
		}
	}

	type agg struct {
		summary TickerSummary
		first   date.Date
		lastDay date.Date
		seen    bool
	}
	byTicker := make(map[string]*agg)
	for _, rec := range records {
		ticker := tickerOf(rec)
		if !active[ticker] {
			continue
		}
		a, ok := byTicker[ticker]
		if !ok {
			a = &agg{summary: TickerSummary{Ticker: ticker}, first: rec.On}
			byTicker[ticker] = a
		}
		if rec.On.Before(a.first) {
			a.first = rec.On
		}
		if !rec.On.Before(a.lastDay) {
			a.lastDay = rec.On
			a.summary.Held = rec.Held
			a.summary.Invested = rec.CostBasis
			if avg, ok := (PositionSnapshot{Held: rec.Held, CostBasis: rec.CostBasis}).AvgCost(); ok {
				a.summary.AvgCost = avg
			}
		}
		if rec.ProfitPercent == nil {
			continue
		}
		p := *rec.ProfitPercent
		if !a.seen || p < a.summary.MinProfit {
			a.summary.MinProfit = p
		}
		if !a.seen || p > a.summary.MaxProfit {
			a.summary.MaxProfit = p
		}
		a.summary.LastProfit = p
		a.seen = true
	}

	report := &TickerReport{On: last}
	for _, a := range byTicker {
		a.summary.Days = a.lastDay.Sub(a.first)
		report.Rows = append(report.Rows, a.summary)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Invested.GreaterThan(report.Rows[j].Invested)
	})
	return report
}

// tickerOf falls back to the ISIN when the broker record carries no ticker.
func tickerOf(rec ValuationRecord) string {
	if rec.Ticker != "" {
		return rec.Ticker
	}
	return rec.ISIN
}
