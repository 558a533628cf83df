package tinvest

import (
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// TypeProfitSummary aggregates the profitability series of one asset type.
type TypeProfitSummary struct {
	AssetType string
	Min       Percent
	Max       Percent
	Last      Percent
	Days      int // length of the observation period in calendar days
}

// TypeProfitReport holds the daily profitability per asset type and its
// aggregates. Series keeps the full per-type series for the correlation
// report and the chart.
type TypeProfitReport struct {
	Types  []TypeProfitSummary
	Series map[string]*date.History[float64]
}

// CalculateTypeProfit computes, for every asset type and day, the profit of
// that type's positions relative to their cost basis. Days where a type has
// no positive aggregate cost basis are excluded from that type's series.
func CalculateTypeProfit(records []ValuationRecord) *TypeProfitReport {
	type sums struct {
		invested Money
		profit   Money
	}
	perTypeDay := make(map[string]map[date.Date]*sums)
	for _, rec := range records {
		days, ok := perTypeDay[rec.AssetType]
		if !ok {
			days = make(map[date.Date]*sums)
			perTypeDay[rec.AssetType] = days
		}
		s, ok := days[rec.On]
		if !ok {
			s = &sums{}
			days[rec.On] = s
		}
		s.invested = s.invested.Add(rec.CostBasis)
		s.profit = s.profit.Add(rec.ProfitMoney)
	}

	report := &TypeProfitReport{Series: make(map[string]*date.History[float64])}
	for assetType, days := range perTypeDay {
		series := new(date.History[float64])
		for on, s := range days {
			if !s.invested.IsPositive() {
				continue
			}
			series.Append(on, 100*s.profit.Amount().InexactFloat64()/s.invested.Amount().InexactFloat64())
		}
		if series.Len() == 0 {
			continue
		}
		report.Series[assetType] = series

		summary := TypeProfitSummary{AssetType: assetType}
		first := true
		for _, v := range series.Values() {
			p := Percent(v)
			if first || p < summary.Min {
				summary.Min = p
			}
			if first || p > summary.Max {
				summary.Max = p
			}
			summary.Last = p
			first = false
		}
		firstDay, _ := series.First()
		lastDay, _ := series.Latest()
		summary.Days = lastDay.Sub(firstDay)
		report.Types = append(report.Types, summary)
	}
	sort.Slice(report.Types, func(i, j int) bool {
		return report.Types[i].AssetType < report.Types[j].AssetType
	})
	return report
}
