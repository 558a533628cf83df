package tinvest

import (
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// AllocationRow is the share of the portfolio invested in one asset type.
type AllocationRow struct {
	AssetType string
	Invested  Money
	Percent   Percent
}

// AllocationReport is the portfolio allocation by asset type on one day.
type AllocationReport struct {
	On    date.Date
	Total Money
	Rows  []AllocationRow
}

// CalculateAllocation computes the allocation by asset type on the last
// valued day, measured by cost basis.
func CalculateAllocation(records []ValuationRecord) *AllocationReport {
	var last date.Date
	for _, rec := range records {
		if rec.On.After(last) {
			last = rec.On
		}
	}

	var total Money
	invested := make(map[string]Money)
	for _, rec := range records {
		if rec.On != last {
			continue
		}
		total = total.Add(rec.CostBasis)
		invested[rec.AssetType] = invested[rec.AssetType].Add(rec.CostBasis)
	}

	report := &AllocationReport{On: last, Total: total}
	for assetType, amount := range invested {
		row := AllocationRow{AssetType: assetType, Invested: amount}
		if total.IsPositive() {
			row.Percent = Percent(100 * amount.Amount().InexactFloat64() / total.Amount().InexactFloat64())
		}
		report.Rows = append(report.Rows, row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].Invested.GreaterThan(report.Rows[j].Invested)
	})
	return report
}
