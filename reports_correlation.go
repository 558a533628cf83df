package tinvest

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// CorrelationPair is the profit correlation between two asset types.
type CorrelationPair struct {
	Type1       string
	Type2       string
	Correlation float64
}

// CorrelationReport holds the pairwise profit correlations between asset
// types, strongest first. Only the lower triangle of the correlation matrix
// is reported, each pair once.
type CorrelationReport struct {
	Pairs []CorrelationPair
}

// CalculateCorrelation computes the Pearson correlation between the daily
// profitability series of every pair of asset types, over the days both
// series observed. Pairs with fewer than two common days are skipped.
func CalculateCorrelation(profit *TypeProfitReport) *CorrelationReport {
	types := make([]string, 0, len(profit.Series))
	for assetType := range profit.Series {
		types = append(types, assetType)
	}
	sort.Strings(types)

	report := &CorrelationReport{}
	for i := 1; i < len(types); i++ {
		for j := 0; j < i; j++ {
			a, b := profit.Series[types[i]], profit.Series[types[j]]

			// Align the two series on their common days.
			var xs, ys []float64
			for on, x := range a.Values() {
				if y, ok := b.Get(on); ok {
					xs = append(xs, x)
					ys = append(ys, y)
				}
			}
			if len(xs) < 2 {
				continue
			}
			report.Pairs = append(report.Pairs, CorrelationPair{
				Type1:       types[i],
				Type2:       types[j],
				Correlation: stat.Correlation(xs, ys, nil),
			})
		}
	}
	sort.Slice(report.Pairs, func(i, j int) bool {
		return report.Pairs[i].Correlation > report.Pairs[j].Correlation
	})
	return report
}
