package tinvest

import (
	"log"
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// ValuationRecord is the daily mark-to-market state of one security position.
type ValuationRecord struct {
	ISIN        string
	Ticker      string
	AssetType   string
	On          date.Date
	Held        Quantity
	CostBasis   Money
	MarketValue Money
	ProfitMoney Money
	// ProfitPercent is nil when the cost basis is zero (closed position).
	ProfitPercent *Percent
}

// Valuate left-joins position snapshots with the quote store.
//
// Where a quote is missing on a day the security is held, the most recent
// known close for that security is used (never a later one, never another
// security's). Days before a security's first known quote cannot be valued
// and are skipped with a warning. Days outside the snapshot series do not
// appear at all.
func Valuate(positions []PositionSeries, quotes *QuoteStore) []ValuationRecord {
	records := make([]ValuationRecord, 0)
	for _, series := range positions {
		assetType := series.InstrumentType
		if info, ok := quotes.Info(series.ISIN); ok && info.AssetType != "" {
			assetType = info.AssetType
		}

		gap := false
		for _, snap := range series.Snapshots {
			price, ok := quotes.PriceAsOf(series.ISIN, snap.On)
			if !ok {
				if !gap {
					log.Printf("warning: no quote for %s on or before %s, skipping unquotable days", series.ISIN, snap.On)
					gap = true
				}
				continue
			}

			rec := ValuationRecord{
				ISIN:        series.ISIN,
				Ticker:      series.Ticker,
				AssetType:   assetType,
				On:          snap.On,
				Held:        snap.Held,
				CostBasis:   snap.CostBasis,
				MarketValue: M(price, snap.CostBasis.Currency()).Mul(snap.Held),
			}
			rec.ProfitMoney = rec.MarketValue.Sub(rec.CostBasis)
			if rec.CostBasis.IsPositive() {
				p := Percent(100 * rec.ProfitMoney.Amount().InexactFloat64() / rec.CostBasis.Amount().InexactFloat64())
				rec.ProfitPercent = &p
			}
			records = append(records, rec)
		}
	}
	return records
}

// ProfitPoint is the aggregate portfolio profitability on one day.
type ProfitPoint struct {
	On       date.Date
	Invested Money
	Profit   Money
	Percent  Percent
}

// AggregateProfit computes the daily portfolio-wide profitability series:
// the sum of profit over all securities held that day relative to the sum of
// their cost basis. Days with a zero aggregate cost basis are excluded from
// the series, not reported as 0%. The first offsetDays points are skipped.
func AggregateProfit(records []ValuationRecord, offsetDays int) []ProfitPoint {
	type sums struct {
		invested Money
		profit   Money
	}
	byDay := make(map[date.Date]*sums)
	for _, rec := range records {
		s, ok := byDay[rec.On]
		if !ok {
			s = &sums{}
			byDay[rec.On] = s
		}
		s.invested = s.invested.Add(rec.CostBasis)
		s.profit = s.profit.Add(rec.ProfitMoney)
	}

	points := make([]ProfitPoint, 0, len(byDay))
	for on, s := range byDay {
		if !s.invested.IsPositive() {
			continue
		}
		points = append(points, ProfitPoint{
			On:       on,
			Invested: s.invested,
			Profit:   s.profit,
			Percent:  Percent(100 * s.profit.Amount().InexactFloat64() / s.invested.Amount().InexactFloat64()),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].On.Before(points[j].On) })

	if offsetDays > 0 && offsetDays < len(points) {
		points = points[offsetDays:]
	} else if offsetDays >= len(points) {
		points = nil
	}
	return points
}
