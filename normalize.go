package tinvest

import (
	"log"
	"slices"
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/shopspring/decimal"
)

// Normalize turns the raw broker operation stream into the canonical trade
// list the reconstructor consumes:
//
//   - only buys and sells are kept (buy_card is a buy); dividends and
//     commissions are not trades, and operations of an unknown kind are
//     dropped with a warning,
//   - operations dated on or after 'runDate' are dropped, since data for the
//     current day is incomplete,
//   - amounts are converted into the reporting currency using the rate for
//     the operation's own day; an operation whose currency has no rate for
//     that day keeps its native amounts and is logged, never fatal,
//   - sell quantities become negative, buy quantities stay positive,
//   - split events are applied to operations dated on or before their
//     effective date.
//
// The result is sorted chronologically.
func Normalize(ops []Operation, splits []SplitEvent, rates *RateTable, runDate date.Date) []Operation {
	normalized := make([]Operation, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case Buy, Sell, BuyCard:
			// trades, keep.
		case Dividend, Commission:
			continue
		default:
			log.Printf("warning: dropping operation %s: unknown kind %q", op.ID, op.Kind)
			continue
		}
		if !op.On().Before(runDate) {
			continue
		}

		op = convert(op, rates)

		if op.Kind == BuyCard {
			op.Kind = Buy
		}
		// Canonical sign convention: buys positive, sells negative.
		// Amounts are magnitudes regardless of direction.
		op.Quantity = absQuantity(op.Quantity)
		if op.Kind == Sell {
			op.Quantity = op.Quantity.Neg()
		}
		op.TotalAmount = op.TotalAmount.Abs()
		op.UnitPrice = op.UnitPrice.Abs()
		op.Commission = op.Commission.Abs()

		normalized = append(normalized, op)
	}

	applySplits(normalized, splits)

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Time.Before(normalized[j].Time)
	})
	return normalized
}

// convert rewrites the operation amounts into the reporting currency.
// A missing rate is a data gap, not an error: the operation passes through
// unconverted with Converted left false.
func convert(op Operation, rates *RateTable) Operation {
	if op.Currency == ReportingCurrency {
		op.Converted = true
		return op
	}
	rate, ok := rates.Rate(op.Currency, op.On())
	if !ok {
		log.Printf("warning: no %s rate for %s, keeping operation %s unconverted",
			op.Currency, op.On(), op.ID)
		return op
	}
	r := decimal.NewFromFloat(rate)
	op.TotalAmount = M(op.TotalAmount.Amount().Mul(r), ReportingCurrency)
	op.UnitPrice = M(op.UnitPrice.Amount().Mul(r), ReportingCurrency)
	op.Commission = M(op.Commission.Amount().Mul(r), ReportingCurrency)
	op.Currency = ReportingCurrency
	op.Converted = true
	return op
}

func absQuantity(q Quantity) Quantity {
	if q.IsNegative() {
		return q.Neg()
	}
	return q
}

// applySplits adjusts quantity and unit price of every operation dated on or
// before each split's effective date. Splits on different securities are
// independent; several splits on the same security are applied in ascending
// effective-date order so the cumulative ratio compounds correctly, and each
// split is applied exactly once.
func applySplits(ops []Operation, splits []SplitEvent) {
	ordered := slices.Clone(splits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Effective.Before(ordered[j].Effective)
	})

	for _, split := range ordered {
		ratio := Q(split.Ratio)
		for i := range ops {
			if ops[i].ISIN != split.ISIN || ops[i].On().After(split.Effective) {
				continue
			}
			ops[i].Quantity = ops[i].Quantity.Mul(ratio)
			ops[i].UnitPrice = ops[i].UnitPrice.Div(ratio)
		}
	}
}
