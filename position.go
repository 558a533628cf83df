package tinvest

import (
	"fmt"
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// PositionSnapshot is the state of one security holding at the end of one
// calendar day.
type PositionSnapshot struct {
	ISIN      string    `json:"isin"`
	On        date.Date `json:"date"`
	Held      Quantity  `json:"held_quantity"`
	CostBasis Money     `json:"cost_basis"`
}

// AvgCost returns the average acquisition cost of the held quantity.
// It is undefined while nothing is held.
func (s PositionSnapshot) AvgCost() (Money, bool) {
	if s.Held.IsZero() {
		return Money{}, false
	}
	return s.CostBasis.Div(s.Held), true
}

// PositionSeries is the dense daily snapshot series of one security.
type PositionSeries struct {
	ISIN           string
	Ticker         string
	InstrumentType string
	Snapshots      []PositionSnapshot
}

// Reconstruct converts the normalized operation stream into one dense daily
// snapshot series per security, over the calendar [first operation day,
// until].
//
// The cost basis convention is average cost over the currently held quantity:
// a buy adds its total amount plus commission, a partial sell reduces the
// basis proportionally to the quantity disposed (not to the sale proceeds),
// and a full disposal resets it to zero. Days without trades repeat the last
// snapshot. Once the held quantity reaches zero the series stops until a new
// buy opens a fresh tracking segment with no carryover from the previous one.
// A security whose operations net to zero within a single day from a flat
// position produces no snapshots at all.
//
// A sell exceeding the cumulative holding is a data integrity error and
// aborts the reconstruction.
func Reconstruct(ops []Operation, until date.Date) ([]PositionSeries, error) {
	byISIN := make(map[string][]Operation)
	for _, op := range ops {
		byISIN[op.ISIN] = append(byISIN[op.ISIN], op)
	}

	isins := make([]string, 0, len(byISIN))
	for isin := range byISIN {
		isins = append(isins, isin)
	}
	sort.Strings(isins)

	series := make([]PositionSeries, 0, len(isins))
	for _, isin := range isins {
		s, err := reconstructSecurity(isin, byISIN[isin], until)
		if err != nil {
			return nil, err
		}
		if len(s.Snapshots) > 0 {
			series = append(series, s)
		}
	}
	return series, nil
}

// reporting takes the amount at face value in the reporting currency.
// Operations the normalizer left unconverted keep their native magnitude,
// which follows the best-effort conversion policy: a missing rate is a
// logged gap, never a reason to drop the trade.
func reporting(m Money) Money { return M(m.Amount(), ReportingCurrency) }

func reconstructSecurity(isin string, ops []Operation, until date.Date) (PositionSeries, error) {
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Time.Before(ops[j].Time) })

	s := PositionSeries{
		ISIN:           isin,
		Ticker:         ops[0].Ticker,
		InstrumentType: ops[0].InstrumentType,
	}

	byDay := make(map[date.Date][]Operation, len(ops))
	for _, op := range ops {
		byDay[op.On()] = append(byDay[op.On()], op)
	}

	held := Q(0)
	basis := M(0, ReportingCurrency)
	open := false

	calendar := date.NewRange(ops[0].On(), until)
	for on := range calendar.Days() {
		dayOps, traded := byDay[on]
		if !traded {
			if open {
				// Forward-fill across non-trading days.
				s.Snapshots = append(s.Snapshots, PositionSnapshot{ISIN: isin, On: on, Held: held, CostBasis: basis})
			}
			continue
		}

		for _, op := range dayOps {
			after := held.Add(op.Quantity)
			if after.IsNegative() {
				return PositionSeries{}, fmt.Errorf(
					"data integrity: sell of %s on %s exceeds held quantity (%s held, %s sold)",
					isin, on, held, op.Quantity.Neg())
			}
			switch op.Kind {
			case Buy:
				basis = basis.Add(reporting(op.TotalAmount)).Add(reporting(op.Commission))
			case Sell:
				if after.IsZero() {
					basis = M(0, ReportingCurrency)
				} else {
					// Proportional reduction: the basis follows the share of
					// the holding that remains, not the sale proceeds.
					basis = basis.Mul(after).Div(held)
				}
			}
			held = after
		}

		switch {
		case held.IsPositive():
			s.Snapshots = append(s.Snapshots, PositionSnapshot{ISIN: isin, On: on, Held: held, CostBasis: basis})
			open = true
		case open:
			// Full disposal: one terminal snapshot, then the series stops.
			s.Snapshots = append(s.Snapshots, PositionSnapshot{ISIN: isin, On: on, Held: held, CostBasis: basis})
			open = false
		default:
			// Net zero within one day from a flat position: nothing to track.
		}
	}
	return s, nil
}
