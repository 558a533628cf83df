package tinvest

import (
	"github.com/Semihal/tcs-invest-analysis/date"
)

// RatePoint is the reporting-currency value of one unit of a foreign currency
// on one day.
type RatePoint struct {
	On   date.Date `json:"date"`
	Rate float64   `json:"rate"`
}

// RateTable holds daily conversion rates into the reporting currency, keyed
// by currency code.
type RateTable struct {
	rates map[string]*date.History[float64]
}

// NewRateTable creates an empty rate table.
func NewRateTable() *RateTable {
	return &RateTable{rates: make(map[string]*date.History[float64])}
}

// Add records the rate for one currency on one day.
func (t *RateTable) Add(currency string, on date.Date, rate float64) {
	h, ok := t.rates[currency]
	if !ok {
		h = new(date.History[float64])
		t.rates[currency] = h
	}
	h.Append(on, rate)
}

// AddHistory records a whole rate history for one currency.
func (t *RateTable) AddHistory(currency string, points []RatePoint) {
	for _, p := range points {
		t.Add(currency, p.On, p.Rate)
	}
}

// Rate returns the conversion rate for the currency on exactly that day.
//
// The lookup is deliberately exact: the source publishes rates only on its
// business days, and an operation dated on a day without a published rate is
// a conversion gap the normalizer passes through unconverted.
func (t *RateTable) Rate(currency string, on date.Date) (float64, bool) {
	h, ok := t.rates[currency]
	if !ok {
		return 0, false
	}
	return h.Get(on)
}

// Currencies returns the currency codes present in the table.
func (t *RateTable) Currencies() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	return codes
}
