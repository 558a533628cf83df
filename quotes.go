package tinvest

import (
	"sort"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// QuoteStore holds daily closing prices and metadata per security, keyed by
// ISIN. It is produced by the quote clients and read by the valuation engine.
type QuoteStore struct {
	infos  map[string]SecurityInfo
	prices map[string]*date.History[float64]
}

// NewQuoteStore creates an empty quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		infos:  make(map[string]SecurityInfo),
		prices: make(map[string]*date.History[float64]),
	}
}

// Add records a security with its price history. Points dated after 'cutoff'
// are discarded: data for the current day is considered unsettled.
func (s *QuoteStore) Add(info SecurityInfo, points []QuotePoint, cutoff date.Date) {
	s.infos[info.ISIN] = info
	h, ok := s.prices[info.ISIN]
	if !ok {
		h = new(date.History[float64])
		s.prices[info.ISIN] = h
	}
	for _, p := range points {
		if p.On.After(cutoff) {
			continue
		}
		h.Append(p.On, p.Close)
	}
}

// Info returns the metadata for a security, if known.
func (s *QuoteStore) Info(isin string) (SecurityInfo, bool) {
	info, ok := s.infos[isin]
	return info, ok
}

// PriceAsOf returns the closing price for the security on the given day, or
// the most recent close before it. It never reads prices from later days and
// never falls back to another security.
func (s *QuoteStore) PriceAsOf(isin string, on date.Date) (float64, bool) {
	h, ok := s.prices[isin]
	if !ok {
		return 0, false
	}
	return h.ValueAsOf(on)
}

// LastQuoteDay returns the date of the most recent quote over all securities.
func (s *QuoteStore) LastQuoteDay() (date.Date, bool) {
	var last date.Date
	for _, h := range s.prices {
		if day, _ := h.Latest(); day.After(last) {
			last = day
		}
	}
	return last, !last.IsZero()
}

// ISINs returns the known security identifiers in stable order.
func (s *QuoteStore) ISINs() []string {
	isins := make([]string, 0, len(s.infos))
	for isin := range s.infos {
		isins = append(isins, isin)
	}
	sort.Strings(isins)
	return isins
}
