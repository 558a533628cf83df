package tinvest

import (
	"fmt"
	"time"

	"github.com/Semihal/tcs-invest-analysis/date"
)

// OperationKind classifies a broker operation.
type OperationKind string

const (
	Buy        OperationKind = "buy"
	Sell       OperationKind = "sell"
	BuyCard    OperationKind = "buy_card" // purchase paid with a linked card; economically a buy
	Dividend   OperationKind = "dividend"
	Commission OperationKind = "commission"
)

// isTrade reports whether the kind takes part in position reconstruction.
func (k OperationKind) isTrade() bool {
	return k == Buy || k == Sell || k == BuyCard
}

// Operation is a single economic event reported by the broker.
//
// After normalization Kind is either Buy or Sell, Quantity is signed (buys
// positive, sells negative), and all amounts are in the reporting currency
// unless Converted is false.
type Operation struct {
	ID             string        `json:"id"`
	Time           time.Time     `json:"time"`
	ISIN           string        `json:"isin"`
	Ticker         string        `json:"ticker,omitempty"`
	InstrumentType string        `json:"instrument_type,omitempty"`
	Kind           OperationKind `json:"kind"`
	Quantity       Quantity      `json:"quantity"`
	UnitPrice      Money         `json:"unit_price"`
	TotalAmount    Money         `json:"total_amount"`
	Commission     Money         `json:"commission"`
	Currency       string        `json:"currency"`
	Converted      bool          `json:"converted,omitempty"`
}

// On returns the calendar day of the operation.
func (op Operation) On() date.Date { return date.FromTime(op.Time) }

// SplitEvent is a corporate action changing quantity and price proportionally
// without changing economic value. It applies to all operations on the
// security dated on or before the effective date.
type SplitEvent struct {
	ISIN      string    `yaml:"isin"`
	Effective date.Date `yaml:"-"`
	Date      string    `yaml:"date"`
	Ratio     float64   `yaml:"ratio"`
}

// Validate parses the effective date and checks the ratio.
func (s *SplitEvent) Validate() error {
	if s.ISIN == "" {
		return fmt.Errorf("split event: missing isin")
	}
	if s.Ratio <= 0 {
		return fmt.Errorf("split event for %s: ratio must be positive, got %v", s.ISIN, s.Ratio)
	}
	effective, err := date.Parse(s.Date)
	if err != nil {
		return fmt.Errorf("split event for %s: %w", s.ISIN, err)
	}
	s.Effective = effective
	return nil
}

// QuotePoint is a single daily closing price for a security.
type QuotePoint struct {
	On    date.Date `json:"date"`
	Close float64   `json:"close"`
}

// SecurityInfo is the metadata the quote source knows about a security.
type SecurityInfo struct {
	ISIN      string `json:"isin"`
	Name      string `json:"name,omitempty"`
	AssetType string `json:"asset_type"` // stock, bond or etf
	Geography string `json:"geography,omitempty"`
	Currency  string `json:"currency,omitempty"`
}
