package tinvest

import (
	"testing"

	"github.com/Semihal/tcs-invest-analysis/date"
)

func quoteStore(isin string, points ...QuotePoint) *QuoteStore {
	store := NewQuoteStore()
	store.Add(SecurityInfo{ISIN: isin, AssetType: "stock"}, points, date.MustParse("2030-01-01"))
	return store
}

func quote(day string, close float64) QuotePoint {
	return QuotePoint{On: date.MustParse(day), Close: close}
}

func TestValuateMarksToMarket(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-05", 4, 120),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()
	positions, err := Reconstruct(ops, date.MustParse("2021-03-05"))
	if err != nil {
		t.Fatal(err)
	}

	quotes := quoteStore("ISIN1",
		quote("2021-03-01", 100),
		quote("2021-03-05", 120),
	)
	records := Valuate(positions, quotes)
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}

	last := records[len(records)-1]
	if !last.MarketValue.Equal(RUB(720)) {
		t.Errorf("market value = %s, want 720 (6 x 120)", last.MarketValue)
	}
	if !last.ProfitMoney.Equal(RUB(120)) {
		t.Errorf("profit = %s, want 120", last.ProfitMoney)
	}
	if last.ProfitPercent == nil || !last.ProfitPercent.Equal(20) {
		t.Errorf("profit percent = %v, want 20%%", last.ProfitPercent)
	}
}

func TestValuateForwardFillsQuotes(t *testing.T) {
	// Quotes exist Monday, Tuesday and Thursday. Wednesday must be valued
	// with Tuesday's close, never Thursday's.
	ops := []Operation{buyOn("ISIN1", "2021-03-01", 1, 100)}
	positions, err := Reconstruct(ops, date.MustParse("2021-03-04"))
	if err != nil {
		t.Fatal(err)
	}

	quotes := quoteStore("ISIN1",
		quote("2021-03-01", 100),
		quote("2021-03-02", 105),
		quote("2021-03-04", 130),
	)
	records := Valuate(positions, quotes)
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}
	wednesday := records[2]
	if !wednesday.MarketValue.Equal(RUB(105)) {
		t.Errorf("Wednesday valued at %s, want Tuesday's 105", wednesday.MarketValue)
	}
}

func TestValuateSkipsDaysBeforeFirstQuote(t *testing.T) {
	ops := []Operation{buyOn("ISIN1", "2021-03-01", 1, 100)}
	positions, err := Reconstruct(ops, date.MustParse("2021-03-03"))
	if err != nil {
		t.Fatal(err)
	}

	quotes := quoteStore("ISIN1", quote("2021-03-03", 100))
	records := Valuate(positions, quotes)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1: days before the first quote are unquotable", len(records))
	}
	if records[0].On != date.MustParse("2021-03-03") {
		t.Errorf("record on %s, want 2021-03-03", records[0].On)
	}
}

func TestValuateClosedPositionHasNoPercent(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-02", 10, 120),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()
	positions, err := Reconstruct(ops, date.MustParse("2021-03-02"))
	if err != nil {
		t.Fatal(err)
	}

	quotes := quoteStore("ISIN1", quote("2021-03-01", 100))
	records := Valuate(positions, quotes)
	last := records[len(records)-1]
	if !last.Held.IsZero() {
		t.Fatalf("last record held = %s, want the terminal zero snapshot", last.Held)
	}
	if last.ProfitPercent != nil {
		t.Error("profit percent must be nil on a zero cost basis")
	}
}

func TestAggregateProfitSumsAcrossSecurities(t *testing.T) {
	day := date.MustParse("2021-03-01")
	records := []ValuationRecord{
		{ISIN: "ISIN1", On: day, CostBasis: RUB(1000), ProfitMoney: RUB(100)},
		{ISIN: "ISIN2", On: day, CostBasis: RUB(3000), ProfitMoney: RUB(-100)},
	}

	points := AggregateProfit(records, 0)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	p := points[0]
	if !p.Invested.Equal(RUB(4000)) {
		t.Errorf("invested = %s, want 4000", p.Invested)
	}
	if !p.Profit.Equal(RUB(0)) {
		t.Errorf("profit = %s, want 0", p.Profit)
	}
	if !p.Percent.Equal(0) {
		t.Errorf("percent = %s, want 0%%", p.Percent)
	}
}

func TestAggregateProfitExcludesZeroBasisDays(t *testing.T) {
	records := []ValuationRecord{
		{ISIN: "ISIN1", On: date.MustParse("2021-03-01"), CostBasis: RUB(1000), ProfitMoney: RUB(50)},
		// Terminal day: everything disposed, basis zero.
		{ISIN: "ISIN1", On: date.MustParse("2021-03-02"), CostBasis: RUB(0), ProfitMoney: RUB(0)},
	}

	points := AggregateProfit(records, 0)
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1: a zero-basis day is excluded, not 0%%", len(points))
	}
	if points[0].On != date.MustParse("2021-03-01") {
		t.Errorf("point on %s, want 2021-03-01", points[0].On)
	}
}

func TestAggregateProfitOffset(t *testing.T) {
	var records []ValuationRecord
	for i := 0; i < 5; i++ {
		records = append(records, ValuationRecord{
			ISIN:        "ISIN1",
			On:          date.MustParse("2021-03-01").Add(i),
			CostBasis:   RUB(1000),
			ProfitMoney: RUB(float64(i)),
		})
	}

	points := AggregateProfit(records, 2)
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3 after skipping the first 2", len(points))
	}
	if points[0].On != date.MustParse("2021-03-03") {
		t.Errorf("first point on %s, want 2021-03-03", points[0].On)
	}

	if got := AggregateProfit(records, 10); got != nil {
		t.Errorf("offset beyond the series must empty it, got %d points", len(got))
	}
}
