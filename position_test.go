package tinvest

import (
	"strings"
	"testing"

	"github.com/Semihal/tcs-invest-analysis/date"
)

func snapshotOn(t *testing.T, s PositionSeries, day string) (PositionSnapshot, bool) {
	t.Helper()
	on := date.MustParse(day)
	for _, snap := range s.Snapshots {
		if snap.On == on {
			return snap, true
		}
	}
	return PositionSnapshot{}, false
}

func TestReconstructBuyThenPartialSell(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-05", 4, 120),
	}
	ops[1].Quantity = ops[1].Quantity.Neg() // normalized sells are negative

	series, err := Reconstruct(ops, date.MustParse("2021-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 {
		t.Fatalf("got %d series, want 1", len(series))
	}
	s := series[0]
	if len(s.Snapshots) != 5 {
		t.Fatalf("got %d snapshots, want 5 (one per calendar day)", len(s.Snapshots))
	}

	// Days 1-4: the buy forward-filled.
	for _, day := range []string{"2021-03-01", "2021-03-02", "2021-03-03", "2021-03-04"} {
		snap, ok := snapshotOn(t, s, day)
		if !ok {
			t.Fatalf("no snapshot on %s", day)
		}
		if !snap.Held.Equal(Q(10)) || !snap.CostBasis.Equal(RUB(1000)) {
			t.Errorf("%s: held=%s basis=%s, want 10 and 1000", day, snap.Held, snap.CostBasis)
		}
	}

	// Day 5: 4 of 10 sold, the basis follows the remaining share.
	snap, _ := snapshotOn(t, s, "2021-03-05")
	if !snap.Held.Equal(Q(6)) || !snap.CostBasis.Equal(RUB(600)) {
		t.Errorf("after partial sell: held=%s basis=%s, want 6 and 600", snap.Held, snap.CostBasis)
	}
	avg, ok := snap.AvgCost()
	if !ok || !avg.Equal(RUB(100)) {
		t.Errorf("avg cost = %s, want 100 (unchanged by the sell)", avg)
	}
}

func TestReconstructCommissionEntersBasis(t *testing.T) {
	op := buyOn("ISIN1", "2021-03-01", 10, 100)
	op.Commission = RUB(5)

	series, err := Reconstruct([]Operation{op}, date.MustParse("2021-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	snap := series[0].Snapshots[0]
	if !snap.CostBasis.Equal(RUB(1005)) {
		t.Errorf("basis = %s, want 1005 (amount plus commission)", snap.CostBasis)
	}
}

func TestReconstructFullDisposal(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-03", 10, 120),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()

	series, err := Reconstruct(ops, date.MustParse("2021-03-08"))
	if err != nil {
		t.Fatal(err)
	}
	s := series[0]

	// One terminal snapshot on the disposal day, then nothing.
	last := s.Snapshots[len(s.Snapshots)-1]
	if last.On != date.MustParse("2021-03-03") {
		t.Fatalf("series ends on %s, want the disposal day 2021-03-03", last.On)
	}
	if !last.Held.IsZero() || !last.CostBasis.IsZero() {
		t.Errorf("terminal snapshot held=%s basis=%s, want both zero", last.Held, last.CostBasis)
	}
	if _, ok := last.AvgCost(); ok {
		t.Error("avg cost must be undefined once nothing is held")
	}
}

func TestReconstructReentryStartsFresh(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-03", 10, 120),
		buyOn("ISIN1", "2021-03-08", 5, 50),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()

	series, err := Reconstruct(ops, date.MustParse("2021-03-09"))
	if err != nil {
		t.Fatal(err)
	}
	s := series[0]

	// No snapshots between the disposal and the re-entry.
	for _, day := range []string{"2021-03-04", "2021-03-05", "2021-03-06", "2021-03-07"} {
		if _, ok := snapshotOn(t, s, day); ok {
			t.Errorf("unexpected snapshot on %s while the position is closed", day)
		}
	}

	// The new segment carries nothing over from the old one.
	snap, ok := snapshotOn(t, s, "2021-03-08")
	if !ok {
		t.Fatal("no snapshot on the re-entry day")
	}
	if !snap.Held.Equal(Q(5)) || !snap.CostBasis.Equal(RUB(250)) {
		t.Errorf("re-entry: held=%s basis=%s, want 5 and 250", snap.Held, snap.CostBasis)
	}
}

func TestReconstructSameDayNetZeroFromFlat(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-01", 10, 100),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()

	series, err := Reconstruct(ops, date.MustParse("2021-03-05"))
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 0 {
		t.Fatalf("got %d series, want none for a day trade that nets to zero", len(series))
	}
}

func TestReconstructOversellFails(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN1", "2021-03-01", 10, 100),
		sellOn("ISIN1", "2021-03-02", 12, 100),
	}
	ops[1].Quantity = ops[1].Quantity.Neg()

	_, err := Reconstruct(ops, date.MustParse("2021-03-05"))
	if err == nil {
		t.Fatal("selling more than held must fail")
	}
	if !strings.Contains(err.Error(), "ISIN1") {
		t.Errorf("error %q does not name the security", err)
	}
}

func TestReconstructUnconvertedAmountsCount(t *testing.T) {
	// An operation the normalizer could not convert still enters the basis
	// at face value: a gap in the rate data must not lose the trade.
	op := tradeOn(Buy, "ISIN1", "2021-03-01", 2, 10, 20, "USD")

	series, err := Reconstruct([]Operation{op}, date.MustParse("2021-03-01"))
	if err != nil {
		t.Fatal(err)
	}
	snap := series[0].Snapshots[0]
	if !snap.CostBasis.Equal(RUB(20)) {
		t.Errorf("basis = %s, want 20 taken at face value", snap.CostBasis)
	}
}

func TestReconstructSeveralSecurities(t *testing.T) {
	ops := []Operation{
		buyOn("ISIN2", "2021-03-02", 1, 50),
		buyOn("ISIN1", "2021-03-01", 10, 100),
	}

	series, err := Reconstruct(ops, date.MustParse("2021-03-02"))
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 2 {
		t.Fatalf("got %d series, want 2", len(series))
	}
	if series[0].ISIN != "ISIN1" || series[1].ISIN != "ISIN2" {
		t.Errorf("series order = %s, %s, want stable ISIN order", series[0].ISIN, series[1].ISIN)
	}
	if len(series[0].Snapshots) != 2 {
		t.Errorf("ISIN1 has %d snapshots, want 2", len(series[0].Snapshots))
	}
	if len(series[1].Snapshots) != 1 {
		t.Errorf("ISIN2 has %d snapshots, want 1 (its calendar starts at its first trade)", len(series[1].Snapshots))
	}
}
