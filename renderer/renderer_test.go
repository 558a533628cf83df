package renderer

import (
	"strings"
	"testing"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
)

func TestAllocationMarkdown(t *testing.T) {
	report := &tinvest.AllocationReport{
		On:    date.MustParse("2021-03-05"),
		Total: tinvest.M(4000, "RUB"),
		Rows: []tinvest.AllocationRow{
			{AssetType: "bond", Invested: tinvest.M(3000, "RUB"), Percent: 75},
			{AssetType: "stock", Invested: tinvest.M(1000, "RUB"), Percent: 25},
		},
	}

	got := AllocationMarkdown(report)
	for _, want := range []string{"2021-03-05", "| bond |", "75.00%", "| stock |", "25.00%", "**Total**"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown lacks %q:\n%s", want, got)
		}
	}
}

func TestCorrelationMarkdownEmpty(t *testing.T) {
	got := CorrelationMarkdown(&tinvest.CorrelationReport{})
	if !strings.Contains(got, "Not enough overlapping history") {
		t.Errorf("empty report markdown = %q", got)
	}
}

func TestTickerMarkdown(t *testing.T) {
	report := &tinvest.TickerReport{
		On: date.MustParse("2021-03-05"),
		Rows: []tinvest.TickerSummary{{
			Ticker:     "AAPL",
			Held:       tinvest.Q(10),
			Invested:   tinvest.M(1000, "RUB"),
			AvgCost:    tinvest.M(100, "RUB"),
			MinProfit:  -10,
			MaxProfit:  30,
			LastProfit: 30,
			Days:       42,
		}},
	}

	got := TickerMarkdown(report)
	for _, want := range []string{"| AAPL |", "-10.00%", "+30.00%", "42d"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown lacks %q:\n%s", want, got)
		}
	}
}
