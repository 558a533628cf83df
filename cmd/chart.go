package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/renderer"
	"github.com/google/subcommands"
)

// chartCmd runs the pipeline and writes the profitability chart.
type chartCmd struct {
	account string
	output  string
}

func (*chartCmd) Name() string     { return "chart" }
func (*chartCmd) Synopsis() string { return "write the profitability chart as an HTML file" }
func (*chartCmd) Usage() string {
	return `tia chart -account <id> [-o <file>]

  Runs the pipeline over the cached data of the account and writes the
  portfolio profitability time series with buy markers as an HTML chart.
`
}

func (c *chartCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Broker account id (required)")
	f.StringVar(&c.output, "o", "profit.html", "Output HTML file")
}

func (c *chartCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-account is required")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	db, err := openStores()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	records, normalized, err := runPipeline(cfg, db, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	points := tinvest.AggregateProfit(records, cfg.Report.OffsetDays)
	if len(points) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to chart: the profitability series is empty.")
		return subcommands.ExitFailure
	}

	f, err := os.Create(c.output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer f.Close()
	if err := renderer.WriteProfitChart(f, points, normalized); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering chart: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Chart written to %s\n", c.output)
	return subcommands.ExitSuccess
}
