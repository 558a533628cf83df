package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/renderer"
	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
)

// reportCmd runs the pipeline and prints the four portfolio reports.
type reportCmd struct {
	account string
	raw     bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print allocation, profit, correlation and ticker reports" }
func (*reportCmd) Usage() string {
	return `tia report -account <id> [-raw]

  Runs the full pipeline over the cached data of the account and prints the
  allocation by asset type, the profit per asset type, the profit
  correlation between types, and the per-ticker summary.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Broker account id (required)")
	f.BoolVar(&c.raw, "raw", false, "Print plain markdown instead of rendering for the terminal")
}

func (c *reportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	records, _, err := runPipeline(cfg, db, c.account)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to report: no valued positions.")
		return subcommands.ExitFailure
	}

	profit := tinvest.CalculateTypeProfit(records)
	markdown := strings.Join([]string{
		renderer.AllocationMarkdown(tinvest.CalculateAllocation(records)),
		renderer.TypeProfitMarkdown(profit),
		renderer.CorrelationMarkdown(tinvest.CalculateCorrelation(profit)),
		renderer.TickerMarkdown(tinvest.CalculateTickerSummaries(records)),
	}, "\n")

	if c.raw {
		fmt.Println(markdown)
		return subcommands.ExitSuccess
	}
	out, err := glamour.Render(markdown, "auto")
	if err != nil {
		// Rendering is cosmetic: fall back to the plain markdown.
		fmt.Println(markdown)
		return subcommands.ExitSuccess
	}
	fmt.Print(out)
	return subcommands.ExitSuccess
}
