package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Semihal/tcs-invest-analysis/tinkoff"
	"github.com/google/subcommands"
)

// accountsCmd lists the broker accounts of the configured token.
type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the broker accounts" }
func (*accountsCmd) Usage() string {
	return `tia accounts

  Lists the broker accounts available with the configured token. Use the
  account id with 'tia fetch -account'.
`
}

func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	client := tinkoff.NewClient(cfg.Tinkoff.Token)
	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	for i, account := range accounts {
		fmt.Printf("[%d] %s\t%s\n", i+1, account.ID, account.Type)
	}
	return subcommands.ExitSuccess
}
