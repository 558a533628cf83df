package cmd

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/cbrf"
	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/Semihal/tcs-invest-analysis/investfunds"
	"github.com/Semihal/tcs-invest-analysis/tinkoff"
	"github.com/google/subcommands"
)

// fetchCmd downloads operations, quotes and currency rates into the local
// data folder.
type fetchCmd struct {
	account string
	from    string
	refresh bool
}

func (*fetchCmd) Name() string     { return "fetch" }
func (*fetchCmd) Synopsis() string { return "fetch operations, quotes and rates into the data folder" }
func (*fetchCmd) Usage() string {
	return `tia fetch [-account <id>] [-from <date>] [-refresh]

  Fetches the account's operation history from the broker, then the price
  history of every security seen in the operations and the rate history of
  every supported foreign currency. Everything lands in the data folder so
  later runs of 'tia report' and 'tia chart' work offline.

  Securities whose quote fetch keeps failing are skipped with a warning.
`
}

func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Broker account id. Prompts when the token has several accounts.")
	f.StringVar(&c.from, "from", "2015-01-01", "First date of the fetched history")
	f.BoolVar(&c.refresh, "refresh", false, "Re-fetch quotes and rates already present in the data folder")
}

func (c *fetchCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	from, err := date.Parse(c.from)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -from: %v\n", err)
		return subcommands.ExitUsageError
	}

	broker := tinkoff.NewClient(cfg.Tinkoff.Token)
	accountID, err := c.chooseAccount(ctx, broker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	history := date.NewRange(from, date.Today())
	ops, err := broker.ListOperations(ctx, accountID, history)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := db.operations.Put(accountID, ops); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Printf("fetched %d operations for account %s", len(ops), accountID)

	if err := c.fetchQuotes(ctx, db, ops, from); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := c.fetchRates(ctx, db, from); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// chooseAccount resolves the target account: the -account flag, the only
// account, or an interactive choice.
func (c *fetchCmd) chooseAccount(ctx context.Context, broker *tinkoff.Client) (string, error) {
	if c.account != "" {
		return c.account, nil
	}
	accounts, err := broker.ListAccounts(ctx)
	if err != nil {
		return "", err
	}
	switch len(accounts) {
	case 0:
		return "", errors.New("the token has no broker accounts")
	case 1:
		return accounts[0].ID, nil
	}

	fmt.Println("Choose an account:")
	for i, account := range accounts {
		fmt.Printf("[%d] %s\t%s\n", i+1, account.ID, account.Type)
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("cannot read the account choice: %w", err)
	}
	i, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || i < 1 || i > len(accounts) {
		return "", fmt.Errorf("invalid account choice %q", strings.TrimSpace(line))
	}
	return accounts[i-1].ID, nil
}

// fetchQuotes downloads metadata and price history for every security seen
// in the operations, through the bounded fetch pool. Lookup failures and
// exhausted retries skip the security, never the run.
func (c *fetchCmd) fetchQuotes(ctx context.Context, db *stores, ops []tinvest.Operation, from date.Date) error {
	seen := make(map[string]bool)
	var isins []string
	for _, op := range ops {
		if op.ISIN == "" || seen[op.ISIN] {
			continue
		}
		seen[op.ISIN] = true
		if !c.refresh && db.quotes.Has(op.ISIN) {
			continue
		}
		isins = append(isins, op.ISIN)
	}
	if len(isins) == 0 {
		return nil
	}

	quotes := investfunds.NewClient()
	pool := tinvest.DefaultFetchPool()
	failed := pool.Run(ctx, isins, func(ctx context.Context, isin string) error {
		asset, err := quotes.LookupSecurity(ctx, isin)
		if err != nil {
			return err
		}
		points, err := quotes.FetchPriceHistory(ctx, asset, from)
		if err != nil {
			return err
		}
		if err := db.securities.Put(isin, []tinvest.SecurityInfo{asset.Info}); err != nil {
			return err
		}
		return db.quotes.Put(isin, points)
	})
	if len(failed) > 0 {
		log.Printf("quotes missing for %d securities: %s", len(failed), strings.Join(failed, ", "))
	}
	return ctx.Err()
}

// fetchRates downloads the rate history of every supported foreign currency.
func (c *fetchCmd) fetchRates(ctx context.Context, db *stores, from date.Date) error {
	var codes []string
	for _, code := range cbrf.Currencies() {
		if !c.refresh && db.rates.Has(code) {
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil
	}

	rates := cbrf.NewClient()
	pool := tinvest.DefaultFetchPool()
	pool.Workers = 1 // the bank API is small, one polite worker is plenty
	failed := pool.Run(ctx, codes, func(ctx context.Context, code string) error {
		points, err := rates.FetchRateHistory(ctx, code, date.NewRange(from, date.Today()))
		if err != nil {
			return err
		}
		return db.rates.Put(code, points)
	})
	if len(failed) > 0 {
		log.Printf("rates missing for: %s", strings.Join(failed, ", "))
	}
	return ctx.Err()
}
