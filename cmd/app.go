// Package cmd implements the CLI application to fetch and analyse a
// portfolio.
package cmd

import (
	"flag"
	"fmt"
	"path/filepath"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/Semihal/tcs-invest-analysis/store"
	"github.com/google/subcommands"
)

// Commands are the subcommands of the tia tool, in help order.
// A main package registers them all and executes the user-selected one.
var Commands = []subcommands.Command{
	&accountsCmd{},
	&fetchCmd{},
	&reportCmd{},
	&chartCmd{},
}

// As a CLI application it has a very short lived lifecycle, so shared state
// lives in global flags.

var configPath = flag.String("config", "config.yaml", "Path to the YAML configuration file")
var dataDir = flag.String("data", "data", "Path to the folder caching fetched operations, quotes and rates")

// LoadConfig loads and validates the application configuration.
// Any error is fatal before processing starts.
func LoadConfig() (*tinvest.Config, error) {
	return tinvest.LoadConfig(*configPath)
}

// stores bundles the flat-file caches of the three external sources.
type stores struct {
	operations *store.Store[tinvest.Operation]    // one file per account
	securities *store.Store[tinvest.SecurityInfo] // one file per ISIN
	quotes     *store.Store[tinvest.QuotePoint]   // one file per ISIN
	rates      *store.Store[tinvest.RatePoint]    // one file per currency code
}

func openStores() (*stores, error) {
	operations, err := store.Open[tinvest.Operation](filepath.Join(*dataDir, "operations"))
	if err != nil {
		return nil, err
	}
	securities, err := store.Open[tinvest.SecurityInfo](filepath.Join(*dataDir, "securities"))
	if err != nil {
		return nil, err
	}
	quotes, err := store.Open[tinvest.QuotePoint](filepath.Join(*dataDir, "quotes"))
	if err != nil {
		return nil, err
	}
	rates, err := store.Open[tinvest.RatePoint](filepath.Join(*dataDir, "rates"))
	if err != nil {
		return nil, err
	}
	return &stores{operations: operations, securities: securities, quotes: quotes, rates: rates}, nil
}

// runPipeline loads the cached data of one account and runs the full
// normalize, reconstruct and value pipeline over it.
func runPipeline(cfg *tinvest.Config, db *stores, accountID string) (records []tinvest.ValuationRecord, normalized []tinvest.Operation, err error) {
	rawOps, found, err := db.operations.Get(accountID)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, fmt.Errorf("no cached operations for account %s: run 'tia fetch' first", accountID)
	}

	rates := tinvest.NewRateTable()
	currencies, err := db.rates.Keys()
	if err != nil {
		return nil, nil, err
	}
	for _, code := range currencies {
		points, _, err := db.rates.Get(code)
		if err != nil {
			return nil, nil, err
		}
		rates.AddHistory(code, points)
	}

	normalized = tinvest.Normalize(rawOps, cfg.StockSplits, rates, date.Today())

	// Quotes known for the current day are incomplete and ignored.
	cutoff := date.Today().Add(-1)
	quotes := tinvest.NewQuoteStore()
	isins, err := db.quotes.Keys()
	if err != nil {
		return nil, nil, err
	}
	for _, isin := range isins {
		points, _, err := db.quotes.Get(isin)
		if err != nil {
			return nil, nil, err
		}
		info := tinvest.SecurityInfo{ISIN: isin}
		if infos, found, err := db.securities.Get(isin); err != nil {
			return nil, nil, err
		} else if found && len(infos) > 0 {
			info = infos[0]
		}
		quotes.Add(info, points, cutoff)
	}

	until, ok := quotes.LastQuoteDay()
	if !ok {
		until = date.LastTradingDay()
	}
	positions, err := tinvest.Reconstruct(normalized, until)
	if err != nil {
		return nil, nil, err
	}
	return tinvest.Valuate(positions, quotes), normalized, nil
}
