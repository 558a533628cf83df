// Package tinkoff is a client for the Tinkoff Invest OpenAPI, the source of
// the raw operation stream.
package tinkoff

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
	"github.com/Semihal/tcs-invest-analysis/httpcache"
)

const defaultBaseURL = "https://api-invest.tinkoff.ru/openapi"

// Account is one broker account of the user.
type Account struct {
	ID   string
	Type string // e.g. Tinkoff, TinkoffIis
}

// CurrencyBalance is the free cash held in one currency.
type CurrencyBalance struct {
	Currency string
	Balance  float64
}

// Client talks to the broker REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client

	instruments map[string]instrument // resolved figi -> instrument, per run
}

// NewClient returns a client authenticated with the given token.
func NewClient(token string) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		token:       token,
		http:        &http.Client{Timeout: 30 * time.Second},
		instruments: make(map[string]instrument),
	}
}

func (c *Client) header() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+c.token)
	return h
}

// ListAccounts returns all broker accounts of the token's owner.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	var payload struct {
		Payload struct {
			Accounts []struct {
				BrokerAccountType string `json:"brokerAccountType"`
				BrokerAccountID   string `json:"brokerAccountId"`
			} `json:"accounts"`
		} `json:"payload"`
	}
	if err := httpcache.GetJSON(ctx, c.http, c.baseURL+"/user/accounts", c.header(), &payload); err != nil {
		return nil, fmt.Errorf("cannot list broker accounts: %w", err)
	}

	accounts := make([]Account, 0, len(payload.Payload.Accounts))
	for _, a := range payload.Payload.Accounts {
		accounts = append(accounts, Account{ID: a.BrokerAccountID, Type: a.BrokerAccountType})
	}
	return accounts, nil
}

// jsonOperation is the wire form of one operation.
type jsonOperation struct {
	ID             string  `json:"id"`
	Status         string  `json:"status"`
	Figi           string  `json:"figi"`
	InstrumentType string  `json:"instrumentType"`
	OperationType  string  `json:"operationType"`
	Date           string  `json:"date"` // RFC3339 with offset
	Currency       string  `json:"currency"`
	Payment        float64 `json:"payment"`
	Price          float64 `json:"price"`
	Quantity       int64   `json:"quantityExecuted"`
	Commission     *struct {
		Currency string  `json:"currency"`
		Value    float64 `json:"value"`
	} `json:"commission"`
}

// ListOperations returns the completed operations of the account over the
// range, as raw Operation records ready for normalization. Broker commission
// line items are dropped: the commission of a trade is already carried by
// the trade itself.
func (c *Client) ListOperations(ctx context.Context, accountID string, r date.Range) ([]tinvest.Operation, error) {
	q := url.Values{}
	q.Set("from", r.From.Format("2006-01-02T15:04:05Z07:00"))
	q.Set("to", r.To.Add(1).Format("2006-01-02T15:04:05Z07:00"))
	q.Set("brokerAccountId", accountID)

	var payload struct {
		Payload struct {
			Operations []jsonOperation `json:"operations"`
		} `json:"payload"`
	}
	addr := c.baseURL + "/operations?" + q.Encode()
	if err := httpcache.GetJSON(ctx, c.http, addr, c.header(), &payload); err != nil {
		return nil, fmt.Errorf("cannot list operations for account %s: %w", accountID, err)
	}

	ops := make([]tinvest.Operation, 0, len(payload.Payload.Operations))
	for _, j := range payload.Payload.Operations {
		if j.Status != "Done" {
			continue
		}
		if j.OperationType == "BrokerCommission" {
			continue
		}
		if j.Figi == "" {
			// Cash movements (pay-ins, taxes) carry no instrument.
			continue
		}
		op, err := c.toOperation(ctx, j)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (c *Client) toOperation(ctx context.Context, j jsonOperation) (tinvest.Operation, error) {
	when, err := time.Parse(time.RFC3339, j.Date)
	if err != nil {
		return tinvest.Operation{}, fmt.Errorf("operation %s: invalid date %q: %w", j.ID, j.Date, err)
	}
	inst, err := c.instrumentByFigi(ctx, j.Figi)
	if err != nil {
		return tinvest.Operation{}, err
	}

	var commission float64
	if j.Commission != nil {
		commission = j.Commission.Value
	}
	return tinvest.Operation{
		ID:             j.ID,
		Time:           when,
		ISIN:           inst.ISIN,
		Ticker:         inst.Ticker,
		InstrumentType: strings.ToLower(j.InstrumentType),
		Kind:           kindOf(j.OperationType),
		Quantity:       tinvest.Q(j.Quantity),
		UnitPrice:      tinvest.M(j.Price, j.Currency),
		TotalAmount:    tinvest.M(j.Payment, j.Currency),
		Commission:     tinvest.M(commission, j.Currency),
		Currency:       j.Currency,
	}, nil
}

// kindOf maps the broker's operation type names onto the pipeline kinds.
// Unknown types pass through lowercased and are dropped with a warning by
// the normalizer.
func kindOf(operationType string) tinvest.OperationKind {
	switch operationType {
	case "Buy":
		return tinvest.Buy
	case "BuyCard":
		return tinvest.BuyCard
	case "Sell":
		return tinvest.Sell
	case "Dividend":
		return tinvest.Dividend
	case "BrokerCommission":
		return tinvest.Commission
	default:
		return tinvest.OperationKind(strings.ToLower(operationType))
	}
}

type instrument struct {
	ISIN   string
	Ticker string
}

// instrumentByFigi resolves the figi of an operation into its ISIN and
// ticker, with an in-memory cache since a portfolio repeats the same few
// instruments.
func (c *Client) instrumentByFigi(ctx context.Context, figi string) (instrument, error) {
	if inst, ok := c.instruments[figi]; ok {
		return inst, nil
	}
	var payload struct {
		Payload struct {
			ISIN   string `json:"isin"`
			Ticker string `json:"ticker"`
		} `json:"payload"`
	}
	addr := c.baseURL + "/market/search/by-figi?figi=" + url.QueryEscape(figi)
	if err := httpcache.GetJSON(ctx, c.http, addr, c.header(), &payload); err != nil {
		return instrument{}, fmt.Errorf("cannot resolve figi %s: %w", figi, err)
	}
	inst := instrument{ISIN: payload.Payload.ISIN, Ticker: payload.Payload.Ticker}
	c.instruments[figi] = inst
	return inst, nil
}

// PortfolioCurrencies returns the account's free cash balances.
func (c *Client) PortfolioCurrencies(ctx context.Context, accountID string) ([]CurrencyBalance, error) {
	var payload struct {
		Payload struct {
			Currencies []struct {
				Currency string  `json:"currency"`
				Balance  float64 `json:"balance"`
			} `json:"currencies"`
		} `json:"payload"`
	}
	addr := c.baseURL + "/portfolio/currencies?brokerAccountId=" + url.QueryEscape(accountID)
	if err := httpcache.GetJSON(ctx, c.http, addr, c.header(), &payload); err != nil {
		return nil, fmt.Errorf("cannot fetch currency balances for account %s: %w", accountID, err)
	}
	balances := make([]CurrencyBalance, 0, len(payload.Payload.Currencies))
	for _, cur := range payload.Payload.Currencies {
		balances = append(balances, CurrencyBalance{Currency: cur.Currency, Balance: cur.Balance})
	}
	return balances, nil
}
