package tinkoff

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	tinvest "github.com/Semihal/tcs-invest-analysis"
	"github.com/Semihal/tcs-invest-analysis/date"
)

// testClient points a client at a fake broker API.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("t.test-token")
	c.baseURL = srv.URL
	c.http = srv.Client()
	return c
}

func TestListAccounts(t *testing.T) {
	var gotAuth string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/accounts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"payload":{"accounts":[
			{"brokerAccountType":"Tinkoff","brokerAccountId":"2000000001"},
			{"brokerAccountType":"TinkoffIis","brokerAccountId":"2000000002"}
		]}}`)
	}))

	accounts, err := c.ListAccounts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer t.test-token" {
		t.Errorf("Authorization = %q, want the bearer token", gotAuth)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	if accounts[0].ID != "2000000001" || accounts[0].Type != "Tinkoff" {
		t.Errorf("first account = %+v", accounts[0])
	}
}

func TestListOperations(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/operations":
			if got := r.URL.Query().Get("brokerAccountId"); got != "acc1" {
				t.Errorf("brokerAccountId = %q, want acc1", got)
			}
			fmt.Fprint(w, `{"payload":{"operations":[
				{"id":"1","status":"Done","figi":"BBG000B9XRY4","instrumentType":"Stock",
				 "operationType":"Buy","date":"2021-03-01T10:00:00+03:00","currency":"USD",
				 "payment":-250,"price":125,"quantityExecuted":2,
				 "commission":{"currency":"USD","value":-0.25}},
				{"id":"2","status":"Decline","figi":"BBG000B9XRY4","instrumentType":"Stock",
				 "operationType":"Buy","date":"2021-03-01T10:00:00+03:00","currency":"USD",
				 "payment":-250,"price":125,"quantityExecuted":2},
				{"id":"3","status":"Done","figi":"BBG000B9XRY4","instrumentType":"Stock",
				 "operationType":"BrokerCommission","date":"2021-03-01T10:00:00+03:00",
				 "currency":"USD","payment":-0.25},
				{"id":"4","status":"Done","figi":"","instrumentType":"",
				 "operationType":"PayIn","date":"2021-03-01T09:00:00+03:00",
				 "currency":"RUB","payment":100000}
			]}}`)
		case "/market/search/by-figi":
			if got := r.URL.Query().Get("figi"); got != "BBG000B9XRY4" {
				t.Errorf("figi = %q, want BBG000B9XRY4", got)
			}
			fmt.Fprint(w, `{"payload":{"isin":"US0378331005","ticker":"AAPL"}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	r := date.NewRange(date.MustParse("2021-01-01"), date.MustParse("2021-12-31"))
	ops, err := c.ListOperations(context.Background(), "acc1", r)
	if err != nil {
		t.Fatal(err)
	}

	// Declined, commission and cash line items are filtered out.
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}
	op := ops[0]
	if op.ID != "1" || op.Kind != tinvest.Buy {
		t.Errorf("operation = %s/%s, want 1/buy", op.ID, op.Kind)
	}
	if op.ISIN != "US0378331005" || op.Ticker != "AAPL" {
		t.Errorf("instrument = %s/%s, want the resolved figi", op.ISIN, op.Ticker)
	}
	if op.InstrumentType != "stock" {
		t.Errorf("instrument type = %q, want lowercased stock", op.InstrumentType)
	}
	if !op.Quantity.Equal(tinvest.Q(2)) {
		t.Errorf("quantity = %s, want 2", op.Quantity)
	}
	if !op.TotalAmount.Equal(tinvest.M(-250, "USD")) {
		t.Errorf("total = %s, want the raw -250 USD", op.TotalAmount)
	}
	if !op.Commission.Equal(tinvest.M(-0.25, "USD")) {
		t.Errorf("commission = %s, want -0.25 USD", op.Commission)
	}
	if op.On() != date.MustParse("2021-03-01") {
		t.Errorf("operation on %s, want 2021-03-01", op.On())
	}
}

func TestInstrumentCacheResolvesOnce(t *testing.T) {
	var searches int
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/market/search/by-figi" {
			searches++
		}
		fmt.Fprint(w, `{"payload":{"isin":"US0378331005","ticker":"AAPL"}}`)
	}))

	for range 3 {
		if _, err := c.instrumentByFigi(context.Background(), "BBG000B9XRY4"); err != nil {
			t.Fatal(err)
		}
	}
	if searches != 1 {
		t.Errorf("figi resolved %d times, want 1", searches)
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   string
		want tinvest.OperationKind
	}{
		{"Buy", tinvest.Buy},
		{"BuyCard", tinvest.BuyCard},
		{"Sell", tinvest.Sell},
		{"Dividend", tinvest.Dividend},
		{"BrokerCommission", tinvest.Commission},
		{"TaxDividend", tinvest.OperationKind("taxdividend")},
	}
	for _, test := range tests {
		if got := kindOf(test.in); got != test.want {
			t.Errorf("kindOf(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}

func TestPortfolioCurrencies(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/portfolio/currencies" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"payload":{"currencies":[
			{"currency":"RUB","balance":1234.5},
			{"currency":"USD","balance":10}
		]}}`)
	}))

	balances, err := c.PortfolioCurrencies(context.Background(), "acc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2", len(balances))
	}
	if balances[0].Currency != "RUB" || balances[0].Balance != 1234.5 {
		t.Errorf("first balance = %+v", balances[0])
	}
}
